package embedx

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTarGz(t *testing.T, name string, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name: name, Mode: 0o755, Size: int64(len(content)),
	}))
	_, err := tw.Write(content)
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func TestDownloadAndExtractTarGz_ExtractsFileAndReportsProgress(t *testing.T) {
	archive := buildTarGz(t, "localsearch-embed", []byte("fake binary contents"))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	}))
	defer server.Close()

	targetDir := t.TempDir()
	var lastDone, lastTotal int64
	err := downloadAndExtractTarGz(server.URL, targetDir, func(done, total int64) {
		lastDone, lastTotal = done, total
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(targetDir, "localsearch-embed"))
	require.NoError(t, err)
	assert.Equal(t, "fake binary contents", string(data))
	assert.Equal(t, lastTotal, lastDone)
}

func TestDownloadAndExtractTarGz_NonOKStatusErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	err := downloadAndExtractTarGz(server.URL, t.TempDir(), nil)
	assert.Error(t, err)
}

func TestEnsureBinaryInstalled_SkipsDownloadWhenPresent(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	binDir := filepath.Join(home, ".localsearch", "bin")
	require.NoError(t, os.MkdirAll(binDir, 0o755))
	binPath := filepath.Join(binDir, binaryName())
	require.NoError(t, os.WriteFile(binPath, []byte("existing"), 0o755))

	got, err := ensureBinaryInstalled(nil)
	require.NoError(t, err)
	assert.Equal(t, binPath, got)
}

func TestDownloadURL_IncludesPlatformAndVersion(t *testing.T) {
	url := downloadURL("v1.2.3")
	assert.Contains(t, url, "v1.2.3")
	assert.Contains(t, url, "localsearch-embed-")
}

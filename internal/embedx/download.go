package embedx

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
)

// EmbedSidecarVersion pins the well-known release of the localsearch-embed
// sidecar binary, decoupled from the core module's own version.
const EmbedSidecarVersion = "v1.0.0"

// ensureBinaryInstalled checks whether the localsearch-embed sidecar is
// installed under the user's home directory and downloads it if not,
// reporting progress via onProgress (may be nil). Returns the absolute
// path to the binary.
func ensureBinaryInstalled(onProgress ProgressFunc) (string, error) {
	binDir, err := binaryInstallDir()
	if err != nil {
		return "", err
	}
	binPath := filepath.Join(binDir, binaryName())

	if _, err := os.Stat(binPath); err == nil {
		return binPath, nil
	}

	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return "", fmt.Errorf("create sidecar install directory: %w", err)
	}

	url := downloadURL(EmbedSidecarVersion)
	if err := downloadAndExtractTarGz(url, binDir, onProgress); err != nil {
		return "", fmt.Errorf("download sidecar from %s: %w", url, err)
	}

	if err := os.Chmod(binPath, 0o755); err != nil {
		return "", fmt.Errorf("make sidecar executable: %w", err)
	}
	return binPath, nil
}

func downloadURL(version string) string {
	platform := fmt.Sprintf("%s-%s", runtime.GOOS, runtime.GOARCH)
	return fmt.Sprintf("https://github.com/localsearch/localsearch-embed/releases/download/%s/localsearch-embed-%s.tar.gz",
		version, platform)
}

// downloadAndExtractTarGz streams the archive to disk, reporting byte
// progress, then extracts it into targetDir.
func downloadAndExtractTarGz(url, targetDir string, onProgress ProgressFunc) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d downloading sidecar", resp.StatusCode)
	}

	total := resp.ContentLength
	tmp, err := os.CreateTemp("", "localsearch-embed-*.tar.gz")
	if err != nil {
		return fmt.Errorf("create temp archive: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	reader := io.Reader(resp.Body)
	if onProgress != nil {
		reader = &progressReader{r: resp.Body, total: total, onProgress: onProgress}
	}
	if _, err := io.Copy(tmp, reader); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seek archive: %w", err)
	}

	gz, err := gzip.NewReader(tmp)
	if err != nil {
		return fmt.Errorf("open gzip stream: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read tar entry: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		dest := filepath.Join(targetDir, filepath.Base(hdr.Name))
		out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o755)
		if err != nil {
			return fmt.Errorf("create %s: %w", dest, err)
		}
		if _, err := io.Copy(out, tr); err != nil {
			out.Close()
			return fmt.Errorf("extract %s: %w", dest, err)
		}
		out.Close()
	}
	return nil
}

type progressReader struct {
	r          io.Reader
	total      int64
	done       int64
	onProgress ProgressFunc
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	p.done += int64(n)
	p.onProgress(p.done, p.total)
	return n, err
}

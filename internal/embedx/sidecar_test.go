package embedx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serverPort(t *testing.T, rawURL string) int {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return port
}

func TestNormalize_L2Normalizes(t *testing.T) {
	out := normalize([]float32{3, 4})
	assert.InDelta(t, 1.0, float64(out[0])*0.6+float64(out[1])*0.8, 1e-6)
	var sumSq float64
	for _, f := range out {
		sumSq += float64(f) * float64(f)
	}
	assert.InDelta(t, 1.0, sumSq, 1e-6)
}

func TestNormalize_ZeroVectorUnchanged(t *testing.T) {
	out := normalize([]float32{0, 0, 0})
	assert.Equal(t, []float32{0, 0, 0}, out)
}

func TestBinaryName_PlatformSpecific(t *testing.T) {
	name := binaryName()
	assert.True(t, name == "localsearch-embed" || name == "localsearch-embed.exe")
}

// fakeSidecarServer stands in for the localsearch-embed process, serving
// /healthz and /embed exactly like the real sidecar would.
func fakeSidecarServer(t *testing.T, dimension int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/embed", func(w http.ResponseWriter, r *http.Request) {
		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		vecs := make([][]float32, len(req.Texts))
		for i := range req.Texts {
			v := make([]float32, dimension)
			v[0] = 1
			vecs[i] = v
		}
		json.NewEncoder(w).Encode(embedResponse{Vectors: vecs})
	})
	return httptest.NewServer(mux)
}

func TestSidecarEngine_EmbedOnceCallsHTTPEndpoint(t *testing.T) {
	server := fakeSidecarServer(t, 4)
	defer server.Close()

	e := newSidecarEngine(KindCode, "test-model", 4, serverPort(t, server.URL))
	e.initialized = true // bypass process spawning; the HTTP server stands in for it

	vecs, err := e.embedOnce(context.Background(), []string{"hello", "world"}, ModeQuery)
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Len(t, vecs[0], 4)
}

func TestSidecarEngine_EmbedOnceRejectsWrongDimension(t *testing.T) {
	server := fakeSidecarServer(t, 8)
	defer server.Close()

	e := newSidecarEngine(KindCode, "test-model", 4, serverPort(t, server.URL))
	_, err := e.embedOnce(context.Background(), []string{"hello"}, ModeQuery)
	assert.Error(t, err)
}

func TestSidecarEngine_NameAndDimension(t *testing.T) {
	e := newSidecarEngine(KindDocs, "docs-model", 768, 9999)
	assert.Equal(t, "docs-model", e.Name())
	assert.Equal(t, 768, e.Dimension())
}

package embedx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/localsearch/localsearch/internal/apperrors"
)

// sidecarEngine manages a locally embedded Python sentence-transformers
// process ("localsearch-embed") and talks to it over a loopback HTTP
// server, one process per (kind, model).
type sidecarEngine struct {
	kind       Kind
	modelName  string
	dimension  int
	port       int
	binaryPath string

	cmd    *exec.Cmd
	client *http.Client

	mu          sync.Mutex
	initialized bool
}

func newSidecarEngine(kind Kind, modelName string, dimension, port int) *sidecarEngine {
	return &sidecarEngine{
		kind:      kind,
		modelName: modelName,
		dimension: dimension,
		port:      port,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (e *sidecarEngine) Name() string   { return e.modelName }
func (e *sidecarEngine) Dimension() int { return e.dimension }

// initialize is idempotent: safe to call from multiple goroutines, the
// actual download+spawn happens once (callers are expected to be wrapped
// by the process-wide singleflight group in singleton.go).
func (e *sidecarEngine) initialize(ctx context.Context, onProgress ProgressFunc) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.initialized {
		return nil
	}

	binPath, err := ensureBinaryInstalled(onProgress)
	if err != nil {
		return apperrors.New(apperrors.ModelDownloadFailed,
			"could not download the local embedding model",
			fmt.Sprintf("ensureBinaryInstalled(%s): %v", e.modelName, err), err)
	}
	e.binaryPath = binPath

	if err := e.startProcess(ctx); err != nil {
		return apperrors.New(apperrors.ModelDownloadFailed,
			"could not start the local embedding process",
			fmt.Sprintf("startProcess(%s): %v", e.modelName, err), err)
	}

	if err := e.waitHealthy(ctx, 60*time.Second); err != nil {
		return apperrors.New(apperrors.ModelDownloadFailed,
			"the local embedding process did not become ready in time",
			fmt.Sprintf("waitHealthy(%s): %v", e.modelName, err), err)
	}

	e.initialized = true
	return nil
}

func (e *sidecarEngine) startProcess(ctx context.Context) error {
	if e.isHealthy() {
		return nil
	}
	e.cmd = exec.CommandContext(ctx, e.binaryPath, "--model", e.modelName, "--port", fmt.Sprintf("%d", e.port))
	e.cmd.Stdout = os.Stderr
	e.cmd.Stderr = os.Stderr
	if err := e.cmd.Start(); err != nil {
		return fmt.Errorf("start process: %w", err)
	}
	return nil
}

func (e *sidecarEngine) isHealthy() bool {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("http://127.0.0.1:%d/healthz", e.port), nil)
	resp, err := e.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (e *sidecarEngine) waitHealthy(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for embedding process to become healthy")
		case <-ticker.C:
			if e.isHealthy() {
				return nil
			}
		}
	}
}

type embedRequest struct {
	Texts []string `json:"texts"`
	Mode  string   `json:"mode"`
}

type embedResponse struct {
	Vectors [][]float32 `json:"vectors"`
	Error   string      `json:"error,omitempty"`
}

// Embed embeds a single text.
func (e *sidecarEngine) Embed(ctx context.Context, text string, mode Mode) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text}, mode, nil)
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

const defaultBatchSize = 32
const gpuBatchSize = 128

// EmbedBatch embeds texts in batches (§4.3). batchSize scales up when a
// GPU device is selected via LOCALSEARCH_EMBED_DEVICE=cuda, mirroring the
// "larger batch size when a GPU device is available" requirement.
func (e *sidecarEngine) EmbedBatch(ctx context.Context, texts []string, mode Mode, onProgress ProgressFunc) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	if err := e.initialize(ctx, nil); err != nil {
		return nil, err
	}

	batchSize := defaultBatchSize
	if os.Getenv("LOCALSEARCH_EMBED_DEVICE") == "cuda" {
		batchSize = gpuBatchSize
	}

	out := make([][]float32, len(texts))
	total := int64(len(texts))
	var done int64

	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := e.embedOnce(ctx, texts[start:end], mode)
		if err != nil {
			return nil, err
		}
		for i, v := range vecs {
			out[start+i] = normalize(v)
		}
		done += int64(end - start)
		if onProgress != nil {
			onProgress(done, total)
		}
	}
	return out, nil
}

func (e *sidecarEngine) embedOnce(ctx context.Context, texts []string, mode Mode) ([][]float32, error) {
	body, err := json.Marshal(embedRequest{Texts: texts, Mode: string(mode)})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	url := fmt.Sprintf("http://127.0.0.1:%d/embed", e.port)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call embedding process: %w", err)
	}
	defer resp.Body.Close()

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("embedding process error: %s", out.Error)
	}
	for _, v := range out.Vectors {
		if len(v) != e.dimension {
			return nil, fmt.Errorf("embedding process returned %d-dim vector, want %d", len(v), e.dimension)
		}
	}
	return out.Vectors, nil
}

func (e *sidecarEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cmd != nil && e.cmd.Process != nil {
		_ = e.cmd.Process.Kill()
	}
	e.initialized = false
	return nil
}

// normalize L2-normalizes a vector in place semantics (returns a new slice).
func normalize(v []float32) []float32 {
	var sumSq float64
	for _, f := range v {
		sumSq += float64(f) * float64(f)
	}
	if sumSq == 0 {
		return v
	}
	norm := float32(1.0 / math.Sqrt(sumSq))
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = f * norm
	}
	return out
}

func binaryName() string {
	if runtime.GOOS == "windows" {
		return "localsearch-embed.exe"
	}
	return "localsearch-embed"
}

func binaryInstallDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine home directory: %w", err)
	}
	return filepath.Join(home, ".localsearch", "bin"), nil
}

// Command localsearch-embed is the sidecar spawned by internal/embedx: an
// embedded Python runtime running a sentence-transformers model behind a
// loopback HTTP server, speaking the {texts,mode} -> {vectors} contract the
// sidecar client expects.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/kluctl/go-embed-python/embed_util"
	"github.com/kluctl/go-embed-python/python"

	embedserver "github.com/localsearch/localsearch/internal/embed/server"
)

func main() {
	model := flag.String("model", "sentence-transformers/all-MiniLM-L6-v2", "sentence-transformers model name")
	port := flag.Int("port", 8121, "loopback port to serve on")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("determine home directory: %v", err)
	}
	baseDir := filepath.Join(homeDir, ".localsearch", "embed")

	runtimeDir := filepath.Join(baseDir, "runtime")
	ep, err := python.NewEmbeddedPythonWithTmpDir(runtimeDir, true)
	if err != nil {
		log.Fatalf("create embedded python: %v", err)
	}

	packagesDir := filepath.Join(baseDir, "packages")
	embeddedFiles, err := embed_util.NewEmbeddedFilesWithTmpDir(embedserver.Data, packagesDir, true)
	if err != nil {
		log.Fatalf("load embedded packages: %v", err)
	}
	ep.AddPythonPath(embeddedFiles.GetExtractedPath())

	tmpDir, err := os.MkdirTemp("", "localsearch-embed-*")
	if err != nil {
		log.Fatalf("create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	scriptPath := filepath.Join(tmpDir, "embedding_service.py")
	script := fmt.Sprintf(embeddingScript, *model, *port)
	if err := os.WriteFile(scriptPath, []byte(script), 0o644); err != nil {
		log.Fatalf("write embedding script: %v", err)
	}

	cmd, err := ep.PythonCmd(scriptPath)
	if err != nil {
		log.Fatalf("create python command: %v", err)
	}
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		log.Fatalf("start python server: %v", err)
	}

	log.Printf("starting embedding service for %s on http://127.0.0.1:%d", *model, *port)
	if err := waitForReady(ctx, *port); err != nil {
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		log.Fatalf("service failed to start: %v", err)
	}
	log.Println("embedding service ready")

	<-ctx.Done()
	log.Println("shutting down")
	if cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
}

func waitForReady(ctx context.Context, port int) error {
	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(2 * time.Minute)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	url := fmt.Sprintf("http://127.0.0.1:%d/healthz", port)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if time.Now().After(deadline) {
				return fmt.Errorf("timeout waiting for embedding service")
			}
			resp, err := client.Get(url)
			if err == nil {
				resp.Body.Close()
				if resp.StatusCode == http.StatusOK {
					return nil
				}
			}
		}
	}
}

// embeddingScript runs a sentence-transformers model behind a minimal HTTP
// server matching internal/embedx's sidecar client: GET /healthz and POST
// /embed with a {"texts": [...], "mode": "query"|"document"} body.
const embeddingScript = `
import json
from http.server import BaseHTTPRequestHandler, HTTPServer
from sentence_transformers import SentenceTransformer

MODEL_NAME = %q
PORT = %d

model = SentenceTransformer(MODEL_NAME)

class Handler(BaseHTTPRequestHandler):
    def log_message(self, fmt, *args):
        pass

    def do_GET(self):
        if self.path == "/healthz":
            self.send_response(200)
            self.end_headers()
            self.wfile.write(b"ok")
        else:
            self.send_response(404)
            self.end_headers()

    def do_POST(self):
        if self.path != "/embed":
            self.send_response(404)
            self.end_headers()
            return
        length = int(self.headers.get("Content-Length", 0))
        body = json.loads(self.rfile.read(length) or b"{}")
        texts = body.get("texts", [])
        try:
            vectors = model.encode(texts, convert_to_numpy=True).tolist()
            out = {"vectors": vectors}
        except Exception as exc:
            out = {"vectors": [], "error": str(exc)}
        payload = json.dumps(out).encode()
        self.send_response(200)
        self.send_header("Content-Type", "application/json")
        self.send_header("Content-Length", str(len(payload)))
        self.end_headers()
        self.wfile.write(payload)

HTTPServer(("127.0.0.1", PORT), Handler).serve_forever()
`

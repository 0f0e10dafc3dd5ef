// Package logging provides the single process-wide log sink (§4.1):
// structured records written to a rotating file inside the bound index
// directory, falling back to stderr before one is bound.
package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Level is a log severity.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

const (
	maxFileBytes = 10 * 1024 * 1024
	maxRetained  = 3
)

// Sink is the process-wide structured logger.
type Sink struct {
	mu       sync.Mutex
	file     *os.File
	path     string
	curBytes int64
}

var (
	defaultOnce sync.Once
	defaultSink *Sink
)

// Default returns the process-wide Sink, writing to stderr until Bind is
// called with an index directory.
func Default() *Sink {
	defaultOnce.Do(func() {
		defaultSink = &Sink{}
	})
	return defaultSink
}

// Bind attaches the sink to "<indexDir>/logs/search-mcp.log", creating the
// logs directory if needed. Safe to call more than once (e.g. on reindex);
// rebinding to the same path is a no-op.
func (s *Sink) Bind(indexDir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logsDir := filepath.Join(indexDir, "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("create logs directory: %w", err)
	}
	path := filepath.Join(logsDir, "search-mcp.log")
	if s.path == path && s.file != nil {
		return nil
	}

	if s.file != nil {
		_ = s.file.Close()
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	info, _ := f.Stat()
	var size int64
	if info != nil {
		size = info.Size()
	}

	s.file = f
	s.path = path
	s.curBytes = size
	return nil
}

func (s *Sink) Debug(component, message string, meta map[string]any) {
	s.write(LevelDebug, component, message, meta)
}
func (s *Sink) Info(component, message string, meta map[string]any) {
	s.write(LevelInfo, component, message, meta)
}
func (s *Sink) Warn(component, message string, meta map[string]any) {
	s.write(LevelWarn, component, message, meta)
}
func (s *Sink) Error(component, message string, meta map[string]any) {
	s.write(LevelError, component, message, meta)
}

func (s *Sink) write(level Level, component, message string, meta map[string]any) {
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		metaJSON = []byte("{}")
	}
	line := fmt.Sprintf("[%s] [%s] [%s] %s %s\n",
		time.Now().UTC().Format(time.RFC3339), level, component, message, string(metaJSON))

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		fmt.Fprint(os.Stderr, line)
		return
	}

	if s.curBytes+int64(len(line)) > maxFileBytes {
		s.rotateLocked()
	}

	n, werr := s.file.WriteString(line)
	if werr == nil {
		s.curBytes += int64(n)
	}
}

// rotateLocked performs the 10MB x 3 rotation: .log -> .log.1 -> .log.2,
// discarding anything beyond maxRetained. Caller must hold s.mu.
func (s *Sink) rotateLocked() {
	_ = s.file.Close()

	for i := maxRetained - 2; i >= 1; i-- {
		src := fmt.Sprintf("%s.%d", s.path, i)
		dst := fmt.Sprintf("%s.%d", s.path, i+1)
		if _, err := os.Stat(src); err == nil {
			_ = os.Rename(src, dst)
		}
	}
	_ = os.Rename(s.path, s.path+".1")

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err == nil {
		s.file = f
		s.curBytes = 0
	}
}

// Close flushes and releases the underlying file handle, if any.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

package config

import (
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
)

var (
	ErrInvalidChunkingStrategy = errors.New("invalid chunking strategy")
	ErrInvalidPattern          = errors.New("invalid glob pattern")
	ErrInvalidMaxFileSize      = errors.New("invalid maxFileSize")
	ErrInvalidMaxFiles         = errors.New("invalid maxFiles")
	ErrInvalidAlpha            = errors.New("invalid hybridSearch.defaultAlpha")
	ErrInvalidFtsEngine        = errors.New("invalid hybridSearch.ftsEngine")
)

// Validate checks that cfg is structurally sound, collecting every problem
// it finds into one joined error rather than stopping at the first.
func Validate(cfg *Config) error {
	var errs []error

	switch cfg.ChunkingStrategy {
	case "character", "code-aware":
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidChunkingStrategy, cfg.ChunkingStrategy))
	}

	for _, pattern := range append(append([]string{}, cfg.Include...), cfg.Exclude...) {
		if _, err := path.Match(globToPathMatch(pattern), "probe"); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err))
		}
	}

	if n, err := ParseSize(cfg.MaxFileSize); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidMaxFileSize, err))
	} else if n < 0 {
		errs = append(errs, fmt.Errorf("%w: must not be negative, got %q", ErrInvalidMaxFileSize, cfg.MaxFileSize))
	}

	if cfg.MaxFiles <= 0 {
		errs = append(errs, fmt.Errorf("%w: must be positive, got %d", ErrInvalidMaxFiles, cfg.MaxFiles))
	}

	if cfg.HybridSearch.DefaultAlpha < 0 || cfg.HybridSearch.DefaultAlpha > 1 {
		errs = append(errs, fmt.Errorf("%w: must be in [0,1], got %f", ErrInvalidAlpha, cfg.HybridSearch.DefaultAlpha))
	}

	switch cfg.HybridSearch.FtsEngine {
	case "auto", "js", "native":
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidFtsEngine, cfg.HybridSearch.FtsEngine))
	}

	return errors.Join(errs...)
}

// globToPathMatch strips doublestar "**/" segments that path.Match (which
// only understands single-segment globs) can't parse, just enough to
// sanity-check the pattern is otherwise well-formed.
func globToPathMatch(pattern string) string {
	return strings.ReplaceAll(pattern, "**/", "")
}

// ParseSize parses sizes like "1MB", "512KB", "2GB" into bytes.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" {
		return 0, errors.New("empty size")
	}
	units := []struct {
		suffix string
		mult   int64
	}{
		{"GB", 1 << 30}, {"MB", 1 << 20}, {"KB", 1 << 10}, {"B", 1},
	}
	for _, u := range units {
		if strings.HasSuffix(s, u.suffix) {
			numStr := strings.TrimSuffix(s, u.suffix)
			n, err := strconv.ParseFloat(numStr, 64)
			if err != nil {
				return 0, fmt.Errorf("parse numeric part of %q: %w", s, err)
			}
			return int64(n * float64(u.mult)), nil
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unrecognized size %q", s)
	}
	return n, nil
}

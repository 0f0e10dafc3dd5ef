//go:build fts5 || sqlite_fts5

// This file enables FTS5 support in mattn/go-sqlite3's cgo build. The
// native FTS backend (fts_native.go) requires the project to be built and
// tested with -tags="fts5" or -tags="sqlite_fts5"; without one of those
// tags, createNativeFTSTable's virtual table creation fails at runtime.
package store

import (
	_ "github.com/mattn/go-sqlite3"
)

package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_WrapsCauseInErrorString(t *testing.T) {
	cause := errors.New("disk full")
	err := New(DiskFull, "not enough space", "write failed", cause)

	assert.Contains(t, err.Error(), string(DiskFull))
	assert.Contains(t, err.Error(), "write failed")
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, "not enough space", err.UserMessage)
}

func TestNew_NoCauseOmitsColon(t *testing.T) {
	err := New(InvalidPath, "bad path", "path escapes root", nil)
	assert.Equal(t, fmt.Sprintf("[%s] path escapes root", InvalidPath), err.Error())
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := New(IndexCorrupt, "index is corrupt", "checksum mismatch", cause)
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestIs(t *testing.T) {
	err := New(FileNotFound, "file missing", "stat failed", nil)
	assert.True(t, Is(err, FileNotFound))
	assert.False(t, Is(err, DiskFull))
	assert.False(t, Is(errors.New("plain"), FileNotFound))
}

func TestKindOf(t *testing.T) {
	err := New(SymlinkNotAllowed, "symlinks are rejected", "lstat reported symlink", nil)

	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, SymlinkNotAllowed, kind)

	_, ok = KindOf(errors.New("untagged"))
	assert.False(t, ok)
}

func TestIs_MatchesWrappedError(t *testing.T) {
	inner := New(PermissionDenied, "no access", "open: permission denied", nil)
	wrapped := fmt.Errorf("indexing file: %w", inner)
	assert.True(t, Is(wrapped, PermissionDenied))
}

// Package apperrors defines the closed taxonomy of tagged errors (§7) that
// cross component boundaries, each carrying a user-facing message (safe to
// show verbatim) and a developer message (sanitized, for logs).
package apperrors

import (
	"errors"
	"fmt"

	"github.com/localsearch/localsearch/internal/logging"
)

// Kind is a closed tag from spec §7.
type Kind string

const (
	IndexNotFound      Kind = "INDEX_NOT_FOUND"
	ModelDownloadFailed Kind = "MODEL_DOWNLOAD_FAILED"
	IndexCorrupt        Kind = "INDEX_CORRUPT"
	FileLimitWarning    Kind = "FILE_LIMIT_WARNING"
	PermissionDenied    Kind = "PERMISSION_DENIED"
	DiskFull            Kind = "DISK_FULL"
	FileNotFound        Kind = "FILE_NOT_FOUND"
	InvalidPattern       Kind = "INVALID_PATTERN"
	ProjectNotDetected   Kind = "PROJECT_NOT_DETECTED"
	SymlinkNotAllowed    Kind = "SYMLINK_NOT_ALLOWED"
	InvalidPath          Kind = "INVALID_PATH"
	ExtractionFailed     Kind = "EXTRACTION_FAILED"
)

// Error is the tagged error type propagated across component boundaries.
// UserMessage never contains paths or stack traces. DevMessage may contain
// sanitized absolute paths and the wrapped cause.
type Error struct {
	Kind        Kind
	UserMessage string
	DevMessage  string
	Cause       error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.DevMessage, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.DevMessage)
}

func (e *Error) Unwrap() error { return e.Cause }

// New constructs a tagged Error and, as a side effect, emits one ERROR-level
// log record (§4.1). cause may be nil.
func New(kind Kind, userMessage, devMessage string, cause error) *Error {
	err := &Error{Kind: kind, UserMessage: userMessage, DevMessage: devMessage, Cause: cause}
	logging.Default().Error("apperrors", err.DevMessage, map[string]any{
		"kind":  string(kind),
		"cause": causeString(cause),
	})
	return err
}

func causeString(cause error) string {
	if cause == nil {
		return ""
	}
	return cause.Error()
}

// Is reports whether err (or any error it wraps) is a tagged Error of kind k.
func Is(err error, k Kind) bool {
	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged.Kind == k
	}
	return false
}

// KindOf extracts the Kind of a tagged Error, if any.
func KindOf(err error) (Kind, bool) {
	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged.Kind, true
	}
	return "", false
}

package errors

import "fmt"

// ErrorCode represents a gitdraft error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST"  // 400
	ErrNotTracked     ErrorCode = "NOT_TRACKED"      // 412
	ErrNothingPending ErrorCode = "NOTHING_PENDING"  // 404
	ErrChangeNotFound ErrorCode = "CHANGE_NOT_FOUND" // 404
	ErrWriteFailed    ErrorCode = "WRITE_FAILED"     // 500
	ErrGitFailed      ErrorCode = "GIT_FAILED"       // 502 (file written, git step failed)
	ErrInternal       ErrorCode = "INTERNAL"         // 500
)

// DraftError represents a structured error with code, status, and details.
type DraftError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *DraftError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *DraftError {
	return &DraftError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotTracked creates a 412 error for existing files outside git control.
// Proposals against untracked files are refused up front so approval never
// stages content the repository cannot commit against cleanly.
func NewNotTracked(path string) *DraftError {
	return &DraftError{
		Code:    ErrNotTracked,
		Status:  412,
		Message: fmt.Sprintf("file exists but is not tracked by git: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewNothingPending creates a 404 error for sessions with no current change.
func NewNothingPending(sessionID string) *DraftError {
	return &DraftError{
		Code:    ErrNothingPending,
		Status:  404,
		Message: fmt.Sprintf("no pending change for session %q", sessionID),
		Details: map[string]any{"session_id": sessionID},
	}
}

// NewChangeNotFound creates a 404 error for unknown or already-consumed ids.
func NewChangeNotFound(changeID string) *DraftError {
	return &DraftError{
		Code:    ErrChangeNotFound,
		Status:  404,
		Message: fmt.Sprintf("change not found: %s", changeID),
		Details: map[string]any{"change_id": changeID},
	}
}

// NewWriteFailed creates a 500 error for a failed file write during approval.
// The change record is retained so the approval can be retried.
func NewWriteFailed(path string, err error) *DraftError {
	return &DraftError{
		Code:    ErrWriteFailed,
		Status:  500,
		Message: fmt.Sprintf("failed to write %s: %v", path, err),
		Details: map[string]any{"path": path},
	}
}

// NewGitFailed creates a 502 error for a git step that failed after the
// file write already succeeded. Partial success: the content mutation is
// kept and the record is consumed, because re-approving would be a no-op.
func NewGitFailed(path string, err error) *DraftError {
	return &DraftError{
		Code:    ErrGitFailed,
		Status:  502,
		Message: fmt.Sprintf("file updated but git operation failed for %s: %v", path, err),
		Details: map[string]any{"path": path},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *DraftError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &DraftError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a DraftError with the given code.
func Is(err error, code ErrorCode) bool {
	if dErr, ok := err.(*DraftError); ok {
		return dErr.Code == code
	}
	return false
}

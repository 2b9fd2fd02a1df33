package ops

import (
	"fmt"

	"github.com/hpungsan/gitdraft/internal/errors"
)

// RejectInput contains parameters for the Reject operation.
type RejectInput struct {
	ChangeID  string // empty: resolve via the session's current pointer
	SessionID string
}

// RejectOutput contains the result of the Reject operation.
type RejectOutput struct {
	ChangeID string `json:"change_id"`
	Path     string `json:"path"`
	Message  string `json:"message"`
}

// Reject discards a pending change without touching the filesystem. The
// record is consumed; a second reject of the same id reports
// CHANGE_NOT_FOUND.
func (w *Workflow) Reject(input RejectInput) (*RejectOutput, error) {
	id, err := w.resolveID(input.ChangeID, input.SessionID)
	if err != nil {
		return nil, err
	}

	lock := w.changeLock(id)
	lock.Lock()
	defer lock.Unlock()

	rec, ok := w.store.Get(id)
	if !ok {
		return nil, errors.NewChangeNotFound(id)
	}

	w.consume(rec, id)

	return &RejectOutput{
		ChangeID: id,
		Path:     rec.TargetPath,
		Message:  fmt.Sprintf("Discarded proposed change %s for %s. The file was not modified.", id, rec.TargetPath),
	}, nil
}

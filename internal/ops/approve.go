package ops

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/gitdraft/internal/change"
	"github.com/hpungsan/gitdraft/internal/errors"
)

// ApproveInput contains parameters for the Approve operation.
type ApproveInput struct {
	ChangeID  string // empty: resolve via the session's current pointer
	SessionID string
}

// ApproveOutput contains the result of the Approve operation.
type ApproveOutput struct {
	ChangeID   string `json:"change_id"`
	Path       string `json:"path"`
	Written    bool   `json:"written"`
	Committed  bool   `json:"committed"`
	CommitHash string `json:"commit_hash,omitempty"`
	Message    string `json:"message"`
}

// Approve applies a pending change: writes the payload to the target
// file, stages it, and commits unless commit prompting is enabled. The
// record is consumed and the session pointer cleared if it referenced
// this id.
//
// Failure asymmetry is deliberate. A failed write keeps the record so the
// approval can be retried; a failed git step after a successful write
// consumes the record and reports partial success, because the content
// mutation already happened and the caller can retry the commit itself.
func (w *Workflow) Approve(input ApproveInput) (*ApproveOutput, error) {
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
	if rec.Kind != change.KindWrite {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("unsupported change kind: %s", rec.Kind))
	}

	if err := writePayload(rec); err != nil {
		// Record and pointer stay intact; the approval is retryable.
		return nil, errors.NewWriteFailed(rec.TargetPath, err)
	}

	if err := w.git.Stage(rec.TargetPath); err != nil {
		w.consume(rec, id)
		return nil, errors.NewGitFailed(rec.TargetPath, err)
	}

	committed := false
	commitHash := ""
	if !w.CommitPromptEnabled() {
		hash, err := w.git.Commit(rec.TargetPath, rec.Description)
		if err != nil {
			w.consume(rec, id)
			return nil, errors.NewGitFailed(rec.TargetPath, err)
		}
		committed = true
		commitHash = hash
	}

	w.consume(rec, id)

	var message string
	if committed {
		message = fmt.Sprintf("Successfully wrote to %s. Changes committed to git: %s",
			rec.TargetPath, rec.Summary())
	} else {
		message = fmt.Sprintf("Successfully wrote to %s. Changes staged; commit prompting is enabled, so a separate commit step is required.",
			rec.TargetPath)
	}

	return &ApproveOutput{
		ChangeID:   id,
		Path:       rec.TargetPath,
		Written:    true,
		Committed:  committed,
		CommitHash: commitHash,
		Message:    message,
	}, nil
}

// consume removes the record and drops the session pointer when it still
// references this change.
func (w *Workflow) consume(rec *change.Record, id string) {
	_ = w.store.Remove(id)
	w.clearPointerIfCurrent(rec.SessionID, id)
}

// writePayload writes the record's payload to its target path using the
// stored line-ending convention, creating parent directories for new files.
func writePayload(rec *change.Record) error {
	if err := os.MkdirAll(filepath.Dir(rec.TargetPath), 0o755); err != nil {
		return err
	}
	content := change.ApplyLineEnding(rec.Payload, rec.LineEnding)
	return os.WriteFile(rec.TargetPath, []byte(content), 0o644)
}

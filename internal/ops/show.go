package ops

import (
	"os"
	"path/filepath"

	"github.com/hpungsan/gitdraft/internal/change"
	"github.com/hpungsan/gitdraft/internal/diff"
	"github.com/hpungsan/gitdraft/internal/errors"
)

// ShowInput contains parameters for the Show operation.
type ShowInput struct {
	ChangeID string
}

// ShowOutput contains the full detail of one pending change.
type ShowOutput struct {
	ChangeID    string `json:"change_id"`
	Path        string `json:"path"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	SessionID   string `json:"session_id"`
	CreatedAt   int64  `json:"created_at"`
	Diff        string `json:"diff"`
}

// Show fetches a pending change record and recomputes its diff against
// the file's current on-disk content. The diff can differ from the one
// reported at propose time if the file changed underneath the proposal.
func (w *Workflow) Show(input ShowInput) (*ShowOutput, error) {
	if input.ChangeID == "" {
		return nil, errors.NewInvalidRequest("change_id is required")
	}

	rec, ok := w.store.Get(input.ChangeID)
	if !ok {
		return nil, errors.NewChangeNotFound(input.ChangeID)
	}

	oldContent := ""
	if data, err := os.ReadFile(rec.TargetPath); err == nil {
		oldContent = string(data)
	}

	diffText, err := diff.Unified(
		change.ApplyLineEnding(oldContent, change.LineEndingLF),
		change.ApplyLineEnding(rec.Payload, change.LineEndingLF),
		filepath.Base(rec.TargetPath),
	)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	return &ShowOutput{
		ChangeID:    rec.ID,
		Path:        rec.TargetPath,
		Kind:        string(rec.Kind),
		Description: rec.Description,
		SessionID:   rec.SessionID,
		CreatedAt:   rec.CreatedAt,
		Diff:        diffText,
	}, nil
}

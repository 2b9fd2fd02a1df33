package ops

import "github.com/hpungsan/gitdraft/internal/errors"

// CurrentInput contains parameters for the Current operation.
type CurrentInput struct {
	SessionID string
	Clear     bool // drop the pointer instead of reading it
}

// CurrentOutput describes a session's current pending change.
type CurrentOutput struct {
	SessionID   string `json:"session_id"`
	ChangeID    string `json:"change_id,omitempty"`
	Path        string `json:"path,omitempty"`
	Description string `json:"description,omitempty"`
	Pending     bool   `json:"pending"`
	Cleared     bool   `json:"cleared,omitempty"`
}

// Current reports (or clears) the session's current-change pointer. A
// pointer whose record was already consumed elsewhere reports pending
// false with the dangling id omitted.
func (w *Workflow) Current(input CurrentInput) (*CurrentOutput, error) {
	if input.SessionID == "" {
		return nil, errors.NewInvalidRequest("session_id is required")
	}

	out := &CurrentOutput{SessionID: input.SessionID}

	if input.Clear {
		if err := w.store.ClearCurrent(input.SessionID); err != nil {
			return nil, errors.NewInternal(err)
		}
		out.Cleared = true
		return out, nil
	}

	id, ok := w.store.GetCurrent(input.SessionID)
	if !ok {
		return out, nil
	}
	rec, ok := w.store.Get(id)
	if !ok {
		return out, nil
	}

	out.ChangeID = id
	out.Path = rec.TargetPath
	out.Description = rec.Summary()
	out.Pending = true
	return out, nil
}

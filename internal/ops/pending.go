package ops

import "github.com/hpungsan/gitdraft/internal/errors"

// PendingItem summarizes one pending change record.
type PendingItem struct {
	ChangeID    string `json:"change_id"`
	Path        string `json:"path"`
	Description string `json:"description"`
	SessionID   string `json:"session_id"`
	CreatedAt   int64  `json:"created_at"`
}

// PendingOutput contains the result of the Pending operation.
type PendingOutput struct {
	Items []PendingItem `json:"items"`
	Total int           `json:"total"`
}

// Pending lists all pending change records across sessions, newest first.
// Nothing here expires records; an external reaper would use this same
// listing to age out abandoned proposals.
func (w *Workflow) Pending() (*PendingOutput, error) {
	records, err := w.store.List()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	items := make([]PendingItem, 0, len(records))
	for _, rec := range records {
		items = append(items, PendingItem{
			ChangeID:    rec.ID,
			Path:        rec.TargetPath,
			Description: rec.Summary(),
			SessionID:   rec.SessionID,
			CreatedAt:   rec.CreatedAt,
		})
	}

	return &PendingOutput{Items: items, Total: len(items)}, nil
}

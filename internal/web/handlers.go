package web

import (
	"net/http"

	"github.com/hpungsan/gitdraft/internal/errors"
	"github.com/hpungsan/gitdraft/internal/ops"
)

// Handlers contains HTTP route handlers for the review UI.
type Handlers struct {
	workflow *ops.Workflow
	renderer *Renderer
}

// HandleList handles GET /changes: list pending changes, newest first.
// An optional session query parameter narrows the listing to one session.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	session := r.URL.Query().Get("session")

	result, err := h.workflow.Pending()
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	items := result.Items
	if session != "" {
		filtered := make([]ops.PendingItem, 0, len(items))
		for _, item := range items {
			if item.SessionID == session {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}

	h.renderer.renderPage(w, "list", ListPageData{
		PageData: PageData{
			Title:   "Pending Changes",
			Version: h.renderer.version,
			Nav:     "changes",
		},
		Items:   items,
		Total:   len(items),
		Session: session,
	})
}

// HandleDetail handles GET /changes/{id}: view one pending change with
// its diff recomputed against the file's current content.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("change ID is required"))
		return
	}

	out, err := h.workflow.Show(ops.ShowInput{ChangeID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "detail", DetailPageData{
		PageData: PageData{
			Title:   shortID(out.ChangeID),
			Version: h.renderer.version,
			Nav:     "changes",
		},
		Change:       out,
		RenderedDesc: renderMarkdown(out.Description),
		DiffLines:    classifyDiff(out.Diff),
		ShortID:      shortID(out.ChangeID),
	})
}

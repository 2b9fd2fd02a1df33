// Package ops implements the change-proposal operations exposed over MCP
// and the CLI. A proposal moves through a two-state machine: proposed,
// then either applied (approve) or rejected (reject). Both outcomes
// consume the record; proposing again mints a new id.
package ops

import (
	"sync"
	"time"

	"github.com/hpungsan/gitdraft/internal/config"
	"github.com/hpungsan/gitdraft/internal/errors"
	"github.com/hpungsan/gitdraft/internal/gitrepo"
	"github.com/hpungsan/gitdraft/internal/store"
)

// Workflow holds the dependencies shared by all change operations. The
// commit-prompt toggle lives here rather than in a package global so
// independent Workflow instances (tests in particular) do not interfere.
type Workflow struct {
	store *store.Store
	git   gitrepo.Gateway
	cfg   *config.Config

	promptMu     sync.Mutex
	commitPrompt bool

	// Per-change-id locks serialize racing approve/reject calls on the
	// same id; the loser observes CHANGE_NOT_FOUND, never partial state.
	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

// NewWorkflow creates a Workflow. The commit-prompt toggle is seeded from
// config and mutated only through SetCommitPrompt.
func NewWorkflow(st *store.Store, git gitrepo.Gateway, cfg *config.Config) *Workflow {
	return &Workflow{
		store:        st,
		git:          git,
		cfg:          cfg,
		commitPrompt: cfg.CommitPromptEnabled(),
		locks:        make(map[string]*sync.Mutex),
	}
}

// Store exposes the backing record store (read paths: CLI listings, web).
func (w *Workflow) Store() *store.Store {
	return w.store
}

// resolveID resolves an explicit change id, falling back to the session's
// current pointer. Implicit resolution is a thin pre-step over the
// explicit-id code path, not a parallel implementation.
func (w *Workflow) resolveID(changeID, sessionID string) (string, error) {
	if changeID != "" {
		return changeID, nil
	}
	if id, ok := w.store.GetCurrent(sessionID); ok {
		return id, nil
	}
	return "", errors.NewNothingPending(sessionID)
}

func (w *Workflow) changeLock(id string) *sync.Mutex {
	w.lockMu.Lock()
	defer w.lockMu.Unlock()
	lock, ok := w.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		w.locks[id] = lock
	}
	return lock
}

func nowUnix() int64 {
	return time.Now().Unix()
}

// clearPointerIfCurrent removes the session pointer only when it still
// references id, so approving an older change by explicit id never
// disturbs a newer proposal's pointer.
func (w *Workflow) clearPointerIfCurrent(sessionID, id string) {
	if current, ok := w.store.GetCurrent(sessionID); ok && current == id {
		_ = w.store.ClearCurrent(sessionID)
	}
}

package ops

import (
	"os"
	"path/filepath"
	"testing"

	git "github.com/go-git/go-git/v5"

	"github.com/hpungsan/gitdraft/internal/config"
	"github.com/hpungsan/gitdraft/internal/gitrepo"
	"github.com/hpungsan/gitdraft/internal/store"
)

// testEnv bundles a workflow wired to a real git repository in a temp dir.
type testEnv struct {
	repoDir  string
	workflow *Workflow
	store    *store.Store
}

// newTestEnv creates a git repo with one committed file (tracked.txt) and
// a workflow with commit prompting disabled, so approvals auto-commit.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repoDir := t.TempDir()
	if _, err := git.PlainInit(repoDir, false); err != nil {
		t.Fatalf("git init: %v", err)
	}

	gateway := gitrepo.New(gitrepo.Signature{Name: "test", Email: "test@example.com"})

	tracked := filepath.Join(repoDir, "tracked.txt")
	if err := os.WriteFile(tracked, []byte("base\n"), 0o644); err != nil {
		t.Fatalf("write tracked file: %v", err)
	}
	if err := gateway.Stage(tracked); err != nil {
		t.Fatalf("stage: %v", err)
	}
	if _, err := gateway.Commit(tracked, "initial"); err != nil {
		t.Fatalf("commit: %v", err)
	}

	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}

	cfg := config.DefaultConfig()
	disabled := false
	cfg.CommitPrompt = &disabled

	return &testEnv{
		repoDir:  repoDir,
		workflow: NewWorkflow(st, gateway, cfg),
		store:    st,
	}
}

func (e *testEnv) path(name string) string {
	return filepath.Join(e.repoDir, name)
}

// stubGateway is a Gateway with injectable failures for testing the
// approval error paths.
type stubGateway struct {
	tracked    bool
	trackedErr error
	stageErr   error
	commitErr  error
	staged     []string
	committed  []string
}

func (s *stubGateway) IsTracked(path string) (bool, error) {
	return s.tracked, s.trackedErr
}

func (s *stubGateway) Stage(path string) error {
	if s.stageErr != nil {
		return s.stageErr
	}
	s.staged = append(s.staged, path)
	return nil
}

func (s *stubGateway) Commit(path, message string) (string, error) {
	if s.commitErr != nil {
		return "", s.commitErr
	}
	s.committed = append(s.committed, message)
	return "0123456789012345678901234567890123456789", nil
}

// newStubEnv creates a workflow over a stub gateway, commit prompting
// disabled.
func newStubEnv(t *testing.T, gw *stubGateway) (*testEnv, *stubGateway) {
	t.Helper()

	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}
	cfg := config.DefaultConfig()
	disabled := false
	cfg.CommitPrompt = &disabled

	return &testEnv{
		repoDir:  t.TempDir(),
		workflow: NewWorkflow(st, gw, cfg),
		store:    st,
	}, gw
}

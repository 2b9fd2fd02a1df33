package ops

import (
	"fmt"
	"os"
	"strings"
	"testing"

	git "github.com/go-git/go-git/v5"

	"github.com/hpungsan/gitdraft/internal/change"
	"github.com/hpungsan/gitdraft/internal/errors"
	"github.com/hpungsan/gitdraft/internal/store"
)

func TestApprove_ExplicitID_WritesStagesCommits(t *testing.T) {
	env := newTestEnv(t)

	proposed, err := env.workflow.Propose(ProposeInput{
		Path:        env.path("notes.txt"),
		Content:     "hello\n",
		Description: "add notes",
		SessionID:   "chat-1",
	})
	if err != nil {
		t.Fatalf("Propose failed: %v", err)
	}

	out, err := env.workflow.Approve(ApproveInput{
		ChangeID:  proposed.ChangeID,
		SessionID: "chat-1",
	})
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	if !out.Written || !out.Committed {
		t.Errorf("Written=%v Committed=%v, want both true", out.Written, out.Committed)
	}
	data, err := os.ReadFile(env.path("notes.txt"))
	if err != nil {
		t.Fatalf("read target: %v", err)
	}
	if string(data) != "hello\n" {
		t.Errorf("file content = %q, want %q", data, "hello\n")
	}
	if !strings.Contains(out.Message, "committed") {
		t.Errorf("message should report the commit: %q", out.Message)
	}

	// Committed with the description as message.
	repo, err := git.PlainOpen(env.repoDir)
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	head, err := repo.Head()
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		t.Fatalf("commit object: %v", err)
	}
	if !strings.Contains(commit.Message, "add notes") {
		t.Errorf("commit message = %q, want %q", commit.Message, "add notes")
	}

	// Record consumed, pointer cleared.
	if _, ok := env.store.Get(proposed.ChangeID); ok {
		t.Error("record should be consumed by approval")
	}
	if _, ok := env.store.GetCurrent("chat-1"); ok {
		t.Error("pointer should be cleared by approval")
	}
}

func TestApprove_ImplicitCurrent(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.workflow.Propose(ProposeInput{
		Path:        env.path("notes.txt"),
		Content:     "implicit\n",
		Description: "implicit approve",
		SessionID:   "chat-1",
	}); err != nil {
		t.Fatalf("Propose failed: %v", err)
	}

	out, err := env.workflow.Approve(ApproveInput{SessionID: "chat-1"})
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if out.Path != env.path("notes.txt") {
		t.Errorf("Path = %q, want the proposed target", out.Path)
	}
}

func TestApprove_NothingPending(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.workflow.Approve(ApproveInput{SessionID: "chat-without-changes"})
	if !errors.Is(err, errors.ErrNothingPending) {
		t.Fatalf("err = %v, want NOTHING_PENDING", err)
	}
}

func TestApprove_UnknownID(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.workflow.Approve(ApproveInput{
		ChangeID:  "01JUNKIDTHATNEVEREXISTED00",
		SessionID: "chat-1",
	})
	if !errors.Is(err, errors.ErrChangeNotFound) {
		t.Fatalf("err = %v, want CHANGE_NOT_FOUND", err)
	}
}

func TestApprove_PromptEnabled_StagesOnly(t *testing.T) {
	env := newTestEnv(t)
	env.workflow.SetCommitPrompt(true)

	proposed, err := env.workflow.Propose(ProposeInput{
		Path:        env.path("notes.txt"),
		Content:     "staged only\n",
		Description: "stage it",
		SessionID:   "chat-1",
	})
	if err != nil {
		t.Fatalf("Propose failed: %v", err)
	}

	out, err := env.workflow.Approve(ApproveInput{
		ChangeID:  proposed.ChangeID,
		SessionID: "chat-1",
	})
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	if !out.Written {
		t.Error("file should be written")
	}
	if out.Committed {
		t.Error("no commit should happen while prompting is enabled")
	}
	if !strings.Contains(out.Message, "separate commit step") {
		t.Errorf("message should say a commit step is still required: %q", out.Message)
	}
}

func TestApprove_CRLFConversion(t *testing.T) {
	env := newTestEnv(t)

	// Existing CRLF file, committed so it is tracked.
	crlf := env.path("dos.txt")
	if err := os.WriteFile(crlf, []byte("one\r\ntwo\r\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	gw := env.workflow.git
	if err := gw.Stage(crlf); err != nil {
		t.Fatalf("stage: %v", err)
	}
	if _, err := gw.Commit(crlf, "add dos file"); err != nil {
		t.Fatalf("commit: %v", err)
	}

	proposed, err := env.workflow.Propose(ProposeInput{
		Path:        crlf,
		Content:     "one\nthree\n",
		Description: "edit dos file",
		SessionID:   "chat-1",
	})
	if err != nil {
		t.Fatalf("Propose failed: %v", err)
	}
	if _, err := env.workflow.Approve(ApproveInput{ChangeID: proposed.ChangeID, SessionID: "chat-1"}); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	data, err := os.ReadFile(crlf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "one\r\nthree\r\n" {
		t.Errorf("content = %q, want CRLF preserved", data)
	}
}

func TestApprove_SurvivesRestart(t *testing.T) {
	env := newTestEnv(t)

	proposed, err := env.workflow.Propose(ProposeInput{
		Path:        env.path("notes.txt"),
		Content:     "restart\n",
		Description: "survive restart",
		SessionID:   "chat-1",
	})
	if err != nil {
		t.Fatalf("Propose failed: %v", err)
	}

	// Simulate a restart between propose and approve.
	env.store.DropCache()

	out, err := env.workflow.Approve(ApproveInput{SessionID: "chat-1"})
	if err != nil {
		t.Fatalf("Approve after restart failed: %v", err)
	}
	if out.ChangeID != proposed.ChangeID {
		t.Errorf("ChangeID = %q, want %q", out.ChangeID, proposed.ChangeID)
	}
	data, _ := os.ReadFile(env.path("notes.txt"))
	if string(data) != "restart\n" {
		t.Errorf("content = %q, want %q", data, "restart\n")
	}
}

func TestApprove_WriteFailureKeepsRecord(t *testing.T) {
	env := newTestEnv(t)

	// Propose into a subdirectory that does not exist yet, then block its
	// creation with a plain file of the same name.
	target := env.path("sub/notes.txt")
	proposed, err := env.workflow.Propose(ProposeInput{
		Path:        target,
		Content:     "blocked\n",
		Description: "blocked write",
		SessionID:   "chat-1",
	})
	if err != nil {
		t.Fatalf("Propose failed: %v", err)
	}
	if err := os.WriteFile(env.path("sub"), []byte("not a dir"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	_, err = env.workflow.Approve(ApproveInput{ChangeID: proposed.ChangeID, SessionID: "chat-1"})
	if !errors.Is(err, errors.ErrWriteFailed) {
		t.Fatalf("err = %v, want WRITE_FAILED", err)
	}

	// The proposal stays retryable: record and pointer intact.
	if _, ok := env.store.Get(proposed.ChangeID); !ok {
		t.Error("record must be retained after a write failure")
	}
	if id, ok := env.store.GetCurrent("chat-1"); !ok || id != proposed.ChangeID {
		t.Error("pointer must be retained after a write failure")
	}

	// Unblock and retry the same approval.
	if err := os.Remove(env.path("sub")); err != nil {
		t.Fatalf("remove blocker: %v", err)
	}
	if _, err := env.workflow.Approve(ApproveInput{ChangeID: proposed.ChangeID, SessionID: "chat-1"}); err != nil {
		t.Fatalf("retried Approve failed: %v", err)
	}
	data, _ := os.ReadFile(target)
	if string(data) != "blocked\n" {
		t.Errorf("content = %q after retry, want %q", data, "blocked\n")
	}
}

func TestApprove_StageFailureConsumesRecord(t *testing.T) {
	env, gw := newStubEnv(t, &stubGateway{tracked: true, stageErr: fmt.Errorf("index locked")})

	target := env.path("notes.txt")
	proposed, err := env.workflow.Propose(ProposeInput{
		Path:        target,
		Content:     "written anyway\n",
		Description: "partial",
		SessionID:   "chat-1",
	})
	if err != nil {
		t.Fatalf("Propose failed: %v", err)
	}

	_, err = env.workflow.Approve(ApproveInput{ChangeID: proposed.ChangeID, SessionID: "chat-1"})
	if !errors.Is(err, errors.ErrGitFailed) {
		t.Fatalf("err = %v, want GIT_FAILED", err)
	}

	// Partial success: write kept, record consumed, pointer cleared.
	data, readErr := os.ReadFile(target)
	if readErr != nil || string(data) != "written anyway\n" {
		t.Errorf("file write must not be rolled back, got %q, %v", data, readErr)
	}
	if _, ok := env.store.Get(proposed.ChangeID); ok {
		t.Error("record should be consumed after a git failure")
	}
	if _, ok := env.store.GetCurrent("chat-1"); ok {
		t.Error("pointer should be cleared after a git failure")
	}
	if len(gw.staged) != 0 {
		t.Errorf("stage stub should have rejected, staged = %v", gw.staged)
	}
}

func TestApprove_CommitFailureConsumesRecord(t *testing.T) {
	env, _ := newStubEnv(t, &stubGateway{tracked: true, commitErr: fmt.Errorf("nothing staged")})

	proposed, err := env.workflow.Propose(ProposeInput{
		Path:        env.path("notes.txt"),
		Content:     "x\n",
		Description: "commit fails",
		SessionID:   "chat-1",
	})
	if err != nil {
		t.Fatalf("Propose failed: %v", err)
	}

	_, err = env.workflow.Approve(ApproveInput{ChangeID: proposed.ChangeID, SessionID: "chat-1"})
	if !errors.Is(err, errors.ErrGitFailed) {
		t.Fatalf("err = %v, want GIT_FAILED", err)
	}
	if _, ok := env.store.Get(proposed.ChangeID); ok {
		t.Error("record should be consumed after a commit failure")
	}
}

func TestApprove_NonCurrentID_LeavesPointer(t *testing.T) {
	env := newTestEnv(t)

	first, err := env.workflow.Propose(ProposeInput{
		Path:        env.path("a.txt"),
		Content:     "a\n",
		Description: "first",
		SessionID:   "chat-1",
	})
	if err != nil {
		t.Fatalf("Propose failed: %v", err)
	}
	second, err := env.workflow.Propose(ProposeInput{
		Path:        env.path("b.txt"),
		Content:     "b\n",
		Description: "second",
		SessionID:   "chat-1",
	})
	if err != nil {
		t.Fatalf("Propose failed: %v", err)
	}

	// Approving the first by explicit id must not disturb the pointer,
	// which references the second.
	if _, err := env.workflow.Approve(ApproveInput{ChangeID: first.ChangeID, SessionID: "chat-1"}); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	id, ok := env.store.GetCurrent("chat-1")
	if !ok || id != second.ChangeID {
		t.Errorf("pointer = %q, %v; want untouched second id %q", id, ok, second.ChangeID)
	}
	if _, ok := env.store.Get(second.ChangeID); !ok {
		t.Error("second proposal should still be pending")
	}
}

func TestApprove_RecordFromDiskOnlyStore(t *testing.T) {
	// A record written by one process is approvable from another process
	// sharing the durable location.
	env := newTestEnv(t)

	proposed, err := env.workflow.Propose(ProposeInput{
		Path:        env.path("notes.txt"),
		Content:     "cross process\n",
		Description: "cross process",
		SessionID:   "chat-1",
	})
	if err != nil {
		t.Fatalf("Propose failed: %v", err)
	}

	freshStore, err := store.New(env.store.Dir())
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}
	rec, ok := freshStore.Get(proposed.ChangeID)
	if !ok {
		t.Fatal("fresh store should load the record from disk")
	}
	if rec.Kind != change.KindWrite {
		t.Errorf("Kind = %q, want write", rec.Kind)
	}
}

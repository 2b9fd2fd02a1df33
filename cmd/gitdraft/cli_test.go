package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	git "github.com/go-git/go-git/v5"

	"github.com/hpungsan/gitdraft/internal/config"
	"github.com/hpungsan/gitdraft/internal/gitrepo"
	"github.com/hpungsan/gitdraft/internal/ops"
	"github.com/hpungsan/gitdraft/internal/store"
)

// setupWorkflow creates a workflow over a temp git repo and temp store.
func setupWorkflow(t *testing.T) (*ops.Workflow, string) {
	t.Helper()

	repoDir := t.TempDir()
	if _, err := git.PlainInit(repoDir, false); err != nil {
		t.Fatalf("git init: %v", err)
	}

	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}

	gateway := gitrepo.New(gitrepo.Signature{Name: "test", Email: "test@example.com"})
	return ops.NewWorkflow(st, gateway, config.DefaultConfig()), repoDir
}

// runApp runs the CLI app with the given args, optionally piping stdin,
// and returns captured stdout.
func runApp(t *testing.T, workflow *ops.Workflow, stdin string, args ...string) (string, error) {
	t.Helper()

	app := newCLIApp(workflow)

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	oldStdin := os.Stdin
	if stdin != "" {
		stdinR, stdinW, _ := os.Pipe()
		os.Stdin = stdinR
		go func() {
			_, _ = stdinW.WriteString(stdin)
			stdinW.Close()
		}()
	}

	err := app.Run(append([]string{"gitdraft"}, args...))

	os.Stdin = oldStdin
	w.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	os.Stdout = oldStdout

	return buf.String(), err
}

// TestCLIPropose tests the propose command with stdin content.
func TestCLIPropose(t *testing.T) {
	workflow, repoDir := setupWorkflow(t)
	target := filepath.Join(repoDir, "notes.txt")

	out, err := runApp(t, workflow, "hello\n", "propose", "-d", "add notes", target)
	if err != nil {
		t.Fatalf("propose command failed: %v", err)
	}

	var output ops.ProposeOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}

	if output.ChangeID == "" {
		t.Error("expected non-empty change_id")
	}
	if output.Action != "creating" {
		t.Errorf("expected action=creating, got %s", output.Action)
	}
	if _, statErr := os.Stat(target); !os.IsNotExist(statErr) {
		t.Error("propose must not write the target file")
	}
}

// TestCLIApprove tests approving a proposed change by explicit id.
func TestCLIApprove(t *testing.T) {
	workflow, repoDir := setupWorkflow(t)
	target := filepath.Join(repoDir, "notes.txt")

	proposed, err := workflow.Propose(ops.ProposeInput{
		Path:        target,
		Content:     "hello\n",
		Description: "add notes",
		SessionID:   defaultSession,
	})
	if err != nil {
		t.Fatalf("propose: %v", err)
	}

	out, err := runApp(t, workflow, "", "approve", proposed.ChangeID)
	if err != nil {
		t.Fatalf("approve command failed: %v", err)
	}

	var output ops.ApproveOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}

	if !output.Written {
		t.Error("expected written=true")
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read target: %v", err)
	}
	if string(data) != "hello\n" {
		t.Errorf("content = %q, want %q", data, "hello\n")
	}
}

// TestCLIReject tests rejecting the session's current change.
func TestCLIReject(t *testing.T) {
	workflow, repoDir := setupWorkflow(t)
	target := filepath.Join(repoDir, "notes.txt")

	if _, err := workflow.Propose(ops.ProposeInput{
		Path:        target,
		Content:     "hello\n",
		Description: "to reject",
		SessionID:   defaultSession,
	}); err != nil {
		t.Fatalf("propose: %v", err)
	}

	if _, err := runApp(t, workflow, "", "reject"); err != nil {
		t.Fatalf("reject command failed: %v", err)
	}
	if _, statErr := os.Stat(target); !os.IsNotExist(statErr) {
		t.Error("rejected file must not exist")
	}
}

// TestCLIApproveNothingPending tests the error path.
func TestCLIApproveNothingPending(t *testing.T) {
	workflow, _ := setupWorkflow(t)

	_, err := runApp(t, workflow, "", "approve")
	if err == nil {
		t.Fatal("expected error for approve with nothing pending")
	}
}

// TestCLIPending tests the pending listing.
func TestCLIPending(t *testing.T) {
	workflow, repoDir := setupWorkflow(t)

	if _, err := workflow.Propose(ops.ProposeInput{
		Path:        filepath.Join(repoDir, "a.txt"),
		Content:     "a\n",
		Description: "first",
		SessionID:   "chat-1",
	}); err != nil {
		t.Fatalf("propose: %v", err)
	}

	out, err := runApp(t, workflow, "", "pending")
	if err != nil {
		t.Fatalf("pending command failed: %v", err)
	}

	var output ops.PendingOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if output.Total != 1 {
		t.Errorf("expected total=1, got %d", output.Total)
	}
}

// TestCLIPrompt tests the prompt show/set command.
func TestCLIPrompt(t *testing.T) {
	workflow, _ := setupWorkflow(t)

	if _, err := runApp(t, workflow, "", "prompt", "off"); err != nil {
		t.Fatalf("prompt off failed: %v", err)
	}
	if workflow.CommitPromptEnabled() {
		t.Error("expected prompting disabled")
	}

	out, err := runApp(t, workflow, "", "prompt")
	if err != nil {
		t.Fatalf("prompt failed: %v", err)
	}
	var state struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.Unmarshal([]byte(out), &state); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if state.Enabled {
		t.Error("expected enabled=false")
	}

	if _, err := runApp(t, workflow, "", "prompt", "sideways"); err == nil {
		t.Error("expected error for invalid prompt argument")
	}
}

// TestIsCLIMode tests CLI-vs-server mode detection.
func TestIsCLIMode(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{"no args", []string{"gitdraft"}, false},
		{"known subcommand", []string{"gitdraft", "pending"}, true},
		{"help flag", []string{"gitdraft", "--help"}, true},
		{"version flag", []string{"gitdraft", "-v"}, true},
		{"unknown arg", []string{"gitdraft", "frobnicate"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			os.Args = tt.args
			defer func() { os.Args = oldArgs }()

			if got := isCLIMode(); got != tt.expected {
				t.Errorf("isCLIMode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

// TestBaseDir tests the GITDRAFT_DIR override.
func TestBaseDir(t *testing.T) {
	t.Setenv("GITDRAFT_DIR", "/tmp/gitdraft-test")
	dir, err := baseDir()
	if err != nil {
		t.Fatalf("baseDir: %v", err)
	}
	if dir != "/tmp/gitdraft-test" {
		t.Errorf("baseDir = %q, want /tmp/gitdraft-test", dir)
	}
}

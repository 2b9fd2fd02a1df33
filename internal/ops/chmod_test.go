package ops

import (
	"os"
	"runtime"
	"strings"
	"testing"

	"github.com/hpungsan/gitdraft/internal/errors"
)

func TestChmod_AddExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on windows")
	}
	env := newTestEnv(t)

	out, err := env.workflow.Chmod(ChmodInput{Path: env.path("tracked.txt"), Mode: "a+x"})
	if err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}
	if !out.Changed {
		t.Error("Changed should be true")
	}
	if !strings.Contains(out.Message, "staged") {
		t.Errorf("message should report staging: %q", out.Message)
	}

	info, err := os.Stat(env.path("tracked.txt"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm()&0o111 == 0 {
		t.Error("executable bits should be set")
	}
}

func TestChmod_AlreadyExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on windows")
	}
	env := newTestEnv(t)

	path := env.path("tracked.txt")
	if err := os.Chmod(path, 0o755); err != nil {
		t.Fatalf("chmod: %v", err)
	}

	out, err := env.workflow.Chmod(ChmodInput{Path: path, Mode: "a+x"})
	if err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}
	if out.Changed {
		t.Error("already-executable file should be a no-op")
	}
	if !strings.Contains(out.Message, "already executable") {
		t.Errorf("message = %q", out.Message)
	}
}

func TestChmod_RemoveExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on windows")
	}
	env := newTestEnv(t)

	path := env.path("tracked.txt")
	if err := os.Chmod(path, 0o755); err != nil {
		t.Fatalf("chmod: %v", err)
	}

	out, err := env.workflow.Chmod(ChmodInput{Path: path, Mode: "a-x"})
	if err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}
	if !out.Changed {
		t.Error("Changed should be true")
	}

	info, _ := os.Stat(path)
	if info.Mode().Perm()&0o111 != 0 {
		t.Error("executable bits should be cleared")
	}
}

func TestChmod_Validation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.workflow.Chmod(ChmodInput{Path: env.path("tracked.txt"), Mode: "u+w"})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("unsupported mode: err = %v, want INVALID_REQUEST", err)
	}

	_, err = env.workflow.Chmod(ChmodInput{Path: env.path("missing.txt"), Mode: "a+x"})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("missing file: err = %v, want INVALID_REQUEST", err)
	}

	_, err = env.workflow.Chmod(ChmodInput{Mode: "a+x"})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("missing path: err = %v, want INVALID_REQUEST", err)
	}
}

package ops

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/gitdraft/internal/errors"
)

// ChmodInput contains parameters for the Chmod operation. Only a+x and
// a-x are supported because the executable bit is the only permission
// git tracks.
type ChmodInput struct {
	Path string
	Mode string // "a+x" or "a-x"
}

// ChmodOutput contains the result of the Chmod operation.
type ChmodOutput struct {
	Path    string `json:"path"`
	Mode    string `json:"mode"`
	Changed bool   `json:"changed"`
	Message string `json:"message"`
}

// Chmod toggles the executable bit on a file and stages the change. It
// applies immediately and does not go through the proposal workflow;
// permission flips carry no content to diff.
func (w *Workflow) Chmod(input ChmodInput) (*ChmodOutput, error) {
	if input.Path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}
	if input.Mode != "a+x" && input.Mode != "a-x" {
		return nil, errors.NewInvalidRequest(
			fmt.Sprintf("unsupported chmod mode: %s (only a+x and a-x are supported)", input.Mode))
	}

	absPath, err := filepath.Abs(input.Path)
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("file does not exist: %s", absPath))
	}

	executable := info.Mode().Perm()&0o100 != 0
	if input.Mode == "a+x" && executable {
		return &ChmodOutput{
			Path:    absPath,
			Mode:    input.Mode,
			Message: fmt.Sprintf("File %s is already executable.", absPath),
		}, nil
	}
	if input.Mode == "a-x" && !executable {
		return &ChmodOutput{
			Path:    absPath,
			Mode:    input.Mode,
			Message: fmt.Sprintf("File %s is already non-executable.", absPath),
		}, nil
	}

	perm := info.Mode().Perm()
	if input.Mode == "a+x" {
		perm |= 0o111
	} else {
		perm &^= 0o111
	}
	if err := os.Chmod(absPath, perm); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("chmod %s: %w", absPath, err))
	}

	if err := w.git.Stage(absPath); err != nil {
		return nil, errors.NewGitFailed(absPath, err)
	}

	action := "Made file executable"
	if input.Mode == "a-x" {
		action = "Removed executable permission"
	}
	return &ChmodOutput{
		Path:    absPath,
		Mode:    input.Mode,
		Changed: true,
		Message: fmt.Sprintf("%s: %s. Changes staged.", action, absPath),
	}, nil
}

package ops

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/gitdraft/internal/change"
	"github.com/hpungsan/gitdraft/internal/diff"
	"github.com/hpungsan/gitdraft/internal/errors"
)

// ProposeInput contains parameters for the Propose operation.
type ProposeInput struct {
	Path        string      // absolute path of the file to mutate
	Content     string      // full proposed content
	Description string      // short summary, becomes the commit message
	SessionID   string      // conversational session scoping the pointer
	Kind        change.Kind // default: "write"
}

// ProposeOutput contains the result of the Propose operation.
type ProposeOutput struct {
	ChangeID string `json:"change_id"`
	Action   string `json:"action"` // "creating" or "updating"
	Diff     string `json:"diff"`
	Message  string `json:"message"`
}

// Propose computes a diff preview for the requested mutation, persists it
// as a pending change record, and marks it as the session's current
// change. The target file is not touched.
func (w *Workflow) Propose(input ProposeInput) (*ProposeOutput, error) {
	if input.Path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}
	if input.SessionID == "" {
		return nil, errors.NewInvalidRequest("session_id is required")
	}
	if input.Kind == "" {
		input.Kind = change.KindWrite
	}
	if input.Kind != change.KindWrite {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("unsupported change kind: %s", input.Kind))
	}

	absPath, err := filepath.Abs(input.Path)
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	info, statErr := os.Stat(absPath)
	exists := statErr == nil
	if exists && info.IsDir() {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("path is a directory: %s", absPath))
	}
	if err := checkContainingDir(absPath); err != nil {
		return nil, err
	}

	// The gateway check doubles as repository detection: it fails when
	// the path is outside any git repository, and existing files must
	// already be tracked before this system agrees to mutate them.
	tracked, err := w.git.IsTracked(absPath)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	if exists && !tracked {
		return nil, errors.NewNotTracked(absPath)
	}

	oldContent := ""
	lineEnding := change.DefaultLineEnding(change.LineEnding(w.cfg.DefaultLineEnding))
	if exists {
		data, err := os.ReadFile(absPath)
		if err != nil {
			return nil, errors.NewInternal(fmt.Errorf("failed to read %s: %w", absPath, err))
		}
		oldContent = string(data)
		if detected, err := change.DetectLineEnding(absPath); err == nil {
			lineEnding = detected
		}
	}

	// Diff the LF-normalized forms; the stored convention is reapplied
	// only at write time.
	diffText, err := diff.Unified(
		change.ApplyLineEnding(oldContent, change.LineEndingLF),
		change.ApplyLineEnding(input.Content, change.LineEndingLF),
		filepath.Base(absPath),
	)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	rec := &change.Record{
		Kind:        input.Kind,
		TargetPath:  absPath,
		Payload:     input.Content,
		Description: input.Description,
		SessionID:   input.SessionID,
		LineEnding:  lineEnding,
		CreatedAt:   nowUnix(),
	}
	id, err := w.store.Put(rec)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := w.store.SetCurrent(input.SessionID, id); err != nil {
		return nil, errors.NewInternal(err)
	}

	action := "updating"
	if !exists {
		action = "creating"
	}

	message := fmt.Sprintf(
		"Proposed changes for %s %s:\n\n%s\n\nChange ID: %s\n"+
			"Approve with change_approve or discard with change_reject (the id may be omitted while this is the session's current change).",
		action, absPath, diffText, id,
	)

	return &ProposeOutput{
		ChangeID: id,
		Action:   action,
		Diff:     diffText,
		Message:  message,
	}, nil
}

// checkContainingDir verifies the nearest existing ancestor of path is a
// directory, i.e. parent directories can be created on approval.
func checkContainingDir(path string) error {
	dir := filepath.Dir(path)
	for {
		info, err := os.Stat(dir)
		if err == nil {
			if !info.IsDir() {
				return errors.NewInvalidRequest(fmt.Sprintf("not a directory: %s", dir))
			}
			return nil
		}
		if !os.IsNotExist(err) {
			return errors.NewInvalidRequest(fmt.Sprintf("cannot access %s: %v", dir, err))
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return errors.NewInvalidRequest(fmt.Sprintf("cannot access %s", dir))
		}
		dir = parent
	}
}

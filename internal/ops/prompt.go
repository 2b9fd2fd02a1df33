package ops

// PromptOutput reports the commit-prompt toggle state.
type PromptOutput struct {
	Enabled bool   `json:"enabled"`
	Message string `json:"message"`
}

// SetCommitPrompt enables or disables commit prompting process-wide and
// returns a confirmation. Last write wins; no persistence beyond the
// process lifetime.
func (w *Workflow) SetCommitPrompt(enabled bool) *PromptOutput {
	w.promptMu.Lock()
	w.commitPrompt = enabled
	w.promptMu.Unlock()

	message := "Commit prompting disabled. Changes will be committed automatically after approval."
	if enabled {
		message = "Commit prompting enabled. You will be asked to confirm before changes are committed."
	}
	return &PromptOutput{Enabled: enabled, Message: message}
}

// CommitPromptEnabled reports whether commit prompting is enabled.
func (w *Workflow) CommitPromptEnabled() bool {
	w.promptMu.Lock()
	defer w.promptMu.Unlock()
	return w.commitPrompt
}

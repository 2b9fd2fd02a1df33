package mcp

import "github.com/mark3labs/mcp-go/mcp"

var proposeToolDef = mcp.NewTool("change_propose",
	mcp.WithDescription("Propose a whole-file write as a reviewable diff. "+
		"Nothing is written to disk until the change is approved. "+
		"Existing files must already be tracked by git; new files may be created anywhere inside the repository."),
	mcp.WithString("path", mcp.Required(),
		mcp.Description("Absolute path of the file to write")),
	mcp.WithString("content", mcp.Required(),
		mcp.Description("Full proposed file content")),
	mcp.WithString("description", mcp.Required(),
		mcp.Description("Short summary of the change; used as the commit message")),
	mcp.WithString("session_id", mcp.Required(),
		mcp.Description("Identifier of the conversational session making the proposal")),
)

var approveToolDef = mcp.NewTool("change_approve",
	mcp.WithDescription("Apply a pending change: write the file, stage it, and commit unless commit prompting is enabled. "+
		"Omit change_id to approve the session's current change."),
	mcp.WithString("change_id",
		mcp.Description("Identifier returned by change_propose; defaults to the session's current change")),
	mcp.WithString("session_id", mcp.Required(),
		mcp.Description("Identifier of the conversational session")),
)

var rejectToolDef = mcp.NewTool("change_reject",
	mcp.WithDescription("Discard a pending change without touching the filesystem. "+
		"Omit change_id to reject the session's current change."),
	mcp.WithString("change_id",
		mcp.Description("Identifier returned by change_propose; defaults to the session's current change")),
	mcp.WithString("session_id", mcp.Required(),
		mcp.Description("Identifier of the conversational session")),
)

var currentToolDef = mcp.NewTool("change_current",
	mcp.WithDescription("Report the session's current pending change, or clear the pointer without discarding the record."),
	mcp.WithString("session_id", mcp.Required(),
		mcp.Description("Identifier of the conversational session")),
	mcp.WithBoolean("clear",
		mcp.Description("Clear the pointer instead of reading it")),
)

var pendingToolDef = mcp.NewTool("change_pending",
	mcp.WithDescription("List all pending changes across sessions, newest first."),
)

var setCommitPromptToolDef = mcp.NewTool("change_set_commit_prompt",
	mcp.WithDescription("Enable or disable commit prompting. When enabled, approvals stage only and a separate commit step is required; "+
		"when disabled, approvals commit automatically."),
	mcp.WithBoolean("enabled", mcp.Required(),
		mcp.Description("Whether to prompt before committing")),
)

var commitPromptToolDef = mcp.NewTool("change_commit_prompt",
	mcp.WithDescription("Report whether commit prompting is currently enabled."),
)

var chmodToolDef = mcp.NewTool("file_chmod",
	mcp.WithDescription("Toggle the executable bit on a file and stage the change. "+
		"Only a+x and a-x are supported, because the executable bit is the only permission git tracks."),
	mcp.WithString("path", mcp.Required(),
		mcp.Description("Absolute path of the file to modify")),
	mcp.WithString("mode", mcp.Required(),
		mcp.Description("Either a+x or a-x")),
)

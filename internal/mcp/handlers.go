package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/gitdraft/internal/errors"
	"github.com/hpungsan/gitdraft/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	workflow *ops.Workflow
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(workflow *ops.Workflow) *Handlers {
	return &Handlers{workflow: workflow}
}

// Request types for each tool

// ProposeRequest represents the arguments for change_propose.
type ProposeRequest struct {
	Path        string `json:"path"`
	Content     string `json:"content"`
	Description string `json:"description"`
	SessionID   string `json:"session_id"`
}

// ApproveRequest represents the arguments for change_approve.
type ApproveRequest struct {
	ChangeID  string `json:"change_id,omitempty"`
	SessionID string `json:"session_id"`
}

// RejectRequest represents the arguments for change_reject.
type RejectRequest struct {
	ChangeID  string `json:"change_id,omitempty"`
	SessionID string `json:"session_id"`
}

// CurrentRequest represents the arguments for change_current.
type CurrentRequest struct {
	SessionID string `json:"session_id"`
	Clear     bool   `json:"clear,omitempty"`
}

// SetCommitPromptRequest represents the arguments for change_set_commit_prompt.
type SetCommitPromptRequest struct {
	Enabled *bool `json:"enabled"`
}

// ChmodRequest represents the arguments for file_chmod.
type ChmodRequest struct {
	Path string `json:"path"`
	Mode string `json:"mode"`
}

// Handler implementations

// HandlePropose handles the change_propose tool call.
func (h *Handlers) HandlePropose(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ProposeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.workflow.Propose(ops.ProposeInput{
		Path:        input.Path,
		Content:     input.Content,
		Description: input.Description,
		SessionID:   input.SessionID,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleApprove handles the change_approve tool call.
func (h *Handlers) HandleApprove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ApproveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.workflow.Approve(ops.ApproveInput{
		ChangeID:  input.ChangeID,
		SessionID: input.SessionID,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleReject handles the change_reject tool call.
func (h *Handlers) HandleReject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RejectRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.workflow.Reject(ops.RejectInput{
		ChangeID:  input.ChangeID,
		SessionID: input.SessionID,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleCurrent handles the change_current tool call.
func (h *Handlers) HandleCurrent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CurrentRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.workflow.Current(ops.CurrentInput{
		SessionID: input.SessionID,
		Clear:     input.Clear,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandlePending handles the change_pending tool call.
func (h *Handlers) HandlePending(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := h.workflow.Pending()
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSetCommitPrompt handles the change_set_commit_prompt tool call.
func (h *Handlers) HandleSetCommitPrompt(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SetCommitPromptRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Enabled == nil {
		return errorResult(errors.NewInvalidRequest("enabled is required")), nil
	}

	return successResult(h.workflow.SetCommitPrompt(*input.Enabled))
}

// HandleCommitPrompt handles the change_commit_prompt tool call.
func (h *Handlers) HandleCommitPrompt(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(map[string]bool{"enabled": h.workflow.CommitPromptEnabled()})
}

// HandleChmod handles the file_chmod tool call.
func (h *Handlers) HandleChmod(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ChmodRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.workflow.Chmod(ops.ChmodInput{
		Path: input.Path,
		Mode: input.Mode,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if dErr, ok := err.(*errors.DraftError); ok {
		errorObj := map[string]any{
			"code":    dErr.Code,
			"message": dErr.Message,
			"status":  dErr.Status,
		}
		if dErr.Code != errors.ErrInternal && dErr.Details != nil {
			errorObj["details"] = dErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}

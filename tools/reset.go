package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ResetArgs defines the input parameters for the vproject_reset tool.
type ResetArgs struct{}

// ResetFunc discards the current session and returns the new session id and the number
// of files the fresh project starts with (non-zero when a directory is mirrored).
// It is provided by main.go so the mirror can be reloaded.
type ResetFunc func() (sessionID string, fileCount int, elapsed string, err error)

// ResetHandler holds the dependencies for the reset tool.
type ResetHandler struct {
	DoReset ResetFunc
	Logger  *slog.Logger
}

// Handle processes a vproject_reset request.
func (h *ResetHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ResetArgs) (*mcp.CallToolResult, any, error) {
	h.Logger.Info("vproject_reset started")

	sessionID, fileCount, elapsed, err := h.DoReset()
	if err != nil {
		h.Logger.Error("vproject_reset failed", "error", err)
		return errorResult("Reset error: %v", err), nil, nil
	}

	h.Logger.Info("vproject_reset complete",
		"session", sessionID,
		"files", fileCount,
		"elapsed", elapsed,
	)

	output := fmt.Sprintf("Reset complete: session %s, %d files, in %s", sessionID, fileCount, elapsed)
	return textResult(output), nil, nil
}

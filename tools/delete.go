package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lexandro/vproject-mcp/project"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// DeleteArgs defines the input parameters for the vproject_delete tool.
type DeleteArgs struct {
	Path string `json:"path" jsonschema:"Project path to delete"`
}

// DeleteHandler holds the dependencies for the delete tool.
// OnDelete, when set, is called with the canonical path of every deleted file.
type DeleteHandler struct {
	Project  *project.Project
	OnDelete func(path string)
	Logger   *slog.Logger
}

// Handle processes a vproject_delete request.
// Deleting a file other files import succeeds; the broken imports surface on validation.
func (h *DeleteHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args DeleteArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.Path == "" {
		h.Logger.Warn("vproject_delete called with empty path")
		return errorResult("Error: path parameter is required"), nil, nil
	}

	importers, err := h.Project.Importers(args.Path)
	if err != nil {
		return errorResult("Delete rejected: %v", err), nil, nil
	}

	existed, err := h.Project.DeleteFile(args.Path)
	if err != nil {
		return errorResult("Delete rejected: %v", err), nil, nil
	}
	if !existed {
		h.Logger.Info("vproject_delete file not found", "path", args.Path)
		return errorResult("File not found in project: %s", args.Path), nil, nil
	}

	if h.OnDelete != nil {
		if canonical, err := h.Project.Normalize(args.Path); err == nil {
			h.OnDelete(canonical)
		}
	}

	h.Logger.Info("vproject_delete", "path", args.Path, "importers", len(importers), "elapsed", time.Since(start))

	output := fmt.Sprintf("Deleted %s", args.Path)
	if len(importers) > 0 {
		output += fmt.Sprintf("\nStill imported by: %s", strings.Join(importers, ", "))
	}
	return textResult(output), nil, nil
}

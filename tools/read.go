package tools

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/lexandro/vproject-mcp/project"
	"github.com/lexandro/vproject-mcp/vfs"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ReadArgs defines the input parameters for the vproject_read tool.
type ReadArgs struct {
	Path string `json:"path" jsonschema:"Project path to read (e.g. /App.jsx)"`
}

// ReadHandler holds the dependencies for the read tool.
type ReadHandler struct {
	Project *project.Project
	Logger  *slog.Logger
}

// Handle processes a vproject_read request.
func (h *ReadHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ReadArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.Path == "" {
		h.Logger.Warn("vproject_read called with empty path")
		return errorResult("Error: path parameter is required"), nil, nil
	}

	record, err := h.Project.ReadFile(args.Path)
	if errors.Is(err, vfs.ErrNotFound) {
		h.Logger.Info("vproject_read file not found", "path", args.Path)
		return errorResult("File not found in project: %s", args.Path), nil, nil
	}
	if err != nil {
		return errorResult("Read error: %v", err), nil, nil
	}

	h.Logger.Info("vproject_read", "path", record.Path, "version", record.Version, "elapsed", time.Since(start))

	return textResult(FormatFileContent(record)), nil, nil
}

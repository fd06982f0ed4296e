package tools

import (
	"context"
	"log/slog"
	"time"

	"github.com/lexandro/vproject-mcp/project"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// FilesArgs defines the input parameters for the vproject_files tool.
type FilesArgs struct {
	Pattern    string `json:"pattern,omitempty" jsonschema:"Glob pattern to match paths (e.g. components/**/*.jsx). Lists every file when omitted"`
	NameOnly   bool   `json:"nameOnly,omitempty" jsonschema:"If true return only file paths without metadata"`
	MaxResults int    `json:"maxResults,omitempty" jsonschema:"Maximum number of results for pattern searches (default 50)"`
}

// FilesHandler holds the dependencies for the files tool.
type FilesHandler struct {
	Project *project.Project
	Logger  *slog.Logger
}

// Handle processes a vproject_files request.
func (h *FilesHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args FilesArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.Pattern == "" {
		records := h.Project.Files()
		h.Logger.Info("vproject_files", "results", len(records), "elapsed", time.Since(start))
		return textResult(FormatFileResults(records, args.NameOnly)), nil, nil
	}

	records, err := h.Project.Glob(args.Pattern, args.MaxResults)
	if err != nil {
		h.Logger.Error("vproject_files failed", "pattern", args.Pattern, "error", err)
		return errorResult("Search error: %v", err), nil, nil
	}

	h.Logger.Info("vproject_files",
		"pattern", args.Pattern,
		"results", len(records),
		"elapsed", time.Since(start),
	)

	return textResult(FormatFileResults(records, args.NameOnly)), nil, nil
}

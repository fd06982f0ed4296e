package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lexandro/vproject-mcp/project"
	"github.com/lexandro/vproject-mcp/vfs"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// WriteArgs defines the input parameters for the vproject_write tool.
type WriteArgs struct {
	Path    string `json:"path" jsonschema:"Project path to write (e.g. /App.jsx or @/components/Button.jsx)"`
	Content string `json:"content" jsonschema:"Full file content. Overwrites any existing file at the path"`
	Kind    string `json:"kind,omitempty" jsonschema:"File kind: component, module or asset. Inferred from the extension when omitted"`
}

// WriteHandler holds the dependencies for the write tool.
type WriteHandler struct {
	Project *project.Project
	Logger  *slog.Logger
}

// Handle processes a vproject_write request.
func (h *WriteHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args WriteArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.Path == "" {
		h.Logger.Warn("vproject_write called with empty path")
		return errorResult("Error: path parameter is required"), nil, nil
	}

	kind, err := vfs.ParseKind(args.Kind)
	if err != nil {
		return errorResult("Error: %v", err), nil, nil
	}

	record, err := h.Project.WriteFile(args.Path, args.Content, kind)
	if err != nil {
		h.Logger.Warn("vproject_write rejected", "path", args.Path, "error", err)
		return errorResult("Write rejected: %v", err), nil, nil
	}

	// Unresolved imports are expected while a project is being generated; report them as hints
	var pending []string
	if edges, err := h.Project.EdgesFrom(record.Path); err == nil {
		for _, edge := range edges {
			if edge.Unresolved() {
				pending = append(pending, edge.Specifier)
			}
		}
	}

	h.Logger.Info("vproject_write",
		"path", record.Path,
		"kind", record.Kind,
		"version", record.Version,
		"size", record.SizeBytes,
		"pendingImports", len(pending),
		"elapsed", time.Since(start),
	)

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Wrote %s (%s, v%d, %d lines, %s)",
		record.Path, record.Kind, record.Version, record.LineCount, formatFileSize(record.SizeBytes)))
	if len(pending) > 0 {
		builder.WriteString(fmt.Sprintf("\nImports not yet in the project: %s", strings.Join(pending, ", ")))
	}

	return textResult(builder.String()), nil, nil
}

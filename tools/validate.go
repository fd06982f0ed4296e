package tools

import (
	"context"
	"log/slog"
	"time"

	"github.com/lexandro/vproject-mcp/project"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ValidateArgs defines the input parameters for the vproject_validate tool.
type ValidateArgs struct {
	Entrypoint      string `json:"entrypoint,omitempty" jsonschema:"Override the entrypoint path for this run (default from server config)"`
	SkipUnreachable bool   `json:"skipUnreachable,omitempty" jsonschema:"If true do not report files unreachable from the entrypoint"`
}

// ValidateHandler holds the dependencies for the validate tool.
type ValidateHandler struct {
	Project *project.Project
	Logger  *slog.Logger
}

// Handle processes a vproject_validate request. Findings are returned as data;
// the result is flagged as an error only when the request itself is malformed.
func (h *ValidateHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ValidateArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	cfg := h.Project.Config().Validation
	if args.Entrypoint != "" {
		entrypoint, err := h.Project.Normalize(args.Entrypoint)
		if err != nil {
			return errorResult("Error: %v", err), nil, nil
		}
		cfg.EntrypointPath = entrypoint
	}
	if args.SkipUnreachable {
		cfg.ReportUnreachable = false
	}

	report := h.Project.ValidateWith(cfg)

	h.Logger.Info("vproject_validate",
		"entrypoint", report.Entrypoint,
		"files", report.FileCount,
		"diagnostics", len(report.Diagnostics),
		"passed", report.Passed(),
		"elapsed", time.Since(start),
	)

	return textResult(FormatReport(report)), nil, nil
}

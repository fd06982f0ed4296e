package tools

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/lexandro/vproject-mcp/project"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Graph query modes accepted by vproject_graph.
const (
	GraphModeEdges     = "edges"
	GraphModeImporters = "importers"
	GraphModeReachable = "reachable"
	GraphModeCycles    = "cycles"
)

// GraphArgs defines the input parameters for the vproject_graph tool.
type GraphArgs struct {
	Mode string `json:"mode,omitempty" jsonschema:"One of edges, importers, reachable, cycles (default edges)"`
	Path string `json:"path,omitempty" jsonschema:"Project path the query starts from. Required for importers and reachable; edges lists every import when omitted"`
}

// GraphHandler holds the dependencies for the graph tool.
type GraphHandler struct {
	Project *project.Project
	Logger  *slog.Logger
}

// Handle processes a vproject_graph request.
func (h *GraphHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args GraphArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	mode := strings.ToLower(strings.TrimSpace(args.Mode))
	if mode == "" {
		mode = GraphModeEdges
	}

	var output string
	switch mode {
	case GraphModeEdges:
		if args.Path == "" {
			output = FormatEdges(h.Project.AllEdges())
			break
		}
		edges, err := h.Project.EdgesFrom(args.Path)
		if err != nil {
			return errorResult("Graph error: %v", err), nil, nil
		}
		output = FormatEdges(edges)

	case GraphModeImporters:
		if args.Path == "" {
			return errorResult("Error: path parameter is required for mode %s", mode), nil, nil
		}
		importers, err := h.Project.Importers(args.Path)
		if err != nil {
			return errorResult("Graph error: %v", err), nil, nil
		}
		output = FormatPathList("Importers of "+args.Path, importers)

	case GraphModeReachable:
		if args.Path == "" {
			return errorResult("Error: path parameter is required for mode %s", mode), nil, nil
		}
		reachable, err := h.Project.ReachableFrom(args.Path)
		if err != nil {
			return errorResult("Graph error: %v", err), nil, nil
		}
		output = FormatPathList("Reachable from "+args.Path, reachable)

	case GraphModeCycles:
		output = FormatCycles(h.Project.Cycles())

	default:
		return errorResult("Error: unknown mode %q (want edges, importers, reachable or cycles)", args.Mode), nil, nil
	}

	h.Logger.Info("vproject_graph", "mode", mode, "path", args.Path, "elapsed", time.Since(start))

	return textResult(output), nil, nil
}

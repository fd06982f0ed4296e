package server

import (
	"github.com/lexandro/vproject-mcp/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Name and Version identify the server to MCP clients.
const (
	Name    = "vproject-mcp"
	Version = "0.1.0"
)

// Handlers bundles the tool handlers registered on the server.
type Handlers struct {
	Write    *tools.WriteHandler
	Read     *tools.ReadHandler
	Delete   *tools.DeleteHandler
	Files    *tools.FilesHandler
	Search   *tools.SearchHandler
	Validate *tools.ValidateHandler
	Graph    *tools.GraphHandler
	Status   *tools.StatusHandler
	Reset    *tools.ResetHandler
}

// Setup creates and configures the MCP server with all tool registrations.
func Setup(handlers Handlers) *mcp.Server {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    Name,
			Version: Version,
		},
		&mcp.ServerOptions{
			Instructions: `This server holds a virtual front-end project in memory. Files are written one at a time while the project is generated; nothing touches the disk.

Rules of the project:
- /App.jsx is the entrypoint and must default-export a component. Write it first.
- Local imports use the @/ alias (e.g. import Button from '@/components/Button') or relative paths. Extensions may be omitted.
- HTML files are not allowed.

Workflow:
- Use vproject_write to create or overwrite a file. Unresolved imports are reported as hints, not errors.
- Use vproject_validate when a batch of files is done. Fix every [error] finding; [info] findings are advisory.
- Use vproject_graph to inspect imports, importers, reachability and cycles.
- Use vproject_read, vproject_files and vproject_search instead of keeping file contents in context.`,
		},
	)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "vproject_write",
		Description: `Create or overwrite a project file. Paths may be absolute (/components/Button.jsx), aliased (@/components/Button.jsx) or relative to the root.

Kind is inferred from the extension when omitted: .jsx/.tsx are components, .js/.ts modules, anything else an asset.`,
	}, handlers.Write.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "vproject_read",
		Description: `Read a project file. Returns numbered lines (format: "N│ content") with kind and version.`,
	}, handlers.Read.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "vproject_delete",
		Description: "Delete a project file. Files that still import it are listed; their imports show up as unresolved on the next validation. In mirror mode the disk copy is not touched and is only reloaded once it changes on disk.",
	}, handlers.Delete.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "vproject_files",
		Description: `List project files, optionally filtered by glob pattern.

Pattern examples:
  - "**/*.jsx" - all JSX files
  - "components/**" - everything under /components
  - "*.js" - JS files in the root only`,
	}, handlers.Files.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "vproject_search",
		Description: `Search file contents using full-text indexed search.

Query formats:
  - Plain text: word-level matching (e.g., "useState")
  - "quoted text": exact phrase matching
  - /regex/: regular expression matching (e.g., "/export\s+default/")

Filtering:
  - filePath: search a single file. Overrides fileGlob.
  - fileGlob: glob pattern over paths (e.g., "components/**/*.jsx").
  - kind: component, module or asset.`,
	}, handlers.Search.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "vproject_validate",
		Description: `Check the project: entrypoint present and a component with a default export, no disallowed files, every local import resolves, no import cycles, and every script reachable from the entrypoint.

Findings are data. The run PASSES when only [info] findings remain.`,
	}, handlers.Validate.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "vproject_graph",
		Description: `Query the import graph.

Modes:
  - edges: imports of path, or of every file when path is omitted
  - importers: files importing path
  - reachable: files reachable from path, including itself
  - cycles: every import cycle`,
	}, handlers.Graph.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "vproject_status",
		Description: "Show project status: session, file count, imports, cycles, kinds, languages, memory usage and uptime.",
	}, handlers.Status.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "vproject_reset",
		Description: "Discard every file and start a new session. When a directory is mirrored, it is loaded again.",
	}, handlers.Reset.Handle)

	return mcpServer
}

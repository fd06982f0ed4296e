package tools

import (
	"fmt"
	"strings"

	"github.com/lexandro/vproject-mcp/resolve"
	"github.com/lexandro/vproject-mcp/validate"
	"github.com/lexandro/vproject-mcp/vfs"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// textResult wraps plain text into a successful tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// errorResult wraps a message into a tool result flagged as an error.
func errorResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

// FormatSearchResults formats content search results as human-readable text.
// Groups matches by file with line numbers and optional context.
func FormatSearchResults(results []vfs.ContentSearchResult, totalMatches int) string {
	if len(results) == 0 {
		return "No matches found."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Found %d matches in %d files:\n\n", totalMatches, len(results)))

	for i, result := range results {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(fmt.Sprintf("── %s (%s) ──\n", result.Path, result.Kind))

		for _, match := range result.Matches {
			for _, ctxLine := range match.ContextBefore {
				builder.WriteString(fmt.Sprintf("  %s\n", ctxLine))
			}
			builder.WriteString(fmt.Sprintf("  %d: %s\n", match.LineNumber, match.LineText))
			for _, ctxLine := range match.ContextAfter {
				builder.WriteString(fmt.Sprintf("  %s\n", ctxLine))
			}
		}
	}

	return builder.String()
}

// FormatFileResults formats a file listing as human-readable text.
func FormatFileResults(records []vfs.FileRecord, nameOnly bool) string {
	if len(records) == 0 {
		return "No files matched."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Found %d files:\n\n", len(records)))

	for _, record := range records {
		if nameOnly {
			builder.WriteString(record.Path)
			builder.WriteString("\n")
			continue
		}
		builder.WriteString(fmt.Sprintf("  %s  (%s, %s, %s, %d lines, v%d)\n",
			record.Path,
			record.Kind,
			record.Language,
			formatFileSize(record.SizeBytes),
			record.LineCount,
			record.Version,
		))
	}

	return builder.String()
}

// FormatFileContent formats a record's content with line numbers.
// Output format: header line with path, kind, version and line count, followed by numbered lines.
func FormatFileContent(record vfs.FileRecord) string {
	lines := strings.Split(record.Content, "\n")
	lineCount := len(lines)

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("── %s (%s, v%d, %d lines) ──\n", record.Path, record.Kind, record.Version, lineCount))

	width := len(fmt.Sprintf("%d", lineCount))
	for i, line := range lines {
		builder.WriteString(fmt.Sprintf("%*d│ %s\n", width, i+1, line))
	}

	return builder.String()
}

// FormatReport formats a validation report. Blocking findings come first in report order,
// informational ones are marked as such.
func FormatReport(report validate.Report) string {
	var builder strings.Builder

	status := "PASSED"
	if !report.Passed() {
		status = "FAILED"
	}
	builder.WriteString(fmt.Sprintf("Validation %s: %d files, %d imports, entrypoint %s\n",
		status, report.FileCount, report.EdgeCount, report.Entrypoint))

	if len(report.Diagnostics) == 0 {
		builder.WriteString("No diagnostics.\n")
		return builder.String()
	}

	builder.WriteString("\n")
	for _, d := range report.Diagnostics {
		marker := "error"
		if !d.Blocking() {
			marker = "info"
		}
		builder.WriteString(fmt.Sprintf("  [%s] %s: %s\n", marker, d.Kind, d.Message))
	}

	return builder.String()
}

// FormatEdges formats import edges, one per line.
func FormatEdges(edges []resolve.ImportEdge) string {
	if len(edges) == 0 {
		return "No imports."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("%d imports:\n\n", len(edges)))
	for _, edge := range edges {
		builder.WriteString(fmt.Sprintf("  %s  %q -> %s\n", edge.From, edge.Specifier, edgeTarget(edge)))
	}
	return builder.String()
}

func edgeTarget(edge resolve.ImportEdge) string {
	switch {
	case edge.External:
		return "(external)"
	case edge.Err != nil:
		return fmt.Sprintf("(unresolved: %v)", edge.Err)
	case edge.To == "":
		return "(unresolved)"
	default:
		return edge.To
	}
}

// FormatCycles formats import cycles with the closing edge written out.
func FormatCycles(cycles [][]string) string {
	if len(cycles) == 0 {
		return "No import cycles."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("%d import cycles:\n\n", len(cycles)))
	for _, cycle := range cycles {
		builder.WriteString(fmt.Sprintf("  %s -> %s\n", strings.Join(cycle, " -> "), cycle[0]))
	}
	return builder.String()
}

// FormatPathList formats a plain list of paths under a title.
func FormatPathList(title string, paths []string) string {
	if len(paths) == 0 {
		return fmt.Sprintf("%s: none.", title)
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("%s (%d):\n\n", title, len(paths)))
	for _, path := range paths {
		builder.WriteString("  ")
		builder.WriteString(path)
		builder.WriteString("\n")
	}
	return builder.String()
}

// formatFileSize converts bytes to a human-readable string.
func formatFileSize(bytes int64) string {
	switch {
	case bytes >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	case bytes >= 1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

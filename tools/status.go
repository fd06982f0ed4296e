package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/lexandro/vproject-mcp/project"
	"github.com/lexandro/vproject-mcp/vfs"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// StatusArgs defines the input parameters for the vproject_status tool (none required).
type StatusArgs struct{}

// StatusHandler holds the dependencies for the status tool.
type StatusHandler struct {
	Project   *project.Project
	StartTime time.Time
	MirrorDir string // empty when no directory is mirrored
	Logger    *slog.Logger
}

// Handle processes a vproject_status request.
func (h *StatusHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args StatusArgs) (*mcp.CallToolResult, any, error) {
	var builder strings.Builder

	stats := h.Project.Stats()
	uptime := time.Since(h.StartTime)

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	h.Logger.Info("vproject_status",
		"session", stats.SessionID,
		"files", stats.FileCount,
		"totalSize", stats.TotalSizeBytes,
		"memory", memStats.Alloc,
		"uptime", uptime,
	)

	builder.WriteString("=== vproject-mcp Status ===\n\n")
	builder.WriteString(fmt.Sprintf("Session: %s (started %s ago)\n", stats.SessionID, formatDuration(time.Since(stats.CreatedAt))))
	if h.MirrorDir != "" {
		builder.WriteString(fmt.Sprintf("Mirrored directory: %s\n", h.MirrorDir))
	}
	builder.WriteString(fmt.Sprintf("Uptime: %s\n", formatDuration(uptime)))
	builder.WriteString(fmt.Sprintf("Files: %d\n", stats.FileCount))
	builder.WriteString(fmt.Sprintf("Imports: %d\n", stats.EdgeCount))
	builder.WriteString(fmt.Sprintf("Import cycles: %d\n", stats.CycleCount))
	builder.WriteString(fmt.Sprintf("Content-indexed documents: %d\n", stats.IndexedDocuments))
	builder.WriteString(fmt.Sprintf("Total size: %s\n", formatFileSize(stats.TotalSizeBytes)))
	builder.WriteString(fmt.Sprintf("Memory usage: %s (heap: %s)\n",
		formatFileSize(int64(memStats.Alloc)),
		formatFileSize(int64(memStats.HeapAlloc)),
	))

	if len(stats.KindCounts) > 0 {
		builder.WriteString("\nKinds:\n")
		for _, kind := range []vfs.Kind{vfs.KindComponent, vfs.KindModule, vfs.KindAsset} {
			if count := stats.KindCounts[kind]; count > 0 {
				builder.WriteString(fmt.Sprintf("  %-20s %d files\n", kind, count))
			}
		}
	}

	if len(stats.LanguageCounts) > 0 {
		builder.WriteString("\nLanguages:\n")

		type langEntry struct {
			lang  string
			count int
		}
		entries := make([]langEntry, 0, len(stats.LanguageCounts))
		for lang, count := range stats.LanguageCounts {
			entries = append(entries, langEntry{lang, count})
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].count != entries[j].count {
				return entries[i].count > entries[j].count
			}
			return entries[i].lang < entries[j].lang
		})

		for _, entry := range entries {
			builder.WriteString(fmt.Sprintf("  %-20s %d files\n", entry.lang, entry.count))
		}
	}

	return textResult(builder.String()), nil, nil
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	if totalSeconds < 60 {
		return fmt.Sprintf("%ds", totalSeconds)
	}
	totalMinutes := totalSeconds / 60
	remainderSeconds := totalSeconds % 60
	if totalMinutes < 60 {
		return fmt.Sprintf("%dm%ds", totalMinutes, remainderSeconds)
	}
	hours := totalMinutes / 60
	remainderMinutes := totalMinutes % 60
	return fmt.Sprintf("%dh%dm", hours, remainderMinutes)
}

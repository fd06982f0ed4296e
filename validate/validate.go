package validate

import (
	"fmt"
	"slices"
	"strings"

	"github.com/lexandro/vproject-mcp/ignore"
	"github.com/lexandro/vproject-mcp/language"
	"github.com/lexandro/vproject-mcp/resolve"
	"github.com/lexandro/vproject-mcp/vfs"
)

// DefaultEntrypoint is the root component every project must provide.
const DefaultEntrypoint = "/App.jsx"

// Config holds the structural rules a project is checked against.
type Config struct {
	EntrypointPath       string     // empty means DefaultEntrypoint
	AllowedKinds         []vfs.Kind // empty means every kind
	RequireDefaultExport bool
	DisallowedPatterns   []string // gitignore syntax, matched against canonical paths
	ReportUnreachable    bool
}

// DefaultConfig returns the platform rules: /App.jsx with a default export, no HTML files.
func DefaultConfig() Config {
	return Config{
		EntrypointPath:       DefaultEntrypoint,
		AllowedKinds:         []vfs.Kind{vfs.KindComponent, vfs.KindModule, vfs.KindAsset},
		RequireDefaultExport: true,
		DisallowedPatterns:   append([]string(nil), ignore.DefaultDisallowedPatterns...),
		ReportUnreachable:    true,
	}
}

// DiagnosticKind identifies a class of finding.
type DiagnosticKind int

const (
	MissingEntrypoint DiagnosticKind = iota
	EntrypointWrongKind
	UnresolvedImport
	ImportCycle
	DisallowedFileKind
	UnreachableFile
)

// String returns the diagnostic kind name.
func (k DiagnosticKind) String() string {
	switch k {
	case MissingEntrypoint:
		return "MissingEntrypoint"
	case EntrypointWrongKind:
		return "EntrypointWrongKind"
	case UnresolvedImport:
		return "UnresolvedImport"
	case ImportCycle:
		return "ImportCycle"
	case DisallowedFileKind:
		return "DisallowedFileKind"
	case UnreachableFile:
		return "UnreachableFile"
	default:
		return "Unknown"
	}
}

// Diagnostic is one advisory finding.
type Diagnostic struct {
	Kind      DiagnosticKind
	Path      string   // file the finding is about
	Specifier string   // UnresolvedImport only
	Cycle     []string // ImportCycle only
	Message   string
}

// Blocking reports whether the finding should fail a finished project.
// Unreachable files are informational.
func (d Diagnostic) Blocking() bool {
	return d.Kind != UnreachableFile
}

// Report is the result of one validation pass.
type Report struct {
	Entrypoint  string
	FileCount   int
	EdgeCount   int
	Diagnostics []Diagnostic
}

// Passed reports whether the report carries no blocking diagnostic.
func (r Report) Passed() bool {
	for _, d := range r.Diagnostics {
		if d.Blocking() {
			return false
		}
	}
	return true
}

// ByKind returns the diagnostics of one kind in report order.
func (r Report) ByKind(kind DiagnosticKind) []Diagnostic {
	var result []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Kind == kind {
			result = append(result, d)
		}
	}
	return result
}

// Source is the read-only project view a validation pass runs over.
type Source interface {
	List() []string
	Read(path string) (vfs.FileRecord, bool)
	AllEdges() []resolve.ImportEdge
	DetectCycles() [][]string
	ReachableFrom(path string) []string
}

// Validate checks src against cfg. It never mutates src; diagnostics are ordered
// entrypoint, disallowed files, unresolved imports, cycles, unreachable files.
func Validate(src Source, cfg Config) Report {
	entrypoint := cfg.EntrypointPath
	if entrypoint == "" {
		entrypoint = DefaultEntrypoint
	}

	paths := src.List()
	edges := src.AllEdges()
	report := Report{
		Entrypoint: entrypoint,
		FileCount:  len(paths),
		EdgeCount:  len(edges),
	}

	entryRecord, entryExists := src.Read(entrypoint)
	report.Diagnostics = append(report.Diagnostics, checkEntrypoint(entryRecord, entryExists, entrypoint, cfg)...)
	report.Diagnostics = append(report.Diagnostics, checkDisallowed(src, paths, cfg)...)
	report.Diagnostics = append(report.Diagnostics, checkUnresolved(edges)...)

	for _, cycle := range src.DetectCycles() {
		report.Diagnostics = append(report.Diagnostics, Diagnostic{
			Kind:    ImportCycle,
			Path:    cycle[0],
			Cycle:   cycle,
			Message: fmt.Sprintf("import cycle: %s -> %s", strings.Join(cycle, " -> "), cycle[0]),
		})
	}

	if cfg.ReportUnreachable && entryExists {
		report.Diagnostics = append(report.Diagnostics, checkUnreachable(src, paths, entrypoint)...)
	}

	return report
}

func checkEntrypoint(record vfs.FileRecord, exists bool, entrypoint string, cfg Config) []Diagnostic {
	if !exists {
		return []Diagnostic{{
			Kind:    MissingEntrypoint,
			Path:    entrypoint,
			Message: fmt.Sprintf("entrypoint %s does not exist", entrypoint),
		}}
	}
	if record.Kind != vfs.KindComponent {
		return []Diagnostic{{
			Kind:    EntrypointWrongKind,
			Path:    entrypoint,
			Message: fmt.Sprintf("entrypoint %s is a %s, not a component", entrypoint, record.Kind),
		}}
	}
	if cfg.RequireDefaultExport && !language.HasDefaultExport(record.Content) {
		return []Diagnostic{{
			Kind:    EntrypointWrongKind,
			Path:    entrypoint,
			Message: fmt.Sprintf("entrypoint %s has no default export", entrypoint),
		}}
	}
	return nil
}

func checkDisallowed(src Source, paths []string, cfg Config) []Diagnostic {
	rules := ignore.NewRules(cfg.DisallowedPatterns)

	var diagnostics []Diagnostic
	for _, path := range paths {
		if rules.Matches(path) {
			diagnostics = append(diagnostics, Diagnostic{
				Kind:    DisallowedFileKind,
				Path:    path,
				Message: fmt.Sprintf("%s matches a disallowed file pattern", path),
			})
			continue
		}
		if len(cfg.AllowedKinds) == 0 {
			continue
		}
		record, ok := src.Read(path)
		if ok && !slices.Contains(cfg.AllowedKinds, record.Kind) {
			diagnostics = append(diagnostics, Diagnostic{
				Kind:    DisallowedFileKind,
				Path:    path,
				Message: fmt.Sprintf("%s has disallowed kind %s", path, record.Kind),
			})
		}
	}
	return diagnostics
}

func checkUnresolved(edges []resolve.ImportEdge) []Diagnostic {
	var diagnostics []Diagnostic
	for _, edge := range edges {
		if !edge.Unresolved() {
			continue
		}
		message := fmt.Sprintf("%s imports %q which does not resolve", edge.From, edge.Specifier)
		if edge.Err != nil {
			message = fmt.Sprintf("%s imports %q: %v", edge.From, edge.Specifier, edge.Err)
		}
		diagnostics = append(diagnostics, Diagnostic{
			Kind:      UnresolvedImport,
			Path:      edge.From,
			Specifier: edge.Specifier,
			Message:   message,
		})
	}
	return diagnostics
}

func checkUnreachable(src Source, paths []string, entrypoint string) []Diagnostic {
	reachable := make(map[string]bool)
	for _, path := range src.ReachableFrom(entrypoint) {
		reachable[path] = true
	}

	var diagnostics []Diagnostic
	for _, path := range paths {
		if reachable[path] {
			continue
		}
		record, ok := src.Read(path)
		if !ok || record.Kind == vfs.KindAsset {
			continue
		}
		diagnostics = append(diagnostics, Diagnostic{
			Kind:    UnreachableFile,
			Path:    path,
			Message: fmt.Sprintf("%s is not reachable from %s", path, entrypoint),
		})
	}
	return diagnostics
}

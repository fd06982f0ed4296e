package vfs

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned when a path has no FileRecord.
var ErrNotFound = errors.New("file not found")

// Kind classifies a project file. It is caller-supplied metadata.
type Kind int

const (
	// KindUnknown means the caller did not say; the project infers it from the extension.
	KindUnknown Kind = iota
	KindComponent
	KindModule
	KindAsset
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindComponent:
		return "component"
	case KindModule:
		return "module"
	case KindAsset:
		return "asset"
	default:
		return "unknown"
	}
}

// ParseKind parses a kind name as produced by Kind.String. Empty input yields KindUnknown.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return KindUnknown, nil
	case "component":
		return KindComponent, nil
	case "module":
		return KindModule, nil
	case "asset":
		return KindAsset, nil
	default:
		return KindUnknown, fmt.Errorf("unknown file kind %q (want component, module or asset)", s)
	}
}

// FileRecord is a single file of the virtual project.
type FileRecord struct {
	Path      string    // Canonical path
	Content   string    // File content as written by the caller
	Kind      Kind      // Component, Module or Asset
	Version   int       // Number of writes to Path in this session
	Language  string    // Detected from the extension
	SizeBytes int64     // len(Content)
	LineCount int       // Number of lines in Content
	ModTime   time.Time // Time of the last write
}

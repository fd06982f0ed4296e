package vpath

import (
	"fmt"
	"path"
	"strings"
)

// DefaultAliasPrefix is the import alias rewritten to the project root.
const DefaultAliasPrefix = "@/"

// Root is the canonical project root directory.
const Root = "/"

// InvalidPathError reports a path that cannot be canonicalized.
// Writes carrying such a path are rejected before they touch the store.
type InvalidPathError struct {
	Raw    string
	Reason string
}

// Error implements the error interface.
func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("invalid path %q: %s", e.Raw, e.Reason)
}

// Normalizer turns raw, relative and aliased path strings into canonical paths.
type Normalizer struct {
	AliasPrefix string
}

// NewNormalizer creates a normalizer for the given alias prefix.
// An empty prefix falls back to DefaultAliasPrefix.
func NewNormalizer(aliasPrefix string) Normalizer {
	if aliasPrefix == "" {
		aliasPrefix = DefaultAliasPrefix
	}
	return Normalizer{AliasPrefix: aliasPrefix}
}

// Normalize canonicalizes raw as seen from the file at base.
//
// Rules are applied in order:
//   - alias prefix: stripped, remainder rooted at /
//   - leading slash: already rooted
//   - anything else: relative to the parent directory of base
//
// The result starts with "/", contains no "." or ".." segments and no trailing slash.
func (n Normalizer) Normalize(raw string, base string) (string, error) {
	if raw == "" {
		return "", &InvalidPathError{Raw: raw, Reason: "empty path"}
	}
	if strings.ContainsRune(raw, 0) {
		return "", &InvalidPathError{Raw: raw, Reason: "contains NUL byte"}
	}

	// Normalize backslashes for callers that emit Windows-style separators
	cleaned := strings.ReplaceAll(raw, "\\", "/")

	var joined string
	switch {
	case n.AliasPrefix != "" && strings.HasPrefix(cleaned, n.AliasPrefix):
		joined = Root + strings.TrimPrefix(cleaned, n.AliasPrefix)
	case strings.HasPrefix(cleaned, "/"):
		joined = cleaned
	default:
		joined = Dir(base) + "/" + cleaned
	}

	canonical, ok := collapse(joined)
	if !ok {
		return "", &InvalidPathError{Raw: raw, Reason: "escapes the project root"}
	}
	return canonical, nil
}

// collapse resolves "." and ".." segments of a rooted path.
// path.Clean silently clamps "/.." to "/", so escapes are tracked by hand.
func collapse(rooted string) (string, bool) {
	segments := strings.Split(rooted, "/")
	stack := make([]string, 0, len(segments))
	for _, segment := range segments {
		switch segment {
		case "", ".":
			continue
		case "..":
			if len(stack) == 0 {
				return "", false
			}
			stack = stack[:len(stack)-1]
		default:
			stack = append(stack, segment)
		}
	}
	return Root + strings.Join(stack, "/"), true
}

// Dir returns the parent directory of a canonical path.
// The parent of "/" and of top-level files is "/".
func Dir(p string) string {
	if p == "" {
		return Root
	}
	dir := path.Dir(p)
	if dir == "." {
		return Root
	}
	return dir
}

// IsCanonical reports whether p is already in canonical form.
func IsCanonical(p string) bool {
	if !strings.HasPrefix(p, "/") || strings.ContainsAny(p, "\\\x00") {
		return false
	}
	if p == Root {
		return true
	}
	if strings.HasSuffix(p, "/") {
		return false
	}
	for _, segment := range strings.Split(p[1:], "/") {
		if segment == "" || segment == "." || segment == ".." {
			return false
		}
	}
	return true
}

// IsFilePath reports whether p is canonical and names something below the root.
func IsFilePath(p string) bool {
	return p != Root && IsCanonical(p)
}

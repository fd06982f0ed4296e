package language

import (
	"regexp"
	"sort"
	"strings"
)

var (
	// import X from 'a'; import {a, b} from "a"; import * as X from 'a'; import 'a'
	staticImportPattern = regexp.MustCompile(`\bimport\s+(?:[\w*${}\s,]+?\s+from\s*)?['"]([^'"\n]+)['"]`)
	// export * from 'a'; export {a} from 'a'; export * as ns from 'a'
	reExportPattern = regexp.MustCompile(`\bexport\s+(?:type\s+)?(?:\*(?:\s+as\s+[\w$]+)?|\{[^}]*\})\s*from\s*['"]([^'"\n]+)['"]`)
	// require('a')
	requirePattern = regexp.MustCompile(`\brequire\s*\(\s*['"]([^'"\n]+)['"]\s*\)`)
	// import('a')
	dynamicImportPattern = regexp.MustCompile(`\bimport\s*\(\s*['"]([^'"\n]+)['"]\s*\)`)

	defaultExportPattern      = regexp.MustCompile(`\bexport\s+default\b`)
	namedDefaultExportPattern = regexp.MustCompile(`\bexport\s*\{[^}]*\bas\s+default\b`)
	specifierPatterns         = []*regexp.Regexp{
		staticImportPattern,
		reExportPattern,
		requirePattern,
		dynamicImportPattern,
	}
)

// ImportExtractor pulls import specifiers out of JavaScript and TypeScript sources.
// It is a lexical scanner, not a parser: template-literal and computed imports are ignored.
type ImportExtractor struct{}

// Specifiers returns the import specifiers of content in source order, without duplicates.
// Files that are not scripts have no specifiers.
func (ImportExtractor) Specifiers(filePath string, content string) []string {
	if !IsScript(filePath) {
		return nil
	}
	return ExtractSpecifiers(content)
}

// ExtractSpecifiers returns the import specifiers found in a script source.
func ExtractSpecifiers(content string) []string {
	code := StripComments(content)

	type found struct {
		offset    int
		specifier string
	}
	var hits []found
	for _, pattern := range specifierPatterns {
		for _, loc := range pattern.FindAllStringSubmatchIndex(code, -1) {
			hits = append(hits, found{offset: loc[0], specifier: code[loc[2]:loc[3]]})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].offset < hits[j].offset
	})

	seen := make(map[string]bool, len(hits))
	specifiers := make([]string, 0, len(hits))
	for _, hit := range hits {
		specifier := strings.TrimSpace(hit.specifier)
		if specifier == "" || seen[specifier] {
			continue
		}
		seen[specifier] = true
		specifiers = append(specifiers, specifier)
	}
	return specifiers
}

// HasDefaultExport reports whether a script source carries a default export marker.
// Markers inside comments or string literals do not count.
func HasDefaultExport(content string) bool {
	code := scrub(content, true)
	return defaultExportPattern.MatchString(code) || namedDefaultExportPattern.MatchString(code)
}

// StripComments blanks out // and /* */ comments while leaving string literals intact.
// Newlines inside comments are kept so offsets stay meaningful per line.
func StripComments(src string) string {
	return scrub(src, false)
}

// scrub removes comments and, when blankStrings is set, the contents of string literals.
// Single and double quoted strings end at a newline, so a stray apostrophe in JSX text
// only affects the rest of its own line. Template literals may span lines.
func scrub(src string, blankStrings bool) string {
	var out strings.Builder
	out.Grow(len(src))

	var quote byte
	for i := 0; i < len(src); i++ {
		c := src[i]

		if quote != 0 {
			switch {
			case c == '\n' && quote != '`':
				quote = 0
				out.WriteByte(c)
			case c == '\\' && i+1 < len(src) && src[i+1] != '\n':
				if blankStrings {
					out.WriteString("  ")
				} else {
					out.WriteByte(c)
					out.WriteByte(src[i+1])
				}
				i++
			case c == quote:
				quote = 0
				out.WriteByte(c)
			case blankStrings && c != '\n':
				out.WriteByte(' ')
			default:
				out.WriteByte(c)
			}
			continue
		}

		switch {
		case c == '\'' || c == '"' || c == '`':
			quote = c
			out.WriteByte(c)
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
			if i < len(src) {
				out.WriteByte('\n')
			}
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			i += 2
			for i < len(src) && !(src[i] == '*' && i+1 < len(src) && src[i+1] == '/') {
				if src[i] == '\n' {
					out.WriteByte('\n')
				}
				i++
			}
			i++ // closing slash
			out.WriteByte(' ')
		default:
			out.WriteByte(c)
		}
	}
	return out.String()
}

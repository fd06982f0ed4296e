package language

import (
	"path"
	"strings"
)

// ExtensionToLanguage maps file extensions (without dot) to language names.
// The table covers what a generated front-end project is expected to contain.
var ExtensionToLanguage = map[string]string{
	"js": "JavaScript", "jsx": "JavaScript", "mjs": "JavaScript", "cjs": "JavaScript",
	"ts": "TypeScript", "tsx": "TypeScript", "mts": "TypeScript", "cts": "TypeScript",
	"html": "HTML", "htm": "HTML",
	"css": "CSS", "scss": "SCSS", "sass": "Sass", "less": "Less",
	"json": "JSON", "jsonc": "JSON",
	"yaml": "YAML", "yml": "YAML",
	"md": "Markdown", "mdx": "Markdown",
	"svg": "SVG",
	"png": "Image", "jpg": "Image", "jpeg": "Image", "gif": "Image", "webp": "Image", "ico": "Image",
	"woff": "Font", "woff2": "Font", "ttf": "Font", "otf": "Font",
	"txt": "Text",
	"vue": "Vue", "svelte": "Svelte",
}

// DetectLanguage returns the language for a file path based on its extension.
// A few well-known dotfiles are matched by name first.
// Returns "Unknown" if the extension is not recognized.
func DetectLanguage(filePath string) string {
	switch strings.ToLower(path.Base(filePath)) {
	case ".gitignore", ".vprojectignore":
		return "Git Config"
	case ".env", ".env.local", ".env.example":
		return "Env"
	}

	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filePath), "."))
	if lang, ok := ExtensionToLanguage[ext]; ok {
		return lang
	}
	return "Unknown"
}

// Kind hints returned by KindHint. They match the names accepted by vfs.ParseKind.
const (
	HintComponent = "component"
	HintModule    = "module"
	HintAsset     = "asset"
)

// KindHint guesses a file kind from its extension: JSX/TSX files are components,
// plain script files are modules, everything else is an asset.
func KindHint(filePath string) string {
	switch strings.ToLower(path.Ext(filePath)) {
	case ".jsx", ".tsx":
		return HintComponent
	case ".js", ".ts", ".mjs", ".cjs", ".mts", ".cts":
		return HintModule
	default:
		return HintAsset
	}
}

// IsScript reports whether a file is JavaScript or TypeScript source that can carry imports.
func IsScript(filePath string) bool {
	switch DetectLanguage(filePath) {
	case "JavaScript", "TypeScript":
		return true
	}
	return false
}

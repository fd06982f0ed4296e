package ignore

// DefaultIgnorePatterns are never mirrored from disk into a project.
// They cover tooling output that a generated project must not contain.
var DefaultIgnorePatterns = []string{
	// Version control
	".git",
	".svn",
	".hg",

	// Dependencies
	"node_modules",
	"bower_components",
	".npm",
	".yarn",
	".pnp.*",

	// Build output
	"dist",
	"build",
	"out",
	".next",
	".nuxt",
	".vite",
	".turbo",

	// IDE / Editor
	".idea",
	".vscode",
	"*.swp",
	"*~",

	// OS files
	".DS_Store",
	"Thumbs.db",

	// Lock files
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	"bun.lockb",

	// Generated
	"*.min.js",
	"*.min.css",
	"*.map",
	"coverage",
	".cache",
	".parcel-cache",
	"*.log",
}

// DefaultDisallowedPatterns are project paths the generation rules forbid.
// Raw markup documents are banned: the entrypoint component replaces index.html.
var DefaultDisallowedPatterns = []string{
	"*.html",
	"*.htm",
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/lexandro/vproject-mcp/config"
	"github.com/lexandro/vproject-mcp/ignore"
	"github.com/lexandro/vproject-mcp/project"
	"github.com/lexandro/vproject-mcp/register"
	"github.com/lexandro/vproject-mcp/server"
	"github.com/lexandro/vproject-mcp/tools"
	"github.com/lexandro/vproject-mcp/watcher"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// excludePatterns is a repeatable CLI flag for custom ignore patterns.
type excludePatterns []string

func (e *excludePatterns) String() string { return strings.Join(*e, ", ") }
func (e *excludePatterns) Set(value string) error {
	*e = append(*e, value)
	return nil
}

// options holds the parsed command line.
type options struct {
	configPath          string
	alias               string
	entrypoint          string
	mirrorDir           string
	syncIntervalSeconds int
	maxFileSizeBytes    int64
	excludes            excludePatterns
	logLevel            string
	logFile             string
	set                 map[string]bool // flags given explicitly
}

func newFlagSet(name string, opts *options) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.StringVar(&opts.configPath, "config", "", "Project rules file (default: <mirror>/"+config.FileName+" when present)")
	fs.StringVar(&opts.alias, "alias", "", "Import alias rewritten to the project root (default: @/)")
	fs.StringVar(&opts.entrypoint, "entrypoint", "", "Entrypoint path (default: /App.jsx)")
	fs.StringVar(&opts.mirrorDir, "mirror", "", "Directory to load into the project and keep in sync")
	fs.IntVar(&opts.syncIntervalSeconds, "sync-interval", 0, "Seconds between mirror sync checks, 0 disables (default from config: 60)")
	fs.Int64Var(&opts.maxFileSizeBytes, "max-file-size", 0, "Maximum mirrored file size in bytes (default: 1MB)")
	fs.Var(&opts.excludes, "exclude", "Extra ignore pattern for the mirror (repeatable)")
	fs.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug|info|warn|error")
	fs.StringVar(&opts.logFile, "log-file", "", "Log file path (default: stderr)")
	return fs
}

func parseOptions(fs *flag.FlagSet, opts *options, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	opts.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return nil
}

// loadConfig reads the rules file and applies explicitly given flags on top.
func loadConfig(opts options) (config.Config, error) {
	var cfg config.Config
	var err error
	switch {
	case opts.configPath != "":
		cfg, err = config.Load(opts.configPath)
	case opts.mirrorDir != "":
		cfg, err = config.LoadOptional(filepath.Join(opts.mirrorDir, config.FileName))
	default:
		cfg = config.Default()
	}
	if err != nil {
		return cfg, err
	}

	if opts.set["alias"] {
		cfg.Alias = opts.alias
	}
	if opts.set["entrypoint"] {
		cfg.Entrypoint = opts.entrypoint
	}
	if opts.set["mirror"] {
		cfg.Mirror.Dir = opts.mirrorDir
	}
	if opts.set["sync-interval"] {
		cfg.Mirror.SyncIntervalSeconds = opts.syncIntervalSeconds
	}
	if opts.set["max-file-size"] {
		cfg.Mirror.MaxFileSizeBytes = opts.maxFileSizeBytes
	}
	cfg.Mirror.Exclude = append(cfg.Mirror.Exclude, opts.excludes...)
	return cfg, nil
}

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "register":
			if err := register.Run(register.DeriveServerName(os.Args[0]), os.Args[2:], os.Stderr); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		case "validate":
			os.Exit(runValidate(os.Args[2:], os.Stdout))
		}
	}

	var opts options
	parseOptions(newFlagSet(os.Args[0], &opts), &opts, os.Args[1:])

	// Setup logger (always to file or stderr, never to stdout - stdout is for MCP stdio)
	logger := setupLogger(opts.logLevel, opts.logFile)

	cfg, err := loadConfig(opts)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	projectConfig, err := cfg.Project()
	if err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	startTime := time.Now()
	p, err := project.New(projectConfig, logger)
	if err != nil {
		logger.Error("failed to create project", "error", err)
		os.Exit(1)
	}
	defer p.Close()

	logger.Info("starting vproject-mcp",
		"session", p.ID(),
		"alias", projectConfig.AliasPrefix,
		"entrypoint", projectConfig.Validation.EntrypointPath,
		"mirror", cfg.Mirror.Dir,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *mirror
	if cfg.Mirror.Dir != "" {
		m, err = startMirror(ctx, cfg.Mirror, p, logger)
		if err != nil {
			logger.Error("failed to start mirror", "error", err)
			os.Exit(1)
		}
	}

	mirrorDir := ""
	var onDelete func(string)
	if m != nil {
		mirrorDir = m.rootDir
		onDelete = m.untrack
	}

	handlers := server.Handlers{
		Write:    &tools.WriteHandler{Project: p, Logger: logger},
		Read:     &tools.ReadHandler{Project: p, Logger: logger},
		Delete:   &tools.DeleteHandler{Project: p, OnDelete: onDelete, Logger: logger},
		Files:    &tools.FilesHandler{Project: p, Logger: logger},
		Search:   &tools.SearchHandler{Project: p, Logger: logger},
		Validate: &tools.ValidateHandler{Project: p, Logger: logger},
		Graph:    &tools.GraphHandler{Project: p, Logger: logger},
		Status: &tools.StatusHandler{
			Project:   p,
			StartTime: startTime,
			MirrorDir: mirrorDir,
			Logger:    logger,
		},
		Reset: &tools.ResetHandler{
			Logger: logger,
			DoReset: func() (string, int, string, error) {
				start := time.Now()
				if err := p.Reset(); err != nil {
					return "", 0, "", err
				}
				if m != nil {
					// Reload ignore rules in case .gitignore or .vprojectignore changed
					m.forget()
					m.ignoreMatcher.Reload()
					m.load()
				}
				elapsed := time.Since(start).Round(time.Millisecond).String()
				return p.ID(), len(p.ListFiles()), elapsed, nil
			},
		},
	}

	mcpServer := server.Setup(handlers)

	logger.Info("MCP server starting on stdio")
	if err := mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		logger.Error("MCP server error", "error", err)
		os.Exit(1)
	}
}

// startMirror loads the mirrored directory and starts the watcher and the periodic sync.
// Both stop when ctx is done.
func startMirror(ctx context.Context, cfg config.Mirror, p *project.Project, logger *slog.Logger) (*mirror, error) {
	rootDir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolving mirror directory: %w", err)
	}
	if info, err := os.Stat(rootDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("mirror directory %s is not a directory", rootDir)
	}

	ignoreMatcher := ignore.NewMatcher(ignore.MatcherOptions{
		RootDir:          rootDir,
		CustomPatterns:   cfg.Exclude,
		MaxFileSizeBytes: cfg.MaxFileSizeBytes,
	})
	m := newMirror(rootDir, p, ignoreMatcher, logger)

	start := time.Now()
	count, totalSize := m.load()
	logger.Info("initial mirror load complete",
		"root", rootDir,
		"files", count,
		"totalSize", totalSize,
		"duration", time.Since(start),
	)

	fileWatcher, err := watcher.NewWatcher(rootDir, ignoreMatcher, watcher.Options{}, logger)
	if err != nil {
		logger.Warn("failed to start file watcher, continuing without live updates", "error", err)
	} else {
		go fileWatcher.Start(ctx)
		go m.handleWatcherEvents(ctx, fileWatcher)
		go func() {
			<-ctx.Done()
			fileWatcher.Close()
		}()
	}

	if cfg.SyncIntervalSeconds > 0 {
		go m.runPeriodicSync(cfg.SyncIntervalSeconds, ctx.Done())
	}

	return m, nil
}

// runValidate implements the validate subcommand: load a directory, print the report,
// and return a non-zero exit code when the project does not pass.
func runValidate(args []string, out io.Writer) int {
	var opts options
	fs := newFlagSet("validate", &opts)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s validate [flags] <directory>\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
	}
	if err := parseOptions(fs, &opts, args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	opts.mirrorDir = fs.Arg(0)
	opts.set["mirror"] = true
	if !opts.set["log-level"] {
		opts.logLevel = "warn"
	}

	logger := setupLogger(opts.logLevel, opts.logFile)

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	projectConfig, err := cfg.Project()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	p, err := project.New(projectConfig, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	defer p.Close()

	rootDir, _ := filepath.Abs(cfg.Mirror.Dir)
	if info, err := os.Stat(rootDir); err != nil || !info.IsDir() {
		fmt.Fprintf(os.Stderr, "Error: %s is not a directory\n", rootDir)
		return 2
	}

	m := newMirror(rootDir, p, ignore.NewMatcher(ignore.MatcherOptions{
		RootDir:          rootDir,
		CustomPatterns:   cfg.Mirror.Exclude,
		MaxFileSizeBytes: cfg.Mirror.MaxFileSizeBytes,
	}), logger)
	m.load()

	report := p.Validate()
	fmt.Fprint(out, tools.FormatReport(report))
	if !report.Passed() {
		return 1
	}
	return 0
}

// setupLogger creates an slog.Logger writing to stderr or a file.
func setupLogger(level string, logFile string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	var writer *os.File
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot open log file %s: %v, falling back to stderr\n", logFile, err)
			writer = os.Stderr
		} else {
			writer = f
		}
	} else {
		writer = os.Stderr
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: logLevel})
	return slog.New(handler)
}

package config

import (
	"fmt"
	"os"

	"github.com/lexandro/vproject-mcp/project"
	"github.com/lexandro/vproject-mcp/resolve"
	"github.com/lexandro/vproject-mcp/validate"
	"github.com/lexandro/vproject-mcp/vfs"
	"github.com/lexandro/vproject-mcp/vpath"
	"gopkg.in/yaml.v3"
)

// FileName is the rules file looked up in a mirrored directory when -config is not given.
const FileName = "vproject.yaml"

// Config is the on-disk project rules file. Keys that are absent keep their defaults.
type Config struct {
	Alias                string   `yaml:"alias"`
	Entrypoint           string   `yaml:"entrypoint"`
	Suffixes             []string `yaml:"suffixes"`
	AllowedKinds         []string `yaml:"allowedKinds"`
	RequireDefaultExport bool     `yaml:"requireDefaultExport"`
	DisallowedPatterns   []string `yaml:"disallowedPatterns"`
	ReportUnreachable    bool     `yaml:"reportUnreachable"`
	Mirror               Mirror   `yaml:"mirror"`
}

// Mirror configures the optional disk mirror.
type Mirror struct {
	Dir                 string   `yaml:"dir"`
	Exclude             []string `yaml:"exclude"`
	MaxFileSizeBytes    int64    `yaml:"maxFileSize"`
	SyncIntervalSeconds int      `yaml:"syncInterval"`
}

// Default returns the built-in rules.
func Default() Config {
	validation := validate.DefaultConfig()
	kinds := make([]string, 0, len(validation.AllowedKinds))
	for _, kind := range validation.AllowedKinds {
		kinds = append(kinds, kind.String())
	}

	return Config{
		Alias:                vpath.DefaultAliasPrefix,
		Entrypoint:           validation.EntrypointPath,
		Suffixes:             append([]string(nil), resolve.DefaultSuffixes...),
		AllowedKinds:         kinds,
		RequireDefaultExport: validation.RequireDefaultExport,
		DisallowedPatterns:   validation.DisallowedPatterns,
		ReportUnreachable:    validation.ReportUnreachable,
		Mirror: Mirror{
			MaxFileSizeBytes:    1024 * 1024,
			SyncIntervalSeconds: 60,
		},
	}
}

// Load reads a YAML rules file on top of Default.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.check(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOptional is Load, except that a missing file yields Default.
func LoadOptional(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

func (c Config) check() error {
	if _, err := vpath.NewNormalizer(c.Alias).Normalize(c.Entrypoint, vpath.Root); err != nil {
		return fmt.Errorf("entrypoint: %w", err)
	}
	if _, err := c.kinds(); err != nil {
		return err
	}
	if c.Mirror.SyncIntervalSeconds < 0 {
		return fmt.Errorf("mirror.syncInterval must not be negative")
	}
	return nil
}

func (c Config) kinds() ([]vfs.Kind, error) {
	kinds := make([]vfs.Kind, 0, len(c.AllowedKinds))
	for _, name := range c.AllowedKinds {
		kind, err := vfs.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("allowedKinds: %w", err)
		}
		if kind != vfs.KindUnknown {
			kinds = append(kinds, kind)
		}
	}
	return kinds, nil
}

// Project converts the rules into a project configuration.
func (c Config) Project() (project.Config, error) {
	kinds, err := c.kinds()
	if err != nil {
		return project.Config{}, err
	}

	normalizer := vpath.NewNormalizer(c.Alias)
	entrypoint, err := normalizer.Normalize(c.Entrypoint, vpath.Root)
	if err != nil {
		return project.Config{}, fmt.Errorf("entrypoint: %w", err)
	}

	return project.Config{
		AliasPrefix: normalizer.AliasPrefix,
		Suffixes:    c.Suffixes,
		Validation: validate.Config{
			EntrypointPath:       entrypoint,
			AllowedKinds:         kinds,
			RequireDefaultExport: c.RequireDefaultExport,
			DisallowedPatterns:   c.DisallowedPatterns,
			ReportUnreachable:    c.ReportUnreachable,
		},
	}, nil
}

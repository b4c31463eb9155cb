package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the top-level configuration for vhier
type Config struct {
	// Separator joins instance names in reported hierarchy paths
	Separator string `json:"separator,omitempty" toml:"separator,omitempty"`

	// Defines pre-seeds the run-wide `define set before any file is read
	Defines []string `json:"defines,omitempty" toml:"defines,omitempty"`

	// Sources lists the design files ingested when none are given on the command line
	Sources SourcesConfig `json:"sources" toml:"sources"`

	// Hierarchy contains tree-report options
	Hierarchy HierarchyConfig `json:"hierarchy" toml:"hierarchy"`

	// Snapshot controls the persisted registry
	Snapshot SnapshotConfig `json:"snapshot" toml:"snapshot"`

	// Output controls where reports go and how the console looks
	Output OutputConfig `json:"output" toml:"output"`

	// Timing writes per-file ingestion timings as JSONL
	Timing bool `json:"timing,omitempty" toml:"timing,omitempty"`
}

// SourcesConfig selects Verilog files
type SourcesConfig struct {
	// Files is a list of glob patterns; ** matches any directory depth
	Files []string `json:"files,omitempty" toml:"files,omitempty"`

	// Exclude is a list of glob patterns removed from Files
	Exclude []string `json:"exclude,omitempty" toml:"exclude,omitempty"`

	// FileLists are .f files whose entries are ingested after Files
	FileLists []string `json:"filelists,omitempty" toml:"filelists,omitempty"`

	// IgnorePatterns skips matching files wherever they came from
	IgnorePatterns []string `json:"ignorePatterns,omitempty" toml:"ignore_patterns,omitempty"`
}

// HierarchyConfig contains tree-report options
type HierarchyConfig struct {
	// MaxDepth limits the tree report (0 = unlimited)
	MaxDepth int `json:"maxDepth,omitempty" toml:"max_depth,omitempty"`

	// ReportUnused lists registered modules and files the tree never reached
	ReportUnused bool `json:"reportUnused,omitempty" toml:"report_unused,omitempty"`

	// CycleGuard stops descent into a module already on the walk stack
	CycleGuard *bool `json:"cycleGuard,omitempty" toml:"cycle_guard,omitempty"`
}

// SnapshotConfig controls the persisted registry
type SnapshotConfig struct {
	// Enabled saves the registry after ingestion and loads it for queries
	Enabled *bool `json:"enabled,omitempty" toml:"enabled,omitempty"`

	// Path is the database file (relative to the output dir if not absolute)
	Path string `json:"path,omitempty" toml:"path,omitempty"`
}

// OutputConfig controls report files and console output
type OutputConfig struct {
	// Dir receives hierarchy, unused and path reports
	Dir string `json:"dir,omitempty" toml:"dir,omitempty"`

	// Color is "auto", "on" or "off"
	Color string `json:"color,omitempty" toml:"color,omitempty"`
}

const (
	DefaultSeparator    = "."
	DefaultSnapshotPath = "vhier_modules.db"
	DefaultOutputDir    = "."
	DefaultColor        = "auto"
)

// DefaultConfig returns a sensible default configuration
func DefaultConfig() *Config {
	return &Config{
		Separator: DefaultSeparator,
		Defines:   []string{},
		Sources: SourcesConfig{
			Files:   []string{"*.v", "*.sv", "**/*.v", "**/*.sv"},
			Exclude: []string{},
		},
		Hierarchy: HierarchyConfig{
			CycleGuard: boolPtr(true),
		},
		Snapshot: SnapshotConfig{
			Enabled: boolPtr(true),
			Path:    DefaultSnapshotPath,
		},
		Output: OutputConfig{
			Dir:   DefaultOutputDir,
			Color: DefaultColor,
		},
	}
}

func boolPtr(v bool) *bool {
	return &v
}

var configNames = []string{"vhier.json", ".vhier.json", "vhier.toml", ".vhier.toml"}

// Load finds and loads the configuration file
// Search order:
//  1. ./vhier.json, ./.vhier.json, ./vhier.toml, ./.vhier.toml (current working directory)
//  2. the same names under <rootPath> (if different from cwd)
//  3. ~/.config/vhier/config.json
//
// Returns DefaultConfig if no config file is found
func Load(rootPath string) (*Config, error) {
	cwd, _ := os.Getwd()

	var searchPaths []string
	for _, name := range configNames {
		searchPaths = append(searchPaths, filepath.Join(cwd, name))
	}

	if info, err := os.Stat(rootPath); err == nil && info.IsDir() {
		absRoot, _ := filepath.Abs(rootPath)
		if absRoot != cwd {
			for _, name := range configNames {
				searchPaths = append(searchPaths, filepath.Join(rootPath, name))
			}
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".config", "vhier", "config.json"))
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}

	return DefaultConfig(), nil
}

// LoadFile loads configuration from a specific file. Files ending in
// .toml are decoded as TOML, everything else as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if isTOML(path) {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	if c.Separator == "" {
		c.Separator = DefaultSeparator
	}
	if c.Defines == nil {
		c.Defines = []string{}
	}
	if len(c.Sources.Files) == 0 && len(c.Sources.FileLists) == 0 {
		c.Sources.Files = []string{"*.v", "*.sv", "**/*.v", "**/*.sv"}
	}
	if c.Hierarchy.MaxDepth < 0 {
		c.Hierarchy.MaxDepth = 0
	}
	if c.Hierarchy.CycleGuard == nil {
		c.Hierarchy.CycleGuard = boolPtr(true)
	}
	if c.Snapshot.Enabled == nil {
		c.Snapshot.Enabled = boolPtr(true)
	}
	if c.Snapshot.Path == "" {
		c.Snapshot.Path = DefaultSnapshotPath
	}
	if c.Output.Dir == "" {
		c.Output.Dir = DefaultOutputDir
	}
	if c.Output.Color == "" {
		c.Output.Color = DefaultColor
	}
}

// Save writes the configuration to a file, as TOML when path ends in .toml
func (c *Config) Save(path string) error {
	var data []byte
	var err error
	if isTOML(path) {
		var b strings.Builder
		err = toml.NewEncoder(&b).Encode(c)
		data = []byte(b.String())
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CycleGuardEnabled reports whether hierarchy walks stop at recursion
func (c *Config) CycleGuardEnabled() bool {
	return c.Hierarchy.CycleGuard == nil || *c.Hierarchy.CycleGuard
}

// SnapshotEnabled reports whether the registry is persisted between runs
func (c *Config) SnapshotEnabled() bool {
	return c.Snapshot.Enabled == nil || *c.Snapshot.Enabled
}

// SnapshotPath returns the database location, resolved against the output dir
func (c *Config) SnapshotPath() string {
	path := c.Snapshot.Path
	if path == "" {
		path = DefaultSnapshotPath
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.OutputPath(), path)
}

// OutputPath returns the report directory
func (c *Config) OutputPath() string {
	if c.Output.Dir == "" {
		return DefaultOutputDir
	}
	return c.Output.Dir
}

// ShouldIgnoreFile checks if a file should be skipped entirely
func (c *Config) ShouldIgnoreFile(filePath string) bool {
	for _, pattern := range c.Sources.IgnorePatterns {
		if matched, _ := filepath.Match(pattern, filePath); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, filepath.Base(filePath)); matched {
			return true
		}
	}
	return false
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

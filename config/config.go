package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// FileName is the configuration file looked up in the working directory and
// the user's home directory.
const FileName = ".commitpage.json"

// Config is the root configuration structure.
type Config struct {
	History HistoryConfig `json:"history"`
	Diff    DiffConfig    `json:"diff"`
	Output  OutputConfig  `json:"output"`
	Filters FilterConfig  `json:"filters"`
	Runtime RuntimeConfig `json:"runtime"`
}

// HistoryConfig controls which commits are rendered.
type HistoryConfig struct {
	MaxCommits    int  `json:"maxCommits"`    // Default: 200, 0 for no limit
	IncludeMerges bool `json:"includeMerges"` // Default: false
	CloneDepth    int  `json:"cloneDepth"`    // Default: 0 (full history)
}

// DiffConfig controls how each commit's diff is computed and bounded.
type DiffConfig struct {
	ContextLines int    `json:"contextLines"` // Default: 3
	MaxDiffBytes string `json:"maxDiffBytes"` // Default: "512KiB", "0" disables
	RenameDetect string `json:"renameDetect"` // Default: "similarity"
}

// OutputConfig controls the produced document.
type OutputConfig struct {
	Format string `json:"format"` // Default: "html"
	Path   string `json:"path"`   // Default: temp dir
	Open   bool   `json:"open"`   // Default: true
}

// FilterConfig holds file path filtering options.
type FilterConfig struct {
	Include []string `json:"include"`
	Exclude []string `json:"exclude"`
}

// RuntimeConfig holds execution options.
type RuntimeConfig struct {
	Backend string `json:"backend"` // Default: "auto"
	Workers int    `json:"workers"` // Default: 0 (number of CPUs)
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		History: HistoryConfig{
			MaxCommits: 200,
		},
		Diff: DiffConfig{
			ContextLines: 3,
			MaxDiffBytes: "512KiB",
			RenameDetect: "similarity",
		},
		Output: OutputConfig{
			Format: "html",
			Open:   true,
		},
		Filters: FilterConfig{
			Include: []string{},
			Exclude: []string{},
		},
		Runtime: RuntimeConfig{
			Backend: "auto",
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.History.MaxCommits < 0 {
		return fmt.Errorf("maxCommits must not be negative: %d", c.History.MaxCommits)
	}
	if c.History.CloneDepth < 0 {
		return fmt.Errorf("cloneDepth must not be negative: %d", c.History.CloneDepth)
	}
	if c.Diff.ContextLines < 0 {
		return fmt.Errorf("contextLines must not be negative: %d", c.Diff.ContextLines)
	}
	if c.Runtime.Workers < 0 {
		return fmt.Errorf("workers must not be negative: %d", c.Runtime.Workers)
	}
	if _, err := c.MaxDiffBytes(); err != nil {
		return err
	}
	return nil
}

// MaxDiffBytes returns the per-commit diff cap in bytes; 0 disables it.
func (c *Config) MaxDiffBytes() (int, error) {
	return ParseByteSize(c.Diff.MaxDiffBytes)
}

// ParseByteSize parses a plain byte count or a size such as "512KiB" or
// "1 MB".
func ParseByteSize(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("invalid size %q: must not be negative", s)
		}
		return n, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if n > uint64(maxInt) {
		return 0, fmt.Errorf("invalid size %q: too large", s)
	}
	return int(n), nil
}

const maxInt = int(^uint(0) >> 1)

// LoadConfig loads configuration from a file, merging with defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		// Try default locations
		candidates := []string{FileName}
		if home, err := os.UserHomeDir(); err == nil && home != "" {
			candidates = append(candidates, filepath.Join(home, FileName))
		} else if envHome := os.Getenv("HOME"); envHome != "" {
			candidates = append(candidates, filepath.Join(envHome, FileName))
		}
		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to a file.
func SaveConfig(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

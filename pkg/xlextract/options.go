// Package xlextract extracts the structure of xlsx workbooks into sheet
// snapshots.
package xlextract

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Mode represents the extraction mode.
type Mode string

const (
	// ModeLight extracts cell values, merges, hyperlinks and comments only.
	ModeLight Mode = "light"
	// ModeStandard also extracts cell styles, images and charts.
	ModeStandard Mode = "standard"
)

// Options configures extraction and the command line tool.
type Options struct {
	// Mode specifies the extraction mode (light, standard).
	Mode Mode `yaml:"mode"`
	// IncludeImages overrides the mode default for image extraction.
	IncludeImages *bool `yaml:"include_images"`
	// IncludeCharts overrides the mode default for chart extraction.
	IncludeCharts *bool `yaml:"include_charts"`
	// MaxCells bounds the dense cell walk of one sheet; 0 disables the bound.
	MaxCells int `yaml:"max_cells"`
	// OutputDir is where the command line tool writes its files.
	OutputDir string `yaml:"output_dir"`
	// Pretty indents JSON output.
	Pretty bool `yaml:"pretty"`
	// LogLevel is a zap level name (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
	// CleanMode is the grid cleaning mode of the simple table path.
	CleanMode string `yaml:"clean_mode"`
}

// DefaultOptions returns default extraction options.
func DefaultOptions() Options {
	return Options{
		Mode:      ModeStandard,
		MaxCells:  2_000_000,
		OutputDir: "extracted_content",
		Pretty:    true,
		LogLevel:  "info",
		CleanMode: "auto",
	}
}

// LoadOptions reads a YAML file over the defaults.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

// Validate checks enumerated option values.
func (o Options) Validate() error {
	switch o.Mode {
	case ModeLight, ModeStandard:
	default:
		return fmt.Errorf("invalid mode: %s (must be light or standard)", o.Mode)
	}
	switch o.CleanMode {
	case "none", "minimal", "auto", "aggressive":
	default:
		return fmt.Errorf("invalid clean mode: %s (must be none, minimal, auto or aggressive)", o.CleanMode)
	}
	if o.MaxCells < 0 {
		return fmt.Errorf("invalid max_cells: %d", o.MaxCells)
	}
	return nil
}

// ShouldIncludeStyles returns whether to extract cell styles.
func (o Options) ShouldIncludeStyles() bool {
	return o.Mode != ModeLight
}

// ShouldIncludeImages returns whether to extract images.
func (o Options) ShouldIncludeImages() bool {
	if o.IncludeImages != nil {
		return *o.IncludeImages
	}
	return o.Mode != ModeLight
}

// ShouldIncludeCharts returns whether to extract charts.
func (o Options) ShouldIncludeCharts() bool {
	if o.IncludeCharts != nil {
		return *o.IncludeCharts
	}
	return o.Mode != ModeLight
}

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Default values, mirrored into viper by cmd.
const (
	DefaultContentFile  = "data/content.json"
	DefaultTemplatesDir = "templates"
	DefaultStaticDir    = "static"
	DefaultOutputDir    = "build"
	DefaultAddr         = "127.0.0.1:5000"
	DefaultLogLevel     = "info"
)

type Config struct {
	ContentFile  string `mapstructure:"contentFile"`
	TemplatesDir string `mapstructure:"templatesDir"`
	StaticDir    string `mapstructure:"staticDir"`
	OutputDir    string `mapstructure:"outputDir"`
	Addr         string `mapstructure:"addr"`
	Debug        bool   `mapstructure:"debug"`
	LogLevel     string `mapstructure:"logLevel"`
}

// Default returns the configuration used when no file or environment
// override is present.
func Default() Config {
	return Config{
		ContentFile:  DefaultContentFile,
		TemplatesDir: DefaultTemplatesDir,
		StaticDir:    DefaultStaticDir,
		OutputDir:    DefaultOutputDir,
		Addr:         DefaultAddr,
		Debug:        true,
		LogLevel:     DefaultLogLevel,
	}
}

// Validate reports every empty required setting.
func (c Config) Validate() error {
	var errs []error
	required := []struct{ key, value string }{
		{"contentFile", c.ContentFile},
		{"templatesDir", c.TemplatesDir},
		{"staticDir", c.StaticDir},
		{"outputDir", c.OutputDir},
		{"addr", c.Addr},
	}
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, fmt.Errorf("config: %s must not be empty", r.key))
		}
	}
	if c.OutputDir == "" {
		return errors.Join(errs...)
	}

	// build wipes outputDir, so it must not hold any of the inputs.
	inputs := []struct{ key, dir string }{
		{"templatesDir", c.TemplatesDir},
		{"staticDir", c.StaticDir},
		{"contentFile", filepath.Dir(c.ContentFile)},
	}
	for _, in := range inputs {
		if in.dir == "" {
			continue
		}
		contains, err := isWithin(c.OutputDir, in.dir)
		if err != nil {
			errs = append(errs, fmt.Errorf("config: %w", err))
			continue
		}
		if contains {
			errs = append(errs, fmt.Errorf("config: outputDir %q would delete %s %q", c.OutputDir, in.key, in.dir))
		}
	}
	return errors.Join(errs...)
}

// isWithin reports whether path is dir itself or lies below it.
func isWithin(dir, path string) (bool, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false, err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return false, nil
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)), nil
}

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/kiesman99/leptile/internal/preprocess"
	"github.com/kiesman99/leptile/internal/source"
)

// config is the resolved command line, config file and environment.
type config struct {
	File          string
	Folder        string
	Positional    string
	Recursive     bool
	Output        string
	Overwrite     bool
	Quality       int
	HashNames     bool
	TileSize      int
	ThumbnailSize int
	Resize        int
	IgnoreErrors  bool
	LogFile       string
	Verbose       bool
}

func loadConfig(args []string) *config {
	cfg := &config{
		File:          viper.GetString("file"),
		Folder:        viper.GetString("folder"),
		Recursive:     viper.GetBool("recursive"),
		Output:        viper.GetString("output"),
		Overwrite:     viper.GetBool("overwrite"),
		Quality:       viper.GetInt("quality"),
		HashNames:     viper.GetBool("hash-names"),
		TileSize:      viper.GetInt("tile-size"),
		ThumbnailSize: viper.GetInt("thumbnail-size"),
		Resize:        viper.GetInt("resize"),
		IgnoreErrors:  viper.GetBool("ignore-errors"),
		LogFile:       viper.GetString("log"),
		Verbose:       viper.GetBool("verbose"),
	}
	if len(args) > 0 {
		cfg.Positional = args[0]
	}
	return cfg
}

// validate rejects argument combinations before any file is touched.
func (c *config) validate() error {
	targets := 0
	for _, t := range []string{c.File, c.Folder, c.Positional} {
		if t != "" {
			targets++
		}
	}
	switch {
	case targets == 0:
		return errors.New("a folder (positional or --folder) or --file is required")
	case targets > 1:
		return errors.New("--file, --folder and the positional folder are mutually exclusive")
	}

	if c.TileSize <= 0 {
		return fmt.Errorf("--tile-size must be positive, got %d", c.TileSize)
	}
	if c.ThumbnailSize < 0 {
		return fmt.Errorf("--thumbnail-size must not be negative, got %d", c.ThumbnailSize)
	}
	if c.Resize < 0 {
		return fmt.Errorf("--resize must not be negative, got %d", c.Resize)
	}
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("--quality must be between 1 and 100, got %d", c.Quality)
	}
	if c.Output == "" {
		return errors.New("--output must not be empty")
	}
	return nil
}

func (c *config) folder() string {
	if c.Folder != "" {
		return c.Folder
	}
	return c.Positional
}

func (c *config) target() source.Target {
	return source.Target{
		File:      c.File,
		Folder:    c.folder(),
		Recursive: c.Recursive,
		Exclude:   c.Output,
	}
}

func (c *config) options() *preprocess.Options {
	return &preprocess.Options{
		Output:        c.Output,
		SourceRoot:    c.folder(),
		TileSize:      c.TileSize,
		Resize:        c.Resize,
		ThumbnailSize: c.ThumbnailSize,
		Quality:       c.Quality,
		HashNames:     c.HashNames,
		Overwrite:     c.Overwrite,
		IgnoreErrors:  c.IgnoreErrors,
	}
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kiesman99/leptile/internal/preprocess"
	"github.com/kiesman99/leptile/internal/source"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "leptile [folder]",
	Short: "Extract EXIF sidecars, resize and tile JPEGs for web delivery",
	Long: `leptile prepares a folder of JPEG photographs for the website's image
delivery pipeline.

For every image it writes a JSON sidecar with the EXIF data and XMP keyword
tags, the (optionally resized) full image, an optional thumbnail, and the
image cut into square tiles named by their grid position.

Examples:
  # Tile every JPEG in a folder into 256px tiles under ./out
  leptile ~/Pictures/export

  # Walk subfolders, bound the long edge to 2048px, add 300px thumbnails
  leptile ~/Pictures/export -r --resize 2048 -t 300 -o /srv/tiles

  # A single file, 512px tiles, keep going past broken files and log to a file
  leptile --file bear.jpg -s 512 --ignore-errors --log run.log`,
	Args:    cobra.MaximumNArgs(1),
	Version: Version,
	RunE:    runPreprocess,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.SetVersionTemplate(fmt.Sprintf("leptile {{.Version}} (commit %s)\n", GitCommit))

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.leptile.yaml)")

	// Target options
	rootCmd.Flags().String("file", "", "single image to process")
	rootCmd.Flags().String("folder", "", "folder of images to process (alternative to the positional argument)")
	rootCmd.Flags().BoolP("recursive", "r", false, "recursively find images in subfolders")

	// Output options
	rootCmd.Flags().StringP("output", "o", "out", "output folder")
	rootCmd.Flags().Bool("overwrite", false, "overwrite existing outputs")
	rootCmd.Flags().Int("quality", 90, "JPEG quality for written images (1-100)")
	rootCmd.Flags().Bool("hash-names", false, "name tiles by the SHA-1 of their content instead of grid position")

	// Geometry options
	rootCmd.Flags().IntP("tile-size", "s", preprocess.DefaultTileSize, "image tile size (all tiles are squares)")
	rootCmd.Flags().IntP("thumbnail-size", "t", 0, "max dimension of an additional thumbnail (0 disables)")
	rootCmd.Flags().Int("resize", 0, "max dimension of the full image before tiling (0 disables)")

	// Run options
	rootCmd.Flags().Bool("ignore-errors", false, "continue with the next file when one fails")
	rootCmd.Flags().String("log", "", "optional log file")
	rootCmd.Flags().BoolP("verbose", "v", false, "enable debug logging")

	// Bind flags to viper for root command
	for _, name := range []string{
		"file", "folder", "recursive",
		"output", "overwrite", "quality", "hash-names",
		"tile-size", "thumbnail-size", "resize",
		"ignore-errors", "log", "verbose",
	} {
		viper.BindPFlag(name, rootCmd.Flags().Lookup(name))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".leptile" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".leptile")
	}

	viper.SetEnvPrefix("leptile")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func runPreprocess(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(args)
	if err := cfg.validate(); err != nil {
		return err
	}

	// Arguments are valid; from here on errors are about files, not usage.
	cmd.SilenceUsage = true

	log, closeLog, err := newLogger(cmd.ErrOrStderr(), cfg.Verbose, cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	log.WithFields(logrus.Fields{
		"version": Version,
		"commit":  GitCommit,
	}).Debug("Verbose logging enabled")

	if err := os.MkdirAll(cfg.Output, 0o755); err != nil {
		return fmt.Errorf("failed to create output folder: %w", err)
	}
	log.WithField("output", cfg.Output).Debug("Using output path")

	files, err := source.Resolve(cfg.target())
	if err != nil {
		return err
	}
	if len(files) == 0 {
		log.WithField("folder", cfg.Folder).Warn("No JPEG images found")
		return nil
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	processor := preprocess.New(cfg.options(), log)
	summary, err := processor.Run(ctx, files)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Processed %d, skipped %d, failed %d of %d files\n",
		summary.Processed, summary.Skipped, summary.Failed, len(files))
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aretw0/catcare"
	"github.com/aretw0/catcare/pkg/backup"
	"github.com/aretw0/catcare/pkg/core"
)

var (
	verbose    bool
	noColor    bool
	dataDir    string
	adapter    string
	configPath string

	cfg Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "catcare",
	Short: "Back up and restore CatCare application state",
	Long: `catcare manages the local state of the CatCare pet-care app: pets, tasks,
settings, notification and guest preferences. It exports that state as a
portable JSON backup and imports backups by merging or replacing slots.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)

		if noColor {
			color.NoColor = true
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded.WithOverrides(dataDir, adapter)
		slog.Debug("configuration loaded", "data_dir", cfg.DataDir, "adapter", cfg.Adapter, "source", cfg.Source)
		return nil
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "", "Data directory or database file (default from catcare.yaml, else .)")
	rootCmd.PersistentFlags().StringVar(&adapter, "adapter", "", "Storage adapter: fs, sqlite or memory")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to catcare.yaml")
}

// openService builds the backup service from the loaded configuration.
func openService(extra ...catcare.Option) (*backup.Service, error) {
	opts := append([]catcare.Option{
		catcare.WithAdapter(cfg.Adapter),
		catcare.WithLogger(slog.Default()),
		catcare.WithStrict(cfg.StrictImports()),
		catcare.WithFilePrefix(cfg.FilePrefix),
		catcare.WithDevSafety(!cfg.Unsafe),
	}, extra...)
	return catcare.New(cfg.DataDir, opts...)
}

// closeService releases stores holding external resources.
func closeService(svc *backup.Service) {
	if c, ok := svc.Store().(core.Closer); ok {
		if err := c.Close(); err != nil {
			slog.Warn("failed to close store", "error", err)
		}
	}
}

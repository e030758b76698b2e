package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/catcare"
	"github.com/aretw0/catcare/internal/platform"
)

// Config is the content of catcare.yaml.
type Config struct {
	DataDir    string `yaml:"data_dir"`
	Adapter    string `yaml:"adapter"`
	Strict     *bool  `yaml:"strict"`
	FilePrefix string `yaml:"file_prefix"`
	// Unsafe disables the temp-dir sandbox of development builds.
	Unsafe bool `yaml:"unsafe"`

	// Source is the file the configuration was read from, if any.
	Source string `yaml:"-"`
}

// LoadConfig reads path, or discovers catcare.yaml upwards from the working
// directory when path is empty. A missing discovered file is not an error.
func LoadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		wd, err := os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("failed to get working directory: %w", err)
		}
		root, err := catcare.FindRoot(wd)
		if err != nil {
			return Config{}.withDefaults(), nil
		}
		path = filepath.Join(root, platform.ConfigFileName)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !explicit {
		return Config{DataDir: filepath.Dir(path)}.withDefaults(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	c.Source = path
	if c.DataDir != "" && !filepath.IsAbs(c.DataDir) {
		c.DataDir = filepath.Join(filepath.Dir(path), c.DataDir)
	}
	if c.DataDir == "" {
		c.DataDir = filepath.Dir(path)
	}
	return c.withDefaults(), nil
}

func (c Config) withDefaults() Config {
	if c.DataDir == "" {
		c.DataDir = "."
	}
	if c.Adapter == "" {
		c.Adapter = platform.AdapterFS
	}
	return c
}

// WithOverrides applies command-line flags on top of the file.
func (c Config) WithOverrides(dataDir, adapter string) Config {
	if dataDir != "" {
		c.DataDir = dataDir
	}
	if adapter != "" {
		c.Adapter = adapter
	}
	return c
}

// StrictImports reports whether imports check ownership. Default true.
func (c Config) StrictImports() bool {
	return c.Strict == nil || *c.Strict
}

// Marshal renders the effective configuration.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := cfg.Marshal()
		if err != nil {
			return err
		}
		if cfg.Source != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", cfg.Source)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

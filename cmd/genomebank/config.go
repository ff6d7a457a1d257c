package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/inodb/genomebank/internal/config"
	"github.com/inodb/genomebank/internal/genome"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage genomebank configuration",
		Long: `Show, get, or set configuration values. Config is stored in ~/.genomebank.yaml
unless --config names another file. Environment variables prefixed with
GENOMEBANK_ override the file, e.g. GENOMEBANK_STORE_DRIVER=sqlite.`,
		Example: `  genomebank config                          # show effective config
  genomebank config set store.driver sqlite   # persist a value
  genomebank config get workers               # get a value`,
		Args: withUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.configShow()
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Set a configuration value",
			Args:  withUsage(cobra.ExactArgs(2)),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.configSet(args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "get <key>",
			Short: "Get a configuration value",
			Args:  withUsage(cobra.ExactArgs(1)),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.configGet(args[0])
			},
		},
	)
	return cmd
}

func (a *app) configShow() error {
	out, err := yaml.Marshal(a.v.AllSettings())
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if used := a.v.ConfigFileUsed(); used != "" {
		fmt.Fprintf(a.stdout, "# Config file: %s\n", used)
	}
	_, err = a.stdout.Write(out)
	return err
}

func (a *app) configGet(key string) error {
	if !a.v.IsSet(key) {
		return fmt.Errorf("%w: unknown config key %q", genome.ErrInvalidInput, key)
	}
	fmt.Fprintln(a.stdout, a.v.Get(key))
	return nil
}

// configSet validates value against the full config, then writes only the
// keys already in the file plus key, so defaults and environment overrides
// are not persisted.
func (a *app) configSet(key, value string) error {
	if !a.v.IsSet(key) {
		return fmt.Errorf("%w: unknown config key %q", genome.ErrInvalidInput, key)
	}
	a.v.Set(key, value)
	if _, err := config.Load(a.v); err != nil {
		return err
	}

	cfgFile := a.v.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, ".genomebank.yaml")
	}

	file := viper.New()
	file.SetConfigFile(cfgFile)
	file.SetConfigType("yaml")
	if err := file.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	file.Set(key, value)
	if err := file.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(a.stderr, "Set %s = %s in %s\n", key, value, cfgFile)
	return nil
}

/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/ssargent/tfrecord/pkg/checksum"
	"github.com/ssargent/tfrecord/pkg/config"
	"github.com/ssargent/tfrecord/pkg/logging"
	"github.com/ssargent/tfrecord/pkg/tfrecord"
)

type contextKey string

const settingsKey contextKey = "settings"

// settings is the resolved configuration shared by every subcommand
type settings struct {
	config *config.Config
	logger hclog.Logger
}

// NewRootCmd builds the tfrecord command tree
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tfrecord",
		Short: "Inspect and serve length-delimited record containers",
		Long: `tfrecord reads containers of length-prefixed, checksummed records
(the TFRecord layout) sequentially, verifies their integrity, builds
offset indexes for random access and serves records over HTTP.`,
		SilenceUsage:      true,
		PersistentPreRunE: loadSettings,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: OS-specific location if present)")
	rootCmd.PersistentFlags().Bool("validate", false, "Verify the checksum tokens of every record")
	rootCmd.PersistentFlags().String("checksum", "", fmt.Sprintf("Token algorithm %v", checksum.Names()))
	rootCmd.PersistentFlags().String("log-level", "", "Log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(
		newCountCmd(),
		newCatCmd(),
		newVerifyCmd(),
		newIndexCmd(),
		newServeCmd(),
		newConfigCmd(),
	)
	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadSettings resolves file, environment and flag configuration in that
// order of precedence and stores the result in the command context.
func loadSettings(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" && config.ConfigExists(config.GetDefaultConfigPath()) {
		configPath = config.GetDefaultConfigPath()
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("validate") {
		cfg.Reader.ValidateIntegrity, _ = flags.GetBool("validate")
	}
	if flags.Changed("checksum") {
		cfg.Reader.Checksum, _ = flags.GetString("checksum")
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.NewWithOutput(cfg.Logging, cmd.ErrOrStderr())
	if configPath != "" {
		logger.Debug("loaded configuration", "path", configPath)
	}

	cmd.SetContext(context.WithValue(cmd.Context(), settingsKey, &settings{config: cfg, logger: logger}))
	return nil
}

func settingsFrom(cmd *cobra.Command) (*settings, error) {
	s, ok := cmd.Context().Value(settingsKey).(*settings)
	if !ok {
		return nil, fmt.Errorf("settings not found in context")
	}
	return s, nil
}

// readerConfig maps the reader section onto a tfrecord.ReaderConfig for path
func (s *settings) readerConfig(path string) (tfrecord.ReaderConfig, error) {
	sum, err := checksum.Lookup(s.config.Reader.Checksum)
	if err != nil {
		return tfrecord.ReaderConfig{}, err
	}
	return tfrecord.ReaderConfig{
		FilePath:          path,
		ValidateIntegrity: s.config.Reader.ValidateIntegrity,
		Checksum:          sum,
		BufferSize:        s.config.Reader.BufferSize,
		MaxRecordSize:     s.config.Reader.MaxRecordSize,
	}, nil
}

// openReader opens path with the resolved reader settings
func (s *settings) openReader(path string) (*tfrecord.Reader, error) {
	rc, err := s.readerConfig(path)
	if err != nil {
		return nil, err
	}
	return tfrecord.OpenReader(rc)
}

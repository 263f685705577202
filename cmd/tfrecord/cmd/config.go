/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ssargent/tfrecord/pkg/config"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
		// Overrides the root hook: init must work before any config exists.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration with a generated API key",
		Long: `Create a configuration file with default reader, index and server
settings and a freshly generated API key for the HTTP service.

Examples:
  tfrecord config init
  tfrecord config init --config ./tfrecord.yaml --index-dir ./idx --print-key`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			indexDir, _ := cmd.Flags().GetString("index-dir")
			force, _ := cmd.Flags().GetBool("force")
			printKey, _ := cmd.Flags().GetBool("print-key")

			if configPath == "" {
				configPath = config.GetDefaultConfigPath()
			}
			if config.ConfigExists(configPath) && !force {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", configPath)
			}

			cfg, err := config.BootstrapConfig(configPath, indexDir)
			if err != nil {
				return err
			}

			cmd.Printf("Configuration created at %s\n", configPath)
			if printKey {
				cmd.Printf("API key: %s\n", cfg.Server.APIKey)
			}
			return nil
		},
	}
	initCmd.Flags().String("index-dir", "", "Index directory to record in the config")
	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")
	initCmd.Flags().Bool("print-key", false, "Print the generated API key")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadSettings(cmd, args); err != nil {
				return err
			}
			s, err := settingsFrom(cmd)
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(s.config)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	configCmd.AddCommand(initCmd, showCmd)
	return configCmd
}

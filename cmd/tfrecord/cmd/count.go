/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count <file>",
		Short: "Count the records in a container",
		Long: `Read a container to the end and print how many records it holds.

Examples:
  tfrecord count train.tfrecord
  tfrecord count --validate train.tfrecord`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := settingsFrom(cmd)
			if err != nil {
				return err
			}

			r, err := s.openReader(args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			n, err := r.Count()
			if err != nil {
				return fmt.Errorf("after %d records: %w", n, err)
			}

			s.logger.Debug("counted records", "file", args[0], "records", n, "bytes", r.Offset())
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
}

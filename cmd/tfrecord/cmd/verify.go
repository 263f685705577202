/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/tfrecord/pkg/tfrecord"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file>",
		Short: "Check the framing and checksums of every record",
		Long: `Read the whole container with integrity validation enabled. Exits
non-zero on the first corrupt or mismatching record.

Examples:
  tfrecord verify train.tfrecord
  tfrecord verify --checksum crc32 legacy.rec`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := settingsFrom(cmd)
			if err != nil {
				return err
			}

			rc, err := s.readerConfig(args[0])
			if err != nil {
				return err
			}
			rc.ValidateIntegrity = true

			r, err := tfrecord.OpenReader(rc)
			if err != nil {
				return err
			}
			defer r.Close()

			n, err := r.Count()
			if err != nil {
				s.logger.Error("verification failed", "file", args[0], "records_ok", n, "error", err)
				return fmt.Errorf("verification failed after %d records: %w", n, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d records, %d bytes, %s\n", n, r.Offset(), r.ChecksumName())
			return nil
		},
	}
}

/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bufio"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newCatCmd() *cobra.Command {
	catCmd := &cobra.Command{
		Use:   "cat <file>",
		Short: "Print record payloads",
		Long: `Print the payload of each record, one per line.

Formats:
  hex     lowercase hex (default)
  base64  standard base64
  raw     payload bytes with no separator

Examples:
  tfrecord cat train.tfrecord
  tfrecord cat --offset 100 --limit 10 --format base64 train.tfrecord`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			limit, _ := cmd.Flags().GetInt("limit")
			offset, _ := cmd.Flags().GetInt("offset")

			encode, err := recordEncoder(format)
			if err != nil {
				return err
			}

			s, err := settingsFrom(cmd)
			if err != nil {
				return err
			}

			r, err := s.openReader(args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			out := bufio.NewWriter(cmd.OutOrStdout())
			defer out.Flush()

			written := 0
			for record, err := range r.Records() {
				if err != nil {
					return err
				}
				if r.Position() <= int64(offset) {
					continue
				}
				if limit > 0 && written >= limit {
					break
				}
				if err := encode(out, record); err != nil {
					return err
				}
				written++
			}
			return out.Flush()
		},
	}

	catCmd.Flags().String("format", "hex", "Output format (hex, base64, raw)")
	catCmd.Flags().Int("limit", 0, "Maximum number of records to print (0 = all)")
	catCmd.Flags().Int("offset", 0, "Number of records to skip")
	return catCmd
}

func recordEncoder(format string) (func(io.Writer, []byte) error, error) {
	switch format {
	case "hex":
		return func(w io.Writer, p []byte) error {
			_, err := fmt.Fprintln(w, hex.EncodeToString(p))
			return err
		}, nil
	case "base64":
		return func(w io.Writer, p []byte) error {
			_, err := fmt.Fprintln(w, base64.StdEncoding.EncodeToString(p))
			return err
		}, nil
	case "raw":
		return func(w io.Writer, p []byte) error {
			_, err := w.Write(p)
			return err
		}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want hex, base64 or raw)", format)
	}
}

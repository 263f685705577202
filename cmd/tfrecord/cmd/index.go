/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/tfrecord/pkg/index"
)

func newIndexCmd() *cobra.Command {
	indexCmd := &cobra.Command{
		Use:   "index <file>",
		Short: "Build an offset index for random access",
		Long: `Scan a container and store the offset and length of every record in
a pebble database. Any previous index in the directory is replaced.

With --text the index is also printed as "offset length" lines, the
layout read by tfrecord2idx consumers.

Examples:
  tfrecord index train.tfrecord --index-dir ./train.idx
  tfrecord index train.tfrecord --text > train.tfindex`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, _ := cmd.Flags().GetBool("text")

			s, err := settingsFrom(cmd)
			if err != nil {
				return err
			}

			ix, err := buildIndex(cmd.Context(), s, args[0], indexDir(cmd, s))
			if err != nil {
				return err
			}
			defer ix.Close()

			if text {
				return index.WriteText(cmd.OutOrStdout(), ix)
			}

			meta := ix.Meta()
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d records (%d bytes), build %s\n",
				meta.Count, meta.ContainerBytes, meta.BuildID)
			return nil
		},
	}

	indexCmd.Flags().String("index-dir", "", "Index directory (default: index.dir from config)")
	indexCmd.Flags().Bool("text", false, "Print the index as offset/length text")
	return indexCmd
}

// indexDir resolves the --index-dir flag against the configuration
func indexDir(cmd *cobra.Command, s *settings) string {
	dir, _ := cmd.Flags().GetString("index-dir")
	if dir == "" {
		dir = s.config.Index.Dir
	}
	return dir
}

// buildIndex scans path into a fresh index at dir
func buildIndex(ctx context.Context, s *settings, path, dir string) (*index.Index, error) {
	r, err := s.openReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	s.logger.Info("building index", "file", path, "dir", dir)
	return index.Build(ctx, r, index.BuildConfig{
		Dir:       dir,
		BatchSize: s.config.Index.BatchSize,
		Logger:    s.logger.Named("index"),
	})
}

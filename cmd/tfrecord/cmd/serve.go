/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ssargent/tfrecord/pkg/api"
	"github.com/ssargent/tfrecord/pkg/index"
)

func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve <file>",
		Short: "Serve a container's records over HTTP",
		Long: `Start a read-only REST API for one container. Records are fetched by
position through the offset index, which is built first when missing or
out of date.

Endpoints:
  GET /api/v1/health
  GET /api/v1/stats
  GET /api/v1/records/{n}
  GET /api/v1/verify
  GET /metrics

Examples:
  tfrecord serve train.tfrecord
  tfrecord serve train.tfrecord --port 9000 --index-dir ./train.idx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := settingsFrom(cmd)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("port") {
				s.config.Server.Port, _ = flags.GetInt("port")
			}
			if flags.Changed("bind") {
				s.config.Server.Bind, _ = flags.GetString("bind")
			}
			if flags.Changed("api-key") {
				s.config.Server.APIKey, _ = flags.GetString("api-key")
			}
			rebuild, _ := flags.GetBool("rebuild")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ix, err := openIndex(ctx, s, args[0], indexDir(cmd, s), rebuild)
			if err != nil {
				return err
			}
			defer ix.Close()

			rc, err := s.readerConfig(args[0])
			if err != nil {
				return err
			}
			source, err := api.NewContainerSource(rc, ix)
			if err != nil {
				return err
			}
			defer source.Close()

			return api.StartServer(ctx, source, api.ServerConfig{
				Port:   s.config.Server.Port,
				Bind:   s.config.Server.Bind,
				APIKey: s.config.Server.APIKey,
			}, s.logger.Named("api"))
		},
	}

	serveCmd.Flags().String("index-dir", "", "Index directory (default: index.dir from config)")
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind server to")
	serveCmd.Flags().String("api-key", "", "Require this value in the X-API-Key header")
	serveCmd.Flags().Bool("rebuild", false, "Rebuild the index even if it looks current")
	return serveCmd
}

// openIndex reuses the index in dir when it covers the whole of path,
// otherwise builds a new one.
func openIndex(ctx context.Context, s *settings, path, dir string, rebuild bool) (*index.Index, error) {
	if !rebuild {
		ix, err := index.Open(dir, s.logger.Named("index"))
		if err == nil {
			info, statErr := os.Stat(path)
			if statErr == nil && info.Size() == ix.Meta().ContainerBytes {
				s.logger.Info("using existing index", "dir", dir, "records", ix.Count())
				return ix, nil
			}
			s.logger.Warn("index does not match container, rebuilding", "dir", dir)
			ix.Close()
		} else {
			s.logger.Debug("no usable index", "dir", dir, "error", err)
		}
	}
	return buildIndex(ctx, s, path, dir)
}

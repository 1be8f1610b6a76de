package main

import (
	"github.com/spf13/cobra"
	"github.com/thywilljoshua/matchgame/internal/config"
	"github.com/thywilljoshua/matchgame/internal/logger"
	"github.com/thywilljoshua/matchgame/internal/server"
)

func serveCmd(configPath *string) *cobra.Command {
	var addr string
	var uploadDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the upload API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if uploadDir != "" {
				cfg.UploadDir = uploadDir
			}

			log, err := logger.New(cfg.LogMode)
			if err != nil {
				return err
			}
			defer log.Sync()

			svc := newService(cmd.Context(), cfg, log)
			srv, err := server.NewServer(cfg, svc, log)
			if err != nil {
				return err
			}
			return srv.Run(cfg.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&uploadDir, "upload-dir", "", "directory for uploaded documents")
	return cmd
}

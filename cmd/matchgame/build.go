package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/thywilljoshua/matchgame/internal/config"
	"github.com/thywilljoshua/matchgame/internal/extract"
	"github.com/thywilljoshua/matchgame/internal/logger"
)

func buildCmd(configPath *string) *cobra.Command {
	var seed int64
	var sceneOnly bool

	cmd := &cobra.Command{
		Use:   "build <document>",
		Short: "Generate the game JSON for a document and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if seed != 0 {
				cfg.PaletteSeed = seed
			}
			if !extract.Allowed(path, cfg.AllowedExtensions) {
				return fmt.Errorf("unsupported file %s: allowed extensions are %s", path, strings.Join(cfg.AllowedExtensions, ", "))
			}

			log, err := logger.New(cfg.LogMode)
			if err != nil {
				return err
			}
			defer log.Sync()

			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			text, err := extract.Text(path, data)
			if err != nil {
				return fmt.Errorf("extract %s: %w", path, err)
			}
			if strings.TrimSpace(text) == "" {
				return fmt.Errorf("could not extract any text from %s", path)
			}

			g, err := newService(cmd.Context(), cfg, log).Play(cmd.Context(), text)
			if err != nil {
				return err
			}
			if sceneOnly {
				b, _ := json.MarshalIndent(g.Scene, "", "  ")
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			}
			resp, err := g.Response()
			if err != nil {
				return err
			}
			b, _ := json.MarshalIndent(resp, "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 0, "palette shuffle seed (0 = random)")
	cmd.Flags().BoolVar(&sceneOnly, "scene-only", false, "print only the scene graph")
	return cmd
}

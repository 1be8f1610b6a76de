package main

import (
	"context"

	"github.com/thywilljoshua/matchgame/internal/ai"
	"github.com/thywilljoshua/matchgame/internal/config"
	"github.com/thywilljoshua/matchgame/internal/game"
	"github.com/thywilljoshua/matchgame/internal/logger"
)

// newGateway returns Gemini when a key is configured and Noop otherwise, so
// the game falls back to the built-in pairs and statements.
func newGateway(ctx context.Context, cfg config.Config, log *logger.Logger) ai.Gateway {
	if cfg.AI.APIKey == "" {
		log.Warn("GEMINI_API_KEY not set, AI extraction disabled")
		return ai.Noop{}
	}
	g, err := ai.NewGemini(ctx, ai.GeminiConfig{
		APIKey:  cfg.AI.APIKey,
		Model:   cfg.AI.Model,
		BaseURL: cfg.AI.BaseURL,
		Timeout: cfg.AI.Timeout,
	}, log)
	if err != nil {
		log.Error("gemini unavailable, AI extraction disabled", "error", err)
		return ai.Noop{}
	}
	return g
}

func newService(ctx context.Context, cfg config.Config, log *logger.Logger) *game.Service {
	return game.NewService(newGateway(ctx, cfg, log), log, game.Options{Seed: cfg.PaletteSeed})
}

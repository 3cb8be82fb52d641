package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/qabot/internal/config"
	"github.com/zhouzirui/qabot/internal/logging"
	"github.com/zhouzirui/qabot/internal/model/assistant"
	"github.com/zhouzirui/qabot/internal/service/ai"
	"github.com/zhouzirui/qabot/internal/service/chat"
)

// bootstrap loads configuration and builds the chat service shared by every command.
func bootstrap(ctx context.Context) (*config.Config, *chat.Service, error) {
	loaded, envErr := config.LoadDotEnv(".env", ".venv")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, errors.Wrap(err, "load configuration")
	}
	logging.Setup(cfg.Log)

	if envErr != nil {
		log.Warn().Err(envErr).Msg("failed to load env file, continuing with process environment")
	}
	for _, path := range loaded {
		log.Debug().Str("path", path).Msg("loaded env file")
	}

	completer, err := ai.NewCompleter(ctx, cfg.AI)
	if err != nil {
		// The session stays usable; every turn reports this error as its reply.
		log.Warn().Err(err).Str("provider", cfg.AI.Provider).Msg("completion provider unavailable")
		completer = ai.Unavailable{Provider: cfg.AI.Provider, Err: err}
	}

	chatSvc := chat.NewService(
		completer,
		assistant.NewMemoryStore(assistant.Seed()),
		cfg.AI,
		chat.WithIdleTTL(cfg.Session.IdleTTL),
	)

	log.Info().
		Str("provider", completer.Name()).
		Str("model", cfg.AI.Model).
		Int("max_tokens", cfg.AI.MaxTokens).
		Float32("temperature", cfg.AI.Temperature).
		Dur("timeout", cfg.AI.Timeout).
		Msg("chat service initialized")

	return cfg, chatSvc, nil
}

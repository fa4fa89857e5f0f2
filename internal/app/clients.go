package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/yungbote/sprint-backend/internal/clients/gemini"
	"github.com/yungbote/sprint-backend/internal/clients/openai"
	"github.com/yungbote/sprint-backend/internal/clients/redis"
	"github.com/yungbote/sprint-backend/internal/clients/telegram"
	"github.com/yungbote/sprint-backend/internal/pkg/logger"
	"github.com/yungbote/sprint-backend/internal/pulse"
)

type Clients struct {
	Telegram telegram.Client
	Model    pulse.Model
	// OpsBus is nil when REDIS_ADDR is unset.
	OpsBus redis.OpsBus
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	// Telegram
	tg, err := telegram.NewFromEnv(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init telegram client: %w", err)
	}

	// Model
	model, err := wireModel(ctx, log, cfg.LLMProvider)
	if err != nil {
		return Clients{}, err
	}

	// Redis
	var bus redis.OpsBus
	if strings.TrimSpace(os.Getenv("REDIS_ADDR")) != "" {
		b, err := redis.NewOpsBus(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis ops bus: %w", err)
		}
		bus = b
	}

	return Clients{Telegram: tg, Model: model, OpsBus: bus}, nil
}

func wireModel(ctx context.Context, log *logger.Logger, provider string) (pulse.Model, error) {
	switch provider {
	case "", "gemini":
		c, err := gemini.NewFromEnv(ctx, log)
		if err != nil {
			return nil, fmt.Errorf("init gemini client: %w", err)
		}
		return c, nil
	case "openai":
		c, err := openai.NewClient(log)
		if err != nil {
			return nil, fmt.Errorf("init openai client: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", provider)
	}
}

func (c Clients) Close() {
	if c.OpsBus != nil {
		_ = c.OpsBus.Close()
	}
}

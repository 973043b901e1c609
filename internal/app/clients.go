package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/yungbote/lecture-studio/internal/clients/redis"
	"github.com/yungbote/lecture-studio/internal/platform/blobstore"
	"github.com/yungbote/lecture-studio/internal/platform/credentials"
	"github.com/yungbote/lecture-studio/internal/platform/gemini"
	"github.com/yungbote/lecture-studio/internal/platform/logger"
)

type Clients struct {
	Credentials credentials.Provider
	// Selector is nil when no helper is configured and stdin is not a terminal.
	Selector credentials.Selector
	Gemini   gemini.Client
	HTTP     *http.Client
	Store    blobstore.Store
	SSEBus   redis.SSEBus
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, []io.Closer, error) {
	log.Info("Wiring clients...")
	var closers []io.Closer

	creds := CredentialChain(cfg)
	selector, err := credentials.NewSelector(cfg.Gemini.KeyHelper, os.Stdin, os.Stderr)
	if err != nil {
		log.Debug("no api key selector available", "error", err)
		selector = nil
	}

	// Gemini
	geminiClient, err := gemini.NewClient(log, creds, gemini.Options{
		BaseURL:    cfg.Gemini.BaseURL,
		Timeout:    cfg.Gemini.Timeout.Std(),
		MaxRetries: cfg.Gemini.MaxRetries,
	})
	if err != nil {
		return Clients{}, closers, fmt.Errorf("init gemini client: %w", err)
	}

	// Object storage
	store, storeCloser, err := resolveBlobStore(ctx, log)
	if err != nil {
		return Clients{}, closers, err
	}
	if storeCloser != nil {
		closers = append(closers, storeCloser)
	}

	// Redis
	var bus redis.SSEBus
	if strings.TrimSpace(cfg.Redis.Addr) != "" {
		b, err := redis.NewSSEBus(ctx, log, redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Channel:  cfg.Redis.Channel,
		})
		if err != nil {
			return Clients{}, closers, fmt.Errorf("init redis SSE bus: %w", err)
		}
		bus = b
		closers = append(closers, b)
	}

	return Clients{
		Credentials: creds,
		Selector:    selector,
		Gemini:      geminiClient,
		HTTP:        &http.Client{Timeout: cfg.Gemini.Timeout.Std()},
		Store:       store,
		SSEBus:      bus,
	}, closers, nil
}

// CredentialChain prefers the stored key file and falls back to GEMINI_API_KEY or API_KEY.
func CredentialChain(cfg Config) credentials.Chain {
	return credentials.Chain{
		credentials.NewFile(cfg.CredentialsPath()),
		credentials.NewEnv("GEMINI_API_KEY", "API_KEY"),
	}
}

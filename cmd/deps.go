package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/recruitai/internal/admin"
	"github.com/spigell/recruitai/internal/ai"
	"github.com/spigell/recruitai/internal/ai/gemini"
	"github.com/spigell/recruitai/internal/job"
	"github.com/spigell/recruitai/internal/logger"
	"github.com/spigell/recruitai/internal/quota"
	"github.com/spigell/recruitai/internal/quota/pgstore"
	"github.com/spigell/recruitai/internal/secrets"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func newLogger(outputs ...string) (*zap.Logger, error) {
	return logger.New(viper.GetBool("json"), viper.GetBool("debug"), outputs...)
}

func buildJob(config *Config) (*job.Configuration, error) {
	if config.Job == nil {
		return nil, errors.New("job section is required in the configuration")
	}
	return job.New(*config.Job)
}

// newLedger returns the quota ledger and a function releasing its store.
func newLedger(ctx context.Context, cfg *QuotaConfig, log *zap.Logger) (*quota.Ledger, func(), error) {
	limits := make(quota.Limits, len(cfg.Limits))
	for name, limit := range cfg.Limits {
		tier, err := ai.ParseTier(name)
		if err != nil {
			return nil, nil, fmt.Errorf("quota limits: %w", err)
		}
		limits[tier] = limit
	}

	var (
		store   quota.Store
		release = func() {}
	)

	switch strings.ToLower(strings.TrimSpace(cfg.Store)) {
	case "", "file":
		fileStore, err := quota.NewFileStore(cfg.File)
		if err != nil {
			return nil, nil, err
		}
		store = fileStore
	case "memory":
		store = quota.NewMemoryStore()
	case "postgres":
		url, err := secrets.Load(secrets.Source{
			Name:  "quota database url",
			Value: cfg.DatabaseURL,
			File:  cfg.DatabaseURLFile,
			Env:   "DATABASE_URL",
		})
		if err != nil {
			return nil, nil, err
		}
		pg, err := pgstore.Connect(ctx, url)
		if err != nil {
			return nil, nil, err
		}
		store = pg
		release = pg.Close
	default:
		return nil, nil, fmt.Errorf("unsupported quota store: %s", cfg.Store)
	}

	ledger, err := quota.NewLedger(store, limits, quota.WithLogger(log))
	if err != nil {
		release()
		return nil, nil, err
	}

	log.Debug("quota ledger ready", zap.String("store", cfg.Store))
	return ledger, release, nil
}

func newGeminiClient(ctx context.Context, cfg *AIConfig, log *zap.Logger) (*gemini.Client, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		File:  cfg.Gemini.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	models := make(map[ai.Tier]string, len(cfg.Gemini.Models))
	for name, model := range cfg.Gemini.Models {
		tier, err := ai.ParseTier(name)
		if err != nil {
			return nil, fmt.Errorf("ai.gemini.models: %w", err)
		}
		models[tier] = model
	}

	return gemini.NewClient(ctx, gemini.Config{
		APIKey:       apiKey,
		Models:       models,
		MaxLogLength: cfg.Gemini.MaxLogLength,
	}, log)
}

// newGate returns a gate that denies everything when no secret is configured.
func newGate(cfg *AdminConfig, log *zap.Logger) (*admin.Gate, error) {
	secret, err := secrets.Optional(secrets.Source{
		Name:  "admin secret",
		Value: cfg.Secret,
		File:  cfg.SecretFile,
		Env:   "ADMIN_SECRET",
	})
	if err != nil {
		return nil, err
	}

	gate := admin.NewGate(secret)
	if !gate.Enabled() {
		log.Warn("admin secret is not configured, recruiter views are locked")
	}
	return gate, nil
}

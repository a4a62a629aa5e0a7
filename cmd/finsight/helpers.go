package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/riteshshukladev/FinSight/internal/classify"
	"github.com/riteshshukladev/FinSight/internal/engine"
	"github.com/riteshshukladev/FinSight/internal/source"
	"github.com/riteshshukladev/FinSight/internal/storage"
	"github.com/spf13/viper"
)

func defaultDBPath() (string, error) {
	if path := viper.GetString("storage.path"); path != "" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "finsight", "finsight.db"), nil
}

func openStore() (*storage.SQLiteStore, error) {
	path, err := defaultDBPath()
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStore(path)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		return nil, err
	}

	return store, nil
}

func buildOrchestrator(store *storage.SQLiteStore, messagesPath string) (*engine.Orchestrator, error) {
	client, err := classify.NewGeminiClient(classify.Config{
		APIKey:        viper.GetString("gemini.api_key"),
		Model:         viper.GetString("gemini.model"),
		MaxRetries:    viper.GetInt("gemini.max_retries"),
		RetryDelay:    viper.GetDuration("gemini.retry_delay"),
		RateLimitWait: viper.GetDuration("gemini.rate_limit_wait"),
	}, slog.Default())
	if err != nil {
		return nil, err
	}

	if messagesPath == "" {
		messagesPath = viper.GetString("source.path")
	}
	if messagesPath == "" {
		return nil, fmt.Errorf("no message source configured: pass --messages or set source.path")
	}

	cfg := engine.Config{
		BatchSize:   viper.GetInt("sync.batch_size"),
		MaxMessages: viper.GetInt("sync.max_messages"),
		BaseDelay:   viper.GetDuration("sync.base_delay"),
		StepDelay:   viper.GetDuration("sync.step_delay"),
		MaxDelay:    viper.GetDuration("sync.max_delay"),
		Prefilter:   true,
	}
	if viper.IsSet("sync.prefilter") {
		cfg.Prefilter = viper.GetBool("sync.prefilter")
	}

	return engine.NewOrchestrator(store, source.NewFileSource(messagesPath), client, cfg, slog.Default()), nil
}

func refreshInterval() time.Duration {
	if d := viper.GetDuration("sync.auto_refresh_interval"); d > 0 {
		return d
	}
	return 5 * time.Minute
}

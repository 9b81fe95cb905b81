package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/gandos21/pocketsync/internal/common"
	"github.com/gandos21/pocketsync/internal/config"
	"github.com/gandos21/pocketsync/internal/engine"
	"github.com/gandos21/pocketsync/internal/history"
	"github.com/gandos21/pocketsync/internal/pocketsmith"
)

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	dir := filepath.Join(home, ".config", "pocketsync")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return dir, nil
}

func resolvePath(viperKey, defaultName string) (string, error) {
	if p := viper.GetString(viperKey); p != "" {
		return config.ExpandPath(p), nil
	}
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, defaultName), nil
}

func buildClient() (*pocketsmith.Client, error) {
	keyPath, err := resolvePath("api.key_file", "keyFile.json")
	if err != nil {
		return nil, err
	}
	key, err := pocketsmith.LoadKey(keyPath)
	if err != nil {
		return nil, common.NewUserError("developer key required", err)
	}
	if baseURL := viper.GetString("api.base_url"); baseURL != "" {
		return pocketsmith.NewClientWithBaseURL(key, baseURL)
	}
	return pocketsmith.NewClient(key)
}

// buildEngine assembles a full reconciliation session: validated client,
// fresh index snapshots, and the approval history store.
func buildEngine(ctx context.Context) (*engine.Engine, error) {
	client, err := buildClient()
	if err != nil {
		return nil, err
	}

	session, err := engine.BuildSession(ctx, client)
	if err != nil {
		return nil, common.NewUserError("failed to start session", err)
	}

	historyPath, err := resolvePath("history.file", "ApprovedTransactions.json")
	if err != nil {
		return nil, err
	}
	store := history.New(historyPath)

	cfg := engine.DefaultConfig()
	if n := viper.GetInt("review.max_splits"); n > 0 {
		cfg.MaxSplitSlots = n
	}
	return engine.NewWithConfig(client, store, session, cfg), nil
}

func defaultsPath() (string, error) {
	return resolvePath("defaults.file", "PanelDefaults.json")
}

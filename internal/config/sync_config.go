package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xelth-com/ecktms/internal/logger"
	"go.uber.org/zap"
)

// SyncConfig holds synchronization configuration
type SyncConfig struct {
	// Collections known to the auto-sync runner, in processing order
	Collections []string `json:"collections"`

	// Run the auto-sync runner once when the shell starts
	AutoSyncOnStart bool `json:"auto_sync_on_start"`

	// Per-collection overrides
	Entities map[string]CollectionSyncConfig `json:"entities"`
}

// CollectionSyncConfig holds sync configuration for a single collection
type CollectionSyncConfig struct {
	Enabled bool `json:"enabled"`
}

// LoadSyncConfig loads sync configuration from file or environment
func LoadSyncConfig() *SyncConfig {
	return loadSyncConfig(logger.For("config"))
}

func loadSyncConfig(log *zap.SugaredLogger) *SyncConfig {
	// Try to load from file first
	if configPath := os.Getenv("SYNC_CONFIG_PATH"); configPath != "" {
		cfg, err := loadSyncConfigFromFile(configPath)
		if err == nil {
			return cfg
		}
		log.Warnf("⚠️ Failed to load sync config %s, using defaults: %v", configPath, err)
	}

	// Otherwise use defaults
	return getDefaultSyncConfig()
}

// loadSyncConfigFromFile loads sync config from JSON file
func loadSyncConfigFromFile(path string) (*SyncConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg SyncConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse sync config %s: %w", path, err)
	}
	if len(cfg.Collections) == 0 {
		cfg.Collections = []string{"branches"}
	}

	return &cfg, nil
}

// getDefaultSyncConfig returns default sync configuration
func getDefaultSyncConfig() *SyncConfig {
	return &SyncConfig{
		Collections:     splitList(getEnv("SYNC_COLLECTIONS", "branches")),
		AutoSyncOnStart: getBoolEnv("SYNC_AUTO_ON_START", true),
		Entities:        map[string]CollectionSyncConfig{},
	}
}

// EnabledCollections returns the collections the runner should process.
// A collection without an override is enabled.
func (c *SyncConfig) EnabledCollections() []string {
	out := make([]string, 0, len(c.Collections))
	for _, name := range c.Collections {
		if override, ok := c.Entities[name]; ok && !override.Enabled {
			continue
		}
		out = append(out, name)
	}
	return out
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

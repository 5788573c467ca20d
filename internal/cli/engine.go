package cli

import (
	"fmt"
	"strings"

	"github.com/davidthor/logpushctl/pkg/logpush"
	"github.com/davidthor/logpushctl/pkg/storage"
	"github.com/spf13/viper"
)

// createEngine builds a query engine from the global flags, environment
// variables, and the config file, in that order of precedence.
func createEngine(backendType string, backendConfig []string) (*logpush.Engine, error) {
	if backendType == "" {
		backendType = viper.GetString("backend")
	}
	if backendType == "" {
		backendType = "s3"
	}

	cfg, err := parseBackendConfig(backendConfig)
	if err != nil {
		return nil, err
	}

	// Fill defaults from viper so LOGPUSHCTL_* env vars and the config
	// file work without --backend-config.
	fill := func(key, viperKey string) {
		if cfg[key] == "" {
			if v := viper.GetString(viperKey); v != "" {
				cfg[key] = v
			}
		}
	}
	fill("bucket", "bucket")
	fill("endpoint", "endpoint")
	fill("region", "region")
	fill("access_key", "access_key_id")
	fill("secret_key", "secret_access_key")
	fill("path", "path")

	// R2 buckets are addressed through an account-scoped endpoint.
	if cfg["endpoint"] == "" && backendType == "s3" {
		if accountID := viper.GetString("account_id"); accountID != "" {
			cfg["endpoint"] = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
		}
	}

	store, err := storage.New(backendType, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage backend: %w", err)
	}

	return logpush.NewEngine(store), nil
}

// parseBackendConfig converts repeated key=value flags into a config map.
func parseBackendConfig(pairs []string) (map[string]string, error) {
	cfg := make(map[string]string)
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid backend config %q (expected key=value)", pair)
		}
		cfg[key] = value
	}
	return cfg, nil
}

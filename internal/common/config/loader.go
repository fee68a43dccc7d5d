// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads the base yaml config, overlays the environment-specific file and
// finally environment variables (PROVIDERS_0_API_KEY style replacements).
func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig() // optional overlay, ignore if absent

	setDefaults()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.App.Environment = env

	// Provider API keys may come from the environment instead of the yaml
	// file; resolve <PROVIDER_ID>_API_KEY for any provider left without one.
	for i := range cfg.Providers {
		if cfg.Providers[i].APIKey == "" {
			envKey := strings.ToUpper(strings.ReplaceAll(cfg.Providers[i].ID, "-", "_")) + "_API_KEY"
			cfg.Providers[i].APIKey = os.Getenv(envKey)
		}
	}
	sort.SliceStable(cfg.Providers, func(i, j int) bool {
		return cfg.Providers[i].Priority < cfg.Providers[j].Priority
	})

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("app.name", "contractgen-workers")
	viper.SetDefault("camunda.broker_address", "localhost:26500")
	viper.SetDefault("camunda.max_jobs_active", 10)
	viper.SetDefault("generation.cache_backend", "memory")
	viper.SetDefault("generation.cache_ttl", 7*24*time.Hour)
	viper.SetDefault("generation.cache_max_entries", 1024)
	viper.SetDefault("generation.task_deadline", 90*time.Second)
	viper.SetDefault("generation.synthesis_tokens", 3000)
	viper.SetDefault("generation.analysis_tokens", 1000)
	viper.SetDefault("generation.risk_review_tokens", 1200)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
}

func validate(cfg *Config) error {
	if cfg.Generation.CacheTTL <= 0 {
		return fmt.Errorf("generation.cache_ttl must be positive, got %s", cfg.Generation.CacheTTL)
	}
	if cfg.Generation.CacheMaxEntries <= 0 {
		return fmt.Errorf("generation.cache_max_entries must be positive, got %d", cfg.Generation.CacheMaxEntries)
	}
	for _, p := range cfg.Providers {
		if p.ID == "" || p.BaseURL == "" {
			return fmt.Errorf("provider entry missing id or base_url: %+v", p)
		}
	}
	return nil
}

// loadEnvFile tries the usual locations so `go run ./cmd/...` works from any
// directory inside the repo.
func loadEnvFile() {
	candidates := []string{
		".env",
		filepath.Join("..", "..", ".env"),
		filepath.Join("configs", ".env"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

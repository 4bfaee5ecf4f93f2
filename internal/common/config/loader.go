// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like SFMC_CLIENT_ID
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

	// Environment-specific overlay, ignored when absent
	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = viper.MergeInConfig()

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile tries .env in the working directory and walks up to the
// project root so tests running from package directories still pick it up.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up directories looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string config values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "template-migrator"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 30000
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 120000
	}
	if cfg.Server.RequestTimeout <= 0 {
		cfg.Server.RequestTimeout = 120000
	}
	if cfg.Integrations.HubSpot.BaseURL == "" {
		cfg.Integrations.HubSpot.BaseURL = "https://api.hubapi.com"
	}
	if cfg.Integrations.HubSpot.Timeout <= 0 {
		cfg.Integrations.HubSpot.Timeout = 30000
	}
	if cfg.Integrations.SFMC.AuthURLTemplate == "" {
		cfg.Integrations.SFMC.AuthURLTemplate = "https://%s.auth.marketingcloudapis.com"
	}
	if cfg.Integrations.SFMC.RestURLTemplate == "" {
		cfg.Integrations.SFMC.RestURLTemplate = "https://%s.rest.marketingcloudapis.com"
	}
	if cfg.Integrations.SFMC.Timeout <= 0 {
		cfg.Integrations.SFMC.Timeout = 30000
	}
	if cfg.Migration.DefaultLimit <= 0 {
		cfg.Migration.DefaultLimit = 10
	}
	if cfg.Migration.RootFolderName == "" {
		cfg.Migration.RootFolderName = "Content Builder"
	}
	if cfg.Migration.TargetFolderName == "" {
		cfg.Migration.TargetFolderName = "HubSpot Templates"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func validateConfig(cfg *Config) error {
	if !strings.Contains(cfg.Integrations.SFMC.AuthURLTemplate, "%s") {
		return fmt.Errorf("sfmc auth_url_template must contain a %%s subdomain placeholder")
	}
	if !strings.Contains(cfg.Integrations.SFMC.RestURLTemplate, "%s") {
		return fmt.Errorf("sfmc rest_url_template must contain a %%s subdomain placeholder")
	}
	if cfg.Migration.HistoryEnabled && cfg.Database.Postgres.Host == "" {
		return fmt.Errorf("migration history enabled but database.postgres.host is empty")
	}
	if cfg.Notifications.SNS.Enabled && cfg.Notifications.SNS.TopicARN == "" {
		return fmt.Errorf("sns notifications enabled but topic_arn is empty")
	}
	return nil
}

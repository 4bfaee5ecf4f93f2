package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "https://api.hubapi.com", cfg.Integrations.HubSpot.BaseURL)
	assert.Equal(t, "https://%s.auth.marketingcloudapis.com", cfg.Integrations.SFMC.AuthURLTemplate)
	assert.Equal(t, 10, cfg.Migration.DefaultLimit)
	assert.Equal(t, "Content Builder", cfg.Migration.RootFolderName)
	assert.Equal(t, "HubSpot Templates", cfg.Migration.TargetFolderName)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestApplyDefaults_DoesNotOverrideExplicit(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Address = ":9090"
	cfg.Migration.DefaultLimit = 25

	applyDefaults(cfg)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, 25, cfg.Migration.DefaultLimit)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(cfg *Config) {},
		},
		{
			name: "auth url template without placeholder",
			mutate: func(cfg *Config) {
				cfg.Integrations.SFMC.AuthURLTemplate = "https://static.example.com"
			},
			wantErr: "auth_url_template",
		},
		{
			name: "history enabled without postgres host",
			mutate: func(cfg *Config) {
				cfg.Migration.HistoryEnabled = true
				cfg.Database.Postgres.Host = ""
			},
			wantErr: "postgres.host",
		},
		{
			name: "sns enabled without topic",
			mutate: func(cfg *Config) {
				cfg.Notifications.SNS.Enabled = true
			},
			wantErr: "topic_arn",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			applyDefaults(cfg)
			tt.mutate(cfg)

			err := validateConfig(cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

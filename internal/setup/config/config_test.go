package config_test

import (
	"testing"

	"github.com/rosterpulse/rosterpulse/internal/setup/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *config.Config {
	return &config.Config{
		Version: config.CurrentConfigVersion,
		SocialBlade: config.SocialBlade{
			ClientID: "client",
			Token:    "token",
		},
		BigQuery: config.BigQuery{
			ProjectID: "project",
			Dataset:   "dataset",
		},
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		devMode bool
		wantErr error
	}{
		{
			name:   "complete config",
			mutate: func(*config.Config) {},
		},
		{
			name: "missing client id",
			mutate: func(c *config.Config) {
				c.SocialBlade.ClientID = ""
			},
			wantErr: config.ErrMissingCredentials,
		},
		{
			name: "missing token",
			mutate: func(c *config.Config) {
				c.SocialBlade.Token = ""
			},
			wantErr: config.ErrMissingCredentials,
		},
		{
			name: "missing warehouse project",
			mutate: func(c *config.Config) {
				c.BigQuery.ProjectID = ""
			},
			wantErr: config.ErrMissingWarehouse,
		},
		{
			name: "missing warehouse dataset",
			mutate: func(c *config.Config) {
				c.BigQuery.Dataset = ""
			},
			wantErr: config.ErrMissingWarehouse,
		},
		{
			name: "dev mode ignores warehouse config",
			mutate: func(c *config.Config) {
				c.BigQuery = config.BigQuery{}
			},
			devMode: true,
		},
		{
			name: "dev mode still requires credentials",
			mutate: func(c *config.Config) {
				c.SocialBlade.Token = ""
			},
			devMode: true,
			wantErr: config.ErrMissingCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate(tt.devMode)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

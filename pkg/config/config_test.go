package config

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, "test", cfg.GCP.Project)
		assert.Equal(t, "conference", cfg.GCP.AppID)
		assert.Equal(t, "localhost:8085", cfg.GCP.PubSubEmulatorHost)
		assert.Equal(t, "conference-ledger", cfg.GCP.Subscription)
		assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URL)
		assert.Equal(t, "conference", cfg.Mongo.Database)
		assert.Equal(t, "localhost", cfg.Tracing.Host)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Empty(t, cfg.ConferenceID)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("GCP_PROJECT", "socrates")
		t.Setenv("MONGO_DB", "socrates-2026")
		t.Setenv("TRACING_URL", "jaeger")
		t.Setenv("LOG_LEVEL", "debug")

		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, "socrates", cfg.GCP.Project)
		assert.Equal(t, "socrates-2026", cfg.Mongo.Database)
		assert.Equal(t, "jaeger", cfg.Tracing.Host)
		assert.Equal(t, "debug", cfg.Log.Level)
	})
}

func TestConference(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name    string
		value   string
		want    uuid.UUID
		wantErr bool
	}{
		{name: "valid", value: id.String(), want: id},
		{name: "missing", value: "", wantErr: true},
		{name: "malformed", value: "socrates", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Config{ConferenceID: tt.value}.Conference()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

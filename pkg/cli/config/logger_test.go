package config_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/takeout/pkg/cli/config"
	"github.com/m-mizutani/takeout/pkg/domain/types"
)

func TestLogger_Configure(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		wantErr bool
	}{
		{name: "debug", level: "debug"},
		{name: "DEBUG (case insensitive)", level: "DEBUG"},
		{name: "info", level: "info"},
		{name: "Warn", level: "Warn"},
		{name: "error", level: "error"},
		{name: "invalid", level: "invalid", wantErr: true},
		{name: "empty string", level: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Logger{Level: tt.level, Output: &bytes.Buffer{}}

			logger, err := cfg.Configure()
			if tt.wantErr {
				gt.Error(t, err)
				gt.True(t, types.IsConfiguration(err))
				return
			}
			gt.NoError(t, err)
			gt.NotNil(t, logger)
			logger.Info("test log message")
		})
	}
}

func TestLogger_Configure_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger, err := (&config.Logger{Level: "warn", JSON: true, Output: &buf}).Configure()
	gt.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")
	gt.False(t, bytes.Contains(buf.Bytes(), []byte("hidden")))
	gt.True(t, bytes.Contains(buf.Bytes(), []byte("shown")))
}

func TestLogger_RedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger, err := (&config.Logger{Level: "info", JSON: true, Output: &buf}).Configure()
	gt.NoError(t, err)

	sentryCfg := config.Sentry{DSN: "https://key@example.invalid/1", Env: "test"}
	logger.Info("configured", slog.Any("sentry", sentryCfg))

	gt.False(t, bytes.Contains(buf.Bytes(), []byte("key@example.invalid")))

	var record map[string]any
	gt.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	gt.Equal(t, record["msg"], any("configured"))
}

func TestLogger_Flags(t *testing.T) {
	logger := &config.Logger{}
	flags := logger.Flags()
	gt.A(t, flags).Length(2)

	flagNames := make(map[string]bool)
	for _, flag := range flags {
		names := flag.Names()
		if len(names) > 0 {
			flagNames[names[0]] = true
		}
	}
	gt.True(t, flagNames["log-level"])
	gt.True(t, flagNames["log-json"])
}

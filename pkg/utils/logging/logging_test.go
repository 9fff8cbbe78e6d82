package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/dermarisk/pkg/utils/logging"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, slog.LevelInfo, logging.FormatJSON)

	logger.Debug("hidden")
	logger.Info("assessment created", "risk_level", "high")

	var entry map[string]any
	gt.NoError(t, json.Unmarshal(buf.Bytes(), &entry)).Required()
	gt.Value(t, entry["msg"]).Equal("assessment created")
	gt.Value(t, entry["risk_level"]).Equal("high")
}

func TestNew_RedactsSecretTag(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, slog.LevelInfo, logging.FormatJSON)

	type sentryConfig struct {
		Env string
		DSN string `masq:"secret"`
	}
	logger.Info("configured", "sentry", sentryConfig{Env: "prod", DSN: "https://key@sentry.example.com/1"})
	gt.Bool(t, strings.Contains(buf.String(), "key@sentry.example.com")).False()
}

func TestFrom_FallsBackToDefault(t *testing.T) {
	gt.Value(t, logging.From(context.Background())).Equal(logging.Default())

	var buf bytes.Buffer
	logger := logging.New(&buf, slog.LevelInfo, logging.FormatJSON)
	ctx := logging.With(context.Background(), logger)
	gt.Value(t, logging.From(ctx)).Equal(logger)
}

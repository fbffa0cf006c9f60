package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	domainerrors "github.com/reychango/reychango-server/internal/errors"
)

func newJSON(buf *bytes.Buffer, level slog.Level) *Logger {
	return New(Config{Level: level, Format: "json", Writer: buf, Service: "reychango-api"})
}

func TestNew_FormatSelection(t *testing.T) {
	tests := []struct {
		name        string
		format      string
		environment string
		wantJSON    bool
	}{
		{"production uses json", "", "production", true},
		{"development uses pretty", "", "development", false},
		{"staging uses pretty", "", "staging", false},
		{"explicit format wins", "json", "development", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			New(Config{Level: slog.LevelInfo, Format: tt.format, Environment: tt.environment, Writer: &buf}).Info("test")

			if tt.wantJSON {
				assert.Contains(t, buf.String(), `"msg":"test"`)
			} else {
				assert.Contains(t, buf.String(), "INF")
				assert.NotContains(t, buf.String(), `"msg"`)
			}
		})
	}
}

func TestNew_JSONCarriesService(t *testing.T) {
	var buf bytes.Buffer
	newJSON(&buf, slog.LevelInfo).Info("post saved")

	assert.Contains(t, buf.String(), `"service":"reychango-api"`)
	assert.Contains(t, buf.String(), `"level":"INFO"`)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DeBuG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestPrettyHandler_Enabled(t *testing.T) {
	handler := NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelInfo})
	assert.False(t, handler.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, handler.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, handler.Enabled(context.Background(), slog.LevelError))

	assert.NotNil(t, NewPrettyHandler(&bytes.Buffer{}, nil).opts)
}

func TestPrettyHandler_Handle(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewPrettyHandler(&buf, nil)).Info("post saved", "slug", "hola", "likes", 42, "title", "dos palabras")

	output := buf.String()
	assert.Contains(t, output, "post saved")
	assert.Contains(t, output, "slug=hola")
	assert.Contains(t, output, "likes=42")
	assert.Contains(t, output, `title="dos palabras"`)
	assert.Contains(t, output, "INF")
}

func TestPrettyHandler_GroupsPrefixKeys(t *testing.T) {
	var buf bytes.Buffer
	handler := NewPrettyHandler(&buf, nil)
	assert.Equal(t, handler, handler.WithGroup(""))

	logger := slog.New(handler).With("component", "api").WithGroup("request").With("id", "r1")
	logger.Info("handled", "status", 200)

	output := buf.String()
	assert.Contains(t, output, "[api]")
	assert.Contains(t, output, "request.id=r1")
	assert.Contains(t, output, "request.status=200")
}

func TestPrettyHandler_ComponentTag(t *testing.T) {
	var buf bytes.Buffer
	log := &Logger{Logger: slog.New(NewPrettyHandler(&buf, nil))}

	log.Component("store").Info("album renamed", "from", "Viajes", "photos", 3)

	output := buf.String()
	assert.Contains(t, output, "[store]")
	assert.NotContains(t, output, "component=")
	assert.Less(t, strings.Index(output, "[store]"), strings.Index(output, "album renamed"))
	assert.Contains(t, output, "from=Viajes")
}

func TestPrettyHandler_InlineGroupsAndErrors(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewPrettyHandler(&buf, nil)).Warn("cascade incomplete",
		slog.Group("result", "matched", 20, "updated", 8),
		"error", errors.New("context canceled"))

	output := buf.String()
	assert.Contains(t, output, "WRN")
	assert.Contains(t, output, "result.matched=20")
	assert.Contains(t, output, "result.updated=8")
	assert.Contains(t, output, `error="context canceled"`)
}

func TestPrettyHandler_WithSource(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{AddSource: true})).Info("test message")

	assert.Contains(t, buf.String(), "logger_test.go:")
}

func TestFormatLevel(t *testing.T) {
	tests := []struct {
		level     slog.Level
		wantStr   string
		wantColor string
	}{
		{slog.LevelDebug, "DBG", colorMagenta},
		{slog.LevelInfo, "INF", colorGreen},
		{slog.LevelWarn, "WRN", colorYellow},
		{slog.LevelError, "ERR", colorRed},
	}

	for _, tt := range tests {
		t.Run(tt.wantStr, func(t *testing.T) {
			str, color := formatLevel(tt.level)
			assert.Equal(t, tt.wantStr, str)
			assert.Equal(t, tt.wantColor, color)
		})
	}
}

func TestFormatValue(t *testing.T) {
	now := time.Now()
	assert.Equal(t, "test", formatValue(slog.StringValue("test")))
	assert.Equal(t, now.Format(time.RFC3339), formatValue(slog.TimeValue(now)))
	assert.Equal(t, "1.5ms", formatValue(slog.DurationValue(1500*time.Microsecond+300*time.Nanosecond)))
	assert.Equal(t, "42", formatValue(slog.IntValue(42)))
}

func TestLogger_WithError(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSON(&buf, slog.LevelInfo)

	logger.WithError(errors.New("plain failure")).Info("first")
	assert.Contains(t, buf.String(), `"error":"plain failure"`)
	assert.NotContains(t, buf.String(), "error_code")

	buf.Reset()
	logger.WithError(domainerrors.NotFound("post not found")).Info("second")
	assert.Contains(t, buf.String(), `"error_code":"NOT_FOUND"`)
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	newJSON(&buf, slog.LevelInfo).
		WithField("request_id", "req-123").
		WithFields(map[string]any{"slug": "hola", "album": "Viajes"}).
		Component("store").
		Info("saved")

	output := buf.String()
	assert.Contains(t, output, `"request_id":"req-123"`)
	assert.Contains(t, output, `"slug":"hola"`)
	assert.Contains(t, output, `"album":"Viajes"`)
	assert.Contains(t, output, `"component":"store"`)
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSON(&buf, slog.LevelWarn)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	output := buf.String()
	assert.NotContains(t, output, "debug message")
	assert.NotContains(t, output, "info message")
	assert.Contains(t, output, "warn message")
	assert.Contains(t, output, "error message")
}

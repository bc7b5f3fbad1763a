// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package launchpad

import (
	"io"
	"log/slog"
	"time"

	"github.com/z5labs/launchpad/config"
	"github.com/z5labs/launchpad/logctx"
	"github.com/z5labs/launchpad/logmask"
	"github.com/z5labs/launchpad/telemetry"
)

// SettingsKey is the config document section holding [Settings].
const SettingsKey = "server"

// Settings are the server settings read from the "server" section
// of the config document. Missing keys keep their defaults.
type Settings struct {
	ReadTimeout       time.Duration `config:"read_timeout" validate:"gte=0"`
	ReadHeaderTimeout time.Duration `config:"read_header_timeout" validate:"gte=0"`
	WriteTimeout      time.Duration `config:"write_timeout" validate:"gte=0"`
	IdleTimeout       time.Duration `config:"idle_timeout" validate:"gte=0"`
	MaxHeaderBytes    int           `config:"max_header_bytes" validate:"gte=0"`

	// MetricsPath is where Prometheus metrics are served. Empty disables them.
	MetricsPath string `config:"metrics_path" validate:"omitempty,startswith=/"`

	// SessionCookie names the cookie whose value is logged as the session id.
	SessionCookie string `config:"session_cookie"`

	Log       LogSettings        `config:"log"`
	Telemetry telemetry.Settings `config:"telemetry"`
}

// LogSettings configure the server logger.
type LogSettings struct {
	Level  slog.Level `config:"level"`
	Format string     `config:"format" validate:"oneof=json text"`

	// Mask lists attribute keys, e.g. "session_id", whose values are
	// never written to the log.
	Mask []string `config:"mask"`
}

// DefaultSettings returns the settings used when the config document
// has no "server" section.
func DefaultSettings() Settings {
	return Settings{
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		MetricsPath:       "/metrics",
		Log: LogSettings{
			Level:  slog.LevelInfo,
			Format: "json",
		},
		Telemetry: telemetry.Settings{
			Exporter:    telemetry.ExporterNone,
			SampleRatio: 1,
		},
	}
}

func decodeSettings(doc *config.Document) (Settings, error) {
	s := DefaultSettings()
	err := doc.Sub(SettingsKey).Decode(&s)
	if err != nil {
		return Settings{}, err
	}
	return s, nil
}

func newLogger(w io.Writer, s LogSettings) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: true,
		Level:     s.Level,
	}

	var h slog.Handler
	switch s.Format {
	case "text":
		h = slog.NewTextHandler(w, opts)
	default:
		h = slog.NewJSONHandler(w, opts)
	}
	return logctx.New(logmask.NewHandler(h, s.Mask...))
}

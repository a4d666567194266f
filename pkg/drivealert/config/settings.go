package config

import (
	"io"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
)

// EnvGeminiAPIKey is consulted when no API key is configured.
const EnvGeminiAPIKey = "GEMINI_API_KEY"

// Settings is the validated pipeline configuration.
type Settings struct {
	PausePoll time.Duration `validate:"gt=0"`
	Voice     VoiceSettings
	Map       MapSettings
	Sources   SourceSettings
	Logging   LogSettings
}

// VoiceSettings configures the voice dispatcher.
type VoiceSettings struct {
	Mode         string  `validate:"required,oneof=static nlu"`
	AssetDir     string  `validate:"required"`
	Language     string  `validate:"required"`
	Rate         float64 `validate:"gt=0,lte=4"`
	GeminiModel  string  `validate:"required_if=Mode nlu"`
	GeminiAPIKey string  `validate:"required_if=Mode nlu"`
}

// MapSettings configures map drawing.
type MapSettings struct {
	DrawRects bool
}

// SourceSettings locates the camera stores. Empty paths disable a store.
type SourceSettings struct {
	DBPath    string
	CachePath string
	CacheTTL  time.Duration `validate:"gte=0"`
}

// LogSettings configures the process logger.
type LogSettings struct {
	Level  string `validate:"required,oneof=debug info warn error"`
	Format string `validate:"required,oneof=text json"`
}

// Default returns the settings used for keys a file leaves out.
func Default() Settings {
	return Settings{
		PausePoll: 100 * time.Millisecond,
		Voice: VoiceSettings{
			Mode:        "static",
			AssetDir:    "sounds",
			Language:    "en-US",
			Rate:        0.8,
			GeminiModel: "gemini-2.0-flash",
		},
		Map: MapSettings{DrawRects: true},
		Logging: LogSettings{
			Level:  "info",
			Format: "text",
		},
	}
}

// FromConfig extracts Settings from cfg on top of Default. The result is not
// validated.
func FromConfig(cfg Config) Settings {
	s := Default()
	s.PausePoll = cfg.Duration("pause_poll", s.PausePoll)

	voice := cfg.Section("voice")
	s.Voice.Mode = voice.String("mode", s.Voice.Mode)
	s.Voice.AssetDir = voice.String("asset_dir", s.Voice.AssetDir)
	s.Voice.Language = voice.String("language", s.Voice.Language)
	s.Voice.Rate = voice.Float("rate", s.Voice.Rate)
	s.Voice.GeminiModel = voice.String("gemini_model", s.Voice.GeminiModel)
	s.Voice.GeminiAPIKey = voice.String("gemini_api_key", s.Voice.GeminiAPIKey)

	s.Map.DrawRects = cfg.Section("map").Bool("draw_rects", s.Map.DrawRects)

	src := cfg.Section("sources")
	s.Sources.DBPath = src.String("db_path", s.Sources.DBPath)
	s.Sources.CachePath = src.String("cache_path", s.Sources.CachePath)
	s.Sources.CacheTTL = src.Duration("cache_ttl", s.Sources.CacheTTL)

	logging := cfg.Section("logging")
	s.Logging.Level = logging.String("level", s.Logging.Level)
	s.Logging.Format = logging.String("format", s.Logging.Format)
	return s
}

// Validate checks every field constraint.
func (s Settings) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return validate.Struct(s)
}

// Logger builds a logger writing to w. Unknown levels log at info.
func (l LogSettings) Logger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch l.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

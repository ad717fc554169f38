package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"
)

// Config keeps runtime settings for the tracker service.
type Config struct {
	// TelegramToken is optional; without it the bot is not started.
	TelegramToken string

	DatabaseURL    string
	HTTPAddr       string
	AllowedOrigins []string
	Location       *time.Location
	ReportInterval time.Duration

	// ReportTime is an optional HH:MM for a daily report on top of the
	// interval.
	ReportTime string
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		TelegramToken:  strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		HTTPAddr:       strings.TrimSpace(os.Getenv("HTTP_ADDR")),
		AllowedOrigins: parseList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		ReportInterval: parseInterval(strings.TrimSpace(os.Getenv("REPORT_INTERVAL_HOURS"))),
		ReportTime:     strings.TrimSpace(os.Getenv("REPORT_TIME")),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "team_tracker.db"
	}

	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	if cfg.ReportInterval == 0 {
		cfg.ReportInterval = 24 * time.Hour
	}

	tz := strings.TrimSpace(os.Getenv("TIMEZONE"))
	if tz == "" {
		tz = "Asia/Tokyo"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return cfg, fmt.Errorf("TIMEZONE: %w", err)
	}
	cfg.Location = loc

	if cfg.ReportTime != "" {
		if _, err := time.Parse("15:04", cfg.ReportTime); err != nil {
			return cfg, fmt.Errorf("REPORT_TIME must be HH:MM, got %q", cfg.ReportTime)
		}
	}

	return cfg, nil
}

// BotEnabled reports whether a Telegram token is configured.
func (c Config) BotEnabled() bool {
	return c.TelegramToken != ""
}

func parseInterval(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}

func parseList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config keeps runtime settings for the planner.
type Config struct {
	DatabaseURL string
	HTTPAddr    string

	// RedisAddr enables cross-process sync when set; empty means
	// single-instance operation.
	RedisAddr   string
	SyncChannel string
	SlotKey     string

	HoursStart   int
	HoursLength  int
	SlotHeightPx int
	WeekStart    time.Weekday

	DigestInterval time.Duration
	TelegramToken  string
	TelegramChatID int64

	LogLevel string
	LogFile  string
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		HTTPAddr:       strings.TrimSpace(os.Getenv("HTTP_ADDR")),
		RedisAddr:      strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		SyncChannel:    strings.TrimSpace(os.Getenv("SYNC_CHANNEL")),
		SlotKey:        strings.TrimSpace(os.Getenv("SLOT_KEY")),
		HoursStart:     parseInt(os.Getenv("GRID_HOURS_START"), 7),
		HoursLength:    parseInt(os.Getenv("GRID_HOURS_LENGTH"), 17),
		SlotHeightPx:   parseInt(os.Getenv("GRID_SLOT_HEIGHT_PX"), 40),
		DigestInterval: parseInterval(strings.TrimSpace(os.Getenv("DIGEST_INTERVAL_HOURS"))),
		TelegramToken:  strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		LogLevel:       strings.TrimSpace(os.Getenv("LOG_LEVEL")),
		LogFile:        strings.TrimSpace(os.Getenv("LOG_FILE")),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "weekly_planner.db"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.SyncChannel == "" {
		cfg.SyncChannel = "planner_tasks"
	}
	if cfg.SlotKey == "" {
		cfg.SlotKey = "planner.tasks.v1"
	}
	if cfg.DigestInterval == 0 {
		cfg.DigestInterval = 5 * time.Hour
	}

	weekStart, err := parseWeekday(strings.TrimSpace(os.Getenv("WEEK_START")))
	if err != nil {
		return cfg, err
	}
	cfg.WeekStart = weekStart

	if raw := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); raw != "" {
		chatID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("TELEGRAM_CHAT_ID must be an integer: %w", err)
		}
		cfg.TelegramChatID = chatID
	}

	if cfg.HoursStart < 0 || cfg.HoursStart > 23 {
		return cfg, fmt.Errorf("GRID_HOURS_START out of range: %d", cfg.HoursStart)
	}
	if cfg.HoursLength <= 0 || cfg.HoursStart+cfg.HoursLength > 24 {
		return cfg, fmt.Errorf("grid does not fit the day: start %d length %d", cfg.HoursStart, cfg.HoursLength)
	}

	return cfg, nil
}

func parseInt(raw string, def int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
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

func parseWeekday(raw string) (time.Weekday, error) {
	switch strings.ToLower(raw) {
	case "", "monday":
		return time.Monday, nil
	case "sunday":
		return time.Sunday, nil
	case "saturday":
		return time.Saturday, nil
	default:
		return time.Monday, fmt.Errorf("WEEK_START must be monday, sunday or saturday, got %q", raw)
	}
}

package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	HTTPAddr string

	RedisURL    string
	DatabaseURL string

	KafkaBrokers []string
	KafkaTopic   string

	CleanupInterval  time.Duration
	RoomCodeAttempts int

	MessagesDir string

	AllowedOrigins []string
	WSMessageRate  float64
	WSMessageBurst int

	ArchiveRecentLimit int
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		HTTPAddr:           ":8080",
		KafkaTopic:         "checkers.rooms",
		CleanupInterval:    5 * time.Minute,
		RoomCodeAttempts:   5,
		WSMessageRate:      10,
		WSMessageBurst:     20,
		ArchiveRecentLimit: 20,
	}

	if v := strings.TrimSpace(os.Getenv("HTTP_ADDR")); v != "" {
		cfg.HTTPAddr = v
	}
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.MessagesDir = strings.TrimSpace(os.Getenv("MESSAGES_DIR"))

	cfg.KafkaBrokers = splitList(os.Getenv("KAFKA_BROKERS"))
	if v := strings.TrimSpace(os.Getenv("KAFKA_TOPIC")); v != "" {
		cfg.KafkaTopic = v
	}
	cfg.AllowedOrigins = splitList(os.Getenv("ALLOWED_ORIGINS"))

	if v := strings.TrimSpace(os.Getenv("CLEANUP_INTERVAL")); v != "" { // "90s", "5m" or plain seconds
		if d, ok := parseDuration(v); ok {
			cfg.CleanupInterval = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("ROOM_CODE_ATTEMPTS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RoomCodeAttempts = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("WS_MESSAGE_RATE")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.WSMessageRate = f
		}
	}
	if v := strings.TrimSpace(os.Getenv("WS_MESSAGE_BURST")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.WSMessageBurst = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("ARCHIVE_RECENT_LIMIT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ArchiveRecentLimit = n
		}
	}

	if _, _, err := net.SplitHostPort(cfg.HTTPAddr); err != nil {
		return nil, fmt.Errorf("HTTP_ADDR %q: %w", cfg.HTTPAddr, err)
	}
	if cfg.RedisURL != "" && !strings.HasPrefix(cfg.RedisURL, "redis://") && !strings.HasPrefix(cfg.RedisURL, "rediss://") {
		return nil, fmt.Errorf("REDIS_URL must use redis:// or rediss://")
	}

	return cfg, nil
}

func parseDuration(v string) (time.Duration, bool) {
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d, true
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second, true
	}
	return 0, false
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

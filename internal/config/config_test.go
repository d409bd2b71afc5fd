package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"HTTP_ADDR", "REDIS_URL", "DATABASE_URL", "KAFKA_BROKERS", "KAFKA_TOPIC",
		"CLEANUP_INTERVAL", "ROOM_CODE_ATTEMPTS", "MESSAGES_DIR", "ALLOWED_ORIGINS",
		"WS_MESSAGE_RATE", "WS_MESSAGE_BURST", "ARCHIVE_RECENT_LIMIT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.CleanupInterval != 5*time.Minute || cfg.RoomCodeAttempts != 5 {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.KafkaTopic != "checkers.rooms" || len(cfg.KafkaBrokers) != 0 {
		t.Fatalf("kafka defaults = %q %v", cfg.KafkaTopic, cfg.KafkaBrokers)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_ADDR", "127.0.0.1:9090")
	t.Setenv("REDIS_URL", "redis://localhost:6379/2")
	t.Setenv("KAFKA_BROKERS", " k1:9092, ,k2:9092 ")
	t.Setenv("CLEANUP_INTERVAL", "90")
	t.Setenv("ALLOWED_ORIGINS", "example.com,*.example.org")
	t.Setenv("WS_MESSAGE_RATE", "2.5")
	t.Setenv("ROOM_CODE_ATTEMPTS", "-1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != "127.0.0.1:9090" {
		t.Fatalf("addr = %q", cfg.HTTPAddr)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("brokers = %v", cfg.KafkaBrokers)
	}
	if cfg.CleanupInterval != 90*time.Second {
		t.Fatalf("interval = %s", cfg.CleanupInterval)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.WSMessageRate != 2.5 {
		t.Fatalf("ws settings = %v %v", cfg.AllowedOrigins, cfg.WSMessageRate)
	}
	if cfg.RoomCodeAttempts != 5 {
		t.Fatalf("invalid attempts not ignored: %d", cfg.RoomCodeAttempts)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_ADDR", "8080")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for HTTP_ADDR without port separator")
	}
	clearEnv(t)
	t.Setenv("REDIS_URL", "http://localhost")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for non-redis scheme")
	}
}

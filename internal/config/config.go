package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	StatusURL    string        // base URL of the backend exposing /api/maintenance/status
	PollInterval time.Duration // fixed re-check cadence (default: 30s)
	FetchTimeout time.Duration // per-request timeout for status fetches (default: 10s)

	// MaintenanceOverride is the static override flag, read exactly once here.
	// Two historically named variables map to it; either being truthy sets it.
	MaintenanceOverride bool

	TrustProxy       bool // true => trust X-Forwarded-For headers (e.g. reverse proxy)
	RecheckBurst     int  // rate limit burst for the manual recheck endpoint
	RecheckPerMinute int  // rate limit refill for the manual recheck endpoint
}

func Load() *Config {
	// Best effort: local .env files are a dev convenience, not a requirement.
	_ = godotenv.Load()

	fc := loadFile(os.Getenv("MAINTMON_CONFIG_FILE"))

	cfg := &Config{
		// Server settings
		ListenPort:      pickString("MAINTMON_LISTEN_PORT", fc.ListenPort, ":8080"),
		ShutdownTimeout: pickDuration("MAINTMON_SHUTDOWN_TIMEOUT", fc.ShutdownTimeout, 5*time.Second),

		// Logging
		LogLevel:  pickString("MAINTMON_LOG_LEVEL", fc.LogLevel, "info"),
		PrettyLog: pickBool("MAINTMON_PRETTY_LOG", fc.PrettyLog, true),

		// Status endpoint polling
		StatusURL:    requireString("MAINTMON_STATUS_URL", fc.StatusURL),
		PollInterval: pickDuration("MAINTMON_POLL_INTERVAL", fc.PollInterval, 30*time.Second),
		FetchTimeout: pickDuration("MAINTMON_FETCH_TIMEOUT", fc.FetchTimeout, 10*time.Second),

		MaintenanceOverride: overrideFlag(fc),

		// HTTP surface
		TrustProxy:       pickBool("MAINTMON_TRUST_PROXY", fc.TrustProxy, false),
		RecheckBurst:     getenvInt("MAINTMON_RECHECK_BURST", 3),
		RecheckPerMinute: getenvInt("MAINTMON_RECHECK_PER_MINUTE", 6),
	}

	if cfg.PollInterval <= 0 {
		panic("❌ FATAL: MAINTMON_POLL_INTERVAL must be > 0")
	}

	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", *cfg)
	}

	return cfg
}

// overrideFlag coerces the two historically named override variables into the
// single boolean. MAINTMON_FORCE_MAINTENANCE predates MAINTMON_MAINTENANCE_MODE
// and is kept for deployments that still set it.
func overrideFlag(fc *fileConfig) bool {
	if truthy(os.Getenv("MAINTMON_MAINTENANCE_MODE")) {
		return true
	}
	if truthy(os.Getenv("MAINTMON_FORCE_MAINTENANCE")) {
		return true
	}
	return fc.MaintenanceMode != nil && *fc.MaintenanceMode
}

// truthy matches the loose boolean coercion of deployment configuration:
// "1", "true", "yes" and "on" (any case) are true, everything else is false.
func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// helpers — env wins, then the optional config file, then the default

func pickString(key, fileVal, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if fileVal != "" {
		return fileVal
	}
	return def
}

func requireString(key, fileVal string) string {
	if v := pickString(key, fileVal, ""); v != "" {
		return v
	}
	panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
}

func pickBool(key string, fileVal *bool, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	if fileVal != nil {
		return *fileVal
	}
	return def
}

func pickDuration(key, fileVal string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	if fileVal != "" {
		if d, err := time.ParseDuration(fileVal); err == nil {
			return d
		}
		panic(fmt.Sprintf("❌ FATAL: Invalid duration for %s in config file: %s", key, fileVal))
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

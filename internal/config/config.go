/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config covers process level configuration read from environment variables.
type Config struct {
	Environment  string
	DataRoot     string
	StationsFile string
	HTTPBind     string
	HTTPPort     int

	// History persistence. Empty DSN disables the play log.
	HistoryDSN       string
	HistoryRetention time.Duration

	// External player binaries.
	PlayerBin string
	ProbeBin  string

	// Desktop notifications
	NotifyEnabled bool
	NotifyBin     string
	NotifyUrgency string

	// Sequencing
	RepeatBias float64

	// Tracing configuration
	TracingEnabled    bool
	OTLPEndpoint      string
	TracingSampleRate float64
}

// Load reads environment variables, applies defaults, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Environment:  getEnv("RADIOPORT_ENV", "development"),
		DataRoot:     getEnv("RADIOPORT_DATA_ROOT", "./data"),
		StationsFile: getEnv("RADIOPORT_STATIONS_FILE", ""),
		HTTPBind:     getEnv("RADIOPORT_HTTP_BIND", "0.0.0.0"),
		HTTPPort:     getEnvInt("RADIOPORT_HTTP_PORT", 8080),

		HistoryDSN:       getEnv("RADIOPORT_HISTORY_DSN", ""),
		HistoryRetention: time.Duration(getEnvInt("RADIOPORT_HISTORY_RETENTION_DAYS", 30)) * 24 * time.Hour,

		PlayerBin: getEnv("RADIOPORT_PLAYER_BIN", "ffplay"),
		ProbeBin:  getEnv("RADIOPORT_PROBE_BIN", "ffprobe"),

		NotifyEnabled: getEnvBool("RADIOPORT_NOTIFY_ENABLED", true),
		NotifyBin:     getEnv("RADIOPORT_NOTIFY_BIN", "notify-send"),
		NotifyUrgency: getEnv("RADIOPORT_NOTIFY_URGENCY", "normal"),

		RepeatBias: getEnvFloat("RADIOPORT_REPEAT_BIAS", 0.25),

		TracingEnabled:    getEnvBool("RADIOPORT_TRACING_ENABLED", false),
		OTLPEndpoint:      getEnv("RADIOPORT_OTLP_ENDPOINT", "localhost:4317"),
		TracingSampleRate: getEnvFloat("RADIOPORT_TRACING_SAMPLE_RATE", 1.0),
	}

	if cfg.StationsFile == "" {
		cfg.StationsFile = cfg.DataRoot + "/stations.yaml"
	}

	if cfg.RepeatBias <= 0 || cfg.RepeatBias > 1 {
		return nil, fmt.Errorf("RADIOPORT_REPEAT_BIAS must be in (0, 1], got %v", cfg.RepeatBias)
	}

	switch cfg.NotifyUrgency {
	case "low", "normal", "critical":
	default:
		return nil, fmt.Errorf("RADIOPORT_NOTIFY_URGENCY must be low, normal or critical, got %q", cfg.NotifyUrgency)
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if val := os.Getenv(key); val != "" {
		val = strings.ToLower(strings.TrimSpace(val))
		if val == "true" || val == "1" || val == "yes" {
			return true
		}
		if val == "false" || val == "0" || val == "no" {
			return false
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return def
}

// Package config loads obsd's settings from OBS_* environment variables
// with plain os.Getenv, no flags or config-file library involved.
package config

import (
	"os"
	"strconv"
	"strings"
)

// Config is the immutable snapshot of OBS_* environment variables built
// once at startup and passed by pointer into every component constructor.
type Config struct {
	Token             string
	WindowS           float64
	MaxEvents         int
	SlowMs            float64
	SampleRate        float64
	TraceStoreMax     int
	TraceLogsMax      int
	TraceSpansMax     int
	RecentReqsMax     int
	LogFiles          string
	TailFromStart     bool
	SnapshotFile      string
	SnapshotIntervalS int
}

// FromEnv builds a Config from the process environment, defaulting any
// variable that is unset or unparsable.
func FromEnv() *Config {
	return &Config{
		Token:             getString("OBS_TOKEN", "dev-secret"),
		WindowS:           getFloat("OBS_WINDOW_S", 120),
		MaxEvents:         getInt("OBS_MAX_EVENTS", 30000),
		SlowMs:            getFloat("OBS_SLOW_MS", 750),
		SampleRate:        getFloat("OBS_SAMPLE_RATE", 0.05),
		TraceStoreMax:     getInt("OBS_TRACE_STORE", 2000),
		TraceLogsMax:      getInt("OBS_TRACE_LOGS", 200),
		TraceSpansMax:     getInt("OBS_TRACE_SPANS", 200),
		RecentReqsMax:     getInt("OBS_RECENT_REQS", 2000),
		LogFiles:          getString("OBS_LOG_FILES", ""),
		TailFromStart:     getBool("OBS_TAIL_FROM_START", false),
		SnapshotFile:      getString("OBS_SNAPSHOT_FILE", ""),
		SnapshotIntervalS: getInt("OBS_SNAPSHOT_INTERVAL_S", 30),
	}
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v == "1" || strings.EqualFold(v, "true")
}

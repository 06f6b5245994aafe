package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the server settings, read from the environment.
type Config struct {
	Port          string
	AudioDir      string
	CheckInterval time.Duration
	MaxVideos     int
	YtdlpPath     string
}

// Load reads configuration from the environment with defaults.
func Load() Config {
	cfg := Config{
		Port:          getEnv("PORT", "8080"),
		AudioDir:      getEnv("AUDIO_DIR", "data/audio"),
		CheckInterval: time.Hour,
		MaxVideos:     10,
		YtdlpPath:     getEnv("YTDLP_PATH", "yt-dlp"),
	}

	if v := os.Getenv("CHECK_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.CheckInterval = d
		}
	}
	if v := os.Getenv("MAX_VIDEOS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxVideos = n
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Package config binds runtime settings from environment variables with
// sane local-development defaults.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	MongoURI  string
	MongoDB   string
	RedisAddr string
	HTTPPort  string

	// Persistence tier tunables; the defaults match the session runner's.
	DebounceWindow   time.Duration
	AutosaveInterval time.Duration
}

func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB", "surveyd")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DEBOUNCE_WINDOW", "500ms")
	v.SetDefault("AUTOSAVE_INTERVAL", "60s")

	return &Config{
		MongoURI:         v.GetString("MONGO_URI"),
		MongoDB:          v.GetString("MONGO_DB"),
		RedisAddr:        stripRedisScheme(v.GetString("REDIS_ADDR")),
		HTTPPort:         v.GetString("PORT"),
		DebounceWindow:   v.GetDuration("DEBOUNCE_WINDOW"),
		AutosaveInterval: v.GetDuration("AUTOSAVE_INTERVAL"),
	}
}

func stripRedisScheme(addr string) string {
	return strings.TrimPrefix(addr, "redis://")
}

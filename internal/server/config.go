package server

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/matzehuels/netdraw/pkg/session"
	"github.com/matzehuels/netdraw/pkg/storage/mongo"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = "127.0.0.1:8080"

// Config is the server configuration, typically read from a TOML file:
//
//	addr = "0.0.0.0:8080"
//	watch = "topology.json"
//	session_ttl = "12h"
//
//	[redis]
//	addr = "localhost:6379"
//
//	[mongo]
//	uri = "mongodb://localhost:27017"
//	database = "netdraw"
//
//	[log]
//	file = "/var/log/netdraw.log"
//	max_size_mb = 50
//	level = "info"
type Config struct {
	Addr       string        `toml:"addr"`
	Watch      string        `toml:"watch"`
	SessionTTL time.Duration `toml:"session_ttl"`

	Redis RedisConfig  `toml:"redis"`
	Mongo mongo.Config `toml:"mongo"`
	Log   LogConfig    `toml:"log"`
}

// RedisConfig selects a Redis server for sessions and the render cache.
// An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	DB       int    `toml:"db"`
	Password string `toml:"password"`
}

// LogConfig controls server logging. An empty File logs to stderr only.
type LogConfig struct {
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	Level      string `toml:"level"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Addr:       DefaultAddr,
		SessionTTL: session.DefaultTTL,
		Log: LogConfig{
			MaxSizeMB:  100,
			MaxBackups: 3,
			Level:      "info",
		},
	}
}

// LoadConfig reads path over the defaults. Unknown keys are an error so
// typos do not silently fall back to defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		slices.Sort(keys)
		return Config{}, fmt.Errorf("config %s: unknown keys %v", path, keys)
	}
	return cfg, nil
}

// Validate checks the configuration for values the server cannot use.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr cannot be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be positive, got %s", c.SessionTTL)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if c.Mongo.URI != "" && c.Mongo.Database == "" {
		return fmt.Errorf("mongo.database is required with mongo.uri")
	}
	return nil
}

// Writer returns the destination for log output: stderr alone, or stderr
// tee'd with a size-rotated file. The closer releases the file.
func (c LogConfig) Writer(stderr io.Writer) (io.Writer, io.Closer) {
	if c.File == "" {
		return stderr, nopCloser{}
	}
	rotated := &lumberjack.Logger{
		Filename:   c.File,
		MaxSize:    c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
	}
	return io.MultiWriter(stderr, rotated), rotated
}

// NewLogger builds the server logger from the log section.
func (c LogConfig) NewLogger(stderr io.Writer) (*log.Logger, io.Closer) {
	w, closer := c.Writer(stderr)
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          "netdraw",
	})
	if level, err := log.ParseLevel(c.Level); err == nil {
		logger.SetLevel(level)
	}
	return logger, closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

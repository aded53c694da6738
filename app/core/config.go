package core

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/opencurrent/opencurrent/app/core/srv"
)

func MustLoadBaseConfig(path string) CoreConfig {
	if path == "" {
		return LoadBaseConfigFromENV()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	conf := &CoreConfig{}
	if err = toml.Unmarshal(raw, conf); err != nil {
		panic(err)
	}
	conf.applyDefaults()

	return *conf
}

func LoadBaseConfigFromENV() CoreConfig {
	var c CoreConfig
	c.FromENV()
	c.applyDefaults()
	return c
}

type CoreConfig struct {
	Addr string `toml:"addr"`

	Log     Log           `toml:"log"`
	Vector  VectorConfig  `toml:"vector"`
	Data    DataConfig    `toml:"data"`
	AI      srv.AIConfig  `toml:"ai"`
	Ingest  IngestConfig  `toml:"ingest"`
	Request RequestConfig `toml:"request"`
}

func (c *CoreConfig) applyDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.Vector.Driver == "" {
		c.Vector.Driver = VectorDriverPgvector
	}
	if c.Data.Dir == "" {
		c.Data.Dir = "./data"
	}
	if c.Ingest.Workers <= 0 {
		c.Ingest.Workers = 3
	}
	if c.Ingest.QueueSize <= 0 {
		c.Ingest.QueueSize = 100
	}
	if c.Ingest.TaskTimeoutSeconds <= 0 {
		c.Ingest.TaskTimeoutSeconds = 120
	}
	if c.Ingest.ScratchTTLMinutes <= 0 {
		c.Ingest.ScratchTTLMinutes = 60
	}
	if c.Request.TimeoutSeconds <= 0 {
		c.Request.TimeoutSeconds = 60
	}
}

func (c *CoreConfig) FromENV() {
	c.Addr = os.Getenv("OPENCURRENT_SERVICE_ADDRESS")
	c.Log.FromENV()
	c.Vector.FromENV()
	c.Data.Dir = os.Getenv("OPENCURRENT_DATA_DIR")
	c.AI.FromENV()
	c.Ingest.Workers = envInt("OPENCURRENT_INGEST_WORKERS", 0)
	c.Ingest.TaskTimeoutSeconds = envInt("OPENCURRENT_INGEST_TASK_TIMEOUT", 0)
	c.Request.TimeoutSeconds = envInt("OPENCURRENT_REQUEST_TIMEOUT", 0)
}

const (
	VectorDriverPgvector = "pgvector"
	VectorDriverMemory   = "memory"
)

type VectorConfig struct {
	Driver   string   `toml:"driver"`
	Postgres PGConfig `toml:"postgres"`
}

func (c *VectorConfig) FromENV() {
	c.Driver = os.Getenv("OPENCURRENT_VECTOR_DRIVER")
	c.Postgres.FromENV()
}

type PGConfig struct {
	DSN string `toml:"dsn"`
}

func (m *PGConfig) FromENV() {
	m.DSN = os.Getenv("OPENCURRENT_POSTGRESQL_DSN")
}

func (c PGConfig) FormatDSN() string {
	return c.DSN
}

type DataConfig struct {
	Dir string `toml:"dir"`
}

type IngestConfig struct {
	Workers            int `toml:"workers"`
	QueueSize          int `toml:"queue_size"`
	TaskTimeoutSeconds int `toml:"task_timeout_seconds"`
	ScratchTTLMinutes  int `toml:"scratch_ttl_minutes"`
}

// RequestConfig bounds the synchronous request paths (chat, summarize,
// search), which otherwise hang as long as a stuck upstream and a patient
// client allow.
type RequestConfig struct {
	TimeoutSeconds int `toml:"timeout_seconds"`
}

func (c RequestConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type Log struct {
	Level string `toml:"level"`
	Path  string `toml:"path"`
}

func (l *Log) FromENV() {
	l.Level = os.Getenv("OPENCURRENT_LOG_LEVEL")
	l.Path = os.Getenv("OPENCURRENT_LOG_PATH")
}

func (l Log) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

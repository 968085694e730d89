// Package config handles configuration loading for the finding aggregator.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Core    CoreConfig    `yaml:"core"`
	Redis   RedisConfig   `yaml:"redis"`
	Schema  SchemaConfig  `yaml:"schema"`
	Adapter AdapterConfig `yaml:"adapter"`
}

// ServerConfig is the HTTP server configuration.
type ServerConfig struct {
	Port         int `yaml:"port"`
	ReadTimeout  int `yaml:"read_timeout"`
	WriteTimeout int `yaml:"write_timeout"`
}

// CoreConfig holds the aggregation core's tunables (spec section 6.5).
type CoreConfig struct {
	// ResultsRoot is the directory containing individual-repos/<target>/<tool>.<ext>.
	ResultsRoot string `yaml:"results_root"`
	// WorkerCount is the worker pool size. When it is 0, the
	// SECFINDINGS_WORKERS env var is used, and failing that the detected
	// parallelism; an invalid env value is ignored, not fatal. A non-zero
	// value from the config file is kept and the env var is not read.
	WorkerCount int `yaml:"worker_count"`
	// MaxFileSizeBytes bounds a single tool output file. Default 512 MiB.
	MaxFileSizeBytes int64 `yaml:"max_file_size_bytes"`
	// MaxJSONDepth bounds JSON nesting depth. Default 256.
	MaxJSONDepth int `yaml:"max_json_depth"`
}

// RedisConfig configures the optional parse-result cache. Addr empty means
// the cache runs purely in-memory.
type RedisConfig struct {
	Addr string `yaml:"addr"`
	DB   int    `yaml:"db"`
}

// SchemaConfig configures the optional schema validator.
type SchemaConfig struct {
	Enabled bool `yaml:"enabled"`
}

// AdapterConfig configures adapter discovery.
type AdapterConfig struct {
	// DevDir names a directory of hot-reloadable adapters. It is parsed from
	// the config file, but nothing reads it: no adapters are loaded from it,
	// and the registry holds only the built-in set.
	DevDir string `yaml:"dev_dir"`
}

const (
	defaultMaxFileSizeBytes = 512 * 1024 * 1024
	defaultMaxJSONDepth     = 256
	defaultPort             = 8080
	workersEnvVar           = "SECFINDINGS_WORKERS"
)

// Load reads configuration from a YAML file and applies defaults for any
// zero-valued field. A missing config file is not an error: defaults alone
// produce a usable configuration.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultPort
	}
	if cfg.Core.MaxFileSizeBytes == 0 {
		cfg.Core.MaxFileSizeBytes = defaultMaxFileSizeBytes
	}
	if cfg.Core.MaxJSONDepth == 0 {
		cfg.Core.MaxJSONDepth = defaultMaxJSONDepth
	}
	if cfg.Core.WorkerCount == 0 {
		cfg.Core.WorkerCount = resolveWorkerCount()
	}
}

// resolveWorkerCount reads SECFINDINGS_WORKERS, falling back silently to
// the detected logical CPU count on an invalid or absent value, per the
// spec's "invalid settings fall back to the default silently" rule.
func resolveWorkerCount() int {
	if v := os.Getenv(workersEnvVar); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return runtime.NumCPU()
}

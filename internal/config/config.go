package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines collector configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Storage   StorageConfig   `yaml:"storage"`
	Remote    RemoteConfig    `yaml:"remote"`
	Uploads   UploadsConfig   `yaml:"uploads"`
	Capture   CaptureConfig   `yaml:"capture"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// TransportConfig selects how the MCP server is exposed: "stdio" or "http".
type TransportConfig struct {
	Mode string `yaml:"mode"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// Path enables a rotating log file in addition to the console.
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// StorageConfig locates the local artifact directory.
type StorageConfig struct {
	Dir string `yaml:"dir"`
	// ReconcileAfter is how long an in-progress row must sit untouched
	// before serve treats its owner as gone.
	ReconcileAfter time.Duration `yaml:"reconcile_after"`
}

// RemoteConfig selects and configures the sync provider.
type RemoteConfig struct {
	Kind            string        `yaml:"kind"`
	Dir             string        `yaml:"dir"`
	Endpoint        string        `yaml:"endpoint"`
	Bucket          string        `yaml:"bucket"`
	AccessKey       string        `yaml:"access_key"`
	SecretKey       string        `yaml:"secret_key"`
	UseSSL          bool          `yaml:"use_ssl"`
	Prefix          string        `yaml:"prefix"`
	AvailabilityTTL time.Duration `yaml:"availability_ttl"`
}

type UploadsConfig struct {
	Enabled       bool          `yaml:"enabled"`
	RetryInterval time.Duration `yaml:"retry_interval"`
	StaleAfter    time.Duration `yaml:"stale_after"`
	SweepSchedule string        `yaml:"sweep_schedule"`
}

type CaptureConfig struct {
	SamplesPerSecond int           `yaml:"samples_per_second"`
	Sensors          []string      `yaml:"sensors"`
	UpdateInterval   time.Duration `yaml:"update_interval"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		DB: DBConfig{
			Path: "data/collector.db",
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  5,
			MaxBackups: 3,
		},
		Storage: StorageConfig{
			Dir:            "data/recordings",
			ReconcileAfter: 2 * time.Minute,
		},
		Remote: RemoteConfig{
			Kind:            "dir",
			Dir:             "data/remote",
			Prefix:          "recordings",
			AvailabilityTTL: 10 * time.Second,
		},
		Uploads: UploadsConfig{
			Enabled:       true,
			RetryInterval: 5 * time.Second,
			StaleAfter:    30 * time.Minute,
			SweepSchedule: "@every 1m",
		},
		Capture: CaptureConfig{
			SamplesPerSecond: 10,
			Sensors:          []string{"accelerometer", "deviceMotion", "gyro", "magnetometer"},
			UpdateInterval:   time.Second,
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("COLLECTOR_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString := func(name string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	setString("COLLECTOR_SERVER_HOST", &cfg.Server.Host)
	setString("COLLECTOR_TRANSPORT_MODE", &cfg.Transport.Mode)
	setString("COLLECTOR_DB_PATH", &cfg.DB.Path)
	setString("COLLECTOR_LOG_LEVEL", &cfg.Log.Level)
	setString("COLLECTOR_LOG_PATH", &cfg.Log.Path)
	setString("COLLECTOR_STORAGE_DIR", &cfg.Storage.Dir)
	setString("COLLECTOR_REMOTE_KIND", &cfg.Remote.Kind)
	setString("COLLECTOR_REMOTE_DIR", &cfg.Remote.Dir)
	setString("COLLECTOR_REMOTE_ENDPOINT", &cfg.Remote.Endpoint)
	setString("COLLECTOR_REMOTE_BUCKET", &cfg.Remote.Bucket)
	setString("COLLECTOR_REMOTE_ACCESS_KEY", &cfg.Remote.AccessKey)
	setString("COLLECTOR_REMOTE_SECRET_KEY", &cfg.Remote.SecretKey)
	setString("COLLECTOR_REMOTE_PREFIX", &cfg.Remote.Prefix)

	if portStr := os.Getenv("COLLECTOR_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid COLLECTOR_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("COLLECTOR_REMOTE_USE_SSL"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid COLLECTOR_REMOTE_USE_SSL: %w", err)
		}
		cfg.Remote.UseSSL = b
	}
	if v := os.Getenv("COLLECTOR_UPLOADS_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid COLLECTOR_UPLOADS_ENABLED: %w", err)
		}
		cfg.Uploads.Enabled = b
	}
	if v := os.Getenv("COLLECTOR_UPLOADS_RETRY_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid COLLECTOR_UPLOADS_RETRY_INTERVAL: %w", err)
		}
		cfg.Uploads.RetryInterval = d
	}
	if v := os.Getenv("COLLECTOR_STORAGE_RECONCILE_AFTER"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid COLLECTOR_STORAGE_RECONCILE_AFTER: %w", err)
		}
		cfg.Storage.ReconcileAfter = d
	}
	if v := os.Getenv("COLLECTOR_CAPTURE_SENSORS"); v != "" {
		var sensors []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				sensors = append(sensors, s)
			}
		}
		cfg.Capture.Sensors = sensors
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

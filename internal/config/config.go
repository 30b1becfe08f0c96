package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	NATS     NATSConfig     `yaml:"nats"`
	MinIO    MinIOConfig    `yaml:"minio"`
	Oracles  OraclesConfig  `yaml:"oracles"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	MaxConns int    `yaml:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

type NATSConfig struct {
	URL string `yaml:"url"`
}

type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// OraclesConfig addresses the two external judgment services: the face
// verifier and the zero-shot threat detector.
type OraclesConfig struct {
	FaceVerifyURL      string        `yaml:"face_verify_url"`
	ThreatDetectURL    string        `yaml:"threat_detect_url"`
	Timeout            time.Duration `yaml:"timeout"`
	DetectionThreshold float64       `yaml:"detection_threshold"`
	CandidateLabels    []string      `yaml:"candidate_labels"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads config from YAML file and applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(cfg)
	setDefaults(cfg)

	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 20
	}
	if cfg.Oracles.Timeout == 0 {
		cfg.Oracles.Timeout = 30 * time.Second
	}
	if cfg.Oracles.DetectionThreshold == 0 {
		cfg.Oracles.DetectionThreshold = 0.25
	}
	if len(cfg.Oracles.CandidateLabels) == 0 {
		cfg.Oracles.CandidateLabels = []string{
			"person with weapon",
			"normal person",
			"person with knife",
			"explosive device",
			"fighting person",
		}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DV_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("DV_API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("DV_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("DV_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("DV_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("DV_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("DV_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DV_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("DV_MINIO_ENDPOINT"); v != "" {
		cfg.MinIO.Endpoint = v
	}
	if v := os.Getenv("DV_MINIO_ACCESS_KEY"); v != "" {
		cfg.MinIO.AccessKey = v
	}
	if v := os.Getenv("DV_MINIO_SECRET_KEY"); v != "" {
		cfg.MinIO.SecretKey = v
	}
	if v := os.Getenv("DV_MINIO_BUCKET"); v != "" {
		cfg.MinIO.Bucket = v
	}
	if v := os.Getenv("DV_FACE_VERIFY_URL"); v != "" {
		cfg.Oracles.FaceVerifyURL = v
	}
	if v := os.Getenv("DV_THREAT_DETECT_URL"); v != "" {
		cfg.Oracles.ThreatDetectURL = v
	}
	if v := os.Getenv("DV_ORACLE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Oracles.Timeout = d
		}
	}
}

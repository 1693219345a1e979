package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the complete application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Client    ClientConfig    `mapstructure:"client"`
	Detection DetectionConfig `mapstructure:"detection"`
}

// ServerConfig defines aggregator ports and addresses
type ServerConfig struct {
	BindAddress     string   `mapstructure:"bind_address"`
	HTTPPort        int      `mapstructure:"http_port"`
	MetricsPort     int      `mapstructure:"metrics_port"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	Dashboard       bool     `mapstructure:"dashboard"`
	ShutdownTimeout string   `mapstructure:"shutdown_timeout"`
}

// StorageConfig defines storage backend settings
type StorageConfig struct {
	Type     string         `mapstructure:"type"` // "memory", "redis" or "dynamodb"
	Redis    RedisConfig    `mapstructure:"redis"`
	DynamoDB DynamoDBConfig `mapstructure:"dynamodb"`
}

// RedisConfig defines Redis connection settings
type RedisConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
	DialTimeout  string `mapstructure:"dial_timeout"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
}

// DynamoDBConfig defines the DynamoDB table used for statuses
type DynamoDBConfig struct {
	Table    string `mapstructure:"table"`
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"` // optional, e.g. DynamoDB Local
}

// LoggingConfig defines logging behavior
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ClientConfig defines student client settings
type ClientConfig struct {
	ServerURL         string  `mapstructure:"server_url"`
	ReportInterval    string  `mapstructure:"report_interval"`
	ReportTimeout     string  `mapstructure:"report_timeout"`
	ZonedOutThreshold string  `mapstructure:"zoned_out_threshold"`
	CameraDevice      int     `mapstructure:"camera_device"`
	FallbackFPS       float64 `mapstructure:"fallback_fps"`
	VirtualCamera     string  `mapstructure:"virtual_camera"`
	Preview           bool    `mapstructure:"preview"`
}

// DetectionConfig defines cascade model paths and sensitivity
type DetectionConfig struct {
	FaceCascade string        `mapstructure:"face_cascade"`
	EyeCascade  string        `mapstructure:"eye_cascade"`
	Face        CascadeParams `mapstructure:"face"`
	Eye         CascadeParams `mapstructure:"eye"`
}

// CascadeParams are the detectMultiScale sensitivity parameters
type CascadeParams struct {
	ScaleFactor  float64 `mapstructure:"scale_factor"`
	MinNeighbors int     `mapstructure:"min_neighbors"`
	MinSize      int     `mapstructure:"min_size"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Configure viper
	if configPath != "" {
		v.SetConfigFile(configPath)
	}
	v.SetEnvPrefix("CLASSWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if configPath != "" {
		if err := v.ReadInConfig(); err != nil {
			if !isNotFound(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			// Config file not found, use defaults and environment variables
		}
	}

	// Unmarshal config
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate config
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Defaults returns a viper instance populated only with default values.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.bind_address", "0.0.0.0")
	v.SetDefault("server.http_port", 5000)
	v.SetDefault("server.metrics_port", 9090)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.dashboard", true)
	v.SetDefault("server.shutdown_timeout", "10s")

	// Storage defaults
	v.SetDefault("storage.type", "memory")
	v.SetDefault("storage.redis.host", "localhost")
	v.SetDefault("storage.redis.port", 6379)
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.pool_size", 10)
	v.SetDefault("storage.redis.min_idle_conns", 2)
	v.SetDefault("storage.redis.dial_timeout", "5s")
	v.SetDefault("storage.redis.read_timeout", "3s")
	v.SetDefault("storage.redis.write_timeout", "3s")
	v.SetDefault("storage.dynamodb.table", "classwatch-statuses")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Client defaults
	v.SetDefault("client.server_url", "http://127.0.0.1:5000")
	v.SetDefault("client.report_interval", "3s")
	v.SetDefault("client.report_timeout", "2s")
	v.SetDefault("client.zoned_out_threshold", "2s")
	v.SetDefault("client.camera_device", 0)
	v.SetDefault("client.fallback_fps", 20.0)
	v.SetDefault("client.virtual_camera", "/dev/video10")
	v.SetDefault("client.preview", true)

	// Detection defaults
	v.SetDefault("detection.face_cascade", "haarcascade_frontalface_default.xml")
	v.SetDefault("detection.eye_cascade", "haarcascade_eye.xml")
	v.SetDefault("detection.face.scale_factor", 1.1)
	v.SetDefault("detection.face.min_neighbors", 5)
	v.SetDefault("detection.face.min_size", 50)
	v.SetDefault("detection.eye.scale_factor", 1.1)
	v.SetDefault("detection.eye.min_neighbors", 5)
	v.SetDefault("detection.eye.min_size", 30)
}

// validate validates the configuration
func validate(cfg *Config) error {
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", cfg.Server.HTTPPort)
	}
	if cfg.Server.MetricsPort <= 0 || cfg.Server.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", cfg.Server.MetricsPort)
	}

	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "memory"
	}
	switch cfg.Storage.Type {
	case "memory", "redis":
	case "dynamodb":
		if cfg.Storage.DynamoDB.Table == "" {
			return fmt.Errorf("storage.dynamodb.table is required for the dynamodb backend")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s (expected memory, redis or dynamodb)", cfg.Storage.Type)
	}

	if err := ValidateServerURL(cfg.Client.ServerURL); err != nil {
		return fmt.Errorf("invalid client server_url: %w", err)
	}

	for _, p := range []CascadeParams{cfg.Detection.Face, cfg.Detection.Eye} {
		if p.ScaleFactor <= 1.0 {
			return fmt.Errorf("cascade scale_factor must be greater than 1.0, got %v", p.ScaleFactor)
		}
		if p.MinNeighbors < 0 || p.MinSize < 0 {
			return fmt.Errorf("cascade min_neighbors and min_size must not be negative")
		}
	}

	return nil
}

// ValidateServerURL checks that raw is an absolute http(s) URL with a host.
func ValidateServerURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%q: expected http(s)://host[:port]", raw)
	}
	return nil
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return true
	}
	// SetConfigFile with a missing path surfaces an fs error instead
	return errors.Is(err, fs.ErrNotExist)
}

package config

import (
	"fmt"
	"os"
	"path"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	JwtTTL           time.Duration `yaml:"jwt_ttl" validate:"required"`
	LogLevel         string        `yaml:"log_level"`
	LogJSON          bool          `yaml:"log_json"`
	MediaRoot        string        `yaml:"media_root" validate:"required"`
	PublicPathPrefix string        `yaml:"public_path_prefix" validate:"required"`
	HTTPS            bool          `yaml:"https"`

	CorsAllowedOrigins []string `yaml:"cors_allowed_origins"`

	Thumbnails     Thumbnails     `yaml:"thumbnails"`
	PostProcessing PostProcessing `yaml:"post_processing"`
	MediaGC        MediaGC        `yaml:"media_gc"`
	RateLimits     RateLimits     `yaml:"rate_limits"`

	CannedResponsesPageLimit int `yaml:"canned_responses_page_limit" validate:"required,min=1"`
}

// Thumbnails controls derived image artifacts for image uploads.
type Thumbnails struct {
	Enabled         bool  `yaml:"enabled"`
	Width           int   `yaml:"width" validate:"required,min=1"`
	Height          int   `yaml:"height" validate:"required,min=1"`
	PreviewSize     int   `yaml:"preview_size" validate:"required,min=1"`
	JPEGQuality     int   `yaml:"jpeg_quality" validate:"required,min=1,max=100"`
	MaxDecodedBytes int64 `yaml:"max_decoded_bytes" validate:"required,min=1"`
}

type PostProcessing struct {
	Workers     int           `yaml:"workers" validate:"required,min=1"`
	QueueSize   int           `yaml:"queue_size" validate:"required,min=1"`
	TaskTimeout time.Duration `yaml:"task_timeout" validate:"required"`
}

type MediaGC struct {
	Interval        time.Duration `yaml:"interval" validate:"required"`
	SafetyThreshold time.Duration `yaml:"safety_threshold" validate:"required"`
}

// RateLimits are per user token buckets. A zero rate disables the limit.
type RateLimits struct {
	SendFile        RateLimit `yaml:"send_file"`
	CannedResponses RateLimit `yaml:"canned_responses"`
}

type RateLimit struct {
	PerSecond float64 `yaml:"per_second" validate:"gte=0"`
	Burst     int     `yaml:"burst" validate:"required_with=PerSecond,gte=0"`
}

func (r RateLimit) Enabled() bool {
	return r.PerSecond > 0
}

type Private struct {
	Pg     Pg     `yaml:"pg"`
	JwtKey string `yaml:"jwt_key" validate:"required"`
	Amqp   Amqp   `yaml:"amqp"`
}

type Pg struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"required"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password" validate:"required"`
	Dbname   string `yaml:"dbname" validate:"required"`
}

// Amqp is optional, an empty url disables event publishing.
type Amqp struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange" validate:"required_with=URL"`
}

func (c *Config) JwtKey() string {
	return c.Private.JwtKey
}

func (c *Config) JwtTTL() time.Duration {
	return c.Public.JwtTTL
}

func loadPath(configPath string, output any) error {
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("can't read config file %s: %w", configPath, err)
	}
	if err := yaml.UnmarshalStrict(configFile, output); err != nil {
		return fmt.Errorf("can't unmarshal config file %s: %w", configPath, err)
	}
	return nil
}

// Load reads public.yaml and private.yaml from configFolder and validates them.
func Load(configFolder string) (*Config, error) {
	var cfg Config
	if err := loadPath(path.Join(configFolder, "public.yaml"), &cfg.Public); err != nil {
		return nil, err
	}
	if err := loadPath(path.Join(configFolder, "private.yaml"), &cfg.Private); err != nil {
		return nil, err
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func MustLoad(configFolder string) *Config {
	cfg, err := Load(configFolder)
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

// File: internal/config/config.go
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvProduction = "production"
	EnvSandbox    = "sandbox"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// GatewayConfig holds the FreedomPay (PayBox protocol) credentials and
// endpoints. Environment selects sandbox/testing mode on the wire.
type GatewayConfig struct {
	MerchantID  string        `yaml:"merchant_id"`
	SecretKey   string        `yaml:"secret_key"`
	APIURL      string        `yaml:"api_url"`
	ScriptName  string        `yaml:"script_name"`  // signed script name of the init endpoint
	ResultURL   string        `yaml:"result_url"`   // where the gateway posts webhooks
	Currency    string        `yaml:"currency"`
	Language    string        `yaml:"language"`
	Environment string        `yaml:"environment"` // production|sandbox
	Timeout     time.Duration `yaml:"timeout"`
}

func (g GatewayConfig) Sandbox() bool { return g.Environment == EnvSandbox }

type AuthConfig struct {
	HMACSecret string        `yaml:"hmac_secret"`
	TTL        time.Duration `yaml:"ttl"`
}

type WebhookConfig struct {
	// ResultScript is the signed script name assumed when the payload carries
	// no pg_script field.
	ResultScript string        `yaml:"result_script"`
	RateLimit    int           `yaml:"rate_limit"` // webhook calls per window per payment id
	RateWindow   time.Duration `yaml:"rate_window"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Gateway  GatewayConfig  `yaml:"gateway"`
	Auth     AuthConfig     `yaml:"auth"`
	Webhook  WebhookConfig  `yaml:"webhook"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig() (*Config, error) {
	var configPath string
	var dev bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to config yaml")
	flag.BoolVar(&dev, "dev", false, "development mode")
	flag.Parse()

	return LoadFromFile(configPath, dev)
}

// LoadFromFile reads and validates a config file without touching the global
// flag set.
func LoadFromFile(configPath string, dev bool) (*Config, error) {
	b, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&cfg)

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Gateway.MerchantID == "" {
		return nil, errors.New("gateway.merchant_id is required")
	}
	if cfg.Gateway.SecretKey == "" {
		return nil, errors.New("gateway.secret_key is required")
	}
	if cfg.Gateway.Environment != EnvProduction && cfg.Gateway.Environment != EnvSandbox {
		return nil, fmt.Errorf("gateway.environment must be %q or %q", EnvProduction, EnvSandbox)
	}
	if cfg.Auth.HMACSecret == "" {
		return nil, errors.New("auth.hmac_secret is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = time.Hour
	}
	if cfg.Gateway.APIURL == "" {
		cfg.Gateway.APIURL = "https://api.freedompay.kg/init_payment.php"
	}
	if cfg.Gateway.ScriptName == "" {
		cfg.Gateway.ScriptName = "init_payment.php"
	}
	if cfg.Gateway.Currency == "" {
		cfg.Gateway.Currency = "KGS"
	}
	if cfg.Gateway.Language == "" {
		cfg.Gateway.Language = "ru"
	}
	if cfg.Gateway.Environment == "" {
		cfg.Gateway.Environment = EnvSandbox
	}
	if cfg.Gateway.Timeout <= 0 {
		cfg.Gateway.Timeout = 30 * time.Second
	}
	if cfg.Auth.TTL <= 0 {
		cfg.Auth.TTL = 30 * time.Minute
	}
	if cfg.Webhook.ResultScript == "" {
		cfg.Webhook.ResultScript = "result.php"
	}
	if cfg.Webhook.RateLimit <= 0 {
		cfg.Webhook.RateLimit = 30
	}
	if cfg.Webhook.RateWindow <= 0 {
		cfg.Webhook.RateWindow = time.Minute
	}
}

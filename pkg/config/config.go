package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		CORS            bool          `yaml:"cors"`
		SlowThreshold   time.Duration `yaml:"slow_threshold"`
		RateLimit       struct {
			Enabled      bool    `yaml:"enabled"`
			Capacity     float64 `yaml:"capacity"`
			RefillPerSec float64 `yaml:"refill_per_sec"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Snapshots struct {
		Dir string `yaml:"dir"`
	} `yaml:"snapshots"`
	Universe struct {
		Issuers    []string `yaml:"issuers"`
		Maturities []string `yaml:"maturities"`
		Defaults   struct {
			Issuer     string `yaml:"issuer"`
			PeerIssuer string `yaml:"peer_issuer"`
			Maturity   string `yaml:"maturity"`
		} `yaml:"defaults"`
	} `yaml:"universe"`
	EODHD struct {
		BaseURL  string        `yaml:"base_url"`
		APIToken string        `yaml:"api_token"`
		Exchange string        `yaml:"exchange"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"eodhd"`
	Cache struct {
		Enabled       bool          `yaml:"enabled"`
		TTL           time.Duration `yaml:"ttl"`
		MemoryMaxSize int           `yaml:"memory_max_size"`
		Redis         struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		Table            string        `yaml:"table"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
		} `yaml:"producer"`
		Consumer struct {
			Enabled    bool          `yaml:"enabled"`
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes, applies defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	c.applyEnv(os.Getenv)
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("EODHD_API_TOKEN"); v != "" {
		c.EODHD.APIToken = v
	}
	if v := getenv("SNAPSHOT_DIR"); v != "" {
		c.Snapshots.Dir = v
	}
	if v := getenv("ISSUERS"); v != "" {
		c.Universe.Issuers = splitList(v)
		if !contains(c.Universe.Issuers, c.Universe.Defaults.Issuer) {
			c.Universe.Defaults.Issuer = ""
		}
		if !contains(c.Universe.Issuers, c.Universe.Defaults.PeerIssuer) {
			c.Universe.Defaults.PeerIssuer = ""
		}
	}
	if v := getenv("MATURITIES"); v != "" {
		c.Universe.Maturities = splitList(v)
		if !contains(c.Universe.Maturities, c.Universe.Defaults.Maturity) {
			c.Universe.Defaults.Maturity = ""
		}
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	if v := getenv("REDIS_HOST"); v != "" {
		c.Cache.Redis.Host = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8050
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Server.RateLimit.Capacity == 0 {
		c.Server.RateLimit.Capacity = 20
	}
	if c.Server.RateLimit.RefillPerSec == 0 {
		c.Server.RateLimit.RefillPerSec = 10
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Snapshots.Dir == "" {
		c.Snapshots.Dir = "GovDatas"
	}
	if len(c.Universe.Issuers) == 0 {
		c.Universe.Issuers = []string{"US", "FR", "DE"}
	}
	if len(c.Universe.Maturities) == 0 {
		c.Universe.Maturities = []string{"2Y", "5Y", "10Y", "30Y"}
	}
	if c.Universe.Defaults.Issuer == "" {
		c.Universe.Defaults.Issuer = c.Universe.Issuers[0]
	}
	if c.Universe.Defaults.PeerIssuer == "" {
		c.Universe.Defaults.PeerIssuer = c.Universe.Issuers[len(c.Universe.Issuers)-1]
	}
	if c.Universe.Defaults.Maturity == "" {
		c.Universe.Defaults.Maturity = c.Universe.Maturities[len(c.Universe.Maturities)/2]
	}
	if c.EODHD.BaseURL == "" {
		c.EODHD.BaseURL = "https://eodhd.com/api/eod"
	}
	if c.EODHD.Exchange == "" {
		c.EODHD.Exchange = "GBOND"
	}
	if c.EODHD.Timeout == 0 {
		c.EODHD.Timeout = 30 * time.Second
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 15 * time.Minute
	}
	if c.Cache.MemoryMaxSize == 0 {
		c.Cache.MemoryMaxSize = 256
	}
	if c.Cache.Redis.Port == 0 {
		c.Cache.Redis.Port = 6379
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "govtracker"
	}
	if c.ClickHouse.Database == "" {
		c.ClickHouse.Database = "govtracker"
	}
	if c.ClickHouse.Table == "" {
		c.ClickHouse.Table = "gov_yields"
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "govtracker.snapshot.refreshed"
	}
	if c.Kafka.Consumer.GroupID == "" {
		c.Kafka.Consumer.GroupID = "govtracker-dashboard"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Snapshots.Dir == "" {
		return fmt.Errorf("snapshots.dir is required")
	}
	if len(c.Universe.Issuers) == 0 {
		return fmt.Errorf("universe.issuers cannot be empty")
	}
	if len(c.Universe.Maturities) == 0 {
		return fmt.Errorf("universe.maturities cannot be empty")
	}
	if !contains(c.Universe.Issuers, c.Universe.Defaults.Issuer) {
		return fmt.Errorf("universe.defaults.issuer '%s' is not in universe.issuers", c.Universe.Defaults.Issuer)
	}
	if !contains(c.Universe.Maturities, c.Universe.Defaults.Maturity) {
		return fmt.Errorf("universe.defaults.maturity '%s' is not in universe.maturities", c.Universe.Defaults.Maturity)
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be 'console' or 'json', got '%s'", c.Log.Format)
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when clickhouse is enabled")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Cache.Redis.Enabled && c.Cache.Redis.Host == "" {
		return fmt.Errorf("cache.redis.host is required when redis is enabled")
	}
	return nil
}

// ValidateFetch checks the settings only the fetch step needs.
func (c *Config) ValidateFetch() error {
	if c.EODHD.APIToken == "" {
		return fmt.Errorf("eodhd.api_token is required")
	}
	if c.EODHD.BaseURL == "" {
		return fmt.Errorf("eodhd.base_url is required")
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func contains(xs []string, v string) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

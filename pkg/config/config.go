package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Logger      struct {
		Level      string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format     string `yaml:"format" default:"json" validate:"oneof=json console"`
		Output     string `yaml:"output" default:"stdout"`
		MaxSizeMB  int    `yaml:"max_size_mb" default:"100"`
		MaxBackups int    `yaml:"max_backups" default:"5"`
		MaxAgeDays int    `yaml:"max_age_days" default:"14"`
		Collector  struct {
			Enabled        bool          `yaml:"enabled"`
			Interval       time.Duration `yaml:"interval" default:"30s"`
			CountThreshold int           `yaml:"count_threshold" default:"100"`
			Topic          string        `yaml:"topic" default:"tipfusion:logs"`
		} `yaml:"collector"`
	} `yaml:"logger"`
	Server struct {
		Port            int           `yaml:"port" default:"8080" validate:"gt=0,lt=65536"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
		RateLimit       struct {
			RPS   float64 `yaml:"rps" default:"50"`
			Burst int     `yaml:"burst" default:"100"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Kafka struct {
		Enabled        bool     `yaml:"enabled"`
		Brokers        []string `yaml:"brokers"`
		OddsTopic      string   `yaml:"odds_topic" default:"tipfusion.odds"`
		DecisionsTopic string   `yaml:"decisions_topic" default:"tipfusion.decisions"`
		PicksTopic     string   `yaml:"picks_topic" default:"tipfusion.picks"`
		RequiredAcks   int      `yaml:"required_acks" default:"1"`
		Compression    string   `yaml:"compression" default:"snappy"`
		Producer       struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"5"`
			Linger       time.Duration `yaml:"linger" default:"10ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id" default:"tipfusion"`
			Workers    int           `yaml:"workers" default:"4"`
			BufferSize int           `yaml:"buffer_size" default:"1000"`
			RetryMax   int           `yaml:"retry_max" default:"3"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"100ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"5s"`
			DLQTopic   string        `yaml:"dlq_topic" default:"tipfusion.odds.dlq"`
			MinBytes   int           `yaml:"min_bytes" default:"1"`
			MaxBytes   int           `yaml:"max_bytes" default:"10485760"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"tipfusion"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host" default:"localhost"`
		Port     int    `yaml:"port" default:"6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		PoolSize int    `yaml:"pool_size" default:"10"`
		Prefix   string `yaml:"prefix" default:"tipfusion"`
	} `yaml:"redis"`
	SQLite struct {
		Path string `yaml:"path" default:"data/bankroll.db"`
	} `yaml:"sqlite"`
	Pipeline struct {
		Engines         []string      `yaml:"engines"`
		EngineTimeout   time.Duration `yaml:"engine_timeout" default:"2s"`
		Workers         int           `yaml:"workers" default:"4" validate:"gte=1"`
		RemoteEngineURL string        `yaml:"remote_engine_url"`
		RemoteTimeout   time.Duration `yaml:"remote_timeout" default:"3s"`
		LiveStateTTL    time.Duration `yaml:"live_state_ttl" default:"3h"`
		CacheSweep      string        `yaml:"cache_sweep" default:"@every 10m" validate:"required"`
	} `yaml:"pipeline"`
	Tips struct {
		MaxSingles     int     `yaml:"max_singles" default:"4" validate:"gte=0"`
		MinValue       float64 `yaml:"min_value" default:"0.05"`
		MaxRisk        float64 `yaml:"max_risk" default:"0.65" validate:"gte=0,lte=1"`
		MinReliability float64 `yaml:"min_reliability" default:"0.40" validate:"gte=0,lte=1"`
		RequireTMX     *bool   `yaml:"require_tmx"`
		MaxLive        int     `yaml:"max_live" default:"3" validate:"gte=0"`
		MaxProp        int     `yaml:"max_prop" default:"3" validate:"gte=0"`
	} `yaml:"tips"`
	Bankroll struct {
		Single         float64 `yaml:"single" default:"1000" validate:"gte=0"`
		Kombi          float64 `yaml:"kombi" default:"300" validate:"gte=0"`
		Live           float64 `yaml:"live" default:"200" validate:"gte=0"`
		MaxDrawdown    float64 `yaml:"max_drawdown" default:"0.30" validate:"gt=0,lte=1"`
		RiskMultiplier float64 `yaml:"risk_multiplier" default:"1.0" validate:"gt=0,lte=2"`
	} `yaml:"bankroll"`
	Selector struct {
		PenaltyPolicy     string              `yaml:"penalty_policy" default:"first_registered" validate:"oneof=first_registered next_best"`
		LeaguePreferences map[string][]string `yaml:"league_preferences"`
	} `yaml:"selector"`
	Scheduler struct {
		Enabled     bool   `yaml:"enabled"`
		Timezone    string `yaml:"timezone" default:"Europe/Budapest"`
		SinglesCron string `yaml:"singles_cron" default:"0 0 9 * * *"`
		KombiCron   string `yaml:"kombi_cron" default:"0 0 12 * * *"`
		LiveCron    string `yaml:"live_cron" default:"0 * 14-23 * * *"`
	} `yaml:"scheduler"`
	Live struct {
		Enabled        bool          `yaml:"enabled"`
		FeedURL        string        `yaml:"feed_url"`
		Sports         []string      `yaml:"sports"`
		MaxRPS         float64       `yaml:"max_rps" default:"5"`
		BufferSize     int           `yaml:"buffer_size" default:"2000"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay" default:"5s"`
		PingInterval   time.Duration `yaml:"ping_interval" default:"30s"`
	} `yaml:"live"`
	Strategy struct {
		LiveFromHour int                `yaml:"live_from_hour" default:"14" validate:"gte=0,lte=23"`
		SportWeights map[string]float64 `yaml:"sport_weights"`
	} `yaml:"strategy"`
	Availability struct {
		URL      string        `yaml:"url"`
		Timeout  time.Duration `yaml:"timeout" default:"3s"`
		Retries  int           `yaml:"retries" default:"2" validate:"gte=1"`
		CacheTTL time.Duration `yaml:"cache_ttl" default:"2m"`
	} `yaml:"availability"`
	Queue struct {
		Enabled    bool          `yaml:"enabled"`
		Workers    int           `yaml:"workers" default:"1"`
		QueueSize  int           `yaml:"queue_size" default:"1000"`
		RetryLimit int           `yaml:"retry_limit" default:"3"`
		RetryDelay time.Duration `yaml:"retry_delay" default:"2s"`
		MaxDelay   time.Duration `yaml:"max_retry_delay" default:"1m"`
	} `yaml:"queue"`
}

// RequireTMX resolves the tri-state yaml flag; absent means required.
func (c *Config) RequireTMX() bool {
	return c.Tips.RequireTMX == nil || *c.Tips.RequireTMX
}

// Default returns a config populated only with defaults.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes, applies defaults and validates.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
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
	c.applyEnv()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TIPFUSION_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logger.Level = v
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
		c.ClickHouse.Enabled = true
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
		c.Redis.Enabled = true
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.SQLite.Path = v
	}
	if v := os.Getenv("LIVE_FEED_URL"); v != "" {
		c.Live.FeedURL = v
		c.Live.Enabled = true
	}
	if v := os.Getenv("REMOTE_ENGINE_URL"); v != "" {
		c.Pipeline.RemoteEngineURL = v
	}
	if v := os.Getenv("AVAILABILITY_URL"); v != "" {
		c.Availability.URL = v
	}
}

var validate = validator.New()

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Live.Enabled && c.Live.FeedURL == "" {
		return fmt.Errorf("live.feed_url is required when live feed is enabled")
	}
	if c.Queue.Enabled && !c.Redis.Enabled {
		return fmt.Errorf("queue requires redis to be enabled")
	}
	for league, models := range c.Selector.LeaguePreferences {
		if len(models) == 0 {
			return fmt.Errorf("selector.league_preferences[%s] cannot be empty", league)
		}
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"EventWeights/pkg/util"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Host            string        `yaml:"host"`
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		SlowRequest     time.Duration `yaml:"slow_request"`
		CORSOrigins     []string      `yaml:"cors_origins"` // empty disables CORS
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Store struct {
		Driver       string        `yaml:"driver"` // clickhouse, postgres or sqlite
		DSN          string        `yaml:"dsn"`    // sqlite path or postgres url; overrides host fields
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		Database     string        `yaml:"database"`
		User         string        `yaml:"user"`
		Password     string        `yaml:"password"`
		SSLMode      string        `yaml:"sslmode"`
		MaxOpenConns int           `yaml:"max_open_conns"`
		MaxIdleConns int           `yaml:"max_idle_conns"`
		DialTimeout  time.Duration `yaml:"dial_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		MaxExecTime  time.Duration `yaml:"max_execution_time"` // clickhouse only
	} `yaml:"store"`
	Calendar struct {
		EventsTable      string `yaml:"events_table"`
		OccurrencesTable string `yaml:"occurrences_table"`
	} `yaml:"calendar"`
	Instruments []InstrumentConfig `yaml:"instruments"`
	Reload      struct {
		Interval time.Duration `yaml:"interval"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"reload"`
	Features struct {
		MaxHistory int `yaml:"max_history"` // 0 keeps the full occurrence history
	} `yaml:"features"`
	Cache struct {
		Enabled bool          `yaml:"enabled"`
		TTL     time.Duration `yaml:"ttl"`
		Redis   struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Trace struct {
		Enabled bool          `yaml:"enabled"`
		URL     string        `yaml:"url"`
		Node    string        `yaml:"node"`
		Email   string        `yaml:"email"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"trace"`
	LogCollector struct {
		Enabled   bool          `yaml:"enabled"`
		Interval  time.Duration `yaml:"interval"`
		Threshold int           `yaml:"threshold"`
		Topic     string        `yaml:"topic"`
	} `yaml:"log_collector"`
	Kafka struct {
		Brokers      []string      `yaml:"brokers"`
		RequiredAcks int           `yaml:"required_acks"`
		Compression  string        `yaml:"compression"`
		MaxAttempts  int           `yaml:"max_attempts"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"kafka"`
}

// InstrumentConfig describes one traded pair and its rate tables.
type InstrumentConfig struct {
	ID    int     `yaml:"id"`
	Name  string  `yaml:"name"`
	Table string  `yaml:"table"`
	Scale float64 `yaml:"scale"`
}

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML, fills defaults and validates.
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

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("STORE_DRIVER"); v != "" {
		c.Store.Driver = v
	}
	if v := getenv("DB_HOST"); v != "" {
		c.Store.Host = v
	}
	if v := getenv("DB_PORT"); v != "" {
		c.Store.Port = util.ParseIntDefault(v, c.Store.Port)
	}
	if v := getenv("DB_USER"); v != "" {
		c.Store.User = v
	}
	if v := getenv("DB_PASSWORD"); v != "" {
		c.Store.Password = v
	}
	if v := getenv("DB_NAME"); v != "" {
		c.Store.Database = v
	}
	if v := getenv("NODE_NAME"); v != "" {
		c.Trace.Node = v
	}
	if v := getenv("ALERT_EMAIL"); v != "" {
		c.Trace.Email = v
	}
	if v := getenv("TRACE_URL"); v != "" {
		c.Trace.URL = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
}

func (c *Config) applyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8890
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
	if c.Server.SlowRequest == 0 {
		c.Server.SlowRequest = 500 * time.Millisecond
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "clickhouse"
	}
	if c.Store.MaxOpenConns == 0 {
		c.Store.MaxOpenConns = 10
	}
	if c.Store.MaxIdleConns == 0 {
		c.Store.MaxIdleConns = 5
	}
	if c.Calendar.EventsTable == "" {
		c.Calendar.EventsTable = "vlad_investing_event_index"
	}
	if c.Calendar.OccurrencesTable == "" {
		c.Calendar.OccurrencesTable = "vlad_investing_calendar"
	}
	if len(c.Instruments) == 0 {
		c.Instruments = []InstrumentConfig{
			{ID: 1, Name: "EURUSD", Table: "brain_rates_eur_usd", Scale: 0.001},
			{ID: 3, Name: "BTCUSD", Table: "brain_rates_btc_usd", Scale: 1000.0},
			{ID: 4, Name: "ETHUSD", Table: "brain_rates_eth_usd", Scale: 100.0},
		}
	}
	if c.Reload.Interval == 0 {
		c.Reload.Interval = time.Hour
	}
	if c.Reload.Timeout == 0 {
		c.Reload.Timeout = 10 * time.Minute
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 10 * time.Minute
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "weights"
	}
	if c.Trace.Node == "" {
		c.Trace.Node = "brain-weights-microservice"
	}
	if c.Trace.Timeout == 0 {
		c.Trace.Timeout = 10 * time.Second
	}
	if c.LogCollector.Topic == "" {
		c.LogCollector.Topic = "weights.errors"
	}
	if c.Kafka.RequiredAcks == 0 {
		c.Kafka.RequiredAcks = 1
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "clickhouse", "postgres", "sqlite":
	default:
		return fmt.Errorf("store.driver must be 'clickhouse', 'postgres' or 'sqlite', got '%s'", c.Store.Driver)
	}
	if c.Store.Driver == "sqlite" && c.Store.DSN == "" {
		return fmt.Errorf("store.dsn is required for sqlite")
	}
	if c.Store.Driver != "sqlite" && c.Store.DSN == "" && c.Store.Host == "" {
		return fmt.Errorf("store.host or store.dsn is required")
	}
	for _, t := range []string{c.Calendar.EventsTable, c.Calendar.OccurrencesTable} {
		if !tableName.MatchString(t) {
			return fmt.Errorf("invalid table name '%s'", t)
		}
	}
	seen := make(map[int]bool, len(c.Instruments))
	for _, in := range c.Instruments {
		if seen[in.ID] {
			return fmt.Errorf("duplicate instrument id %d", in.ID)
		}
		seen[in.ID] = true
		if !tableName.MatchString(in.Table) {
			return fmt.Errorf("invalid table name '%s' for instrument %d", in.Table, in.ID)
		}
	}
	if c.Reload.Interval < time.Second {
		return fmt.Errorf("reload.interval must be at least 1s")
	}
	if c.Features.MaxHistory < 0 {
		return fmt.Errorf("features.max_history cannot be negative")
	}
	if c.Trace.Enabled && c.Trace.URL == "" {
		return fmt.Errorf("trace.url is required when trace is enabled")
	}
	if c.LogCollector.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when log_collector is enabled")
	}
	return nil
}

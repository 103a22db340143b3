package types

// ProjectConfig is the top-level feedwatch.yaml configuration.
type ProjectConfig struct {
	Provider  string           `yaml:"provider"`
	Postgres  *PostgresConfig  `yaml:"postgres,omitempty"`
	SQLite    *SQLiteConfig    `yaml:"sqlite,omitempty"`
	Calendar  *CalendarConfig  `yaml:"calendar,omitempty"`
	FeedDirs  []string         `yaml:"feedDirs,omitempty"`
	Feeds     []string         `yaml:"feeds,omitempty"`
	Timezone  string           `yaml:"timezone,omitempty"`
	Server    *ServerConfig    `yaml:"server,omitempty"`
	Watcher   *WatcherConfig   `yaml:"watcher,omitempty"`
	Alerts    []AlertConfig    `yaml:"alerts,omitempty"`
	Redis     *RedisConfig     `yaml:"redis,omitempty"`
	Breaker   *BreakerConfig   `yaml:"breaker,omitempty"`
	Logging   *LoggingConfig   `yaml:"logging,omitempty"`
	Telemetry *TelemetryConfig `yaml:"telemetry,omitempty"`
}

// PostgresConfig holds the monitoring store connection. DSNSecret names an
// AWS Secrets Manager secret whose value replaces DSN.
type PostgresConfig struct {
	DSN       string `yaml:"dsn,omitempty"`
	DSNSecret string `yaml:"dsnSecret,omitempty"`
	Migrate   bool   `yaml:"migrate,omitempty"`
}

// SQLiteConfig holds the local monitoring store path.
type SQLiteConfig struct {
	Path    string `yaml:"path"`
	Migrate bool   `yaml:"migrate,omitempty"`
}

// CalendarConfig selects where business days come from. When Name is set,
// business days are computed from the named holiday calendar instead of the
// store's calendar table.
type CalendarConfig struct {
	Name string   `yaml:"name,omitempty"`
	Dirs []string `yaml:"dirs,omitempty"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr   string `yaml:"addr"`
	APIKey string `yaml:"apiKey,omitempty"`
}

// AlertWindow restricts alert delivery to weekday office hours.
type AlertWindow struct {
	Start string `yaml:"start"` // "07:00"
	End   string `yaml:"end"`   // "18:00"
}

// WatcherConfig controls the status polling loop.
type WatcherConfig struct {
	Enabled     bool         `yaml:"enabled"`
	Interval    string       `yaml:"interval,omitempty"`
	AlertWindow *AlertWindow `yaml:"alertWindow,omitempty"`
}

// AlertConfig configures one alert sink.
type AlertConfig struct {
	Type     AlertType `yaml:"type"`
	URL      string    `yaml:"url,omitempty"`
	Path     string    `yaml:"path,omitempty"`
	EventBus string    `yaml:"eventBus,omitempty"`
	QueueURL string    `yaml:"queueUrl,omitempty"`
}

// RedisConfig holds the status cache connection.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password,omitempty"`
	DB        int    `yaml:"db,omitempty"`
	KeyPrefix string `yaml:"keyPrefix,omitempty"`
	TTL       string `yaml:"ttl,omitempty"` // default "24h"
}

// BreakerConfig tunes the circuit breaker around record queries.
type BreakerConfig struct {
	FailThreshold int    `yaml:"failThreshold,omitempty"`
	Cooldown      string `yaml:"cooldown,omitempty"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error
	Format string `yaml:"format,omitempty"` // text, json
}

// TelemetryConfig enables OTLP export when Endpoint is set.
type TelemetryConfig struct {
	Endpoint    string `yaml:"endpoint,omitempty"`
	Insecure    bool   `yaml:"insecure,omitempty"`
	ServiceName string `yaml:"serviceName,omitempty"`
}

package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	L1         ChainConfig      `mapstructure:"l1"`
	L2         ChainConfig      `mapstructure:"l2"`
	Bridge     BridgeConfig     `mapstructure:"bridge"`
	Fees       FeesConfig       `mapstructure:"fees"`
	Fast       FastConfig       `mapstructure:"fast"`
	Relayer    RelayerConfig    `mapstructure:"relayer"`
	API        APIConfig        `mapstructure:"api"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// ChainConfig describes one side of the bridge pair
type ChainConfig struct {
	Name             string `mapstructure:"name"`
	BridgeAddress    string `mapstructure:"bridge_address"`
	NFTBridgeAddress string `mapstructure:"nft_bridge_address"`
	MessengerAddress string `mapstructure:"messenger_address"`
	PoolAddress      string `mapstructure:"pool_address"`
	AdminAddress     string `mapstructure:"admin_address"`
	NativeWrapper    string `mapstructure:"native_wrapper"`
	DefaultGasLimit  uint64 `mapstructure:"default_gas_limit"`
	DomainName       string `mapstructure:"domain_name"`
	DomainVersion    string `mapstructure:"domain_version"`
}

// BridgeConfig contains bridge operation settings. MaxRetries and RetryDelay
// bound the relayer's redelivery attempts for a failed finalize.
type BridgeConfig struct {
	ProtocolVersion int           `mapstructure:"protocol_version"`
	MaxRetries      int           `mapstructure:"max_retries"`
	RetryDelay      time.Duration `mapstructure:"retry_delay"`
}

// FeesConfig contains the fee engine settings
type FeesConfig struct {
	FlatFeeWei           string `mapstructure:"flat_fee_wei"`
	BridgingFeeNumerator uint64 `mapstructure:"bridging_fee_numerator"`
	FlatFeeRecipient     string `mapstructure:"flat_fee_recipient"`
	CapInclusive         bool   `mapstructure:"cap_inclusive"`
}

// FastConfig contains the fast-withdrawal path settings
type FastConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	BackendAddress   string `mapstructure:"backend_address"`
	SupersonicFeeWei string `mapstructure:"supersonic_fee_wei"`
	KeySeed          string `mapstructure:"key_seed"`
}

// RelayerConfig contains message relay settings
type RelayerConfig struct {
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	BatchSize      int           `mapstructure:"batch_size"`
	ReconcileEvery time.Duration `mapstructure:"reconcile_every"`
}

// APIConfig contains admin API settings
type APIConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	JWTIssuer      string        `mapstructure:"jwt_issuer"`
	TokenTTL       time.Duration `mapstructure:"token_ttl"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// MonitoringConfig contains monitoring and metrics settings
type MonitoringConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	MetricsPort int  `mapstructure:"metrics_port"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "60s")
	viper.SetDefault("server.shutdown_timeout", "30s")

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.database", "standard_bridge")

	// Chain defaults
	viper.SetDefault("l1.name", "l1")
	viper.SetDefault("l1.default_gas_limit", 200000)
	viper.SetDefault("l1.domain_name", "StandardBridge")
	viper.SetDefault("l1.domain_version", "1")
	viper.SetDefault("l2.name", "l2")
	viper.SetDefault("l2.default_gas_limit", 200000)
	viper.SetDefault("l2.domain_name", "StandardBridge")
	viper.SetDefault("l2.domain_version", "1")

	// Bridge defaults
	viper.SetDefault("bridge.protocol_version", 2)
	viper.SetDefault("bridge.max_retries", 3)
	viper.SetDefault("bridge.retry_delay", "1m")

	// Fee defaults
	viper.SetDefault("fees.flat_fee_wei", "1000000000000000")
	viper.SetDefault("fees.bridging_fee_numerator", 3)
	viper.SetDefault("fees.cap_inclusive", false)

	// Fast-withdrawal defaults
	viper.SetDefault("fast.enabled", false)
	viper.SetDefault("fast.supersonic_fee_wei", "0")

	// Relayer defaults
	viper.SetDefault("relayer.poll_interval", "5s")
	viper.SetDefault("relayer.batch_size", 32)
	viper.SetDefault("relayer.reconcile_every", "5m")

	// API defaults
	viper.SetDefault("api.jwt_issuer", "standard-bridge")
	viper.SetDefault("api.token_ttl", "1h")
	viper.SetDefault("api.request_timeout", "30s")

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", true)
	viper.SetDefault("monitoring.metrics_port", 9090)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output_path", "stdout")
}

func validate(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if config.L1.BridgeAddress == "" {
		return fmt.Errorf("l1.bridge_address is required")
	}
	if config.L2.BridgeAddress == "" {
		return fmt.Errorf("l2.bridge_address is required")
	}
	if config.L1.AdminAddress == "" {
		return fmt.Errorf("l1.admin_address is required")
	}
	if config.L2.AdminAddress == "" {
		return fmt.Errorf("l2.admin_address is required")
	}
	if config.Fees.FlatFeeRecipient == "" {
		return fmt.Errorf("fees.flat_fee_recipient is required")
	}
	if config.Bridge.ProtocolVersion != 1 && config.Bridge.ProtocolVersion != 2 {
		return fmt.Errorf("bridge.protocol_version must be 1 or 2")
	}
	if config.Fees.BridgingFeeNumerator >= 1000 {
		return fmt.Errorf("fees.bridging_fee_numerator must be below 1000")
	}
	if config.Fast.Enabled && config.Fast.BackendAddress == "" && config.Fast.KeySeed == "" {
		return fmt.Errorf("fast.backend_address or fast.key_seed is required when fast.enabled")
	}
	if config.API.JWTSecret == "" {
		return fmt.Errorf("api.jwt_secret is required")
	}
	return nil
}

// GetConnectionString returns a PostgreSQL connection string
func (c *DatabaseConfig) GetConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

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
	Chain      ChainConfig      `mapstructure:"chain"`
	Identity   IdentityConfig   `mapstructure:"identity"`
	Anchor     AnchorConfig     `mapstructure:"anchor"`
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

// ChainConfig contains settings for the on-chain report registry
type ChainConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	RPCURL           string `mapstructure:"rpc_url"`
	ChainID          int64  `mapstructure:"chain_id"`
	RegistryContract string `mapstructure:"registry_contract"`
	AnchorPrivateKey string `mapstructure:"anchor_private_key"`
	GasLimit         uint64 `mapstructure:"gas_limit"`
}

// IdentityConfig contains reporter identity and session settings
type IdentityConfig struct {
	// SessionSecretEnv names the environment variable holding the
	// base64-encoded master secret for session token signing.
	SessionSecretEnv string        `mapstructure:"session_secret_env"`
	SessionIssuer    string        `mapstructure:"session_issuer"`
	SessionTTL       time.Duration `mapstructure:"session_ttl"`
}

// AnchorConfig contains anchor worker settings
type AnchorConfig struct {
	Interval   time.Duration `mapstructure:"interval"`
	BatchSize  int           `mapstructure:"batch_size"`
	MaxRetries int           `mapstructure:"max_retries"`
}

// MonitoringConfig contains monitoring and metrics settings
type MonitoringConfig struct {
	Enabled bool `mapstructure:"enabled"`
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
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "60s")
	viper.SetDefault("server.shutdown_timeout", "30s")

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.database", "roadguard")

	// Chain defaults
	viper.SetDefault("chain.enabled", false)
	viper.SetDefault("chain.chain_id", 31337)
	viper.SetDefault("chain.gas_limit", 200000)

	// Identity defaults
	viper.SetDefault("identity.session_secret_env", "ROADGUARD_SESSION_SECRET")
	viper.SetDefault("identity.session_issuer", "roadguard")
	viper.SetDefault("identity.session_ttl", "24h")

	// Anchor worker defaults
	viper.SetDefault("anchor.interval", "30s")
	viper.SetDefault("anchor.batch_size", 25)
	viper.SetDefault("anchor.max_retries", 3)

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", true)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output_path", "stdout")
}

func validate(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if config.Chain.Enabled {
		if config.Chain.RPCURL == "" {
			return fmt.Errorf("chain.rpc_url is required when chain anchoring is enabled")
		}
		if config.Chain.RegistryContract == "" {
			return fmt.Errorf("chain.registry_contract is required when chain anchoring is enabled")
		}
		if config.Chain.AnchorPrivateKey == "" {
			return fmt.Errorf("chain.anchor_private_key is required when chain anchoring is enabled")
		}
	}
	return nil
}

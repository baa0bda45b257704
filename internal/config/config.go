package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	GRPC      GRPCConfig      `mapstructure:"grpc"`
	Database  DBConfig        `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	Market    MarketConfig    `mapstructure:"market"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Bootstrap BootstrapConfig `mapstructure:"bootstrap"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug | release | test
}

type GRPCConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Output string `mapstructure:"output"` // stdout | file
	File   string `mapstructure:"file"`
}

// MarketConfig — денежные параметры маркетплейса.
type MarketConfig struct {
	CommissionRate      float64 `mapstructure:"commission_rate"`
	ClientSurchargeRate float64 `mapstructure:"client_surcharge_rate"`
}

func (m MarketConfig) Commission() decimal.Decimal {
	return decimal.NewFromFloat(m.CommissionRate)
}

func (m MarketConfig) Surcharge() decimal.Decimal {
	return decimal.NewFromFloat(m.ClientSurchargeRate)
}

type SchedulerConfig struct {
	DisputeDigestInterval int `mapstructure:"dispute_digest_interval"` // секунд, 0 — выключено
}

type NotifyConfig struct {
	Workers int `mapstructure:"workers"`
}

// BootstrapConfig: администратор, которого заводим при старте.
// Через API роль admin себе не выдать.
type BootstrapConfig struct {
	AdminEmail string `mapstructure:"admin_email"`
	AdminName  string `mapstructure:"admin_name"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("grpc.addr", ":50051")

	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.host", "postgres")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "market")
	v.SetDefault("database.password", "market")
	v.SetDefault("database.name", "market_db")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "UTC")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime_min", 30)
	v.SetDefault("database.sqlite_path", "market.db")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file", "logs/market.log")

	v.SetDefault("market.commission_rate", 0.10)
	v.SetDefault("market.client_surcharge_rate", 0.05)

	v.SetDefault("scheduler.dispute_digest_interval", 300)
	v.SetDefault("notify.workers", 16)
	v.SetDefault("bootstrap.admin_email", "")
	v.SetDefault("bootstrap.admin_name", "Administrator")
}

// Load читает config.yaml (если есть) и переменные окружения:
// database.host -> DATABASE_HOST, market.commission_rate -> MARKET_COMMISSION_RATE.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config", "/etc/marketplace"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Database.Validate(); err != nil {
		return nil, err
	}
	if cfg.Market.CommissionRate < 0 || cfg.Market.CommissionRate >= 1 {
		return nil, fmt.Errorf("invalid market config: commission_rate must be in [0, 1)")
	}
	if cfg.Market.ClientSurchargeRate < 0 {
		return nil, fmt.Errorf("invalid market config: client_surcharge_rate must be non-negative")
	}

	return &cfg, nil
}

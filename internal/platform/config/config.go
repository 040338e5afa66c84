// Package config loads process configuration with viper: a TOML file plus
// APP_-prefixed environment variable overrides layered on top.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration object for the bond matching service.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	HTTP        HTTPConfig        `mapstructure:"http"`
	Redis       RedisConfig       `mapstructure:"redis"`
	MySQL       MySQLConfig       `mapstructure:"mysql"`
	Kafka       KafkaConfig       `mapstructure:"kafka"`
	Instruments []string          `mapstructure:"instruments"`
}

// ServerConfig carries process-wide identity fields used in logs.
type ServerConfig struct {
	Name string `mapstructure:"name"`
}

// HTTPConfig configures the caller-facing gin router.
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// RedisConfig configures the Redis-backed storage.Store.
type RedisConfig struct {
	Addrs    []string `mapstructure:"addrs"`
	Password string   `mapstructure:"password"`
	DB       int      `mapstructure:"db"`
}

// MySQLConfig configures the gorm-backed compliance store.
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// KafkaConfig configures the trade-event publisher. Brokers empty means
// no publisher is wired and trade events are discarded.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// Load reads configPath (a TOML file) and layers APP_-prefixed
// environment variables over it, matching keys by replacing "." with "_".
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.name", "bondmatch")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("redis.addrs", []string{"localhost:6379"})
	v.SetDefault("redis.db", 0)
	v.SetDefault("kafka.topic", "bonds.trades")
}

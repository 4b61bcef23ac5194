// Package config provides configuration loading and validation.
//
// Configuration is loaded with the following priority (highest to lowest):
//  1. Command-line flags (not handled here, see cmd/overdns/main.go)
//  2. Environment variables
//  3. Hardcoded defaults
//
// Environment keys are unprefixed and match the deployment's historical
// names: BIND, PORT, REDIS, REDIS_PORT, REDIS_DB, REDIS_POOL_SIZE,
// DNS_RELAY, DNS_RELAY_TIMEOUT, TTL, LOG_LEVEL, LOG_JSON, API_ENABLED,
// API_BIND, API_PORT, API_KEY.
//
// DNS_RELAY defaults to the first nameserver of /etc/resolv.conf, falling
// back to 8.8.8.8 when the file is missing or lists none.
//
// All configuration is validated during Load to fail early on bad values.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/overdns/overdns/internal/helpers"
)

// Defaults for every recognized option.
const (
	DefaultBind          = "0.0.0.0"
	DefaultPort          = 53
	DefaultStoreHost     = "127.0.0.1"
	DefaultStorePort     = 6379
	DefaultStoreDB       = 0
	DefaultStorePoolSize = 20
	DefaultTTL           = 128
	DefaultAPIBind       = "127.0.0.1"
	DefaultAPIPort       = 8080
)

// initConfig sets up the loader with defaults and env binding.
func initConfig() *viper.Viper {
	v := viper.New()

	v.SetDefault("bind", DefaultBind)
	v.SetDefault("port", DefaultPort)
	v.SetDefault("redis", DefaultStoreHost)
	v.SetDefault("redis_port", DefaultStorePort)
	v.SetDefault("redis_db", DefaultStoreDB)
	v.SetDefault("redis_pool_size", DefaultStorePoolSize)
	v.SetDefault("dns_relay", "")
	v.SetDefault("dns_relay_timeout", "3s")
	v.SetDefault("ttl", DefaultTTL)
	v.SetDefault("log_level", "INFO")
	v.SetDefault("log_json", false)
	v.SetDefault("api_enabled", false)
	v.SetDefault("api_bind", DefaultAPIBind)
	v.SetDefault("api_port", DefaultAPIPort)
	v.SetDefault("api_key", "")

	// Unprefixed env binding: the key "redis_db" reads REDIS_DB.
	v.AutomaticEnv()

	return v
}

// Load builds a validated Config from environment and defaults.
func Load() (*Config, error) {
	v := initConfig()

	relay := strings.TrimSpace(v.GetString("dns_relay"))
	if relay == "" {
		relay = DefaultResolver()
	}

	timeout, err := time.ParseDuration(v.GetString("dns_relay_timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid DNS_RELAY_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("bind"),
			Port: v.GetInt("port"),
		},
		Store: StoreConfig{
			Host:     v.GetString("redis"),
			Port:     v.GetInt("redis_port"),
			DB:       v.GetInt("redis_db"),
			PoolSize: v.GetInt("redis_pool_size"),
		},
		Upstream: UpstreamConfig{
			Address: relay,
			Timeout: timeout,
		},
		TTL: helpers.ClampIntToUint32(v.GetInt("ttl")),
		Logging: LoggingConfig{
			Level: v.GetString("log_level"),
			JSON:  v.GetBool("log_json"),
		},
		API: APIConfig{
			Enabled: v.GetBool("api_enabled"),
			Host:    v.GetString("api_bind"),
			Port:    v.GetInt("api_port"),
			APIKey:  v.GetString("api_key"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values no component could run with.
func (c *Config) Validate() error {
	if c.Server.Host == "" {
		return fmt.Errorf("bind host must not be empty")
	}
	if err := validatePort("port", c.Server.Port); err != nil {
		return err
	}
	if c.Store.Host == "" {
		return fmt.Errorf("store host must not be empty")
	}
	if err := validatePort("redis_port", c.Store.Port); err != nil {
		return err
	}
	if c.Store.DB < 0 {
		return fmt.Errorf("redis_db must not be negative, got %d", c.Store.DB)
	}
	if c.Store.PoolSize < 1 {
		return fmt.Errorf("redis_pool_size must be at least 1, got %d", c.Store.PoolSize)
	}
	if c.Upstream.Address == "" {
		return fmt.Errorf("upstream resolver address must not be empty")
	}
	if c.API.Enabled {
		if err := validatePort("api_port", c.API.Port); err != nil {
			return err
		}
	}
	return nil
}

func validatePort(name string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s must be in [1, 65535], got %d", name, port)
	}
	return nil
}

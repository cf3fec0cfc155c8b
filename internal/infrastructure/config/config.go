package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "github.com/formcraft-io/formcraft/internal/shared/config"
)

const defaultJWTSecret = "change-me-in-production"

type Config struct {
	Server     sharedConfig.ServerConfig     `mapstructure:"server"`
	Database   sharedConfig.DatabaseConfig   `mapstructure:"database"`
	Logger     sharedConfig.LoggerConfig     `mapstructure:"logger"`
	Auth       sharedConfig.AuthConfig       `mapstructure:"auth"`
	Email      sharedConfig.EmailConfig      `mapstructure:"email"`
	Redis      sharedConfig.RedisConfig      `mapstructure:"redis"`
	Stripe     sharedConfig.StripeConfig     `mapstructure:"stripe"`
	Quota      sharedConfig.QuotaConfig      `mapstructure:"quota"`
	Dunning    sharedConfig.DunningConfig    `mapstructure:"dunning"`
	RateLimit  sharedConfig.RateLimitConfig  `mapstructure:"ratelimit"`
	Permission sharedConfig.PermissionConfig `mapstructure:"permission"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load reads configs/config.yaml, overlays FORMCRAFT_* environment
// variables and caches the result for Get.
func Load(env string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../configs")
	v.AddConfigPath("../../configs")

	v.SetEnvPrefix("FORMCRAFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		v.Set("server.mode", env)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.base_url", "http://localhost:8080")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "formcraft_dev")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	v.SetDefault("auth.password.bcrypt_cost", 12)
	v.SetDefault("auth.jwt.secret", defaultJWTSecret)
	v.SetDefault("auth.jwt.access_exp_minutes", 60)

	v.SetDefault("email.smtp_host", "localhost")
	v.SetDefault("email.smtp_port", 1025)
	v.SetDefault("email.from_address", "noreply@formcraft.local")
	v.SetDefault("email.from_name", "Formcraft")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	v.SetDefault("stripe.success_url", "http://localhost:3000/billing/success")
	v.SetDefault("stripe.cancel_url", "http://localhost:3000/billing/cancel")
	v.SetDefault("stripe.portal_return_url", "http://localhost:3000/billing")

	v.SetDefault("quota.version_cap", 10)
	v.SetDefault("quota.limits_cache_ttl_seconds", 300)

	v.SetDefault("dunning.retry_days", []int{3, 5, 7})
	v.SetDefault("dunning.grace_days", 7)
	v.SetDefault("dunning.free_plan_slug", "free")
	v.SetDefault("dunning.downgrade_schedule", "@every 1h")

	v.SetDefault("ratelimit.submissions_per_minute", 30)

	v.SetDefault("permission.model_path", "configs/rbac_model.conf")
}

// One retry delay per notice stage before suspension.
const dunningNoticeStages = 3

// Validate rejects settings the services cannot start with.
func (c *Config) Validate() error {
	if c.Quota.VersionCap < 2 {
		return fmt.Errorf("quota.version_cap must be at least 2, got %d", c.Quota.VersionCap)
	}
	if len(c.Dunning.RetryDays) != dunningNoticeStages {
		return fmt.Errorf("dunning.retry_days must have exactly %d entries, got %d", dunningNoticeStages, len(c.Dunning.RetryDays))
	}
	for i, d := range c.Dunning.RetryDays {
		if d <= 0 {
			return fmt.Errorf("dunning.retry_days[%d] must be positive", i)
		}
	}
	if c.Dunning.GraceDays <= 0 {
		return fmt.Errorf("dunning.grace_days must be positive")
	}
	if c.Dunning.FreePlanSlug == "" {
		return fmt.Errorf("dunning.free_plan_slug is required")
	}
	if c.Server.Mode == "release" || c.Server.Mode == "production" {
		if c.Auth.JWT.Secret == "" || c.Auth.JWT.Secret == defaultJWTSecret {
			return fmt.Errorf("auth.jwt.secret must be set in production")
		}
		if c.Stripe.WebhookSecret == "" {
			return fmt.Errorf("stripe.webhook_secret must be set in production")
		}
	}
	return nil
}

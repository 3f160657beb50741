package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	attendance "github.com/goliatone/go-attendance/components/attendance"
)

// EnvPrefix namespaces environment overrides, e.g. ATTEND_BASE_URL.
const EnvPrefix = "ATTEND"

// Config is the resolved client configuration shared by both hosts.
type Config struct {
	BaseURL       string  `mapstructure:"base_url"`
	Locale        string  `mapstructure:"locale"`
	ThemeFile     string  `mapstructure:"theme_file"`
	RedisAddr     string  `mapstructure:"redis_addr"`
	RedisPrefix   string  `mapstructure:"redis_prefix"`
	Listen        string  `mapstructure:"listen"`
	MetricsListen string  `mapstructure:"metrics_listen"`
	Debug         bool    `mapstructure:"debug"`
	Demo          bool    `mapstructure:"demo"`
	Breaker       Breaker `mapstructure:"breaker"`
}

// Breaker configures the optional request guard.
type Breaker struct {
	Enabled  bool          `mapstructure:"enabled"`
	Failures uint32        `mapstructure:"failures"`
	Cooldown time.Duration `mapstructure:"cooldown"`
}

// Sources lists optional files layered over the defaults.
type Sources struct {
	// ConfigFile is a YAML file. Missing is an error when set.
	ConfigFile string
	// EnvFile is a dotenv file. Missing is ignored.
	EnvFile string
}

// Load resolves defaults, then ConfigFile, then EnvFile, then ATTEND_* variables.
// Variables already present in the environment win over EnvFile.
func Load(src Sources) (Config, error) {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	setDefaults(v)

	if src.ConfigFile != "" {
		v.SetConfigFile(src.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", src.ConfigFile, err)
		}
	}
	if src.EnvFile != "" {
		if _, err := os.Stat(src.EnvFile); err == nil {
			if err := godotenv.Load(src.EnvFile); err != nil {
				return Config{}, fmt.Errorf("config: load %s: %w", src.EnvFile, err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("config: stat %s: %w", src.EnvFile, err)
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_url", "http://localhost:5000")
	v.SetDefault("locale", attendance.DefaultLocale)
	v.SetDefault("theme_file", "")
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_prefix", "")
	v.SetDefault("listen", "127.0.0.1:8088")
	v.SetDefault("metrics_listen", "")
	v.SetDefault("debug", false)
	v.SetDefault("demo", false)
	v.SetDefault("breaker.enabled", false)
	v.SetDefault("breaker.failures", 3)
	v.SetDefault("breaker.cooldown", 30*time.Second)
}

// Validate reports configuration that cannot produce a working client.
func (c Config) Validate() error {
	var errs []error
	if !c.Demo {
		u, err := url.Parse(c.BaseURL)
		switch {
		case strings.TrimSpace(c.BaseURL) == "":
			errs = append(errs, errors.New("config: base_url is required"))
		case err != nil:
			errs = append(errs, fmt.Errorf("config: base_url: %w", err))
		case u.Scheme != "http" && u.Scheme != "https":
			errs = append(errs, fmt.Errorf("config: base_url %q must be http or https", c.BaseURL))
		case u.Host == "":
			errs = append(errs, fmt.Errorf("config: base_url %q has no host", c.BaseURL))
		}
	}
	if c.ThemeFile != "" && c.RedisAddr != "" {
		errs = append(errs, errors.New("config: theme_file and redis_addr are mutually exclusive"))
	}
	if c.Breaker.Enabled {
		if c.Breaker.Failures == 0 {
			errs = append(errs, errors.New("config: breaker.failures must be positive"))
		}
		if c.Breaker.Cooldown <= 0 {
			errs = append(errs, errors.New("config: breaker.cooldown must be positive"))
		}
	}
	return errors.Join(errs...)
}

package config

import (
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. SMS_GATEWAY_API_TOKEN
// for gateway.api_token.
const EnvPrefix = "SMS"

// Config holds all runtime configuration. Values come from, in increasing
// precedence: defaults, an optional config.yaml, a .env file and the
// environment. Only the gateway credentials and base URL have no default.
type Config struct {
	HTTP    HTTP    `mapstructure:"http"`
	Gateway Gateway `mapstructure:"gateway"`
	Log     Log     `mapstructure:"log"`

	// Source is the config file that was read, empty when none was found.
	Source string `mapstructure:"-"`
}

type HTTP struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

// Gateway configures the upstream SMS gateway.
type Gateway struct {
	BaseURL  string `mapstructure:"base_url"`
	APIToken string `mapstructure:"api_token"`
	SID      string `mapstructure:"sid"`
	// Timeout bounds one whole dispatch, gateway round trip included.
	Timeout time.Duration `mapstructure:"timeout"`
}

// Log configures the console logger and the rolling log file.
// An empty File disables file logging.
type Log struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// Load reads the configuration. configFile, when non-empty, names the YAML
// file to read; otherwise config.yaml is looked up in . and ./configs and
// may be absent.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(err, "load .env")
	}

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	cfg.Source = v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.port", "8080")
	v.SetDefault("http.read_timeout", 5*time.Second)
	v.SetDefault("http.write_timeout", 60*time.Second)
	v.SetDefault("http.shutdown_timeout", 30*time.Second)
	v.SetDefault("http.max_body_bytes", 1<<20)
	v.SetDefault("http.cors_origins", []string{"*"})

	v.SetDefault("gateway.base_url", "")
	v.SetDefault("gateway.api_token", "")
	v.SetDefault("gateway.sid", "")
	v.SetDefault("gateway.timeout", 30*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "log/sms-engine.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
}

// Validate reports the first missing or malformed required setting.
func (c *Config) Validate() error {
	required := []struct {
		key, value string
	}{
		{"gateway.base_url", c.Gateway.BaseURL},
		{"gateway.api_token", c.Gateway.APIToken},
		{"gateway.sid", c.Gateway.SID},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return errors.Errorf("%s is required (set %s)", r.key, envName(r.key))
		}
	}
	u, err := url.Parse(c.Gateway.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.Errorf("gateway.base_url must be an absolute http(s) URL, got %q", c.Gateway.BaseURL)
	}
	if c.Gateway.Timeout <= 0 {
		return errors.New("gateway.timeout must be positive")
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		return errors.New("http.max_body_bytes must be positive")
	}
	return nil
}

func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

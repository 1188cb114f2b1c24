package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ProviderResend = "resend"
	ProviderDapr   = "dapr"
	ProviderMemory = "memory"
)

type ProviderConfig struct {
	Kind           string        `mapstructure:"kind"`
	ResendAPIKey   string        `mapstructure:"resend_api_key"`
	AudienceID     string        `mapstructure:"audience_id"`
	DaprBinding    string        `mapstructure:"dapr_binding"`
	DaprOperation  string        `mapstructure:"dapr_operation"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type TelemetryConfig struct {
	Stdout bool `mapstructure:"stdout"`
}

// Config is built once at process start and handed to every component that
// needs it. Nothing reads the environment after Load returns.
type Config struct {
	ServiceName    string          `mapstructure:"service_name"`
	ServiceVersion string          `mapstructure:"service_version"`
	Port           string          `mapstructure:"port"`
	GinMode        string          `mapstructure:"gin_mode"`
	LogLevel       string          `mapstructure:"log_level"`
	RepeatWindow   time.Duration   `mapstructure:"repeat_window"`
	Provider       ProviderConfig  `mapstructure:"provider"`
	Telemetry      TelemetryConfig `mapstructure:"telemetry"`
}

var envBindings = map[string][]string{
	"service_name":             {"SERVICE_NAME"},
	"service_version":          {"SERVICE_VERSION"},
	"port":                     {"PORT"},
	"gin_mode":                 {"GIN_MODE"},
	"log_level":                {"LOG_LEVEL"},
	"repeat_window":            {"REPEAT_WINDOW"},
	"provider.kind":            {"PROVIDER"},
	"provider.resend_api_key":  {"RESEND_API_KEY"},
	"provider.audience_id":     {"RESEND_AUDIENCE_ID"},
	"provider.dapr_binding":    {"DAPR_BINDING"},
	"provider.dapr_operation":  {"DAPR_BINDING_OPERATION"},
	"provider.request_timeout": {"PROVIDER_TIMEOUT"},
	"telemetry.stdout":         {"TRACE_STDOUT"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "rebateforge-site")
	v.SetDefault("service_version", "1.0.0")
	v.SetDefault("port", "8080")
	v.SetDefault("gin_mode", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("repeat_window", 10*time.Minute)
	v.SetDefault("provider.kind", ProviderResend)
	v.SetDefault("provider.resend_api_key", "")
	v.SetDefault("provider.audience_id", "")
	v.SetDefault("provider.dapr_binding", "resend-contacts")
	v.SetDefault("provider.dapr_operation", "create")
	v.SetDefault("provider.request_timeout", 10*time.Second)
	v.SetDefault("telemetry.stdout", false)
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in increasing precedence. A missing provider credential is not
// an error here; it surfaces when the provider is called.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	cfg.Provider.Kind = strings.ToLower(strings.TrimSpace(cfg.Provider.Kind))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Provider.Kind {
	case ProviderResend, ProviderDapr, ProviderMemory:
	default:
		return fmt.Errorf("unknown provider kind %q", c.Provider.Kind)
	}
	if c.Port == "" {
		return errors.New("port must not be empty")
	}
	if c.RepeatWindow < 0 {
		return errors.New("repeat_window must not be negative")
	}
	return nil
}

// MissingCredentials lists the provider settings that are unset. The service
// still starts without them; every subscription then fails with a 500.
func (c *Config) MissingCredentials() []string {
	var missing []string
	if c.Provider.Kind == ProviderResend && c.Provider.ResendAPIKey == "" {
		missing = append(missing, "RESEND_API_KEY")
	}
	if c.Provider.AudienceID == "" {
		missing = append(missing, "RESEND_AUDIENCE_ID")
	}
	return missing
}

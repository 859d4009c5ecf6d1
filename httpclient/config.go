package httpclient

import (
	"time"

	"github.com/kbukum/rchttp/config"
	apperrors "github.com/kbukum/rchttp/errors"
	"github.com/kbukum/rchttp/validation"
)

const (
	defaultTimeout = 30 * time.Second
	defaultName    = "http"
)

// NoTimeout disables the client-side request timeout. Requests are then
// bounded only by their context.
const NoTimeout time.Duration = -1

// Config configures the HTTP client.
type Config struct {
	// Name identifies the client in logs, metrics and the component registry.
	Name string `yaml:"name" mapstructure:"name"`

	// BaseURL is the absolute URL request paths are joined onto. It may be
	// left empty and set later with SetBaseURL.
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,abs_url"`

	// Timeout bounds each request. Zero means the 30s default and any
	// negative value, such as NoTimeout, disables the limit.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Headers are default headers applied to all requests.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// Username and Password enable Basic authentication from construction.
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`

	// UserAgent replaces the default "rchttp/<version>" User-Agent.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`

	// DisableLogging turns off request and response diagnostics.
	DisableLogging bool `yaml:"disable_logging" mapstructure:"disable_logging"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = defaultName
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		msg := "invalid http client config"
		if appErr, ok := apperrors.AsAppError(err); ok {
			msg = appErr.Message
		}
		return apperrors.Configuration(msg).WithCause(err)
	}
	return nil
}

// LoadConfig reads the "http" section of a service's configuration, applies
// defaults and validates it.
func LoadConfig(serviceName string, opts ...config.LoaderOption) (Config, error) {
	var file struct {
		HTTP Config `mapstructure:"http"`
	}
	if err := config.LoadConfig(serviceName, &file, opts...); err != nil {
		return Config{}, err
	}

	cfg := file.HTTP
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Default length bounds for incident registration bodies.
const (
	DefaultWebEmailMaxLength          = 60
	DefaultWebNameMaxLength           = 60
	DefaultWebDescriptionMaxLength    = 1000
	DefaultMobileNameMaxLength        = 60
	DefaultMobileDescriptionMaxLength = 1000
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Logger       LoggerConfig
	Gateway      GatewayConfig
	Services     ServicesConfig
	Redis        RedisConfig
	Notification NotificationConfig
	Validation   ValidationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string `env:"APP_NAME" env-default:"incident-service"`
	Env                   string `env:"APP_ENV" env-default:"development"`
	Host                  string `env:"APP_HOST" env-default:"0.0.0.0"`
	Port                  string `env:"APP_PORT" env-default:"8080"`
	Version               string `env:"APP_VERSION" env-default:"dev"`
	RequestTimeoutSeconds int    `env:"HTTP_REQUEST_TIMEOUT_SECONDS" env-default:"30"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string `env:"LOG_LEVEL" env-default:"info"`
}

// GatewayConfig describes how the API gateway forwards caller identity.
type GatewayConfig struct {
	UserInfoHeader string `env:"APIGATEWAY_USERINFO_HEADER" env-default:"X-Apigateway-Api-Userinfo"`
}

// ServicesConfig locates the downstream REST collaborators.
type ServicesConfig struct {
	UserURL               string `env:"USER_SVC_URL" env-default:"http://localhost:5001"`
	UserToken             string `env:"USER_SVC_TOKEN"`
	EmployeeURL           string `env:"EMPLOYEE_SVC_URL"`
	EmployeeToken         string `env:"EMPLOYEE_SVC_TOKEN"`
	IncidentURL           string `env:"INCIDENTMODIFY_SVC_URL" env-default:"http://localhost:5002"`
	IncidentToken         string `env:"INCIDENTMODIFY_SVC_TOKEN"`
	UseSignedTokens       bool   `env:"USE_SIGNED_TOKEN_PROVIDER" env-default:"false"`
	TokenSecret           string `env:"SVC_TOKEN_SECRET"`
	TokenIssuer           string `env:"SVC_TOKEN_ISSUER" env-default:"incident-service"`
	TokenTTLMinutes       int    `env:"SVC_TOKEN_TTL_MINUTES" env-default:"5"`
	RequestTimeoutSeconds int    `env:"SVC_TIMEOUT_SECONDS" env-default:"10"`
}

// RedisConfig holds Redis connection values. An empty Addr disables event publishing.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

// NotificationConfig controls incident event fan-out.
type NotificationConfig struct {
	Channel string `env:"NOTIFY_REDIS_CHANNEL" env-default:"incidents.created"`
}

// ValidationConfig holds per-variant field length bounds.
type ValidationConfig struct {
	WebEmailMaxLength          int `env:"VALIDATION_WEB_EMAIL_MAX" env-default:"60"`
	WebNameMaxLength           int `env:"VALIDATION_WEB_NAME_MAX" env-default:"60"`
	WebDescriptionMaxLength    int `env:"VALIDATION_WEB_DESCRIPTION_MAX" env-default:"1000"`
	MobileNameMaxLength        int `env:"VALIDATION_MOBILE_NAME_MAX" env-default:"60"`
	MobileDescriptionMaxLength int `env:"VALIDATION_MOBILE_DESCRIPTION_MAX" env-default:"1000"`
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	if cfg.Services.EmployeeURL == "" {
		cfg.Services.EmployeeURL = cfg.Services.UserURL
	}
	if cfg.Services.UseSignedTokens && cfg.Services.TokenSecret == "" {
		return nil, fmt.Errorf("SVC_TOKEN_SECRET is required when USE_SIGNED_TOKEN_PROVIDER is set")
	}
	if err := cfg.Validation.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (v ValidationConfig) validate() error {
	bounds := []struct {
		env   string
		value int
	}{
		{"VALIDATION_WEB_EMAIL_MAX", v.WebEmailMaxLength},
		{"VALIDATION_WEB_NAME_MAX", v.WebNameMaxLength},
		{"VALIDATION_WEB_DESCRIPTION_MAX", v.WebDescriptionMaxLength},
		{"VALIDATION_MOBILE_NAME_MAX", v.MobileNameMaxLength},
		{"VALIDATION_MOBILE_DESCRIPTION_MAX", v.MobileDescriptionMaxLength},
	}
	for _, b := range bounds {
		if b.value < 1 {
			return fmt.Errorf("%s must be at least 1, got %d", b.env, b.value)
		}
	}
	return nil
}

// DefaultValidation returns the built-in length bounds.
func DefaultValidation() ValidationConfig {
	return ValidationConfig{
		WebEmailMaxLength:          DefaultWebEmailMaxLength,
		WebNameMaxLength:           DefaultWebNameMaxLength,
		WebDescriptionMaxLength:    DefaultWebDescriptionMaxLength,
		MobileNameMaxLength:        DefaultMobileNameMaxLength,
		MobileDescriptionMaxLength: DefaultMobileDescriptionMaxLength,
	}
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the outbound call timeout.
func (s ServicesConfig) Timeout() time.Duration {
	if s.RequestTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

// TokenTTL returns the lifetime of signed service tokens.
func (s ServicesConfig) TokenTTL() time.Duration {
	if s.TokenTTLMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(s.TokenTTLMinutes) * time.Minute
}

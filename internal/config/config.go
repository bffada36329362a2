package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/iris/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// View modes.
const (
	ViewModePlan   = "plan"
	ViewModePrompt = "prompt"
)

// Config holds the configuration settings for a sweep.
//
// Every key can be set from the environment with the IRIS_ prefix, dots
// replaced by underscores (submit.url -> IRIS_SUBMIT_URL). Database and mail
// settings use the plain DB_* and SMTP_* variables. IRIS_CONFIG_FILE may name
// a YAML file with the same keys; the environment wins over the file.
type Config struct {
	Env  string // Env is the current environment: local, development, production.
	Port int    `validate:"min=1,max=65535"` // Port is the monitoring server port.

	SessionID    string // SessionID is the directory session cookie value.
	DirectoryURL string `validate:"omitempty,url"`
	TargetLimit  int    `validate:"min=1,max=10000"` // TargetLimit caps targets requested per cycle.
	RateLimit    int    `validate:"min=1"`           // RateLimit is directory requests per second.

	FailureThreshold int             `validate:"min=1"` // FailureThreshold ends the sweep after this many empty cycles at the widest zoom.
	Zoom             int             // Zoom is the initial zoom for new areas.
	ViewMode         string          `validate:"oneof=plan prompt"`
	Centers          []string        `validate:"required_if=ViewMode plan"` // Centers are "lat,lng" pairs or place names.
	Viewport         models.Viewport // Viewport is the pixel size bounds are computed for.

	Debug     bool   // Debug builds submissions without sending them.
	Submit    SubmitConfig
	OutputDir string `validate:"required"`

	ProviderType string `validate:"omitempty,oneof=google nominatim"`
	APIKey       string `validate:"required_if=ProviderType google"`
	Region       string

	Database PostgresConfig
	Mail     MailConfig
}

// SubmitConfig configures delivery of registration requests.
type SubmitConfig struct {
	URL           string `validate:"omitempty,url"`
	Retries       uint64
	RetryInterval time.Duration
	RateLimit     int `validate:"min=1"`
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string // Host is the database server address. Empty disables the audit store.
	Port     string // Port is the database server port.
	User     string // User is the database user.
	Password string // Password is the database user's password.
	Name     string // Name is the name of the database.
}

// Enabled reports whether a database is configured.
func (c PostgresConfig) Enabled() bool {
	return c.Host != ""
}

// MailConfig configures the summary mail sent when a sweep ends.
type MailConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string   `validate:"omitempty,email"`
	To        []string `validate:"dive,email"`
}

// Enabled reports whether a mail server and at least one recipient are configured.
func (c MailConfig) Enabled() bool {
	return c.Host != "" && len(c.To) > 0
}

// MustLoad reads the configuration and panics on values that cannot be parsed or are invalid.
func MustLoad() *Config {
	_ = godotenv.Load()

	v := newViper()

	if file := os.Getenv("IRIS_CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			panic("failed to read configuration file")
		}
	}

	cfg := &Config{
		Env:              v.GetString("env"),
		Port:             mustInt(v, "port", "failed to parse port for monitoring server from configuration"),
		SessionID:        v.GetString("session_id"),
		DirectoryURL:     v.GetString("directory_url"),
		TargetLimit:      mustInt(v, "target_limit", "failed to parse target limit from configuration"),
		RateLimit:        mustInt(v, "rate_limit", "failed to parse rate limit from configuration"),
		FailureThreshold: mustInt(v, "failure_threshold", "failed to parse failure threshold from configuration"),
		Zoom:             mustInt(v, "zoom", "failed to parse zoom from configuration"),
		ViewMode:         strings.ToLower(v.GetString("view_mode")),
		Centers:          splitList(v.Get("centers"), ";"),
		Viewport:         mustViewport(v.GetString("viewport")),
		Debug:            mustBool(v, "debug", "failed to parse debug flag from configuration"),
		Submit: SubmitConfig{
			URL:           v.GetString("submit.url"),
			Retries:       uint64(mustInt(v, "submit.retries", "failed to parse submit retries from configuration")),
			RetryInterval: mustDuration(v, "submit.retry_interval", "failed to parse submit retry interval from configuration"),
			RateLimit:     mustInt(v, "submit.rate_limit", "failed to parse submit rate limit from configuration"),
		},
		OutputDir:    v.GetString("output_dir"),
		ProviderType: strings.ToLower(v.GetString("provider.type")),
		APIKey:       v.GetString("provider.api_key"),
		Region:       v.GetString("provider.region"),
		Database: PostgresConfig{
			Host:     v.GetString("postgres.host"),
			Port:     v.GetString("postgres.port"),
			User:     v.GetString("postgres.user"),
			Password: v.GetString("postgres.password"),
			Name:     v.GetString("postgres.db_name"),
		},
		Mail: MailConfig{
			Host:      v.GetString("mail.host"),
			Port:      mustInt(v, "mail.port", "failed to parse SMTP port from configuration"),
			Username:  v.GetString("mail.username"),
			Password:  v.GetString("mail.password"),
			FromName:  v.GetString("mail.from_name"),
			FromEmail: v.GetString("mail.from_email"),
			To:        splitList(v.Get("mail.to"), ","),
		},
	}

	if err := validator.New().Struct(cfg); err != nil {
		panic(fmt.Sprintf("invalid configuration: %v", err))
	}

	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("IRIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("env", "production")
	v.SetDefault("port", "8080")
	v.SetDefault("target_limit", "10000")
	v.SetDefault("rate_limit", "5")
	v.SetDefault("failure_threshold", "3")
	v.SetDefault("zoom", "18")
	v.SetDefault("view_mode", ViewModePlan)
	v.SetDefault("viewport", "1280x800")
	v.SetDefault("debug", "false")
	v.SetDefault("submit.retries", "3")
	v.SetDefault("submit.retry_interval", "1s")
	v.SetDefault("submit.rate_limit", "1")
	v.SetDefault("output_dir", ".")
	v.SetDefault("provider.region", "us")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("mail.port", "587")

	for key, env := range map[string]string{
		"postgres.host":     "DB_HOST",
		"postgres.port":     "DB_PORT",
		"postgres.user":     "DB_USERNAME",
		"postgres.password": "DB_PASSWORD",
		"postgres.db_name":  "DB_NAME",
		"mail.host":         "SMTP_HOST",
		"mail.port":         "SMTP_PORT",
		"mail.username":     "SMTP_USERNAME",
		"mail.password":     "SMTP_PASSWORD",
		"mail.from_name":    "SMTP_FROM_NAME",
		"mail.from_email":   "SMTP_FROM_EMAIL",
		"mail.to":           "SMTP_TO",
	} {
		_ = v.BindEnv(key, env)
	}

	return v
}

func mustInt(v *viper.Viper, key, message string) int {
	value, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		panic(message)
	}

	return value
}

func mustBool(v *viper.Viper, key, message string) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		panic(message)
	}

	return value
}

func mustDuration(v *viper.Viper, key, message string) time.Duration {
	value, err := time.ParseDuration(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		panic(message)
	}

	return value
}

// mustViewport parses "WIDTHxHEIGHT".
func mustViewport(raw string) models.Viewport {
	width, height, found := strings.Cut(strings.ToLower(raw), "x")
	w, errW := strconv.Atoi(strings.TrimSpace(width))
	h, errH := strconv.Atoi(strings.TrimSpace(height))
	if !found || errW != nil || errH != nil || w <= 0 || h <= 0 {
		panic("failed to parse viewport from configuration, expected WIDTHxHEIGHT")
	}

	return models.Viewport{Width: w, Height: h}
}

// splitList accepts a separated string from the environment or a YAML list.
func splitList(raw any, sep string) []string {
	var items []string
	switch value := raw.(type) {
	case string:
		items = strings.Split(value, sep)
	case []string:
		items = value
	case []any:
		for _, item := range value {
			items = append(items, fmt.Sprint(item))
		}
	}

	var list []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}

	return list
}

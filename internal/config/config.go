package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	ProviderOpenAI = "openai"
	ProviderArk    = "ark"

	DefaultModel       = "gpt-3.5-turbo"
	DefaultMaxTokens   = 500
	DefaultTemperature = float32(0.7)
	DefaultCookieName  = "qa_session"
)

// Config aggregates every setting of the service.
type Config struct {
	Server  ServerConfig
	AI      AIConfig
	Session SessionConfig
	Log     LogConfig
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

// AIConfig describes the completion service and the fixed request parameters.
type AIConfig struct {
	Provider    string
	Model       string
	MaxTokens   int
	Temperature float32
	// Timeout bounds a single downstream call. Zero means no timeout.
	Timeout time.Duration
	Stream  bool
	OpenAI  OpenAIConfig
	Ark     ArkConfig
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	OrgID   string
}

type ArkConfig struct {
	APIKey    string
	AccessKey string
	SecretKey string
	BaseURL   string
	Region    string
	Model     string
}

// SessionConfig controls session lifetime and the browser cookie.
type SessionConfig struct {
	IdleTTL      time.Duration
	CookieName   string
	CookieSecure bool
}

type LogConfig struct {
	Level  string
	Format string
}

// Default returns the configuration used when neither a file nor the environment overrides anything.
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		AI: AIConfig{
			Provider:    ProviderOpenAI,
			Model:       DefaultModel,
			MaxTokens:   DefaultMaxTokens,
			Temperature: DefaultTemperature,
			Stream:      true,
			Ark: ArkConfig{
				BaseURL: "https://ark.cn-beijing.volces.com/api/v3",
				Region:  "cn-beijing",
			},
		},
		Session: SessionConfig{
			IdleTTL:    2 * time.Hour,
			CookieName: DefaultCookieName,
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}

// LoadDotEnv loads the given env files without overriding variables already
// set in the process environment. Missing files are skipped; the names of the
// files that were read are returned.
func LoadDotEnv(paths ...string) ([]string, error) {
	var loaded []string
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return loaded, errors.Wrapf(err, "load env file %s", path)
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}

// Load builds the configuration from defaults, the optional TOML file at
// path, and finally the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return nil, err
		}
	}

	if err := applyServerEnv(&cfg.Server); err != nil {
		return nil, err
	}
	if err := applyAIEnv(&cfg.AI); err != nil {
		return nil, err
	}
	if err := applySessionEnv(&cfg.Session); err != nil {
		return nil, err
	}
	applyLogEnv(&cfg.Log)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that cannot be fixed up silently. Credentials are
// deliberately not checked: a missing key surfaces as a failed completion.
func (c Config) Validate() error {
	switch c.AI.Provider {
	case ProviderOpenAI, ProviderArk:
	default:
		return errors.Errorf("unknown AI_PROVIDER %q", c.AI.Provider)
	}
	if c.AI.MaxTokens <= 0 {
		return errors.Errorf("max tokens must be positive, got %d", c.AI.MaxTokens)
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		return errors.Errorf("temperature must be within [0, 2], got %v", c.AI.Temperature)
	}
	if c.AI.Timeout < 0 {
		return errors.Errorf("timeout must not be negative, got %s", c.AI.Timeout)
	}
	return nil
}

// applyServerEnv resolves the listen address from PORT.
func applyServerEnv(c *ServerConfig) error {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		return nil
	}

	if strings.Contains(port, ":") {
		// ":8080" and "127.0.0.1:8080" are taken verbatim.
		c.Addr = port
		return nil
	}

	if strings.Contains(port, " ") {
		return errors.Errorf("invalid PORT value: %q", port)
	}

	c.Addr = ":" + port
	return nil
}

func applyAIEnv(c *AIConfig) error {
	if v := getEnv("AI_PROVIDER"); v != "" {
		c.Provider = strings.ToLower(v)
	}
	if v := getEnv("AI_MODEL"); v != "" {
		c.Model = v
	}

	maxTokens, err := parseOptionalIntEnv("AI_MAX_TOKENS")
	if err != nil {
		return err
	}
	if maxTokens != nil {
		c.MaxTokens = *maxTokens
	}

	temperature, err := parseOptionalFloatEnv("AI_TEMPERATURE")
	if err != nil {
		return err
	}
	if temperature != nil {
		c.Temperature = float32(*temperature)
	}

	timeout, err := parseOptionalDurationEnv("AI_REQUEST_TIMEOUT")
	if err != nil {
		return err
	}
	if timeout != nil {
		c.Timeout = *timeout
	}

	stream, err := parseBoolEnv("AI_STREAM", c.Stream)
	if err != nil {
		return err
	}
	c.Stream = stream

	c.OpenAI.APIKey = getEnvOrDefault("OPENAI_API_KEY", c.OpenAI.APIKey)
	c.OpenAI.BaseURL = getEnvOrDefault("OPENAI_BASE_URL", c.OpenAI.BaseURL)
	c.OpenAI.OrgID = getEnvOrDefault("OPENAI_ORG_ID", c.OpenAI.OrgID)

	c.Ark.APIKey = getEnvOrDefault("ARK_API_KEY", c.Ark.APIKey)
	c.Ark.AccessKey = getEnvOrDefault("ARK_ACCESS_KEY", c.Ark.AccessKey)
	c.Ark.SecretKey = getEnvOrDefault("ARK_SECRET_KEY", c.Ark.SecretKey)
	c.Ark.BaseURL = getEnvOrDefault("ARK_BASE_URL", c.Ark.BaseURL)
	c.Ark.Region = getEnvOrDefault("ARK_REGION", c.Ark.Region)
	c.Ark.Model = getEnvOrDefault("ARK_MODEL", c.Ark.Model)
	return nil
}

func applySessionEnv(c *SessionConfig) error {
	ttl, err := parseOptionalDurationEnv("SESSION_IDLE_TTL")
	if err != nil {
		return err
	}
	if ttl != nil {
		c.IdleTTL = *ttl
	}

	c.CookieName = getEnvOrDefault("SESSION_COOKIE_NAME", c.CookieName)

	secure, err := parseBoolEnv("SESSION_COOKIE_SECURE", c.CookieSecure)
	if err != nil {
		return err
	}
	c.CookieSecure = secure
	return nil
}

func applyLogEnv(c *LogConfig) {
	c.Level = getEnvOrDefault("LOG_LEVEL", c.Level)
	c.Format = getEnvOrDefault("LOG_FORMAT", c.Format)
}

func getEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := getEnv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := getEnv(key)
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.Wrapf(err, "invalid %s value %q", key, raw)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	value := getEnv(key)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s value %q", key, value)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	value := getEnv(key)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s value %q", key, value)
	}
	return &val, nil
}

// parseOptionalDurationEnv accepts Go durations ("30s") or a bare number of seconds.
func parseOptionalDurationEnv(key string) (*time.Duration, error) {
	value := getEnv(key)
	if value == "" {
		return nil, nil
	}

	d, err := parseDuration(value)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s value %q", key, value)
	}
	return &d, nil
}

func parseDuration(value string) (time.Duration, error) {
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(value)
}

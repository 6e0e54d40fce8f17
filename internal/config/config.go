package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds service configuration loaded from YAML and env.
type Config struct {
	ServerPort string

	DatabaseURL string
	DBMaxOpen   int
	DBMaxIdle   int

	// WeatherAPIKey may be empty; the forecast branch then degrades to
	// "outlook unavailable" instead of failing requests.
	WeatherAPIKey     string
	WeatherAPIURL     string
	WeatherAPITimeout time.Duration

	// GenAIKey may be empty; generated replies then always fall back to
	// canned text.
	GenAIKey            string
	GenAIURL            string
	GenAIModel          string
	GenAITimeout        time.Duration
	GenAIMaxRetries     int
	GenAIRetryBaseDelay time.Duration

	CircuitBreakerEnabled          bool
	CircuitBreakerFailureThreshold int
	CircuitBreakerSuccessThreshold int
	CircuitBreakerTimeout          time.Duration

	RequestTimeout   time.Duration
	MaxMessageLength int

	RateLimitRPS   int
	RateLimitBurst int

	DegradedWindow   time.Duration
	DegradedErrorPct int

	ShutdownTimeout               time.Duration
	ShutdownInFlightTimeout       time.Duration
	ShutdownInFlightCheckInterval time.Duration
}

type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Database struct {
		URL     string `yaml:"url"`
		MaxOpen int    `yaml:"max_open_conns"`
		MaxIdle int    `yaml:"max_idle_conns"`
	} `yaml:"database"`

	WeatherAPI struct {
		URL     string `yaml:"url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"weather_api"`

	Generation struct {
		URL            string `yaml:"url"`
		Model          string `yaml:"model"`
		Timeout        string `yaml:"timeout"`
		MaxRetries     *int   `yaml:"max_retries"`
		RetryBaseDelay string `yaml:"retry_base_delay"`
		CircuitBreaker struct {
			Enabled          bool   `yaml:"enabled"`
			FailureThreshold int    `yaml:"failure_threshold"`
			SuccessThreshold int    `yaml:"success_threshold"`
			Timeout          string `yaml:"timeout"`
		} `yaml:"circuit_breaker"`
	} `yaml:"generation"`

	Request struct {
		Timeout          string `yaml:"timeout"`
		MaxMessageLength int    `yaml:"max_message_length"`
	} `yaml:"request"`

	Reliability struct {
		RateLimitRPS     int    `yaml:"rate_limit_rps"`
		RateLimitBurst   int    `yaml:"rate_limit_burst"`
		DegradedWindow   string `yaml:"degraded_window"`
		DegradedErrorPct int    `yaml:"degraded_error_pct"`
	} `yaml:"reliability"`

	Shutdown struct {
		Timeout               string `yaml:"timeout"`
		InFlightTimeout       string `yaml:"in_flight_timeout"`
		InFlightCheckInterval string `yaml:"in_flight_check_interval"`
	} `yaml:"shutdown"`
}

type secretsFile struct {
	DatabaseURL   string `yaml:"database_url"`
	WeatherAPIKey string `yaml:"weather_api_key"`
	GenAIKey      string `yaml:"genai_api_key"`
}

// Load reads configuration from config/{ENV_NAME}.yaml (default dev) and
// config/secrets.yaml. The database URL and API keys come from env
// (DATABASE_URL, WEATHER_API_KEY, GENAI_API_KEY) or the secrets file. A
// missing config file is not an error; defaults apply.
func Load() (*Config, error) {
	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}

	var fc fileConfig
	configPath := filepath.Join(cwd, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	var sec secretsFile
	secretsPath := filepath.Join(cwd, "config", "secrets.yaml")
	secretsData, err := os.ReadFile(secretsPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read secrets file: %w", err)
		}
	} else if err := yaml.Unmarshal(secretsData, &sec); err != nil {
		return nil, fmt.Errorf("parse secrets file: %w", err)
	}

	cfg := &Config{}

	cfg.ServerPort = fc.Server.Port
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}

	cfg.DatabaseURL = firstNonEmpty(os.Getenv("DATABASE_URL"), sec.DatabaseURL, fc.Database.URL)
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL required (set env, config/secrets.yaml database_url, or database.url)")
	}
	cfg.DBMaxOpen = fc.Database.MaxOpen
	if cfg.DBMaxOpen <= 0 {
		cfg.DBMaxOpen = 10
	}
	cfg.DBMaxIdle = fc.Database.MaxIdle
	if cfg.DBMaxIdle <= 0 {
		cfg.DBMaxIdle = 2
	}

	cfg.WeatherAPIKey = firstNonEmpty(os.Getenv("WEATHER_API_KEY"), sec.WeatherAPIKey)
	cfg.WeatherAPIURL = fc.WeatherAPI.URL
	if cfg.WeatherAPIURL == "" {
		cfg.WeatherAPIURL = "https://api.openweathermap.org/data/2.5/forecast"
	}
	cfg.WeatherAPITimeout = parseDuration(fc.WeatherAPI.Timeout, 3*time.Second)

	cfg.GenAIKey = firstNonEmpty(os.Getenv("GENAI_API_KEY"), sec.GenAIKey)
	cfg.GenAIURL = fc.Generation.URL
	if cfg.GenAIURL == "" {
		cfg.GenAIURL = "https://api.openai.com/v1/chat/completions"
	}
	cfg.GenAIModel = fc.Generation.Model
	if cfg.GenAIModel == "" {
		cfg.GenAIModel = "gpt-4o-mini"
	}
	cfg.GenAITimeout = parseDuration(fc.Generation.Timeout, 10*time.Second)
	cfg.GenAIMaxRetries = 2
	if fc.Generation.MaxRetries != nil && *fc.Generation.MaxRetries >= 0 {
		cfg.GenAIMaxRetries = *fc.Generation.MaxRetries
	}
	cfg.GenAIRetryBaseDelay = parseDuration(fc.Generation.RetryBaseDelay, 200*time.Millisecond)

	cfg.CircuitBreakerEnabled = fc.Generation.CircuitBreaker.Enabled
	cfg.CircuitBreakerFailureThreshold = fc.Generation.CircuitBreaker.FailureThreshold
	cfg.CircuitBreakerSuccessThreshold = fc.Generation.CircuitBreaker.SuccessThreshold
	cfg.CircuitBreakerTimeout = parseDuration(fc.Generation.CircuitBreaker.Timeout, 30*time.Second)

	cfg.RequestTimeout = parseDuration(fc.Request.Timeout, 30*time.Second)
	cfg.MaxMessageLength = fc.Request.MaxMessageLength
	if cfg.MaxMessageLength <= 0 {
		cfg.MaxMessageLength = 1000
	}

	cfg.RateLimitRPS = fc.Reliability.RateLimitRPS
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 20
	}
	cfg.RateLimitBurst = fc.Reliability.RateLimitBurst
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 50
	}
	cfg.DegradedWindow = parseDuration(fc.Reliability.DegradedWindow, 60*time.Second)
	cfg.DegradedErrorPct = fc.Reliability.DegradedErrorPct
	if cfg.DegradedErrorPct <= 0 {
		cfg.DegradedErrorPct = 25
	}

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 30*time.Second)
	cfg.ShutdownInFlightTimeout = parseDuration(fc.Shutdown.InFlightTimeout, 10*time.Second)
	cfg.ShutdownInFlightCheckInterval = parseDuration(fc.Shutdown.InFlightCheckInterval, 100*time.Millisecond)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// parseDuration parses a duration string and returns defaultVal on empty
// string, parse error, or non-positive result.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

// validate performs post-load validation. The request timeout must cover the
// slowest external call plus headroom, otherwise every generation retry cycle
// would die on the request deadline.
func validate(cfg *Config) error {
	if cfg.WeatherAPITimeout <= 0 {
		return fmt.Errorf("weather_api.timeout must be positive")
	}
	if cfg.GenAITimeout <= 0 {
		return fmt.Errorf("generation.timeout must be positive")
	}
	slowest := cfg.WeatherAPITimeout
	if cfg.GenAITimeout > slowest {
		slowest = cfg.GenAITimeout
	}
	if cfg.RequestTimeout <= slowest {
		cfg.RequestTimeout = slowest + 5*time.Second
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App     App     `mapstructure:"app"`
	AI      AI      `mapstructure:"ai"`
	Search  Search  `mapstructure:"search"`
	Run     Run     `mapstructure:"run"`
	Quality Quality `mapstructure:"quality"`
	Output  Output  `mapstructure:"output"`
}

// App holds general application configuration
type App struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	LogDir   string `mapstructure:"log_dir"`
}

// AI holds AI/LLM configuration
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey         string   `mapstructure:"api_key"`
	Model          string   `mapstructure:"model"`
	FallbackModels []string `mapstructure:"fallback_models"`
	Timeout        string   `mapstructure:"timeout"`
	MaxTokens      int32    `mapstructure:"max_tokens"`
	Temperature    float32  `mapstructure:"temperature"`
	MaxRetries     int      `mapstructure:"max_retries"`
}

// Search holds search provider configuration
type Search struct {
	DefaultProvider string       `mapstructure:"default_provider"`
	Timeout         string       `mapstructure:"timeout"`
	Depth           string       `mapstructure:"depth"`
	Tavily          TavilyConfig `mapstructure:"tavily"`
}

// TavilyConfig holds Tavily search API configuration
type TavilyConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Endpoint string `mapstructure:"endpoint"`
}

// Run holds newsletter run configuration
type Run struct {
	Days          int    `mapstructure:"days"`            // Default search window
	MaxAttempts   int    `mapstructure:"max_attempts"`    // Retry ladder cap (1 in serverless mode)
	MaxPerSection int    `mapstructure:"max_per_section"` // Optional override of every section limit
	Workers       int    `mapstructure:"workers"`         // Concurrent section workers
	Language      string `mapstructure:"language"`        // "en" or "fr"
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

// Quality holds source-quality ledger configuration
type Quality struct {
	Dir string `mapstructure:"dir"` // Directory for the quality and feedback logs
}

// Output holds output configuration
type Output struct {
	Directory string `mapstructure:"directory"`
}

var globalConfig *Config

// Load loads the configuration from .env, config file, and environment.
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
		}
	}

	// Configure viper
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".aibrief")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.log_dir", "logs")

	viper.SetDefault("ai.gemini.model", "gemini-2.0-flash")
	viper.SetDefault("ai.gemini.fallback_models", []string{"gemini-2.0-flash-lite", "gemini-1.5-flash"})
	viper.SetDefault("ai.gemini.timeout", "30s")
	viper.SetDefault("ai.gemini.max_tokens", 1200)
	viper.SetDefault("ai.gemini.temperature", 0.2)
	viper.SetDefault("ai.gemini.max_retries", 3)

	viper.SetDefault("search.default_provider", "tavily")
	viper.SetDefault("search.timeout", "20s")
	viper.SetDefault("search.depth", "advanced")
	viper.SetDefault("search.tavily.endpoint", "https://api.tavily.com/search")

	viper.SetDefault("run.days", 7)
	viper.SetDefault("run.max_attempts", 1)
	viper.SetDefault("run.max_per_section", 0)
	viper.SetDefault("run.workers", 4)
	viper.SetDefault("run.language", "en")
	viper.SetDefault("run.subject_prefix", "AI This Week | Key AI Developments You Should Know")

	viper.SetDefault("quality.dir", "logs")

	viper.SetDefault("output.directory", "output")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	_ = viper.BindEnv("ai.gemini.api_key", "GEMINI_API_KEY")
	_ = viper.BindEnv("search.tavily.api_key", "TAVILY_API_KEY")
	_ = viper.BindEnv("run.days", "RUN_DAYS")
	_ = viper.BindEnv("run.max_per_section", "MAX_PER_STREAM")
	_ = viper.BindEnv("run.subject_prefix", "OUTLOOK_SUBJECT_PREFIX")
	_ = viper.BindEnv("app.debug", "AIBRIEF_DEBUG")
}

// validateConfig ensures required configuration is present. Missing
// credentials are fatal at process start, not retried.
func validateConfig(config *Config) error {
	var errors []string

	if config.Search.Tavily.APIKey == "" {
		errors = append(errors, "Tavily API key is required. Set TAVILY_API_KEY environment variable or search.tavily.api_key in config file")
	}
	if config.AI.Gemini.APIKey == "" {
		errors = append(errors, "Gemini API key is required. Set GEMINI_API_KEY environment variable or ai.gemini.api_key in config file")
	}
	if config.Run.Workers <= 0 {
		errors = append(errors, "run.workers must be positive")
	}
	if config.Run.MaxAttempts <= 0 {
		errors = append(errors, "run.max_attempts must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// GeminiTimeout parses the configured Gemini timeout, defaulting to 30s.
func (c *Config) GeminiTimeout() time.Duration {
	return parseDuration(c.AI.Gemini.Timeout, 30*time.Second)
}

// SearchTimeout parses the configured search timeout, defaulting to 20s.
func (c *Config) SearchTimeout() time.Duration {
	return parseDuration(c.Search.Timeout, 20*time.Second)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

// Convenience getters for commonly used configuration values
func GetGeminiAPIKey() string { return Get().AI.Gemini.APIKey }
func GetTavilyAPIKey() string { return Get().Search.Tavily.APIKey }
func IsDebugMode() bool       { return Get().App.Debug }

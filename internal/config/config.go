package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// HTTP
	Port           string
	AllowedOrigins []string

	// Database
	DatabaseURL  string
	DatabaseName string

	// Memberships
	MembershipSweepInterval time.Duration

	// Logging
	LogFile string

	// RandomSeed fixes the draw generator; 0 seeds from the environment.
	RandomSeed uint64

	// Environment
	Environment string // "development", "production" or "test"

	// EnvFileLoaded is false when no .env file was found. Load runs before
	// logging is set up, so main reports it.
	EnvFileLoaded bool
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = Load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// Load reads configuration from the environment, after loading a .env file
// when one is present.
func Load() (*Config, error) {
	envFileErr := godotenv.Load()

	config := &Config{
		EnvFileLoaded:           envFileErr == nil,
		Port:                    "8080",
		AllowedOrigins:          []string{"*"},
		DatabaseURL:             os.Getenv("DATABASE_URL"),
		DatabaseName:            os.Getenv("DATABASE_NAME"),
		MembershipSweepInterval: 10 * time.Minute,
		LogFile:                 os.Getenv("LOG_FILE"),
		Environment:             os.Getenv("ENVIRONMENT"),
	}

	if port := os.Getenv("PORT"); port != "" {
		config.Port = port
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		config.AllowedOrigins = nil
		for _, origin := range strings.Split(origins, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				config.AllowedOrigins = append(config.AllowedOrigins, origin)
			}
		}
		for _, origin := range config.AllowedOrigins {
			if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
				return nil, fmt.Errorf("invalid ALLOWED_ORIGINS entry %q: must start with http:// or https://", origin)
			}
		}
	}

	if interval := os.Getenv("MEMBERSHIP_SWEEP_INTERVAL"); interval != "" {
		parsed, err := time.ParseDuration(interval)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("invalid MEMBERSHIP_SWEEP_INTERVAL %q", interval)
		}
		config.MembershipSweepInterval = parsed
	}

	if seed := os.Getenv("RANDOM_SEED"); seed != "" {
		parsed, err := strconv.ParseUint(seed, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid RANDOM_SEED %q: %w", seed, err)
		}
		config.RandomSeed = parsed
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" && config.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return config, nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Host               string  `mapstructure:"SERVER_HOST"`
	Port               string  `mapstructure:"SERVER_PORT"`
	Env                string  `mapstructure:"ENVIRONMENT"`
	LogLevel           string  `mapstructure:"LOG_LEVEL"`
	AuthMode           string  `mapstructure:"AUTH_MODE"`
	DatabaseURL        string  `mapstructure:"DATABASE_URL"`
	DBMaxConns         int32   `mapstructure:"DB_MAX_CONNS"`
	DBMinConns         int32   `mapstructure:"DB_MIN_CONNS"`
	JWTSecret          string  `mapstructure:"JWT_SECRET"`
	JWTIssuer          string  `mapstructure:"JWT_ISSUER"`
	JWTExpiryHours     int     `mapstructure:"JWT_EXPIRY_HOURS"`
	SimSteps           int     `mapstructure:"SIM_STEPS"`
	SimTickSeconds     int     `mapstructure:"SIM_TICK_SECONDS"`
	DispatchAutoStatus bool    `mapstructure:"DISPATCH_AUTO_STATUS"`
	RateLimitPerMin    float64 `mapstructure:"RATE_LIMIT_PER_MINUTE"`
	RequestTimeoutSecs int     `mapstructure:"REQUEST_TIMEOUT_SECONDS"`
	MetricsEnabled     bool    `mapstructure:"METRICS_ENABLED"`
	ExportDir          string  `mapstructure:"EXPORT_DIR"`
	ExportS3Bucket     string  `mapstructure:"EXPORT_S3_BUCKET"`
	ExportS3Region     string  `mapstructure:"EXPORT_S3_REGION"`
	ExportS3Endpoint   string  `mapstructure:"EXPORT_S3_ENDPOINT"`
	ExportS3PathStyle  bool    `mapstructure:"EXPORT_S3_PATH_STYLE"`
	ExportS3AccessKey  string  `mapstructure:"EXPORT_S3_ACCESS_KEY_ID"`
	ExportS3SecretKey  string  `mapstructure:"EXPORT_S3_SECRET_ACCESS_KEY"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("AUTH_MODE", "") // "" -> inferred from ENVIRONMENT
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("JWT_ISSUER", "hoslink")
	v.SetDefault("JWT_EXPIRY_HOURS", 12)
	v.SetDefault("SIM_STEPS", 20)
	v.SetDefault("SIM_TICK_SECONDS", 5)
	v.SetDefault("DISPATCH_AUTO_STATUS", true)
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 300)
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", 30)
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("EXPORT_DIR", "./exports")
	v.SetDefault("EXPORT_S3_REGION", "us-east-1")
	v.SetDefault("EXPORT_S3_PATH_STYLE", false)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("SERVER_HOST")
	v.BindEnv("SERVER_PORT")
	v.BindEnv("ENVIRONMENT")
	v.BindEnv("LOG_LEVEL")
	v.BindEnv("AUTH_MODE")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("JWT_ISSUER")
	v.BindEnv("JWT_EXPIRY_HOURS")
	v.BindEnv("SIM_STEPS")
	v.BindEnv("SIM_TICK_SECONDS")
	v.BindEnv("DISPATCH_AUTO_STATUS")
	v.BindEnv("RATE_LIMIT_PER_MINUTE")
	v.BindEnv("REQUEST_TIMEOUT_SECONDS")
	v.BindEnv("METRICS_ENABLED")
	v.BindEnv("EXPORT_DIR")
	v.BindEnv("EXPORT_S3_BUCKET")
	v.BindEnv("EXPORT_S3_REGION")
	v.BindEnv("EXPORT_S3_ENDPOINT")
	v.BindEnv("EXPORT_S3_PATH_STYLE")
	v.BindEnv("EXPORT_S3_ACCESS_KEY_ID")
	v.BindEnv("EXPORT_S3_SECRET_ACCESS_KEY")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: ==========================================================")
		log.Println("WARNING: Server is running in DEVELOPMENT mode.")
		log.Println("WARNING: DevAuthMiddleware is active; all requests get admin access.")
		log.Println("WARNING: Set ENVIRONMENT=production and JWT_SECRET for production.")
		log.Println("WARNING: ==========================================================")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ResolvedAuthMode returns the effective auth mode. If AUTH_MODE is explicitly
// set, it is returned. Otherwise "dev" in development and "static" elsewhere.
func (c *Config) ResolvedAuthMode() string {
	if c.AuthMode != "" {
		return c.AuthMode
	}
	if c.IsDev() {
		return "dev"
	}
	return "static"
}

// SimTick returns the simulator tick interval as a duration.
func (c *Config) SimTick() time.Duration {
	return time.Duration(c.SimTickSeconds) * time.Second
}

// RequestTimeout returns the per-request deadline as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}

// Validate checks that the configuration is safe to run. Outside development
// the JWT secret must be set so real token authentication is enforced, and the
// simulator parameters must describe a finite route.
func (c *Config) Validate() error {
	mode := c.ResolvedAuthMode()
	if mode != "dev" && mode != "static" {
		return fmt.Errorf("AUTH_MODE must be \"dev\" or \"static\", got %q", mode)
	}
	if mode == "static" && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when AUTH_MODE is \"static\" (current ENVIRONMENT=%q)", c.Env)
	}
	if c.SimSteps <= 0 {
		return fmt.Errorf("SIM_STEPS must be positive, got %d", c.SimSteps)
	}
	if c.SimTickSeconds <= 0 {
		return fmt.Errorf("SIM_TICK_SECONDS must be positive, got %d", c.SimTickSeconds)
	}
	if c.RequestTimeoutSecs <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be positive, got %d", c.RequestTimeoutSecs)
	}
	return nil
}

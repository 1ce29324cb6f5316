package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Rates carries the statutory constants used by the payroll calculator.
// They are configuration, not code, so deployments in other jurisdictions
// can adjust them without a rebuild.
type Rates struct {
	DefaultTaxRate         float64
	SocialSecurityRate     float64
	HealthInsurancePremium float64
	RetirementRate         float64
}

type Config struct {
	Addr        string
	DatabaseURL string
	Environment string

	JWTSecret string
	JWTTTL    time.Duration

	RunMigrations bool
	MigrationsDir string

	BootstrapAdminUsername string
	BootstrapAdminEmail    string
	BootstrapAdminPassword string

	MaxBodyBytes       int64
	RateLimitPerMinute int
	CORSAllowedOrigins []string

	AuditRetentionDays int
	RetentionInterval  time.Duration

	Rates Rates
}

func Load() Config {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	return Config{
		Addr:        getEnv("APP_ADDR", ":8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		Environment: getEnv("APP_ENV", "development"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTTTL:    getEnvDuration("JWT_TTL", 24*time.Hour),

		RunMigrations: getEnvBool("RUN_MIGRATIONS", true),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),

		BootstrapAdminUsername: getEnv("BOOTSTRAP_ADMIN_USERNAME", "superadmin"),
		BootstrapAdminEmail:    getEnv("BOOTSTRAP_ADMIN_EMAIL", ""),
		BootstrapAdminPassword: getEnv("BOOTSTRAP_ADMIN_PASSWORD", ""),

		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		CORSAllowedOrigins: []string{getEnv("CORS_ALLOWED_ORIGIN", "http://localhost:3000")},

		AuditRetentionDays: getEnvInt("AUDIT_RETENTION_DAYS", 365),
		RetentionInterval:  getEnvDuration("RETENTION_INTERVAL", 24*time.Hour),

		Rates: Rates{
			DefaultTaxRate:         getEnvFloat("DEFAULT_TAX_RATE", 0.2),
			SocialSecurityRate:     getEnvFloat("SOCIAL_SECURITY_RATE", 0.062),
			HealthInsurancePremium: getEnvFloat("HEALTH_INSURANCE_PREMIUM", 200),
			RetirementRate:         getEnvFloat("RETIREMENT_RATE", 0.05),
		},
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

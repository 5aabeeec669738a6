package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"creatorpulse/models"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	DB        *gorm.DB
	AppConfig Config
	envLoaded bool
)

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type AuditDBConfig struct {
	Host         string `json:"host"`
	Port         string `json:"port"`
	User         string `json:"user"`
	Password     string `json:"-"`
	Name         string `json:"name"`
	SSLMode      string `json:"ssl_mode"`
	MaxIdleConns int    `json:"max_idle_conns"`
	MaxOpenConns int    `json:"max_open_conns"`
}

// Enabled reports whether an audit database has been configured.
func (a AuditDBConfig) Enabled() bool {
	return a.Host != ""
}

type Config struct {
	Environment          string        `json:"environment"`
	ServerPort           string        `json:"server_port"`
	APIBaseURL           string        `json:"api_base_url"`
	APITimeout           time.Duration `json:"api_timeout"`
	SessionCookie        string        `json:"session_cookie"`
	ProfileCacheTTL      time.Duration `json:"profile_cache_ttl"`
	FetchCacheTTL        time.Duration `json:"fetch_cache_ttl"`
	SessionStateTTL      time.Duration `json:"session_state_ttl"`
	InboxPollInterval    time.Duration `json:"inbox_poll_interval"`
	SearchDebounce       time.Duration `json:"search_debounce"`
	RateLimitOutreach    int           `json:"rate_limit_outreach"`
	AllowedOrigins       []string      `json:"allowed_origins"`
	StaticDir            string        `json:"static_dir"`
	SentryDSN            string        `json:"-"`
	StripePublishableKey string        `json:"stripe_publishable_key"`
	Redis                RedisConfig   `json:"redis"`
	AuditDB              AuditDBConfig `json:"audit_db"`
}

func init() {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()
	envLoaded = true
}

func LoadConfig() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	AppConfig = cfg
	logConfig()
	return nil
}

// Load reads the configuration from the environment without touching AppConfig.
func Load() (Config, error) {
	cfg := Config{
		Environment:       getEnv("ENVIRONMENT", "development"),
		ServerPort:        getEnv("SERVER_PORT", "3000"),
		APIBaseURL:        strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8000"), "/"),
		APITimeout:        getEnvAsDuration("API_TIMEOUT", 15*time.Second),
		SessionCookie:     getEnv("SESSION_COOKIE", "token"),
		ProfileCacheTTL:   getEnvAsDuration("PROFILE_CACHE_TTL", 30*time.Minute),
		FetchCacheTTL:     getEnvAsDuration("FETCH_CACHE_TTL", 2*time.Minute),
		SessionStateTTL:   getEnvAsDuration("SESSION_STATE_TTL", 2*time.Hour),
		InboxPollInterval: getEnvAsDuration("INBOX_POLL_INTERVAL", time.Minute),
		SearchDebounce:    getEnvAsDuration("SEARCH_DEBOUNCE", 300*time.Millisecond),
		RateLimitOutreach: getEnvAsInt("RATE_LIMIT_OUTREACH", 30),
		AllowedOrigins:    getEnvAsList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		StaticDir:         getEnv("STATIC_DIR", "./public"),
		SentryDSN:         getEnv("SENTRY_DSN", ""),

		StripePublishableKey: getEnv("STRIPE_PUBLISHABLE_KEY", ""),
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		AuditDB: AuditDBConfig{
			Host:         getEnv("AUDIT_DB_HOST", ""),
			Port:         getEnv("AUDIT_DB_PORT", "5432"),
			User:         getEnv("AUDIT_DB_USER", "postgres"),
			Password:     getEnv("AUDIT_DB_PASSWORD", ""),
			Name:         getEnv("AUDIT_DB_NAME", "creatorpulse"),
			SSLMode:      getEnv("AUDIT_DB_SSL_MODE", "disable"),
			MaxIdleConns: getEnvAsInt("AUDIT_DB_MAX_IDLE_CONNS", 5),
			MaxOpenConns: getEnvAsInt("AUDIT_DB_MAX_OPEN_CONNS", 20),
		},
	}

	// Validate required configurations
	if cfg.APIBaseURL == "" {
		return cfg, fmt.Errorf("API_BASE_URL is required")
	}
	if !strings.HasPrefix(cfg.APIBaseURL, "http://") && !strings.HasPrefix(cfg.APIBaseURL, "https://") {
		return cfg, fmt.Errorf("API_BASE_URL must be an http(s) URL, got %q", cfg.APIBaseURL)
	}
	if cfg.SessionCookie == "" {
		return cfg, fmt.Errorf("SESSION_COOKIE must not be empty")
	}
	if cfg.InboxPollInterval <= 0 {
		return cfg, fmt.Errorf("INBOX_POLL_INTERVAL must be positive")
	}
	if cfg.AuditDB.Enabled() && cfg.AuditDB.Password == "" {
		return cfg, fmt.Errorf("AUDIT_DB_PASSWORD is required when AUDIT_DB_HOST is set")
	}

	return cfg, nil
}

// ConnectDB opens the audit database. It is a no-op when no audit host is configured.
func ConnectDB() error {
	if !AppConfig.AuditDB.Enabled() {
		log.Println("Audit database not configured, skipping")
		return nil
	}

	log.Println("Attempting to connect to audit database...")

	dsn := AppConfig.AuditDB.DSN()
	log.Println("Using connection string:", maskPassword(dsn))

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get DB instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(AppConfig.AuditDB.MaxIdleConns)
	sqlDB.SetMaxOpenConns(AppConfig.AuditDB.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	log.Println("✅ Successfully connected to the audit database")
	if err := DB.AutoMigrate(&models.AuditEntry{}); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	log.Println("✅ Audit migration completed")
	return nil
}

// DSN builds the postgres connection string.
func (a AuditDBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		a.Host,
		a.Port,
		a.User,
		a.Password,
		a.Name,
		a.SSLMode,
	)
}

// Helper functions
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	if !envLoaded && fallback == "" {
		log.Printf("⚠️ Environment variable %s not found and no fallback provided", key)
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsList(key string, fallback []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var values []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	if len(values) == 0 {
		return fallback
	}
	return values
}

func maskPassword(dsn string) string {
	const passwordMarker = "password="
	startIdx := strings.Index(dsn, passwordMarker)
	if startIdx == -1 {
		return dsn
	}

	startIdx += len(passwordMarker)
	endIdx := strings.IndexAny(dsn[startIdx:], " ")
	if endIdx == -1 {
		return dsn[:startIdx] + "*****"
	}
	return dsn[:startIdx] + "*****" + dsn[startIdx+endIdx:]
}

func logConfig() {
	log.Println("🔧 Loaded configuration:")
	log.Printf("Environment: %s", AppConfig.Environment)
	log.Printf("Server Port: %s", AppConfig.ServerPort)
	log.Printf("Upstream API: %s (timeout %s)", AppConfig.APIBaseURL, AppConfig.APITimeout)
	log.Printf("Inbox poll: %s, search debounce: %s", AppConfig.InboxPollInterval, AppConfig.SearchDebounce)
	log.Printf("Redis(%t), Audit DB(%t), Sentry(%t)",
		AppConfig.Redis.Enabled,
		AppConfig.AuditDB.Enabled(),
		AppConfig.SentryDSN != "")
}

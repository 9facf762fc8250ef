package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Profile store backends.
const (
	ProfileStoreMemory   = "memory"
	ProfileStorePostgres = "postgres"
	ProfileStoreMongo    = "mongo"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv               string
	Host                 string
	Port                 string
	GeminiAPIKey         string
	GeminiBaseURL        string
	GeminiReasoningModel string
	GeminiImageModel     string
	ProfileStore         string
	DatabaseURL          string
	DBMaxConns           int
	MongoURL             string
	MongoDatabase        string
	ExportDir            string
	ExportBaseURL        string
	DriveClientID        string
	DriveClientSecret    string
	DriveRedirectURL     string
	DriveFolderID        string
	RetryInitialDelay    time.Duration
	StorySlideInterval   time.Duration
	RequestTTL           time.Duration
	CORSAllowedOrigins   []string
	HTTPReadTimeout      time.Duration
	HTTPWriteTimeout     time.Duration
	HTTPIdleTimeout      time.Duration
	RateLimitPerMin      int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:               getEnv("APP_ENV", "development"),
		Host:                 os.Getenv("HOST"),
		Port:                 getEnv("PORT", "8080"),
		GeminiAPIKey:         strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiBaseURL:        os.Getenv("GEMINI_BASE_URL"),
		GeminiReasoningModel: getEnv("GEMINI_REASONING_MODEL", "gemini-2.5-flash"),
		GeminiImageModel:     getEnv("GEMINI_IMAGE_MODEL", "gemini-3-pro-image-preview"),
		ProfileStore:         strings.ToLower(getEnv("PROFILE_STORE", ProfileStoreMemory)),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		DBMaxConns:           getEnvInt("DB_MAX_CONNS", 4),
		MongoURL:             os.Getenv("MONGO_URL"),
		MongoDatabase:        getEnv("MONGO_DATABASE", "brandstudio"),
		ExportDir:            getEnv("EXPORT_DIR", "./exports"),
		ExportBaseURL:        os.Getenv("EXPORT_BASE_URL"),
		DriveClientID:        os.Getenv("DRIVE_CLIENT_ID"),
		DriveClientSecret:    os.Getenv("DRIVE_CLIENT_SECRET"),
		DriveFolderID:        os.Getenv("DRIVE_FOLDER_ID"),
		RetryInitialDelay:    time.Millisecond * time.Duration(getEnvInt("RETRY_INITIAL_DELAY_MS", 2000)),
		StorySlideInterval:   time.Millisecond * time.Duration(getEnvInt("STORY_SLIDE_INTERVAL_MS", 0)),
		RequestTTL:           time.Minute * time.Duration(getEnvInt("REQUEST_TTL_MINUTES", 60)),
		CORSAllowedOrigins:   splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		HTTPReadTimeout:      time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 30)),
		HTTPWriteTimeout:     time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 600)),
		HTTPIdleTimeout:      time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:      getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}
	cfg.DriveRedirectURL = getEnv("DRIVE_REDIRECT_URL", "http://localhost:"+cfg.Port+"/v1/drive/callback")

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	switch cfg.ProfileStore {
	case ProfileStoreMemory:
	case ProfileStorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when PROFILE_STORE=postgres")
		}
	case ProfileStoreMongo:
		if cfg.MongoURL == "" {
			return nil, fmt.Errorf("MONGO_URL is required when PROFILE_STORE=mongo")
		}
	default:
		return nil, fmt.Errorf("unsupported PROFILE_STORE %q", cfg.ProfileStore)
	}

	return cfg, nil
}

// DriveEnabled reports whether Drive export credentials are configured.
func (c *Config) DriveEnabled() bool {
	return c.DriveClientID != "" && c.DriveClientSecret != ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

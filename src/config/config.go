package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port         string
	DatabasePath string
	LogLevel     string

	JWTSecret          string
	CSRFAuthKey        []byte
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration

	// Summary feed settings. The feed is a published spreadsheet export with
	// a fixed positional layout; SummaryLayout selects the variant.
	SummaryCSVURL          string
	SummaryRefreshInterval time.Duration
	SummaryLayout          string // "single" or "dual"
	SummaryBaseYear        int    // first year of the dual-year layout

	// Margin editor settings.
	MarginSaveDebounce time.Duration

	EmailServiceProvider string

	SMTPServer   string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string

	MailgunDomain        string
	MailgunPrivateAPIKey string

	SenderEmail string
	SenderName  string

	FrontendBaseURL          string
	VerificationEmailBaseURL string
	VerificationTokenExpiry  time.Duration
	PasswordResetBaseURL     string
	PasswordResetTokenExpiry time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

var Cfg *AppConfig

func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: no .env file found, relying on OS environment variables and defaults:", err)
	} else {
		log.Println(".env file loaded successfully.")
	}

	jwtSecret := getEnv("JWT_SECRET", "insecure-development-jwt-secret-key-minimum-32-bytes!")
	if jwtSecret == "insecure-development-jwt-secret-key-minimum-32-bytes!" {
		log.Println("WARNING: Using default insecure JWT_SECRET. Set JWT_SECRET for production.")
	}

	csrfAuthKeyStr := getEnv("CSRF_AUTH_KEY", "insecure-development-csrf-key-32-bytes-long!!")
	if len(csrfAuthKeyStr) < 32 {
		log.Fatalf("FATAL: CSRF_AUTH_KEY must be at least 32 bytes long. Current length: %d", len(csrfAuthKeyStr))
	}

	summaryBaseYear, err := strconv.Atoi(getEnv("SUMMARY_BASE_YEAR", "0"))
	if err != nil {
		log.Printf("WARNING: Invalid SUMMARY_BASE_YEAR, ignoring: %v", err)
		summaryBaseYear = 0
	}

	summaryLayout := getEnv("SUMMARY_LAYOUT", "single")
	if summaryLayout != "single" && summaryLayout != "dual" {
		log.Printf("WARNING: Invalid SUMMARY_LAYOUT %q, using 'single'.", summaryLayout)
		summaryLayout = "single"
	}

	Cfg = &AppConfig{
		Port:         getEnv("PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "./clinicboard.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		JWTSecret:          jwtSecret,
		CSRFAuthKey:        []byte(csrfAuthKeyStr),
		AccessTokenExpiry:  getEnvAsDuration("ACCESS_TOKEN_EXPIRY", 60*time.Minute),
		RefreshTokenExpiry: getEnvAsDuration("REFRESH_TOKEN_EXPIRY", 7*24*time.Hour),

		SummaryCSVURL:          getEnv("SUMMARY_CSV_URL", ""),
		SummaryRefreshInterval: getEnvAsDuration("SUMMARY_REFRESH_INTERVAL", 5*time.Minute),
		SummaryLayout:          summaryLayout,
		SummaryBaseYear:        summaryBaseYear,

		MarginSaveDebounce: getEnvAsDuration("MARGIN_SAVE_DEBOUNCE", 800*time.Millisecond),

		EmailServiceProvider: getEnv("EMAIL_SERVICE_PROVIDER", "mock"),

		SMTPServer:   getEnv("SMTP_SERVER", ""),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		MailgunDomain:        getEnv("MAILGUN_DOMAIN", ""),
		MailgunPrivateAPIKey: getEnv("MAILGUN_PRIVATE_API_KEY", ""),

		SenderEmail: getEnv("SENDER_EMAIL", "noreply@example.com"),
		SenderName:  getEnv("SENDER_NAME", "Clinicboard"),

		FrontendBaseURL:          getEnv("FRONTEND_BASE_URL", "http://localhost:3000"),
		VerificationEmailBaseURL: getEnv("VERIFICATION_EMAIL_BASE_URL", "http://localhost:3000/verify-email"),
		VerificationTokenExpiry:  getEnvAsDuration("VERIFICATION_TOKEN_EXPIRY", 24*time.Hour),
		PasswordResetBaseURL:     getEnv("PASSWORD_RESET_BASE_URL", "http://localhost:3000/reset-password"),
		PasswordResetTokenExpiry: getEnvAsDuration("PASSWORD_RESET_TOKEN_EXPIRY", time.Hour),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/auth/google/callback"),
	}

	if Cfg.EmailServiceProvider == "mailgun" {
		if Cfg.MailgunDomain == "" || Cfg.MailgunPrivateAPIKey == "" {
			log.Fatalf("FATAL: MAILGUN_DOMAIN and MAILGUN_PRIVATE_API_KEY are required when EMAIL_SERVICE_PROVIDER is 'mailgun'.")
		}
	}
	if Cfg.SummaryCSVURL == "" {
		log.Println("WARNING: SUMMARY_CSV_URL not set; the dashboard feed will stay at its empty default until configured.")
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, Layout=%s, RefreshInterval=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.SummaryLayout, Cfg.SummaryRefreshInterval)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	PaymentModeRazorpay  = "razorpay"
	PaymentModeSimulated = "simulated"
)

type Config struct {
	AppPort    string
	AppEnv     string
	CORSOrigin string

	StoreDriver string
	DBHost      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBPort      string
	RedisURL    string

	JWTSecret       string
	AdminSecret     string
	AdminSecretHash string
	InternalKey     string

	PaymentMode           string
	RazorpayKeyID         string
	RazorpayKeySecret     string
	RazorpayWebhookSecret string

	WhatsAppToken         string
	WhatsAppPhoneNumberID string
	WhatsAppRecipient     string

	ChatAPIURL string
	ChatAPIKey string
	ChatModel  string

	FreeDeliveryThreshold float64
	DeliveryRatePerKg     float64
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// LoadConfig reads .env (when present) and the process environment.
func LoadConfig() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadStoreConfig is LoadConfig for tools that only touch the store.
func LoadStoreConfig() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateStore(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppPort:    envOr("APP_PORT", "8080"),
		AppEnv:     envOr("APP_ENV", "development"),
		CORSOrigin: envOr("CORS_ORIGIN", "http://localhost:3000"),

		StoreDriver: envOr("STORE_DRIVER", DriverPostgres),
		DBHost:      os.Getenv("DB_HOST"),
		DBUser:      os.Getenv("DB_USER"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      os.Getenv("DB_NAME"),
		DBPort:      envOr("DB_PORT", "5432"),
		RedisURL:    os.Getenv("REDIS_URL"),

		JWTSecret:       os.Getenv("JWT_SECRET"),
		AdminSecret:     os.Getenv("ADMIN_SECRET"),
		AdminSecretHash: os.Getenv("ADMIN_SECRET_HASH"),
		InternalKey:     os.Getenv("INTERNAL_SECRET_KEY"),

		PaymentMode:           envOr("PAYMENT_MODE", PaymentModeRazorpay),
		RazorpayKeyID:         os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret:     os.Getenv("RAZORPAY_KEY_SECRET"),
		RazorpayWebhookSecret: os.Getenv("RAZORPAY_WEBHOOK_SECRET"),

		WhatsAppToken:         os.Getenv("WHATSAPP_TOKEN"),
		WhatsAppPhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
		WhatsAppRecipient:     os.Getenv("WHATSAPP_RECIPIENT"),

		ChatAPIURL: envOr("CHAT_API_URL", "https://api.openai.com/v1/chat/completions"),
		ChatAPIKey: os.Getenv("CHAT_API_KEY"),
		ChatModel:  envOr("CHAT_MODEL", "gpt-4o-mini"),
	}

	var err error
	if cfg.FreeDeliveryThreshold, err = envFloat("FREE_DELIVERY_THRESHOLD", 1000); err != nil {
		return nil, err
	}
	if cfg.DeliveryRatePerKg, err = envFloat("DELIVERY_RATE_PER_KG", 60); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidateStore checks only the store driver settings.
func (c *Config) ValidateStore() error {
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DBHost == "" || c.DBName == "" {
			return errors.New("DB_HOST and DB_NAME are required for the postgres store")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	return nil
}

// Validate checks that the keys required by the selected drivers are set.
func (c *Config) Validate() error {
	var errs []error

	if err := c.ValidateStore(); err != nil {
		errs = append(errs, err)
	}

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.AdminSecret == "" && c.AdminSecretHash == "" {
		errs = append(errs, errors.New("ADMIN_SECRET or ADMIN_SECRET_HASH is required"))
	}

	switch c.PaymentMode {
	case PaymentModeRazorpay, PaymentModeSimulated:
	default:
		errs = append(errs, fmt.Errorf("unknown PAYMENT_MODE %q", c.PaymentMode))
	}

	return errors.Join(errs...)
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return v, nil
}

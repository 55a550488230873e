package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	CORS       CORSConfig
	RateLimit  RateLimitConfig
	Catalog    CatalogConfig
	Gateway    GatewayConfig
	Documents  DocumentsConfig
	Settlement SettlementConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
	Debug    bool
}

type JWTConfig struct {
	Secret             string
	ExpiryHours        time.Duration
	RefreshExpiryHours time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

// CatalogConfig points at the menu/catalog service used at item-add time.
type CatalogConfig struct {
	BaseURL string
	Timeout time.Duration
}

// GatewayConfig points at the electronic payment processor. The timeout
// bounds ConfirmElectronicPayment; a timeout aborts the settlement.
type GatewayConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// DocumentsConfig points at the document rendering service.
type DocumentsConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SettlementConfig tunes the reconciliation coordinator.
type SettlementConfig struct {
	// MaxRetries bounds automatic retries after a lost optimistic write.
	MaxRetries int
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "mesa-api")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "mesa")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "America/Bogota")
	viper.SetDefault("DB_DEBUG", false)
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
	viper.SetDefault("JWT_REFRESH_EXPIRY_HOURS", 168)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("CATALOG_BASE_URL", "http://localhost:8081")
	viper.SetDefault("CATALOG_TIMEOUT_SECONDS", 5)
	viper.SetDefault("PAYMENT_GATEWAY_BASE_URL", "http://localhost:8082")
	viper.SetDefault("PAYMENT_GATEWAY_API_KEY", "")
	viper.SetDefault("PAYMENT_GATEWAY_TIMEOUT_SECONDS", 10)
	viper.SetDefault("DOCUMENTS_BASE_URL", "http://localhost:8083")
	viper.SetDefault("DOCUMENTS_TIMEOUT_SECONDS", 15)
	viper.SetDefault("SETTLEMENT_MAX_RETRIES", 3)

	return &Config{
		App: AppConfig{
			Name:  viper.GetString("APP_NAME"),
			Env:   viper.GetString("APP_ENV"),
			Port:  viper.GetString("APP_PORT"),
			Debug: viper.GetBool("APP_DEBUG"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
			Debug:    viper.GetBool("DB_DEBUG"),
		},
		JWT: JWTConfig{
			Secret:             viper.GetString("JWT_SECRET"),
			ExpiryHours:        time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
			RefreshExpiryHours: time.Duration(viper.GetInt("JWT_REFRESH_EXPIRY_HOURS")) * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Catalog: CatalogConfig{
			BaseURL: viper.GetString("CATALOG_BASE_URL"),
			Timeout: time.Duration(viper.GetInt("CATALOG_TIMEOUT_SECONDS")) * time.Second,
		},
		Gateway: GatewayConfig{
			BaseURL: viper.GetString("PAYMENT_GATEWAY_BASE_URL"),
			APIKey:  viper.GetString("PAYMENT_GATEWAY_API_KEY"),
			Timeout: time.Duration(viper.GetInt("PAYMENT_GATEWAY_TIMEOUT_SECONDS")) * time.Second,
		},
		Documents: DocumentsConfig{
			BaseURL: viper.GetString("DOCUMENTS_BASE_URL"),
			Timeout: time.Duration(viper.GetInt("DOCUMENTS_TIMEOUT_SECONDS")) * time.Second,
		},
		Settlement: SettlementConfig{
			MaxRetries: viper.GetInt("SETTLEMENT_MAX_RETRIES"),
		},
	}
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}

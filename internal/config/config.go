package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	SessionSecret       string
	DatabaseURL         string
	RedisURL            string
	JWTSecret           string
	JWTExpiry           time.Duration
	FrontendURLEndsWith string
	FrontendURL         string
	CookieDomain        string
	DevPassword         string
	AllowCrossSiteDev   bool
	UploadDir           string
	StatsCacheTTL       time.Duration
	AutoMigrate         bool

	// Bootstrap admin account used by cmd/seed.
	AdminEmail    string
	AdminPassword string
	AdminName     string
	AdminPhone    string
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("JWT_EXPIRY_MINUTES", 1440)
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("STATS_CACHE_SECONDS", 30)
	v.SetDefault("ADMIN_NAME", "Administrator")

	return &Config{
		Env:                 v.GetString("APP_ENV"),
		Port:                v.GetString("PORT"),
		SessionSecret:       v.GetString("SESSION_SECRET"),
		DatabaseURL:         v.GetString("DATABASE_URL"),
		RedisURL:            v.GetString("REDIS_URL"),
		JWTSecret:           v.GetString("JWT_SECRET"),
		JWTExpiry:           time.Duration(v.GetInt("JWT_EXPIRY_MINUTES")) * time.Minute,
		FrontendURLEndsWith: v.GetString("FRONTEND_URL_ENDS_WITH"),
		FrontendURL:         v.GetString("FRONTEND_URL"),
		CookieDomain:        v.GetString("COOKIE_DOMAIN"),
		DevPassword:         v.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:   strings.EqualFold(v.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		UploadDir:           v.GetString("UPLOAD_DIR"),
		StatsCacheTTL:       time.Duration(v.GetInt("STATS_CACHE_SECONDS")) * time.Second,
		AutoMigrate:         v.GetBool("AUTO_MIGRATE"),
		AdminEmail:          strings.ToLower(strings.TrimSpace(v.GetString("ADMIN_EMAIL"))),
		AdminPassword:       v.GetString("ADMIN_PASSWORD"),
		AdminName:           v.GetString("ADMIN_NAME"),
		AdminPhone:          v.GetString("ADMIN_PHONE"),
	}, nil
}

// IsProduction reports whether the app runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

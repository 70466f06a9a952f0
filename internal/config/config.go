package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName             string
	AppEnv              string
	AppPort             string
	DatabaseURL         string
	RedisURL            string
	JWTSecret           string
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string
	CollegeCacheTTL     time.Duration
	UploadMaxMB         int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("COLLAPP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Collapp API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cloudinary.folder", "collapp")
	v.SetDefault("college.cache_ttl", "5m")
	v.SetDefault("upload.max_mb", 10)

	ttlString := v.GetString("college.cache_ttl")
	if ttlString == "" {
		ttlString = "5m"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid college cache ttl: %w", err)
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		JWTSecret:           v.GetString("jwt.secret"),
		CloudinaryCloudName: v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:    v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret: v.GetString("cloudinary.api_secret"),
		CloudinaryFolder:    v.GetString("cloudinary.folder"),
		CollegeCacheTTL:     ttl,
		UploadMaxMB:         v.GetInt("upload.max_mb"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.UploadMaxMB <= 0 {
		cfg.UploadMaxMB = 10
	}

	return cfg, nil
}

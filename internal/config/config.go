package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port                string
	MongoURI            string
	MongoDatabase       string
	DatabaseURL         string
	RedisURL            string
	RedisPassword       string
	JWTSecret           string
	TokenTTLDays        int
	FrontendURL         string
	AllowedOrigins      []string
	Judge0URL           string
	RapidAPIKey         string
	JudgeTimeout        time.Duration
	LeaderboardCacheTTL time.Duration
	OAuthConfig         OAuthConfig
}

var AppConfig *Config

func LoadConfig() *Config {
	port := GetEnv("PORT", "5000")

	// Frontend & CORS
	frontendURL := GetEnv("FRONTEND_URL", "http://localhost:5173")
	allowedOriginsStr := GetEnv("ALLOWED_ORIGINS", "")

	allowedOrigins := []string{
		frontendURL,
		"http://localhost:5173", // Local development
	}
	if allowedOriginsStr != "" {
		extras := strings.Split(allowedOriginsStr, ",")
		for _, origin := range extras {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				allowedOrigins = append(allowedOrigins, trimmed)
			}
		}
	}

	// Security
	jwtSecret := GetEnv("JWT_SECRET", "mindmash_secret")
	tokenTTLDays := GetEnvAsInt("TOKEN_TTL_DAYS", 7)

	oauthConfig := LoadOAuthConfig(frontendURL)

	AppConfig = &Config{
		Port:                port,
		MongoURI:            GetEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:       GetEnv("MONGO_DB", "mindmash"),
		DatabaseURL:         GetEnv("DATABASE_URL", ""),
		RedisURL:            GetEnv("REDIS_URL", "localhost:6379"),
		RedisPassword:       GetEnv("REDIS_PASSWORD", ""),
		JWTSecret:           jwtSecret,
		TokenTTLDays:        tokenTTLDays,
		FrontendURL:         frontendURL,
		AllowedOrigins:      allowedOrigins,
		Judge0URL:           GetEnv("JUDGE0_URL", "https://judge0-ce.p.rapidapi.com"),
		RapidAPIKey:         GetEnv("RAPIDAPI_KEY", GetEnv("RAPID_API_KEY", "")),
		JudgeTimeout:        time.Duration(GetEnvAsInt("JUDGE0_TIMEOUT_SECONDS", 30)) * time.Second,
		LeaderboardCacheTTL: time.Duration(GetEnvAsInt("LEADERBOARD_CACHE_SECONDS", 30)) * time.Second,
		OAuthConfig:         *oauthConfig,
	}

	return AppConfig
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

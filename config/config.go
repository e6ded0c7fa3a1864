package config

import (
	"os"
	"strconv"
)

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type AIConfig struct {
	APIKey string
	Model  string
}

type AppConfig struct {
	Port        string
	Database    DatabaseConfig
	AI          AIConfig
	JWTSecret   string
	Environment string

	// ProfilesRoot is the root of the user-profile tree holding resume files.
	ProfilesRoot string
	// DoNotApplyPath points at the newline-separated disallowed-domain list.
	DoNotApplyPath string
	// HoldOpenSeconds is how long the filled page is left open for manual review.
	HoldOpenSeconds int
}

func GetDatabaseConfig() DatabaseConfig {
	port, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))

	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     port,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		DBName:   getEnv("DB_NAME", "applyai"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

func GetAppConfig() AppConfig {
	holdOpen, _ := strconv.Atoi(getEnv("HOLD_OPEN_SECONDS", "60"))

	return AppConfig{
		Port:     getEnv("PORT", "8081"),
		Database: GetDatabaseConfig(),
		AI: AIConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-1.5-pro"),
		},
		JWTSecret:       getEnv("JWT_SECRET", "your-secret-key"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		ProfilesRoot:    getEnv("PROFILES_ROOT", "./user_profiles"),
		DoNotApplyPath:  getEnv("DO_NOT_APPLY_PATH", "./data/do-not-apply.txt"),
		HoldOpenSeconds: holdOpen,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

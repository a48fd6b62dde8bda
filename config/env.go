package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

func init() {
	// Load env from .env; unknown keys are ignored, process env wins.
	godotenv.Load()
}

func stringFromEnv(key string, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func floatFromEnv(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func Environment() string {
	return stringFromEnv("ENVIRONMENT", "development")
}

// VectorConfig groups the duplicate-detection provider settings.
type VectorConfig struct {
	VectorUrl        string
	VectorApiKey     string
	VoyageApiKey     string
	CollectionPrefix string
	ScoreThreshold   float64
	TopK             int
}

func GetVectorConfig() VectorConfig {
	return VectorConfig{
		VectorUrl:        stringFromEnv("VECTOR_URL", "http://localhost:6333"),
		VectorApiKey:     os.Getenv("VECTOR_API_KEY"),
		VoyageApiKey:     os.Getenv("VOYAGE_API_KEY"),
		CollectionPrefix: stringFromEnv("VECTOR_COLLECTION_PREFIX", "jobs"),
		ScoreThreshold:   floatFromEnv("DUPLICATE_SCORE_THRESHOLD", 0.75),
		TopK:             intFromEnv("DUPLICATE_TOP_K", 10),
	}
}

// OAuthConfig holds one email provider's client credentials.
type OAuthConfig struct {
	ClientId     string
	ClientSecret string
	RedirectUri  string
}

func GetO365Config() OAuthConfig {
	return OAuthConfig{
		ClientId:     os.Getenv("O365_CLIENT_ID"),
		ClientSecret: os.Getenv("O365_CLIENT_SECRET"),
		RedirectUri:  os.Getenv("O365_REDIRECT_URI"),
	}
}

func GetGmailConfig() OAuthConfig {
	return OAuthConfig{
		ClientId:     os.Getenv("GMAIL_CLIENT_ID"),
		ClientSecret: os.Getenv("GMAIL_CLIENT_SECRET"),
		RedirectUri:  os.Getenv("GMAIL_REDIRECT_URI"),
	}
}

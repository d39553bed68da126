package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

// Config holds runtime configuration.
type Config struct {
	Port         string
	DBDSN        string
	OpenAIAPIKey string
	TTSVoice     string
	MediaDir     string
}

// Load parses environment variables into Config and validates required
// values. A .env file in the working directory is read first if
// present.
func Load() (Config, error) {
	// Missing .env is fine; real deployments set the environment.
	_ = godotenv.Load()

	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		DBDSN:        os.Getenv("DB_DSN"),
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		TTSVoice:     getEnv("TTS_VOICE", "alloy"),
		MediaDir:     getEnv("MEDIA_DIR", "media"),
	}

	if cfg.DBDSN == "" {
		return Config{}, errors.New("DB_DSN is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

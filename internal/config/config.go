package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	Port        string
	UploadsDir  string

	// Search tuning
	SearchLimit   int     // result cap, default 50
	SkillWeight   float64 // score for a skill-index hit, default 100
	KeywordWeight float64 // score for a name/location fallback hit, default 10

	// LLM Configuration
	LLMProvider string // "openai", "groq", "ollama" or "none"
	LLMModel    string
	LLMAPIKey   string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	llmProvider := os.Getenv("LLM_PROVIDER")
	if llmProvider == "" {
		llmProvider = "none" // rule-based extraction by default
	}

	llmModel := os.Getenv("LLM_MODEL")
	if llmModel == "" {
		llmModel = "gpt-4o-mini"
	}

	llmAPIKey := ""
	if llmProvider == "openai" {
		llmAPIKey = os.Getenv("OPENAI_API_KEY")
	} else if llmProvider == "groq" {
		llmAPIKey = os.Getenv("GROQ_API_KEY")
	}

	return &Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		Port:          getenv("PORT", "8080"),
		UploadsDir:    getenv("UPLOADS_DIR", "./uploads"),
		SearchLimit:   getenvInt("SEARCH_LIMIT", 50),
		SkillWeight:   getenvFloat("SKILL_WEIGHT", 100),
		KeywordWeight: getenvFloat("KEYWORD_WEIGHT", 10),
		LLMProvider:   llmProvider,
		LLMModel:      llmModel,
		LLMAPIKey:     llmAPIKey,
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("Warning: invalid %s value %q, using %d", key, v, fallback)
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("Warning: invalid %s value %q, using %g", key, v, fallback)
	}
	return fallback
}

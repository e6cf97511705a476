package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     Server
	Database   Database
	Storage    Storage
	OCR        OCR
	Extraction Extraction
	Backend    Backend
	Qdrant     Qdrant
	Worker     Worker
}

type Server struct {
	Port string
	Env  string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type Storage struct {
	UploadPath   string
	ArtifactPath string
	MaxFileSize  int64
}

type OCR struct {
	Language    string
	RenderScale float64
}

type Extraction struct {
	// Strategy selects the field extractor: "model" (Gemini structured
	// output) or "pattern" (offline regex rules).
	Strategy     string
	GeminiAPIKey string
	Timeout      time.Duration
}

type Backend struct {
	APIURL  string
	APIKey  string
	Timeout time.Duration
}

type Qdrant struct {
	URL        string
	APIKey     string
	Collection string
}

type Worker struct {
	Concurrency  int
	PollInterval time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: Server{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: Database{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "diplocheck"),
		},
		Storage: Storage{
			UploadPath:   getEnv("UPLOAD_PATH", "./uploads"),
			ArtifactPath: getEnv("ARTIFACT_PATH", "./artifacts"),
			MaxFileSize:  getEnvAsInt64("MAX_FILE_SIZE", 10485760),
		},
		OCR: OCR{
			Language:    getEnv("OCR_LANGUAGE", "fra"),
			RenderScale: getEnvAsFloat("RENDER_SCALE", 1.5),
		},
		Extraction: Extraction{
			Strategy:     getEnv("EXTRACTION_STRATEGY", "model"),
			GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
			Timeout:      getEnvAsDuration("EXTRACTION_TIMEOUT", "60s"),
		},
		Backend: Backend{
			APIURL:  getEnv("BACKEND_API_URL", ""),
			APIKey:  getEnv("BACKEND_API_KEY", ""),
			Timeout: getEnvAsDuration("DISPATCH_TIMEOUT", "30s"),
		},
		Qdrant: Qdrant{
			URL:        getEnv("QDRANT_URL", ""),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "diploma_archive"),
		},
		Worker: Worker{
			Concurrency:  getEnvAsInt("WORKER_CONCURRENCY", 2),
			PollInterval: getEnvAsDuration("WORKER_POLL_INTERVAL", "10s"),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

// Package config loads application configuration from the environment.
//
// Values come from a .env file when present, then environment
// variables, then defaults. The loaded Config is passed explicitly to
// the store constructors; nothing reads ambient state after startup.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds application configuration values.
type Config struct {
	AppName    string
	HTTPPort   string
	SQLitePath string
	MongoURI   string
	MongoDB    string
	MongoColl  string
}

// Load reads configuration with reasonable defaults. A missing .env
// file is not an error.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:    getEnv("APP_NAME", "Sales API"),
		HTTPPort:   getEnv("HTTP_PORT", "8080"),
		SQLitePath: getEnv("SQLITE_PATH", "./data/sales.db"),
		MongoURI:   getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:    getEnv("MONGO_DB_NAME", "sales_db"),
		MongoColl:  getEnv("MONGO_COLLECTION_NAME", "sale_texts"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

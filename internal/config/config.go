package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr   string
	DBPath       string
	MenuKey      string
	PhotoBackend string
	PhotoPath    string
	LogLevel     string
	LogFile      string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; variables already set win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ListenAddr:   getEnv("LISTEN_ADDR", ":8080"),
		DBPath:       getEnv("DB_PATH", "/data/menuboard.db"),
		MenuKey:      getEnv("MENU_KEY", "@menu_items_v1"),
		PhotoBackend: getEnv("PHOTO_BACKEND", "local"),
		PhotoPath:    getEnv("PHOTO_LOCAL_PATH", "/data/photos"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFile:      getEnv("LOG_FILE", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

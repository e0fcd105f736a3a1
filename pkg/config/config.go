package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
)

var (
	once     sync.Once
	instance *Config
)

type Config struct {
}

// New loads envs from ./configs/.env (or the file named by KORE_ENV_FILE).
// A missing file is fine for deployments that set envs directly.
func New() *Config {
	once.Do(func() {
		path := os.Getenv("KORE_ENV_FILE")
		if path == "" {
			path = "./configs/.env"
		}
		if err := godotenv.Load(path); err != nil {
			log.Println("no env file loaded: ", err)
		}
		instance = &Config{}
	})
	return instance
}

func (c *Config) GetString(key string) string {
	return os.Getenv(key)
}

// GetStringOr returns the env value, or fallback when the env is unset or
// empty.
func (c *Config) GetStringOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

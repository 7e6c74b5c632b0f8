package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AllowedOrigins []string
	PublicDir      string
}

func Load() *Config {
	// .env is optional; environment variables win either way
	_ = godotenv.Load()

	cfg := &Config{
		AllowedOrigins: []string{"*"},
		PublicDir:      "./public",
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	if dir := os.Getenv("PUBLIC_DIR"); dir != "" {
		cfg.PublicDir = dir
	}

	return cfg
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Port       string
	MongoURI   string
	DBName     string
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

// Load reads process configuration from the environment. A missing JWT
// secret is a startup error; signing tokens with an empty key is worse
// than not starting.
func Load() (*Config, error) {
	cfg := &Config{
		Port:       getenv("PORT", "8080"),
		MongoURI:   getenv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:     getenv("DB_NAME", "eventvote"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		TokenTTL:   24 * time.Hour,
		BcryptCost: bcrypt.DefaultCost,
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	if ttl := os.Getenv("TOKEN_TTL_HOURS"); ttl != "" {
		hours, err := strconv.Atoi(ttl)
		if err != nil || hours <= 0 {
			return nil, fmt.Errorf("invalid TOKEN_TTL_HOURS %q", ttl)
		}
		cfg.TokenTTL = time.Duration(hours) * time.Hour
	}

	if cost := os.Getenv("BCRYPT_COST"); cost != "" {
		n, err := strconv.Atoi(cost)
		if err != nil || n < bcrypt.MinCost || n > bcrypt.MaxCost {
			return nil, fmt.Errorf("invalid BCRYPT_COST %q", cost)
		}
		cfg.BcryptCost = n
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

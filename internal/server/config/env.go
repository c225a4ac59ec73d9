package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from environment variables, loading a .env
// file first when one is present. Unset variables leave the current values
// untouched.
//
// Recognized variables:
//
//	ADDRESS                  HTTP bind address
//	DATABASE_DSN             PostgreSQL DSN
//	SECRET_KEY               JWT HMAC secret
//	ACCESS_TOKEN_VALIDITY    e.g. "15m"
//	REFRESH_TOKEN_VALIDITY   e.g. "720h"
func parseEnv(config *Config) {
	// a missing .env file is the normal case outside of development
	_ = godotenv.Load()

	if v := strings.TrimSpace(os.Getenv("ADDRESS")); v != "" {
		config.EndpointAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("DATABASE_DSN")); v != "" {
		config.DatabaseDSN = v
	}
	if v := strings.TrimSpace(os.Getenv("SECRET_KEY")); v != "" {
		config.SecretKey = v
	}
	if v := strings.TrimSpace(os.Getenv("ACCESS_TOKEN_VALIDITY")); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.AccessTokenValidityDuration = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("REFRESH_TOKEN_VALIDITY")); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.RefreshTokenValidityDuration = d
		}
	}
}

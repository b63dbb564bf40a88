package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays configuration values from environment variables.
//
// Supported variables:
//
//	ADDRESS            HTTP bind address (e.g., ":8080")
//	DATABASE_DSN       PostgreSQL DSN
//	JWT_SECRET         JWT HMAC secret key
//	ACCESS_TOKEN_TTL   access token validity (time.ParseDuration syntax)
//	REFRESH_TOKEN_TTL  refresh token validity (time.ParseDuration syntax)
//	BCRYPT_COST        bcrypt work factor
//
// Malformed duration or integer values are ignored and the previous value
// is kept.
func parseEnv(config *Config) {
	if v := os.Getenv("ADDRESS"); v != "" {
		config.EndpointAddrHTTP = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		config.SecretKey = v
	}
	if v := os.Getenv("ACCESS_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.AccessTokenValidityDuration = d
		}
	}
	if v := os.Getenv("REFRESH_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.RefreshTokenValidityDuration = d
		}
	}
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.BcryptCost = n
		}
	}
}

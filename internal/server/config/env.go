package config

import (
	"os"
	"time"
)

// parseEnv overlays configuration values from environment variables.
// Secrets (SECRET_KEY, MASTER_PASSWORD, S3 credentials) are expected to
// arrive this way in deployed environments.
//
// Recognized variables:
//
//	ADDRESS                 HTTP bind address
//	DATABASE_DSN            PostgreSQL DSN
//	SECRET_KEY              JWT HMAC secret
//	MASTER_PASSWORD         password for the seeded master account
//	ACCESS_TOKEN_VALIDITY   access token lifetime (Go duration, e.g. "2h")
//	REFRESH_TOKEN_VALIDITY  refresh token lifetime (e.g. "168h")
//	S3_ROOT_USER / S3_ROOT_PASSWORD
//	S3_BUCKET / S3_REGION / S3_BASE_ENDPOINT
//	PRODUCTION              any non-empty value enables production logging
func parseEnv(config *Config) {
	envString(&config.EndpointAddr, "ADDRESS")
	envString(&config.DatabaseDSN, "DATABASE_DSN")
	envString(&config.SecretKey, "SECRET_KEY")
	envString(&config.MasterPassword, "MASTER_PASSWORD")
	envDuration(&config.AccessTokenValidityDuration, "ACCESS_TOKEN_VALIDITY")
	envDuration(&config.RefreshTokenValidityDuration, "REFRESH_TOKEN_VALIDITY")
	envString(&config.S3RootUser, "S3_ROOT_USER")
	envString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	envString(&config.S3Bucket, "S3_BUCKET")
	envString(&config.S3Region, "S3_REGION")
	envString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	if os.Getenv("PRODUCTION") != "" {
		config.Production = true
	}
}

func envString(dst *string, name string) {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		*dst = v
	}
}

func envDuration(dst *time.Duration, name string) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
	}
}

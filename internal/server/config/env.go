package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables understood by the server. TTL values are plain
// integers (minutes for the access token, days for the refresh token);
// a non-numeric value is a startup error, not a per-request one.
const (
	envEndpointAddr   = "RUN_ADDRESS"
	envDatabaseDSN    = "DATABASE_DSN"
	envSigningKey     = "SIGNING_KEY"
	envTokenIssuer    = "TOKEN_ISSUER"
	envTokenAudience  = "TOKEN_AUDIENCE"
	envAccessTTLMin   = "ACCESS_TOKEN_TTL_MINUTES"
	envRefreshTTLDays = "REFRESH_TOKEN_TTL_DAYS"
	envS3RootUser     = "S3_ROOT_USER"
	envS3RootPassword = "S3_ROOT_PASSWORD"
	envS3Bucket       = "S3_BUCKET"
	envS3Region       = "S3_REGION"
	envS3BaseEndpoint = "S3_BASE_ENDPOINT"
)

// parseEnv overlays configuration from the process environment. A .env file
// in the working directory is loaded first when present; its absence is not
// an error.
func parseEnv(config *Config) error {
	_ = godotenv.Load()

	setString(&config.EndpointAddr, envEndpointAddr)
	setString(&config.DatabaseDSN, envDatabaseDSN)
	setString(&config.SecretKey, envSigningKey)
	setString(&config.TokenIssuer, envTokenIssuer)
	setString(&config.TokenAudience, envTokenAudience)
	setString(&config.S3RootUser, envS3RootUser)
	setString(&config.S3RootPassword, envS3RootPassword)
	setString(&config.S3Bucket, envS3Bucket)
	setString(&config.S3Region, envS3Region)
	setString(&config.S3BaseEndpoint, envS3BaseEndpoint)

	if err := setDuration(&config.AccessTokenValidityDuration, envAccessTTLMin, time.Minute); err != nil {
		return err
	}
	if err := setDuration(&config.RefreshTokenValidityDuration, envRefreshTTLDays, 24*time.Hour); err != nil {
		return err
	}

	return nil
}

func setString(target *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*target = v
	}
}

func setDuration(target *time.Duration, key string, unit time.Duration) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("config: %s: %q is not a number", key, v)
	}
	*target = time.Duration(n) * unit
	return nil
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_StringOverrides(t *testing.T) {
	t.Setenv(envEndpointAddr, ":9090")
	t.Setenv(envSigningKey, "env-secret")
	t.Setenv(envTokenIssuer, "env-issuer")
	t.Setenv(envTokenAudience, "env-audience")

	var c Config
	c.LoadDefaults()
	require.NoError(t, parseEnv(&c))

	assert.Equal(t, ":9090", c.EndpointAddr)
	assert.Equal(t, "env-secret", c.SecretKey)
	assert.Equal(t, "env-issuer", c.TokenIssuer)
	assert.Equal(t, "env-audience", c.TokenAudience)
}

func TestParseEnv_TTLUnits(t *testing.T) {
	t.Setenv(envAccessTTLMin, "30")
	t.Setenv(envRefreshTTLDays, "14")

	var c Config
	c.LoadDefaults()
	require.NoError(t, parseEnv(&c))

	assert.Equal(t, 30*time.Minute, c.AccessTokenValidityDuration)
	assert.Equal(t, 14*24*time.Hour, c.RefreshTokenValidityDuration)
}

func TestParseEnv_NonNumericTTLIsFatal(t *testing.T) {
	t.Setenv(envAccessTTLMin, "fifteen")

	var c Config
	c.LoadDefaults()
	err := parseEnv(&c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), envAccessTTLMin)
}

func TestParseEnv_EmptyValuesKeepDefaults(t *testing.T) {
	t.Setenv(envSigningKey, "")
	t.Setenv(envRefreshTTLDays, "")

	var c Config
	c.LoadDefaults()
	require.NoError(t, parseEnv(&c))

	assert.Equal(t, "secretKey", c.SecretKey)
	assert.Equal(t, 7*24*time.Hour, c.RefreshTokenValidityDuration)
}

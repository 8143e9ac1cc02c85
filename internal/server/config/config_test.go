package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, c.EndpointAddr, ":8440")
	assert.Equal(t, c.MetricsAddr, "")
	assert.Equal(t, c.DatabaseDSN, "")
	assert.Equal(t, c.SecretKey, "")
	assert.Equal(t, c.TokenValidityDuration, 12*time.Hour)
	assert.Equal(t, c.MinUsernameLength, 3)
	assert.Equal(t, c.MinPasswordLength, 6)
	assert.Equal(t, c.QueueSize, 256)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	c := LoadConfig()

	require.NotNil(t, c, "LoadConfig must not return nil")

	assert.Equal(t, c.EndpointAddr, ":8440")
	assert.Equal(t, c.DatabaseDSN, "")
	assert.Equal(t, c.SecretKey, "")
	assert.Equal(t, c.TokenValidityDuration, 12*time.Hour)
	assert.Equal(t, c.MinUsernameLength, 3)
	assert.Equal(t, c.MinPasswordLength, 6)
	assert.Equal(t, c.QueueSize, 256)
}

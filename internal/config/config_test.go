package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:             "8080",
		DBPassword:       "password",
		UploadDir:        "./uploads",
		Env:              "development",
		ChatHistoryLimit: 50,
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	c := validConfig()
	c.Port = ""
	assert.Error(t, c.Validate())

	c = validConfig()
	c.UploadDir = ""
	assert.Error(t, c.Validate())

	c = validConfig()
	c.ChatHistoryLimit = 0
	assert.Error(t, c.Validate())
}

func TestValidate_ProductionRejectsDefaultDBPassword(t *testing.T) {
	c := validConfig()
	c.Env = "production"
	assert.Error(t, c.Validate())

	c.DBPassword = "s3cure-and-long"
	assert.NoError(t, c.Validate())
}

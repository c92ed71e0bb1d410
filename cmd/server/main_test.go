package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"sergioimports/backend/internal/config"
)

const strongSecret = "0123456789abcdef0123456789abcdef"

func TestValidateSecurityConfigRejectsWeakValues(t *testing.T) {
	cases := map[string]config.Config{
		"short secret":    {AuthSecret: "short", OperatorUsername: "operador", OperatorPassword: "vendas-2026!"},
		"short password":  {AuthSecret: strongSecret, OperatorUsername: "operador", OperatorPassword: "abc"},
		"common password": {AuthSecret: strongSecret, OperatorUsername: "operador", OperatorPassword: "Senha123"},
		"repeated":        {AuthSecret: strongSecret, OperatorUsername: "operador", OperatorPassword: "aaaaaaaaaa"},
		"no username":     {AuthSecret: strongSecret, OperatorUsername: " ", OperatorPassword: "vendas-2026!"},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, validateSecurityConfig(cfg))
		})
	}
}

func TestValidateSecurityConfigAcceptsStrongValues(t *testing.T) {
	err := validateSecurityConfig(config.Config{AuthSecret: strongSecret, OperatorUsername: "operador", OperatorPassword: "vendas-2026!"})
	require.NoError(t, err)

	hashed := "$2a$10$abcdefghijklmnopqrstuuJ4c6xQ0hK3m1o2p3q4r5s6t7u8v9w0"
	err = validateSecurityConfig(config.Config{AuthSecret: strongSecret, OperatorUsername: "operador", OperatorPassword: hashed})
	assert.NoError(t, err)
}

func TestNewLoggerHonoursLevel(t *testing.T) {
	logger, err := newLogger(config.Config{LogLevel: "warn", AppEnv: "production"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	_, err = newLogger(config.Config{LogLevel: "loud"})
	assert.Error(t, err)
}

package httpapi

import (
	"strings"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sergioimports/backend/internal/domain"
)

func TestNewAuthManagerValidation(t *testing.T) {
	_, err := NewAuthManager("", time.Hour, testUser, testPassword)
	assert.Error(t, err)

	_, err = NewAuthManager(testSecret, time.Hour, "  ", testPassword)
	assert.Error(t, err)
}

func TestLoginIssuesParsableToken(t *testing.T) {
	auth := newTestAuth(t)

	resp, err := auth.Login(domain.LoginRequest{Username: " operador ", Password: testPassword})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)

	expiresAt, err := time.Parse(time.RFC3339, resp.ExpiresAt)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	actor, err := auth.ParseToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, testUser, actor.Username)
}

func TestLoginRejectsUnknownOperator(t *testing.T) {
	auth := newTestAuth(t)

	_, err := auth.Login(domain.LoginRequest{Username: "caixa2", Password: testPassword})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.Login(domain.LoginRequest{Username: testUser, Password: ""})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestPlaintextPasswordIsHashed(t *testing.T) {
	auth, err := NewAuthManager(testSecret, time.Hour, testUser, testPassword)
	require.NoError(t, err)
	assert.True(t, isPasswordHash(auth.passwordHash))
	assert.NotContains(t, auth.passwordHash, testPassword)

	_, err = auth.Login(domain.LoginRequest{Username: testUser, Password: testPassword})
	assert.NoError(t, err)
}

func TestParseTokenRejectsTampering(t *testing.T) {
	auth := newTestAuth(t)
	resp, err := auth.Login(domain.LoginRequest{Username: testUser, Password: testPassword})
	require.NoError(t, err)

	parts := strings.Split(resp.AccessToken, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = auth.ParseToken(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsForeignClaims(t *testing.T) {
	auth := newTestAuth(t)
	now := time.Now().UTC()

	cases := map[string]jwtlib.RegisteredClaims{
		"wrong issuer": {
			Subject:   testUser,
			Issuer:    "another-app",
			ExpiresAt: jwtlib.NewNumericDate(now.Add(time.Hour)),
		},
		"expired": {
			Subject:   testUser,
			Issuer:    tokenIssuer,
			ExpiresAt: jwtlib.NewNumericDate(now.Add(-time.Minute)),
		},
		"other subject": {
			Subject:   "intruso",
			Issuer:    tokenIssuer,
			ExpiresAt: jwtlib.NewNumericDate(now.Add(time.Hour)),
		},
	}

	for name, claims := range cases {
		t.Run(name, func(t *testing.T) {
			token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, operatorClaims{RegisteredClaims: claims}).
				SignedString([]byte(testSecret))
			require.NoError(t, err)

			_, err = auth.ParseToken(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestParseTokenRejectsOtherSecret(t *testing.T) {
	auth := newTestAuth(t)
	other, err := NewAuthManager("ffffffffffffffffffffffffffffffff", time.Hour, testUser, auth.passwordHash)
	require.NoError(t, err)

	resp, err := other.Login(domain.LoginRequest{Username: testUser, Password: testPassword})
	require.NoError(t, err)

	_, err = auth.ParseToken(resp.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

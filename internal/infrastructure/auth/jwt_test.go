package auth

import (
	"testing"
	"time"

	"github.com/erp/depreciation/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-at-least-32-chars"

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                testSecret,
		Issuer:                "erp-backend",
		AccessTokenExpiration: 15 * time.Minute,
	})
}

func newTestInput() GenerateTokenInput {
	return GenerateTokenInput{
		TenantID:    uuid.New(),
		UserID:      uuid.New(),
		Username:    "controller",
		Permissions: []string{"depreciation:view", "depreciation:manage"},
	}
}

func signClaims(t *testing.T, claims *Claims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims(input GenerateTokenInput) *Claims {
	now := time.Now()
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "erp-backend",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		TenantID:    input.TenantID.String(),
		UserID:      input.UserID.String(),
		Permissions: input.Permissions,
		TokenType:   TokenTypeAccess,
	}
}

func TestJWTService_GenerateAndAuthenticate(t *testing.T) {
	svc := newTestJWTService()
	input := newTestInput()

	token, expiresAt, err := svc.GenerateAccessToken(input)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	identity, err := svc.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, input.TenantID, identity.TenantID)
	assert.Equal(t, input.UserID, identity.UserID)
	assert.Equal(t, "controller", identity.Username)
	assert.True(t, identity.HasPermission("depreciation:manage"))
	assert.False(t, identity.HasPermission("depreciation:admin"))
	assert.WithinDuration(t, expiresAt, identity.ExpiresAt, time.Second)
}

func TestJWTService_ValidateAccessToken(t *testing.T) {
	svc := newTestJWTService()
	input := newTestInput()

	tests := []struct {
		name    string
		token   func() string
		wantErr error
	}{
		{
			name:    "garbage",
			token:   func() string { return "not-a-jwt" },
			wantErr: ErrInvalidToken,
		},
		{
			name: "expired",
			token: func() string {
				c := validClaims(input)
				c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
				return signClaims(t, c, testSecret)
			},
			wantErr: ErrExpiredToken,
		},
		{
			name: "not yet valid",
			token: func() string {
				c := validClaims(input)
				c.NotBefore = jwt.NewNumericDate(time.Now().Add(time.Hour))
				return signClaims(t, c, testSecret)
			},
			wantErr: ErrTokenNotYetValid,
		},
		{
			name:    "signed with another secret",
			token:   func() string { return signClaims(t, validClaims(input), "another-secret-key-at-least-32-ch") },
			wantErr: ErrInvalidToken,
		},
		{
			name: "foreign issuer",
			token: func() string {
				c := validClaims(input)
				c.Issuer = "someone-else"
				return signClaims(t, c, testSecret)
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "refresh token",
			token: func() string {
				c := validClaims(input)
				c.TokenType = "refresh"
				return signClaims(t, c, testSecret)
			},
			wantErr: ErrInvalidTokenType,
		},
		{
			name: "missing business unit",
			token: func() string {
				c := validClaims(input)
				c.TenantID = ""
				return signClaims(t, c, testSecret)
			},
			wantErr: ErrMissingTenantID,
		},
		{
			name: "missing user",
			token: func() string {
				c := validClaims(input)
				c.UserID = ""
				return signClaims(t, c, testSecret)
			},
			wantErr: ErrMissingUserID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateAccessToken(tt.token())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestJWTService_RejectsNonHMAC(t *testing.T) {
	svc := newTestJWTService()
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims(newTestInput())).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_Authenticate_MalformedIDs(t *testing.T) {
	svc := newTestJWTService()
	c := validClaims(newTestInput())
	c.TenantID = "bu-42"

	_, err := svc.Authenticate(signClaims(t, c, testSecret))
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

package auth

import (
	"testing"
	"time"

	"github.com/erp/consistency/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-at-least-32-chars!!"

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:          testSecret,
		Issuer:          "erp-consistency",
		TokenExpiration: time.Hour,
	})
}

func TestIssueAndValidate(t *testing.T) {
	svc := newTestJWTService()
	userID := uuid.New()

	token, expiresAt, err := svc.Issue(userID, "ops", []string{RoleAdmin}, 0)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	got, err := claims.UserUUID()
	require.NoError(t, err)
	assert.Equal(t, userID, got)
	assert.Equal(t, "ops", claims.Username)
	assert.Equal(t, []string{RoleAdmin}, claims.Roles)
}

func TestIssue_RequiresRoles(t *testing.T) {
	_, _, err := newTestJWTService().Issue(uuid.New(), "ops", nil, 0)
	assert.ErrorIs(t, err, ErrNoRoles)
}

func TestValidate_Rejections(t *testing.T) {
	svc := newTestJWTService()
	userID := uuid.New()

	t.Run("expired", func(t *testing.T) {
		past := newTestJWTService()
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, _, err := past.Issue(userID, "ops", []string{RoleAdmin}, time.Minute)
		require.NoError(t, err)

		_, err = svc.Validate(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("not yet valid", func(t *testing.T) {
		future := newTestJWTService()
		future.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		token, _, err := future.Issue(userID, "ops", []string{RoleAdmin}, 0)
		require.NoError(t, err)

		_, err = svc.Validate(token)
		assert.ErrorIs(t, err, ErrTokenNotYetValid)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{Secret: "another-secret-that-is-long-enough", Issuer: "erp-consistency"})
		token, _, err := other.Issue(userID, "ops", []string{RoleAdmin}, 0)
		require.NoError(t, err)

		_, err = svc.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{Secret: testSecret, Issuer: "someone-else"})
		token, _, err := other.Issue(userID, "ops", []string{RoleAdmin}, 0)
		require.NoError(t, err)

		_, err = svc.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		claims := &Claims{UserID: userID.String(), Roles: []string{RoleAdmin}}
		claims.Issuer = "erp-consistency"
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("malformed user id", func(t *testing.T) {
		claims := &Claims{UserID: "not-a-uuid", Roles: []string{RoleAdmin}}
		claims.Issuer = "erp-consistency"
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = svc.Validate(token)
		assert.ErrorIs(t, err, ErrMissingUserID)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Validate("not.a.jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestClaims_HasAnyRole(t *testing.T) {
	tests := []struct {
		name   string
		roles  []string
		needed []string
		want   bool
	}{
		{"admin may correct", []string{RoleAdmin}, CorrectionRoles, true},
		{"manager may not correct", []string{RoleManager}, CorrectionRoles, false},
		{"manager may read", []string{RoleManager}, ReadRoles, true},
		{"seller may not read", []string{RoleSeller}, ReadRoles, false},
		{"seller may create returns", []string{RoleSeller}, ReturnRoles, true},
		{"no roles", nil, ReturnRoles, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Claims{Roles: tt.roles}
			assert.Equal(t, tt.want, c.HasAnyRole(tt.needed...))
		})
	}
}

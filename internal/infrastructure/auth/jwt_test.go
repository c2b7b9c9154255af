package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tablekit/backoffice/internal/domain/shared"
	"github.com/tablekit/backoffice/internal/infrastructure/config"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "test-issuer",
	})
}

func newTestActor() shared.Actor {
	return shared.NewActor(uuid.New(), "maria", shared.RoleManager)
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := newTestJWTService()
	actor := newTestActor()

	issued, err := svc.GenerateToken(actor)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", issued.TokenType)
	assert.NotEmpty(t, issued.AccessToken)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), issued.ExpiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(issued.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, actor.StaffID.String(), claims.StaffID)
	assert.Equal(t, actor.StaffID.String(), claims.Subject)
	assert.Equal(t, "maria", claims.Username)
	assert.Equal(t, "manager", claims.Role)
	assert.Equal(t, "test-issuer", claims.Issuer)
	assert.Greater(t, claims.RemainingTTL(), 14*time.Minute)

	got, err := claims.Actor()
	require.NoError(t, err)
	assert.Equal(t, actor, got)
}

func TestJWTService_GenerateToken_RejectsAnonymous(t *testing.T) {
	svc := newTestJWTService()

	_, err := svc.GenerateToken(shared.Actor{Username: "ghost", Role: shared.RoleStaff})
	require.Error(t, err)
}

func TestJWTService_ValidateToken_Failures(t *testing.T) {
	svc := newTestJWTService()
	actor := newTestActor()

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{
			Secret:                "another-secret-key-at-least-32-chars",
			AccessTokenExpiration: time.Minute,
			Issuer:                "test-issuer",
		})
		issued, err := other.GenerateToken(actor)
		require.NoError(t, err)

		_, err = svc.ValidateToken(issued.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{
			Secret:                "test-secret-key-at-least-32-chars",
			AccessTokenExpiration: time.Minute,
			Issuer:                "someone-else",
		})
		issued, err := other.GenerateToken(actor)
		require.NoError(t, err)

		_, err = svc.ValidateToken(issued.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		past := newTestJWTService()
		past.now = func() time.Time { return time.Now().Add(-time.Hour) }
		issued, err := past.GenerateToken(actor)
		require.NoError(t, err)

		_, err = svc.ValidateToken(issued.AccessToken)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("not yet valid", func(t *testing.T) {
		future := newTestJWTService()
		future.now = func() time.Time { return time.Now().Add(time.Hour) }
		issued, err := future.GenerateToken(actor)
		require.NoError(t, err)

		_, err = svc.ValidateToken(issued.AccessToken)
		assert.ErrorIs(t, err, ErrTokenNotYetValid)
	})

	t.Run("unexpected signing method", func(t *testing.T) {
		claims := &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "test-issuer",
				Audience:  jwt.ClaimStrings{"test-issuer"},
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			},
			StaffID: actor.StaffID.String(),
			Role:    "admin",
		}
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.ValidateToken(unsigned)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestClaims_Actor(t *testing.T) {
	tests := []struct {
		name    string
		claims  Claims
		wantErr error
	}{
		{"valid", Claims{StaffID: uuid.NewString(), Username: "sam", Role: "Staff"}, nil},
		{"missing staff", Claims{Role: "staff"}, ErrMissingStaffID},
		{"nil staff", Claims{StaffID: uuid.Nil.String(), Role: "staff"}, ErrMissingStaffID},
		{"unknown role", Claims{StaffID: uuid.NewString(), Role: "chef"}, ErrInvalidRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor, err := tt.claims.Actor()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, shared.RoleStaff, actor.Role)
		})
	}
}

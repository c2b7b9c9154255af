package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tablekit/backoffice/internal/domain/shared"
	"github.com/tablekit/backoffice/internal/infrastructure/auth"
	"github.com/tablekit/backoffice/internal/infrastructure/config"
	"github.com/tablekit/backoffice/internal/infrastructure/logger"
	"github.com/tablekit/backoffice/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

func newTestJWTService(expiration time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: expiration,
		Issuer:                "backoffice-test",
	})
}

func tokenFor(t *testing.T, svc *auth.JWTService, role shared.Role) (string, shared.Actor) {
	t.Helper()
	actor := shared.NewActor(uuid.New(), "marta", role)
	issued, err := svc.GenerateToken(actor)
	require.NoError(t, err)
	return issued.AccessToken, actor
}

func newAuthRouter(svc *auth.JWTService, handlers ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), JWTAuth(DefaultJWTConfig(svc, zap.NewNop())))
	router.GET("/health", okHandler)
	router.GET("/api/v1/orders", append(handlers, okHandler)...)
	return router
}

func doGet(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(AuthHeaderKey, token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth_ValidToken(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	token, actor := tokenFor(t, svc, shared.RoleStaff)

	var (
		got      shared.Actor
		ctxStaff string
	)
	router := newAuthRouter(svc, func(c *gin.Context) {
		got, _ = GetActor(c)
		ctxStaff = logger.GetStaffID(c.Request.Context())
		require.NotNil(t, GetJWTClaims(c))
		c.Next()
	})

	rec := doGet(router, "/api/v1/orders", BearerPrefix+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, actor.StaffID, got.StaffID)
	assert.Equal(t, shared.RoleStaff, got.Role)
	assert.Equal(t, actor.StaffID.String(), ctxStaff)
}

func TestJWTAuth_Rejections(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	expired := newTestJWTService(-time.Minute)
	expiredToken, _ := tokenFor(t, expired, shared.RoleStaff)
	router := newAuthRouter(svc)

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", dto.ErrCodeTokenInvalid},
		{"wrong scheme", "Basic abc", dto.ErrCodeTokenInvalid},
		{"empty bearer", "Bearer ", dto.ErrCodeTokenInvalid},
		{"garbage token", "Bearer not.a.jwt", dto.ErrCodeTokenInvalid},
		{"expired", BearerPrefix + expiredToken, dto.ErrCodeTokenExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doGet(router, "/api/v1/orders", tt.header)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			resp := decodeResponse(t, rec)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestJWTAuth_SkipsHealth(t *testing.T) {
	router := newAuthRouter(newTestJWTService(time.Minute))
	assert.Equal(t, http.StatusOK, doGet(router, "/health", "").Code)
}

func TestRequireRole(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	router := newAuthRouter(svc, RequireRole(shared.RoleManager))

	staff, _ := tokenFor(t, svc, shared.RoleStaff)
	manager, _ := tokenFor(t, svc, shared.RoleManager)
	admin, _ := tokenFor(t, svc, shared.RoleAdmin)

	rec := doGet(router, "/api/v1/orders", BearerPrefix+staff)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, dto.ErrCodeForbidden, decodeResponse(t, rec).Error.Code)

	assert.Equal(t, http.StatusOK, doGet(router, "/api/v1/orders", BearerPrefix+manager).Code)
	assert.Equal(t, http.StatusOK, doGet(router, "/api/v1/orders", BearerPrefix+admin).Code)
}

func TestRequireRole_WithoutActor(t *testing.T) {
	router := gin.New()
	router.GET("/x", RequireRole(shared.RoleStaff), okHandler)

	rec := doGet(router, "/x", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

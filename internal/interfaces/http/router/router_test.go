package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	group := NewDomainGroup("tables", "/tables").
		GET("", func(c *gin.Context) { c.String(http.StatusOK, "list") }).
		POST("/:id/release", func(c *gin.Context) { c.String(http.StatusOK, "release "+c.Param("id")) }).
		PUT("/:id/status", func(c *gin.Context) { c.String(http.StatusOK, "status") }).
		DELETE("/:id", func(c *gin.Context) { c.String(http.StatusOK, "delete "+c.Param("id")) })

	NewRouter(engine).Register(group).Setup()

	assert.Equal(t, "list", serve(engine, http.MethodGet, "/api/v1/tables").Body.String())
	assert.Equal(t, "release 5", serve(engine, http.MethodPost, "/api/v1/tables/5/release").Body.String())
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodPut, "/api/v1/tables/5/status").Code)
	assert.Equal(t, "delete 5", serve(engine, http.MethodDelete, "/api/v1/tables/5").Body.String())
	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/tables").Code)
}

func TestRouter_APIMiddlewareOnlyOnAPI(t *testing.T) {
	engine := gin.New()
	engine.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	deny := func(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) }
	group := NewDomainGroup("orders", "/orders").GET("", func(c *gin.Context) { c.Status(http.StatusOK) })
	NewRouter(engine, WithAPIMiddleware(deny)).Register(group).Setup()

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodGet, "/api/v1/orders").Code)
}

func TestDomainGroup_MiddlewareOrder(t *testing.T) {
	engine := gin.New()
	var trail []string
	mark := func(name string) gin.HandlerFunc {
		return func(c *gin.Context) { trail = append(trail, name) }
	}

	group := NewDomainGroup("inventory", "/inventory").
		Use(mark("group")).
		POST("", mark("route-gate"), func(c *gin.Context) {
			trail = append(trail, "handler")
			c.Status(http.StatusCreated)
		})
	assert.Equal(t, "inventory", group.Name())
	assert.Equal(t, "/inventory", group.Prefix())

	NewRouter(engine, WithAPIMiddleware(mark("api"))).Register(group).Setup()
	rec := serve(engine, http.MethodPost, "/api/v1/inventory")

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []string{"api", "group", "route-gate", "handler"}, trail)
}

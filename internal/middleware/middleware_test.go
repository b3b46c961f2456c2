package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/school-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
)

type validatorStub struct {
	claims *models.JWTClaims
}

func (v validatorStub) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return v.claims, nil
}

type observerStub struct {
	path   string
	status int
}

func (o *observerStub) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	o.path = path
	o.status = status
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newProtectedRouter(claims *models.JWTClaims, allowed ...string) *gin.Engine {
	r := gin.New()
	r.GET("/students/:studentId/ratio", JWT(validatorStub{claims: claims}), RBAC(allowed...), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func serve(r http.Handler, auth string) int {
	req := httptest.NewRequest(http.MethodGet, "/students/s1/ratio", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestJWTRejectsMissingAndMalformedTokens(t *testing.T) {
	r := newProtectedRouter(&models.JWTClaims{UserID: "a1", Role: models.RoleAdmin}, "admin")

	assert.Equal(t, http.StatusUnauthorized, serve(r, ""))
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Basic abc"))
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Bearer bad"))
	assert.Equal(t, http.StatusNoContent, serve(r, "Bearer good"))
}

func TestRBACRolesAndSelf(t *testing.T) {
	teacher := newProtectedRouter(&models.JWTClaims{UserID: "t1", Role: models.RoleTeacher}, "admin")
	assert.Equal(t, http.StatusForbidden, serve(teacher, "Bearer good"))

	self := newProtectedRouter(&models.JWTClaims{UserID: "s1", Role: models.RoleStudent}, "admin", SelfParam+"studentId")
	assert.Equal(t, http.StatusNoContent, serve(self, "Bearer good"))

	other := newProtectedRouter(&models.JWTClaims{UserID: "s2", Role: models.RoleStudent}, "admin", SelfParam+"studentId")
	assert.Equal(t, http.StatusForbidden, serve(other, "Bearer good"))
}

func TestRBACWithoutClaims(t *testing.T) {
	r := gin.New()
	r.GET("/x", RequireRoles(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	obs := &observerStub{}
	r := gin.New()
	r.Use(Metrics(obs))
	r.GET("/lessons/:id", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/lessons/9", nil))
	assert.Equal(t, "/lessons/:id", obs.path)
	assert.Equal(t, http.StatusTeapot, obs.status)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"sems_backend/internal/config"
	"sems_backend/internal/model"
	"sems_backend/internal/util"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(cfg *config.Config, roles ...model.UserRole) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/protected", AuthMiddleware(cfg), RoleMiddleware(roles...), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func token(t *testing.T, cfg *config.Config, role model.UserRole) string {
	t.Helper()
	user := &model.User{BaseModel: model.BaseModel{ID: 7}, Role: role}
	tok, err := util.GenerateJWT(user, cfg.JWT.Secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	return tok
}

func TestAuthAndRoleMiddleware(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "middleware-test-secret"}}
	router := newRouter(cfg, model.RoleSupervisor, model.RoleManager)

	tests := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{name: "missing token", want: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "student forbidden", header: "Bearer " + token(t, cfg, model.RoleStudent), want: http.StatusForbidden},
		{name: "supervisor allowed", header: "Bearer " + token(t, cfg, model.RoleSupervisor), want: http.StatusOK},
		{name: "manager via query", query: "?token=" + token(t, cfg, model.RoleManager), want: http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tc.want, w.Body.String())
			}
		})
	}
}

func TestTokenSignedWithOtherSecretRejected(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "right-secret"}}
	other := &config.Config{JWT: config.JWTConfig{Secret: "wrong-secret"}}
	router := newRouter(cfg, model.RoleStudent)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, other, model.RoleStudent))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestRequestIDEchoed(t *testing.T) {
	router := newRouter(&config.Config{JWT: config.JWTConfig{Secret: "s"}})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(util.RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if got := w.Header().Get(util.RequestIDHeader); got != "abc-123" {
		t.Fatalf("request id = %q, want abc-123", got)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
	if w.Header().Get(util.RequestIDHeader) == "" {
		t.Fatal("expected generated request id")
	}
}

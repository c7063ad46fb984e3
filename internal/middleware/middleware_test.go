package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/church-console/backend/internal/auth"
)

func newRouter(svc *auth.JWTService, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Logger(zap.NewNop()), CORS("http://console.local"))
	chain := []gin.HandlerFunc{JWT(svc)}
	if len(roles) > 0 {
		chain = append(chain, RequireRole(roles...))
	}
	chain = append(chain, func(c *gin.Context) { c.String(http.StatusOK, UserID(c)) })
	r.GET("/private", chain...)
	return r
}

func TestJWT(t *testing.T) {
	svc := auth.NewJWTService("secret", 1)
	tok, _ := svc.Generate("user-7", "", RoleStaff)
	r := newRouter(svc)

	tests := []struct {
		name   string
		url    string
		header string
		want   int
	}{
		{"missing", "/private", "", http.StatusUnauthorized},
		{"malformed", "/private", "Token " + tok, http.StatusUnauthorized},
		{"invalid", "/private", "Bearer nope", http.StatusUnauthorized},
		{"header", "/private", "Bearer " + tok, http.StatusOK},
		{"query", "/private?token=" + tok, "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
			if tt.want == http.StatusOK && w.Body.String() != "user-7" {
				t.Fatalf("body = %q", w.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	svc := auth.NewJWTService("secret", 1)
	r := newRouter(svc, RoleAdmin, RoleTreasurer)
	for role, want := range map[string]int{RoleTreasurer: http.StatusOK, RoleStaff: http.StatusForbidden} {
		tok, _ := svc.Generate("u", "", role)
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != want {
			t.Errorf("%s: status = %d, want %d", role, w.Code, want)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	r := newRouter(auth.NewJWTService("secret", 1))
	req := httptest.NewRequest(http.MethodOptions, "/private", nil)
	req.Header.Set("Origin", "http://console.local")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Allow-Origin") != "http://console.local" {
		t.Fatalf("preflight: %d %v", w.Code, w.Header())
	}
}

package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"blupr/internal/domain"
	"blupr/internal/service"
)

func protectedRouter(jwtSvc *service.JWTService) *gin.Engine {
	r := gin.New()
	r.GET("/protected", JWTAuthMiddleware(jwtSvc), func(c *gin.Context) {
		claims, ok := GetAuthClaims(c)
		if !ok || claims.UserID != "u1" {
			c.Status(http.StatusUnauthorized)
			return
		}
		c.Status(http.StatusOK)
	})
	return r
}

func TestJWTAuthMiddleware_AllowsValidAccessToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jwtSvc := service.NewJWTService("secret", 15*time.Minute, 30*time.Minute, nil)
	pair, err := jwtSvc.GeneratePair(context.Background(), domain.User{ID: "u1", Email: "user@example.com"})
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}

	for _, scheme := range []string{"Bearer ", "bearer "} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", scheme+pair.AccessToken)
		rec := httptest.NewRecorder()
		protectedRouter(jwtSvc).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("%q: expected 200, got %d", scheme, rec.Code)
		}
	}
}

func TestJWTAuthMiddleware_Rejects(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jwtSvc := service.NewJWTService("secret", 15*time.Minute, 30*time.Minute, nil)
	pair, err := jwtSvc.GeneratePair(context.Background(), domain.User{ID: "u1"})
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}

	cases := map[string]string{
		"missing":       "",
		"no scheme":     pair.AccessToken,
		"garbage":       "Bearer not-a-token",
		"refresh token": "Bearer " + pair.RefreshToken,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			protectedRouter(jwtSvc).ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestJWTAuthMiddleware_NotConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	protectedRouter(nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

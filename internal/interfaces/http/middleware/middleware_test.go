package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"talka.backend/internal/domain/entities"
	domainerrors "talka.backend/internal/domain/errors"
	"talka.backend/internal/infrastructure/metrics"
	"talka.backend/internal/usecases"
	"talka.backend/pkg/jwt"
	"talka.backend/pkg/logger"
)

type authorizerStub struct {
	fn  func(ctx context.Context, req usecases.AuthRequest) (*usecases.AuthContext, error)
	got usecases.AuthRequest
}

func (s *authorizerStub) Authorize(ctx context.Context, req usecases.AuthRequest) (*usecases.AuthContext, error) {
	s.got = req
	return s.fn(ctx, req)
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		fromCtx, _ := c.Request.Context().Value(logger.RequestIDKey).(string)
		c.String(http.StatusOK, fromCtx)
	})

	t.Run("generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		id := w.Header().Get(RequestIDHeader)
		require.NotEmpty(t, id)
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("propagated", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "req-123")
		r.ServeHTTP(w, req)
		assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "req-123", w.Body.String())
	})
}

func TestLoggerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware(), LoggerMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping?x=1", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := metrics.NewRegistry()
	r := gin.New()
	r.Use(MetricsMiddleware(reg))
	r.GET("/api/bot/:botId/config", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(reg.Handler()))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/bot/abc/config", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()
	assert.Contains(t, body, `route="/api/bot/:botId/config"`)
	assert.Contains(t, body, `route="unmatched"`)
	assert.NotContains(t, body, `route="/api/bot/abc/config"`)
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := jwt.NewJWTService("dashboard-secret", time.Hour)
	expired := jwt.NewJWTService("dashboard-secret", -time.Minute)

	r := gin.New()
	r.Use(AuthMiddleware(svc))
	r.GET("/me", func(c *gin.Context) {
		id, ok := GetUserID(c)
		require.True(t, ok)
		c.String(http.StatusOK, id)
	})

	token, err := svc.GenerateToken("user-1", "u@example.com")
	require.NoError(t, err)
	expiredToken, err := expired.GenerateToken("user-1", "u@example.com")
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing header", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"invalid token", "Bearer nope", http.StatusUnauthorized, "Invalid token"},
		{"expired token", "Bearer " + expiredToken, http.StatusUnauthorized, "Token has expired"},
		{"valid", "Bearer " + token, http.StatusOK, "user-1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set(AuthorizationHeader, tc.header)
			}
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			assert.Contains(t, w.Body.String(), tc.body)
		})
	}
}

func TestGetUserID_Missing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := GetUserID(c)
	assert.False(t, ok)

	c.Set(UserIDKey, 42)
	_, ok = GetUserID(c)
	assert.False(t, ok)
}

func newBotAuthRouter(gk Authorizer, scope string) *gin.Engine {
	r := gin.New()
	r.POST("/api/bot/:botId/validate", BotAuthMiddleware(gk, scope), func(c *gin.Context) {
		authCtx, ok := GetAuthContext(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{"bot_id": authCtx.BotID})
	})
	return r
}

func TestBotAuthMiddleware_HeaderPrecedence(t *testing.T) {
	gin.SetMode(gin.TestMode)
	stub := &authorizerStub{fn: func(_ context.Context, req usecases.AuthRequest) (*usecases.AuthContext, error) {
		return &usecases.AuthContext{BotID: req.BotID, ApiKey: &entities.ApiKey{Name: "k"}, State: usecases.StateAuthorized}, nil
	}}
	r := newBotAuthRouter(stub, entities.ScopeRead)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/bot/bot-1/validate", nil)
	req.Header.Set(BotAuthHeader, "mesh-token")
	req.Header.Set(AuthorizationHeader, "Bearer other-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "mesh-token", stub.got.Credential)
	assert.Equal(t, "bot-1", stub.got.BotID)
	assert.Equal(t, entities.ScopeRead, stub.got.RequiredScope)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/bot/bot-1/validate", nil)
	req.Header.Set(AuthorizationHeader, "Bearer other-token")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "other-token", stub.got.Credential)
}

func TestBotAuthMiddleware_Rejects(t *testing.T) {
	gin.SetMode(gin.TestMode)
	stub := &authorizerStub{fn: func(_ context.Context, req usecases.AuthRequest) (*usecases.AuthContext, error) {
		if req.Credential == "" {
			return nil, domainerrors.TokenMissing()
		}
		return nil, domainerrors.PermissionDenied(req.RequiredScope)
	}}
	r := newBotAuthRouter(stub, entities.ScopeWrite)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/bot/bot-1/validate", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Missing auth token","err_code":"TOKEN_MISSING"}`, w.Body.String())
	assert.Equal(t, "", stub.got.Credential)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/bot/bot-1/validate", nil)
	req.Header.Set(BotAuthHeader, "t")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), `"err_code":"PERMISSION_DENIED"`)
}

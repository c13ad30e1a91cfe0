package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/autogestion/autogestion-backend/internal/config"
	"github.com/autogestion/autogestion-backend/internal/model"
	"github.com/autogestion/autogestion-backend/internal/response"
	"github.com/autogestion/autogestion-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestAuth() *service.AuthService {
	return service.NewAuthService(&config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour}, nil)
}

func staffToken(t *testing.T, auth *service.AuthService, perms ...model.Permission) string {
	t.Helper()
	codes := make([]string, len(perms))
	for i, p := range perms {
		codes[i] = string(p)
	}
	token, err := auth.GenerateStaffToken(7, 2, codes)
	require.NoError(t, err)
	return token
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) response.ErrCode {
	t.Helper()
	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	return body.Error.Code
}

func TestJWTMiddleware(t *testing.T) {
	auth := newTestAuth()
	token := staffToken(t, auth)

	r := gin.New()
	r.GET("/staff", RequireStaffJWT(auth), func(c *gin.Context) {
		c.String(http.StatusOK, "%d", GetClaims(c).UserID)
	})
	r.GET("/student", RequireStudentJWT(auth), func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name     string
		path     string
		header   string
		wantCode int
		wantErr  response.ErrCode
	}{
		{name: "staff bearer", path: "/staff", header: "Bearer " + token, wantCode: http.StatusOK},
		{name: "lowercase scheme", path: "/staff", header: "bearer " + token, wantCode: http.StatusOK},
		{name: "query fallback", path: "/staff?token=" + token, wantCode: http.StatusOK},
		{name: "no token", path: "/staff", wantCode: http.StatusUnauthorized, wantErr: response.ErrTokenRequired},
		{name: "basic auth", path: "/staff", header: "Basic Zm9vOmJhcg==", wantCode: http.StatusUnauthorized, wantErr: response.ErrTokenRequired},
		{name: "garbage", path: "/staff", header: "Bearer nope", wantCode: http.StatusUnauthorized, wantErr: response.ErrTokenInvalid},
		{name: "staff on student route", path: "/student", header: "Bearer " + token, wantCode: http.StatusForbidden, wantErr: response.ErrStudentAccessOnly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, errorCode(t, w))
			}
		})
	}
}

func TestRequirePermission(t *testing.T) {
	auth := newTestAuth()

	r := gin.New()
	r.GET("/review", RequireStaffJWT(auth),
		RequireAnyPermission(model.PermissionEnrollmentsReviewAll, model.PermissionEnrollmentsReviewOwn),
		func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/roles", RequireStaffJWT(auth), RequirePermission(model.PermissionRolesWrite),
		func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bare", RequirePermission(model.PermissionRolesWrite), func(c *gin.Context) { c.Status(http.StatusOK) })

	token := staffToken(t, auth, model.PermissionEnrollmentsReviewOwn)

	do := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, do("/review").Code)

	w := do("/roles")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, response.ErrPermissionDenied, errorCode(t, w))

	w = do("/bare")
	assert.Equal(t, http.StatusUnauthorized, w.Code, "no claims in context")
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(NewMemoryCounter(), "auth", 2, time.Minute, zerolog.Nop())
	rl.now = func() time.Time { return time.Unix(600, 0) }

	r := gin.New()
	r.POST("/login", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":5000"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, do("10.0.0.1").Code)

	w := do("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, response.ErrRateLimitExceeded, errorCode(t, w))
	assert.Equal(t, "61", w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, do("10.0.0.2").Code, "counters are per client")

	rl.now = func() time.Time { return time.Unix(660, 0) }
	assert.Equal(t, http.StatusOK, do("10.0.0.1").Code, "next window starts fresh")
}

func TestNoStore(t *testing.T) {
	r := gin.New()
	r.GET("/seats", NoStore(), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/careers", CacheControl(300), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/seats", nil))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/careers", nil))
	assert.Equal(t, "public, max-age=300", w.Header().Get("Cache-Control"))
}

func TestBrotli(t *testing.T) {
	large := strings.Repeat("inscripción confirmada ", 200)

	r := gin.New()
	r.Use(Brotli())
	r.GET("/large", func(c *gin.Context) { c.String(http.StatusOK, large) })
	r.GET("/small", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/xlsx", func(c *gin.Context) { c.Data(http.StatusOK, service.XLSXContentType, []byte(large)) })

	get := func(path string, acceptBr bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if acceptBr {
			req.Header.Set("Accept-Encoding", "gzip, br;q=1.0")
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("large body compressed", func(t *testing.T) {
		w := get("/large", true)
		assert.Equal(t, "br", w.Header().Get("Content-Encoding"))
		assert.Equal(t, "Accept-Encoding", w.Header().Get("Vary"))

		plain, err := io.ReadAll(brotli.NewReader(bytes.NewReader(w.Body.Bytes())))
		require.NoError(t, err)
		assert.Equal(t, large, string(plain))
	})

	t.Run("small body untouched", func(t *testing.T) {
		w := get("/small", true)
		assert.Empty(t, w.Header().Get("Content-Encoding"))
		assert.Equal(t, "ok", w.Body.String())
	})

	t.Run("spreadsheet untouched", func(t *testing.T) {
		w := get("/xlsx", true)
		assert.Empty(t, w.Header().Get("Content-Encoding"))
		assert.Equal(t, large, w.Body.String())
	})

	t.Run("client without br", func(t *testing.T) {
		w := get("/large", false)
		assert.Empty(t, w.Header().Get("Content-Encoding"))
		assert.Equal(t, large, w.Body.String())
	})
}

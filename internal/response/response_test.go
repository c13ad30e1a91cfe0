package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter() *gin.Engine {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestSuccess_Envelope(t *testing.T) {
	r := newRouter()
	r.GET("/ok", func(c *gin.Context) {
		Success(c, http.StatusOK, gin.H{"hello": "mundo"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("X-Request-ID", "req-123")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))

	body := decode(t, w)
	assert.Nil(t, body.Error)
	assert.Equal(t, "req-123", body.Metadata.RequestID)
	_, err := time.Parse(time.RFC3339, body.Metadata.Timestamp)
	assert.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"hello": "mundo"}, body.Data)
}

func TestRequestID_RejectsOversizedHeader(t *testing.T) {
	r := newRouter()
	r.GET("/ok", func(c *gin.Context) { Success(c, http.StatusOK, nil) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("x", 200))
	r.ServeHTTP(w, req)

	id := w.Header().Get("X-Request-ID")
	assert.NotEmpty(t, id)
	assert.LessOrEqual(t, len(id), maxRequestIDLen)
}

func TestFail_UsesLocalizedMessage(t *testing.T) {
	r := newRouter()
	r.GET("/full", func(c *gin.Context) {
		Fail(c, http.StatusConflict, ErrSeatsExhausted)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/full", nil))

	assert.Equal(t, http.StatusConflict, w.Code)
	body := decode(t, w)
	require.NotNil(t, body.Error)
	assert.Equal(t, ErrSeatsExhausted, body.Error.Code)
	assert.Equal(t, GetMessage(ErrSeatsExhausted), body.Error.Message)
	assert.Nil(t, body.Data)
}

func TestFailRetryAfter_SetsHeader(t *testing.T) {
	r := newRouter()
	r.GET("/busy", func(c *gin.Context) {
		FailRetryAfter(c, http.StatusServiceUnavailable, ErrBusy, 200*time.Millisecond)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/busy", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestFailWithFields(t *testing.T) {
	r := newRouter()
	r.POST("/v", func(c *gin.Context) {
		FailWithFields(c, http.StatusBadRequest, ErrValidation, map[string]string{"legajo": "es obligatorio"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v", nil))

	body := decode(t, w)
	require.NotNil(t, body.Error)
	assert.Equal(t, "es obligatorio", body.Error.Fields["legajo"])
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 31)
	assert.Equal(t, 4, p.TotalPages)
	assert.Equal(t, 0, NewPagination(1, 0, 5).TotalPages)
}

func TestGetMessage_AllCodesLocalized(t *testing.T) {
	codes := []ErrCode{
		ErrInvalidCredentials, ErrSessionActive, ErrSessionInvalidated, ErrTokenRequired, ErrTokenInvalid,
		ErrForbidden, ErrPermissionDenied, ErrStudentAccessOnly, ErrStaffAccessOnly,
		ErrValidation, ErrInvalidID, ErrInvalidPayload,
		ErrNotFound, ErrConflict, ErrDependencyExists, ErrActionForbidden,
		ErrOfferingClosed, ErrAlreadyEnrolled, ErrSeatsExhausted, ErrNotCancelable,
		ErrInvalidDecision, ErrInvalidTransition, ErrCapacityLocked, ErrNotEnrolled, ErrBusy,
		ErrRateLimitExceeded, ErrInternal,
	}
	fallback := GetMessage("SOMETHING_ELSE")
	for _, code := range codes {
		assert.NotEqual(t, fallback, GetMessage(code), "code %s has no message", code)
	}
}

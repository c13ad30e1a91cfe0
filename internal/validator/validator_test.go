package validator

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginPayload struct {
	Legajo   string `json:"legajo" binding:"required,legajo"`
	Password string `json:"password" binding:"required,min=4"`
}

func bindBody(t *testing.T, body string) map[string]string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var dst loginPayload
	return Bind(c, &dst)
}

func TestBind(t *testing.T) {
	Setup()

	tests := []struct {
		name       string
		body       string
		wantFields []string
	}{
		{name: "valid", body: `{"legajo":"12345/6","password":"secreto"}`},
		{name: "valid without suffix", body: `{"legajo":"987654","password":"secreto"}`},
		{name: "missing legajo", body: `{"password":"secreto"}`, wantFields: []string{"legajo"}},
		{name: "bad legajo", body: `{"legajo":"ab-12","password":"secreto"}`, wantFields: []string{"legajo"}},
		{name: "short password", body: `{"legajo":"12345","password":"x"}`, wantFields: []string{"password"}},
		{name: "malformed json", body: `{"legajo":`, wantFields: []string{"detail"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := bindBody(t, tt.body)
			if len(tt.wantFields) == 0 {
				assert.Nil(t, fields)
				return
			}
			require.NotNil(t, fields)
			for _, f := range tt.wantFields {
				assert.Contains(t, fields, f)
				assert.NotEmpty(t, fields[f])
			}
		})
	}
}

func TestBind_SpanishMessages(t *testing.T) {
	Setup()

	fields := bindBody(t, `{"password":"secreto"}`)
	require.Contains(t, fields, "legajo")
	assert.Contains(t, fields["legajo"], "requerido")
}

func TestTranslateErrors_NonValidation(t *testing.T) {
	fields := TranslateErrors(errors.New("boom"))
	assert.Equal(t, map[string]string{"detail": "boom"}, fields)
}

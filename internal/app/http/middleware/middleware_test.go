package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lorekeeper/internal/api/auth"
	"lorekeeper/internal/domain/users"
)

const secret = "test-secret"

func token(t *testing.T, role string, ttl time.Duration) string {
	t.Helper()
	s, err := auth.IssueToken([]byte(secret), users.User{ID: 7, Name: "keeper", Role: role}, ttl)
	require.NoError(t, err)
	return s
}

func guarded() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", AuthMiddleware(secret), RequireRole(users.RoleAdmin), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetUint("user_id")})
	})
	r.GET("/public", OptionalAuth(secret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"role": c.GetString("role")})
	})
	return r
}

func get(r http.Handler, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := guarded()

	tests := []struct {
		name   string
		header string
		code   int
	}{
		{"admin", "Bearer " + token(t, users.RoleAdmin, time.Hour), http.StatusOK},
		{"other role", "Bearer " + token(t, "reader", time.Hour), http.StatusForbidden},
		{"expired", "Bearer " + token(t, users.RoleAdmin, -time.Hour), http.StatusUnauthorized},
		{"no bearer prefix", token(t, users.RoleAdmin, time.Hour), http.StatusUnauthorized},
		{"missing", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, "/admin", tt.header)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
		})
	}

	w := get(r, "/admin", "Bearer "+token(t, users.RoleAdmin, time.Hour))
	assert.JSONEq(t, `{"user_id":7}`, w.Body.String())
}

func TestOptionalAuth(t *testing.T) {
	r := guarded()

	w := get(r, "/public", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"role":""}`, w.Body.String())

	w = get(r, "/public", "Bearer garbage")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"role":""}`, w.Body.String())

	w = get(r, "/public", "Bearer "+token(t, users.RoleAdmin, time.Hour))
	assert.JSONEq(t, `{"role":"admin"}`, w.Body.String())
}

func TestSanitizeInput(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SanitizeAndCleanInputMiddleware())
	r.POST("/echo", func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.Data(http.StatusOK, "application/json", body)
	})

	in := `{"title":"<script>x()</script>Hello","content":"<p onclick=\"x()\">Hi <b>there</b></p>","meta":{"tags":["<i>oil</i>"]},"sort":3,"password":"a<b&c"}`
	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString(in))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "Hello", out["title"])
	assert.Equal(t, "<p>Hi <b>there</b></p>", out["content"])
	assert.Equal(t, []interface{}{"oil"}, out["meta"].(map[string]interface{})["tags"])
	assert.Equal(t, float64(3), out["sort"])
	assert.Equal(t, "a<b&c", out["password"])

	req = httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString(`{"title":`))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

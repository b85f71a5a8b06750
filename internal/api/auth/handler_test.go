package auth

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lorekeeper/database"
	"lorekeeper/internal/testutil"
)

func signinRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	created, err := database.SeedAdmin(db, "keeper", "correct horse")
	require.NoError(t, err)
	require.True(t, created)

	r := gin.New()
	r.POST("/api/signin", NewHandler(db, "test-secret", testutil.Logger(t)).Signin)
	return r
}

func postJSON(r http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	buf, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSignin(t *testing.T) {
	r := signinRouter(t)

	w := postJSON(r, "/api/signin", map[string]string{"name": "keeper", "password": "correct horse"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "admin", resp.Role)

	token, err := jwt.Parse(resp.Token, func(*jwt.Token) (interface{}, error) { return []byte("test-secret"), nil })
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "keeper", claims["name"])
}

func TestSigninRejects(t *testing.T) {
	r := signinRouter(t)

	tests := []struct {
		name string
		body map[string]string
		code int
	}{
		{"wrong password", map[string]string{"name": "keeper", "password": "nope"}, http.StatusUnauthorized},
		{"unknown user", map[string]string{"name": "ghost", "password": "correct horse"}, http.StatusUnauthorized},
		{"missing password", map[string]string{"name": "keeper"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(r, "/api/signin", tt.body)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

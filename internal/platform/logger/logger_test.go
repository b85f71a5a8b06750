package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeKVsRedactsSecrets(t *testing.T) {
	out := sanitizeKVs([]interface{}{"user", "ada", "password", "hunter2", "jwt_token", "abc", "dangling"})

	assert.Equal(t, []interface{}{
		"user", "ada",
		"password", "[REDACTED]",
		"jwt_token", "[REDACTED]",
		"dangling",
	}, out)
}

func TestNewDevelopmentLogger(t *testing.T) {
	l, err := New("development")
	assert.NoError(t, err)
	l.With("component", "test").Debug("hello", "n", 1)
}

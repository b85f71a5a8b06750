package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/microcosm-cc/bluemonday"
)

// richTextFields keep safe formatting markup; every other string is stripped to text.
var richTextFields = map[string]bool{
	"content":     true,
	"description": true,
}

// secretFields are compared against stored hashes and must reach handlers untouched.
var secretFields = map[string]bool{
	"password":         true,
	"current_password": true,
	"new_password":     true,
}

// SanitizeAndCleanInputMiddleware cleans every string in a JSON body, at any depth,
// using bluemonday.
func SanitizeAndCleanInputMiddleware() gin.HandlerFunc {
	strict := bluemonday.StrictPolicy()
	ugc := bluemonday.UGCPolicy()

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost &&
			c.Request.Method != http.MethodPut &&
			c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		buf, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid body"})
			return
		}
		if len(bytes.TrimSpace(buf)) == 0 {
			c.Request.Body = io.NopCloser(bytes.NewReader(buf))
			c.Next()
			return
		}

		var body interface{}
		if err := json.Unmarshal(buf, &body); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Malformed JSON"})
			return
		}
		body = sanitizeValue(body, "", strict, ugc)

		newBody, err := json.Marshal(body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Malformed JSON"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(newBody))
		c.Request.ContentLength = int64(len(newBody))

		c.Next()
	}
}

func sanitizeValue(v interface{}, key string, strict, ugc *bluemonday.Policy) interface{} {
	switch t := v.(type) {
	case string:
		if secretFields[key] {
			return t
		}
		if richTextFields[key] {
			return ugc.Sanitize(t)
		}
		return strict.Sanitize(t)
	case map[string]interface{}:
		for k, child := range t {
			t[k] = sanitizeValue(child, k, strict, ugc)
		}
		return t
	case []interface{}:
		for i, child := range t {
			t[i] = sanitizeValue(child, key, strict, ugc)
		}
		return t
	default:
		return v
	}
}

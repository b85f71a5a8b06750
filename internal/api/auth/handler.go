package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"lorekeeper/internal/domain/users"
	"lorekeeper/internal/platform/logger"
)

const TokenTTL = 24 * time.Hour

type Handler struct {
	db     *gorm.DB
	secret []byte
	log    *logger.Logger
}

func NewHandler(db *gorm.DB, secret string, baseLog *logger.Logger) *Handler {
	return &Handler{db: db, secret: []byte(secret), log: baseLog.With("handler", "Auth")}
}

// IssueToken signs the claims AuthMiddleware reads.
func IssueToken(secret []byte, user users.User, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"name":    user.Name,
		"role":    user.Role,
		"exp":     time.Now().Add(ttl).Unix(),
	})
	return token.SignedString(secret)
}

// Signin: POST /api/signin
func (h *Handler) Signin(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user users.User
	err := h.db.WithContext(c.Request.Context()).
		Where("name = ?", strings.TrimSpace(input.Name)).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		h.log.Error("signin lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not sign in"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		h.log.Info("signin rejected", "name", user.Name)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	tokenString, err := IssueToken(h.secret, user, TokenTTL)
	if err != nil {
		h.log.Error("sign token failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": tokenString, "name": user.Name, "role": user.Role})
}

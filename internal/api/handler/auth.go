package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"anonchat/backend/internal/config"
	"anonchat/backend/internal/models"
	"anonchat/backend/internal/storage"
)

// userIDKey is the gin context key the auth middleware fills in.
const userIDKey = "user_id"

type credentialsRequest struct {
	Email     string   `json:"email" binding:"required,email"`
	Password  string   `json:"password" binding:"required"`
	Interests []string `json:"interests"`
}

// issueToken генерує JWT з ID користувача
func (h *Handler) issueToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(config.TokenTTL).Unix(),
		"iss":     config.TokenIssuer,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.Cfg.JWTSecret))
}

// parseToken validates the token string and returns the embedded user id.
func (h *Handler) parseToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(h.Cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return "", errors.New("missing user_id claim")
	}
	return userID, nil
}

// RequireAuth is gin middleware resolving the bearer token into a user id.
func (h *Handler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Not authenticated"})
			return
		}
		userID, err := h.parseToken(authHeader[7:])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Invalid token or expired"})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// Register creates an account with a bcrypt-hashed password.
func (h *Handler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Valid email and password are required"})
		return
	}
	if len(req.Password) < config.MinPasswordLen {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Password must be at least 8 characters long"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Registration failed. Please try again later."})
		return
	}

	user := models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Interests:    pq.StringArray(req.Interests),
	}
	if err := h.Storage.CreateUser(&user); err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"status": "error", "message": "This email address is already registered."})
			return
		}
		log.Printf("ERROR: failed to create user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Registration failed. Please try again later."})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "user_id": user.ID})
}

// Login verifies credentials and returns a bearer token. Wrong email and
// wrong password are indistinguishable to the caller.
func (h *Handler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Valid email and password are required"})
		return
	}

	user, err := h.Storage.GetUserByEmail(req.Email)
	if err != nil {
		log.Printf("ERROR: login lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Login failed. Please try again later."})
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Invalid email or password."})
		return
	}

	token, err := h.issueToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to create token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "token": token, "user_id": user.ID})
}

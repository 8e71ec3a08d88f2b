package auth

import (
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tierfs-backend/internal/config"
	"tierfs-backend/internal/models"
)

// JWTManager issues and verifies the bearer tokens used by the admin API.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
}

// Claims carried inside each token.
type Claims struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func NewJWTManager(cfg *config.Config) *JWTManager {
	secret := cfg.Auth.JWTSecret
	if secret == "" {
		log.Println("[Auth] JWT_SECRET not set, using an insecure development secret")
		secret = "tierfs-dev-secret"
	}
	ttl := cfg.Auth.TokenTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &JWTManager{secret: []byte(secret), ttl: ttl}
}

// Generate creates a signed token for a user.
func (m *JWTManager) Generate(user *models.User) (string, error) {
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify parses and validates a token, returning its claims.
func (m *JWTManager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

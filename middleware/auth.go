package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"tennis_club_backend/models"
)

const (
	ContextUserID     = "userID"
	ContextAdminClubs = "adminClubs"
	ContextCoachClubs = "coachClubs"
)

// ClubRoleLookup reports which clubs a user administers and coaches at.
type ClubRoleLookup interface {
	AdminClubs(ctx context.Context, userID int) ([]int, error)
	CoachClubs(ctx context.Context, userID int) ([]int, error)
}

// AuthMiddleware creates a gin middleware for JWT authentication
func AuthMiddleware(lookup ClubRoleLookup, jwtSecret []byte, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must be in the format: Bearer {token}"})
			return
		}

		claims, err := ParseToken(parts[1], jwtSecret)
		if err != nil {
			logger.Debug("token validation failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		adminClubs, err := lookup.AdminClubs(c.Request.Context(), claims.UserID)
		if err != nil {
			logger.Error("error getting club admin roles", zap.Int("user_id", claims.UserID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user role"})
			return
		}

		coachClubs, err := lookup.CoachClubs(c.Request.Context(), claims.UserID)
		if err != nil {
			logger.Error("error getting club coach roles", zap.Int("user_id", claims.UserID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user role"})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextAdminClubs, adminClubs)
		c.Set(ContextCoachClubs, coachClubs)
		c.Next()
	}
}

// ParseToken validates an HMAC-signed access token and returns its claims.
func ParseToken(tokenString string, jwtSecret []byte) (*models.Claims, error) {
	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID <= 0 {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// GenerateToken signs an access token for userID. Tokens are normally issued
// by the identity provider; this is used by tooling and tests.
func GenerateToken(userID int, jwtSecret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	return token.SignedString(jwtSecret)
}

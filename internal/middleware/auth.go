package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/garagedesk/garagedesk/internal/model"
	userRepo "github.com/garagedesk/garagedesk/internal/modules/user/repository"
	"github.com/garagedesk/garagedesk/pkg/apperror"
)

const actorKey = "actor"

// RevocationKey is the redis key holding a revoked token id until it
// expires on its own.
func RevocationKey(jti string) string {
	return "revoked_token:" + jti
}

type AuthMiddleware struct {
	userRepo userRepo.UserRepository
	rdb      *redis.Client
	secret   string
}

func NewAuthMiddleware(userRepo userRepo.UserRepository, rdb *redis.Client, secret string) *AuthMiddleware {
	return &AuthMiddleware{
		userRepo: userRepo,
		rdb:      rdb,
		secret:   secret,
	}
}

// RequireAuth validates the bearer token, rejects revoked tokens and loads
// the acting user into the request context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")

		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			c.Abort()
			return
		}

		token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(m.secret), nil
		})

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(*jwt.RegisteredClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
			c.Abort()
			return
		}

		if m.rdb != nil && claims.ID != "" {
			if n, err := m.rdb.Exists(c.Request.Context(), RevocationKey(claims.ID)).Result(); err == nil && n > 0 {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "token has been revoked"})
				c.Abort()
				return
			}
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token subject"})
			c.Abort()
			return
		}

		user, err := m.userRepo.FindByID(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			c.Abort()
			return
		}

		c.Set(actorKey, *user)
		c.Set("token_jti", claims.ID)
		c.Set("token_exp", claims.ExpiresAt)
		c.Next()
	}
}

// Actor returns the authenticated user loaded by RequireAuth.
func Actor(c *gin.Context) (model.User, error) {
	v, exists := c.Get(actorKey)
	if !exists {
		return model.User{}, apperror.ErrUnauthorized
	}
	actor, ok := v.(model.User)
	if !ok {
		return model.User{}, apperror.ErrUnauthorized
	}
	return actor, nil
}

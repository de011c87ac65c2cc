package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const AuthCookieName = "subtrack_jwt"

// AuthRequired resolves the caller's verified email from a JWT (bearer
// header first, cookie fallback) and stores it in the request context.
// Every downstream handler treats a missing identity as an
// authentication failure, never as an empty account.
func AuthRequired(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, err := ResolveIdentity(c, jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Please log in"})
			return
		}

		c.Set("userEmail", email)
		c.Next()
	}
}

// CurrentUserEmail returns the identity set by AuthRequired, or "" when
// the request never passed the middleware.
func CurrentUserEmail(c *gin.Context) string {
	return c.GetString("userEmail")
}

// ResolveIdentity extracts and verifies the email claim from the
// request's token without aborting. Used directly by endpoints that
// treat an anonymous caller as a valid state.
func ResolveIdentity(c *gin.Context, jwtSecret []byte) (string, error) {
	tokenString := ""

	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		tokenString = strings.TrimPrefix(authHeader, "Bearer ")
	}

	if tokenString == "" {
		cookie, err := c.Cookie(AuthCookieName)
		if err == nil {
			tokenString = cookie
		}
	}

	if tokenString == "" {
		return "", fmt.Errorf("no token")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	if exp, ok := claims["exp"].(float64); ok {
		if time.Now().Unix() > int64(exp) {
			return "", fmt.Errorf("token expired")
		}
	}

	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", fmt.Errorf("token carries no email")
	}

	return email, nil
}

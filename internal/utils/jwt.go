package utils

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// GetRoleFromToken extracts the role claim from the JWT token in the request
// This assumes the JWT has already been validated by middleware
func GetRoleFromToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) <= len("Bearer ") {
		return "", errors.New("missing bearer token")
	}
	tokenString := authHeader[len("Bearer "):]

	// Parse without verification since middleware already validated it
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}

	role, ok := claims["role"].(string)
	if !ok {
		return "", errors.New("missing role claim")
	}

	return role, nil
}

package middleware

import (
	"strings"

	"gocarpool/internal/utils"

	"github.com/gin-gonic/gin"
)

// AuthRequired validates the bearer token and stores the caller's identity
// on the request context under user_id, role and is_driver.
func AuthRequired(secretKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(tokenString, secretKey)
		if err != nil {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Set("is_driver", claims.IsDriver)

		c.Next()
	}
}

// DriverRequired gates endpoints that only account holders with driver
// capability may call. Runs after AuthRequired.
func DriverRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		isDriver, exists := c.Get("is_driver")
		if !exists || isDriver != true {
			utils.ForbiddenResponse(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

package middleware

import (
	"net/http"
	"strings"

	"tiketi/config"
	"tiketi/internal/auth"
	"tiketi/internal/domain"

	"github.com/gin-gonic/gin"
)

// AuthRequired validates the JWT and sets user id, email, role and partner id
// in the request context.
func AuthRequired(cfg *config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		claims, err := auth.ParseToken(cfg, parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("role", claims.Role)
		if claims.PartnerID != nil {
			c.Set("partner_id", *claims.PartnerID)
		}
		c.Next()
	}
}

// AdminRequired checks that the authenticated user has the ADMIN role.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists || role.(string) != domain.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// GetActor returns the authenticated user's email for audit trails.
func GetActor(c *gin.Context) string {
	v, _ := c.Get("email")
	if v == nil {
		return ""
	}
	return v.(string)
}

// GetPartnerID returns the partner bound to the authenticated account, or 0.
func GetPartnerID(c *gin.Context) uint {
	v, _ := c.Get("partner_id")
	if v == nil {
		return 0
	}
	return v.(uint)
}

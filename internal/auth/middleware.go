package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"roninads/internal/apperrors"
	"roninads/internal/models"
	"roninads/internal/services"
)

const memberContextKey = "auth_member"

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// RequireSession resolves the bearer token to a member and aborts with 401
// when it cannot.
func RequireSession(sessions *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		member, err := sessions.Resolve(bearerToken(c))
		if err != nil {
			c.JSON(apperrors.HTTPStatus(err), gin.H{
				"success": false,
				"error":   apperrors.UserMessage(err),
			})
			c.Abort()
			return
		}
		c.Set(memberContextKey, member)
		c.Next()
	}
}

// RequireAdmin aborts with 403 unless the resolved member is an admin.
// Must run after RequireSession.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		member := GetMember(c)
		if member == nil || !member.IsAdmin {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "Admin access required",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetMember returns the member resolved by RequireSession, or nil.
func GetMember(c *gin.Context) *models.Member {
	value, ok := c.Get(memberContextKey)
	if !ok {
		return nil
	}
	member, _ := value.(*models.Member)
	return member
}

// Token returns the raw bearer token of the request, for logout.
func Token(c *gin.Context) string {
	return bearerToken(c)
}

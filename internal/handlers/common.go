package handlers

import (
	"strconv"

	"roninads/internal/apperrors"

	"github.com/gin-gonic/gin"
)

// respondError maps a service error to its HTTP status and safe message.
func respondError(c *gin.Context, err error) {
	c.JSON(apperrors.HTTPStatus(err), gin.H{
		"success": false,
		"error":   apperrors.UserMessage(err),
	})
}

// pagination reads limit/offset query params with sane defaults.
func pagination(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	return limit, offset
}

// paramID parses a numeric :id-style path parameter.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(400, gin.H{"success": false, "error": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}

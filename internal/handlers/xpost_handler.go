package handlers

import (
	"net/http"

	"roninads/internal/auth"
	"roninads/internal/services"

	"github.com/gin-gonic/gin"
)

type XPostHandler struct {
	xposts *services.XPostService
}

func NewXPostHandler(xposts *services.XPostService) *XPostHandler {
	return &XPostHandler{xposts: xposts}
}

// GetXPosts returns the open social tasks
func (h *XPostHandler) GetXPosts(c *gin.Context) {
	posts, err := h.xposts.ListActive()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": posts})
}

// GetMyActions returns the member's verified actions
func (h *XPostHandler) GetMyActions(c *gin.Context) {
	member := auth.GetMember(c)

	actions, err := h.xposts.MyActions(member.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": actions})
}

// VerifyAction checks the action against X.com and awards points
func (h *XPostHandler) VerifyAction(c *gin.Context) {
	xPostID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req struct {
		ActionType string `json:"action_type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	action, err := h.xposts.VerifyAction(c.Request.Context(), auth.GetMember(c), xPostID, req.ActionType)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": action})
}

package handlers

import (
	"net/http"

	"roninads/internal/auth"
	"roninads/internal/services"

	"github.com/gin-gonic/gin"
)

type MemberHandler struct {
	ledger *services.LedgerService
	passes *services.PassService
	posts  *services.PostService
	weekly *services.WeeklyService
}

func NewMemberHandler(ledger *services.LedgerService, passes *services.PassService, posts *services.PostService, weekly *services.WeeklyService) *MemberHandler {
	return &MemberHandler{ledger: ledger, passes: passes, posts: posts, weekly: weekly}
}

// Profile returns the member with their active passes and view bonus
func (h *MemberHandler) Profile(c *gin.Context) {
	member := auth.GetMember(c)

	clickPass, err := h.passes.ActiveClickPass(member.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	publisherPass, err := h.passes.ActivePublisherPass(member.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	bonus, err := h.passes.ViewBonus(member.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"member":          member,
			"click_pass":      clickPass,
			"publisher_pass":  publisherPass,
			"points_per_view": bonus + 1,
		},
	})
}

// PointsHistory returns the member's ledger entries, newest first
func (h *MemberHandler) PointsHistory(c *gin.Context) {
	member := auth.GetMember(c)
	limit, offset := pagination(c)

	entries, total, err := h.ledger.History(member.ID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    entries,
		"total":   total,
	})
}

// ViewHistory returns the member's awarded post views
func (h *MemberHandler) ViewHistory(c *gin.Context) {
	member := auth.GetMember(c)
	limit, offset := pagination(c)

	views, total, err := h.posts.ViewHistory(member.ID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    views,
		"total":   total,
	})
}

// Leaderboard returns the current point standings
func (h *MemberHandler) Leaderboard(c *gin.Context) {
	limit, _ := pagination(c)
	members, err := h.weekly.Standings(limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    members,
	})
}

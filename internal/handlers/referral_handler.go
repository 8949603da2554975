package handlers

import (
	"net/http"

	"roninads/internal/auth"
	"roninads/internal/services"

	"github.com/gin-gonic/gin"
)

type ReferralHandler struct {
	referrals *services.ReferralService
}

func NewReferralHandler(referrals *services.ReferralService) *ReferralHandler {
	return &ReferralHandler{referrals: referrals}
}

// GetStats returns the member's referral code and bonus totals
func (h *ReferralHandler) GetStats(c *gin.Context) {
	stats, err := h.referrals.Stats(auth.GetMember(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}

// EnsureCode returns the member's referral code, generating one if needed
func (h *ReferralHandler) EnsureCode(c *gin.Context) {
	member := auth.GetMember(c)
	if err := h.referrals.EnsureCode(member); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"referral_code": member.ReferralCode}})
}

// GetReferrals returns the members this member referred
func (h *ReferralHandler) GetReferrals(c *gin.Context) {
	member := auth.GetMember(c)
	limit, offset := pagination(c)

	members, total, err := h.referrals.Referrals(member.ID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    members,
		"total":   total,
	})
}

package handlers

import (
	"net/http"

	"roninads/internal/auth"
	"roninads/internal/services"

	"github.com/gin-gonic/gin"
)

type RewardHandler struct {
	rewards *services.RewardService
}

func NewRewardHandler(rewards *services.RewardService) *RewardHandler {
	return &RewardHandler{rewards: rewards}
}

// GetRewards returns the in-stock reward catalog
func (h *RewardHandler) GetRewards(c *gin.Context) {
	rewards, err := h.rewards.ListActive(c.Query("type"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": rewards})
}

// GetReward returns one reward
func (h *RewardHandler) GetReward(c *gin.Context) {
	rewardID, ok := paramID(c, "id")
	if !ok {
		return
	}

	reward, err := h.rewards.Get(rewardID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": reward})
}

// ClaimReward exchanges points for a reward
func (h *RewardHandler) ClaimReward(c *gin.Context) {
	rewardID, ok := paramID(c, "id")
	if !ok {
		return
	}

	claim, err := h.rewards.Claim(auth.GetMember(c), rewardID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": claim})
}

// GetMyClaims returns the member's claims, newest first
func (h *RewardHandler) GetMyClaims(c *gin.Context) {
	member := auth.GetMember(c)

	claims, err := h.rewards.MyClaims(member.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": claims})
}

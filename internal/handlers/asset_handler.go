package handlers

import (
	"net/http"

	"roninads/internal/auth"
	"roninads/internal/services"

	"github.com/gin-gonic/gin"
)

type AssetHandler struct {
	assets *services.AssetService
}

func NewAssetHandler(assets *services.AssetService) *AssetHandler {
	return &AssetHandler{assets: assets}
}

// GetAssets returns the active featured assets
func (h *AssetHandler) GetAssets(c *gin.Context) {
	assets, err := h.assets.ListActive()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": assets})
}

// GetMyAssets returns the member's verified holdings and their bonuses
func (h *AssetHandler) GetMyAssets(c *gin.Context) {
	member := auth.GetMember(c)

	assets, totalBonus, err := h.assets.MemberAssets(member.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"assets":      assets,
			"total_bonus": totalBonus,
		},
	})
}

// VerifyHoldings records the member's holding count for an asset
func (h *AssetHandler) VerifyHoldings(c *gin.Context) {
	assetID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req struct {
		HoldingCount int `json:"holding_count"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	member := auth.GetMember(c)
	verification, err := h.assets.VerifyHoldings(member.ID, assetID, req.HoldingCount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": verification})
}

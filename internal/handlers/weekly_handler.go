package handlers

import (
	"net/http"

	"roninads/internal/services"

	"github.com/gin-gonic/gin"
)

type WeeklyHandler struct {
	weekly *services.WeeklyService
}

func NewWeeklyHandler(weekly *services.WeeklyService) *WeeklyHandler {
	return &WeeklyHandler{weekly: weekly}
}

// GetActivePeriod returns the current prize period
func (h *WeeklyHandler) GetActivePeriod(c *gin.Context) {
	period, err := h.weekly.ActivePeriod()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": period})
}

// GetWinners returns the draw results for a period
func (h *WeeklyHandler) GetWinners(c *gin.Context) {
	periodID, ok := paramID(c, "id")
	if !ok {
		return
	}

	winners, err := h.weekly.Winners(periodID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": winners})
}

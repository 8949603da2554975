package handlers

import (
	"net/http"

	"roninads/internal/auth"
	"roninads/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login authenticates a wallet and opens a session
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		WalletAddress string `json:"wallet_address" binding:"required"`
		WalletType    string `json:"wallet_type" binding:"required"`
		ReferralCode  string `json:"referral_code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	result, err := h.authService.Login(req.WalletAddress, req.WalletType, req.ReferralCode)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"member":     result.Member,
			"token":      result.Token,
			"new_member": result.IsNew,
		},
	})
}

// Logout destroys the current session
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(auth.Token(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Session returns the member behind the current session
func (h *AuthHandler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    auth.GetMember(c),
	})
}

// SetXHandle links an X.com handle to the current member
func (h *AuthHandler) SetXHandle(c *gin.Context) {
	var req struct {
		Handle string `json:"handle" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	member := auth.GetMember(c)
	if err := h.authService.SetXHandle(member, req.Handle); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": member})
}

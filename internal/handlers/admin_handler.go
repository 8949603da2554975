package handlers

import (
	"net/http"
	"time"

	"roninads/internal/auth"
	"roninads/internal/models"
	"roninads/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// AdminHandler groups the moderation and platform-management endpoints.
// Every route behind it requires an admin session.
type AdminHandler struct {
	admin   *services.AdminService
	posts   *services.PostService
	rewards *services.RewardService
	xposts  *services.XPostService
	assets  *services.AssetService
	passes  *services.PassService
	weekly  *services.WeeklyService
	ledger  *services.LedgerService
}

func NewAdminHandler(
	admin *services.AdminService,
	posts *services.PostService,
	rewards *services.RewardService,
	xposts *services.XPostService,
	assets *services.AssetService,
	passes *services.PassService,
	weekly *services.WeeklyService,
	ledger *services.LedgerService,
) *AdminHandler {
	return &AdminHandler{
		admin:   admin,
		posts:   posts,
		rewards: rewards,
		xposts:  xposts,
		assets:  assets,
		passes:  passes,
		weekly:  weekly,
		ledger:  ledger,
	}
}

// Dashboard returns platform-wide counters
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.admin.Dashboard()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}

// GetMembers returns a paged, searchable member list
func (h *AdminHandler) GetMembers(c *gin.Context) {
	limit, offset := pagination(c)
	search := c.Query("search")

	members, total, err := h.admin.Members(search, limit, offset)
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

// SetMemberActive activates or deactivates a member
func (h *AdminHandler) SetMemberActive(c *gin.Context) {
	memberID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if err := h.admin.SetMemberActive(memberID, *req.IsActive); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SetMemberAdmin grants or revokes the admin role
func (h *AdminHandler) SetMemberAdmin(c *gin.Context) {
	memberID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req struct {
		IsAdmin *bool `json:"is_admin" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if err := h.admin.SetMemberAdmin(memberID, *req.IsAdmin); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AdjustPoints applies a manual point correction
func (h *AdminHandler) AdjustPoints(c *gin.Context) {
	memberID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Delta  int64  `json:"delta" binding:"required"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if err := h.admin.AdjustPoints(auth.GetMember(c), memberID, req.Delta, req.Reason); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ReconcilePoints rewrites a member's cached balance from the ledger
func (h *AdminHandler) ReconcilePoints(c *gin.Context) {
	memberID, ok := paramID(c, "id")
	if !ok {
		return
	}

	balance, err := h.ledger.Reconcile(memberID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"points": balance}})
}

// GetPendingPosts returns posts awaiting approval
func (h *AdminHandler) GetPendingPosts(c *gin.Context) {
	posts, err := h.posts.ListPending()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": posts})
}

// ApprovePost activates a pending post
func (h *AdminHandler) ApprovePost(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}

	post, err := h.posts.Approve(auth.GetMember(c), postID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": post})
}

// RejectPost declines a pending post
func (h *AdminHandler) RejectPost(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}

	post, err := h.posts.Reject(auth.GetMember(c), postID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": post})
}

// CreateReward adds a reward to the catalog
func (h *AdminHandler) CreateReward(c *gin.Context) {
	var req struct {
		RewardType  string `json:"reward_type" binding:"required"`
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		PointsCost  int64  `json:"points_cost" binding:"required"`
		TokenAmount string `json:"token_amount"`
		ImageURL    string `json:"image_url"`
		Quantity    int    `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	tokenAmount := decimal.Zero
	if req.TokenAmount != "" {
		parsed, err := decimal.NewFromString(req.TokenAmount)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid token amount"})
			return
		}
		tokenAmount = parsed
	}

	reward, err := h.rewards.Create(req.RewardType, req.Name, req.Description, req.ImageURL,
		req.PointsCost, tokenAmount, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": reward})
}

// UpdateReward edits a catalog item
func (h *AdminHandler) UpdateReward(c *gin.Context) {
	rewardID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		PointsCost  *int64  `json:"points_cost"`
		TokenAmount *string `json:"token_amount"`
		ImageURL    *string `json:"image_url"`
		Quantity    *int    `json:"quantity"`
		IsActive    *bool   `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	upd := services.RewardUpdate{
		Name:              req.Name,
		Description:       req.Description,
		PointsCost:        req.PointsCost,
		ImageURL:          req.ImageURL,
		QuantityAvailable: req.Quantity,
		IsActive:          req.IsActive,
	}
	if req.TokenAmount != nil {
		parsed, err := decimal.NewFromString(*req.TokenAmount)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid token amount"})
			return
		}
		upd.TokenAmount = &parsed
	}

	reward, err := h.rewards.Update(rewardID, upd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": reward})
}

// GetClaims returns claims across members, optionally filtered by status
func (h *AdminHandler) GetClaims(c *gin.Context) {
	limit, offset := pagination(c)
	status := c.Query("status")

	claims, total, err := h.rewards.AllClaims(status, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    claims,
		"total":   total,
	})
}

// ProcessClaim moves a pending claim to sent or cancelled
func (h *AdminHandler) ProcessClaim(c *gin.Context) {
	claimID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status          string `json:"status" binding:"required"`
		TransactionHash string `json:"transaction_hash"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	claim, err := h.rewards.ProcessClaim(auth.GetMember(c), claimID,
		models.ClaimStatus(req.Status), req.TransactionHash)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": claim})
}

// CreateXPost adds a social task target
func (h *AdminHandler) CreateXPost(c *gin.Context) {
	var req struct {
		PostURL  string `json:"post_url" binding:"required"`
		ImageURL string `json:"image_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	post, err := h.xposts.Create(req.PostURL, req.ImageURL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": post})
}

// SetXPostActive toggles a social task
func (h *AdminHandler) SetXPostActive(c *gin.Context) {
	xPostID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if err := h.xposts.SetActive(xPostID, *req.IsActive); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CreateAsset adds a featured asset rule
func (h *AdminHandler) CreateAsset(c *gin.Context) {
	var req struct {
		Name            string `json:"name" binding:"required"`
		ContractAddress string `json:"contract_address" binding:"required"`
		PointsPerItem   int64  `json:"points_per_item" binding:"required"`
		MaxCounted      int    `json:"max_counted" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	asset, err := h.assets.CreateAsset(req.Name, req.ContractAddress, req.PointsPerItem, req.MaxCounted)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": asset})
}

// UpdateAsset edits a featured asset rule
func (h *AdminHandler) UpdateAsset(c *gin.Context) {
	assetID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Name          *string `json:"name"`
		PointsPerItem *int64  `json:"points_per_item"`
		MaxCounted    *int    `json:"max_counted"`
		IsActive      *bool   `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	asset, err := h.assets.UpdateAsset(assetID, services.AssetUpdate{
		Name:          req.Name,
		PointsPerItem: req.PointsPerItem,
		MaxCounted:    req.MaxCounted,
		IsActive:      req.IsActive,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": asset})
}

// GrantClickPass issues a Click Pass to a member
func (h *AdminHandler) GrantClickPass(c *gin.Context) {
	memberID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req struct {
		PassType  string     `json:"pass_type" binding:"required"`
		ExpiresAt *time.Time `json:"expires_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	pass, err := h.passes.GrantClickPass(memberID, req.PassType, req.ExpiresAt)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": pass})
}

// GrantPublisherPass issues a Publisher Pass to a member
func (h *AdminHandler) GrantPublisherPass(c *gin.Context) {
	memberID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req struct {
		PassType  string     `json:"pass_type" binding:"required"`
		ExpiresAt *time.Time `json:"expires_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	pass, err := h.passes.GrantPublisherPass(memberID, req.PassType, req.ExpiresAt)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": pass})
}

// CreateWeeklyPeriod opens a new prize period
func (h *AdminHandler) CreateWeeklyPeriod(c *gin.Context) {
	var req struct {
		ItemName string     `json:"item_name" binding:"required"`
		Quantity int        `json:"quantity" binding:"required"`
		EndsAt   *time.Time `json:"ends_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	period, err := h.weekly.CreatePeriod(req.ItemName, req.Quantity, req.EndsAt)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": period})
}

// GenerateWeeklyWinners draws the winners for a period
func (h *AdminHandler) GenerateWeeklyWinners(c *gin.Context) {
	periodID, ok := paramID(c, "id")
	if !ok {
		return
	}

	winners, err := h.weekly.GenerateWinners(periodID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": winners})
}

// GetWeeklyPeriods returns past and present prize periods
func (h *AdminHandler) GetWeeklyPeriods(c *gin.Context) {
	limit, offset := pagination(c)

	periods, total, err := h.weekly.Periods(limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": periods, "total": total})
}

// RotateWeeklyPeriod draws the outgoing period's winners and opens the next one
func (h *AdminHandler) RotateWeeklyPeriod(c *gin.Context) {
	var req struct {
		ItemName string `json:"item_name" binding:"required"`
		Quantity int    `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	period, err := h.weekly.RotatePeriod(req.ItemName, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": period})
}

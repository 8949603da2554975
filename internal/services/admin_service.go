package services

import (
	"fmt"

	"gorm.io/gorm"

	"roninads/internal/apperrors"
	"roninads/internal/models"
)

// AdminService provides moderation and platform overview operations.
type AdminService struct {
	db     *gorm.DB
	ledger *LedgerService
}

// NewAdminService creates a new AdminService
func NewAdminService(db *gorm.DB, ledger *LedgerService) *AdminService {
	return &AdminService{db: db, ledger: ledger}
}

// DashboardStats aggregates platform-wide counters.
type DashboardStats struct {
	TotalMembers        int64 `json:"total_members"`
	ActiveMembers       int64 `json:"active_members"`
	TotalPosts          int64 `json:"total_posts"`
	PendingPosts        int64 `json:"pending_posts"`
	ActivePosts         int64 `json:"active_posts"`
	TotalViews          int64 `json:"total_views"`
	PendingClaims       int64 `json:"pending_claims"`
	PointsInCirculation int64 `json:"points_in_circulation"`
}

// Dashboard returns the platform-wide counters for the admin overview.
func (s *AdminService) Dashboard() (*DashboardStats, error) {
	stats := &DashboardStats{}

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.TotalMembers, s.db.Model(&models.Member{})},
		{&stats.ActiveMembers, s.db.Model(&models.Member{}).Where("is_active = ?", true)},
		{&stats.TotalPosts, s.db.Model(&models.Post{})},
		{&stats.PendingPosts, s.db.Model(&models.Post{}).Where("status = ?", models.PostStatusPending)},
		{&stats.ActivePosts, s.db.Model(&models.Post{}).Where("status = ?", models.PostStatusActive)},
		{&stats.TotalViews, s.db.Model(&models.PostView{})},
		{&stats.PendingClaims, s.db.Model(&models.RewardClaim{}).Where("status = ?", models.ClaimStatusPending)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.Internal, err, "failed to load dashboard counters")
		}
	}

	var circulation struct{ Total int64 }
	err := s.db.Model(&models.Member{}).
		Select("COALESCE(SUM(points), 0) AS total").
		Scan(&circulation).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, err, "failed to sum balances")
	}
	stats.PointsInCirculation = circulation.Total

	return stats, nil
}

// MemberSummary is a member row enriched with activity counts for the admin
// member list.
type MemberSummary struct {
	models.Member
	ViewCount     int64 `json:"view_count"`
	ClaimCount    int64 `json:"claim_count"`
	ReferralCount int64 `json:"referral_count"`
}

// Members returns a paged member list, optionally filtered by a wallet
// address or X handle substring.
func (s *AdminService) Members(search string, limit, offset int) ([]MemberSummary, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := s.db.Model(&models.Member{})
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("wallet_address LIKE ? OR x_handle LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.Internal, err, "failed to count members")
	}

	var members []models.Member
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&members).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.Internal, err, "failed to load members")
	}

	out := make([]MemberSummary, 0, len(members))
	for _, m := range members {
		summary := MemberSummary{Member: m}
		if err := s.db.Model(&models.PostView{}).Where("member_id = ?", m.ID).
			Count(&summary.ViewCount).Error; err != nil {
			return nil, 0, apperrors.Wrap(apperrors.Internal, err, "failed to count views")
		}
		if err := s.db.Model(&models.RewardClaim{}).Where("member_id = ?", m.ID).
			Count(&summary.ClaimCount).Error; err != nil {
			return nil, 0, apperrors.Wrap(apperrors.Internal, err, "failed to count claims")
		}
		if err := s.db.Model(&models.Member{}).Where("referred_by = ?", m.ID).
			Count(&summary.ReferralCount).Error; err != nil {
			return nil, 0, apperrors.Wrap(apperrors.Internal, err, "failed to count referrals")
		}
		out = append(out, summary)
	}
	return out, total, nil
}

// SetMemberActive activates or deactivates a member account. Deactivation
// blocks future logins; existing sessions die at next resolution.
func (s *AdminService) SetMemberActive(memberID uint, active bool) error {
	res := s.db.Model(&models.Member{}).Where("id = ?", memberID).Update("is_active", active)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.Internal, res.Error, "failed to update member")
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.NotFound, "Member not found")
	}
	if !active {
		if err := s.db.Where("member_id = ?", memberID).Delete(&models.Session{}).Error; err != nil {
			return apperrors.Wrap(apperrors.Internal, err, "failed to clear sessions")
		}
	}
	return nil
}

// SetMemberAdmin grants or revokes the admin role.
func (s *AdminService) SetMemberAdmin(memberID uint, admin bool) error {
	res := s.db.Model(&models.Member{}).Where("id = ?", memberID).Update("is_admin", admin)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.Internal, res.Error, "failed to update member")
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.NotFound, "Member not found")
	}
	return nil
}

// AdjustPoints applies a manual point correction through the ledger.
func (s *AdminService) AdjustPoints(admin *models.Member, memberID uint, delta int64, reason string) error {
	if delta == 0 {
		return apperrors.New(apperrors.Validation, "Adjustment must be non-zero")
	}
	if reason == "" {
		reason = fmt.Sprintf("Manual adjustment by admin %d", admin.ID)
	}
	return s.ledger.ApplyPoints(memberID, delta, reason, &admin.ID, models.RefTypeAdmin)
}

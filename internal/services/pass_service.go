package services

import (
	"time"

	"gorm.io/gorm"

	"roninads/internal/apperrors"
	"roninads/internal/models"
)

// PassService resolves per-member point multipliers from active Click
// Passes and verified bonus-asset holdings, and handles admin pass grants.
type PassService struct {
	db *gorm.DB
}

// NewPassService creates a new PassService
func NewPassService(db *gorm.DB) *PassService {
	return &PassService{db: db}
}

// ActiveClickPass returns the newest active Click Pass for a member, or nil.
func (s *PassService) ActiveClickPass(memberID uint) (*models.ClickPass, error) {
	var pass models.ClickPass
	err := s.db.Where("member_id = ? AND is_active = ? AND (expires_at IS NULL OR expires_at > ?)",
		memberID, true, time.Now()).
		Order("created_at DESC").First(&pass).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, err, "failed to load click pass")
	}
	return &pass, nil
}

// ActivePublisherPass returns the newest active Publisher Pass, or nil.
func (s *PassService) ActivePublisherPass(memberID uint) (*models.PublisherPass, error) {
	var pass models.PublisherPass
	err := s.db.Where("member_id = ? AND is_active = ? AND (expires_at IS NULL OR expires_at > ?)",
		memberID, true, time.Now()).
		Order("created_at DESC").First(&pass).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, err, "failed to load publisher pass")
	}
	return &pass, nil
}

// GrantClickPass issues a Click Pass of the given tier to a member.
func (s *PassService) GrantClickPass(memberID uint, tier string, expiresAt *time.Time) (*models.ClickPass, error) {
	bonus := models.ClickPassBonus(tier)
	if bonus < 0 {
		return nil, apperrors.New(apperrors.Validation, "Invalid click pass type")
	}

	pass := models.ClickPass{
		MemberID:         memberID,
		PassType:         tier,
		AdditionalPoints: bonus,
		ExpiresAt:        expiresAt,
		IsActive:         true,
	}
	if err := s.db.Create(&pass).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, err, "failed to create click pass")
	}
	return &pass, nil
}

// GrantPublisherPass issues a Publisher Pass of the given tier to a member.
func (s *PassService) GrantPublisherPass(memberID uint, tier string, expiresAt *time.Time) (*models.PublisherPass, error) {
	days := models.PublisherPassDuration(tier)
	if days < 0 {
		return nil, apperrors.New(apperrors.Validation, "Invalid publisher pass type")
	}

	pass := models.PublisherPass{
		MemberID:     memberID,
		PassType:     tier,
		DurationDays: days,
		ExpiresAt:    expiresAt,
		IsActive:     true,
	}
	if err := s.db.Create(&pass).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, err, "failed to create publisher pass")
	}
	return &pass, nil
}

// ViewBonus computes the extra points a member earns on top of the base
// view award: the active Click Pass bonus plus, for each active featured
// asset, min(held, max counted) x points per item.
func (s *PassService) ViewBonus(memberID uint) (int64, error) {
	var bonus int64

	pass, err := s.ActiveClickPass(memberID)
	if err != nil {
		return 0, err
	}
	if pass != nil {
		bonus += pass.AdditionalPoints
	}

	assetBonus, err := s.AssetBonus(memberID)
	if err != nil {
		return 0, err
	}
	return bonus + assetBonus, nil
}

// AssetBonus sums the verified-holding bonus across active featured assets.
func (s *PassService) AssetBonus(memberID uint) (int64, error) {
	type holding struct {
		HoldingCount  int
		PointsPerItem int64
		MaxCounted    int
	}

	var holdings []holding
	err := s.db.Model(&models.MemberAssetVerification{}).
		Select("member_asset_verifications.holding_count, featured_assets.points_per_item, featured_assets.max_counted").
		Joins("JOIN featured_assets ON featured_assets.id = member_asset_verifications.asset_id").
		Where("member_asset_verifications.member_id = ? AND featured_assets.is_active = ?", memberID, true).
		Scan(&holdings).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.Internal, err, "failed to load asset holdings")
	}

	var bonus int64
	for _, h := range holdings {
		counted := h.HoldingCount
		if counted > h.MaxCounted {
			counted = h.MaxCounted
		}
		bonus += int64(counted) * h.PointsPerItem
	}
	return bonus, nil
}

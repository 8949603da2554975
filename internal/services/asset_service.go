package services

import (
	"regexp"
	"time"

	"gorm.io/gorm"

	"roninads/internal/apperrors"
	"roninads/internal/models"
)

var contractAddressRe = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// AssetService manages featured bonus assets and per-member holding
// verifications. Re-verification is gated by a cooldown on the last
// verified timestamp.
type AssetService struct {
	db       *gorm.DB
	cooldown time.Duration
}

// NewAssetService creates a new AssetService
func NewAssetService(db *gorm.DB, cooldown time.Duration) *AssetService {
	return &AssetService{db: db, cooldown: cooldown}
}

// ListActive returns all active featured assets, by name.
func (s *AssetService) ListActive() ([]models.FeaturedAsset, error) {
	var assets []models.FeaturedAsset
	if err := s.db.Where("is_active = ?", true).Order("name ASC").Find(&assets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, err, "failed to load featured assets")
	}
	return assets, nil
}

// MemberAsset is a member's verified holding with its computed view bonus.
type MemberAsset struct {
	models.MemberAssetVerification
	AssetName     string `json:"asset_name"`
	PointsPerItem int64  `json:"points_per_item"`
	MaxCounted    int    `json:"max_counted"`
	CountedItems  int    `json:"counted_items"`
	BonusPoints   int64  `json:"bonus_points"`
}

// MemberAssets returns a member's verifications for active assets with the
// counted bonus per asset and the total.
func (s *AssetService) MemberAssets(memberID uint) ([]MemberAsset, int64, error) {
	var verifications []models.MemberAssetVerification
	err := s.db.Preload("Asset").
		Joins("JOIN featured_assets ON featured_assets.id = member_asset_verifications.asset_id").
		Where("member_asset_verifications.member_id = ? AND featured_assets.is_active = ?", memberID, true).
		Find(&verifications).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.Internal, err, "failed to load member assets")
	}

	out := make([]MemberAsset, 0, len(verifications))
	var total int64
	for _, v := range verifications {
		counted := v.HoldingCount
		if v.Asset != nil && counted > v.Asset.MaxCounted {
			counted = v.Asset.MaxCounted
		}
		ma := MemberAsset{MemberAssetVerification: v, CountedItems: counted}
		if v.Asset != nil {
			ma.AssetName = v.Asset.Name
			ma.PointsPerItem = v.Asset.PointsPerItem
			ma.MaxCounted = v.Asset.MaxCounted
			ma.BonusPoints = int64(counted) * v.Asset.PointsPerItem
		}
		total += ma.BonusPoints
		out = append(out, ma)
	}
	return out, total, nil
}

// VerifyHoldings records a verified holding count for (member, asset).
// A fresh verification within the cooldown window is rejected.
func (s *AssetService) VerifyHoldings(memberID, assetID uint, count int) (*models.MemberAssetVerification, error) {
	if count < 0 {
		return nil, apperrors.New(apperrors.Validation, "Invalid holding count")
	}

	var asset models.FeaturedAsset
	if err := s.db.Where("id = ? AND is_active = ?", assetID, true).First(&asset).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.New(apperrors.NotFound, "Asset not found or not active")
		}
		return nil, apperrors.Wrap(apperrors.Internal, err, "failed to load asset")
	}

	now := time.Now()
	var verification models.MemberAssetVerification
	err := s.db.Where("member_id = ? AND asset_id = ?", memberID, assetID).First(&verification).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		verification = models.MemberAssetVerification{
			MemberID:     memberID,
			AssetID:      assetID,
			HoldingCount: count,
			VerifiedAt:   now,
		}
		if err := s.db.Create(&verification).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.Internal, err, "failed to create verification")
		}
	case err != nil:
		return nil, apperrors.Wrap(apperrors.Internal, err, "failed to load verification")
	default:
		if now.Sub(verification.VerifiedAt) < s.cooldown {
			return nil, apperrors.New(apperrors.Conflict, "Holdings were verified recently, try again later")
		}
		verification.HoldingCount = count
		verification.VerifiedAt = now
		if err := s.db.Save(&verification).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.Internal, err, "failed to update verification")
		}
	}

	return &verification, nil
}

// HasActiveVerification reports whether the member holds at least one item
// of any active featured asset. Feeds the social-task point bonus.
func (s *AssetService) HasActiveVerification(memberID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.MemberAssetVerification{}).
		Joins("JOIN featured_assets ON featured_assets.id = member_asset_verifications.asset_id").
		Where("member_asset_verifications.member_id = ? AND member_asset_verifications.holding_count > 0 AND featured_assets.is_active = ?",
			memberID, true).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(apperrors.Internal, err, "failed to check verifications")
	}
	return count > 0, nil
}

// CreateAsset adds a featured asset rule (admin).
func (s *AssetService) CreateAsset(name, contractAddress string, pointsPerItem int64, maxCounted int) (*models.FeaturedAsset, error) {
	if name == "" || !contractAddressRe.MatchString(contractAddress) {
		return nil, apperrors.New(apperrors.Validation, "Invalid asset name or contract address")
	}
	if pointsPerItem <= 0 || maxCounted <= 0 {
		return nil, apperrors.New(apperrors.Validation, "Invalid points or max counted value")
	}

	var existing models.FeaturedAsset
	if err := s.db.Where("contract_address = ?", contractAddress).First(&existing).Error; err == nil {
		return nil, apperrors.New(apperrors.Conflict, "Asset already exists")
	}

	asset := models.FeaturedAsset{
		Name:            name,
		ContractAddress: contractAddress,
		PointsPerItem:   pointsPerItem,
		MaxCounted:      maxCounted,
		IsActive:        true,
	}
	if err := s.db.Create(&asset).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, err, "failed to create asset")
	}
	return &asset, nil
}

// AssetUpdate carries optional admin edits to an asset rule.
type AssetUpdate struct {
	Name          *string
	PointsPerItem *int64
	MaxCounted    *int
	IsActive      *bool
}

// UpdateAsset applies the provided fields to an asset rule (admin).
func (s *AssetService) UpdateAsset(assetID uint, upd AssetUpdate) (*models.FeaturedAsset, error) {
	var asset models.FeaturedAsset
	if err := s.db.Where("id = ?", assetID).First(&asset).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.New(apperrors.NotFound, "Asset not found")
		}
		return nil, apperrors.Wrap(apperrors.Internal, err, "failed to load asset")
	}

	updates := map[string]interface{}{}
	if upd.Name != nil {
		updates["name"] = *upd.Name
	}
	if upd.PointsPerItem != nil {
		updates["points_per_item"] = *upd.PointsPerItem
	}
	if upd.MaxCounted != nil {
		updates["max_counted"] = *upd.MaxCounted
	}
	if upd.IsActive != nil {
		updates["is_active"] = *upd.IsActive
	}
	if len(updates) == 0 {
		return nil, apperrors.New(apperrors.Validation, "No fields to update")
	}

	if err := s.db.Model(&asset).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, err, "failed to update asset")
	}
	return &asset, nil
}

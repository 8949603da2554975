package models

import (
	"time"
)

// FeaturedAsset is a bonus-eligibility rule: holders of the collection earn
// extra points per view, capped at MaxCounted items.
type FeaturedAsset struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"size:255;not null" json:"name"`
	ContractAddress string    `gorm:"uniqueIndex;size:50;not null" json:"contract_address"`
	PointsPerItem   int64     `gorm:"not null;default:1" json:"points_per_item"`
	MaxCounted      int       `gorm:"not null;default:3" json:"max_counted"`
	IsActive        bool      `gorm:"default:true" json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

func (FeaturedAsset) TableName() string {
	return "featured_assets"
}

// MemberAssetVerification is a per-member verification result for one
// featured asset. VerifiedAt gates re-verification via a cooldown.
type MemberAssetVerification struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	MemberID     uint           `gorm:"not null;uniqueIndex:idx_asset_verifications_member_asset" json:"member_id"`
	Member       *Member        `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	AssetID      uint           `gorm:"not null;uniqueIndex:idx_asset_verifications_member_asset" json:"asset_id"`
	Asset        *FeaturedAsset `gorm:"foreignKey:AssetID" json:"asset,omitempty"`
	HoldingCount int            `gorm:"not null;default:0" json:"holding_count"`
	VerifiedAt   time.Time      `gorm:"not null" json:"verified_at"`
	CreatedAt    time.Time      `json:"created_at"`
}

func (MemberAssetVerification) TableName() string {
	return "member_asset_verifications"
}

package models

import (
	"time"
)

// ClickPass tiers and their per-view bonus points
const (
	ClickPassBasic  = "Basic"
	ClickPassSilver = "Silver"
	ClickPassGolden = "Golden"
)

// ClickPassBonus returns the extra points per view for a tier, or -1 for
// an unknown tier.
func ClickPassBonus(tier string) int64 {
	switch tier {
	case ClickPassBasic:
		return 10
	case ClickPassSilver:
		return 20
	case ClickPassGolden:
		return 30
	}
	return -1
}

// PublisherPass tiers and their post duration in days
const (
	PublisherPassBasic  = "Basic"
	PublisherPassSilver = "Silver"
	PublisherPassGold   = "Gold"
)

// PublisherPassDuration returns the post lifetime in days for a tier, or
// -1 for an unknown tier.
func PublisherPassDuration(tier string) int {
	switch tier {
	case PublisherPassBasic:
		return 3
	case PublisherPassSilver:
		return 10
	case PublisherPassGold:
		return 30
	}
	return -1
}

// ClickPass boosts a member's earning rate on post views.
// At most one active pass is counted per member, newest first.
type ClickPass struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	MemberID         uint       `gorm:"not null;index" json:"member_id"`
	Member           *Member    `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	PassType         string     `gorm:"size:20;not null" json:"pass_type"`
	AdditionalPoints int64      `gorm:"not null" json:"additional_points"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	IsActive         bool       `gorm:"default:true" json:"is_active"`
	CreatedAt        time.Time  `json:"created_at"`
}

func (ClickPass) TableName() string {
	return "click_passes"
}

// PublisherPass grants posting rights and sets the lifetime of new posts.
type PublisherPass struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	MemberID     uint       `gorm:"not null;index" json:"member_id"`
	Member       *Member    `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	PassType     string     `gorm:"size:20;not null" json:"pass_type"`
	DurationDays int        `gorm:"not null" json:"duration_days"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (PublisherPass) TableName() string {
	return "publisher_passes"
}

package models

import (
	"time"
)

// Member represents a wallet-identified account holding a point balance
type Member struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	WalletAddress string `gorm:"uniqueIndex;not null" json:"wallet_address"`
	WalletType    string `gorm:"size:20;not null" json:"wallet_type"`
	// Cached balance; must always equal SUM(points_history.points_change)
	Points       int64   `gorm:"not null;default:0" json:"points"`
	XHandle      *string `gorm:"uniqueIndex" json:"x_handle,omitempty"`
	IsActive     bool    `gorm:"default:true" json:"is_active"`
	IsAdmin      bool    `gorm:"default:false" json:"is_admin"`
	// NULL until assigned; an empty string would collide on the unique index
	ReferralCode *string `gorm:"uniqueIndex;size:20" json:"referral_code,omitempty"`
	ReferredBy   *uint   `gorm:"index" json:"referred_by,omitempty"`
	Referrer     *Member `gorm:"foreignKey:ReferredBy" json:"referrer,omitempty"`
	// Set when the referrer has been paid the one-time first-claim bonus
	ReferralClaimBonusPaid bool       `gorm:"default:false" json:"referral_claim_bonus_paid"`
	LastLogin              *time.Time `json:"last_login,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// TableName specifies the table name for Member model
func (Member) TableName() string {
	return "members"
}

// Session is an opaque server-side session bound to a member.
// Deleted on logout, or lazily when resolution finds it expired or idle.
type Session struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	MemberID       uint      `gorm:"not null;index" json:"member_id"`
	Member         *Member   `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	Token          string    `gorm:"uniqueIndex;size:64;not null" json:"-"`
	ExpiresAt      time.Time `gorm:"not null" json:"expires_at"`
	LastActivityAt time.Time `gorm:"not null" json:"last_activity_at"`
	CreatedAt      time.Time `json:"created_at"`
}

func (Session) TableName() string {
	return "sessions"
}

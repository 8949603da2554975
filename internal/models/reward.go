package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reward types
const (
	RewardTypeNFT   = "nft"
	RewardTypeToken = "token"
)

// ValidRewardType reports whether t is one of the accepted reward types.
func ValidRewardType(t string) bool {
	return t == RewardTypeNFT || t == RewardTypeToken
}

// ClaimStatus is the lifecycle state of a reward claim. Transitions out of
// pending are one-way; a non-pending claim can never be processed again.
type ClaimStatus string

const (
	ClaimStatusPending   ClaimStatus = "pending"
	ClaimStatusSent      ClaimStatus = "sent"
	ClaimStatusCancelled ClaimStatus = "cancelled"
)

// Terminal reports whether no further transition is allowed.
func (s ClaimStatus) Terminal() bool {
	return s == ClaimStatusSent || s == ClaimStatusCancelled
}

// Reward is a claimable catalog item priced in points.
type Reward struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	RewardType  string `gorm:"size:20;not null" json:"reward_type"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	PointsCost  int64  `gorm:"not null" json:"points_cost"`
	// On-chain amount paid out for token rewards, zero for NFTs
	TokenAmount       decimal.Decimal `gorm:"type:decimal(18,8);default:0" json:"token_amount"`
	ImageURL          string          `gorm:"size:500" json:"image_url"`
	QuantityAvailable int             `gorm:"not null" json:"quantity_available"`
	IsActive          bool            `gorm:"default:true" json:"is_active"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (Reward) TableName() string {
	return "rewards"
}

// RewardClaim is a member's request to exchange points for a reward.
// Created pending with the points already debited and inventory already
// decremented; cancelling refunds both.
type RewardClaim struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	MemberID        uint        `gorm:"not null;index" json:"member_id"`
	Member          *Member     `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	RewardID        uint        `gorm:"not null;index" json:"reward_id"`
	Reward          *Reward     `gorm:"foreignKey:RewardID" json:"reward,omitempty"`
	PointsSpent     int64       `gorm:"not null" json:"points_spent"`
	Status          ClaimStatus `gorm:"size:20;not null;default:pending;index" json:"status"`
	ClaimedAt       time.Time   `gorm:"autoCreateTime" json:"claimed_at"`
	ProcessedAt     *time.Time  `json:"processed_at,omitempty"`
	ProcessedBy     *uint       `json:"processed_by,omitempty"`
	TransactionHash *string     `gorm:"size:100" json:"transaction_hash,omitempty"`
}

func (RewardClaim) TableName() string {
	return "reward_claims"
}

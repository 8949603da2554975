package models

import (
	"time"
)

// Reference types recorded on points history rows
const (
	RefTypePostView    = "post_view"
	RefTypeRewardClaim = "reward_claim"
	RefTypeXAction     = "x_action"
	RefTypeReferral    = "referral"
	RefTypeAdmin       = "admin"
	RefTypeWeeklyPrize = "weekly_prize"
)

// PointsHistory is the append-only ledger of point deltas.
// The sum of points_change for a member must equal members.points.
type PointsHistory struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	MemberID      uint      `gorm:"not null;index" json:"member_id"`
	Member        *Member   `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	PointsChange  int64     `gorm:"not null" json:"points_change"`
	Reason        string    `gorm:"size:255;not null" json:"reason"`
	ReferenceID   *uint     `json:"reference_id,omitempty"`
	ReferenceType string    `gorm:"size:30" json:"reference_type,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func (PointsHistory) TableName() string {
	return "points_history"
}

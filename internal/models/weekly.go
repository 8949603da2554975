package models

import (
	"time"
)

// WeeklyReward is one prize period. Exactly one period is active at a time;
// winners are generated once per period and guarded by WinnersGeneratedAt.
type WeeklyReward struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	PeriodUID string `gorm:"uniqueIndex;size:40;not null" json:"period_uid"`
	ItemName  string `gorm:"size:255;not null" json:"item_name"`
	// Number of winners drawn for this period
	Quantity           int        `gorm:"not null" json:"quantity"`
	StartsAt           time.Time  `gorm:"not null" json:"starts_at"`
	EndsAt             *time.Time `json:"ends_at,omitempty"`
	IsActive           bool       `gorm:"default:true;index" json:"is_active"`
	WinnersGeneratedAt *time.Time `json:"winners_generated_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

func (WeeklyReward) TableName() string {
	return "weekly_rewards"
}

// WeeklyWinner is one ranked winner of a prize period.
type WeeklyWinner struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	WeeklyRewardID uint          `gorm:"not null;index" json:"weekly_reward_id"`
	WeeklyReward   *WeeklyReward `gorm:"foreignKey:WeeklyRewardID" json:"weekly_reward,omitempty"`
	MemberID       uint          `gorm:"not null;index" json:"member_id"`
	Member         *Member       `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	Rank           int           `gorm:"not null" json:"rank"`
	// Point balance at the moment of the draw
	Points    int64     `gorm:"not null" json:"points"`
	CreatedAt time.Time `json:"created_at"`
}

func (WeeklyWinner) TableName() string {
	return "weekly_winners"
}

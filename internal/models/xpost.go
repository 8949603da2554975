package models

import (
	"time"
)

// Social action types verified against X.com
const (
	ActionFollow  = "follow"
	ActionLike    = "like"
	ActionRetweet = "retweet"
)

// ValidActionType reports whether t is one of the verifiable actions.
func ValidActionType(t string) bool {
	return t == ActionFollow || t == ActionLike || t == ActionRetweet
}

// XPost is a social-task target: an X.com post members earn points for
// interacting with.
type XPost struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostURL   string    `gorm:"size:500;not null" json:"post_url"`
	ImageURL  string    `gorm:"size:500" json:"image_url"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (XPost) TableName() string {
	return "x_posts"
}

// XPostAction is one verified action per (member, post, action type).
// Rows are immutable once created; their existence enforces exactly-once
// point awards.
type XPostAction struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	XPostID    uint      `gorm:"not null;uniqueIndex:idx_x_actions_once" json:"x_post_id"`
	XPost      *XPost    `gorm:"foreignKey:XPostID" json:"x_post,omitempty"`
	MemberID   uint      `gorm:"not null;uniqueIndex:idx_x_actions_once" json:"member_id"`
	Member     *Member   `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	ActionType string    `gorm:"size:20;not null;uniqueIndex:idx_x_actions_once" json:"action_type"`
	Points     int64     `gorm:"not null" json:"points"`
	CreatedAt  time.Time `json:"created_at"`
}

func (XPostAction) TableName() string {
	return "x_post_actions"
}

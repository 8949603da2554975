package models

import (
	"time"
)

// Post lifecycle states
const (
	PostStatusPending  = "pending"
	PostStatusActive   = "active"
	PostStatusInactive = "inactive"
	PostStatusExpired  = "expired"
)

// Post types
const (
	PostTypeAd           = "ad"
	PostTypePost         = "post"
	PostTypeAnnouncement = "announcement"
)

// ValidPostType reports whether t is one of the accepted post types.
func ValidPostType(t string) bool {
	return t == PostTypeAd || t == PostTypePost || t == PostTypeAnnouncement
}

// Post is a sponsored post/advertisement. Created pending by a publisher
// holding an active Publisher Pass, activated by admin approval, and
// expired lazily against ExpiresAt wherever it is read.
type Post struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	PublisherID uint       `gorm:"not null;index" json:"publisher_id"`
	Publisher   *Member    `gorm:"foreignKey:PublisherID" json:"publisher,omitempty"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	PostType    string     `gorm:"size:20;not null;default:post" json:"post_type"`
	Status      string     `gorm:"size:20;not null;default:pending;index" json:"status"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	ApprovedBy  *uint      `json:"approved_by,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Post) TableName() string {
	return "posts"
}

// PostView records one qualifying view. A recent row for (post, member)
// blocks a new point award within the cooldown window.
type PostView struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	PostID       uint      `gorm:"not null;index:idx_post_views_post_member" json:"post_id"`
	Post         *Post     `gorm:"foreignKey:PostID" json:"post,omitempty"`
	MemberID     uint      `gorm:"not null;index:idx_post_views_post_member" json:"member_id"`
	Member       *Member   `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	ViewedAt     time.Time `gorm:"autoCreateTime;index" json:"viewed_at"`
	Duration     int       `gorm:"not null" json:"duration"`
	PointsEarned int64     `gorm:"not null" json:"points_earned"`
}

func (PostView) TableName() string {
	return "post_views"
}

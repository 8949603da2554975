package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"roninads/internal/apperrors"
	"roninads/internal/config"
	"roninads/internal/models"
)

// PostService manages the post lifecycle and the view/reward engine.
type PostService struct {
	db     *gorm.DB
	ledger *LedgerService
	passes *PassService
	points config.PointsConfig
	viewMu sync.Mutex
}

// NewPostService creates a new PostService
func NewPostService(db *gorm.DB, ledger *LedgerService, passes *PassService, points config.PointsConfig) *PostService {
	return &PostService{
		db:     db,
		ledger: ledger,
		passes: passes,
		points: points,
	}
}

// expireIfDue flips a post to expired once its deadline passes. Expiry is
// lazy; there is no background sweeper.
func (s *PostService) expireIfDue(post *models.Post) {
	if post.Status != models.PostStatusActive && post.Status != models.PostStatusPending {
		return
	}
	if post.ExpiresAt == nil || post.ExpiresAt.After(time.Now()) {
		return
	}
	if err := s.db.Model(post).Update("status", models.PostStatusExpired).Error; err != nil {
		log.Printf("Failed to expire post %d: %v", post.ID, err)
		return
	}
	post.Status = models.PostStatusExpired
}

func (s *PostService) expireAllDue(posts []models.Post) []models.Post {
	out := posts[:0]
	for i := range posts {
		s.expireIfDue(&posts[i])
		out = append(out, posts[i])
	}
	return out
}

// Create submits a new post for approval. The publisher must hold an active
// Publisher Pass, which also sets the post's lifetime, and may not exceed
// the live-post limit.
func (s *PostService) Create(publisher *models.Member, title, content, postType string) (*models.Post, error) {
	if title == "" || content == "" {
		return nil, apperrors.New(apperrors.Validation, "Title and content are required")
	}
	if postType == "" {
		postType = models.PostTypePost
	}
	if !models.ValidPostType(postType) {
		return nil, apperrors.New(apperrors.Validation, "Invalid post type")
	}

	pass, err := s.passes.ActivePublisherPass(publisher.ID)
	if err != nil {
		return nil, err
	}
	if pass == nil {
		return nil, apperrors.New(apperrors.Forbidden, "An active Publisher Pass is required to create posts")
	}

	var live int64
	err = s.db.Model(&models.Post{}).
		Where("publisher_id = ? AND status IN ?", publisher.ID,
			[]string{models.PostStatusPending, models.PostStatusActive}).
		Count(&live).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, err, "failed to count posts")
	}
	if live >= int64(s.points.MaxActivePosts) {
		return nil, apperrors.New(apperrors.Conflict,
			fmt.Sprintf("You can have at most %d pending or active posts", s.points.MaxActivePosts))
	}

	expiresAt := time.Now().AddDate(0, 0, pass.DurationDays)
	post := models.Post{
		PublisherID: publisher.ID,
		Title:       title,
		Content:     content,
		PostType:    postType,
		Status:      models.PostStatusPending,
		ExpiresAt:   &expiresAt,
	}
	if err := s.db.Create(&post).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, err, "failed to create post")
	}
	return &post, nil
}

// Get returns one post, applying lazy expiry first.
func (s *PostService) Get(postID uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.Preload("Publisher").Where("id = ?", postID).First(&post).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.New(apperrors.NotFound, "Post not found")
		}
		return nil, apperrors.Wrap(apperrors.Internal, err, "failed to load post")
	}
	s.expireIfDue(&post)
	return &post, nil
}

// ListActive returns active, unexpired posts, newest first, optionally
// filtered by post type.
func (s *PostService) ListActive(postType string, limit, offset int) ([]models.Post, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	// Flip anything past its deadline before reading
	now := time.Now()
	if err := s.db.Model(&models.Post{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", models.PostStatusActive, now).
		Update("status", models.PostStatusExpired).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.Internal, err, "failed to expire posts")
	}

	query := s.db.Model(&models.Post{}).Where("status = ?", models.PostStatusActive)
	if postType != "" {
		query = query.Where("post_type = ?", postType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.Internal, err, "failed to count posts")
	}

	var posts []models.Post
	err := query.Preload("Publisher").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.Internal, err, "failed to load posts")
	}
	return posts, total, nil
}

// MyPosts returns a publisher's posts in every status, newest first.
func (s *PostService) MyPosts(publisherID uint) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.Where("publisher_id = ?", publisherID).
		Order("created_at DESC").Find(&posts).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, err, "failed to load posts")
	}
	return s.expireAllDue(posts), nil
}

// ListPending returns posts awaiting approval, oldest first (admin).
func (s *PostService) ListPending() ([]models.Post, error) {
	var posts []models.Post
	err := s.db.Preload("Publisher").
		Where("status = ?", models.PostStatusPending).
		Order("created_at ASC").Find(&posts).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, err, "failed to load pending posts")
	}
	return s.expireAllDue(posts), nil
}

// Update edits a post's content. Only the owner may edit, and an edited
// active post goes back through approval.
func (s *PostService) Update(member *models.Member, postID uint, title, content, postType string) (*models.Post, error) {
	post, err := s.Get(postID)
	if err != nil {
		return nil, err
	}
	if post.PublisherID != member.ID {
		return nil, apperrors.New(apperrors.Forbidden, "You can only edit your own posts")
	}
	if post.Status == models.PostStatusInactive || post.Status == models.PostStatusExpired {
		return nil, apperrors.New(apperrors.Conflict, "Post can no longer be edited")
	}

	updates := map[string]interface{}{
		"status":      models.PostStatusPending,
		"approved_by": nil,
		"approved_at": nil,
	}
	if title != "" {
		updates["title"] = title
	}
	if content != "" {
		updates["content"] = content
	}
	if postType != "" {
		if !models.ValidPostType(postType) {
			return nil, apperrors.New(apperrors.Validation, "Invalid post type")
		}
		updates["post_type"] = postType
	}

	if err := s.db.Model(post).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, err, "failed to update post")
	}
	return s.Get(postID)
}

// Delete deactivates a post. Only the owner or an admin may do so; view
// history is kept.
func (s *PostService) Delete(member *models.Member, postID uint) error {
	post, err := s.Get(postID)
	if err != nil {
		return err
	}
	if post.PublisherID != member.ID && !member.IsAdmin {
		return apperrors.New(apperrors.Forbidden, "You can only delete your own posts")
	}
	if err := s.db.Model(post).Update("status", models.PostStatusInactive).Error; err != nil {
		return apperrors.Wrap(apperrors.Internal, err, "failed to delete post")
	}
	return nil
}

// Approve activates a pending post (admin).
func (s *PostService) Approve(admin *models.Member, postID uint) (*models.Post, error) {
	return s.review(admin, postID, models.PostStatusActive)
}

// Reject declines a pending post (admin).
func (s *PostService) Reject(admin *models.Member, postID uint) (*models.Post, error) {
	return s.review(admin, postID, models.PostStatusInactive)
}

func (s *PostService) review(admin *models.Member, postID uint, status string) (*models.Post, error) {
	post, err := s.Get(postID)
	if err != nil {
		return nil, err
	}
	if post.Status != models.PostStatusPending {
		return nil, apperrors.New(apperrors.Conflict, "Post is not awaiting approval")
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":      status,
		"approved_by": admin.ID,
		"approved_at": now,
	}
	if err := s.db.Model(post).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, err, "failed to review post")
	}
	return s.Get(postID)
}

// ViewResult reports the outcome of a view submission. A repeat view inside
// the cooldown window is not an error: it comes back with AlreadyViewed set
// and zero points so clients can submit views without tracking state.
type ViewResult struct {
	View          *models.PostView `json:"view,omitempty"`
	PointsEarned  int64            `json:"points_earned"`
	AlreadyViewed bool             `json:"already_viewed"`
}

// RecordView awards points for a qualifying view: post active and unexpired,
// duration at least the minimum, no awarded view for this (post, member)
// within the cooldown window, viewer not the publisher. The view row and the
// ledger write commit together.
func (s *PostService) RecordView(member *models.Member, postID uint, duration int) (*ViewResult, error) {
	if duration < s.points.MinViewDuration {
		return nil, apperrors.New(apperrors.Validation,
			fmt.Sprintf("View must last at least %d seconds", s.points.MinViewDuration))
	}

	post, err := s.Get(postID)
	if err != nil {
		return nil, err
	}
	if post.Status != models.PostStatusActive {
		return nil, apperrors.New(apperrors.NotFound, "Post is not active")
	}
	if post.PublisherID == member.ID {
		return nil, apperrors.New(apperrors.Validation, "You cannot earn points on your own post")
	}

	// Bonus resolution reads passes and asset holdings; do it before taking
	// the lock so the critical section stays short.
	bonus, err := s.passes.ViewBonus(member.ID)
	if err != nil {
		return nil, err
	}
	points := s.points.BasePointsPerView + bonus

	s.viewMu.Lock()
	defer s.viewMu.Unlock()

	var view models.PostView
	var alreadyViewed bool
	cutoff := time.Now().Add(-s.points.ViewCooldown)
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var recent int64
		err := tx.Model(&models.PostView{}).
			Where("post_id = ? AND member_id = ? AND viewed_at > ?", postID, member.ID, cutoff).
			Count(&recent).Error
		if err != nil {
			return apperrors.Wrap(apperrors.Internal, err, "failed to check view cooldown")
		}
		if recent > 0 {
			alreadyViewed = true
			return nil
		}

		view = models.PostView{
			PostID:       postID,
			MemberID:     member.ID,
			Duration:     duration,
			PointsEarned: points,
		}
		if err := tx.Create(&view).Error; err != nil {
			return apperrors.Wrap(apperrors.Internal, err, "failed to record view")
		}

		return s.ledger.ApplyPointsTx(tx, member.ID, points,
			fmt.Sprintf("Viewed post: %s", post.Title), &view.ID, models.RefTypePostView)
	})
	if err != nil {
		return nil, err
	}
	if alreadyViewed {
		return &ViewResult{AlreadyViewed: true}, nil
	}

	return &ViewResult{View: &view, PointsEarned: points}, nil
}

// ViewHistory returns a member's awarded views, newest first.
func (s *PostService) ViewHistory(memberID uint, limit, offset int) ([]models.PostView, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := s.db.Model(&models.PostView{}).Where("member_id = ?", memberID).Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.Internal, err, "failed to count views")
	}

	var views []models.PostView
	err := s.db.Preload("Post").
		Where("member_id = ?", memberID).
		Order("viewed_at DESC").
		Limit(limit).Offset(offset).
		Find(&views).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.Internal, err, "failed to load views")
	}
	return views, total, nil
}

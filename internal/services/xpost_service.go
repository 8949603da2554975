package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"gorm.io/gorm"

	"roninads/internal/apperrors"
	"roninads/internal/config"
	"roninads/internal/models"
	"roninads/internal/xapi"
)

// ActionVerifier checks whether a member performed a social action on a
// post. A (false, nil) return is a definite not-completed verdict; an error
// means the verdict could not be obtained.
type ActionVerifier interface {
	VerifyAction(ctx context.Context, handle, postURL, actionType string) (bool, error)
}

// XPostService manages social tasks: targets, verification, and awards.
type XPostService struct {
	db       *gorm.DB
	ledger   *LedgerService
	assets   *AssetService
	verifier ActionVerifier
	points   config.PointsConfig
	failOpen bool
	mu       sync.Mutex
}

// NewXPostService creates a new XPostService
func NewXPostService(db *gorm.DB, ledger *LedgerService, assets *AssetService, verifier ActionVerifier, points config.PointsConfig, failOpen bool) *XPostService {
	return &XPostService{
		db:       db,
		ledger:   ledger,
		assets:   assets,
		verifier: verifier,
		points:   points,
		failOpen: failOpen,
	}
}

// ListActive returns the social tasks currently open, newest first.
func (s *XPostService) ListActive() ([]models.XPost, error) {
	var posts []models.XPost
	if err := s.db.Where("is_active = ?", true).Order("created_at DESC").Find(&posts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, err, "failed to load x posts")
	}
	return posts, nil
}

// MyActions returns the member's verified actions, newest first.
func (s *XPostService) MyActions(memberID uint) ([]models.XPostAction, error) {
	var actions []models.XPostAction
	err := s.db.Preload("XPost").
		Where("member_id = ?", memberID).
		Order("created_at DESC").Find(&actions).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, err, "failed to load actions")
	}
	return actions, nil
}

// Create adds a new social task target (admin).
func (s *XPostService) Create(postURL, imageURL string) (*models.XPost, error) {
	if !strings.HasPrefix(postURL, "https://") {
		return nil, apperrors.New(apperrors.Validation, "Invalid post URL")
	}
	post := models.XPost{PostURL: postURL, ImageURL: imageURL, IsActive: true}
	if err := s.db.Create(&post).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, err, "failed to create x post")
	}
	return &post, nil
}

// SetActive toggles a social task (admin).
func (s *XPostService) SetActive(xPostID uint, active bool) error {
	res := s.db.Model(&models.XPost{}).Where("id = ?", xPostID).Update("is_active", active)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.Internal, res.Error, "failed to update x post")
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.NotFound, "X post not found")
	}
	return nil
}

// VerifyAction verifies that the member performed the action and awards
// points exactly once per (member, post, action). Holding a verified bonus
// asset doubles the award. When the verification backend is unavailable and
// fail-open is configured, the action is taken at the member's word.
func (s *XPostService) VerifyAction(ctx context.Context, member *models.Member, xPostID uint, actionType string) (*models.XPostAction, error) {
	if !models.ValidActionType(actionType) {
		return nil, apperrors.New(apperrors.Validation, "Invalid action type")
	}
	if member.XHandle == nil || *member.XHandle == "" {
		return nil, apperrors.New(apperrors.Validation, "Link your X handle before verifying actions")
	}

	var xPost models.XPost
	if err := s.db.Where("id = ? AND is_active = ?", xPostID, true).First(&xPost).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.New(apperrors.NotFound, "X post not found or not active")
		}
		return nil, apperrors.Wrap(apperrors.Internal, err, "failed to load x post")
	}

	var existing models.XPostAction
	err := s.db.Where("x_post_id = ? AND member_id = ? AND action_type = ?",
		xPostID, member.ID, actionType).First(&existing).Error
	if err == nil {
		return nil, apperrors.New(apperrors.Conflict, "Action already verified")
	}
	if err != gorm.ErrRecordNotFound {
		return nil, apperrors.Wrap(apperrors.Internal, err, "failed to check action")
	}

	// Remote call happens outside the lock and outside the transaction.
	done, err := s.verifier.VerifyAction(ctx, *member.XHandle, xPost.PostURL, actionType)
	if err != nil {
		if xapi.IsCapabilityError(err) && s.failOpen {
			log.Printf("X verification unavailable for member %d action %s: %v (allowing)",
				member.ID, actionType, err)
			done = true
		} else {
			return nil, apperrors.Wrap(apperrors.ExternalCapability, err, "Verification is temporarily unavailable")
		}
	}
	if !done {
		return nil, apperrors.New(apperrors.Validation, "Action not found on your X account")
	}

	points := s.points.SocialActionPoints
	if points < 1 {
		points = 1
	}
	hasAsset, err := s.assets.HasActiveVerification(member.ID)
	if err != nil {
		return nil, err
	}
	if hasAsset {
		points *= 2
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var action models.XPostAction
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.XPostAction{}).
			Where("x_post_id = ? AND member_id = ? AND action_type = ?", xPostID, member.ID, actionType).
			Count(&count).Error
		if err != nil {
			return apperrors.Wrap(apperrors.Internal, err, "failed to re-check action")
		}
		if count > 0 {
			return apperrors.New(apperrors.Conflict, "Action already verified")
		}

		action = models.XPostAction{
			XPostID:    xPostID,
			MemberID:   member.ID,
			ActionType: actionType,
			Points:     points,
		}
		if err := tx.Create(&action).Error; err != nil {
			return apperrors.Wrap(apperrors.Internal, err, "failed to record action")
		}

		return s.ledger.ApplyPointsTx(tx, member.ID, points,
			fmt.Sprintf("X %s verified", actionType), &action.ID, models.RefTypeXAction)
	})
	if err != nil {
		return nil, err
	}

	// Referral kicker: a verified retweet pays the referrer a small bonus.
	// Best effort after commit; a failure here never unwinds the action.
	if actionType == models.ActionRetweet && member.ReferredBy != nil && s.points.ReferralRetweetBonus > 0 {
		bonusErr := s.ledger.ApplyPoints(*member.ReferredBy, s.points.ReferralRetweetBonus,
			fmt.Sprintf("Referral bonus: member %d retweeted", member.ID), &action.ID, models.RefTypeReferral)
		if bonusErr != nil {
			log.Printf("Failed to pay referral retweet bonus to member %d: %v", *member.ReferredBy, bonusErr)
		}
	}

	return &action, nil
}

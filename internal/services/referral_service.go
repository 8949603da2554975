package services

import (
	"crypto/rand"
	"sync"

	"github.com/mr-tron/base58"
	"gorm.io/gorm"

	"roninads/internal/apperrors"
	"roninads/internal/models"
)

const referralCodeLength = 8

// ReferralService manages referral codes and attribution.
type ReferralService struct {
	db *gorm.DB
	mu sync.Mutex
}

// NewReferralService creates a new ReferralService
func NewReferralService(db *gorm.DB) *ReferralService {
	return &ReferralService{db: db}
}

func generateReferralCode() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	code := base58.Encode(buf)
	if len(code) < referralCodeLength {
		// base58 of 16 random bytes is always long enough, but guard anyway
		return "", apperrors.New(apperrors.Internal, "short referral code")
	}
	return code[:referralCodeLength], nil
}

// EnsureCode assigns a referral code to the member if they do not have one,
// retrying on the (unlikely) collision with an existing code.
func (s *ReferralService) EnsureCode(member *models.Member) error {
	if member.ReferralCode != nil && *member.ReferralCode != "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 0; attempt < 5; attempt++ {
		code, err := generateReferralCode()
		if err != nil {
			return apperrors.Wrap(apperrors.Internal, err, "failed to generate referral code")
		}

		var count int64
		if err := s.db.Model(&models.Member{}).Where("referral_code = ?", code).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.Internal, err, "failed to check referral code")
		}
		if count > 0 {
			continue
		}

		if err := s.db.Model(&models.Member{}).Where("id = ?", member.ID).
			Update("referral_code", code).Error; err != nil {
			return apperrors.Wrap(apperrors.Internal, err, "failed to assign referral code")
		}
		member.ReferralCode = &code
		return nil
	}

	return apperrors.New(apperrors.Internal, "could not generate a unique referral code")
}

// Resolve returns the member owning the given referral code.
func (s *ReferralService) Resolve(code string) (*models.Member, error) {
	if code == "" {
		return nil, apperrors.New(apperrors.Validation, "Referral code is required")
	}
	var member models.Member
	if err := s.db.Where("referral_code = ?", code).First(&member).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.New(apperrors.NotFound, "Referral code not found")
		}
		return nil, apperrors.Wrap(apperrors.Internal, err, "failed to resolve referral code")
	}
	return &member, nil
}

// Referrals returns the members referred by the given member, newest first.
func (s *ReferralService) Referrals(memberID uint, limit, offset int) ([]models.Member, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := s.db.Model(&models.Member{}).Where("referred_by = ?", memberID).Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.Internal, err, "failed to count referrals")
	}

	var members []models.Member
	err := s.db.Where("referred_by = ?", memberID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&members).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.Internal, err, "failed to load referrals")
	}
	return members, total, nil
}

// ReferralStats summarizes a member's referral activity.
type ReferralStats struct {
	ReferralCode   string `json:"referral_code"`
	TotalReferred  int64  `json:"total_referred"`
	ReferredClaims int64  `json:"referred_with_claims"`
	PointsEarned   int64  `json:"points_earned"`
}

// Stats returns referral counts and points earned from referral bonuses.
func (s *ReferralService) Stats(member *models.Member) (*ReferralStats, error) {
	stats := &ReferralStats{}
	if member.ReferralCode != nil {
		stats.ReferralCode = *member.ReferralCode
	}

	if err := s.db.Model(&models.Member{}).Where("referred_by = ?", member.ID).
		Count(&stats.TotalReferred).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, err, "failed to count referrals")
	}

	if err := s.db.Model(&models.Member{}).
		Where("referred_by = ? AND referral_claim_bonus_paid = ?", member.ID, true).
		Count(&stats.ReferredClaims).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, err, "failed to count referred claims")
	}

	var earned struct{ Total int64 }
	err := s.db.Model(&models.PointsHistory{}).
		Select("COALESCE(SUM(points_change), 0) AS total").
		Where("member_id = ? AND reference_type = ?", member.ID, models.RefTypeReferral).
		Scan(&earned).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, err, "failed to sum referral points")
	}
	stats.PointsEarned = earned.Total

	return stats, nil
}

package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"roninads/internal/apperrors"
	"roninads/internal/models"
)

// RewardService manages the reward catalog and the claim state machine.
type RewardService struct {
	db                 *gorm.DB
	ledger             *LedgerService
	referralClaimBonus int64
	claimMu            sync.Mutex
}

// NewRewardService creates a new RewardService
func NewRewardService(db *gorm.DB, ledger *LedgerService, referralClaimBonus int64) *RewardService {
	return &RewardService{db: db, ledger: ledger, referralClaimBonus: referralClaimBonus}
}

// ListActive returns in-stock active rewards, optionally filtered by type.
func (s *RewardService) ListActive(rewardType string) ([]models.Reward, error) {
	query := s.db.Where("is_active = ? AND quantity_available > 0", true)
	if rewardType != "" {
		query = query.Where("reward_type = ?", rewardType)
	}

	var rewards []models.Reward
	if err := query.Order("points_cost ASC").Find(&rewards).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, err, "failed to load rewards")
	}
	return rewards, nil
}

// Get returns one reward.
func (s *RewardService) Get(rewardID uint) (*models.Reward, error) {
	var reward models.Reward
	if err := s.db.Where("id = ?", rewardID).First(&reward).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.New(apperrors.NotFound, "Reward not found")
		}
		return nil, apperrors.Wrap(apperrors.Internal, err, "failed to load reward")
	}
	return &reward, nil
}

// Create adds a reward to the catalog (admin).
func (s *RewardService) Create(rewardType, name, description, imageURL string, pointsCost int64, tokenAmount decimal.Decimal, quantity int) (*models.Reward, error) {
	if !models.ValidRewardType(rewardType) {
		return nil, apperrors.New(apperrors.Validation, "Invalid reward type")
	}
	if name == "" || pointsCost <= 0 || quantity < 0 {
		return nil, apperrors.New(apperrors.Validation, "Invalid reward fields")
	}

	reward := models.Reward{
		RewardType:        rewardType,
		Name:              name,
		Description:       description,
		PointsCost:        pointsCost,
		TokenAmount:       tokenAmount,
		ImageURL:          imageURL,
		QuantityAvailable: quantity,
		IsActive:          true,
	}
	if err := s.db.Create(&reward).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, err, "failed to create reward")
	}
	return &reward, nil
}

// RewardUpdate carries optional admin edits to a catalog item.
type RewardUpdate struct {
	Name              *string
	Description       *string
	PointsCost        *int64
	TokenAmount       *decimal.Decimal
	ImageURL          *string
	QuantityAvailable *int
	IsActive          *bool
}

// Update applies the provided fields to a reward (admin).
func (s *RewardService) Update(rewardID uint, upd RewardUpdate) (*models.Reward, error) {
	reward, err := s.Get(rewardID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if upd.Name != nil {
		updates["name"] = *upd.Name
	}
	if upd.Description != nil {
		updates["description"] = *upd.Description
	}
	if upd.PointsCost != nil {
		if *upd.PointsCost <= 0 {
			return nil, apperrors.New(apperrors.Validation, "Points cost must be positive")
		}
		updates["points_cost"] = *upd.PointsCost
	}
	if upd.TokenAmount != nil {
		updates["token_amount"] = *upd.TokenAmount
	}
	if upd.ImageURL != nil {
		updates["image_url"] = *upd.ImageURL
	}
	if upd.QuantityAvailable != nil {
		if *upd.QuantityAvailable < 0 {
			return nil, apperrors.New(apperrors.Validation, "Quantity must not be negative")
		}
		updates["quantity_available"] = *upd.QuantityAvailable
	}
	if upd.IsActive != nil {
		updates["is_active"] = *upd.IsActive
	}
	if len(updates) == 0 {
		return nil, apperrors.New(apperrors.Validation, "No fields to update")
	}

	if err := s.db.Model(reward).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, err, "failed to update reward")
	}
	return s.Get(rewardID)
}

// Claim exchanges points for a reward: the pending claim row, the point
// debit, and the inventory decrement commit atomically. Balance and stock
// are re-checked inside the transaction.
func (s *RewardService) Claim(member *models.Member, rewardID uint) (*models.RewardClaim, error) {
	s.claimMu.Lock()
	defer s.claimMu.Unlock()

	var claim models.RewardClaim
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var reward models.Reward
		if err := tx.Where("id = ? AND is_active = ?", rewardID, true).First(&reward).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.New(apperrors.NotFound, "Reward not found or not active")
			}
			return apperrors.Wrap(apperrors.Internal, err, "failed to load reward")
		}
		if reward.QuantityAvailable <= 0 {
			return apperrors.New(apperrors.Conflict, "Reward is out of stock")
		}

		var current models.Member
		if err := tx.Where("id = ?", member.ID).First(&current).Error; err != nil {
			return apperrors.Wrap(apperrors.Internal, err, "failed to load member")
		}
		if current.Points < reward.PointsCost {
			return apperrors.New(apperrors.Validation, "Insufficient points")
		}

		claim = models.RewardClaim{
			MemberID:    member.ID,
			RewardID:    reward.ID,
			PointsSpent: reward.PointsCost,
			Status:      models.ClaimStatusPending,
		}
		if err := tx.Create(&claim).Error; err != nil {
			return apperrors.Wrap(apperrors.Internal, err, "failed to create claim")
		}

		if err := s.ledger.ApplyPointsTx(tx, member.ID, -reward.PointsCost,
			fmt.Sprintf("Claimed reward: %s", reward.Name), &claim.ID, models.RefTypeRewardClaim); err != nil {
			return err
		}

		// Guarded decrement; loses the race instead of going negative
		res := tx.Model(&models.Reward{}).
			Where("id = ? AND quantity_available > 0", reward.ID).
			Update("quantity_available", gorm.Expr("quantity_available - 1"))
		if res.Error != nil {
			return apperrors.Wrap(apperrors.Internal, res.Error, "failed to decrement stock")
		}
		if res.RowsAffected == 0 {
			return apperrors.New(apperrors.Conflict, "Reward is out of stock")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.payFirstClaimReferralBonus(member, claim.ID)

	return s.claimByID(claim.ID)
}

// payFirstClaimReferralBonus pays the referrer the one-time bonus when their
// referred member completes a first claim. The paid flag and the ledger
// write commit together so the bonus can never double-pay.
func (s *RewardService) payFirstClaimReferralBonus(member *models.Member, claimID uint) {
	if member.ReferredBy == nil || s.referralClaimBonus <= 0 {
		return
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Member{}).
			Where("id = ? AND referral_claim_bonus_paid = ?", member.ID, false).
			Update("referral_claim_bonus_paid", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Already paid
			return nil
		}
		return s.ledger.ApplyPointsTx(tx, *member.ReferredBy, s.referralClaimBonus,
			fmt.Sprintf("Referral bonus: member %d made a first claim", member.ID),
			&claimID, models.RefTypeReferral)
	})
	if err != nil {
		log.Printf("Failed to pay first-claim referral bonus to member %d: %v", *member.ReferredBy, err)
	}
}

func (s *RewardService) claimByID(claimID uint) (*models.RewardClaim, error) {
	var claim models.RewardClaim
	err := s.db.Preload("Reward").Preload("Member").Where("id = ?", claimID).First(&claim).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.New(apperrors.NotFound, "Claim not found")
		}
		return nil, apperrors.Wrap(apperrors.Internal, err, "failed to load claim")
	}
	return &claim, nil
}

// MyClaims returns a member's claims, newest first.
func (s *RewardService) MyClaims(memberID uint) ([]models.RewardClaim, error) {
	var claims []models.RewardClaim
	err := s.db.Preload("Reward").
		Where("member_id = ?", memberID).
		Order("claimed_at DESC").Find(&claims).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, err, "failed to load claims")
	}
	return claims, nil
}

// AllClaims returns claims across members, optionally filtered by status
// (admin).
func (s *RewardService) AllClaims(status string, limit, offset int) ([]models.RewardClaim, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := s.db.Model(&models.RewardClaim{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.Internal, err, "failed to count claims")
	}

	var claims []models.RewardClaim
	err := query.Preload("Reward").Preload("Member").
		Order("claimed_at DESC").
		Limit(limit).Offset(offset).
		Find(&claims).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.Internal, err, "failed to load claims")
	}
	return claims, total, nil
}

// ProcessClaim moves a pending claim to sent or cancelled (admin).
// Cancelling refunds the points as a new ledger entry and restores the
// inventory unit.
func (s *RewardService) ProcessClaim(admin *models.Member, claimID uint, status models.ClaimStatus, txHash string) (*models.RewardClaim, error) {
	if !status.Terminal() {
		return nil, apperrors.New(apperrors.Validation, "Status must be sent or cancelled")
	}

	s.claimMu.Lock()
	defer s.claimMu.Unlock()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var claim models.RewardClaim
		if err := tx.Where("id = ?", claimID).First(&claim).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.New(apperrors.NotFound, "Claim not found")
			}
			return apperrors.Wrap(apperrors.Internal, err, "failed to load claim")
		}
		if claim.Status != models.ClaimStatusPending {
			return apperrors.New(apperrors.Conflict, "Claim has already been processed")
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":       status,
			"processed_at": now,
			"processed_by": admin.ID,
		}
		if txHash != "" {
			updates["transaction_hash"] = txHash
		}
		if err := tx.Model(&claim).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.Internal, err, "failed to update claim")
		}

		if status == models.ClaimStatusCancelled {
			if err := s.ledger.ApplyPointsTx(tx, claim.MemberID, claim.PointsSpent,
				"Reward claim cancelled, points refunded", &claim.ID, models.RefTypeRewardClaim); err != nil {
				return err
			}
			if err := tx.Model(&models.Reward{}).Where("id = ?", claim.RewardID).
				Update("quantity_available", gorm.Expr("quantity_available + 1")).Error; err != nil {
				return apperrors.Wrap(apperrors.Internal, err, "failed to restore stock")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.claimByID(claimID)
}

package services

import (
	"gorm.io/gorm"

	"roninads/internal/apperrors"
	"roninads/internal/models"
)

// LedgerService owns point balances. Every delta updates the cached balance
// on the member row and appends a history row in the same transaction so the
// invariant points == SUM(points_history.points_change) holds at every
// observable instant.
type LedgerService struct {
	db *gorm.DB
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

// ApplyPoints applies a signed point delta in its own transaction.
func (s *LedgerService) ApplyPoints(memberID uint, delta int64, reason string, refID *uint, refType string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.ApplyPointsTx(tx, memberID, delta, reason, refID, refType)
	})
}

// ApplyPointsTx applies a delta inside a caller-owned transaction, so views
// and claims can compose the ledger write with their own rows atomically.
func (s *LedgerService) ApplyPointsTx(tx *gorm.DB, memberID uint, delta int64, reason string, refID *uint, refType string) error {
	res := tx.Model(&models.Member{}).Where("id = ?", memberID).
		Update("points", gorm.Expr("points + ?", delta))
	if res.Error != nil {
		return apperrors.Wrap(apperrors.Internal, res.Error, "failed to update balance")
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.NotFound, "Member not found")
	}

	entry := models.PointsHistory{
		MemberID:      memberID,
		PointsChange:  delta,
		Reason:        reason,
		ReferenceID:   refID,
		ReferenceType: refType,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return apperrors.Wrap(apperrors.Internal, err, "failed to append points history")
	}
	return nil
}

// BalanceFromHistory recomputes a member's balance from the ledger. Used to
// reconcile the cached balance when it is suspected of drifting.
func (s *LedgerService) BalanceFromHistory(memberID uint) (int64, error) {
	var sum int64
	row := s.db.Model(&models.PointsHistory{}).Where("member_id = ?", memberID).
		Select("COALESCE(SUM(points_change), 0)").Row()
	if err := row.Scan(&sum); err != nil {
		return 0, apperrors.Wrap(apperrors.Internal, err, "failed to sum points history")
	}
	return sum, nil
}

// Reconcile rewrites the cached balance from the ledger sum and returns it.
func (s *LedgerService) Reconcile(memberID uint) (int64, error) {
	var sum int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		row := tx.Model(&models.PointsHistory{}).Where("member_id = ?", memberID).
			Select("COALESCE(SUM(points_change), 0)").Row()
		if err := row.Scan(&sum); err != nil {
			return err
		}
		return tx.Model(&models.Member{}).Where("id = ?", memberID).
			Update("points", sum).Error
	})
	if err != nil {
		return 0, apperrors.Wrap(apperrors.Internal, err, "failed to reconcile balance")
	}
	return sum, nil
}

// History returns a page of a member's ledger entries, newest first.
func (s *LedgerService) History(memberID uint, limit, offset int) ([]models.PointsHistory, int64, error) {
	var total int64
	if err := s.db.Model(&models.PointsHistory{}).Where("member_id = ?", memberID).
		Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.Internal, err, "failed to count points history")
	}

	var entries []models.PointsHistory
	if err := s.db.Where("member_id = ?", memberID).
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&entries).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.Internal, err, "failed to load points history")
	}
	return entries, total, nil
}

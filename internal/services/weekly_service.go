package services

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"roninads/internal/apperrors"
	"roninads/internal/models"
)

// WeeklyService manages prize periods and the weekly standings draw.
type WeeklyService struct {
	db *gorm.DB
	mu sync.Mutex
}

// NewWeeklyService creates a new WeeklyService
func NewWeeklyService(db *gorm.DB) *WeeklyService {
	return &WeeklyService{db: db}
}

// ActivePeriod returns the current prize period, or a NotFound error when
// none is configured.
func (s *WeeklyService) ActivePeriod() (*models.WeeklyReward, error) {
	var period models.WeeklyReward
	err := s.db.Where("is_active = ?", true).Order("starts_at DESC").First(&period).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.New(apperrors.NotFound, "No active prize period")
		}
		return nil, apperrors.Wrap(apperrors.Internal, err, "failed to load prize period")
	}
	return &period, nil
}

// CreatePeriod opens a new prize period, deactivating any current one.
func (s *WeeklyService) CreatePeriod(itemName string, quantity int, endsAt *time.Time) (*models.WeeklyReward, error) {
	if itemName == "" || quantity <= 0 {
		return nil, apperrors.New(apperrors.Validation, "Invalid prize item or quantity")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var period models.WeeklyReward
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.WeeklyReward{}).Where("is_active = ?", true).
			Update("is_active", false).Error; err != nil {
			return apperrors.Wrap(apperrors.Internal, err, "failed to close previous period")
		}

		period = models.WeeklyReward{
			PeriodUID: uuid.New().String(),
			ItemName:  itemName,
			Quantity:  quantity,
			StartsAt:  time.Now(),
			EndsAt:    endsAt,
			IsActive:  true,
		}
		if err := tx.Create(&period).Error; err != nil {
			return apperrors.Wrap(apperrors.Internal, err, "failed to create prize period")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &period, nil
}

// GenerateWinners draws the period's winners from the current standings:
// top balances, ties broken by member id. A second draw for the same period
// is rejected.
func (s *WeeklyService) GenerateWinners(periodID uint) ([]models.WeeklyWinner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var winners []models.WeeklyWinner
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var period models.WeeklyReward
		if err := tx.Where("id = ?", periodID).First(&period).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.New(apperrors.NotFound, "Prize period not found")
			}
			return apperrors.Wrap(apperrors.Internal, err, "failed to load prize period")
		}
		if period.WinnersGeneratedAt != nil {
			return apperrors.New(apperrors.Conflict, "Winners already generated for this period")
		}

		var top []models.Member
		err := tx.Where("is_active = ? AND points > 0", true).
			Order("points DESC, id ASC").
			Limit(period.Quantity).
			Find(&top).Error
		if err != nil {
			return apperrors.Wrap(apperrors.Internal, err, "failed to load standings")
		}

		for i, member := range top {
			winner := models.WeeklyWinner{
				WeeklyRewardID: period.ID,
				MemberID:       member.ID,
				Rank:           i + 1,
				Points:         member.Points,
			}
			if err := tx.Create(&winner).Error; err != nil {
				return apperrors.Wrap(apperrors.Internal, err, "failed to record winner")
			}
			winners = append(winners, winner)
		}

		now := time.Now()
		if err := tx.Model(&period).Update("winners_generated_at", now).Error; err != nil {
			return apperrors.Wrap(apperrors.Internal, err, "failed to stamp draw")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return winners, nil
}

// Winners returns the draw results for a period, by rank.
func (s *WeeklyService) Winners(periodID uint) ([]models.WeeklyWinner, error) {
	var winners []models.WeeklyWinner
	err := s.db.Preload("Member").
		Where("weekly_reward_id = ?", periodID).
		Order("rank ASC").Find(&winners).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, err, "failed to load winners")
	}
	return winners, nil
}

// Periods returns past and present prize periods, newest first.
func (s *WeeklyService) Periods(limit, offset int) ([]models.WeeklyReward, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := s.db.Model(&models.WeeklyReward{}).Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.Internal, err, "failed to count prize periods")
	}

	var periods []models.WeeklyReward
	err := s.db.Order("starts_at DESC").
		Limit(limit).Offset(offset).
		Find(&periods).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.Internal, err, "failed to load prize periods")
	}
	return periods, total, nil
}

// RotatePeriod closes the active period, drawing its winners if that has
// not happened yet, and opens the next one. Called by the scheduler and
// from the admin surface.
func (s *WeeklyService) RotatePeriod(itemName string, quantity int) (*models.WeeklyReward, error) {
	current, err := s.ActivePeriod()
	if err != nil && apperrors.KindOf(err) != apperrors.NotFound {
		return nil, err
	}

	if current != nil && current.WinnersGeneratedAt == nil {
		if _, err := s.GenerateWinners(current.ID); err != nil && apperrors.KindOf(err) != apperrors.Conflict {
			log.Printf("Failed to draw winners for period %s: %v", current.PeriodUID, err)
		}
	}

	return s.CreatePeriod(itemName, quantity, nil)
}

// Standings returns the current point leaderboard.
func (s *WeeklyService) Standings(limit int) ([]models.Member, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var members []models.Member
	err := s.db.Where("is_active = ?", true).
		Order("points DESC, id ASC").
		Limit(limit).Find(&members).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, err, "failed to load standings")
	}
	return members, nil
}

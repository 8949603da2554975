package services

import (
	"testing"

	"gorm.io/gorm"

	"roninads/internal/apperrors"
	"roninads/internal/models"
)

func seedStandings(t *testing.T, db *gorm.DB, balances map[string]int64) {
	t.Helper()
	for wallet, points := range balances {
		member := createTestMember(t, db, wallet)
		db.Model(member).Update("points", points)
	}
}

func TestCreatePeriodDeactivatesPrevious(t *testing.T) {
	db := setupTestDB(t)
	weekly := NewWeeklyService(db)

	first, err := weekly.CreatePeriod("Prize A", 3, nil)
	if err != nil {
		t.Fatalf("CreatePeriod failed: %v", err)
	}
	second, err := weekly.CreatePeriod("Prize B", 3, nil)
	if err != nil {
		t.Fatalf("CreatePeriod failed: %v", err)
	}
	if first.PeriodUID == second.PeriodUID {
		t.Errorf("period uids must be unique")
	}

	active, err := weekly.ActivePeriod()
	if err != nil {
		t.Fatalf("ActivePeriod failed: %v", err)
	}
	if active.ID != second.ID {
		t.Errorf("expected the newest period to be active")
	}

	var activeCount int64
	db.Model(&models.WeeklyReward{}).Where("is_active = ?", true).Count(&activeCount)
	if activeCount != 1 {
		t.Errorf("exactly one period may be active, got %d", activeCount)
	}
}

func TestGenerateWinnersRankingAndIdempotency(t *testing.T) {
	db := setupTestDB(t)
	weekly := NewWeeklyService(db)
	seedStandings(t, db, map[string]int64{
		"0x1111111111111111111111111111111111111111": 100,
		"0x2222222222222222222222222222222222222222": 300,
		"0x3333333333333333333333333333333333333333": 200,
		"0x4444444444444444444444444444444444444444": 50,
	})

	period, err := weekly.CreatePeriod("Prize", 3, nil)
	if err != nil {
		t.Fatalf("CreatePeriod failed: %v", err)
	}

	winners, err := weekly.GenerateWinners(period.ID)
	if err != nil {
		t.Fatalf("GenerateWinners failed: %v", err)
	}
	if len(winners) != 3 {
		t.Fatalf("expected 3 winners, got %d", len(winners))
	}
	if winners[0].Points != 300 || winners[1].Points != 200 || winners[2].Points != 100 {
		t.Errorf("wrong ranking: %d, %d, %d", winners[0].Points, winners[1].Points, winners[2].Points)
	}
	for i, w := range winners {
		if w.Rank != i+1 {
			t.Errorf("expected rank %d, got %d", i+1, w.Rank)
		}
	}

	// Second draw for the same period is rejected
	if _, err := weekly.GenerateWinners(period.ID); apperrors.KindOf(err) != apperrors.Conflict {
		t.Errorf("expected Conflict on repeat draw, got %v", err)
	}
}

func TestGenerateWinnersSkipsZeroBalances(t *testing.T) {
	db := setupTestDB(t)
	weekly := NewWeeklyService(db)
	seedStandings(t, db, map[string]int64{
		"0x5555555555555555555555555555555555555555": 10,
		"0x6666666666666666666666666666666666666666": 0,
	})

	period, err := weekly.CreatePeriod("Prize", 5, nil)
	if err != nil {
		t.Fatalf("CreatePeriod failed: %v", err)
	}

	winners, err := weekly.GenerateWinners(period.ID)
	if err != nil {
		t.Fatalf("GenerateWinners failed: %v", err)
	}
	if len(winners) != 1 {
		t.Errorf("zero balances must not win, got %d winners", len(winners))
	}
}

func TestRotatePeriodDrawsAndOpensNext(t *testing.T) {
	db := setupTestDB(t)
	weekly := NewWeeklyService(db)
	seedStandings(t, db, map[string]int64{
		"0x7777777777777777777777777777777777777777": 40,
	})

	first, err := weekly.CreatePeriod("Prize", 3, nil)
	if err != nil {
		t.Fatalf("CreatePeriod failed: %v", err)
	}

	next, err := weekly.RotatePeriod("Next Prize", 3)
	if err != nil {
		t.Fatalf("RotatePeriod failed: %v", err)
	}
	if next.ID == first.ID {
		t.Errorf("rotation must open a new period")
	}

	winners, err := weekly.Winners(first.ID)
	if err != nil {
		t.Fatalf("Winners failed: %v", err)
	}
	if len(winners) != 1 {
		t.Errorf("rotation should have drawn the old period, got %d winners", len(winners))
	}

	var old models.WeeklyReward
	db.First(&old, first.ID)
	if old.IsActive {
		t.Errorf("rotated period must be deactivated")
	}
}

func TestPeriodsListsNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	weekly := NewWeeklyService(db)

	first, err := weekly.CreatePeriod("First Prize", 1, nil)
	if err != nil {
		t.Fatalf("CreatePeriod failed: %v", err)
	}
	second, err := weekly.RotatePeriod("Second Prize", 1)
	if err != nil {
		t.Fatalf("RotatePeriod failed: %v", err)
	}

	periods, total, err := weekly.Periods(10, 0)
	if err != nil {
		t.Fatalf("Periods failed: %v", err)
	}
	if total != 2 || len(periods) != 2 {
		t.Fatalf("expected 2 periods, got total=%d len=%d", total, len(periods))
	}
	if periods[0].ID != second.ID || periods[1].ID != first.ID {
		t.Errorf("periods must come back newest first")
	}
	if periods[0].IsActive == periods[1].IsActive {
		t.Errorf("only the newest period should be active")
	}
}

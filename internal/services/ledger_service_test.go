package services

import (
	"testing"

	"roninads/internal/apperrors"
	"roninads/internal/models"
)

func TestApplyPointsUpdatesBalanceAndHistory(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	member := createTestMember(t, db, "0x1111111111111111111111111111111111111111")

	if err := ledger.ApplyPoints(member.ID, 5, "test credit", nil, models.RefTypeAdmin); err != nil {
		t.Fatalf("ApplyPoints failed: %v", err)
	}
	if err := ledger.ApplyPoints(member.ID, -2, "test debit", nil, models.RefTypeAdmin); err != nil {
		t.Fatalf("ApplyPoints failed: %v", err)
	}

	var got models.Member
	if err := db.First(&got, member.ID).Error; err != nil {
		t.Fatalf("failed to reload member: %v", err)
	}
	if got.Points != 3 {
		t.Errorf("expected balance 3, got %d", got.Points)
	}

	sum, err := ledger.BalanceFromHistory(member.ID)
	if err != nil {
		t.Fatalf("BalanceFromHistory failed: %v", err)
	}
	if sum != got.Points {
		t.Errorf("history sum %d does not match balance %d", sum, got.Points)
	}

	entries, total, err := ledger.History(member.ID, 10, 0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if total != 2 || len(entries) != 2 {
		t.Fatalf("expected 2 history entries, got total=%d len=%d", total, len(entries))
	}
	// Newest first
	if entries[0].PointsChange != -2 {
		t.Errorf("expected newest entry -2, got %d", entries[0].PointsChange)
	}
}

func TestApplyPointsUnknownMember(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)

	err := ledger.ApplyPoints(999, 5, "ghost", nil, models.RefTypeAdmin)
	if apperrors.KindOf(err) != apperrors.NotFound {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestReconcileRewritesDriftedBalance(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	member := createTestMember(t, db, "0x2222222222222222222222222222222222222222")

	if err := ledger.ApplyPoints(member.ID, 7, "credit", nil, models.RefTypeAdmin); err != nil {
		t.Fatalf("ApplyPoints failed: %v", err)
	}

	// Simulate drift
	db.Model(&models.Member{}).Where("id = ?", member.ID).Update("points", 100)

	balance, err := ledger.Reconcile(member.ID)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if balance != 7 {
		t.Errorf("expected reconciled balance 7, got %d", balance)
	}
}

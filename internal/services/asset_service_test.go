package services

import (
	"testing"
	"time"

	"roninads/internal/apperrors"
	"roninads/internal/models"
)

func TestVerifyHoldingsCooldown(t *testing.T) {
	db := setupTestDB(t)
	assets := NewAssetService(db, time.Hour)
	member := createTestMember(t, db, "0x1111111111111111111111111111111111111111")

	asset, err := assets.CreateAsset("Collection", "0x2222222222222222222222222222222222222222", 2, 3)
	if err != nil {
		t.Fatalf("CreateAsset failed: %v", err)
	}

	verification, err := assets.VerifyHoldings(member.ID, asset.ID, 4)
	if err != nil {
		t.Fatalf("VerifyHoldings failed: %v", err)
	}
	if verification.HoldingCount != 4 {
		t.Errorf("expected holding count 4, got %d", verification.HoldingCount)
	}

	// Re-verification inside the cooldown window is rejected
	if _, err := assets.VerifyHoldings(member.ID, asset.ID, 5); apperrors.KindOf(err) != apperrors.Conflict {
		t.Errorf("expected Conflict inside cooldown, got %v", err)
	}

	// Age the verification past the cooldown
	db.Model(&models.MemberAssetVerification{}).
		Where("member_id = ? AND asset_id = ?", member.ID, asset.ID).
		Update("verified_at", time.Now().Add(-2*time.Hour))

	updated, err := assets.VerifyHoldings(member.ID, asset.ID, 1)
	if err != nil {
		t.Fatalf("re-verification after cooldown failed: %v", err)
	}
	if updated.HoldingCount != 1 {
		t.Errorf("expected updated count 1, got %d", updated.HoldingCount)
	}
}

func TestMemberAssetsCapsCountedItems(t *testing.T) {
	db := setupTestDB(t)
	assets := NewAssetService(db, time.Hour)
	member := createTestMember(t, db, "0x3333333333333333333333333333333333333333")

	asset, err := assets.CreateAsset("Capped", "0x4444444444444444444444444444444444444444", 5, 2)
	if err != nil {
		t.Fatalf("CreateAsset failed: %v", err)
	}
	if _, err := assets.VerifyHoldings(member.ID, asset.ID, 10); err != nil {
		t.Fatalf("VerifyHoldings failed: %v", err)
	}

	list, total, err := assets.MemberAssets(member.ID)
	if err != nil {
		t.Fatalf("MemberAssets failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 asset, got %d", len(list))
	}
	if list[0].CountedItems != 2 {
		t.Errorf("expected counted items capped at 2, got %d", list[0].CountedItems)
	}
	if total != 10 {
		t.Errorf("expected total bonus 2*5=10, got %d", total)
	}
}

func TestHasActiveVerification(t *testing.T) {
	db := setupTestDB(t)
	assets := NewAssetService(db, time.Hour)
	member := createTestMember(t, db, "0x5555555555555555555555555555555555555555")

	has, err := assets.HasActiveVerification(member.ID)
	if err != nil {
		t.Fatalf("HasActiveVerification failed: %v", err)
	}
	if has {
		t.Errorf("expected no verification yet")
	}

	asset, err := assets.CreateAsset("Collection", "0x6666666666666666666666666666666666666666", 1, 3)
	if err != nil {
		t.Fatalf("CreateAsset failed: %v", err)
	}
	if _, err := assets.VerifyHoldings(member.ID, asset.ID, 1); err != nil {
		t.Fatalf("VerifyHoldings failed: %v", err)
	}

	has, err = assets.HasActiveVerification(member.ID)
	if err != nil {
		t.Fatalf("HasActiveVerification failed: %v", err)
	}
	if !has {
		t.Errorf("expected a verification")
	}

	// Deactivating the asset hides the verification
	inactive := false
	if _, err := assets.UpdateAsset(asset.ID, AssetUpdate{IsActive: &inactive}); err != nil {
		t.Fatalf("UpdateAsset failed: %v", err)
	}
	has, _ = assets.HasActiveVerification(member.ID)
	if has {
		t.Errorf("inactive asset must not count")
	}
}

func TestCreateAssetValidation(t *testing.T) {
	db := setupTestDB(t)
	assets := NewAssetService(db, time.Hour)

	if _, err := assets.CreateAsset("Bad", "not-an-address", 1, 1); apperrors.KindOf(err) != apperrors.Validation {
		t.Errorf("expected Validation for bad contract address, got %v", err)
	}

	if _, err := assets.CreateAsset("Dup", "0x7777777777777777777777777777777777777777", 1, 1); err != nil {
		t.Fatalf("CreateAsset failed: %v", err)
	}
	if _, err := assets.CreateAsset("Dup2", "0x7777777777777777777777777777777777777777", 1, 1); apperrors.KindOf(err) != apperrors.Conflict {
		t.Errorf("expected Conflict for duplicate contract, got %v", err)
	}
}

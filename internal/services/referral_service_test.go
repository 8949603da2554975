package services

import (
	"testing"

	"roninads/internal/apperrors"
	"roninads/internal/models"
)

func TestEnsureCodeAssignsOnce(t *testing.T) {
	db := setupTestDB(t)
	referrals := NewReferralService(db)
	member := createTestMember(t, db, "0x1111111111111111111111111111111111111111")

	if err := referrals.EnsureCode(member); err != nil {
		t.Fatalf("EnsureCode failed: %v", err)
	}
	if member.ReferralCode == nil || len(*member.ReferralCode) != referralCodeLength {
		t.Errorf("expected %d-char code, got %v", referralCodeLength, member.ReferralCode)
	}

	first := *member.ReferralCode
	if err := referrals.EnsureCode(member); err != nil {
		t.Fatalf("EnsureCode failed: %v", err)
	}
	if *member.ReferralCode != first {
		t.Errorf("existing code must not be replaced")
	}
}

func TestMembersCreatedWithoutCode(t *testing.T) {
	db := setupTestDB(t)

	// An unassigned code is NULL, never the empty string, so any number of
	// fresh members can coexist before EnsureCode runs.
	a := createTestMember(t, db, "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee")
	b := createTestMember(t, db, "0xffffffffffffffffffffffffffffffffffffffff")
	if a.ReferralCode != nil || b.ReferralCode != nil {
		t.Errorf("new members must start without a referral code")
	}

	var count int64
	db.Model(&models.Member{}).Where("referral_code IS NULL").Count(&count)
	if count != 2 {
		t.Errorf("expected 2 uncoded members, got %d", count)
	}
}

func TestEnsureCodeUniqueAcrossMembers(t *testing.T) {
	db := setupTestDB(t)
	referrals := NewReferralService(db)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		member := createTestMember(t, db, "0x11111111111111111111111111111111111111"+string(rune('a'+i%6))+string(rune('a'+i/6)))
		if err := referrals.EnsureCode(member); err != nil {
			t.Fatalf("EnsureCode failed: %v", err)
		}
		if seen[*member.ReferralCode] {
			t.Fatalf("duplicate referral code %q", *member.ReferralCode)
		}
		seen[*member.ReferralCode] = true
	}
}

func TestResolveCode(t *testing.T) {
	db := setupTestDB(t)
	referrals := NewReferralService(db)
	member := createTestMember(t, db, "0x2222222222222222222222222222222222222222")
	if err := referrals.EnsureCode(member); err != nil {
		t.Fatalf("EnsureCode failed: %v", err)
	}

	got, err := referrals.Resolve(*member.ReferralCode)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.ID != member.ID {
		t.Errorf("resolved wrong member")
	}

	if _, err := referrals.Resolve("ZZZZZZZZ"); apperrors.KindOf(err) != apperrors.NotFound {
		t.Errorf("expected NotFound for unknown code, got %v", err)
	}
	if _, err := referrals.Resolve(""); apperrors.KindOf(err) != apperrors.Validation {
		t.Errorf("expected Validation for empty code, got %v", err)
	}
}

func TestReferralStats(t *testing.T) {
	db := setupTestDB(t)
	referrals := NewReferralService(db)
	ledger := NewLedgerService(db)
	referrer := createTestMember(t, db, "0x3333333333333333333333333333333333333333")
	if err := referrals.EnsureCode(referrer); err != nil {
		t.Fatalf("EnsureCode failed: %v", err)
	}

	for i, wallet := range []string{
		"0x4444444444444444444444444444444444444444",
		"0x5555555555555555555555555555555555555555",
	} {
		referred := createTestMember(t, db, wallet)
		db.Model(referred).Update("referred_by", referrer.ID)
		if i == 0 {
			db.Model(referred).Update("referral_claim_bonus_paid", true)
		}
	}

	if err := ledger.ApplyPoints(referrer.ID, 11, "referral bonuses", nil, models.RefTypeReferral); err != nil {
		t.Fatalf("ApplyPoints failed: %v", err)
	}
	if err := ledger.ApplyPoints(referrer.ID, 5, "unrelated", nil, models.RefTypeAdmin); err != nil {
		t.Fatalf("ApplyPoints failed: %v", err)
	}

	stats, err := referrals.Stats(referrer)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalReferred != 2 {
		t.Errorf("expected 2 referred, got %d", stats.TotalReferred)
	}
	if stats.ReferredClaims != 1 {
		t.Errorf("expected 1 referred claim, got %d", stats.ReferredClaims)
	}
	if stats.PointsEarned != 11 {
		t.Errorf("expected 11 referral points, got %d", stats.PointsEarned)
	}
	if stats.ReferralCode != *referrer.ReferralCode {
		t.Errorf("stats should echo the code")
	}
}

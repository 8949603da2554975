package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"roninads/internal/apperrors"
	"roninads/internal/models"
	"roninads/internal/xapi"
)

// fakeVerifier scripts the verification outcome per test.
type fakeVerifier struct {
	done bool
	err  error
}

func (f *fakeVerifier) VerifyAction(ctx context.Context, handle, postURL, actionType string) (bool, error) {
	return f.done, f.err
}

func buildXPostService(t *testing.T, verifier ActionVerifier, failOpen bool) (*XPostService, *LedgerService, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	assets := NewAssetService(db, time.Hour)
	svc := NewXPostService(db, ledger, assets, verifier, testPointsConfig(), failOpen)
	return svc, ledger, db
}

func createTestXPost(t *testing.T, db *gorm.DB) *models.XPost {
	t.Helper()
	post := &models.XPost{PostURL: "https://x.com/roninads/status/12345", IsActive: true}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("failed to create x post: %v", err)
	}
	return post
}

func memberWithHandle(t *testing.T, db *gorm.DB, wallet, handle string) *models.Member {
	t.Helper()
	member := createTestMember(t, db, wallet)
	db.Model(member).Update("x_handle", handle)
	member.XHandle = &handle
	return member
}

func TestVerifyActionAwardsOnce(t *testing.T) {
	svc, ledger, db := buildXPostService(t, &fakeVerifier{done: true}, false)
	member := memberWithHandle(t, db, "0x1111111111111111111111111111111111111111", "alice")
	post := createTestXPost(t, db)

	action, err := svc.VerifyAction(context.Background(), member, post.ID, models.ActionLike)
	if err != nil {
		t.Fatalf("VerifyAction failed: %v", err)
	}
	if action.Points != 1 {
		t.Errorf("expected 1 point, got %d", action.Points)
	}

	balance, _ := ledger.BalanceFromHistory(member.ID)
	if balance != 1 {
		t.Errorf("expected balance 1, got %d", balance)
	}

	if _, err := svc.VerifyAction(context.Background(), member, post.ID, models.ActionLike); apperrors.KindOf(err) != apperrors.Conflict {
		t.Errorf("expected Conflict on repeat, got %v", err)
	}

	// Different action type on the same post is a separate award
	if _, err := svc.VerifyAction(context.Background(), member, post.ID, models.ActionRetweet); err != nil {
		t.Errorf("retweet after like should succeed: %v", err)
	}
}

func TestVerifyActionPointsIndependentOfViewBase(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	assets := NewAssetService(db, time.Hour)

	cfg := testPointsConfig()
	cfg.BasePointsPerView = 50
	svc := NewXPostService(db, ledger, assets, &fakeVerifier{done: true}, cfg, false)

	member := memberWithHandle(t, db, "0x1212121212121212121212121212121212121212", "basecheck")
	post := createTestXPost(t, db)

	action, err := svc.VerifyAction(context.Background(), member, post.ID, models.ActionLike)
	if err != nil {
		t.Fatalf("VerifyAction failed: %v", err)
	}
	if action.Points != 1 {
		t.Errorf("social award must stay at its own rate, got %d", action.Points)
	}
}

func TestVerifyActionRequiresHandle(t *testing.T) {
	svc, _, db := buildXPostService(t, &fakeVerifier{done: true}, false)
	member := createTestMember(t, db, "0x2222222222222222222222222222222222222222")
	post := createTestXPost(t, db)

	if _, err := svc.VerifyAction(context.Background(), member, post.ID, models.ActionLike); apperrors.KindOf(err) != apperrors.Validation {
		t.Errorf("expected Validation without a handle, got %v", err)
	}
}

func TestVerifyActionNotCompleted(t *testing.T) {
	svc, _, db := buildXPostService(t, &fakeVerifier{done: false}, true)
	member := memberWithHandle(t, db, "0x3333333333333333333333333333333333333333", "bob")
	post := createTestXPost(t, db)

	// Definite not-completed verdict is rejected even in fail-open mode
	if _, err := svc.VerifyAction(context.Background(), member, post.ID, models.ActionFollow); apperrors.KindOf(err) != apperrors.Validation {
		t.Errorf("expected Validation for unperformed action, got %v", err)
	}
}

func TestVerifyActionFailOpen(t *testing.T) {
	capErr := &xapi.CapabilityError{Err: errors.New("backend down")}

	open, ledger, db := buildXPostService(t, &fakeVerifier{err: capErr}, true)
	member := memberWithHandle(t, db, "0x4444444444444444444444444444444444444444", "carol")
	post := createTestXPost(t, db)

	if _, err := open.VerifyAction(context.Background(), member, post.ID, models.ActionLike); err != nil {
		t.Fatalf("fail-open should allow the action: %v", err)
	}
	balance, _ := ledger.BalanceFromHistory(member.ID)
	if balance != 1 {
		t.Errorf("expected 1 point under fail-open, got %d", balance)
	}

	closed, _, db2 := buildXPostService(t, &fakeVerifier{err: capErr}, false)
	member2 := memberWithHandle(t, db2, "0x5555555555555555555555555555555555555555", "dave")
	post2 := createTestXPost(t, db2)

	if _, err := closed.VerifyAction(context.Background(), member2, post2.ID, models.ActionLike); apperrors.KindOf(err) != apperrors.ExternalCapability {
		t.Errorf("expected ExternalCapability when fail-open is off, got %v", err)
	}
}

func TestVerifyActionAssetDoublesPoints(t *testing.T) {
	svc, _, db := buildXPostService(t, &fakeVerifier{done: true}, false)
	member := memberWithHandle(t, db, "0x6666666666666666666666666666666666666666", "erin")
	post := createTestXPost(t, db)

	asset := models.FeaturedAsset{Name: "Collection", ContractAddress: "0xfafafafafafafafafafafafafafafafafafafafa", PointsPerItem: 1, MaxCounted: 3, IsActive: true}
	db.Create(&asset)
	db.Create(&models.MemberAssetVerification{MemberID: member.ID, AssetID: asset.ID, HoldingCount: 1, VerifiedAt: time.Now()})

	action, err := svc.VerifyAction(context.Background(), member, post.ID, models.ActionLike)
	if err != nil {
		t.Fatalf("VerifyAction failed: %v", err)
	}
	if action.Points != 2 {
		t.Errorf("expected doubled points for asset holders, got %d", action.Points)
	}
}

func TestVerifyRetweetPaysReferrer(t *testing.T) {
	svc, ledger, db := buildXPostService(t, &fakeVerifier{done: true}, false)
	referrer := createTestMember(t, db, "0x7777777777777777777777777777777777777777")
	member := memberWithHandle(t, db, "0x8888888888888888888888888888888888888888", "frank")
	db.Model(member).Update("referred_by", referrer.ID)
	member.ReferredBy = &referrer.ID
	post := createTestXPost(t, db)

	if _, err := svc.VerifyAction(context.Background(), member, post.ID, models.ActionRetweet); err != nil {
		t.Fatalf("VerifyAction failed: %v", err)
	}

	balance, _ := ledger.BalanceFromHistory(referrer.ID)
	if balance != 1 {
		t.Errorf("expected referrer bonus of 1, got %d", balance)
	}

	// A like does not pay the referrer
	if _, err := svc.VerifyAction(context.Background(), member, post.ID, models.ActionLike); err != nil {
		t.Fatalf("VerifyAction failed: %v", err)
	}
	balance, _ = ledger.BalanceFromHistory(referrer.ID)
	if balance != 1 {
		t.Errorf("like should not pay the referrer, balance %d", balance)
	}
}

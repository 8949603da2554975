package services

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"roninads/internal/apperrors"
	"roninads/internal/models"
)

func buildPostService(t *testing.T) (*PostService, *PassService, *LedgerService, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	passes := NewPassService(db)
	posts := NewPostService(db, ledger, passes, testPointsConfig())
	return posts, passes, ledger, db
}

func grantPublisher(t *testing.T, passes *PassService, memberID uint, tier string) {
	t.Helper()
	if _, err := passes.GrantPublisherPass(memberID, tier, nil); err != nil {
		t.Fatalf("GrantPublisherPass failed: %v", err)
	}
}

func approveTestPost(t *testing.T, posts *PostService, db *gorm.DB, postID uint) {
	t.Helper()
	admin := createTestMember(t, db, "0xadadadadadadadadadadadadadadadadadadadad")
	db.Model(admin).Update("is_admin", true)
	admin.IsAdmin = true
	if _, err := posts.Approve(admin, postID); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
}

func TestCreatePostRequiresPublisherPass(t *testing.T) {
	posts, passes, _, db := buildPostService(t)
	member := createTestMember(t, db, "0x1111111111111111111111111111111111111111")

	if _, err := posts.Create(member, "Title", "Content", ""); apperrors.KindOf(err) != apperrors.Forbidden {
		t.Fatalf("expected Forbidden without a pass, got %v", err)
	}

	grantPublisher(t, passes, member.ID, models.PublisherPassBasic)
	post, err := posts.Create(member, "Title", "Content", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if post.Status != models.PostStatusPending {
		t.Errorf("expected pending status, got %s", post.Status)
	}
	if post.ExpiresAt == nil {
		t.Fatalf("expected an expiry from the pass duration")
	}
	days := time.Until(*post.ExpiresAt).Hours() / 24
	if days < 2.9 || days > 3.1 {
		t.Errorf("Basic pass should give ~3 days, got %.1f", days)
	}
}

func TestCreatePostLimit(t *testing.T) {
	posts, passes, _, db := buildPostService(t)
	member := createTestMember(t, db, "0x2222222222222222222222222222222222222222")
	grantPublisher(t, passes, member.ID, models.PublisherPassGold)

	for i := 0; i < 3; i++ {
		if _, err := posts.Create(member, "Title", "Content", ""); err != nil {
			t.Fatalf("Create %d failed: %v", i, err)
		}
	}
	if _, err := posts.Create(member, "Title", "Content", ""); apperrors.KindOf(err) != apperrors.Conflict {
		t.Errorf("expected Conflict over the live-post limit, got %v", err)
	}
}

func TestApprovalLifecycle(t *testing.T) {
	posts, passes, _, db := buildPostService(t)
	member := createTestMember(t, db, "0x3333333333333333333333333333333333333333")
	grantPublisher(t, passes, member.ID, models.PublisherPassSilver)

	post, err := posts.Create(member, "Title", "Content", models.PostTypeAd)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	approveTestPost(t, posts, db, post.ID)

	got, err := posts.Get(post.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != models.PostStatusActive {
		t.Errorf("expected active after approval, got %s", got.Status)
	}
	if got.ApprovedBy == nil || got.ApprovedAt == nil {
		t.Errorf("approval stamps missing")
	}

	// Editing sends it back through approval
	edited, err := posts.Update(member, post.ID, "New title", "", "")
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if edited.Status != models.PostStatusPending {
		t.Errorf("expected pending after edit, got %s", edited.Status)
	}
	if edited.ApprovedBy != nil {
		t.Errorf("approval stamp should be cleared on edit")
	}
}

func TestLazyExpiry(t *testing.T) {
	posts, passes, _, db := buildPostService(t)
	member := createTestMember(t, db, "0x4444444444444444444444444444444444444444")
	grantPublisher(t, passes, member.ID, models.PublisherPassBasic)

	post, err := posts.Create(member, "Title", "Content", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	approveTestPost(t, posts, db, post.ID)

	past := time.Now().Add(-time.Minute)
	db.Model(&models.Post{}).Where("id = ?", post.ID).Update("expires_at", past)

	got, err := posts.Get(post.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != models.PostStatusExpired {
		t.Errorf("expected expired on read, got %s", got.Status)
	}
}

func TestRecordViewAwardsPoints(t *testing.T) {
	posts, passes, ledger, db := buildPostService(t)
	publisher := createTestMember(t, db, "0x5555555555555555555555555555555555555555")
	viewer := createTestMember(t, db, "0x6666666666666666666666666666666666666666")
	grantPublisher(t, passes, publisher.ID, models.PublisherPassGold)

	post, err := posts.Create(publisher, "Title", "Content", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	approveTestPost(t, posts, db, post.ID)

	result, err := posts.RecordView(viewer, post.ID, 15)
	if err != nil {
		t.Fatalf("RecordView failed: %v", err)
	}
	if result.PointsEarned != 1 {
		t.Errorf("expected 1 base point, got %d", result.PointsEarned)
	}

	balance, err := ledger.BalanceFromHistory(viewer.ID)
	if err != nil {
		t.Fatalf("BalanceFromHistory failed: %v", err)
	}
	if balance != 1 {
		t.Errorf("ledger should show 1 point, got %d", balance)
	}
}

func TestRecordViewMinimumDuration(t *testing.T) {
	posts, passes, _, db := buildPostService(t)
	publisher := createTestMember(t, db, "0x7777777777777777777777777777777777777777")
	viewer := createTestMember(t, db, "0x8888888888888888888888888888888888888888")
	grantPublisher(t, passes, publisher.ID, models.PublisherPassBasic)

	post, _ := posts.Create(publisher, "Title", "Content", "")
	approveTestPost(t, posts, db, post.ID)

	if _, err := posts.RecordView(viewer, post.ID, 9); apperrors.KindOf(err) != apperrors.Validation {
		t.Errorf("expected Validation under the minimum duration, got %v", err)
	}
}

func TestRecordViewCooldown(t *testing.T) {
	posts, passes, _, db := buildPostService(t)
	publisher := createTestMember(t, db, "0x9999999999999999999999999999999999999999")
	viewer := createTestMember(t, db, "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	grantPublisher(t, passes, publisher.ID, models.PublisherPassBasic)

	post, _ := posts.Create(publisher, "Title", "Content", "")
	approveTestPost(t, posts, db, post.ID)

	if _, err := posts.RecordView(viewer, post.ID, 15); err != nil {
		t.Fatalf("first view failed: %v", err)
	}
	repeat, err := posts.RecordView(viewer, post.ID, 15)
	if err != nil {
		t.Fatalf("repeat view inside cooldown should not error: %v", err)
	}
	if !repeat.AlreadyViewed || repeat.PointsEarned != 0 {
		t.Errorf("expected zero-point already-viewed result, got %+v", repeat)
	}

	var views int64
	db.Model(&models.PostView{}).Where("member_id = ?", viewer.ID).Count(&views)
	if views != 1 {
		t.Errorf("expected 1 view row after repeat, got %d", views)
	}

	// Age the view past the cooldown window
	db.Model(&models.PostView{}).Where("member_id = ?", viewer.ID).
		Update("viewed_at", time.Now().Add(-25*time.Hour))

	result, err := posts.RecordView(viewer, post.ID, 15)
	if err != nil {
		t.Fatalf("view after cooldown should succeed: %v", err)
	}
	if result.AlreadyViewed || result.PointsEarned == 0 {
		t.Errorf("expected fresh award after cooldown, got %+v", result)
	}
}

func TestRecordViewOwnPost(t *testing.T) {
	posts, passes, _, db := buildPostService(t)
	publisher := createTestMember(t, db, "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	grantPublisher(t, passes, publisher.ID, models.PublisherPassBasic)

	post, _ := posts.Create(publisher, "Title", "Content", "")
	approveTestPost(t, posts, db, post.ID)

	if _, err := posts.RecordView(publisher, post.ID, 15); apperrors.KindOf(err) != apperrors.Validation {
		t.Errorf("expected Validation for own-post view, got %v", err)
	}
}

func TestRecordViewWithPassAndAssetBonus(t *testing.T) {
	posts, passes, _, db := buildPostService(t)
	publisher := createTestMember(t, db, "0xcccccccccccccccccccccccccccccccccccccccc")
	viewer := createTestMember(t, db, "0xdddddddddddddddddddddddddddddddddddddddd")
	grantPublisher(t, passes, publisher.ID, models.PublisherPassBasic)

	post, _ := posts.Create(publisher, "Title", "Content", "")
	approveTestPost(t, posts, db, post.ID)

	// Golden Click Pass: +30 per view
	if _, err := passes.GrantClickPass(viewer.ID, models.ClickPassGolden, nil); err != nil {
		t.Fatalf("GrantClickPass failed: %v", err)
	}

	// Featured asset: 2 points per item, counted up to 3, holding 5
	asset := models.FeaturedAsset{Name: "Test Collection", ContractAddress: "0xebebebebebebebebebebebebebebebebebebebeb", PointsPerItem: 2, MaxCounted: 3, IsActive: true}
	if err := db.Create(&asset).Error; err != nil {
		t.Fatalf("failed to create asset: %v", err)
	}
	verification := models.MemberAssetVerification{MemberID: viewer.ID, AssetID: asset.ID, HoldingCount: 5, VerifiedAt: time.Now()}
	if err := db.Create(&verification).Error; err != nil {
		t.Fatalf("failed to create verification: %v", err)
	}

	result, err := posts.RecordView(viewer, post.ID, 20)
	if err != nil {
		t.Fatalf("RecordView failed: %v", err)
	}
	// 1 base + 30 pass + min(5,3)*2 asset
	if result.PointsEarned != 37 {
		t.Errorf("expected 37 points, got %d", result.PointsEarned)
	}
}

package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"roninads/internal/config"
	"roninads/internal/models"
)

// setupTestDB opens an isolated in-memory database per test and migrates
// every model into it.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Member{},
		&models.Session{},
		&models.PointsHistory{},
		&models.Post{},
		&models.PostView{},
		&models.ClickPass{},
		&models.PublisherPass{},
		&models.XPost{},
		&models.XPostAction{},
		&models.FeaturedAsset{},
		&models.MemberAssetVerification{},
		&models.Reward{},
		&models.RewardClaim{},
		&models.WeeklyReward{},
		&models.WeeklyWinner{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	return db
}

// testPointsConfig mirrors the production defaults.
func testPointsConfig() config.PointsConfig {
	return config.PointsConfig{
		BasePointsPerView:    1,
		SocialActionPoints:   1,
		MinViewDuration:      10,
		ViewCooldown:         24 * time.Hour,
		MaxActivePosts:       3,
		ReferralClaimBonus:   10,
		ReferralRetweetBonus: 1,
		AssetVerifyCooldown:  time.Hour,
	}
}

func createTestMember(t *testing.T, db *gorm.DB, wallet string) *models.Member {
	t.Helper()
	member := &models.Member{
		WalletAddress: wallet,
		WalletType:    WalletTypeRonin,
		IsActive:      true,
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("failed to create member: %v", err)
	}
	return member
}

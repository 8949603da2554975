package database

import (
	"fmt"
	"log"

	"roninads/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect establishes a connection to the PostgreSQL database
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Error),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection established successfully")
	return db, nil
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate(db *gorm.DB) error {
	// Identity and ledger first; everything else references members
	coreModels := []interface{}{
		&models.Member{},
		&models.Session{},
		&models.PointsHistory{},
	}

	for _, model := range coreModels {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("migration failed for %T: %w", model, err)
		}
	}

	contentModels := []interface{}{
		&models.Post{},
		&models.PostView{},
		&models.ClickPass{},
		&models.PublisherPass{},
		&models.XPost{},
		&models.XPostAction{},
		&models.FeaturedAsset{},
		&models.MemberAssetVerification{},
	}

	for _, model := range contentModels {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("migration failed for %T: %w", model, err)
		}
	}

	rewardModels := []interface{}{
		&models.Reward{},
		&models.RewardClaim{},
		&models.WeeklyReward{},
		&models.WeeklyWinner{},
	}

	for _, model := range rewardModels {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("migration failed for %T: %w", model, err)
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}

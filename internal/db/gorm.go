package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/StudyOwl-Labs/flashdeck-back/internal/config"
)

type (
	GormForkedModel struct {
		ID        uint64 `gorm:"primarykey"`
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	User struct {
		GormForkedModel
		Email    string `gorm:"unique;not null"`
		Password string `gorm:"not null"`
		Token    string `gorm:"not null"`
		Plan     string `gorm:"not null;default:free"`
		Decks    []Deck
	}

	Deck struct {
		GormForkedModel
		Title       string `gorm:"not null"`
		Description string
		UserID      uint64 `gorm:"not null;index"`
		User        User
		Cards       []Card `gorm:"constraint:OnDelete:CASCADE"`
	}

	Card struct {
		GormForkedModel
		Front  string `gorm:"not null"`
		Back   string `gorm:"not null"`
		DeckID uint64 `gorm:"not null;index"`
	}

	// AIGeneration is one ledger row per generation call. CreatedAt is the
	// generation timestamp; Date is the UTC calendar day used for the
	// per-user daily quota.
	AIGeneration struct {
		GormForkedModel
		UserID    uint64 `gorm:"not null;index:idx_ai_generations_user_date"`
		DeckID    uint64 `gorm:"not null"`
		Deck      Deck   `gorm:"constraint:OnDelete:CASCADE"`
		Date      string `gorm:"not null;index:idx_ai_generations_user_date"`
		CardCount int    `gorm:"not null"`
	}
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}); err != nil {
		return errors.Wrap(err, "migrate user")
	}
	if err := db.AutoMigrate(&Deck{}); err != nil {
		return errors.Wrap(err, "migrate deck")
	}
	if err := db.AutoMigrate(&Card{}); err != nil {
		return errors.Wrap(err, "migrate card")
	}
	if err := db.AutoMigrate(&AIGeneration{}); err != nil {
		return errors.Wrap(err, "migrate ai generation")
	}
	return nil
}

func NewGormClient(cfg *config.Config) (*gorm.DB, error) {
	newLogger := logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Info,
		Colorful:                  true,
		IgnoreRecordNotFoundError: false,
	})

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

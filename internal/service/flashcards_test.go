package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/StudyOwl-Labs/flashdeck-back/internal/db"
)

type fakeGenerator struct {
	cards []GeneratedCard
	err   error
	calls int
}

func (f *fakeGenerator) Generate(_ context.Context, _, _ string, _ []GeneratedCard, _ int) ([]GeneratedCard, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.cards, nil
}

func newTestService(t *testing.T) *Flashcards {
	t.Helper()
	return newTestServiceWithGenerator(t, &fakeGenerator{
		cards: []GeneratedCard{{Front: "front", Back: "back"}},
	})
}

func newTestServiceWithGenerator(t *testing.T, g CardGenerator) *Flashcards {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	return NewFlashcards(gdb, zap.NewNop().Sugar(), g)
}

// seedUser inserts a user directly, skipping the bcrypt cost of Register.
func seedUser(t *testing.T, s *Flashcards, email, plan string) *db.User {
	t.Helper()

	user := db.User{
		Email:    email,
		Password: "irrelevant",
		Token:    uuid.New().String(),
		Plan:     plan,
	}
	require.NoError(t, s.db.Create(&user).Error)
	return &user
}

func seedDeck(t *testing.T, s *Flashcards, user *db.User, title, description string) *db.Deck {
	t.Helper()

	deck := db.Deck{
		Title:       title,
		Description: description,
		UserID:      user.ID,
	}
	require.NoError(t, s.db.Create(&deck).Error)
	return &deck
}

func seedCard(t *testing.T, s *Flashcards, deck *db.Deck, front, back string) *db.Card {
	t.Helper()

	card := db.Card{
		Front:  front,
		Back:   back,
		DeckID: deck.ID,
	}
	require.NoError(t, s.db.Create(&card).Error)
	return &card
}

package service

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StudyOwl-Labs/flashdeck-back/internal/db"
)

func TestGenerateCards(t *testing.T) {
	gen := &fakeGenerator{cards: []GeneratedCard{
		{Front: "q1", Back: "a1"},
		{Front: "q2", Back: "a2"},
	}}
	s := newTestServiceWithGenerator(t, gen)
	ctx := context.Background()

	user := seedUser(t, s, "pro@gmail.com", PlanPro)
	deck := seedDeck(t, s, user, "Spanish", "Core vocabulary")

	cards, remaining, err := s.GenerateCards(ctx, user, deck.ID, 2)
	require.NoError(t, err)
	assert.Len(t, cards, 2)
	assert.Equal(t, AIDailyLimit-1, remaining)
	assert.Equal(t, 1, gen.calls)

	t.Run("cards are persisted", func(t *testing.T) {
		stored, err := s.CardList(user, deck.ID)
		require.NoError(t, err)
		assert.Len(t, stored, 2)
	})

	t.Run("ledger row records the actual count", func(t *testing.T) {
		records := make([]db.AIGeneration, 0)
		require.NoError(t, s.db.Where("user_id = ?", user.ID).Find(&records).Error)
		require.Len(t, records, 1)
		assert.Equal(t, deck.ID, records[0].DeckID)
		assert.Equal(t, 2, records[0].CardCount)
		assert.NotEmpty(t, records[0].Date)
	})
}

func TestGenerateCardsGates(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	t.Run("free plan is rejected", func(t *testing.T) {
		user := seedUser(t, s, "free@gmail.com", PlanFree)
		deck := seedDeck(t, s, user, "Spanish", "described")

		_, _, err := s.GenerateCards(ctx, user, deck.ID, 2)
		assert.ErrorIs(t, err, ErrPlanForbidden)
	})

	t.Run("foreign deck", func(t *testing.T) {
		owner := seedUser(t, s, "owner@gmail.com", PlanPro)
		stranger := seedUser(t, s, "stranger@gmail.com", PlanPro)
		deck := seedDeck(t, s, owner, "Spanish", "described")

		_, _, err := s.GenerateCards(ctx, stranger, deck.ID, 2)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("deck without description", func(t *testing.T) {
		user := seedUser(t, s, "pro@gmail.com", PlanPro)
		deck := seedDeck(t, s, user, "Spanish", "")

		_, _, err := s.GenerateCards(ctx, user, deck.ID, 2)
		assert.ErrorIs(t, err, ErrNoDescription)
	})

	t.Run("generator failure creates nothing", func(t *testing.T) {
		gen := &fakeGenerator{err: errors.New("model is down")}
		s := newTestServiceWithGenerator(t, gen)
		user := seedUser(t, s, "pro2@gmail.com", PlanPro)
		deck := seedDeck(t, s, user, "Spanish", "described")

		_, _, err := s.GenerateCards(ctx, user, deck.ID, 2)
		require.Error(t, err)

		cards, err := s.CardList(user, deck.ID)
		require.NoError(t, err)
		assert.Empty(t, cards)

		var count int64
		require.NoError(t, s.db.Model(&db.AIGeneration{}).Where("user_id = ?", user.ID).Count(&count).Error)
		assert.Zero(t, count)
	})
}

func TestGenerateCardsDailyQuota(t *testing.T) {
	gen := &fakeGenerator{cards: []GeneratedCard{{Front: "q", Back: "a"}}}
	s := newTestServiceWithGenerator(t, gen)
	ctx := context.Background()

	user := seedUser(t, s, "pro@gmail.com", PlanPro)
	deckA := seedDeck(t, s, user, "Spanish", "described")
	deckB := seedDeck(t, s, user, "French", "described")

	for i := 0; i < AIDailyLimit; i++ {
		_, remaining, err := s.GenerateCards(ctx, user, deckA.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, AIDailyLimit-i-1, remaining)
	}

	t.Run("limit holds across decks", func(t *testing.T) {
		_, _, err := s.GenerateCards(ctx, user, deckB.ID, 1)
		assert.ErrorIs(t, err, ErrQuotaExceeded)
	})

	t.Run("another user is unaffected", func(t *testing.T) {
		other := seedUser(t, s, "other@gmail.com", PlanPro)
		deck := seedDeck(t, s, other, "German", "described")

		_, remaining, err := s.GenerateCards(ctx, other, deck.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, AIDailyLimit-1, remaining)
	})
}

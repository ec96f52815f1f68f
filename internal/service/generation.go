package service

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/StudyOwl-Labs/flashdeck-back/internal/db"
)

const (
	// AIDailyLimit is the number of generation calls one user may make per
	// UTC calendar day, regardless of deck.
	AIDailyLimit = 10

	// DefaultGenerateCount is how many cards one generation call asks for.
	DefaultGenerateCount = 10

	dateLayout = "2006-01-02"
)

// GenerateCards produces AI cards for a deck, guarded by the plan gate and
// the daily quota. Returns the created cards and how many generation calls
// remain today. The quota is count-then-insert: two racing requests from the
// same user can both pass the check, which is accepted for a UI that issues
// requests serially.
func (s *Flashcards) GenerateCards(ctx context.Context, user *db.User, deckID uint64, count int) ([]db.Card, int, error) {
	if !HasFeature(user, FeatureAIGeneration) {
		return nil, 0, ErrPlanForbidden
	}

	deck, err := s.DeckGet(user, deckID)
	if err != nil {
		return nil, 0, err
	}
	if deck.Description == "" {
		return nil, 0, ErrNoDescription
	}

	if count <= 0 {
		count = DefaultGenerateCount
	}

	today := time.Now().UTC().Format(dateLayout)
	used, err := s.generationCount(user.ID, today)
	if err != nil {
		return nil, 0, err
	}
	if used >= AIDailyLimit {
		return nil, 0, ErrQuotaExceeded
	}

	existing, err := s.CardList(user, deckID)
	if err != nil {
		return nil, 0, err
	}
	pairs := make([]GeneratedCard, len(existing))
	for i := range existing {
		pairs[i] = GeneratedCard{Front: existing[i].Front, Back: existing[i].Back}
	}

	generated, err := s.generator.Generate(ctx, deck.Title, deck.Description, pairs, count)
	if err != nil {
		return nil, 0, errors.Wrap(err, "generate cards")
	}
	if len(generated) == 0 {
		return nil, 0, ErrEmptyGenerated
	}

	cards := make([]db.Card, len(generated))
	for i := range generated {
		cards[i] = db.Card{
			Front:  generated[i].Front,
			Back:   generated[i].Back,
			DeckID: deckID,
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if res := tx.Create(&cards); res.Error != nil {
			return errors.Wrap(res.Error, "create cards")
		}
		record := db.AIGeneration{
			UserID:    user.ID,
			DeckID:    deckID,
			Date:      today,
			CardCount: len(cards),
		}
		if res := tx.Create(&record); res.Error != nil {
			return errors.Wrap(res.Error, "record generation")
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	s.logger.Infow("generated cards", "user_id", user.ID, "deck_id", deckID, "count", len(cards))

	return cards, AIDailyLimit - used - 1, nil
}

func (s *Flashcards) generationCount(userID uint64, date string) (int, error) {
	sql, args, err := squirrel.
		Select("COUNT(*)").
		From("ai_generations").
		Where(squirrel.Eq{"user_id": userID, "date": date}).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "build sql")
	}

	var count int64
	res := s.db.Raw(sql, args...).Scan(&count)
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "scan")
	}

	return int(count), nil
}

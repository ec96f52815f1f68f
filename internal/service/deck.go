package service

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/StudyOwl-Labs/flashdeck-back/internal/db"
)

func (s *Flashcards) DeckList(user *db.User) ([]db.Deck, error) {
	decks := make([]db.Deck, 0)
	res := s.db.Where("user_id = ?", user.ID).Order("created_at DESC").Find(&decks)
	if res.Error != nil {
		return nil, res.Error
	}
	return decks, nil
}

func (s *Flashcards) DeckGet(user *db.User, deckID uint64) (*db.Deck, error) {
	deck := db.Deck{}
	res := s.db.Where("id = ? AND user_id = ?", deckID, user.ID).First(&deck)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, res.Error
	}
	return &deck, nil
}

func (s *Flashcards) DeckCreate(user *db.User, title, description string) (*db.Deck, error) {
	if !HasFeature(user, FeatureUnlimitedDecks) {
		var count int64
		res := s.db.Model(&db.Deck{}).Where("user_id = ?", user.ID).Count(&count)
		if res.Error != nil {
			return nil, errors.Wrap(res.Error, "count decks")
		}
		if count >= freeDeckLimit {
			return nil, ErrDeckLimit
		}
	}

	model := db.Deck{
		Title:       title,
		Description: description,
		UserID:      user.ID,
	}

	res := s.db.Create(&model)
	if res.Error != nil {
		return nil, res.Error
	}

	return &model, nil
}

func (s *Flashcards) DeckUpdate(user *db.User, deckID uint64, title string, description *string) (*db.Deck, error) {
	values := map[string]interface{}{"title": title}
	if description != nil {
		values["description"] = *description
	}

	res := s.db.Model(&db.Deck{}).
		Where("id = ? AND user_id = ?", deckID, user.ID).
		Updates(values)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "update deck")
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	return s.DeckGet(user, deckID)
}

func (s *Flashcards) DeckDelete(user *db.User, deckID uint64) error {
	res := s.db.Where("user_id = ?", user.ID).Delete(&db.Deck{}, deckID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

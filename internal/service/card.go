package service

import (
	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/StudyOwl-Labs/flashdeck-back/internal/db"
)

type CardBatchUpdate struct {
	ID    uint64
	Front string
	Back  string
}

// CardList returns the cards of a deck the user owns. Ownership rides on the
// join: a foreign deck simply yields no rows, so callers that need to tell
// "empty deck" from "not yours" check the deck first.
func (s *Flashcards) CardList(user *db.User, deckID uint64) ([]db.Card, error) {
	sql, args, err := squirrel.
		Select("c.id", "c.front", "c.back", "c.deck_id", "c.created_at", "c.updated_at").
		From("cards c").
		Join("decks d ON c.deck_id = d.id").
		Where(squirrel.Eq{"c.deck_id": deckID, "d.user_id": user.ID}).
		OrderBy("c.id").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build sql")
	}

	cards := make([]db.Card, 0)
	res := s.db.Raw(sql, args...).Scan(&cards)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "scan")
	}

	return cards, nil
}

func (s *Flashcards) CardGet(user *db.User, cardID uint64) (*db.Card, error) {
	sql, args, err := squirrel.
		Select("c.id", "c.front", "c.back", "c.deck_id", "c.created_at", "c.updated_at").
		From("cards c").
		Join("decks d ON c.deck_id = d.id").
		Where(squirrel.Eq{"c.id": cardID, "d.user_id": user.ID}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build sql")
	}

	card := db.Card{}
	res := s.db.Raw(sql, args...).Scan(&card)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "scan")
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	return &card, nil
}

func (s *Flashcards) CardCreate(user *db.User, deckID uint64, front, back string) (*db.Card, error) {
	if _, err := s.DeckGet(user, deckID); err != nil {
		return nil, err
	}

	model := db.Card{
		Front:  front,
		Back:   back,
		DeckID: deckID,
	}

	res := s.db.Create(&model)
	if res.Error != nil {
		return nil, res.Error
	}

	return &model, nil
}

func (s *Flashcards) CardUpdate(user *db.User, cardID uint64, front, back *string) (*db.Card, error) {
	card, err := s.CardGet(user, cardID)
	if err != nil {
		return nil, err
	}

	values := map[string]interface{}{}
	if front != nil {
		values["front"] = *front
	}
	if back != nil {
		values["back"] = *back
	}
	if len(values) == 0 {
		return card, nil
	}

	res := s.db.Model(&db.Card{GormForkedModel: db.GormForkedModel{ID: card.ID}}).Updates(values)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "update card")
	}

	return s.CardGet(user, cardID)
}

func (s *Flashcards) CardDelete(user *db.User, cardID uint64) error {
	card, err := s.CardGet(user, cardID)
	if err != nil {
		return err
	}

	res := s.db.Delete(&db.Card{}, card.ID)
	if res.Error != nil {
		return res.Error
	}
	return nil
}

// CardBatchMutate applies a list of updates and a list of deletions against
// one deck. Every entry is re-checked against the deck; a single foreign or
// missing card aborts the batch. The whole thing runs in one transaction, so
// an aborted batch leaves the deck untouched.
func (s *Flashcards) CardBatchMutate(user *db.User, deckID uint64, updates []CardBatchUpdate, deleteIDs []uint64) (int64, int64, error) {
	if _, err := s.DeckGet(user, deckID); err != nil {
		return 0, 0, err
	}

	var updated, deleted int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			card := db.Card{}
			res := tx.Where("id = ? AND deck_id = ?", u.ID, deckID).First(&card)
			if res.Error != nil {
				if errors.Is(res.Error, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return res.Error
			}

			res = tx.Model(&card).Updates(map[string]interface{}{
				"front": u.Front,
				"back":  u.Back,
			})
			if res.Error != nil {
				return errors.Wrap(res.Error, "update card")
			}
			updated++
		}

		for _, id := range deleteIDs {
			res := tx.Where("deck_id = ?", deckID).Delete(&db.Card{}, id)
			if res.Error != nil {
				return errors.Wrap(res.Error, "delete card")
			}
			if res.RowsAffected == 0 {
				return ErrNotFound
			}
			deleted += res.RowsAffected
		}

		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	return updated, deleted, nil
}

package service

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrLoginUserNotFound         = errors.New("user not found")
	ErrLoginPasswordDoesNotMatch = errors.New("password does not match")

	// ErrNotFound covers both "record does not exist" and "record belongs to
	// another user". The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("not found")

	ErrDeckLimit      = errors.New("free plan is limited to 3 decks")
	ErrQuotaExceeded  = errors.New("daily AI generation limit reached")
	ErrPlanForbidden  = errors.New("current plan does not include AI generation")
	ErrNoDescription  = errors.New("deck needs a description before cards can be generated")
	ErrEmptyGenerated = errors.New("generator returned no cards")
)

type (
	// GeneratedCard is a front/back pair coming from or going to the card
	// generator.
	GeneratedCard struct {
		Front string
		Back  string
	}

	// CardGenerator produces new cards for a deck. Implementations must
	// return cards that already satisfy the 1-1000 character bounds, or fail.
	CardGenerator interface {
		Generate(ctx context.Context, title, description string, existing []GeneratedCard, count int) ([]GeneratedCard, error)
	}

	Flashcards struct {
		db        *gorm.DB
		logger    *zap.SugaredLogger
		generator CardGenerator
	}
)

func NewFlashcards(db *gorm.DB, l *zap.SugaredLogger, g CardGenerator) *Flashcards {
	return &Flashcards{
		db:        db,
		logger:    l,
		generator: g,
	}
}

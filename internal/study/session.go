package study

import (
	"math/rand"
)

type (
	// Card is the slice of a stored card a session needs.
	Card struct {
		ID    uint64
		Front string
		Back  string
	}

	// Session is the navigation state over an ordered list of cards. It is
	// not safe for concurrent use; the Manager serializes access.
	Session struct {
		original []Card
		cards    []Card
		index    int
		flipped  bool
		known    map[uint64]struct{}
		complete bool
	}
)

func NewSession(cards []Card) *Session {
	original := make([]Card, len(cards))
	copy(original, cards)
	current := make([]Card, len(cards))
	copy(current, cards)
	return &Session{
		original: original,
		cards:    current,
		known:    make(map[uint64]struct{}),
	}
}

// Next advances to the following card, or completes the session when the
// current card is the last one.
func (s *Session) Next() {
	if s.complete {
		return
	}
	if s.index < len(s.cards)-1 {
		s.index++
		s.flipped = false
		return
	}
	s.complete = true
}

// Previous steps back one card, flooring at the first.
func (s *Session) Previous() {
	if s.complete || s.index == 0 {
		return
	}
	s.index--
	s.flipped = false
}

func (s *Session) Flip() {
	if s.complete {
		return
	}
	s.flipped = !s.flipped
}

// ToggleKnown flips the known mark on the current card.
func (s *Session) ToggleKnown() {
	if s.complete || len(s.cards) == 0 {
		return
	}
	id := s.cards[s.index].ID
	if _, ok := s.known[id]; ok {
		delete(s.known, id)
		return
	}
	s.known[id] = struct{}{}
}

// Shuffle randomizes the card order and rewinds to the first card. Known
// marks survive a shuffle.
func (s *Session) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(s.cards), func(i, j int) {
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	})
	s.index = 0
	s.flipped = false
	s.complete = false
}

// Restart rewinds the session keeping the current card order.
func (s *Session) Restart() {
	s.index = 0
	s.flipped = false
	s.known = make(map[uint64]struct{})
	s.complete = false
}

// Reset restores the original card order and rewinds.
func (s *Session) Reset() {
	s.cards = make([]Card, len(s.original))
	copy(s.cards, s.original)
	s.Restart()
}

func (s *Session) Current() (Card, bool) {
	if s.complete || len(s.cards) == 0 {
		return Card{}, false
	}
	return s.cards[s.index], true
}

func (s *Session) Index() int     { return s.index }
func (s *Session) Len() int       { return len(s.cards) }
func (s *Session) Flipped() bool  { return s.flipped }
func (s *Session) Complete() bool { return s.complete }

func (s *Session) KnownCount() int { return len(s.known) }

func (s *Session) Known(id uint64) bool {
	_, ok := s.known[id]
	return ok
}

// CardIDs returns the ids in current order.
func (s *Session) CardIDs() []uint64 {
	ids := make([]uint64, len(s.cards))
	for i := range s.cards {
		ids[i] = s.cards[i].ID
	}
	return ids
}

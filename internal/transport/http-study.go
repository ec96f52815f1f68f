package transport

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/StudyOwl-Labs/flashdeck-back/internal/study"
)

type (
	StudyCardResp struct {
		ID    uint64 `json:"id"`
		Front string `json:"front"`
		Back  string `json:"back,omitempty"`
		Known bool   `json:"known"`
	}

	StudyResp struct {
		SessionID string         `json:"session_id"`
		Index     int            `json:"index"`
		Total     int            `json:"total"`
		Flipped   bool           `json:"flipped"`
		Complete  bool           `json:"complete"`
		Known     int            `json:"known"`
		Card      *StudyCardResp `json:"card,omitempty"`
	}
)

func (s *HTTPServer) StudyStart(c echo.Context) error {
	deckID, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	if _, err := s.svc.DeckGet(user, deckID); err != nil {
		return MapServiceError(err)
	}
	cards, err := s.svc.CardList(user, deckID)
	if err != nil {
		return err
	}
	if len(cards) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "deck has no cards to study")
	}

	studyCards := make([]study.Card, len(cards))
	for i := range cards {
		studyCards[i] = study.Card{
			ID:    cards[i].ID,
			Front: cards[i].Front,
			Back:  cards[i].Back,
		}
	}

	id, session := s.sessions.Start(user.ID, studyCards)
	return c.JSON(http.StatusOK, studyResp(id, session))
}

func (s *HTTPServer) StudyGet(c echo.Context) error {
	id, err := GetParam(c, "id")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	var resp StudyResp
	err = s.sessions.Do(user.ID, id, func(session *study.Session) {
		resp = studyResp(id, session)
	})
	if err != nil {
		return mapStudyError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *HTTPServer) StudyAction(c echo.Context) error {
	id, err := GetParam(c, "id")
	if err != nil {
		return err
	}
	action, err := GetParam(c, "action")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	var resp StudyResp
	apply := func(fn func(*study.Session)) error {
		return s.sessions.Do(user.ID, id, func(session *study.Session) {
			fn(session)
			resp = studyResp(id, session)
		})
	}

	switch action {
	case "next":
		err = apply(func(s *study.Session) { s.Next() })
	case "previous":
		err = apply(func(s *study.Session) { s.Previous() })
	case "flip":
		err = apply(func(s *study.Session) { s.Flip() })
	case "known":
		err = apply(func(s *study.Session) { s.ToggleKnown() })
	case "restart":
		err = apply(func(s *study.Session) { s.Restart() })
	case "reset":
		err = apply(func(s *study.Session) { s.Reset() })
	case "shuffle":
		if err = s.sessions.Shuffle(user.ID, id); err == nil {
			err = apply(func(*study.Session) {})
		}
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown study action '"+action+"'")
	}
	if err != nil {
		return mapStudyError(err)
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *HTTPServer) StudyEnd(c echo.Context) error {
	id, err := GetParam(c, "id")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	if err := s.sessions.End(user.ID, id); err != nil {
		return mapStudyError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func mapStudyError(err error) error {
	if errors.Is(err, study.ErrSessionNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return err
}

func studyResp(id string, session *study.Session) StudyResp {
	resp := StudyResp{
		SessionID: id,
		Index:     session.Index(),
		Total:     session.Len(),
		Flipped:   session.Flipped(),
		Complete:  session.Complete(),
		Known:     session.KnownCount(),
	}
	if card, ok := session.Current(); ok {
		cardResp := StudyCardResp{
			ID:    card.ID,
			Front: card.Front,
			Known: session.Known(card.ID),
		}
		if session.Flipped() {
			cardResp.Back = card.Back
		}
		resp.Card = &cardResp
	}
	return resp
}

package transport

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/StudyOwl-Labs/flashdeck-back/internal/config"
	"github.com/StudyOwl-Labs/flashdeck-back/internal/db"
	"github.com/StudyOwl-Labs/flashdeck-back/internal/service"
	"github.com/StudyOwl-Labs/flashdeck-back/internal/study"
)

type (
	UserReq struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=12"`
	}

	DeckReq struct {
		Title       string  `json:"title" validate:"required,max=100"`
		Description *string `json:"description" validate:"omitempty,max=500"`
	}

	DeckResp struct {
		ID          uint64 `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description,omitempty"`
	}

	CardReq struct {
		Front string `json:"front" validate:"required,max=1000"`
		Back  string `json:"back" validate:"required,max=1000"`
	}

	CardPatchReq struct {
		Front *string `json:"front" validate:"omitempty,min=1,max=1000"`
		Back  *string `json:"back" validate:"omitempty,min=1,max=1000"`
	}

	CardResp struct {
		ID     uint64 `json:"id"`
		DeckID uint64 `json:"deck_id"`
		Front  string `json:"front"`
		Back   string `json:"back"`
	}

	BatchCardUpdate struct {
		ID    uint64 `json:"id" validate:"required"`
		Front string `json:"front" validate:"required,max=1000"`
		Back  string `json:"back" validate:"required,max=1000"`
	}

	BatchReq struct {
		Updates []BatchCardUpdate `json:"updates" validate:"dive"`
		Deletes []uint64          `json:"deletes"`
	}

	BatchResp struct {
		Updated int64 `json:"updated"`
		Deleted int64 `json:"deleted"`
	}

	GenerateReq struct {
		Count int `json:"count" validate:"omitempty,min=1,max=20"`
	}

	GenerateResp struct {
		Cards          []CardResp `json:"cards"`
		RemainingToday int        `json:"remaining_today"`
	}

	CustomValidator struct {
		validator *validator.Validate
	}

	HTTPServer struct {
		svc      *service.Flashcards
		sessions *study.Manager
		logger   *zap.SugaredLogger
	}
)

func NewHTTPServer(lc fx.Lifecycle, cfg *config.Config, svc *service.Flashcards, sessions *study.Manager, logger *zap.SugaredLogger) *HTTPServer {
	instance := HTTPServer{
		svc:      svc,
		sessions: sessions,
		logger:   logger,
	}

	e := instance.routes()

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				listen := cfg.Host + ":" + cfg.Port
				if err := e.Start(listen); err != nil && err != http.ErrServerClosed {
					e.Logger.Fatal("shutting down the server")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping HTTP server.")
			return e.Shutdown(ctx)
		},
	})

	return &instance
}

func (s *HTTPServer) routes() *echo.Echo {
	e := echo.New()

	e.POST("/auth/register", s.Register)
	e.POST("/auth/login", s.Login)
	e.POST("/auth/upgrade", s.Upgrade)

	deckG := e.Group("/deck")
	deckG.GET("", s.DeckList)
	deckG.POST("", s.DeckCreate)
	deckG.GET("/:id", s.DeckGet)
	deckG.PATCH("/:id", s.DeckUpdate)
	deckG.DELETE("/:id", s.DeckDelete)
	deckG.GET("/:id/card", s.CardList)
	deckG.POST("/:id/card", s.CardCreate)
	deckG.POST("/:id/card/batch", s.CardBatch)
	deckG.POST("/:id/generate", s.Generate)
	deckG.POST("/:id/study", s.StudyStart)

	cardG := e.Group("/card")
	cardG.PATCH("/:id", s.CardUpdate)
	cardG.DELETE("/:id", s.CardDelete)

	studyG := e.Group("/study")
	studyG.GET("/:id", s.StudyGet)
	studyG.POST("/:id/:action", s.StudyAction)
	studyG.DELETE("/:id", s.StudyEnd)

	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	e.Use(middleware.CORS())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Use(s.AuthMiddleware)

	e.Validator = &CustomValidator{validator: validator.New()}

	echo.NotFoundHandler = func(c echo.Context) error {
		return c.NoContent(http.StatusNotFound)
	}

	return e
}

func (s *HTTPServer) Register(c echo.Context) error {
	u := UserReq{}
	if err := BindAndValidate(c, &u); err != nil {
		return err
	}

	token, err := s.svc.Register(u.Email, u.Password)
	if err != nil {
		return err
	}
	resp := struct {
		Token string `json:"token"`
	}{
		Token: token,
	}
	return c.JSON(http.StatusOK, &resp)
}

func (s *HTTPServer) Login(c echo.Context) error {
	u := UserReq{}
	if err := BindAndValidate(c, &u); err != nil {
		return err
	}

	token, err := s.svc.Login(u.Email, u.Password)
	if err != nil {
		if errors.Is(err, service.ErrLoginUserNotFound) || errors.Is(err, service.ErrLoginPasswordDoesNotMatch) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}
		return err
	}
	resp := struct {
		Token string `json:"token"`
	}{
		Token: token,
	}
	return c.JSON(http.StatusOK, &resp)
}

func (s *HTTPServer) Upgrade(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	if err := s.svc.Upgrade(user); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) DeckList(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	decks, err := s.svc.DeckList(user)
	if err != nil {
		return err
	}

	resp := make([]DeckResp, len(decks))
	for i := range decks {
		resp[i] = deckResp(&decks[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *HTTPServer) DeckGet(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	deck, err := s.svc.DeckGet(user, id)
	if err != nil {
		return MapServiceError(err)
	}
	return c.JSON(http.StatusOK, deckResp(deck))
}

func (s *HTTPServer) DeckCreate(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	req := DeckReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	description := ""
	if req.Description != nil {
		description = *req.Description
	}

	deck, err := s.svc.DeckCreate(user, req.Title, description)
	if err != nil {
		return MapServiceError(err)
	}
	return c.JSON(http.StatusOK, deckResp(deck))
}

func (s *HTTPServer) DeckUpdate(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	req := DeckReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	deck, err := s.svc.DeckUpdate(user, id, req.Title, req.Description)
	if err != nil {
		return MapServiceError(err)
	}
	return c.JSON(http.StatusOK, deckResp(deck))
}

func (s *HTTPServer) DeckDelete(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	if err := s.svc.DeckDelete(user, id); err != nil {
		return MapServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) CardList(c echo.Context) error {
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

	resp := make([]CardResp, len(cards))
	for i := range cards {
		resp[i] = cardResp(&cards[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *HTTPServer) CardCreate(c echo.Context) error {
	deckID, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	req := CardReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	card, err := s.svc.CardCreate(user, deckID, req.Front, req.Back)
	if err != nil {
		return MapServiceError(err)
	}
	return c.JSON(http.StatusOK, cardResp(card))
}

func (s *HTTPServer) CardUpdate(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	req := CardPatchReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	card, err := s.svc.CardUpdate(user, id, req.Front, req.Back)
	if err != nil {
		return MapServiceError(err)
	}
	return c.JSON(http.StatusOK, cardResp(card))
}

func (s *HTTPServer) CardDelete(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	if err := s.svc.CardDelete(user, id); err != nil {
		return MapServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) CardBatch(c echo.Context) error {
	deckID, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	req := BatchReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	updates := make([]service.CardBatchUpdate, len(req.Updates))
	for i := range req.Updates {
		updates[i] = service.CardBatchUpdate{
			ID:    req.Updates[i].ID,
			Front: req.Updates[i].Front,
			Back:  req.Updates[i].Back,
		}
	}

	updated, deleted, err := s.svc.CardBatchMutate(user, deckID, updates, req.Deletes)
	if err != nil {
		return MapServiceError(err)
	}
	return c.JSON(http.StatusOK, BatchResp{Updated: updated, Deleted: deleted})
}

func (s *HTTPServer) Generate(c echo.Context) error {
	deckID, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	req := GenerateReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	cards, remaining, err := s.svc.GenerateCards(c.Request().Context(), user, deckID, req.Count)
	if err != nil {
		return MapServiceError(err)
	}

	resp := GenerateResp{
		Cards:          make([]CardResp, len(cards)),
		RemainingToday: remaining,
	}
	for i := range cards {
		resp.Cards[i] = cardResp(&cards[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *HTTPServer) AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.Path() == "/auth/register" || c.Path() == "/auth/login" || c.Path() == "/ping" {
			return next(c)
		}
		token := ""
		for key, values := range c.Request().Header {
			if strings.ToLower(key) == "x-token" {
				token = values[0]
				break
			}
		}
		if token == "" {
			return c.NoContent(http.StatusUnauthorized)
		}
		user, err := s.svc.UserByToken(token)
		if err != nil {
			s.logger.Error(errors.Wrap(err, "find user in db"))
			return c.NoContent(http.StatusUnauthorized)
		}

		c.Set("user", user)
		return next(c)
	}
}

////////

// MapServiceError translates service sentinel errors into HTTP ones. The
// body stays a single message string.
func MapServiceError(err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrDeckLimit), errors.Is(err, service.ErrQuotaExceeded):
		return echo.NewHTTPError(http.StatusTooManyRequests, err.Error())
	case errors.Is(err, service.ErrPlanForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrNoDescription):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrEmptyGenerated):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	default:
		return err
	}
}

func deckResp(d *db.Deck) DeckResp {
	return DeckResp{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
	}
}

func cardResp(c *db.Card) CardResp {
	return CardResp{
		ID:     c.ID,
		DeckID: c.DeckID,
		Front:  c.Front,
		Back:   c.Back,
	}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func BindAndValidate(c echo.Context, v interface{}) error {
	var err error
	if err = c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err = c.Validate(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func GetUserFromContext(c echo.Context) (*db.User, error) {
	user, _ := c.Get("user").(*db.User)
	if user == nil {
		return nil, errors.New("no user found in context")
	}
	return user, nil
}

func GetParam(c echo.Context, name string) (string, error) {
	value := c.Param(name)
	if value == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid path param '"+name+"'")
	}
	return value, nil
}

func GetAndParseParam(c echo.Context, name string) (uint64, error) {
	v, e := GetParam(c, name)
	if e != nil {
		return 0, e
	}
	vv, e := strconv.ParseUint(v, 10, 64)
	if e != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid path param '"+name+"'")
	}
	return vv, nil
}

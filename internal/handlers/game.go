package handlers

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minefield/internal/config"
	"github.com/vancomm/minefield/internal/middleware"
	"github.com/vancomm/minefield/internal/mines"
	"github.com/vancomm/minefield/internal/session"
)

type GameHandler struct {
	log      logrus.FieldLogger
	registry *session.Registry
	jwt      *config.JWT
	ws       *config.WebSocket
}

func NewGameHandler(
	log logrus.FieldLogger,
	registry *session.Registry,
	jwt *config.JWT,
	ws *config.WebSocket,
) *GameHandler {
	return &GameHandler{
		log:      log,
		registry: registry,
		jwt:      jwt,
		ws:       ws,
	}
}

func (h *GameHandler) Register(mux *http.ServeMux) {
	auth := middleware.GameAuth(h.log, h.jwt)

	mux.HandleFunc("POST /game", h.NewGame)
	mux.Handle("GET /game/{id}", auth(http.HandlerFunc(h.Fetch)))
	mux.Handle("POST /game/{id}/move", auth(http.HandlerFunc(h.MakeAMove)))
	mux.Handle("POST /game/{id}/restart", auth(http.HandlerFunc(h.Restart)))
	mux.Handle("POST /game/{id}/forfeit", auth(http.HandlerFunc(h.Forfeit)))
	mux.Handle("GET /game/{id}/connect", auth(http.HandlerFunc(h.ConnectWS)))
}

// fail maps engine and registry errors onto HTTP statuses.
func (h *GameHandler) fail(w http.ResponseWriter, err error) {
	var ve *mines.ValidationError
	switch {
	case errors.As(err, &ve), errors.Is(err, mines.ErrOutOfBounds):
		SendErrorOrLog(w, h.log, http.StatusBadRequest, err)
	case errors.Is(err, session.ErrNotFound):
		SendErrorOrLog(w, h.log, http.StatusNotFound, err)
	default:
		h.log.WithError(err).Error("unexpected error")
		SendErrorOrLog(w, h.log, http.StatusInternalServerError, errors.New("internal error"))
	}
}

func respond(s *session.Session, game *mines.GameState, opened mines.Flood) gameResponse {
	return gameResponse{
		ID:     s.ID,
		Seed:   game.Params.Seed(),
		Game:   game.View(),
		Opened: openedCells(opened),
	}
}

func (h *GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	params, err := decodeNewGame(r.URL.Query())
	if err != nil {
		SendErrorOrLog(w, h.log, http.StatusBadRequest, err)
		return
	}

	s, err := h.registry.Create(params)
	if err != nil {
		h.fail(w, err)
		return
	}

	token, err := h.jwt.IssueGameToken(s.ID)
	if err != nil {
		h.registry.Remove(s.ID)
		h.fail(w, err)
		return
	}

	var resp gameResponse
	_ = s.Do(func(game *mines.GameState) error {
		resp = respond(s, game, nil)
		return nil
	})
	resp.Token = token

	SendJSONOrLog(w, h.log, resp)
}

func (h *GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	s, err := h.registry.Get(r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}

	var resp gameResponse
	_ = s.Do(func(game *mines.GameState) error {
		resp = respond(s, game, nil)
		return nil
	})

	SendJSONOrLog(w, h.log, resp)
}

func (h *GameHandler) MakeAMove(w http.ResponseWriter, r *http.Request) {
	move, p, err := decodeMove(r.URL.Query())
	if err != nil {
		SendErrorOrLog(w, h.log, http.StatusBadRequest, err)
		return
	}

	s, err := h.registry.Get(r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}

	var resp gameResponse
	err = s.Do(func(game *mines.GameState) error {
		before := game.Status()
		opened, err := move.Apply(game, p)
		if err != nil {
			return err
		}
		if after := game.Status(); after != before {
			h.log.WithFields(logrus.Fields{
				"session": s.ID,
				"status":  after.String(),
			}).Info("game finished")
		}
		resp = respond(s, game, opened)
		return nil
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	SendJSONOrLog(w, h.log, resp)
}

func (h *GameHandler) Restart(w http.ResponseWriter, r *http.Request) {
	s, err := h.registry.Restart(r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}

	var resp gameResponse
	_ = s.Do(func(game *mines.GameState) error {
		resp = respond(s, game, nil)
		return nil
	})

	SendJSONOrLog(w, h.log, resp)
}

func (h *GameHandler) Forfeit(w http.ResponseWriter, r *http.Request) {
	s, err := h.registry.Get(r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}

	var resp gameResponse
	_ = s.Do(func(game *mines.GameState) error {
		game.Forfeit()
		resp = respond(s, game, nil)
		return nil
	})

	SendJSONOrLog(w, h.log, resp)
}

// internal/httpserver/routes_game.go
//
// HTTP routes for the memory card game, mounted under /game:
//   - GET  /game         → current view of the caller's session
//   - POST /game/start   → start a round at {"mode": "easy"|"medium"|"hard"}
//   - POST /game/select  → pick {"index": n} on the current board
//   - POST /game/quit    → abandon the round, back to mode selection
//   - POST /game/again   → replay at the current mode
//
// Start/again answer 202 with loading=true; the board arrives
// asynchronously, so clients poll GET /game until loading clears.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/memory-cards/apps/go-server/internal/game"
)

type startReq struct {
	Mode string `json:"mode"`
}

type selectReq struct {
	Index *int `json:"index"`
}

// handleView returns the caller's current view.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	var v game.View
	playerFrom(r.Context()).Do(func(sess *game.Session) { v = sess.View() })
	writeJSON(w, http.StatusOK, v)
}

// handleStart starts a new round and schedules the card batch fetch.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	mode, err := game.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_mode")
		return
	}
	s.transition(w, r, http.StatusAccepted, func(sess *game.Session) ([]game.Effect, error) {
		return sess.Start(mode)
	})
}

// handleSelect applies a card pick.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if req.Index == nil {
		writeError(w, http.StatusBadRequest, "missing_index")
		return
	}
	s.transition(w, r, http.StatusOK, func(sess *game.Session) ([]game.Effect, error) {
		return sess.SelectCard(*req.Index)
	})
}

// handleQuit abandons the current round.
func (s *Server) handleQuit(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, http.StatusOK, func(sess *game.Session) ([]game.Effect, error) {
		return nil, sess.Quit()
	})
}

// handleAgain replays at the current mode.
func (s *Server) handleAgain(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, http.StatusAccepted, func(sess *game.Session) ([]game.Effect, error) {
		return sess.PlayAgain()
	})
}

// transition runs op against the caller's session, schedules any effects,
// and writes the post-transition view.
func (s *Server) transition(w http.ResponseWriter, r *http.Request, okStatus int,
	op func(*game.Session) ([]game.Effect, error)) {
	p := playerFrom(r.Context())

	var (
		effs []game.Effect
		err  error
		v    game.View
	)
	p.Do(func(sess *game.Session) {
		effs, err = op(sess)
		v = sess.View()
	})
	if err != nil {
		status, code := errorStatus(err)
		hlog.FromRequest(r).Debug().Err(err).Str("player", p.ID).Msg("rejected transition")
		writeError(w, status, code)
		return
	}
	s.runEffects(p, effs)
	writeJSON(w, okStatus, v)
}

// errorStatus maps engine errors onto HTTP status + error code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, game.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, game.ErrCardIndex):
		return http.StatusBadRequest, "bad_index"
	case errors.Is(err, game.ErrUnknownMode):
		return http.StatusBadRequest, "unknown_mode"
	}
	return http.StatusInternalServerError, "internal"
}

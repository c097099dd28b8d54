// internal/httpserver/server.go
//
// HTTP server wiring for the Memory Cards backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs,
//     access logs).
//   - Public endpoints: "/", "/health", "/api".
//   - Game endpoints under /game, bound to the caller's player session.
//   - Running engine effects off the request path and applying the results.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Each browser gets a player identified by a signed token cookie; a
//     missing or invalid token mints a new player.

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/memory-cards/apps/go-server/assets"
	"github.com/robalobadob/memory-cards/apps/go-server/internal/effects"
	"github.com/robalobadob/memory-cards/apps/go-server/internal/game"
	"github.com/robalobadob/memory-cards/apps/go-server/internal/store"
)

// Options carries the server's collaborators and settings.
type Options struct {
	Store        store.Store
	Gateway      effects.Gateway
	Secret       []byte        // HS256 key for player tokens
	ClientOrigin string        // CORS origin allowed with credentials
	Secure       bool          // production cookies (Secure, SameSite=None)
	SessionTTL   time.Duration // player token/cookie lifetime
	FetchTimeout time.Duration // bound on each gateway call
	NewSession   func() *game.Session
}

// Server bundles router, player store and gateway.
type Server struct {
	r    *chi.Mux
	opts Options

	// dispatch schedules effect work; tests swap it for a synchronous or
	// queued runner.
	dispatch func(func())
}

// New constructs a Server, installs middleware, and registers routes.
func New(opts Options) *Server {
	if opts.NewSession == nil {
		opts.NewSession = func() *game.Session { return game.NewSession() }
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 6 * time.Hour
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 10 * time.Second
	}
	s := &Server{
		r:        chi.NewRouter(),
		opts:     opts,
		dispatch: func(f func()) { go f() },
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(hlog.NewHandler(log.Logger))
	s.r.Use(accessLog)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(cors(opts.ClientOrigin))

	// --- diagnostics ---
	s.r.Get("/", s.handleIndex)
	s.r.Get("/api", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"memory-cards-go","endpoints":["/health","GET /game","POST /game/start","POST /game/select","POST /game/quit","POST /game/again"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	// Game endpoints; every request is bound to a player session.
	s.r.Route("/game", func(r chi.Router) {
		r.Use(s.withPlayer)
		r.Get("/", s.handleView)
		r.Post("/start", s.handleStart)
		r.Post("/select", s.handleSelect)
		r.Post("/quit", s.handleQuit)
		r.Post("/again", s.handleAgain)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// handleIndex serves the embedded browser page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := assets.IndexHTML()
	if err != nil {
		log.Error().Err(err).Msg("read index page")
		writeError(w, http.StatusInternalServerError, "asset_missing")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

// runEffects performs effs off the request path and applies each result to
// the player's session. Stale results are dropped by the engine.
func (s *Server) runEffects(p *store.Player, effs []game.Effect) {
	for _, eff := range effs {
		s.dispatch(func() {
			ctx, cancel := context.WithTimeout(context.Background(), s.opts.FetchTimeout)
			defer cancel()

			done := effects.Execute(ctx, s.opts.Gateway, eff)
			var applied bool
			p.Do(func(sess *game.Session) { applied = done(sess) })
			if !applied {
				log.Debug().Str("player", p.ID).Type("effect", eff).Msg("discarded stale effect result")
			}
		})
	}
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

// writeError writes {"error": code}.
func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

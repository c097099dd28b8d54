package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/memory-cards/apps/go-server/internal/store"
)

const (
	playerCookieName  = "memory_player"
	playerTokenHeader = "X-Player-Token"
)

// ctxPlayerKey is the context key type for storing *store.Player.
type ctxPlayerKey struct{}

// playerFrom returns the player bound by withPlayer.
func playerFrom(ctx context.Context) *store.Player {
	p, _ := ctx.Value(ctxPlayerKey{}).(*store.Player)
	return p
}

// withPlayer binds the caller's player to the request, minting a new player
// (and token cookie) when the presented token is missing, invalid or refers
// to a player that has since been swept.
func (s *Server) withPlayer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := s.lookupPlayer(r)
		if err != nil {
			p, err = s.newPlayer(w, r)
			if err != nil {
				hlog.FromRequest(r).Error().Err(err).Msg("create player")
				writeError(w, http.StatusInternalServerError, "player_failed")
				return
			}
		}
		ctx := context.WithValue(r.Context(), ctxPlayerKey{}, p)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) lookupPlayer(r *http.Request) (*store.Player, error) {
	tok := bearerOrCookie(r)
	if tok == "" {
		return nil, errors.New("no token")
	}
	id, err := s.parseToken(tok)
	if err != nil {
		return nil, err
	}
	return s.opts.Store.Get(r.Context(), id)
}

func (s *Server) newPlayer(w http.ResponseWriter, r *http.Request) (*store.Player, error) {
	p := store.NewPlayer(uuid.NewString(), s.opts.NewSession())
	if err := s.opts.Store.Save(r.Context(), p); err != nil {
		return nil, err
	}
	tok, exp, err := s.signToken(p.ID)
	if err != nil {
		return nil, err
	}
	s.setPlayerCookie(w, tok, exp)
	w.Header().Set(playerTokenHeader, tok)
	hlog.FromRequest(r).Info().Str("player", p.ID).Msg("new player")
	return p, nil
}

// signToken creates an HS256 token carrying the player ID in "sid".
func (s *Server) signToken(playerID string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.opts.SessionTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": playerID,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	})
	ss, err := t.SignedString(s.opts.Secret)
	return ss, exp, err
}

// parseToken verifies tok and returns its player ID.
func (s *Server) parseToken(tok string) (string, error) {
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(*jwt.Token) (interface{}, error) {
		return s.opts.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !t.Valid {
		return "", errors.New("invalid token")
	}
	id, _ := claims["sid"].(string)
	if id == "" {
		return "", errors.New("invalid token")
	}
	return id, nil
}

// setPlayerCookie writes the player token cookie with appropriate security attributes.
func (s *Server) setPlayerCookie(w http.ResponseWriter, token string, exp time.Time) {
	sameSite := http.SameSiteLaxMode
	if s.opts.Secure {
		sameSite = http.SameSiteNoneMode // required for cross-site clients when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// bearerOrCookie extracts a bearer token from Authorization header or the player cookie.
func bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(playerCookieName); err == nil {
		return c.Value
	}
	return ""
}

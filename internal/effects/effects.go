// internal/effects/effects.go
//
// Runs the side effects requested by game transitions.
//
// Execute performs the I/O and returns a Completion; the host applies the
// Completion to the owning session under whatever serialization it uses.
// Stale completions are dropped by the engine's epoch check, so hosts never
// need to cancel anything.

package effects

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/memory-cards/apps/go-server/internal/game"
)

// Gateway is the external data source the engine's effects are served from.
type Gateway interface {
	FetchCardBatch(ctx context.Context, count int) ([]game.Card, error)
	FetchResultImage(ctx context.Context, term string) (string, error)
}

// Completion hands an effect's result back to a session. It reports whether
// the result was applied (false means it was stale).
type Completion func(s *game.Session) bool

// Execute performs eff against gw. Unknown effects complete as a no-op.
func Execute(ctx context.Context, gw Gateway, eff game.Effect) Completion {
	switch e := eff.(type) {
	case game.FetchCards:
		cards, err := gw.FetchCardBatch(ctx, e.Count)
		if err != nil {
			log.Warn().Err(err).Uint64("epoch", e.Epoch).Int("count", e.Count).Msg("card batch fetch failed")
			return func(s *game.Session) bool { return s.FailCards(e.Epoch, err) }
		}
		return func(s *game.Session) bool { return s.ApplyCards(e.Epoch, cards) }

	case game.FetchResultImage:
		url, err := gw.FetchResultImage(ctx, e.Term)
		if err != nil {
			log.Warn().Err(err).Uint64("epoch", e.Epoch).Str("term", e.Term).Msg("result image fetch failed")
			return func(s *game.Session) bool { return s.FailResultImage(e.Epoch, err) }
		}
		return func(s *game.Session) bool { return s.ApplyResultImage(e.Epoch, url) }
	}
	log.Error().Type("effect", eff).Msg("unknown effect")
	return func(*game.Session) bool { return false }
}

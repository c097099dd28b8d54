package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/memory-cards/apps/go-server/internal/catalog"
	"github.com/robalobadob/memory-cards/apps/go-server/internal/config"
	"github.com/robalobadob/memory-cards/apps/go-server/internal/httpserver"
	"github.com/robalobadob/memory-cards/apps/go-server/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.RAWGAPIKey == "" {
		log.Warn().Msg("RAWG_API_KEY not set; card batches will fail")
	}

	gw := catalog.New(
		catalog.NewGames(cfg.RAWGBaseURL, cfg.RAWGAPIKey, cfg.CatalogSize, nil),
		catalog.NewGifs(cfg.GiphyBaseURL, cfg.GiphyAPIKey, nil),
	)
	players := store.NewMemoryStore()
	go sweepIdle(players, cfg.SessionTTL)

	srv := httpserver.New(httpserver.Options{
		Store:        players,
		Gateway:      gw,
		Secret:       []byte(cfg.SessionSecret),
		ClientOrigin: cfg.ClientOrigin,
		Secure:       cfg.Production,
		SessionTTL:   cfg.SessionTTL,
		FetchTimeout: cfg.FetchTimeout,
	})
	log.Info().Str("port", cfg.Port).Msg("starting go-server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// sweepIdle drops players whose token has outlived its TTL.
func sweepIdle(st store.Store, ttl time.Duration) {
	t := time.NewTicker(ttl / 4)
	defer t.Stop()
	for range t.C {
		if n := st.Sweep(context.Background(), ttl); n > 0 {
			log.Info().Int("players", n).Msg("swept idle players")
		}
	}
}

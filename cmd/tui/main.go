// Command tui plays Memory Cards in the terminal against the same catalog
// APIs the server uses. Configuration is shared with the server (.env,
// CONFIG_FILE, environment). Logs go to TUI_LOG_FILE when set, else nowhere,
// so they never corrupt the screen.
package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/memory-cards/apps/go-server/internal/catalog"
	"github.com/robalobadob/memory-cards/apps/go-server/internal/config"
	"github.com/robalobadob/memory-cards/apps/go-server/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var logOut io.Writer = io.Discard
	if path := os.Getenv("TUI_LOG_FILE"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintln(os.Stderr, "open log file:", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	log.Logger = zerolog.New(logOut).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load configuration:", err)
		os.Exit(1)
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	gw := catalog.New(
		catalog.NewGames(cfg.RAWGBaseURL, cfg.RAWGAPIKey, cfg.CatalogSize, nil),
		catalog.NewGifs(cfg.GiphyBaseURL, cfg.GiphyAPIKey, nil),
	)
	if _, err := tea.NewProgram(tui.New(gw, cfg.FetchTimeout), tea.WithAltScreen()).Run(); err != nil {
		log.Error().Err(err).Msg("tui exited")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

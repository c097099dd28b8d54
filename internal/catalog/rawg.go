// internal/catalog/rawg.go
//
// Card batches from the RAWG video-game catalog.
//
// A batch is one page of /games picked at random from the first
// CatalogSize titles, so recent and recognizable games dominate.

package catalog

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/robalobadob/memory-cards/apps/go-server/internal/game"
	"github.com/robalobadob/memory-cards/apps/go-server/internal/shuffle"
)

const (
	DefaultRAWGBaseURL = "https://api.rawg.io/api"
	DefaultCatalogSize = 10000
)

// Games fetches card batches from RAWG.
type Games struct {
	BaseURL     string
	APIKey      string
	CatalogSize int
	Client      *http.Client
	Rand        shuffle.Source // page picker; nil uses the global source
}

// NewGames builds a RAWG client. Empty/zero arguments take the defaults.
func NewGames(baseURL, apiKey string, catalogSize int, client *http.Client) *Games {
	if baseURL == "" {
		baseURL = DefaultRAWGBaseURL
	}
	if catalogSize <= 0 {
		catalogSize = DefaultCatalogSize
	}
	return &Games{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		APIKey:      apiKey,
		CatalogSize: catalogSize,
		Client:      defaultClient(client),
	}
}

type rawgPage struct {
	Results []rawgGame `json:"results"`
}

type rawgGame struct {
	ID              int    `json:"id" validate:"required,gt=0"`
	Name            string `json:"name" validate:"required"`
	Released        string `json:"released"`
	BackgroundImage string `json:"background_image" validate:"omitempty,url"`
	Metacritic      *int   `json:"metacritic"`
}

// FetchCardBatch returns exactly count cards with distinct IDs.
func (g *Games) FetchCardBatch(ctx context.Context, count int) ([]game.Card, error) {
	const op = "rawg games"
	if count <= 0 {
		return nil, decodeErr(op, fmt.Errorf("invalid batch size %d", count))
	}

	var page rawgPage
	if err := getJSON(ctx, g.Client, op, g.pageURL(g.randomPage(count), count), &page); err != nil {
		return nil, err
	}
	if len(page.Results) < count {
		return nil, decodeErr(op, fmt.Errorf("page has %d results, want %d", len(page.Results), count))
	}

	cards := make([]game.Card, 0, count)
	seen := make(map[int]struct{}, count)
	for _, r := range page.Results[:count] {
		if err := validate.Struct(r); err != nil {
			return nil, decodeErr(op, err)
		}
		if _, dup := seen[r.ID]; dup {
			return nil, decodeErr(op, fmt.Errorf("duplicate game id %d", r.ID))
		}
		seen[r.ID] = struct{}{}
		cards = append(cards, game.Card{
			ID:          strconv.Itoa(r.ID),
			Name:        r.Name,
			ImageURL:    r.BackgroundImage,
			ReleaseDate: r.Released,
			Rating:      r.Metacritic,
		})
	}
	return cards, nil
}

// randomPage picks a page in [1, CatalogSize/pageSize].
func (g *Games) randomPage(pageSize int) int {
	upper := g.CatalogSize / pageSize
	if upper < 1 {
		upper = 1
	}
	if g.Rand == nil {
		return rand.IntN(upper) + 1
	}
	return g.Rand.IntN(upper) + 1
}

func (g *Games) pageURL(page, size int) string {
	q := url.Values{}
	q.Set("key", g.APIKey)
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(size))
	return g.BaseURL + "/games?" + q.Encode()
}

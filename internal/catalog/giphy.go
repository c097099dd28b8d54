package catalog

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

const DefaultGiphyBaseURL = "https://api.giphy.com"

// Gifs resolves a search term to a single decorative GIF via GIPHY translate.
type Gifs struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewGifs builds a GIPHY client. An empty baseURL takes the default.
func NewGifs(baseURL, apiKey string, client *http.Client) *Gifs {
	if baseURL == "" {
		baseURL = DefaultGiphyBaseURL
	}
	return &Gifs{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  defaultClient(client),
	}
}

type giphyTranslate struct {
	Data struct {
		Images struct {
			Original struct {
				URL string `json:"url" validate:"required,url"`
			} `json:"original"`
		} `json:"images"`
	} `json:"data"`
}

// FetchResultImage returns the original-size image URL for term.
func (g *Gifs) FetchResultImage(ctx context.Context, term string) (string, error) {
	const op = "giphy translate"
	q := url.Values{}
	q.Set("api_key", g.APIKey)
	q.Set("s", term)

	var res giphyTranslate
	if err := getJSON(ctx, g.Client, op, g.BaseURL+"/v1/gifs/translate?"+q.Encode(), &res); err != nil {
		return "", err
	}
	if err := validate.Struct(res); err != nil {
		return "", decodeErr(op, err)
	}
	return res.Data.Images.Original.URL, nil
}

// Client is the full gateway: card batches plus result images.
type Client struct {
	*Games
	*Gifs
}

// New composes a gateway from its two halves.
func New(games *Games, gifs *Gifs) *Client {
	return &Client{Games: games, Gifs: gifs}
}

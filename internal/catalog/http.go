// internal/catalog/http.go
//
// Shared plumbing for the outbound catalog/image APIs.
//   - A pooled client from go-cleanhttp when none is supplied.
//   - getJSON: GET + status check + bounded JSON decode, mapped onto
//     ErrNetwork / ErrDecode.

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/rs/zerolog/log"
)

// maxBody bounds how much of a response we are willing to decode.
const maxBody = 4 << 20

var validate = validator.New()

func defaultClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return cleanhttp.DefaultPooledClient()
}

func getJSON(ctx context.Context, client *http.Client, op, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return networkErr(op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return networkErr(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return networkErr(op, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(dst); err != nil {
		return decodeErr(op, err)
	}
	log.Debug().Str("op", op).Int("status", resp.StatusCode).Msg("catalog fetch")
	return nil
}

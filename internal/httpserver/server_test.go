package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/memory-cards/apps/go-server/internal/game"
	"github.com/robalobadob/memory-cards/apps/go-server/internal/store"
)

type fakeGateway struct {
	mu       sync.Mutex
	cardsErr error
	imageErr error
	batches  int
}

func (f *fakeGateway) FetchCardBatch(_ context.Context, count int) ([]game.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cardsErr != nil {
		return nil, f.cardsErr
	}
	f.batches++
	out := make([]game.Card, count)
	for i := range out {
		out[i] = game.Card{ID: fmt.Sprintf("b%d-%d", f.batches, i), Name: fmt.Sprintf("Game %d", i)}
	}
	return out, nil
}

func (f *fakeGateway) FetchResultImage(_ context.Context, term string) (string, error) {
	if f.imageErr != nil {
		return "", f.imageErr
	}
	return "https://gif.test/" + strings.TrimSuffix(term, "!"), nil
}

// queue collects dispatched work so a test can choose when it runs.
type queue struct {
	mu    sync.Mutex
	tasks []func()
}

func (q *queue) push(f func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, f)
}

func (q *queue) drain() {
	q.mu.Lock()
	tasks := q.tasks
	q.tasks = nil
	q.mu.Unlock()
	for _, f := range tasks {
		f()
	}
}

type harness struct {
	t      *testing.T
	srv    *Server
	http   *httptest.Server
	client *http.Client
	gw     *fakeGateway
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gw := &fakeGateway{}
	s := New(Options{
		Store:        store.NewMemoryStore(),
		Gateway:      gw,
		Secret:       []byte("test-secret-0123456789"),
		ClientOrigin: "http://localhost:5173",
	})
	s.dispatch = func(f func()) { f() }

	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &harness{t: t, srv: s, http: ts, client: &http.Client{Jar: jar}, gw: gw}
}

func (h *harness) do(method, path string, body any) (*http.Response, []byte) {
	h.t.Helper()
	var rdr *bytes.Reader
	if s, ok := body.(string); ok {
		rdr = bytes.NewReader([]byte(s))
	} else if body != nil {
		b, err := json.Marshal(body)
		require.NoError(h.t, err)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, h.http.URL+path, rdr)
	require.NoError(h.t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := h.client.Do(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(h.t, err)
	return resp, buf.Bytes()
}

func (h *harness) view(method, path string, body any, wantStatus int) game.View {
	h.t.Helper()
	resp, raw := h.do(method, path, body)
	require.Equal(h.t, wantStatus, resp.StatusCode, string(raw))
	var v game.View
	require.NoError(h.t, json.Unmarshal(raw, &v))
	return v
}

func (h *harness) errorCode(method, path string, body any, wantStatus int) string {
	h.t.Helper()
	resp, raw := h.do(method, path, body)
	require.Equal(h.t, wantStatus, resp.StatusCode, string(raw))
	var e map[string]string
	require.NoError(h.t, json.Unmarshal(raw, &e))
	return e["error"]
}

// pickNew selects a card whose ID has not been picked yet this round.
func pickNew(t *testing.T, h *harness, v game.View, picked map[string]bool) game.View {
	t.Helper()
	for i, c := range v.Cards {
		if !picked[c.ID] {
			picked[c.ID] = true
			return h.view(http.MethodPost, "/game/select", map[string]int{"index": i}, http.StatusOK)
		}
	}
	t.Fatal("no unpicked card")
	return v
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestHealthAndIndex(t *testing.T) {
	h := newHarness(t)
	resp, body := h.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(body))

	resp, body = h.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(body), "Memory Cards")

	resp, _ = h.do(http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNewPlayerGetsCookieAndIdleView(t *testing.T) {
	h := newHarness(t)
	resp, raw := h.do(http.MethodGet, "/game", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(playerTokenHeader))

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == playerCookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	var v game.View
	require.NoError(t, json.Unmarshal(raw, &v))
	assert.Equal(t, game.StateIdle, v.State)
	assert.Empty(t, v.Cards)

	// the cookie is reused: no new token on the next call
	resp, _ = h.do(http.MethodGet, "/game", nil)
	assert.Empty(t, resp.Header.Get(playerTokenHeader))
}

func TestWinRound(t *testing.T) {
	h := newHarness(t)
	v := h.view(http.MethodPost, "/game/start", map[string]string{"mode": "easy"}, http.StatusAccepted)
	assert.Equal(t, game.StatePlaying, v.State)
	assert.True(t, v.Loading)

	v = h.view(http.MethodGet, "/game", nil, http.StatusOK)
	require.False(t, v.Loading)
	require.Len(t, v.Cards, 5)
	assert.NotContains(t, string(mustJSON(t, v.Cards)), "visited", "visited flags stay server-side")

	picked := map[string]bool{}
	for i := 0; i < 5; i++ {
		v = pickNew(t, h, v, picked)
	}
	assert.Equal(t, game.StateRoundEnded, v.State)
	assert.Equal(t, game.OutcomeWin, v.Outcome)
	assert.Equal(t, 5, v.Score)
	assert.Equal(t, 5, v.HighScore)

	v = h.view(http.MethodGet, "/game", nil, http.StatusOK)
	assert.Equal(t, "https://gif.test/Victory", v.ResultImage.URL)
}

func TestLoseRoundAndPlayAgain(t *testing.T) {
	h := newHarness(t)
	h.view(http.MethodPost, "/game/start", map[string]string{"mode": "medium"}, http.StatusAccepted)
	v := h.view(http.MethodGet, "/game", nil, http.StatusOK)

	picked := map[string]bool{}
	for i := 0; i < 3; i++ {
		v = pickNew(t, h, v, picked)
	}
	for i, c := range v.Cards {
		if picked[c.ID] {
			v = h.view(http.MethodPost, "/game/select", map[string]int{"index": i}, http.StatusOK)
			break
		}
	}
	assert.Equal(t, game.StateRoundEnded, v.State)
	assert.Equal(t, game.OutcomeLoss, v.Outcome)
	assert.Equal(t, 3, v.Score)
	assert.Equal(t, "Game Over!", v.ResultLabel)

	v = h.view(http.MethodPost, "/game/again", nil, http.StatusAccepted)
	assert.Equal(t, game.ModeMedium, v.Mode)
	assert.Zero(t, v.Score)
	assert.Equal(t, 3, v.HighScore)

	v = h.view(http.MethodGet, "/game", nil, http.StatusOK)
	assert.Len(t, v.Cards, 10)
}

func TestQuit(t *testing.T) {
	h := newHarness(t)
	h.view(http.MethodPost, "/game/start", map[string]string{"mode": "hard"}, http.StatusAccepted)
	v := h.view(http.MethodPost, "/game/quit", nil, http.StatusOK)
	assert.Equal(t, game.StateIdle, v.State)
	assert.Empty(t, v.Cards)
	assert.Zero(t, v.Score)
}

func TestStartThenQuitDiscardsLateBatch(t *testing.T) {
	h := newHarness(t)
	q := &queue{}
	h.srv.dispatch = q.push

	h.view(http.MethodPost, "/game/start", map[string]string{"mode": "hard"}, http.StatusAccepted)
	h.view(http.MethodPost, "/game/quit", nil, http.StatusOK)
	q.drain()

	v := h.view(http.MethodGet, "/game", nil, http.StatusOK)
	assert.Equal(t, game.StateIdle, v.State)
	assert.Empty(t, v.Cards)
	assert.False(t, v.Loading)
}

func TestFetchFailureShowsError(t *testing.T) {
	h := newHarness(t)
	h.gw.cardsErr = errors.New("catalog down")

	h.view(http.MethodPost, "/game/start", map[string]string{"mode": "easy"}, http.StatusAccepted)
	v := h.view(http.MethodGet, "/game", nil, http.StatusOK)
	assert.Equal(t, game.StateIdle, v.State)
	assert.False(t, v.ResultVisible)
	assert.Equal(t, "catalog down", v.FetchError)

	h.gw.cardsErr = nil
	h.view(http.MethodPost, "/game/start", map[string]string{"mode": "easy"}, http.StatusAccepted)
	v = h.view(http.MethodGet, "/game", nil, http.StatusOK)
	assert.Empty(t, v.FetchError)
	assert.Len(t, v.Cards, 5)
}

func TestImageFailureKeepsResult(t *testing.T) {
	h := newHarness(t)
	h.gw.imageErr = errors.New("giphy down")
	h.view(http.MethodPost, "/game/start", map[string]string{"mode": "easy"}, http.StatusAccepted)
	v := h.view(http.MethodGet, "/game", nil, http.StatusOK)
	picked := map[string]bool{}
	for i := 0; i < 5; i++ {
		v = pickNew(t, h, v, picked)
	}
	v = h.view(http.MethodGet, "/game", nil, http.StatusOK)
	assert.True(t, v.ResultVisible)
	assert.True(t, v.ResultImage.Failed)
}

func TestRequestErrors(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, "invalid_transition", h.errorCode(http.MethodPost, "/game/select", map[string]int{"index": 0}, http.StatusConflict))
	assert.Equal(t, "invalid_transition", h.errorCode(http.MethodPost, "/game/quit", nil, http.StatusConflict))
	assert.Equal(t, "invalid_transition", h.errorCode(http.MethodPost, "/game/again", nil, http.StatusConflict))
	assert.Equal(t, "unknown_mode", h.errorCode(http.MethodPost, "/game/start", map[string]string{"mode": "nightmare"}, http.StatusBadRequest))
	assert.Equal(t, "bad_json", h.errorCode(http.MethodPost, "/game/start", "{", http.StatusBadRequest))

	h.view(http.MethodPost, "/game/start", map[string]string{"mode": "easy"}, http.StatusAccepted)
	assert.Equal(t, "invalid_transition", h.errorCode(http.MethodPost, "/game/start", map[string]string{"mode": "easy"}, http.StatusConflict))
	assert.Equal(t, "missing_index", h.errorCode(http.MethodPost, "/game/select", map[string]string{}, http.StatusBadRequest))
	assert.Equal(t, "bad_index", h.errorCode(http.MethodPost, "/game/select", map[string]int{"index": 99}, http.StatusBadRequest))
}

func TestInvalidTokenMintsNewPlayer(t *testing.T) {
	h := newHarness(t)
	req, err := http.NewRequest(http.MethodGet, h.http.URL+"/game", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(playerTokenHeader))
}

func TestBearerTokenResumesPlayer(t *testing.T) {
	h := newHarness(t)
	resp, _ := h.do(http.MethodPost, "/game/start", map[string]string{"mode": "easy"})
	tok := resp.Header.Get(playerTokenHeader)
	require.NotEmpty(t, tok)

	req, err := http.NewRequest(http.MethodGet, h.http.URL+"/game", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var v game.View
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	assert.Equal(t, game.StatePlaying, v.State)
	assert.Len(t, v.Cards, 5)
}

func TestTokenSignedWithOtherSecretIsRejected(t *testing.T) {
	h := newHarness(t)
	other := New(Options{Store: store.NewMemoryStore(), Secret: []byte("another-secret-9876543210")})
	tok, _, err := other.signToken("someone")
	require.NoError(t, err)

	_, err = h.srv.parseToken(tok)
	assert.Error(t, err)

	id, err := other.parseToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "someone", id)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	s := New(Options{Store: store.NewMemoryStore(), Secret: []byte("test-secret-0123456789"), SessionTTL: time.Nanosecond})
	tok, _, err := s.signToken("p")
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)
	_, err = s.parseToken(tok)
	assert.Error(t, err)
}

func TestCORSPreflight(t *testing.T) {
	h := newHarness(t)
	resp, _ := h.do(http.MethodOptions, "/game/start", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}

func TestErrorStatus(t *testing.T) {
	st, code := errorStatus(errors.New("mystery"))
	assert.Equal(t, http.StatusInternalServerError, st)
	assert.Equal(t, "internal", code)
}

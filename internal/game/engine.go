// internal/game/engine.go
//
// Session engine for a single player.
// Responsibilities:
//   - Own mode, board, score, high score and the playing/result flags.
//   - Apply the start → play → win/loss → quit transitions.
//   - Reshuffle the board after every correct pick.
//   - Tag outstanding fetches with an epoch and drop stale completions.
//
// Notes:
//   - The engine performs no I/O. Transitions that need data return Effects;
//     the caller runs them and hands results back via Apply*/Fail*.
//   - A Session is not safe for concurrent use; hosts serialize access.
//   - Out-of-state calls are rejected with ErrInvalidTransition.
package game

import (
	"fmt"

	"github.com/robalobadob/memory-cards/apps/go-server/internal/shuffle"
)

// Session holds the state of one player's game.
type Session struct {
	mode          Mode
	cards         []Card
	score         int
	highScore     int
	playing       bool
	loading       bool // playing, waiting on FetchCards
	resultVisible bool
	outcome       Outcome
	fetchErr      error
	image         ResultImage
	epoch         uint64
	rng           shuffle.Source
}

// ResultImage is the decorative image attached to a finished round.
type ResultImage struct {
	URL    string `json:"url,omitempty"`
	Failed bool   `json:"failed"`
}

// Option configures a Session.
type Option func(*Session)

// WithRand sets the random source used for reshuffles.
func WithRand(src shuffle.Source) Option {
	return func(s *Session) { s.rng = src }
}

// NewSession returns an idle session. The mode defaults to easy.
func NewSession(opts ...Option) *Session {
	s := &Session{mode: ModeEasy, cards: []Card{}}
	for _, o := range opts {
		o(s)
	}
	return s
}

// State reports the coarse phase of the session.
func (s *Session) State() State {
	switch {
	case s.playing:
		return StatePlaying
	case s.resultVisible:
		return StateRoundEnded
	}
	return StateIdle
}

// Epoch identifies the current round; it advances on every Start and Quit.
func (s *Session) Epoch() uint64 { return s.epoch }

// Start begins a new round at mode m. Allowed from Idle or RoundEnded.
func (s *Session) Start(m Mode) ([]Effect, error) {
	if s.State() == StatePlaying {
		return nil, ErrInvalidTransition
	}
	target := RoundTarget(m)
	if target == 0 {
		return nil, ErrUnknownMode
	}
	s.epoch++
	s.mode = m
	s.score = 0
	s.cards = []Card{}
	s.playing = true
	s.loading = true
	s.resultVisible = false
	s.outcome = OutcomeNone
	s.fetchErr = nil
	s.image = ResultImage{}
	return []Effect{FetchCards{Epoch: s.epoch, Count: target}}, nil
}

// PlayAgain restarts at the current mode. Allowed from RoundEnded only.
func (s *Session) PlayAgain() ([]Effect, error) {
	if s.State() != StateRoundEnded {
		return nil, ErrInvalidTransition
	}
	return s.Start(s.mode)
}

// ApplyCards delivers the batch requested by FetchCards. It reports false when
// the completion is stale and was discarded. A batch that does not fit the
// round is treated as a failed fetch.
func (s *Session) ApplyCards(epoch uint64, cards []Card) bool {
	if !s.awaitingCards(epoch) {
		return false
	}
	if err := checkBatch(cards, RoundTarget(s.mode)); err != nil {
		return s.FailCards(epoch, err)
	}
	board := shuffle.Clone(cards)
	for i := range board {
		board[i].Visited = false
	}
	s.cards = board
	s.loading = false
	return true
}

// FailCards records a failed card fetch and returns the session to Idle with
// the mode remembered. The result panel is never shown on this path.
func (s *Session) FailCards(epoch uint64, err error) bool {
	if !s.awaitingCards(epoch) {
		return false
	}
	s.fetchErr = err
	s.playing = false
	s.loading = false
	s.cards = []Card{}
	s.score = 0
	return true
}

func (s *Session) awaitingCards(epoch uint64) bool {
	return epoch == s.epoch && s.playing && s.loading
}

func checkBatch(cards []Card, want int) error {
	if len(cards) != want {
		return fmt.Errorf("%w: got %d cards, want %d", ErrBadBatch, len(cards), want)
	}
	seen := make(map[string]struct{}, len(cards))
	for _, c := range cards {
		if _, dup := seen[c.ID]; dup || c.ID == "" {
			return fmt.Errorf("%w: id %q missing or repeated", ErrBadBatch, c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	return nil
}

// SelectCard picks the card at index on the current board.
//
// Picking a visited card loses the round. Otherwise the card is marked
// visited on a fresh copy of the board, the score and high score advance, the
// copy is reshuffled, and reaching the round target wins.
func (s *Session) SelectCard(index int) ([]Effect, error) {
	if !s.playing || s.loading {
		return nil, ErrInvalidTransition
	}
	if index < 0 || index >= len(s.cards) {
		return nil, ErrCardIndex
	}
	if s.cards[index].Visited {
		return s.endRound(OutcomeLoss), nil
	}

	board := shuffle.Clone(s.cards)
	board[index].Visited = true
	s.cards = shuffle.Shuffle(s.rng, board)
	s.score++
	if s.score > s.highScore {
		s.highScore = s.score
	}
	if s.score == RoundTarget(s.mode) {
		return s.endRound(OutcomeWin), nil
	}
	return nil, nil
}

func (s *Session) endRound(o Outcome) []Effect {
	s.playing = false
	s.resultVisible = true
	s.outcome = o
	s.image = ResultImage{}
	return []Effect{FetchResultImage{Epoch: s.epoch, Term: o.Label()}}
}

// Quit abandons the current round. Allowed from Playing or RoundEnded.
// Any fetch still in flight for the abandoned round becomes stale.
func (s *Session) Quit() error {
	if s.State() == StateIdle {
		return ErrInvalidTransition
	}
	s.epoch++
	s.playing = false
	s.loading = false
	s.resultVisible = false
	s.outcome = OutcomeNone
	s.score = 0
	s.cards = []Card{}
	s.image = ResultImage{}
	return nil
}

// ApplyResultImage attaches the decorative image for the finished round.
func (s *Session) ApplyResultImage(epoch uint64, url string) bool {
	if epoch != s.epoch || !s.resultVisible {
		return false
	}
	s.image = ResultImage{URL: url}
	return true
}

// FailResultImage flags the image placeholder. The result stays visible.
func (s *Session) FailResultImage(epoch uint64, _ error) bool {
	if epoch != s.epoch || !s.resultVisible {
		return false
	}
	s.image = ResultImage{Failed: true}
	return true
}

// View is a read-only snapshot of a session for rendering.
type View struct {
	State         State       `json:"state"`
	Loading       bool        `json:"loading"`
	Mode          Mode        `json:"mode"`
	Target        int         `json:"target"`
	Score         int         `json:"score"`
	HighScore     int         `json:"highScore"`
	Cards         []Card      `json:"cards"`
	ResultVisible bool        `json:"resultVisible"`
	Outcome       Outcome     `json:"outcome,omitempty"`
	ResultLabel   string      `json:"resultLabel,omitempty"`
	ResultImage   ResultImage `json:"resultImage"`
	FetchError    string      `json:"fetchError,omitempty"`
	Epoch         uint64      `json:"epoch"`
}

// View snapshots the session. The returned cards do not alias engine state.
func (s *Session) View() View {
	v := View{
		State:         s.State(),
		Loading:       s.loading,
		Mode:          s.mode,
		Target:        RoundTarget(s.mode),
		Score:         s.score,
		HighScore:     s.highScore,
		Cards:         shuffle.Clone(s.cards),
		ResultVisible: s.resultVisible,
		Outcome:       s.outcome,
		ResultLabel:   s.outcome.Label(),
		ResultImage:   s.image,
		Epoch:         s.epoch,
	}
	if s.fetchErr != nil {
		v.FetchError = s.fetchErr.Error()
	}
	return v
}

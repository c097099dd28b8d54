// internal/game/types.go
//
// Core type definitions for the memory card engine.
// Defines:
//   - Mode: difficulty setting and its round target.
//   - Card: one catalog title shown on the board.
//   - State/Outcome: coarse session phase and round result.
//   - Effect: side-effect requests returned by transitions.

package game

import (
	"errors"
	"strings"
)

// Mode is the difficulty a round is played at.
type Mode string

const (
	ModeEasy   Mode = "easy"
	ModeMedium Mode = "medium"
	ModeHard   Mode = "hard"
)

var roundTargets = map[Mode]int{
	ModeEasy:   5,
	ModeMedium: 10,
	ModeHard:   15,
}

// Modes lists every mode in ascending difficulty.
func Modes() []Mode { return []Mode{ModeEasy, ModeMedium, ModeHard} }

// ParseMode accepts a mode name case-insensitively.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := roundTargets[m]; !ok {
		return "", ErrUnknownMode
	}
	return m, nil
}

// RoundTarget is the number of correct picks needed to win, which is also
// the number of cards dealt. Unknown modes report 0.
func RoundTarget(m Mode) int { return roundTargets[m] }

// Card is one title on the board. Cards are values; copying a []Card yields
// an independent board.
type Card struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ImageURL    string `json:"imageUrl"`
	ReleaseDate string `json:"releaseDate"`
	Rating      *int   `json:"rating"`
	Visited     bool   `json:"-"`
}

// State is the coarse phase of a session.
type State string

const (
	StateIdle       State = "idle"
	StatePlaying    State = "playing"
	StateRoundEnded State = "ended"
)

// Outcome is the result of a finished round.
type Outcome string

const (
	OutcomeNone Outcome = ""
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
)

// Label is the headline shown for an outcome; it doubles as the GIF search term.
func (o Outcome) Label() string {
	switch o {
	case OutcomeWin:
		return "Victory!"
	case OutcomeLoss:
		return "Game Over!"
	}
	return ""
}

// Effect is a side-effect request produced by a transition. The presentation
// layer performs it and reports back through the matching Apply/Fail method.
type Effect interface{ effect() }

// FetchCards asks for a batch of Count cards for the round tagged Epoch.
type FetchCards struct {
	Epoch uint64
	Count int
}

// FetchResultImage asks for a decorative image for the round tagged Epoch.
type FetchResultImage struct {
	Epoch uint64
	Term  string
}

func (FetchCards) effect()       {}
func (FetchResultImage) effect() {}

var (
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrUnknownMode       = errors.New("unknown mode")
	ErrCardIndex         = errors.New("card index out of range")
	ErrBadBatch          = errors.New("card batch does not match round")
)

// Package host defines the narrow interfaces through which bridge operations
// reach the flashcard application: the active review session, the card
// collection, and the application window. Operations must tolerate any of them
// being absent and fall back to safe defaults.
package host

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned by host implementations when the underlying
// resource is closed or not yet attached.
var ErrUnavailable = errors.New("host resource unavailable")

// Reviewer states.
const (
	StateQuestion = "question"
	StateAnswer   = "answer"
)

// Card types.
const (
	CardTypeNew = iota
	CardTypeLearning
	CardTypeReview
	CardTypeRelearning
)

// Card queues. Negative values are the parked states.
const (
	QueueNew         = 0
	QueueLearning    = 1
	QueueReview      = 2
	QueueDayLearning = 3
	QueuePreview     = 4

	QueueSuspended      = -1
	QueueBuried         = -2
	QueueManuallyBuried = -3
)

// Flag colors.
const (
	FlagNone = iota
	FlagRed
	FlagOrange
	FlagGreen
	FlagBlue
	FlagPink
	FlagTurquoise
	FlagPurple
)

// FlagByName maps color names accepted on the wire to flag values.
var FlagByName = map[string]int{
	"none":      FlagNone,
	"red":       FlagRed,
	"orange":    FlagOrange,
	"green":     FlagGreen,
	"blue":      FlagBlue,
	"pink":      FlagPink,
	"turquoise": FlagTurquoise,
	"purple":    FlagPurple,
}

// Answer ease buttons.
const (
	EaseAgain = 1
	EaseHard  = 2
	EaseGood  = 3
	EaseEasy  = 4
)

// DefaultCardFactor is the ease factor assigned to fresh cards (250%).
const DefaultCardFactor = 2500

// MarkedTag is the note tag that marks a card.
const MarkedTag = "marked"

// Template is the rendering template of a card. Question text identifies the
// template for rate-limit bucketing.
type Template struct {
	Name     string
	Question string
	Answer   string
}

// Card is a snapshot of one card's scheduling state.
type Card struct {
	ID       int64
	NoteID   int64
	DeckID   int64
	Type     int
	Queue    int
	Due      int
	Interval int
	Factor   int
	Reps     int
	Lapses   int
	Left     int
	Flags    int
	Mod      int64
	Template Template
}

// Note carries the note-level state operations touch (tags only).
type Note struct {
	ID   int64
	Tags []string
}

// HasTag reports whether the note carries the given tag.
func (n *Note) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Counts are the scheduler's due counts for the selected deck.
type Counts struct {
	New      int
	Learning int
	Review   int
}

// Reviewer is the active review session.
type Reviewer interface {
	// Card returns the currently displayed card, or false when idle.
	Card() (*Card, bool)

	// State returns StateQuestion or StateAnswer, or "" when no card is shown.
	State() string

	// ShowAnswer flips the current card to its answer side.
	ShowAnswer() error

	// AnswerCard grades the current card with the given ease button.
	AnswerCard(ease int) error

	// NextCard advances past a card removed from the queue (buried, suspended).
	NextCard() error
}

// Collection is the card store and scheduler. Implementations sit on real
// storage, so every method takes a context.
type Collection interface {
	Counts(ctx context.Context) (Counts, error)

	// Today returns days elapsed since the collection was created.
	Today(ctx context.Context) (int, error)

	DeckName(ctx context.Context, deckID int64) (string, error)

	SaveCard(ctx context.Context, card *Card) error
	BuryCards(ctx context.Context, ids []int64) error
	SuspendCards(ctx context.Context, ids []int64) error

	Note(ctx context.Context, id int64) (*Note, error)
	SaveNote(ctx context.Context, note *Note) error

	// NoteCardIDs returns the ids of every card generated from the note.
	NoteCardIDs(ctx context.Context, noteID int64) ([]int64, error)

	// FindCards returns card ids matching a search query.
	FindCards(ctx context.Context, query string) ([]int64, error)

	// NextIntervalDays returns the scheduled interval, in days, the card
	// would receive if answered with the given ease.
	NextIntervalDays(ctx context.Context, card *Card, ease int) (float64, error)
}

// Window is the application shell around the reviewer.
type Window interface {
	IsFullscreen() bool
	NightMode() bool
	ShowToast(text string, duration time.Duration)
	OpenBrowser(query string) error
	OpenDeckOptions(deckID int64) error
	ShowDeckBrowser() error

	// RequireReset flags the UI for a rebuild after a mutation outside the
	// normal review flow.
	RequireReset()
}

// Host bundles the collaborators handed to registered operations. Any field
// may be nil; operations degrade to safe defaults.
type Host struct {
	Reviewer   Reviewer
	Collection Collection
	Window     Window
}

// CurrentCard returns the card under review, or false when the reviewer is
// absent or idle.
func (h *Host) CurrentCard() (*Card, bool) {
	if h == nil || h.Reviewer == nil {
		return nil, false
	}
	return h.Reviewer.Card()
}

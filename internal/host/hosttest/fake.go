// Package hosttest provides stateful test doubles for the host package.
// The fakes hold plain in-memory state so operation tests can assert on
// mutations without a real collection behind them.
package hosttest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/droidbridge/droidbridge/internal/host"
)

// FakeReviewer is an in-memory host.Reviewer. Mutate the exported fields to
// stage a scenario; Answered and Advanced record what operations did.
type FakeReviewer struct {
	Current      *host.Card
	CurrentState string

	Answered []int
	Advanced int

	ShowAnswerErr error
	AnswerErr     error
}

// NewFakeReviewer returns a reviewer showing the given card on its question
// side. A nil card means an idle reviewer.
func NewFakeReviewer(card *host.Card) *FakeReviewer {
	state := ""
	if card != nil {
		state = host.StateQuestion
	}
	return &FakeReviewer{Current: card, CurrentState: state}
}

func (r *FakeReviewer) Card() (*host.Card, bool) {
	return r.Current, r.Current != nil
}

func (r *FakeReviewer) State() string { return r.CurrentState }

func (r *FakeReviewer) ShowAnswer() error {
	if r.ShowAnswerErr != nil {
		return r.ShowAnswerErr
	}
	r.CurrentState = host.StateAnswer
	return nil
}

func (r *FakeReviewer) AnswerCard(ease int) error {
	if r.AnswerErr != nil {
		return r.AnswerErr
	}
	r.Answered = append(r.Answered, ease)
	return nil
}

func (r *FakeReviewer) NextCard() error {
	r.Advanced++
	return nil
}

// FakeCollection is an in-memory host.Collection backed by maps.
type FakeCollection struct {
	mu sync.Mutex

	DueCounts host.Counts
	TodayDay  int
	Decks     map[int64]string
	Cards     map[int64]*host.Card
	Notes     map[int64]*host.Note

	Buried    []int64
	Suspended []int64
	Searches  []string

	// SearchResults is returned by FindCards for any query.
	SearchResults []int64

	// Intervals maps ease button to scheduled days for NextIntervalDays.
	Intervals map[int]float64

	Err error
}

// NewFakeCollection returns an empty collection ready for staging.
func NewFakeCollection() *FakeCollection {
	return &FakeCollection{
		Decks: make(map[int64]string),
		Cards: make(map[int64]*host.Card),
		Notes: make(map[int64]*host.Note),
	}
}

// AddCard stages a card and an empty note for it.
func (c *FakeCollection) AddCard(card *host.Card) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Cards[card.ID] = card
	if _, ok := c.Notes[card.NoteID]; !ok {
		c.Notes[card.NoteID] = &host.Note{ID: card.NoteID}
	}
}

func (c *FakeCollection) Counts(ctx context.Context) (host.Counts, error) {
	if c.Err != nil {
		return host.Counts{}, c.Err
	}
	return c.DueCounts, nil
}

func (c *FakeCollection) Today(ctx context.Context) (int, error) {
	if c.Err != nil {
		return 0, c.Err
	}
	return c.TodayDay, nil
}

func (c *FakeCollection) DeckName(ctx context.Context, deckID int64) (string, error) {
	if c.Err != nil {
		return "", c.Err
	}
	return c.Decks[deckID], nil
}

func (c *FakeCollection) SaveCard(ctx context.Context, card *host.Card) error {
	if c.Err != nil {
		return c.Err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Cards[card.ID] = card
	return nil
}

func (c *FakeCollection) BuryCards(ctx context.Context, ids []int64) error {
	if c.Err != nil {
		return c.Err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Buried = append(c.Buried, ids...)
	return nil
}

func (c *FakeCollection) SuspendCards(ctx context.Context, ids []int64) error {
	if c.Err != nil {
		return c.Err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Suspended = append(c.Suspended, ids...)
	return nil
}

func (c *FakeCollection) Note(ctx context.Context, id int64) (*host.Note, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.Notes[id]
	if !ok {
		return nil, fmt.Errorf("note %d: %w", id, host.ErrUnavailable)
	}
	return n, nil
}

func (c *FakeCollection) SaveNote(ctx context.Context, note *host.Note) error {
	if c.Err != nil {
		return c.Err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Notes[note.ID] = note
	return nil
}

func (c *FakeCollection) NoteCardIDs(ctx context.Context, noteID int64) ([]int64, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	var ids []int64
	for id, card := range c.Cards {
		if card.NoteID == noteID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (c *FakeCollection) FindCards(ctx context.Context, query string) ([]int64, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Searches = append(c.Searches, query)
	return c.SearchResults, nil
}

func (c *FakeCollection) NextIntervalDays(ctx context.Context, card *host.Card, ease int) (float64, error) {
	if c.Err != nil {
		return 0, c.Err
	}
	if c.Intervals == nil {
		return 0, nil
	}
	return c.Intervals[ease], nil
}

// FakeWindow is an in-memory host.Window recording every UI interaction.
type FakeWindow struct {
	Fullscreen bool
	Night      bool

	Toasts        []Toast
	BrowserOpens  []string
	DeckOptions   []int64
	DeckBrowsers  int
	ResetRequired int
}

// Toast is one recorded toast notification.
type Toast struct {
	Text     string
	Duration time.Duration
}

func (w *FakeWindow) IsFullscreen() bool { return w.Fullscreen }
func (w *FakeWindow) NightMode() bool    { return w.Night }

func (w *FakeWindow) ShowToast(text string, duration time.Duration) {
	w.Toasts = append(w.Toasts, Toast{Text: text, Duration: duration})
}

func (w *FakeWindow) OpenBrowser(query string) error {
	w.BrowserOpens = append(w.BrowserOpens, query)
	return nil
}

func (w *FakeWindow) OpenDeckOptions(deckID int64) error {
	w.DeckOptions = append(w.DeckOptions, deckID)
	return nil
}

func (w *FakeWindow) ShowDeckBrowser() error {
	w.DeckBrowsers++
	return nil
}

func (w *FakeWindow) RequireReset() { w.ResetRequired++ }

// Interface guards.
var (
	_ host.Reviewer   = (*FakeReviewer)(nil)
	_ host.Collection = (*FakeCollection)(nil)
	_ host.Window     = (*FakeWindow)(nil)
)

// NewHost bundles the three fakes into a host.Host.
func NewHost(r *FakeReviewer, c *FakeCollection, w *FakeWindow) *host.Host {
	h := &host.Host{}
	if r != nil {
		h.Reviewer = r
	}
	if c != nil {
		h.Collection = c
	}
	if w != nil {
		h.Window = w
	}
	return h
}

package collection

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/droidbridge/droidbridge/internal/host"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "col.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedCard(t *testing.T, s *Store, card *host.Card) *host.Card {
	t.Helper()

	got, err := s.CreateCard(context.Background(), card)
	if err != nil {
		t.Fatalf("CreateCard returned error: %v", err)
	}
	return got
}

func TestOpen_Idempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "col.db")
	s1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open returned error: %v", err)
	}
	if _, err := s1.CreateDeck(context.Background(), "Default"); err != nil {
		t.Fatalf("CreateDeck returned error: %v", err)
	}
	if err := s1.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	// Reopening migrates idempotently and keeps existing rows.
	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open returned error: %v", err)
	}
	defer s2.Close()

	name, err := s2.DeckName(context.Background(), 1)
	if err != nil {
		t.Fatalf("DeckName returned error: %v", err)
	}
	if name != "Default" {
		t.Fatalf("DeckName = %q, want Default", name)
	}
}

func TestStore_CardRoundTrip(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	deckID, err := s.CreateDeck(ctx, "Japanese")
	if err != nil {
		t.Fatalf("CreateDeck returned error: %v", err)
	}

	card := seedCard(t, s, &host.Card{
		NoteID:   100,
		DeckID:   deckID,
		Queue:    host.QueueReview,
		Type:     host.CardTypeReview,
		Due:      3,
		Interval: 7,
		Template: host.Template{Name: "Card 1", Question: "{{Front}}", Answer: "{{Back}}"},
	})

	card.Flags = host.FlagBlue
	card.Reps = 4
	if err := s.SaveCard(ctx, card); err != nil {
		t.Fatalf("SaveCard returned error: %v", err)
	}

	got, err := s.Card(ctx, card.ID)
	if err != nil {
		t.Fatalf("Card returned error: %v", err)
	}
	if got.Flags != host.FlagBlue || got.Reps != 4 || got.Template.Question != "{{Front}}" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Factor != host.DefaultCardFactor {
		t.Fatalf("Factor = %d, want default %d", got.Factor, host.DefaultCardFactor)
	}

	if err := s.SaveCard(ctx, &host.Card{ID: 9999}); !errors.Is(err, host.ErrUnavailable) {
		t.Fatalf("saving missing card: error = %v, want ErrUnavailable", err)
	}
}

func TestStore_Counts(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	deckID, _ := s.CreateDeck(ctx, "Default")
	seedCard(t, s, &host.Card{NoteID: 1, DeckID: deckID, Queue: host.QueueNew})
	seedCard(t, s, &host.Card{NoteID: 2, DeckID: deckID, Queue: host.QueueLearning})
	seedCard(t, s, &host.Card{NoteID: 3, DeckID: deckID, Queue: host.QueueDayLearning})
	seedCard(t, s, &host.Card{NoteID: 4, DeckID: deckID, Queue: host.QueueReview, Due: 0})
	seedCard(t, s, &host.Card{NoteID: 5, DeckID: deckID, Queue: host.QueueReview, Due: 500})
	seedCard(t, s, &host.Card{NoteID: 6, DeckID: deckID, Queue: host.QueueSuspended})

	counts, err := s.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts returned error: %v", err)
	}
	want := host.Counts{New: 1, Learning: 2, Review: 1}
	if counts != want {
		t.Fatalf("Counts = %+v, want %+v", counts, want)
	}
}

func TestStore_Today(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	opened := s.now()

	s.now = func() time.Time { return opened.Add(49 * time.Hour) }
	today, err := s.Today(context.Background())
	if err != nil {
		t.Fatalf("Today returned error: %v", err)
	}
	if today != 2 {
		t.Fatalf("Today = %d, want 2", today)
	}
}

func TestStore_NoteTags(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	deckID, _ := s.CreateDeck(ctx, "Default")
	card := seedCard(t, s, &host.Card{NoteID: 42, DeckID: deckID})

	note, err := s.Note(ctx, card.NoteID)
	if err != nil {
		t.Fatalf("Note returned error: %v", err)
	}
	if len(note.Tags) != 0 {
		t.Fatalf("fresh note has tags: %v", note.Tags)
	}

	note.Tags = []string{"vocabulary", "chapter_1"}
	if err := s.SaveNote(ctx, note); err != nil {
		t.Fatalf("SaveNote returned error: %v", err)
	}

	got, err := s.Note(ctx, card.NoteID)
	if err != nil {
		t.Fatalf("Note returned error: %v", err)
	}
	if !slices.Equal(got.Tags, note.Tags) {
		t.Fatalf("Tags = %v, want %v", got.Tags, note.Tags)
	}

	if _, err := s.Note(ctx, 777); !errors.Is(err, host.ErrUnavailable) {
		t.Fatalf("missing note: error = %v, want ErrUnavailable", err)
	}
}

func TestStore_BurySuspend(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	deckID, _ := s.CreateDeck(ctx, "Default")
	c1 := seedCard(t, s, &host.Card{NoteID: 1, DeckID: deckID, Queue: host.QueueReview})
	c2 := seedCard(t, s, &host.Card{NoteID: 1, DeckID: deckID, Queue: host.QueueReview})

	if err := s.BuryCards(ctx, []int64{c1.ID}); err != nil {
		t.Fatalf("BuryCards returned error: %v", err)
	}
	if err := s.SuspendCards(ctx, []int64{c2.ID}); err != nil {
		t.Fatalf("SuspendCards returned error: %v", err)
	}

	got1, _ := s.Card(ctx, c1.ID)
	got2, _ := s.Card(ctx, c2.ID)
	if got1.Queue != host.QueueManuallyBuried {
		t.Fatalf("buried queue = %d, want %d", got1.Queue, host.QueueManuallyBuried)
	}
	if got2.Queue != host.QueueSuspended {
		t.Fatalf("suspended queue = %d, want %d", got2.Queue, host.QueueSuspended)
	}
}

func TestStore_NoteCardIDs(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	deckID, _ := s.CreateDeck(ctx, "Default")
	c1 := seedCard(t, s, &host.Card{NoteID: 7, DeckID: deckID})
	c2 := seedCard(t, s, &host.Card{NoteID: 7, DeckID: deckID})
	seedCard(t, s, &host.Card{NoteID: 8, DeckID: deckID})

	ids, err := s.NoteCardIDs(ctx, 7)
	if err != nil {
		t.Fatalf("NoteCardIDs returned error: %v", err)
	}
	if !slices.Equal(ids, []int64{c1.ID, c2.ID}) {
		t.Fatalf("NoteCardIDs = %v, want [%d %d]", ids, c1.ID, c2.ID)
	}
}

func TestStore_FindCards(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	jp, _ := s.CreateDeck(ctx, "Japanese")
	fr, _ := s.CreateDeck(ctx, "French")
	c1 := seedCard(t, s, &host.Card{NoteID: 1, DeckID: jp})
	c2 := seedCard(t, s, &host.Card{NoteID: 2, DeckID: fr})

	note, _ := s.Note(ctx, 1)
	note.Tags = []string{"n5", "vocab"}
	if err := s.SaveNote(ctx, note); err != nil {
		t.Fatalf("SaveNote returned error: %v", err)
	}

	byTag, err := s.FindCards(ctx, "tag:n5")
	if err != nil {
		t.Fatalf("FindCards returned error: %v", err)
	}
	if !slices.Equal(byTag, []int64{c1.ID}) {
		t.Fatalf("tag search = %v, want [%d]", byTag, c1.ID)
	}

	byDeck, err := s.FindCards(ctx, "deck:French")
	if err != nil {
		t.Fatalf("FindCards returned error: %v", err)
	}
	if !slices.Equal(byDeck, []int64{c2.ID}) {
		t.Fatalf("deck search = %v, want [%d]", byDeck, c2.ID)
	}

	bare, err := s.FindCards(ctx, "Japan")
	if err != nil {
		t.Fatalf("FindCards returned error: %v", err)
	}
	if !slices.Equal(bare, []int64{c1.ID}) {
		t.Fatalf("bare search = %v, want [%d]", bare, c1.ID)
	}
}

func TestStore_NextIntervalDays(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	card := &host.Card{Interval: 10, Factor: 2500}

	again, _ := s.NextIntervalDays(ctx, card, host.EaseAgain)
	if again >= 1 {
		t.Fatalf("again interval = %v, want sub-day", again)
	}

	good, _ := s.NextIntervalDays(ctx, card, host.EaseGood)
	if good != 25 {
		t.Fatalf("good interval = %v, want 25", good)
	}

	easy, _ := s.NextIntervalDays(ctx, card, host.EaseEasy)
	if easy <= good {
		t.Fatalf("easy interval %v should exceed good %v", easy, good)
	}

	if _, err := s.NextIntervalDays(ctx, card, 9); err == nil {
		t.Fatal("expected error for out-of-range ease")
	}
}

func TestStore_Optimize(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	if err := s.Optimize(context.Background()); err != nil {
		t.Fatalf("Optimize returned error: %v", err)
	}
}

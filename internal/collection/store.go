package collection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/droidbridge/droidbridge/internal/host"
)

const cardColumns = `id, note_id, deck_id, type, queue, due, interval, factor,
	reps, lapses, left_today, flags, mod, tmpl_name, tmpl_question, tmpl_answer`

// CreateDeck inserts a deck and returns its id.
func (s *Store) CreateDeck(ctx context.Context, name string) (int64, error) {
	res, err := s.db.ExecContext(ctx, "INSERT INTO decks (name) VALUES (?)", name)
	if err != nil {
		return 0, fmt.Errorf("collection: create deck: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("collection: create deck: %w", err)
	}
	return id, nil
}

// CreateCard inserts a card, creating its note row when absent. A zero card
// id lets sqlite assign one; the stored card is returned.
func (s *Store) CreateCard(ctx context.Context, card *host.Card) (*host.Card, error) {
	if card.Factor == 0 {
		card.Factor = host.DefaultCardFactor
	}
	card.Mod = s.now().Unix()

	if _, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO notes (id, tags) VALUES (?, '')", card.NoteID); err != nil {
		return nil, fmt.Errorf("collection: create note: %w", err)
	}

	var idCol any
	if card.ID != 0 {
		idCol = card.ID
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO cards (`+cardColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		idCol, card.NoteID, card.DeckID, card.Type, card.Queue, card.Due,
		card.Interval, card.Factor, card.Reps, card.Lapses, card.Left,
		card.Flags, card.Mod,
		card.Template.Name, card.Template.Question, card.Template.Answer,
	)
	if err != nil {
		return nil, fmt.Errorf("collection: create card: %w", err)
	}
	if card.ID == 0 {
		card.ID, err = res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("collection: create card: %w", err)
		}
	}
	return card, nil
}

// Card loads one card by id.
func (s *Store) Card(ctx context.Context, id int64) (*host.Card, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+cardColumns+" FROM cards WHERE id = ?", id)
	return scanCard(row)
}

// SaveCard writes the card's scheduling state back and bumps its
// modification time.
func (s *Store) SaveCard(ctx context.Context, card *host.Card) error {
	card.Mod = s.now().Unix()
	res, err := s.db.ExecContext(ctx, `
		UPDATE cards SET type = ?, queue = ?, due = ?, interval = ?, factor = ?,
			reps = ?, lapses = ?, left_today = ?, flags = ?, mod = ?
		WHERE id = ?`,
		card.Type, card.Queue, card.Due, card.Interval, card.Factor,
		card.Reps, card.Lapses, card.Left, card.Flags, card.Mod, card.ID,
	)
	if err != nil {
		return fmt.Errorf("collection: save card: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("collection: save card: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("collection: card %d: %w", card.ID, host.ErrUnavailable)
	}
	return nil
}

// Counts returns the scheduler's due counts: new, learning, and reviews due
// today.
func (s *Store) Counts(ctx context.Context) (host.Counts, error) {
	today, err := s.Today(ctx)
	if err != nil {
		return host.Counts{}, err
	}

	var counts host.Counts
	err = s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(queue = ?), 0),
			COALESCE(SUM(queue IN (?, ?)), 0),
			COALESCE(SUM(queue = ? AND due <= ?), 0)
		FROM cards`,
		host.QueueNew,
		host.QueueLearning, host.QueueDayLearning,
		host.QueueReview, today,
	).Scan(&counts.New, &counts.Learning, &counts.Review)
	if err != nil {
		return host.Counts{}, fmt.Errorf("collection: counts: %w", err)
	}
	return counts, nil
}

// Today returns full days elapsed since the collection was created.
func (s *Store) Today(ctx context.Context) (int, error) {
	var createdAt int64
	err := s.db.QueryRowContext(ctx, "SELECT created_at FROM col WHERE id = 1").Scan(&createdAt)
	if err != nil {
		return 0, fmt.Errorf("collection: read creation time: %w", err)
	}
	elapsed := s.now().Unix() - createdAt
	if elapsed < 0 {
		return 0, nil
	}
	return int(elapsed / 86400), nil
}

// DeckName returns the full name of a deck.
func (s *Store) DeckName(ctx context.Context, deckID int64) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx, "SELECT name FROM decks WHERE id = ?", deckID).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("collection: deck %d: %w", deckID, host.ErrUnavailable)
	}
	if err != nil {
		return "", fmt.Errorf("collection: deck name: %w", err)
	}
	return name, nil
}

// BuryCards parks the given cards until tomorrow.
func (s *Store) BuryCards(ctx context.Context, ids []int64) error {
	return s.setQueue(ctx, ids, host.QueueManuallyBuried)
}

// SuspendCards parks the given cards until manually resumed.
func (s *Store) SuspendCards(ctx context.Context, ids []int64) error {
	return s.setQueue(ctx, ids, host.QueueSuspended)
}

func (s *Store) setQueue(ctx context.Context, ids []int64, queue int) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]any, 0, len(ids)+2)
	args = append(args, queue, s.now().Unix())
	for _, id := range ids {
		args = append(args, id)
	}
	placeholders := strings.Repeat("?, ", len(ids)-1) + "?"
	_, err := s.db.ExecContext(ctx,
		"UPDATE cards SET queue = ?, mod = ? WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return fmt.Errorf("collection: set queue: %w", err)
	}
	return nil
}

// Note loads a note and its tags.
func (s *Store) Note(ctx context.Context, id int64) (*host.Note, error) {
	var tags string
	err := s.db.QueryRowContext(ctx, "SELECT tags FROM notes WHERE id = ?", id).Scan(&tags)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("collection: note %d: %w", id, host.ErrUnavailable)
	}
	if err != nil {
		return nil, fmt.Errorf("collection: note: %w", err)
	}
	return &host.Note{ID: id, Tags: splitTags(tags)}, nil
}

// SaveNote writes the note's tags back.
func (s *Store) SaveNote(ctx context.Context, note *host.Note) error {
	res, err := s.db.ExecContext(ctx, "UPDATE notes SET tags = ? WHERE id = ?",
		joinTags(note.Tags), note.ID)
	if err != nil {
		return fmt.Errorf("collection: save note: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("collection: save note: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("collection: note %d: %w", note.ID, host.ErrUnavailable)
	}
	return nil
}

// NoteCardIDs returns the ids of every card generated from the note.
func (s *Store) NoteCardIDs(ctx context.Context, noteID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM cards WHERE note_id = ? ORDER BY id", noteID)
	if err != nil {
		return nil, fmt.Errorf("collection: note cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("collection: note cards: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// FindCards resolves a search query to card ids. Supported forms:
// "tag:<name>", "deck:<name>", or a bare term matched against both.
func (s *Store) FindCards(ctx context.Context, query string) ([]int64, error) {
	query = strings.TrimSpace(query)

	var (
		stmt string
		args []any
	)
	switch {
	case strings.HasPrefix(query, "tag:"):
		stmt = `SELECT c.id FROM cards c JOIN notes n ON n.id = c.note_id
			WHERE ' ' || n.tags || ' ' LIKE ? ORDER BY c.id`
		args = []any{"% " + strings.TrimPrefix(query, "tag:") + " %"}
	case strings.HasPrefix(query, "deck:"):
		stmt = `SELECT c.id FROM cards c JOIN decks d ON d.id = c.deck_id
			WHERE d.name = ? ORDER BY c.id`
		args = []any{strings.TrimPrefix(query, "deck:")}
	default:
		stmt = `SELECT c.id FROM cards c
			JOIN notes n ON n.id = c.note_id
			JOIN decks d ON d.id = c.deck_id
			WHERE n.tags LIKE ? OR d.name LIKE ? ORDER BY c.id`
		like := "%" + query + "%"
		args = []any{like, like}
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("collection: find cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("collection: find cards: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// NextIntervalDays estimates the interval the card would receive for an ease
// button under the built-in scheduler.
func (s *Store) NextIntervalDays(ctx context.Context, card *host.Card, ease int) (float64, error) {
	return nextIntervalDays(card, ease)
}

func nextIntervalDays(card *host.Card, ease int) (float64, error) {
	base := float64(card.Interval)
	if base < 1 {
		base = 1
	}
	growth := float64(card.Factor) / 1000
	if growth <= 0 {
		growth = float64(host.DefaultCardFactor) / 1000
	}

	switch ease {
	case host.EaseAgain:
		// Relearning step of ten minutes.
		return 10.0 / 1440.0, nil
	case host.EaseHard:
		return base * 1.2, nil
	case host.EaseGood:
		return base * growth, nil
	case host.EaseEasy:
		return base * growth * 1.3, nil
	default:
		return 0, fmt.Errorf("collection: ease %d out of range", ease)
	}
}

func scanCard(row *sql.Row) (*host.Card, error) {
	var c host.Card
	err := row.Scan(
		&c.ID, &c.NoteID, &c.DeckID, &c.Type, &c.Queue, &c.Due, &c.Interval,
		&c.Factor, &c.Reps, &c.Lapses, &c.Left, &c.Flags, &c.Mod,
		&c.Template.Name, &c.Template.Question, &c.Template.Answer,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("collection: card: %w", host.ErrUnavailable)
	}
	if err != nil {
		return nil, fmt.Errorf("collection: scan card: %w", err)
	}
	return &c, nil
}

// Tags are stored space-separated, matching the note format the original
// collection uses. Tags themselves never contain spaces (validation converts
// them to underscores).
func splitTags(s string) []string {
	return strings.Fields(s)
}

func joinTags(tags []string) string {
	return strings.Join(tags, " ")
}

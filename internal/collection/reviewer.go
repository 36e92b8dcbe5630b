package collection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/droidbridge/droidbridge/internal/host"
)

// Session is a review session over a Store. It implements host.Reviewer:
// learning cards come first, then reviews due today, then new cards.
//
// The reviewer interface is synchronous (it models the UI thread), so the
// session issues its queries on a background context.
type Session struct {
	store *Store
	card  *host.Card
	state string
}

// NewSession starts a review session and loads the first card.
func NewSession(ctx context.Context, store *Store) (*Session, error) {
	s := &Session{store: store}
	if err := s.advance(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Card returns the card under review.
func (s *Session) Card() (*host.Card, bool) {
	return s.card, s.card != nil
}

// State reports which side of the card is showing.
func (s *Session) State() string {
	return s.state
}

// ShowAnswer flips the card to its answer side.
func (s *Session) ShowAnswer() error {
	if s.card == nil {
		return fmt.Errorf("reviewer: %w", host.ErrUnavailable)
	}
	s.state = host.StateAnswer
	return nil
}

// AnswerCard grades the current card and advances to the next one.
func (s *Session) AnswerCard(ease int) error {
	if s.card == nil {
		return fmt.Errorf("reviewer: %w", host.ErrUnavailable)
	}
	if ease < host.EaseAgain || ease > host.EaseEasy {
		return fmt.Errorf("reviewer: ease %d out of range", ease)
	}

	ctx := context.Background()
	card := s.card
	today, err := s.store.Today(ctx)
	if err != nil {
		return err
	}

	card.Reps++
	if ease == host.EaseAgain {
		card.Lapses++
		card.Type = host.CardTypeRelearning
		card.Queue = host.QueueLearning
		card.Interval = 0
		card.Due = today
	} else {
		days, err := nextIntervalDays(card, ease)
		if err != nil {
			return err
		}
		card.Interval = int(math.Max(1, days))
		card.Type = host.CardTypeReview
		card.Queue = host.QueueReview
		card.Due = today + card.Interval
	}

	if err := s.store.SaveCard(ctx, card); err != nil {
		return err
	}
	return s.advance(ctx)
}

// NextCard advances past the current card without grading it.
func (s *Session) NextCard() error {
	return s.advance(context.Background())
}

// advance loads the next due card, skipping the one just shown.
func (s *Session) advance(ctx context.Context) error {
	today, err := s.store.Today(ctx)
	if err != nil {
		return err
	}

	var skip int64 = -1
	if s.card != nil {
		skip = s.card.ID
	}

	// Queue ranking: learning, due reviews, new.
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+cardColumns+` FROM cards
		WHERE id != ?
		  AND (queue IN (?, ?)
		       OR (queue = ? AND due <= ?)
		       OR queue = ?)
		ORDER BY CASE
			WHEN queue IN (?, ?) THEN 0
			WHEN queue = ? THEN 1
			ELSE 2
		END, due, id
		LIMIT 1`,
		skip,
		host.QueueLearning, host.QueueDayLearning,
		host.QueueReview, today,
		host.QueueNew,
		host.QueueLearning, host.QueueDayLearning,
		host.QueueReview,
	)

	card, err := scanCard(row)
	if errors.Is(err, host.ErrUnavailable) || errors.Is(err, sql.ErrNoRows) {
		s.card = nil
		s.state = ""
		return nil
	}
	if err != nil {
		return err
	}

	s.card = card
	s.state = host.StateQuestion
	return nil
}

// Interface guard.
var _ host.Reviewer = (*Session)(nil)

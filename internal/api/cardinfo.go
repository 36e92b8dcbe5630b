package api

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/droidbridge/droidbridge/internal/bridge"
	"github.com/droidbridge/droidbridge/internal/host"
)

// Per-card time estimates, in seconds, behind the ETA calculation.
const (
	newCardEstimateSec      = 20
	learningCardEstimateSec = 10
	reviewCardEstimateSec   = 10
)

// daysPerMonth converts day intervals to the month labels shown on long
// intervals.
const daysPerMonth = 30.44

func (a *API) cardInfoOperations() []bridge.Operation {
	return []bridge.Operation{
		{Name: "ankiGetNewCardCount", Handler: a.newCardCount},
		{Name: "ankiGetLrnCardCount", Handler: a.learningCardCount},
		{Name: "ankiGetRevCardCount", Handler: a.reviewCardCount},
		{Name: "ankiGetETA", Handler: a.eta},
		{Name: "ankiGetCardMark", Handler: a.cardMark},
		{Name: "ankiGetCardFlag", Handler: a.cardField(0, func(c *host.Card) any { return c.Flags })},
		{Name: "ankiGetCardLeft", Handler: a.cardLeft},
		{Name: "ankiGetCardReps", Handler: a.cardField(0, func(c *host.Card) any { return c.Reps })},
		{Name: "ankiGetCardInterval", Handler: a.cardField(0, func(c *host.Card) any { return c.Interval })},
		{Name: "ankiGetCardFactor", Handler: a.cardField(host.DefaultCardFactor, func(c *host.Card) any { return c.Factor })},
		{Name: "ankiGetCardMod", Handler: a.cardField(int64(0), func(c *host.Card) any { return c.Mod })},
		{Name: "ankiGetCardId", Handler: a.cardField(int64(0), func(c *host.Card) any { return c.ID })},
		{Name: "ankiGetCardNid", Handler: a.cardField(int64(0), func(c *host.Card) any { return c.NoteID })},
		{Name: "ankiGetCardType", Handler: a.cardField(0, func(c *host.Card) any { return c.Type })},
		{Name: "ankiGetCardDid", Handler: a.cardField(int64(0), func(c *host.Card) any { return c.DeckID })},
		{Name: "ankiGetCardQueue", Handler: a.cardField(0, func(c *host.Card) any { return c.Queue })},
		{Name: "ankiGetCardLapses", Handler: a.cardField(0, func(c *host.Card) any { return c.Lapses })},
		{Name: "ankiGetCardDue", Handler: a.cardField(0, func(c *host.Card) any { return c.Due })},
		{Name: "ankiGetDeckName", Handler: a.deckName},
		{Name: "ankiGetNextTime1", Handler: a.nextTime(host.EaseAgain)},
		{Name: "ankiGetNextTime2", Handler: a.nextTime(host.EaseHard)},
		{Name: "ankiGetNextTime3", Handler: a.nextTime(host.EaseGood)},
		{Name: "ankiGetNextTime4", Handler: a.nextTime(host.EaseEasy)},
	}
}

func (a *API) newCardCount(ctx context.Context, _ bridge.Args) (any, error) {
	counts, _ := a.counts(ctx)
	return counts.New, nil
}

func (a *API) learningCardCount(ctx context.Context, _ bridge.Args) (any, error) {
	counts, _ := a.counts(ctx)
	return counts.Learning, nil
}

func (a *API) reviewCardCount(ctx context.Context, _ bridge.Args) (any, error) {
	counts, _ := a.counts(ctx)
	return counts.Review, nil
}

// eta estimates minutes of study remaining from the due counts.
func (a *API) eta(ctx context.Context, _ bridge.Args) (any, error) {
	counts, ok := a.counts(ctx)
	if !ok {
		return 0, nil
	}
	totalSeconds := counts.New*newCardEstimateSec +
		counts.Learning*learningCardEstimateSec +
		counts.Review*reviewCardEstimateSec
	return totalSeconds / 60, nil
}

// cardLeft is the learning plus review load still due today.
func (a *API) cardLeft(ctx context.Context, _ bridge.Args) (any, error) {
	counts, _ := a.counts(ctx)
	return counts.Learning + counts.Review, nil
}

// cardMark reports whether the current note carries the marked tag.
func (a *API) cardMark(ctx context.Context, _ bridge.Args) (any, error) {
	note, ok, err := a.currentNote(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return false, nil
	}
	return note.HasTag(host.MarkedTag), nil
}

// deckName returns the basename of the current deck: "Japanese::N5" reads as
// "N5", matching what the deck list shows for nested decks.
func (a *API) deckName(ctx context.Context, _ bridge.Args) (any, error) {
	card, ok := a.currentCard()
	if !ok || a.hst.Collection == nil {
		return "", nil
	}
	name, err := a.hst.Collection.DeckName(ctx, card.DeckID)
	if err != nil {
		a.logger.Warn("failed to resolve deck name",
			slog.Int64("deck_id", card.DeckID), slog.Any("error", err))
		return "", nil
	}
	if i := strings.LastIndex(name, "::"); i >= 0 {
		name = name[i+2:]
	}
	return name, nil
}

// nextTime previews the interval label an ease button would schedule, e.g.
// "10m", "25d", or "2.5mo". Unavailable schedulers answer with "".
func (a *API) nextTime(ease int) bridge.Handler {
	return func(ctx context.Context, _ bridge.Args) (any, error) {
		card, ok := a.currentCard()
		if !ok || a.hst.Collection == nil {
			return "", nil
		}
		days, err := a.hst.Collection.NextIntervalDays(ctx, card, ease)
		if err != nil {
			a.logger.Warn("failed to preview interval",
				slog.Int("ease", ease), slog.Any("error", err))
			return "", nil
		}
		return intervalLabel(days), nil
	}
}

func intervalLabel(days float64) string {
	switch {
	case days < 1:
		return fmt.Sprintf("%dm", int(days*1440))
	case days < 30:
		return fmt.Sprintf("%dd", int(days))
	default:
		return fmt.Sprintf("%.1fmo", days/daysPerMonth)
	}
}

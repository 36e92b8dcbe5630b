package api

import (
	"context"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/droidbridge/droidbridge/internal/bridge"
	"github.com/droidbridge/droidbridge/internal/host"
	"github.com/droidbridge/droidbridge/internal/security"
)

// Bounds for rescheduling a card: up to one year into the past, ten years
// into the future.
const (
	MinCardDueDays = -365
	MaxCardDueDays = 3650
)

const maxSearchQueryLength = 500

func (a *API) cardActionOperations() []bridge.Operation {
	return []bridge.Operation{
		{Name: "ankiMarkCard", Handler: a.markCard},
		{Name: "ankiToggleFlag", Params: []string{"flag_color"}, Handler: a.toggleFlag},
		{Name: "ankiBuryCard", Handler: a.buryCard},
		{Name: "ankiBuryNote", Handler: a.buryNote},
		{Name: "ankiSuspendCard", Handler: a.suspendCard},
		{Name: "ankiSuspendNote", Handler: a.suspendNote},
		{Name: "ankiResetProgress", Handler: a.resetProgress},
		{Name: "ankiSearchCard", Params: []string{"query"}, Handler: a.searchCard},
		{Name: "ankiSetCardDue", Params: []string{"days"}, Handler: a.setCardDue},
	}
}

// markCard toggles the marked tag on the current note. The mark lives on the
// note, so every card generated from it picks up the change.
func (a *API) markCard(ctx context.Context, _ bridge.Args) (any, error) {
	note, ok, err := a.currentNote(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return false, nil
	}

	if note.HasTag(host.MarkedTag) {
		note.Tags = slices.DeleteFunc(note.Tags, func(t string) bool { return t == host.MarkedTag })
	} else {
		note.Tags = append(note.Tags, host.MarkedTag)
	}

	if err := a.hst.Collection.SaveNote(ctx, note); err != nil {
		return nil, err
	}
	return true, nil
}

// toggleFlag sets the flag color of the current card. The color arrives as an
// integer 0-7 (validated) or a color name (unknown names fall back to none).
func (a *API) toggleFlag(ctx context.Context, args bridge.Args) (any, error) {
	v, err := requireArg("ankiToggleFlag", args, "flag_color")
	if err != nil {
		return nil, err
	}

	card, ok := a.currentCard()
	if !ok || a.hst.Collection == nil {
		return false, nil
	}

	var flag int
	switch c := v.(type) {
	case string:
		flag = host.FlagByName[strings.ToLower(c)]
	default:
		n, err := security.ValidateInteger(v, host.FlagNone, host.FlagPurple)
		if err != nil {
			return nil, err
		}
		flag = int(n)
	}

	card.Flags = flag
	if err := a.hst.Collection.SaveCard(ctx, card); err != nil {
		return nil, err
	}
	return true, nil
}

// buryCard parks the current card until tomorrow and advances the reviewer.
func (a *API) buryCard(ctx context.Context, _ bridge.Args) (any, error) {
	card, ok := a.currentCard()
	if !ok || a.hst.Collection == nil {
		return false, nil
	}
	if err := a.hst.Collection.BuryCards(ctx, []int64{card.ID}); err != nil {
		a.logger.Warn("failed to bury card", slog.Int64("card_id", card.ID), slog.Any("error", err))
		return false, nil
	}
	a.advanceReviewer()
	return true, nil
}

// buryNote buries every card generated from the current note.
func (a *API) buryNote(ctx context.Context, _ bridge.Args) (any, error) {
	if a.hst.Collection == nil {
		return false, nil
	}
	return a.noteCardsAction(ctx, a.hst.Collection.BuryCards)
}

// suspendCard removes the current card from review until manually resumed.
func (a *API) suspendCard(ctx context.Context, _ bridge.Args) (any, error) {
	card, ok := a.currentCard()
	if !ok || a.hst.Collection == nil {
		return false, nil
	}
	if err := a.hst.Collection.SuspendCards(ctx, []int64{card.ID}); err != nil {
		a.logger.Warn("failed to suspend card", slog.Int64("card_id", card.ID), slog.Any("error", err))
		return false, nil
	}
	a.advanceReviewer()
	return true, nil
}

// suspendNote suspends every card generated from the current note.
func (a *API) suspendNote(ctx context.Context, _ bridge.Args) (any, error) {
	if a.hst.Collection == nil {
		return false, nil
	}
	return a.noteCardsAction(ctx, a.hst.Collection.SuspendCards)
}

func (a *API) noteCardsAction(ctx context.Context, act func(context.Context, []int64) error) (any, error) {
	card, ok := a.currentCard()
	if !ok || a.hst.Collection == nil {
		return false, nil
	}
	ids, err := a.hst.Collection.NoteCardIDs(ctx, card.NoteID)
	if err != nil {
		return nil, err
	}
	if err := act(ctx, ids); err != nil {
		return nil, err
	}
	a.advanceReviewer()
	return true, nil
}

func (a *API) advanceReviewer() {
	if a.hst.Reviewer == nil {
		return
	}
	if err := a.hst.Reviewer.NextCard(); err != nil {
		a.logger.Warn("failed to advance reviewer", slog.Any("error", err))
	}
}

// resetProgress returns the current card to the new state.
func (a *API) resetProgress(ctx context.Context, _ bridge.Args) (any, error) {
	card, ok := a.currentCard()
	if !ok || a.hst.Collection == nil {
		return false, nil
	}

	card.Type = host.CardTypeNew
	card.Queue = host.QueueNew
	card.Interval = 0
	card.Due = 0
	card.Reps = 0
	card.Lapses = 0
	card.Left = 0
	card.Factor = host.DefaultCardFactor

	if err := a.hst.Collection.SaveCard(ctx, card); err != nil {
		a.logger.Warn("failed to reset card", slog.Int64("card_id", card.ID), slog.Any("error", err))
		return false, nil
	}
	if a.hst.Window != nil {
		a.hst.Window.RequireReset()
	}
	return true, nil
}

// searchCard opens the card browser on a search query. Invalid queries are
// refused, not errored: the template only learns that the search did not run.
func (a *API) searchCard(ctx context.Context, args bridge.Args) (any, error) {
	v, err := requireArg("ankiSearchCard", args, "query")
	if err != nil {
		return nil, err
	}
	query, err := security.ValidateText(v, security.TextOptions{
		MaxLength:        maxSearchQueryLength,
		Pattern:          searchQueryPattern,
		DisallowNewlines: true,
	})
	if err != nil {
		a.logger.Warn("rejected search query", slog.Any("error", err))
		return false, nil
	}

	if a.hst.Window == nil {
		return false, nil
	}
	if err := a.hst.Window.OpenBrowser(query); err != nil {
		a.logger.Warn("failed to open browser", slog.Any("error", err))
		return false, nil
	}
	return true, nil
}

// searchQueryPattern extends the default text pattern with the ":" search
// operator and quotes for phrase search.
var searchQueryPattern = regexp.MustCompile(`^[\p{L}\p{N}_\s.,!?;:\-'"「」。、*]+$`)

// setCardDue reschedules the current card to today plus days.
func (a *API) setCardDue(ctx context.Context, args bridge.Args) (any, error) {
	v, err := requireArg("ankiSetCardDue", args, "days")
	if err != nil {
		return nil, err
	}
	days, err := security.ValidateInteger(v, MinCardDueDays, MaxCardDueDays)
	if err != nil {
		return nil, err
	}

	card, ok := a.currentCard()
	if !ok || a.hst.Collection == nil {
		return false, nil
	}
	today, err := a.hst.Collection.Today(ctx)
	if err != nil {
		return nil, err
	}

	card.Due = today + int(days)
	if err := a.hst.Collection.SaveCard(ctx, card); err != nil {
		return nil, err
	}
	return true, nil
}

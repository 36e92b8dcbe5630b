// Package api registers the callable operation surface: every function a card
// template can invoke through the bridge. Handlers degrade to safe defaults
// (zero, false, empty string) when the reviewer, collection, or window is
// absent, so a template probing the API on a bare host never sees an error.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/droidbridge/droidbridge/internal/bridge"
	"github.com/droidbridge/droidbridge/internal/host"
	"github.com/droidbridge/droidbridge/internal/tts"
)

// DefaultToastDuration is used when the configuration does not set one.
const DefaultToastDuration = 2 * time.Second

// Config assembles the collaborators the operations reach into.
type Config struct {
	Host   *host.Host
	TTS    *tts.Engine
	Logger *slog.Logger

	// ShowToasts gates toast notifications; ToastDuration is the short toast
	// length (long toasts double it).
	ShowToasts    bool
	ToastDuration time.Duration

	// TTSEnabled gates speech synthesis.
	TTSEnabled bool
}

// API implements the registered operations.
type API struct {
	hst    *host.Host
	tts    *tts.Engine
	logger *slog.Logger

	showToasts    bool
	toastDuration time.Duration
	ttsEnabled    bool
}

// New builds the operation set. A nil host is tolerated; every operation then
// answers with its safe default.
func New(cfg Config) *API {
	hst := cfg.Host
	if hst == nil {
		hst = &host.Host{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	duration := cfg.ToastDuration
	if duration <= 0 {
		duration = DefaultToastDuration
	}
	return &API{
		hst:           hst,
		tts:           cfg.TTS,
		logger:        logger,
		showToasts:    cfg.ShowToasts,
		toastDuration: duration,
		ttsEnabled:    cfg.TTSEnabled,
	}
}

// Register adds every operation to the registry.
func (a *API) Register(reg *bridge.Registry) error {
	groups := [][]bridge.Operation{
		a.cardInfoOperations(),
		a.cardActionOperations(),
		a.reviewerOperations(),
		a.uiOperations(),
		a.tagOperations(),
		a.ttsOperations(),
		a.utilityOperations(),
	}
	for _, ops := range groups {
		for _, op := range ops {
			if err := reg.Register(op); err != nil {
				return fmt.Errorf("api: %w", err)
			}
		}
	}
	return nil
}

func (a *API) utilityOperations() []bridge.Operation {
	return []bridge.Operation{
		// Desktop connections are not metered; reported as a constant so
		// templates written against the mobile API keep working.
		{Name: "ankiIsActiveNetworkMetered", Handler: constHandler(false)},
	}
}

// currentCard returns the card under review, or false when idle.
func (a *API) currentCard() (*host.Card, bool) {
	return a.hst.CurrentCard()
}

// currentNote loads the note behind the current card.
func (a *API) currentNote(ctx context.Context) (*host.Note, bool, error) {
	card, ok := a.currentCard()
	if !ok || a.hst.Collection == nil {
		return nil, false, nil
	}
	note, err := a.hst.Collection.Note(ctx, card.NoteID)
	if err != nil {
		return nil, false, err
	}
	return note, true, nil
}

// counts fetches the scheduler counts, logging and zeroing on failure.
func (a *API) counts(ctx context.Context) (host.Counts, bool) {
	if a.hst.Collection == nil {
		return host.Counts{}, false
	}
	counts, err := a.hst.Collection.Counts(ctx)
	if err != nil {
		a.logger.Warn("failed to read scheduler counts", slog.Any("error", err))
		return host.Counts{}, false
	}
	return counts, true
}

// constHandler answers every call with a fixed value.
func constHandler(v any) bridge.Handler {
	return func(context.Context, bridge.Args) (any, error) {
		return v, nil
	}
}

// cardField reads one field off the current card, or answers def when no card
// is under review.
func (a *API) cardField(def any, get func(*host.Card) any) bridge.Handler {
	return func(context.Context, bridge.Args) (any, error) {
		card, ok := a.currentCard()
		if !ok {
			return def, nil
		}
		return get(card), nil
	}
}

// requireArg fetches a declared argument, surfacing its absence as a type
// error the same way a missing required parameter would read.
func requireArg(op string, args bridge.Args, name string) (any, error) {
	v, ok := args.Arg(name)
	if !ok {
		return nil, bridge.Errorf(bridge.KindTypeError, "%s: missing required argument %q", op, name)
	}
	return v, nil
}

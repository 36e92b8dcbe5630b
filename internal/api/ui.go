package api

import (
	"context"
	"log/slog"

	"github.com/droidbridge/droidbridge/internal/bridge"
)

func (a *API) uiOperations() []bridge.Operation {
	return []bridge.Operation{
		{Name: "ankiIsInFullscreen", Handler: a.isInFullscreen},
		// The desktop shell always shows its toolbar.
		{Name: "ankiIsTopbarShown", Handler: constHandler(true)},
		{Name: "ankiIsInNightMode", Handler: a.isInNightMode},
		// Scrollbar control is acknowledged but not applied; templates
		// written for the mobile API expect the calls to exist.
		{Name: "ankiEnableHorizontalScrollbar", Params: []string{"enabled"}, Handler: constHandler(true)},
		{Name: "ankiEnableVerticalScrollbar", Params: []string{"enabled"}, Handler: constHandler(true)},
		{Name: "ankiShowNavigationDrawer", Handler: a.showNavigationDrawer},
		{Name: "ankiShowOptionsMenu", Handler: a.showOptionsMenu},
		{Name: "ankiShowToast", Params: []string{"text", "short_length"}, Handler: a.showToast},
	}
}

func (a *API) isInFullscreen(context.Context, bridge.Args) (any, error) {
	if a.hst.Window == nil {
		return false, nil
	}
	return a.hst.Window.IsFullscreen(), nil
}

func (a *API) isInNightMode(context.Context, bridge.Args) (any, error) {
	if a.hst.Window == nil {
		return false, nil
	}
	return a.hst.Window.NightMode(), nil
}

// showNavigationDrawer has no drawer to open on desktop; the deck browser is
// the closest equivalent.
func (a *API) showNavigationDrawer(context.Context, bridge.Args) (any, error) {
	if a.hst.Window == nil {
		return false, nil
	}
	if err := a.hst.Window.ShowDeckBrowser(); err != nil {
		return nil, err
	}
	return true, nil
}

// showOptionsMenu opens the deck options of the current card's deck.
func (a *API) showOptionsMenu(context.Context, bridge.Args) (any, error) {
	card, ok := a.currentCard()
	if !ok || a.hst.Window == nil {
		return false, nil
	}
	if err := a.hst.Window.OpenDeckOptions(card.DeckID); err != nil {
		a.logger.Warn("failed to open deck options",
			slog.Int64("deck_id", card.DeckID), slog.Any("error", err))
		return false, nil
	}
	return true, nil
}

// showToast displays a notification. Long toasts double the configured
// duration. Returns false when notifications are disabled.
func (a *API) showToast(_ context.Context, args bridge.Args) (any, error) {
	v, err := requireArg("ankiShowToast", args, "text")
	if err != nil {
		return nil, err
	}
	text, ok := v.(string)
	if !ok {
		return nil, bridge.Errorf(bridge.KindTypeError, "ankiShowToast: text must be a string, got %T", v)
	}

	short := true
	if s, ok := args.Arg("short_length"); ok {
		b, ok := s.(bool)
		if !ok {
			return nil, bridge.Errorf(bridge.KindTypeError, "ankiShowToast: short_length must be a boolean, got %T", s)
		}
		short = b
	}

	if !a.showToasts || a.hst.Window == nil {
		return false, nil
	}

	duration := a.toastDuration
	if !short {
		duration *= 2
	}
	a.hst.Window.ShowToast(text, duration)
	return true, nil
}

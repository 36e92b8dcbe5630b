package app

import (
	"log/slog"
	"time"

	"github.com/droidbridge/droidbridge/internal/host"
)

// consoleWindow is the headless stand-in for the application shell. The
// daemon has no UI of its own, so window interactions surface in the log and
// report conservative state.
type consoleWindow struct {
	logger *slog.Logger
}

func newConsoleWindow(logger *slog.Logger) *consoleWindow {
	return &consoleWindow{logger: logger}
}

func (w *consoleWindow) IsFullscreen() bool { return false }
func (w *consoleWindow) NightMode() bool    { return false }

func (w *consoleWindow) ShowToast(text string, duration time.Duration) {
	w.logger.Info("toast",
		slog.String("text", text),
		slog.Duration("duration", duration))
}

func (w *consoleWindow) OpenBrowser(query string) error {
	w.logger.Info("card browser requested", slog.String("query", query))
	return nil
}

func (w *consoleWindow) OpenDeckOptions(deckID int64) error {
	w.logger.Info("deck options requested", slog.Int64("deck_id", deckID))
	return nil
}

func (w *consoleWindow) ShowDeckBrowser() error {
	w.logger.Info("deck browser requested")
	return nil
}

func (w *consoleWindow) RequireReset() {
	w.logger.Debug("ui reset required")
}

var _ host.Window = (*consoleWindow)(nil)

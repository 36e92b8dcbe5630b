package gateway

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"golang.org/x/time/rate"
)

// socketEvaluator delivers callback scripts over the WebSocket as text
// messages; the webview side evals each one.
type socketEvaluator struct {
	ctx    context.Context
	conn   *websocket.Conn
	logger *slog.Logger
}

func (e *socketEvaluator) Eval(script string) {
	if err := e.conn.Write(e.ctx, websocket.MessageText, []byte(script)); err != nil {
		e.logger.Debug("callback write failed", slog.Any("error", err))
	}
}

// handleReviewerSocket runs one webview connection: each text message is a
// raw command string, each callback goes back as a text message. A per-
// connection message budget sits in front of the bridge's own per-template
// limiter, bounding parse work a flooding client can cause.
func (g *Gateway) handleReviewerSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		g.logger.Error("websocket accept failed", slog.Any("error", err))
		return
	}
	defer func() {
		_ = conn.Close(websocket.StatusInternalError, "unexpected close")
	}()

	conn.SetReadLimit(g.readLimitBytes)

	g.connections.Add(1)
	g.metrics.connectionOpened()
	defer func() {
		g.connections.Add(-1)
		g.metrics.connectionClosed()
	}()
	g.logger.Info("reviewer connected", slog.String("remote", r.RemoteAddr))

	ctx := r.Context()
	eval := &socketEvaluator{ctx: ctx, conn: conn, logger: g.logger}
	limiter := rate.NewLimiter(rate.Limit(g.messagesPerSecond), int(g.messagesPerSecond))

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			g.logger.Info("reviewer disconnected", slog.String("remote", r.RemoteAddr))
			return
		}
		if typ != websocket.MessageText {
			continue
		}

		if !limiter.Allow() {
			g.logger.Warn("socket message rate exceeded, closing connection",
				slog.String("remote", r.RemoteAddr))
			_ = conn.Close(websocket.StatusPolicyViolation, "message rate exceeded")
			return
		}

		if !g.router.HandleCommand(ctx, string(data), eval) {
			g.logger.Debug("ignoring non-bridge message")
		}
	}
}

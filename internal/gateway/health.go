package gateway

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status      string `json:"status"`
	Operations  int    `json:"operations"`
	Connections int64  `json:"connections"`
	UptimeSec   int64  `json:"uptime_sec"`
}

func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := HealthResponse{
			Status:      "ok",
			Connections: g.connections.Load(),
		}
		if g.registry != nil {
			resp.Operations = len(g.registry.Names())
		}
		if !g.startedAt.IsZero() {
			resp.UptimeSec = int64(time.Since(g.startedAt) / time.Second)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

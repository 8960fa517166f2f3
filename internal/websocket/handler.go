package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"
)

// HandleWebSocket upgrades the request and serves it as a bridge client.
// Only same-origin browsers and the listed origin patterns may connect.
func HandleWebSocket(hub *Hub, bridge *Bridge, originPatterns []string, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			logger.Warn("websocket accept", "error", err)
			return
		}

		defer conn.CloseNow()

		NewClient(hub, bridge, conn, logger).Run(r.Context())
	}
}

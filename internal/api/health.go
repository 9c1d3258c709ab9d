package api

import (
	"net/http"

	ws "github.com/Priya8975/melon-site/internal/websocket"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status           string `json:"status"`
	Version          string `json:"version"`
	WebsocketClients int    `json:"websocket_clients"`
}

// HealthHandler returns the health check handler.
func HealthHandler(hub *ws.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:  "healthy",
			Version: "1.0.0",
		}
		if hub != nil {
			resp.WebsocketClients = hub.ClientCount()
		}

		respondJSON(w, http.StatusOK, resp)
	}
}

// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jason-s-yu/chinchon/internal/game"
	"github.com/jason-s-yu/chinchon/internal/middleware"
	"github.com/jason-s-yu/chinchon/internal/models"
	"github.com/sirupsen/logrus"
)

// SimWSHandler streams a simulated game's events to a spectator at /sim/ws/{game_id}.
// The optional seat query parameter reveals that seat's hand in the initial sync state.
// The connection closes normally once the game is over.
func SimWSHandler(logger *logrus.Logger, gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pathParts := strings.Split(strings.TrimPrefix(r.URL.Path, "/sim/ws/"), "/")
		if len(pathParts) < 1 || pathParts[0] == "" {
			http.Error(w, "Missing game_id in path (/sim/ws/{game_id})", http.StatusBadRequest)
			return
		}
		gameID, err := uuid.Parse(pathParts[0])
		if err != nil {
			http.Error(w, "Invalid game_id format", http.StatusBadRequest)
			return
		}

		if gs.isFinished(gameID) {
			http.Error(w, "Game has already ended", http.StatusGone)
			return
		}
		g, ok := gs.GameStore.GetGame(gameID)
		if !ok {
			http.Error(w, "Game not found", http.StatusNotFound)
			return
		}
		hub, ok := gs.hub(gameID)
		if !ok {
			http.Error(w, "Game not found", http.StatusNotFound)
			return
		}
		events, unsubscribe, ok := hub.Subscribe()
		if !ok {
			http.Error(w, "Game has already ended", http.StatusGone)
			return
		}
		defer unsubscribe()

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"game"},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.Warnf("WebSocket accept error for game %s: %v", gameID, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

		if c.Subprotocol() != "game" {
			logger.Warnf("Client for game %s connected with invalid subprotocol: %s", gameID, c.Subprotocol())
			c.Close(BadSubprotocolError, "Client must use the 'game' subprotocol.")
			return
		}

		seat, err := parseSeat(r.URL.Query().Get("seat"))
		if err != nil {
			c.Close(InvalidSeatError, "seat must be 0-3 or -1")
			return
		}

		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)
		ctx := c.CloseRead(r.Context())
		err = streamGame(ctx, c, g, seat, events)
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, err)
		if err == nil {
			c.Close(websocket.StatusNormalClosure, "game over")
		}
	}
}

func parseSeat(raw string) (int, error) {
	if raw == "" {
		return game.SpectatorSeat, nil
	}
	seat, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if seat != game.SpectatorSeat && (seat < 0 || seat >= models.NumSeats) {
		return 0, game.ErrInvalidSeat
	}
	return seat, nil
}

// streamGame writes the sync state then every event until the hub closes the channel.
// It returns nil when the stream ended because the game did.
func streamGame(ctx context.Context, c *websocket.Conn, g *game.ChinchonGame, seat int, events <-chan []byte) error {
	if err := writeEvent(ctx, c, game.EventBytes(g.SyncStateEvent(seat))); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case data, ok := <-events:
			if !ok {
				return nil
			}
			if err := writeEvent(ctx, c, data); err != nil {
				return err
			}
		}
	}
}

func writeEvent(ctx context.Context, c *websocket.Conn, data []byte) error {
	writeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return c.Write(writeCtx, websocket.MessageText, data)
}

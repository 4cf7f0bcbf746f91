// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the spectator stream.
const (
	BadSubprotocolError = 3000 // Client connected with an unsupported subprotocol.
	InvalidSeatError    = 3001 // The seat query parameter is not a seat or the spectator seat.
)

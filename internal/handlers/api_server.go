// internal/handlers/api_server.go
package handlers

import (
	"net/http"

	"github.com/jason-s-yu/chinchon/internal/middleware"
	"github.com/sirupsen/logrus"
)

// NewRouter wires every endpoint behind the request logging middleware.
func NewRouter(logger *logrus.Logger, gs *GameServer) http.Handler {
	mux := http.NewServeMux()
	logged := middleware.LogMiddleware(logger)

	// engine endpoints
	mux.Handle("/engine/analyze", logged(AnalyzeHandler(gs)))
	mux.Handle("/engine/score", logged(ScoreHandler(gs)))

	// simulations
	mux.Handle("/sim/create", logged(CreateSimHandler(gs)))
	mux.Handle("/sim/ws/", logged(SimWSHandler(logger, gs)))

	return mux
}

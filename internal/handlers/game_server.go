// internal/handlers/game_server.go
package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/chinchon/internal/cache"
	"github.com/jason-s-yu/chinchon/internal/database"
	"github.com/jason-s-yu/chinchon/internal/game"
	"github.com/jason-s-yu/chinchon/internal/models"
	"github.com/sirupsen/logrus"
)

// GameServer holds the simulated games being played and the analysis cache shared by the
// engine endpoints.
type GameServer struct {
	GameStore *game.GameStore
	Analysis  *cache.AnalysisCache
	Defaults  game.Settings
	Logger    *logrus.Logger

	// ctx bounds every simulation's lifetime; cancelling it stops them all.
	ctx context.Context

	// Retention is how long a finished simulation stays queryable before it is dropped.
	Retention time.Duration

	hubsMu   sync.Mutex
	hubs     map[uuid.UUID]*eventHub
	finished map[uuid.UUID]struct{}
	// finishedOrder evicts the oldest finished IDs once maxFinished is reached.
	finishedOrder []uuid.UUID
}

const (
	defaultRetention = time.Minute
	maxFinished      = 4096
)

// NewGameServer creates a server whose simulations run until ctx is done. analysis may be
// nil, in which case every analysis is computed fresh.
func NewGameServer(ctx context.Context, defaults game.Settings, analysis *cache.AnalysisCache, logger *logrus.Logger) *GameServer {
	if logger == nil {
		logger = logrus.New()
	}
	return &GameServer{
		GameStore: game.NewGameStore(),
		Analysis:  analysis,
		Defaults:  defaults,
		Logger:    logger,
		Retention: defaultRetention,
		ctx:       ctx,
		hubs:      make(map[uuid.UUID]*eventHub),
		finished:  make(map[uuid.UUID]struct{}),
	}
}

// NewSimulation seats four bots under settings and starts playing in the background.
// Scored rounds and the final outcome are persisted when a database is connected.
func (gs *GameServer) NewSimulation(settings game.Settings, seed int64) *game.ChinchonGame {
	g := game.NewChinchonGame(settings, seed, gs.Logger)
	hub := newEventHub()
	g.BroadcastFn = hub.Broadcast
	var once sync.Once
	retire := func() { once.Do(func() { gs.retire(g.ID, hub) }) }

	if pool := database.DB; pool != nil {
		if err := database.UpsertGame(gs.ctx, pool, g.ID, settings); err != nil {
			gs.Logger.Warnf("failed to store game %s: %v", g.ID, err)
		}
		g.OnRoundEnd = func(gameID uuid.UUID, summary game.RoundSummary) {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := database.RecordRoundResults(ctx, pool, gameID, summary); err != nil {
					gs.Logger.Warnf("failed to record round %d of game %s: %v", summary.Round, gameID, err)
				}
			}()
		}
	}
	g.OnGameEnd = func(gameID uuid.UUID, result game.GameResult) {
		if pool := database.DB; pool != nil {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := database.RecordGameOutcome(ctx, pool, gameID, result); err != nil {
					gs.Logger.Warnf("failed to record outcome of game %s: %v", gameID, err)
				}
			}()
		}
		// game_end has already been broadcast by the time this runs.
		retire()
	}

	gs.GameStore.AddGame(g)
	gs.hubsMu.Lock()
	gs.hubs[g.ID] = hub
	gs.hubsMu.Unlock()

	go func() {
		if err := g.Run(gs.ctx); err != nil {
			gs.Logger.WithField("game_id", g.ID).Warnf("simulation stopped: %v", err)
			retire()
		}
	}()
	return g
}

// retire closes a finished game's hub and drops the game after Retention. Its ID is
// remembered so late spectators get 410 instead of 404.
func (gs *GameServer) retire(gameID uuid.UUID, hub *eventHub) {
	hub.Close()
	time.AfterFunc(gs.Retention, func() {
		gs.GameStore.DeleteGame(gameID)

		gs.hubsMu.Lock()
		defer gs.hubsMu.Unlock()
		delete(gs.hubs, gameID)
		if len(gs.finishedOrder) >= maxFinished {
			delete(gs.finished, gs.finishedOrder[0])
			gs.finishedOrder = gs.finishedOrder[1:]
		}
		gs.finished[gameID] = struct{}{}
		gs.finishedOrder = append(gs.finishedOrder, gameID)
	})
}

// isFinished reports whether gameID belongs to a game that has been dropped.
func (gs *GameServer) isFinished(gameID uuid.UUID) bool {
	gs.hubsMu.Lock()
	defer gs.hubsMu.Unlock()
	_, ok := gs.finished[gameID]
	return ok
}

// hubCount returns how many games still have an event hub.
func (gs *GameServer) hubCount() int {
	gs.hubsMu.Lock()
	defer gs.hubsMu.Unlock()
	return len(gs.hubs)
}

func (gs *GameServer) hub(gameID uuid.UUID) (*eventHub, bool) {
	gs.hubsMu.Lock()
	defer gs.hubsMu.Unlock()
	h, ok := gs.hubs[gameID]
	return h, ok
}

// analyze goes through the cache when one is configured.
func (gs *GameServer) analyze(hand []models.Card, flexible bool) (cache.Analysis, bool) {
	if gs.Analysis != nil {
		return gs.Analysis.Analyze(hand, flexible)
	}
	return cache.Compute(hand, flexible), false
}

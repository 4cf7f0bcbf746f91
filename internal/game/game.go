// internal/game/game.go
package game

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/chinchon/internal/cache"
	"github.com/jason-s-yu/chinchon/internal/engine"
	"github.com/jason-s-yu/chinchon/internal/models"
	"github.com/sirupsen/logrus"
)

// OnRoundEndFunc receives the scores of every finished round.
type OnRoundEndFunc func(gameID uuid.UUID, summary RoundSummary)

// OnGameEndFunc receives the final outcome once a total crosses the limit.
type OnGameEndFunc func(gameID uuid.UUID, result GameResult)

// GameEventType is an enum-like type for broadcasting game actions.
type GameEventType string

const (
	EventRoundStart       GameEventType = "game_round_start"
	EventGamePlayerTurn   GameEventType = "game_player_turn"
	EventPlayerDraw       GameEventType = "player_draw"
	EventReshuffle        GameEventType = "game_reshuffle"
	EventPlayerDiscard    GameEventType = "player_discard"
	EventPlayerClose      GameEventType = "player_close"
	EventRoundEnd         GameEventType = "game_round_end"
	EventGameEnd          GameEventType = "game_end"
	EventPrivateSyncState GameEventType = "private_sync_state"
)

// EventUser identifies a seat in event payloads.
type EventUser struct {
	ID   uuid.UUID `json:"id"`
	Seat int       `json:"seat"`
	Name string    `json:"name,omitempty"`
}

// EventCard describes a card that is public knowledge.
type EventCard struct {
	Suit models.Suit `json:"suit"`
	Rank models.Rank `json:"rank"`
	Name string      `json:"name"`
	Idx  *int        `json:"idx,omitempty"`
}

// GameEvent holds data about an event that can be broadcast to the clients in a consistent format.
type GameEvent struct {
	Type    GameEventType          `json:"type"`
	User    *EventUser             `json:"user,omitempty"`
	Card    *EventCard             `json:"card,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	State   *ObfRoundState         `json:"state,omitempty"`
}

// Phase is the step the seat whose turn it is must take next.
type Phase int

const (
	PhaseWaiting Phase = iota
	PhaseDraw
	PhaseDiscard
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseDraw:
		return "draw"
	case PhaseDiscard:
		return "discard"
	case PhaseGameOver:
		return "game_over"
	default:
		return "waiting"
	}
}

// SeatResult is one seat's line in a round summary.
type SeatResult struct {
	Seat     int           `json:"seat"`
	PlayerID uuid.UUID     `json:"playerId"`
	RoundPts int           `json:"roundPts"`
	TotalPts int           `json:"totalPts"`
	Hand     []models.Card `json:"hand"`
	Slots    engine.Slots  `json:"slots"`
}

// RoundSummary is the scored result of one round. Closer is -1 when the round ran out of
// turns without anyone closing.
type RoundSummary struct {
	Round   int          `json:"round"`
	RoundID uuid.UUID    `json:"roundId"`
	Closer  int          `json:"closer"`
	Turns   int          `json:"turns"`
	Results []SeatResult `json:"results"`
}

// GameResult is handed to OnGameEnd.
type GameResult struct {
	Outcome engine.GameOutcome `json:"outcome"`
	Rounds  int                `json:"rounds"`
	Players []models.Player    `json:"players"`
}

// FlaggedPlayer is the seat whose total first crossed the limit in ascending order.
func (r GameResult) FlaggedPlayer() models.Player {
	return r.Players[r.Outcome.Flagged]
}

// LeaderPlayer is the seat with the lowest total.
func (r GameResult) LeaderPlayer() models.Player {
	return r.Players[r.Outcome.Leader]
}

// ChinchonGame holds the entire state for a single four-seat game instance in memory.
type ChinchonGame struct {
	ID       uuid.UUID
	Settings Settings

	Players [models.NumSeats]*PlayerState
	Round   *RoundState
	Rounds  []RoundSummary
	Phase   Phase
	Outcome engine.GameOutcome

	Started  bool
	GameOver bool
	Mu       sync.Mutex

	// Deck, when set, is dealt in this exact order at the start of every round.
	Deck []models.Card

	// BroadcastFn is used to send events to every watcher. If nil, no broadcast is done.
	BroadcastFn func(ev GameEvent)

	OnRoundEnd OnRoundEndFunc
	OnGameEnd  OnGameEndFunc

	logger      *logrus.Logger
	rng         *rand.Rand
	actionIndex int
}

// NewChinchonGame seats four bots. A zero seed picks a time-based one. A nil logger
// discards all output.
func NewChinchonGame(settings Settings, seed int64, logger *logrus.Logger) *ChinchonGame {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	g := &ChinchonGame{
		ID:       uuid.New(),
		Settings: settings,
		logger:   logger,
		rng:      rand.New(rand.NewSource(seed)),
	}
	for seat := range g.Players {
		g.Players[seat] = &PlayerState{
			Player: models.NewBotPlayer(seat),
			Hand:   models.NewHand(),
		}
	}
	return g
}

func (g *ChinchonGame) log() *logrus.Entry {
	return g.logger.WithField("game_id", g.ID)
}

// Start deals the first round.
func (g *ChinchonGame) Start() error {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.start()
}

// start assumes lock is held.
func (g *ChinchonGame) start() error {
	if g.Started || g.GameOver {
		return fmt.Errorf("start game: %w", ErrWrongPhase)
	}
	g.Started = true
	g.log().WithField("settings", fmt.Sprintf("%+v", g.Settings)).Info("game started")
	g.logAction(uuid.Nil, "game_start", map[string]interface{}{"settings": g.Settings})
	return g.startRound()
}

// startRound deals a fresh round and announces the first turn.
// Assumes lock is held.
func (g *ChinchonGame) startRound() error {
	number := len(g.Rounds) + 1
	round := NewRoundState(number, g.Players, g.Settings, g.rng)
	if err := round.Deal(g.nextDeck()); err != nil {
		return err
	}
	g.Round = round
	g.Phase = PhaseDraw

	g.log().WithFields(logrus.Fields{"round": number, "round_id": round.ID}).Debug("round dealt")
	g.fireEvent(GameEvent{
		Type: EventRoundStart,
		Payload: map[string]interface{}{
			"round":       number,
			"roundId":     round.ID,
			"drawSize":    round.Draw.Len(),
			"discardSize": round.Discard.Len(),
		},
	})
	g.logAction(uuid.Nil, string(EventRoundStart), map[string]interface{}{"round": number, "roundId": round.ID})
	g.broadcastPlayerTurn()
	return nil
}

// nextDeck returns the order the next round is dealt from.
// Assumes lock is held.
func (g *ChinchonGame) nextDeck() []models.Card {
	if g.Deck != nil {
		deck := make([]models.Card, len(g.Deck))
		copy(deck, g.Deck)
		return deck
	}
	return models.ShuffledUniverse(g.rng)
}

// HandleAction routes a GameAction for seat to the matching move.
func (g *ChinchonGame) HandleAction(seat int, action models.GameAction) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	switch action.ActionType {
	case "action_draw":
		src, err := parseSource(action.Payload)
		if err != nil {
			return err
		}
		return g.draw(seat, src)
	case "action_discard":
		idx, err := parseIdx(action.Payload)
		if err != nil {
			return err
		}
		return g.discard(seat, idx)
	case "action_close":
		idx, err := parseIdx(action.Payload)
		if err != nil {
			return err
		}
		return g.closeRound(seat, idx)
	default:
		return fmt.Errorf("unknown action type %q", action.ActionType)
	}
}

func parseSource(payload map[string]interface{}) (engine.Source, error) {
	switch payload["source"] {
	case nil, "deck":
		return engine.SourceDeck, nil
	case "discard":
		return engine.SourceDiscard, nil
	default:
		return engine.SourceDeck, fmt.Errorf("invalid draw source %v", payload["source"])
	}
}

func parseIdx(payload map[string]interface{}) (int, error) {
	switch v := payload["idx"].(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	default:
		return 0, fmt.Errorf("invalid or missing idx %v", payload["idx"])
	}
}

// Draw takes a card for seat from src.
func (g *ChinchonGame) Draw(seat int, src engine.Source) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.draw(seat, src)
}

// Discard throws the card at hand position idx and passes the turn.
func (g *ChinchonGame) Discard(seat, idx int) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.discard(seat, idx)
}

// Close throws the card at idx and ends the round, provided the remaining hand's melds
// allow it.
func (g *ChinchonGame) Close(seat, idx int) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.closeRound(seat, idx)
}

// checkTurn assumes lock is held.
func (g *ChinchonGame) checkTurn(seat int, want Phase) error {
	if g.GameOver {
		return ErrGameOver
	}
	if !g.Started || g.Round == nil {
		return ErrWrongPhase
	}
	if seat < 0 || seat >= models.NumSeats {
		return fmt.Errorf("%w: %d", ErrInvalidSeat, seat)
	}
	if g.Round.Closed {
		return ErrRoundOver
	}
	if seat != g.Round.Turn {
		return fmt.Errorf("%w: seat %d, turn %d", ErrNotYourTurn, seat, g.Round.Turn)
	}
	if g.Phase != want {
		return fmt.Errorf("%w: %s expected, in %s", ErrWrongPhase, want, g.Phase)
	}
	return nil
}

// draw assumes lock is held.
func (g *ChinchonGame) draw(seat int, src engine.Source) error {
	if err := g.checkTurn(seat, PhaseDraw); err != nil {
		return err
	}
	p := g.Players[seat]
	card, reshuffled, err := g.Round.DrawCard(seat, src)
	if err != nil {
		return err
	}
	g.Phase = PhaseDiscard

	ev := GameEvent{
		Type: EventPlayerDraw,
		User: eventUser(p),
		Payload: map[string]interface{}{
			"source":      src.String(),
			"drawSize":    g.Round.Draw.Len(),
			"discardSize": g.Round.Discard.Len(),
		},
	}
	// A card taken from the discard pile was already face up.
	if src == engine.SourceDiscard {
		ev.Card = eventCard(card, nil)
	}
	g.fireEvent(ev)
	g.logAction(p.ID, string(EventPlayerDraw), map[string]interface{}{"source": src.String(), "card": card})

	if reshuffled {
		g.log().WithFields(logrus.Fields{"round": g.Round.Number, "draw_size": g.Round.Draw.Len()}).Debug("discards reshuffled into draw pile")
		g.fireEvent(GameEvent{
			Type:    EventReshuffle,
			Payload: map[string]interface{}{"drawSize": g.Round.Draw.Len()},
		})
		g.logAction(uuid.Nil, string(EventReshuffle), map[string]interface{}{"drawSize": g.Round.Draw.Len()})
	}
	return nil
}

// discard assumes lock is held.
func (g *ChinchonGame) discard(seat, idx int) error {
	if err := g.checkTurn(seat, PhaseDiscard); err != nil {
		return err
	}
	p := g.Players[seat]
	card, err := g.Round.DiscardAt(seat, idx)
	if err != nil {
		return err
	}
	g.fireEvent(GameEvent{
		Type: EventPlayerDiscard,
		User: eventUser(p),
		Card: eventCard(card, &idx),
	})
	g.logAction(p.ID, string(EventPlayerDiscard), map[string]interface{}{"card": card, "idx": idx})
	return g.advanceTurn()
}

// closeRound assumes lock is held.
func (g *ChinchonGame) closeRound(seat, idx int) error {
	if err := g.checkTurn(seat, PhaseDiscard); err != nil {
		return err
	}
	advice, err := g.Round.CloseAdvice(seat, idx)
	if err != nil {
		return err
	}
	if !advice.CanFinish() {
		return fmt.Errorf("%w: advice %s", ErrCannotClose, advice)
	}
	p := g.Players[seat]
	card, err := g.Round.DiscardAt(seat, idx)
	if err != nil {
		return err
	}
	g.Round.Closed = true
	g.fireEvent(GameEvent{
		Type:    EventPlayerClose,
		User:    eventUser(p),
		Card:    eventCard(card, &idx),
		Payload: map[string]interface{}{"advice": advice.String()},
	})
	g.logAction(p.ID, string(EventPlayerClose), map[string]interface{}{"card": card, "idx": idx, "advice": int(advice)})
	return g.endRound(seat)
}

// advanceTurn moves to the next seat, or scores the round when it has stalled.
// Assumes lock is held.
func (g *ChinchonGame) advanceTurn() error {
	g.Round.NextTurn()
	if g.Round.Stalled() {
		g.log().WithFields(logrus.Fields{"round": g.Round.Number, "turns": g.Round.Turns}).Info("round stalled without a closer")
		return g.endRound(-1)
	}
	g.Phase = PhaseDraw
	g.broadcastPlayerTurn()
	return nil
}

// broadcastPlayerTurn notifies all watchers whose turn it is now.
// Assumes lock is held.
func (g *ChinchonGame) broadcastPlayerTurn() {
	p := g.Round.Current()
	g.fireEvent(GameEvent{
		Type: EventGamePlayerTurn,
		User: eventUser(p),
		Payload: map[string]interface{}{
			"round": g.Round.Number,
			"turn":  g.Round.Turns,
		},
	})
}

// endRound scores every seat, then either ends the game or deals the next round.
// Assumes lock is held.
func (g *ChinchonGame) endRound(closer int) error {
	g.Round.Closed = true
	scores := g.Round.ScoreAll()

	summary := RoundSummary{
		Round:   g.Round.Number,
		RoundID: g.Round.ID,
		Closer:  closer,
		Turns:   g.Round.Turns,
		Results: make([]SeatResult, 0, models.NumSeats),
	}
	for seat, p := range g.Players {
		summary.Results = append(summary.Results, SeatResult{
			Seat:     seat,
			PlayerID: p.ID,
			RoundPts: scores[seat].RoundPts,
			TotalPts: scores[seat].TotalPts,
			Hand:     p.Hand.Cards(),
			Slots:    p.Slots,
		})
	}
	g.Rounds = append(g.Rounds, summary)

	g.log().WithFields(logrus.Fields{"round": summary.Round, "closer": closer, "totals": g.Round.Totals()}).Info("round scored")
	g.fireEvent(GameEvent{
		Type: EventRoundEnd,
		Payload: map[string]interface{}{
			"round":   summary.Round,
			"closer":  closer,
			"results": summary.Results,
		},
	})
	g.logAction(uuid.Nil, string(EventRoundEnd), map[string]interface{}{"round": summary.Round, "closer": closer, "totals": g.Round.Totals()})
	if g.OnRoundEnd != nil {
		g.OnRoundEnd(g.ID, summary)
	}

	g.Outcome = engine.DetectGameOver(g.Round.Totals(), g.Settings.MaxTotalPoints)
	if g.Outcome.Over {
		g.endGame()
		return nil
	}
	return g.startRound()
}

// endGame marks the game over and reports the outcome.
// Assumes lock is held.
func (g *ChinchonGame) endGame() {
	if g.GameOver {
		return
	}
	g.GameOver = true
	g.Phase = PhaseGameOver

	result := g.result()
	flagged, leader := result.FlaggedPlayer(), result.LeaderPlayer()

	g.log().WithFields(logrus.Fields{
		"rounds":  result.Rounds,
		"flagged": flagged.Seat,
		"leader":  leader.Seat,
	}).Info("game over")
	g.fireEvent(GameEvent{
		Type: EventGameEnd,
		Payload: map[string]interface{}{
			"rounds":    result.Rounds,
			"flagged":   flagged.ID.String(),
			"leader":    leader.ID.String(),
			"standings": g.Outcome.Standings,
		},
	})
	g.logAction(uuid.Nil, string(EventGameEnd), map[string]interface{}{
		"rounds":  result.Rounds,
		"flagged": flagged.ID,
		"leader":  leader.ID,
		"totals":  g.Round.Totals(),
	})
	if g.OnGameEnd != nil {
		g.OnGameEnd(g.ID, result)
	}
}

// result assumes lock is held.
func (g *ChinchonGame) result() GameResult {
	players := make([]models.Player, models.NumSeats)
	for seat, p := range g.Players {
		players[seat] = *p.Player
	}
	return GameResult{Outcome: g.Outcome, Rounds: len(g.Rounds), Players: players}
}

// Result returns the outcome so far; Outcome.Over tells whether the game has ended.
func (g *ChinchonGame) Result() GameResult {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.result()
}

// PlayBotTurn plays one complete turn for the seat whose turn it is: draw by the source
// heuristic, then close if the melds allow it or discard the least useful card.
func (g *ChinchonGame) PlayBotTurn() error {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.playBotTurn()
}

// playBotTurn assumes lock is held.
func (g *ChinchonGame) playBotTurn() error {
	if g.GameOver {
		return ErrGameOver
	}
	if g.Round == nil {
		return ErrWrongPhase
	}
	seat := g.Round.Turn

	src, err := g.Round.ChooseSource(seat)
	if err != nil {
		return err
	}
	if err := g.draw(seat, src); err != nil {
		return fmt.Errorf("bot %d draw: %w", seat, err)
	}

	advice, err := g.Round.AdviseToFinish(seat)
	if err != nil {
		return err
	}
	p := g.Players[seat]
	idx, ok := engine.ChooseDiscard(p.Hand.Cards(), p.Slots)
	if !ok {
		return fmt.Errorf("bot %d: %w", seat, models.ErrEmptyPile)
	}
	if advice.CanFinish() {
		err := g.closeRound(seat, idx)
		if err == nil || !errors.Is(err, ErrCannotClose) {
			return err
		}
	}
	return g.discard(seat, idx)
}

// Run starts the game if needed and plays bot turns until the game ends or ctx is done.
func (g *ChinchonGame) Run(ctx context.Context) error {
	g.Mu.Lock()
	if !g.Started {
		if err := g.start(); err != nil {
			g.Mu.Unlock()
			return err
		}
	}
	delay := time.Duration(g.Settings.BotTurnDelayMs) * time.Millisecond
	g.Mu.Unlock()

	for {
		g.Mu.Lock()
		if g.GameOver {
			g.Mu.Unlock()
			return nil
		}
		err := g.playBotTurn()
		g.Mu.Unlock()
		if err != nil {
			return err
		}

		if delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// Totals returns the running totals by seat.
func (g *ChinchonGame) Totals() []int {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	totals := make([]int, models.NumSeats)
	for seat, p := range g.Players {
		totals[seat] = p.Score.TotalPts
	}
	return totals
}

// fireEvent broadcasts an event to all watchers.
// Assumes lock is held.
func (g *ChinchonGame) fireEvent(ev GameEvent) {
	if g.BroadcastFn != nil {
		g.BroadcastFn(ev)
	}
}

// logAction pushes an action record to the historian queue when Redis is connected.
func (g *ChinchonGame) logAction(actorID uuid.UUID, actionType string, payload map[string]interface{}) {
	g.actionIndex++
	if cache.Rdb == nil {
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}
	record := cache.GameActionRecord{
		GameID:        g.ID,
		ActionIndex:   g.actionIndex,
		ActorUserID:   actorID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	if g.Round != nil {
		record.RoundID = g.Round.ID
	}
	go func(rec cache.GameActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishGameAction(ctx, rec); err != nil {
			g.log().WithError(err).WithField("action_index", rec.ActionIndex).Warn("failed to publish game action")
		}
	}(record)
}

func eventUser(p *PlayerState) *EventUser {
	return &EventUser{ID: p.ID, Seat: p.Seat, Name: p.Name}
}

func eventCard(c models.Card, idx *int) *EventCard {
	return &EventCard{Suit: c.Suit, Rank: c.Rank, Name: c.String(), Idx: idx}
}

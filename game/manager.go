package game

import (
	"fmt"

	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map"

	caches "presidents.com/server/caching"
	"presidents.com/server/cards"
	"presidents.com/server/timer"
	"presidents.com/server/util"
)

// NotifierFactory returns the notifier for a new game.
type NotifierFactory func(gameCode string) Notifier

// Manager owns the running engines. All engines share one classifier and
// one scheduler.
type Manager struct {
	classifier  *cards.Classifier
	scheduler   timer.Scheduler
	newNotifier NotifierFactory
	dealer      DealSource
	timing      Timing
	activeGames cmap.ConcurrentMap
	players     *caches.PlayerCache
}

const playerCacheSize = 100000

func NewGameManager(scheduler timer.Scheduler, newNotifier NotifierFactory, dealer DealSource, timing Timing) *Manager {
	if scheduler == nil {
		scheduler = timer.NewWallClock(nil)
	}
	if newNotifier == nil {
		newNotifier = func(string) Notifier { return NopNotifier{} }
	}
	players, err := caches.NewCache(playerCacheSize)
	if err != nil {
		panic("Cannot initialize player cache")
	}
	return &Manager{
		classifier:  cards.NewClassifier(),
		scheduler:   scheduler,
		newNotifier: newNotifier,
		dealer:      dealer,
		timing:      timing,
		activeGames: cmap.New(),
		players:     players,
	}
}

// NewGame starts an engine waiting for four players under a new game code.
func (gm *Manager) NewGame() *Engine {
	code := uuid.New().String()
	engine := NewEngine(EngineConfig{
		Code:       code,
		Classifier: gm.classifier,
		Scheduler:  gm.scheduler,
		Notifier:   gm.newNotifier(code),
		Dealer:     gm.dealer,
		Timing:     gm.timing,
	})
	gm.activeGames.Set(code, engine)
	util.Metrics.SetActiveGames(gm.activeGames.Count())
	return engine
}

func (gm *Manager) Game(gameCode string) (*Engine, bool) {
	v, ok := gm.activeGames.Get(gameCode)
	if !ok {
		return nil, false
	}
	return v.(*Engine), true
}

// EndGame closes the engine and forgets it.
func (gm *Manager) EndGame(gameCode string) error {
	v, ok := gm.activeGames.Pop(gameCode)
	if !ok {
		return fmt.Errorf("Game %s is not found", gameCode)
	}
	engine := v.(*Engine)
	for _, seat := range engine.Snapshot().Seats {
		if seat.Occupied {
			gm.players.Remove(seat.PlayerID)
		}
	}
	engine.Close()
	util.Metrics.SetActiveGames(gm.activeGames.Count())
	return nil
}

func (gm *Manager) ActiveGames() []string {
	return gm.activeGames.Keys()
}

// JoinGame seats a player in a game and returns the seat and the new player id.
func (gm *Manager) JoinGame(gameCode string, name string) (Seat, string, error) {
	engine, ok := gm.Game(gameCode)
	if !ok {
		return NoSeat, "", fmt.Errorf("Game %s is not found", gameCode)
	}
	seat, err := engine.JoinAtRandomSeat(name)
	if err != nil {
		return NoSeat, "", err
	}
	playerID := engine.Snapshot().Seats[seat].PlayerID
	if err := gm.players.Add(playerID, gameCode, int(seat)); err != nil {
		return seat, playerID, err
	}
	return seat, playerID, nil
}

// LocatePlayer finds the engine and seat of a player that joined through JoinGame.
func (gm *Manager) LocatePlayer(playerID string) (*Engine, Seat, bool) {
	loc, ok := gm.players.Locate(playerID)
	if !ok {
		return nil, NoSeat, false
	}
	engine, ok := gm.Game(loc.GameCode)
	if !ok {
		gm.players.Remove(playerID)
		return nil, NoSeat, false
	}
	return engine, Seat(loc.Seat), true
}

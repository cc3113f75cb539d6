package nats

import (
	natsgo "github.com/nats-io/nats.go"
	"github.com/pkg/errors"

	"presidents.com/server/game"
	"presidents.com/server/logging"
	"presidents.com/server/util"
)

var natsGMLogger = logging.GetZeroLogger("nats::gamemanager", nil)

// GameManager is a game.Manager whose engines publish their events to NATS.
type GameManager struct {
	*game.Manager
	nc       *natsgo.Conn
	ownsConn bool
}

// NewGameManager publishes on nc. A nil nc connects to NATS_URL.
func NewGameManager(nc *natsgo.Conn) (*GameManager, error) {
	ownsConn := false
	if nc == nil {
		natsURL := util.Env.GetNatsURL()
		if natsURL == "" {
			natsURL = natsgo.DefaultURL
		}
		var err error
		nc, err = natsgo.Connect(natsURL)
		if err != nil {
			natsGMLogger.Error().Msgf("Failed to connect to nats server: %v", err)
			return nil, errors.Wrapf(err, "connecting to %s", natsURL)
		}
		ownsConn = true
	}

	encrypt := util.Env.ShouldEncryptSeatMsg()
	manager, err := game.CreateGameManager(func(gameCode string) game.Notifier {
		return NewNotifier(nc, gameCode, encrypt)
	})
	if err != nil {
		if ownsConn {
			nc.Close()
		}
		return nil, err
	}
	return &GameManager{
		Manager:  manager,
		nc:       nc,
		ownsConn: ownsConn,
	}, nil
}

// Close ends every active game and flushes pending events.
func (gm *GameManager) Close() error {
	for _, gameCode := range gm.ActiveGames() {
		if err := gm.EndGame(gameCode); err != nil {
			natsGMLogger.Warn().Err(err).Msg("Could not end game")
		}
	}
	if err := gm.nc.Flush(); err != nil {
		return errors.Wrap(err, "flushing events")
	}
	if gm.ownsConn {
		gm.nc.Close()
	}
	return nil
}

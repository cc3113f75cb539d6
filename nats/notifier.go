package nats

import (
	"sync"

	jsoniter "github.com/json-iterator/go"
	natsgo "github.com/nats-io/nats.go"

	"presidents.com/server/encryption"
	"presidents.com/server/game"
	"presidents.com/server/logging"
)

var natsLogger = logging.GetZeroLogger("nats::notifier", nil)

// EventMessage is the JSON envelope published for every engine event.
type EventMessage struct {
	GameCode string      `json:"gameCode"`
	MsgType  string      `json:"msgType"`
	Seat     int         `json:"seat"`
	Payload  interface{} `json:"payload,omitempty"`
}

// Notifier publishes the events of one game. Publish only buffers the
// message, so it is safe to call while the engine holds its lock.
//
// With encryption on, seat events are sealed with the seat's player id,
// learned from the game's PLAYER_JOINED events.
type Notifier struct {
	nc       *natsgo.Conn
	gameCode string
	encrypt  bool

	lock      sync.Mutex
	playerIDs [game.NumSeats]string
}

func NewNotifier(nc *natsgo.Conn, gameCode string, encrypt bool) *Notifier {
	return &Notifier{
		nc:       nc,
		gameCode: gameCode,
		encrypt:  encrypt,
	}
}

func (n *Notifier) Notify(kind game.EventKind, seat game.Seat, payload interface{}) {
	if joined, ok := payload.(game.PlayerJoinedPayload); ok && joined.Seat.Valid() {
		n.lock.Lock()
		n.playerIDs[joined.Seat] = joined.PlayerID
		n.lock.Unlock()
	}
	message := EventMessage{
		GameCode: n.gameCode,
		MsgType:  string(kind),
		Seat:     int(seat),
		Payload:  payload,
	}
	data, err := jsoniter.Marshal(message)
	if err != nil {
		natsLogger.Error().Err(err).
			Str(logging.GameCodeKey, n.gameCode).
			Str(logging.MsgTypeKey, message.MsgType).
			Msg("Could not encode event")
		return
	}

	subject := GetEventsSubject(n.gameCode)
	if seat != game.NoSeat {
		subject = GetSeatSubject(n.gameCode, int(seat))
		if n.encrypt {
			data, err = n.seal(data, seat)
			if err != nil {
				natsLogger.Error().Err(err).
					Str(logging.GameCodeKey, n.gameCode).
					Int(logging.SeatNumKey, int(seat)).
					Msg("Unable to encrypt message to seat")
				return
			}
		}
	}
	natsLogger.Debug().
		Str(logging.GameCodeKey, n.gameCode).
		Str(logging.MsgTypeKey, message.MsgType).
		Str("subject", subject).
		Msg("Game->Players")
	err = n.nc.Publish(subject, data)
	if err != nil {
		natsLogger.Error().Err(err).
			Str(logging.GameCodeKey, n.gameCode).
			Str("subject", subject).
			Msg("Could not publish event")
	}
}

func (n *Notifier) seal(data []byte, seat game.Seat) ([]byte, error) {
	n.lock.Lock()
	playerID := n.playerIDs[seat]
	n.lock.Unlock()
	return encryption.SealForPlayer(data, playerID)
}

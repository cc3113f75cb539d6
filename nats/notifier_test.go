package nats

import (
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/nats-io/nats-server/v2/server"
	natsserver "github.com/nats-io/nats-server/v2/test"
	natsgo "github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"

	"presidents.com/server/cards"
	"presidents.com/server/encryption"
	"presidents.com/server/game"
)

func runServer(t *testing.T) *server.Server {
	t.Helper()
	opts := natsserver.DefaultTestOptions
	opts.Port = -1
	s := natsserver.RunServer(&opts)
	t.Cleanup(s.Shutdown)
	return s
}

func connect(t *testing.T, s *server.Server) *natsgo.Conn {
	t.Helper()
	nc, err := natsgo.Connect(s.ClientURL())
	require.NoError(t, err)
	t.Cleanup(nc.Close)
	return nc
}

func nextEvent(t *testing.T, sub *natsgo.Subscription) map[string]interface{} {
	t.Helper()
	msg, err := sub.NextMsg(2 * time.Second)
	require.NoError(t, err)
	var event map[string]interface{}
	require.NoError(t, jsoniter.Unmarshal(msg.Data, &event))
	return event
}

func TestSubjects(t *testing.T) {
	require.Equal(t, "presidents.abc.events", GetEventsSubject("abc"))
	require.Equal(t, "presidents.abc.seat.3", GetSeatSubject("abc", 3))
}

func TestNotifierRoutesBySeat(t *testing.T) {
	s := runServer(t)
	nc := connect(t, s)

	events, err := nc.SubscribeSync(GetEventsSubject("g1"))
	require.NoError(t, err)
	seat2, err := nc.SubscribeSync(GetSeatSubject("g1", 2))
	require.NoError(t, err)
	require.NoError(t, nc.Flush())

	n := NewNotifier(nc, "g1", false)
	n.Notify(game.TurnStarted, game.NoSeat, game.TurnPayload{Seat: 1})
	n.Notify(game.Rejected, 2, game.RejectedPayload{Msg: "it is not your turn", Permitted: true})
	require.NoError(t, nc.Flush())

	event := nextEvent(t, events)
	require.Equal(t, "g1", event["gameCode"])
	require.Equal(t, string(game.TurnStarted), event["msgType"])
	require.Equal(t, float64(-1), event["seat"])
	require.Equal(t, map[string]interface{}{"seat": float64(1)}, event["payload"])

	event = nextEvent(t, seat2)
	require.Equal(t, string(game.Rejected), event["msgType"])
	require.Equal(t, float64(2), event["seat"])
	require.Equal(t, map[string]interface{}{"msg": "it is not your turn", "permitted": true}, event["payload"])

	_, err = events.NextMsg(100 * time.Millisecond)
	require.Equal(t, natsgo.ErrTimeout, err)
}

func TestCardListsAreNumbers(t *testing.T) {
	s := runServer(t)
	nc := connect(t, s)
	seat0, err := nc.SubscribeSync(GetSeatSubject("g3", 0))
	require.NoError(t, err)
	events, err := nc.SubscribeSync(GetEventsSubject("g3"))
	require.NoError(t, err)
	require.NoError(t, nc.Flush())

	n := NewNotifier(nc, "g3", false)
	n.Notify(game.CardsDealt, 0, game.CardsPayload{Cards: []cards.Card{1, 2, 3, 40}})
	n.Notify(game.HandPlayed, game.NoSeat, game.HandPayload{Seat: 0, Cards: []cards.Card{1, 2}, Type: cards.Double})
	require.NoError(t, nc.Flush())

	event := nextEvent(t, seat0)
	require.Equal(t, string(game.CardsDealt), event["msgType"])
	payload := event["payload"].(map[string]interface{})
	require.Equal(t, []interface{}{float64(1), float64(2), float64(3), float64(40)}, payload["cards"])

	event = nextEvent(t, events)
	payload = event["payload"].(map[string]interface{})
	require.Equal(t, []interface{}{float64(1), float64(2)}, payload["cards"])
	require.Equal(t, float64(cards.Double), payload["type"])
}

func TestSeatEventsAreEncrypted(t *testing.T) {
	s := runServer(t)
	nc := connect(t, s)
	seat1, err := nc.SubscribeSync(GetSeatSubject("g2", 1))
	require.NoError(t, err)
	events, err := nc.SubscribeSync(GetEventsSubject("g2"))
	require.NoError(t, err)
	require.NoError(t, nc.Flush())

	playerID := "7faadaf6-ed32-47a9-a09a-01fd0daf9c3f"
	n := NewNotifier(nc, "g2", true)
	n.Notify(game.PlayerJoined, game.NoSeat, game.PlayerJoinedPayload{Seat: 1, Name: "bob", PlayerID: playerID})
	n.Notify(game.GivingOptions, 1, game.CardsPayload{Cards: nil})
	// unknown player: nothing is published
	n.Notify(game.GivingOptions, 3, game.CardsPayload{Cards: nil})
	require.NoError(t, nc.Flush())

	// broadcast events stay readable
	event := nextEvent(t, events)
	require.Equal(t, string(game.PlayerJoined), event["msgType"])

	msg, err := seat1.NextMsg(2 * time.Second)
	require.NoError(t, err)
	require.False(t, jsoniter.Valid(msg.Data))
	data, err := encryption.OpenForPlayer(msg.Data, playerID)
	require.NoError(t, err)
	var opened map[string]interface{}
	require.NoError(t, jsoniter.Unmarshal(data, &opened))
	require.Equal(t, string(game.GivingOptions), opened["msgType"])
}

func TestGameManagerPublishesEngineEvents(t *testing.T) {
	t.Setenv("TIMING_CONFIG", "")
	t.Setenv("DEAL_SETUP_METHOD", "")
	t.Setenv("ENABLE_SEAT_MSG_ENCRYPTION", "")
	s := runServer(t)
	nc := connect(t, s)
	events, err := nc.SubscribeSync("presidents.*.events")
	require.NoError(t, err)
	require.NoError(t, nc.Flush())

	gm, err := NewGameManager(nc)
	require.NoError(t, err)
	engine := gm.NewGame()
	seat, err := engine.JoinAtRandomSeat("alice")
	require.NoError(t, err)

	event := nextEvent(t, events)
	require.Equal(t, engine.Code(), event["gameCode"])
	require.Equal(t, string(game.PlayerJoined), event["msgType"])
	payload := event["payload"].(map[string]interface{})
	require.Equal(t, "alice", payload["name"])
	require.Equal(t, float64(seat), payload["seat"])

	require.NoError(t, gm.Close())
	require.Empty(t, gm.ActiveGames())
	event = nextEvent(t, events)
	require.Equal(t, string(game.GameClosed), event["msgType"])
	require.False(t, nc.IsClosed())
}

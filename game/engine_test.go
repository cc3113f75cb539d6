package game

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"presidents.com/server/cards"
	"presidents.com/server/timer"
)

const testGameCode = "test-game"

var testClassifier = cards.NewClassifier()

var testTiming = Timing{TurnTime: 1000, ReserveTime: 2000, TradingTime: 5000}

var testStart = time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)

// standardDeal gives seat 0 cards 1-13, seat 1 cards 14-26 and so on.
func standardDeal() Deal {
	var deal Deal
	for s := 0; s < NumSeats; s++ {
		for c := 1; c <= cards.CardsPerSeat; c++ {
			deal[s] = append(deal[s], cards.Card(s*cards.CardsPerSeat+c))
		}
	}
	return deal
}

func cardRange(from, to int) []cards.Card {
	var cs []cards.Card
	for c := from; c <= to; c++ {
		cs = append(cs, cards.Card(c))
	}
	return cs
}

func newTestEngine(t *testing.T, deals ...Deal) (*Engine, *timer.Manual, *RecordingNotifier) {
	t.Helper()
	sched := timer.NewManual(testStart)
	notifier := NewRecordingNotifier()
	setup := NewMemoryDealSetup(nil)
	for _, deal := range deals {
		require.NoError(t, setup.Save(testGameCode, deal))
	}
	e := NewEngine(EngineConfig{
		Code:       testGameCode,
		Classifier: testClassifier,
		Scheduler:  sched,
		Notifier:   notifier,
		Dealer:     setup,
		Timing:     testTiming,
		RandSource: rand.NewSource(7),
	})
	return e, sched, notifier
}

// startGame seats four players on standard deals.
func startGame(t *testing.T) (*Engine, *timer.Manual, *RecordingNotifier) {
	t.Helper()
	e, sched, notifier := newTestEngine(t, standardDeal(), standardDeal(), standardDeal())
	for _, name := range []string{"alice", "bob", "carol", "dave"} {
		_, err := e.JoinAtRandomSeat(name)
		require.NoError(t, err)
	}
	return e, sched, notifier
}

func requireViolation(t *testing.T, err error, permitted bool) {
	t.Helper()
	require.Error(t, err)
	rv, ok := err.(*RuleViolation)
	require.True(t, ok, "expected a rule violation, got %v", err)
	require.Equal(t, permitted, rv.Permitted, rv.Msg)
}

func selectCards(t *testing.T, e *Engine, seat Seat, cs ...cards.Card) {
	t.Helper()
	for _, c := range cs {
		require.NoError(t, e.SelectOrDeselectCard(seat, c))
	}
}

func playCards(t *testing.T, e *Engine, seat Seat, cs ...cards.Card) {
	t.Helper()
	selectCards(t, e, seat, cs...)
	require.NoError(t, e.UnlockPlay(seat))
	require.NoError(t, e.Play(seat))
}

func passTurn(t *testing.T, e *Engine, seat Seat) {
	t.Helper()
	require.NoError(t, e.UnlockPass(seat))
	require.NoError(t, e.Pass(seat))
}

func TestJoinDealsOnFourthPlayer(t *testing.T) {
	e, sched, notifier := newTestEngine(t, standardDeal())
	seen := map[Seat]bool{}
	for i, name := range []string{"alice", "bob", "carol", "dave"} {
		require.Equal(t, PhaseWaitingForPlayers, e.Snapshot().Phase)
		seat, err := e.JoinAtRandomSeat(name)
		require.NoError(t, err)
		require.True(t, seat.Valid())
		require.False(t, seen[seat], "seat %d taken twice", seat)
		seen[seat] = true
		require.Equal(t, i+1, notifier.Count(PlayerJoined))
	}

	snap := e.Snapshot()
	require.Equal(t, PhasePlaying, snap.Phase)
	require.Equal(t, 1, snap.Round)
	require.Equal(t, Seat(0), snap.Current)
	require.Equal(t, InPlayBase, snap.InPlayKind)
	for s := 0; s < NumSeats; s++ {
		expected := cardRange(s*13+1, s*13+13)
		if diff := cmp.Diff(expected, snap.Seats[s].Cards); diff != "" {
			t.Errorf("seat %d cards mismatch (-want +got):\n%s", s, diff)
		}
		require.Equal(t, testTiming.Reserve(), snap.Seats[s].Reserve)
	}
	require.Equal(t, 4, notifier.Count(CardsDealt))
	started, ok := notifier.Last(RoundStarted)
	require.True(t, ok)
	require.Equal(t, RoundStartedPayload{Round: 1, FirstSeat: 0}, started.Payload)
	require.Equal(t, 1, sched.Pending())

	_, err := e.JoinAtRandomSeat("eve")
	requireViolation(t, err, true)
	require.Equal(t, 0, notifier.Count(Rejected))
}

func TestDealsCardsPrivately(t *testing.T) {
	_, _, notifier := startGame(t)
	for _, ev := range notifier.Of(CardsDealt) {
		payload := ev.Payload.(CardsPayload)
		s := int(ev.Seat)
		if diff := cmp.Diff(cards.Cards(cardRange(s*13+1, s*13+13)), payload.Cards); diff != "" {
			t.Errorf("seat %d dealt (-want +got):\n%s", s, diff)
		}
	}
}

func TestBadDealIsReplaced(t *testing.T) {
	sched := timer.NewManual(testStart)
	e := NewEngine(EngineConfig{
		Code:       testGameCode,
		Classifier: testClassifier,
		Scheduler:  sched,
		Dealer:     brokenDealer{},
		Timing:     testTiming,
	})
	for _, name := range []string{"a", "b", "c", "d"} {
		_, err := e.JoinAtRandomSeat(name)
		require.NoError(t, err)
	}
	snap := e.Snapshot()
	total := 0
	for _, seat := range snap.Seats {
		require.Len(t, seat.Cards, 13)
		total += len(seat.Cards)
	}
	require.Equal(t, 52, total)
	require.True(t, snap.Seats[snap.Current].Cards[0] == cards.ThreeOfClubs)
}

type brokenDealer struct{}

func (brokenDealer) NextDeal(string) (Deal, error) {
	return Deal{{1, 1}}, nil
}

func TestSnapshotHidesEmptySeats(t *testing.T) {
	e, _, _ := newTestEngine(t)
	seat, err := e.JoinAtRandomSeat("alice")
	require.NoError(t, err)
	snap := e.Snapshot()
	for s := Seat(0); s < NumSeats; s++ {
		require.Equal(t, s == seat, snap.Seats[s].Occupied)
	}
	require.Equal(t, "alice", snap.Seats[seat].Name)
	require.NotEmpty(t, snap.Seats[seat].PlayerID)
}

func TestCommandsFromEmptySeatAreForbidden(t *testing.T) {
	e, _, notifier := newTestEngine(t)
	requireViolation(t, e.SelectOrDeselectCard(0, 1), false)
	requireViolation(t, e.UnlockPlay(Seat(9)), false)
	requireViolation(t, e.UnlockPlay(NoSeat), false)
	require.Equal(t, 0, notifier.Count(Rejected))
}

func TestCloseStopsTimersAndCommands(t *testing.T) {
	e, sched, notifier := startGame(t)
	e.Close()
	require.Equal(t, 0, sched.Pending())
	require.Equal(t, PhaseClosed, e.Snapshot().Phase)
	require.Equal(t, 1, notifier.Count(GameClosed))
	requireViolation(t, e.SelectOrDeselectCard(0, 1), false)
	rejected := notifier.Count(Rejected)
	_, err := e.JoinAtRandomSeat("late")
	requireViolation(t, err, false)
	require.Equal(t, rejected, notifier.Count(Rejected))
	e.Close()
	require.Equal(t, 1, notifier.Count(GameClosed))
}

package game

import (
	"sync"
	"time"

	"presidents.com/server/cards"
	"presidents.com/server/chamber"
)

type EventKind string

const (
	PlayerJoined         EventKind = "PLAYER_JOINED"
	CardsDealt           EventKind = "CARDS_DEALT"
	RoundStarted         EventKind = "ROUND_STARTED"
	TurnStarted          EventKind = "TURN_STARTED"
	TimerStarted         EventKind = "TIMER_STARTED"
	ReserveStarted       EventKind = "RESERVE_STARTED"
	TimedOut             EventKind = "TIMED_OUT"
	CardSelected         EventKind = "CARD_SELECTED"
	CardDeselected       EventKind = "CARD_DESELECTED"
	StoredHandSelected   EventKind = "STORED_HAND_SELECTED"
	StoredHandDeselected EventKind = "STORED_HAND_DESELECTED"
	HandStored           EventKind = "HAND_STORED"
	HandUnstored         EventKind = "HAND_UNSTORED"
	PlayUnlocked         EventKind = "PLAY_UNLOCKED"
	PlayLocked           EventKind = "PLAY_LOCKED"
	PassUnlocked         EventKind = "PASS_UNLOCKED"
	PassLocked           EventKind = "PASS_LOCKED"
	HandPlayed           EventKind = "HAND_PLAYED"
	Passed               EventKind = "PASSED"
	TrickCleared         EventKind = "TRICK_CLEARED"
	PlayerFinished       EventKind = "PLAYER_FINISHED"
	RoundFinished        EventKind = "ROUND_FINISHED"
	TradingStarted       EventKind = "TRADING_STARTED"
	AskRankSelected      EventKind = "ASK_RANK_SELECTED"
	AskUnlocked          EventKind = "ASK_UNLOCKED"
	Asked                EventKind = "ASKED"
	NoCardsOfRank        EventKind = "NO_CARDS_OF_RANK"
	GivingOptions        EventKind = "GIVING_OPTIONS"
	GiveUnlocked         EventKind = "GIVE_UNLOCKED"
	CardGiven            EventKind = "CARD_GIVEN"
	CardReceived         EventKind = "CARD_RECEIVED"
	TradingFinished      EventKind = "TRADING_FINISHED"
	Paused               EventKind = "PAUSED"
	Resumed              EventKind = "RESUMED"
	PlayerDisconnected   EventKind = "PLAYER_DISCONNECTED"
	PlayerReconnected    EventKind = "PLAYER_RECONNECTED"
	Rejected             EventKind = "REJECTED"
	GameClosed           EventKind = "GAME_CLOSED"
)

type PlayerJoinedPayload struct {
	Seat     Seat   `json:"seat"`
	Name     string `json:"name"`
	PlayerID string `json:"playerId"`
}

type CardsPayload struct {
	Cards cards.Cards `json:"cards"`
}

type RoundStartedPayload struct {
	Round     int  `json:"round"`
	FirstSeat Seat `json:"firstSeat"`
}

type TurnPayload struct {
	Seat Seat `json:"seat"`
}

type TimerPayload struct {
	Seat     Seat          `json:"seat"`
	Purpose  string        `json:"purpose"`
	Duration time.Duration `json:"duration"`
}

type CardPayload struct {
	Card cards.Card `json:"card"`
}

type StoredHandPayload struct {
	ID    chamber.HandID `json:"id"`
	Cards cards.Cards    `json:"cards,omitempty"`
}

type HandPayload struct {
	Seat  Seat            `json:"seat"`
	Cards cards.Cards     `json:"cards"`
	Type  cards.ComboType `json:"type"`
	Auto  bool            `json:"auto,omitempty"`
}

type PassPayload struct {
	Seat Seat `json:"seat"`
	Auto bool `json:"auto,omitempty"`
}

type FinishedPayload struct {
	Seat     Seat `json:"seat"`
	Role     Role `json:"role"`
	Position int  `json:"position"`
}

type RoundFinishedPayload struct {
	Round     int    `json:"round"`
	Positions []Seat `json:"positions"`
}

type TradingStartedPayload struct {
	Roles [NumSeats]Role `json:"roles"`
}

type RankPayload struct {
	Seat Seat `json:"seat"`
	Rank int  `json:"rank"`
}

type TransferPayload struct {
	From Seat       `json:"from"`
	To   Seat       `json:"to"`
	Card cards.Card `json:"card"`
}

type RejectedPayload struct {
	Msg       string `json:"msg"`
	Permitted bool   `json:"permitted"`
}

type PausePayload struct {
	Reason string `json:"reason"`
}

// Notifier receives every state change of an engine. Notify is called while
// the engine holds its lock, so implementations must not call back into the
// engine from the same goroutine.
type Notifier interface {
	Notify(kind EventKind, seat Seat, payload interface{})
}

type NopNotifier struct{}

func (NopNotifier) Notify(EventKind, Seat, interface{}) {}

type MultiNotifier []Notifier

func (m MultiNotifier) Notify(kind EventKind, seat Seat, payload interface{}) {
	for _, n := range m {
		n.Notify(kind, seat, payload)
	}
}

type Event struct {
	Kind    EventKind
	Seat    Seat
	Payload interface{}
}

// RecordingNotifier keeps every event in memory. Used by tests.
type RecordingNotifier struct {
	lock   sync.Mutex
	events []Event
}

func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

func (r *RecordingNotifier) Notify(kind EventKind, seat Seat, payload interface{}) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.events = append(r.events, Event{Kind: kind, Seat: seat, Payload: payload})
}

func (r *RecordingNotifier) Events() []Event {
	r.lock.Lock()
	defer r.lock.Unlock()
	events := make([]Event, len(r.events))
	copy(events, r.events)
	return events
}

func (r *RecordingNotifier) Of(kind EventKind) []Event {
	r.lock.Lock()
	defer r.lock.Unlock()
	var events []Event
	for _, e := range r.events {
		if e.Kind == kind {
			events = append(events, e)
		}
	}
	return events
}

func (r *RecordingNotifier) Count(kind EventKind) int {
	return len(r.Of(kind))
}

// Last returns the most recent event of the kind.
func (r *RecordingNotifier) Last(kind EventKind) (Event, bool) {
	events := r.Of(kind)
	if len(events) == 0 {
		return Event{}, false
	}
	return events[len(events)-1], true
}

func (r *RecordingNotifier) Reset() {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.events = nil
}

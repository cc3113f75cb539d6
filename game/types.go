package game

import "presidents.com/server/cards"

/**
NOTE: Seats are indexed 0-3. Turn order runs 0, 1, 2, 3 and wraps, skipping
seats that have finished the round.
**/

type Seat int

const (
	NoSeat   Seat = -1
	NumSeats      = cards.NumSeats
)

func (s Seat) Valid() bool {
	return s >= 0 && s < NumSeats
}

type Phase int

const (
	PhaseWaitingForPlayers Phase = iota
	PhasePlaying
	PhaseTrading
	PhaseClosed
)

var phaseToString = map[Phase]string{
	PhaseWaitingForPlayers: "WAITING_FOR_PLAYERS",
	PhasePlaying:           "PLAYING",
	PhaseTrading:           "TRADING",
	PhaseClosed:            "CLOSED",
}

func (p Phase) String() string {
	return phaseToString[p]
}

// Role is the finishing title a seat earned in the previous round.
type Role int

const (
	RoleNone Role = iota
	RolePresident
	RoleVicePresident
	RoleViceAsshole
	RoleAsshole
)

var roleToString = map[Role]string{
	RoleNone:          "NONE",
	RolePresident:     "PRESIDENT",
	RoleVicePresident: "VICE_PRESIDENT",
	RoleViceAsshole:   "VICE_ASSHOLE",
	RoleAsshole:       "ASSHOLE",
}

func (r Role) String() string {
	return roleToString[r]
}

// tradeCount is how many cards each role asks for and gives back.
var tradeCount = map[Role]int{
	RolePresident:     2,
	RoleVicePresident: 1,
	RoleViceAsshole:   1,
	RoleAsshole:       2,
}

// InPlayKind says what the next hand has to beat.
type InPlayKind int

const (
	// InPlayBase: round start, only a hand containing the 3 of clubs may be played.
	InPlayBase InPlayKind = iota
	// InPlayNone: the trick was cleared, any valid hand may be played.
	InPlayNone
	// InPlayHand: the next hand must beat the hand in play.
	InPlayHand
)

var inPlayKindToString = map[InPlayKind]string{
	InPlayBase: "BASE",
	InPlayNone: "NONE",
	InPlayHand: "HAND",
}

func (k InPlayKind) String() string {
	return inPlayKindToString[k]
}

const (
	timerPurposeTurn    = "turn"
	timerPurposeReserve = "reserve"
	timerPurposeTrading = "trading"
)

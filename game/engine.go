package game

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"presidents.com/server/cards"
	"presidents.com/server/chamber"
	"presidents.com/server/logging"
	"presidents.com/server/timer"
	"presidents.com/server/util"
	"presidents.com/server/util/random"
)

var engineLogger = logging.GetZeroLogger("game::engine", nil)

type player struct {
	name      string
	id        string
	chamber   *chamber.Chamber
	connected bool

	finished     bool
	role         Role
	unlocked     bool
	passUnlocked bool
	reserve      time.Duration

	// trading state, reset when trading starts
	takes         int
	gives         int
	askRank       int
	askUnlocked   bool
	giveUnlocked  bool
	waiting       bool
	alreadyAsked  [cards.NumRanks + 1]bool
	givingOptions []cards.Card
	given         map[cards.Card]bool
	taken         map[cards.Card]bool
}

// seatTimer is a live or paused timer. seq identifies the scheduled callback
// so a callback that lost a race with Cancel can tell it is stale. duration is
// the configured length; slice is the part scheduled since the last resume.
type seatTimer struct {
	purpose   string
	handle    timer.Handle
	seq       uint64
	startedAt time.Time
	duration  time.Duration
	slice     time.Duration
	remaining time.Duration
}

// tradingTimerKey keys the trading timer next to the per-seat timers.
const tradingTimerKey = Seat(NumSeats)

type EngineConfig struct {
	Code       string
	Classifier *cards.Classifier
	Scheduler  timer.Scheduler
	Notifier   Notifier
	Dealer     DealSource
	Timing     Timing
	// RandSource picks join seats; nil seeds from crypto/rand.
	RandSource rand.Source
}

// Engine runs one four-seat game. Every exported method takes the engine lock,
// so commands and timer callbacks are applied one at a time.
type Engine struct {
	lock sync.Mutex

	code       string
	classifier *cards.Classifier
	scheduler  timer.Scheduler
	notifier   Notifier
	dealer     DealSource
	timing     Timing
	rnd        *rand.Rand
	logger     zerolog.Logger

	phase      Phase
	round      int
	players    [NumSeats]*player
	numPlayers int

	current    Seat
	inPlayKind InPlayKind
	inPlay     cards.Hand
	winner     Seat
	passCount  int
	positions  []Seat

	timers      map[Seat]*seatTimer
	timerSeq    uint64
	manualPause bool
	paused      bool
}

func NewEngine(config EngineConfig) *Engine {
	if config.Code == "" {
		config.Code = uuid.New().String()
	}
	if config.Classifier == nil {
		config.Classifier = cards.NewClassifier()
	}
	if config.Scheduler == nil {
		config.Scheduler = timer.NewWallClock(nil)
	}
	if config.Notifier == nil {
		config.Notifier = NopNotifier{}
	}
	if config.Dealer == nil {
		config.Dealer = NewRandomDealer(nil)
	}
	if config.Timing == (Timing{}) {
		config.Timing = DefaultTiming()
	}
	if config.RandSource == nil {
		config.RandSource = random.NewSource()
	}
	return &Engine{
		code:       config.Code,
		classifier: config.Classifier,
		scheduler:  config.Scheduler,
		notifier:   config.Notifier,
		dealer:     config.Dealer,
		timing:     config.Timing,
		rnd:        rand.New(config.RandSource),
		logger:     engineLogger.With().Str(logging.GameCodeKey, config.Code).Logger(),
		phase:      PhaseWaitingForPlayers,
		current:    NoSeat,
		winner:     NoSeat,
		inPlay:     cards.NewHand(config.Classifier),
		timers:     make(map[Seat]*seatTimer),
	}
}

func (e *Engine) Code() string {
	return e.code
}

func (e *Engine) notify(kind EventKind, seat Seat, payload interface{}) {
	e.notifier.Notify(kind, seat, payload)
}

// reject reports a rule violation back to the seat that issued the command.
// Issuers without a seat (joiners, bad seat numbers) only get the error.
func (e *Engine) reject(seat Seat, err error) error {
	if err == nil {
		return nil
	}
	rv, ok := err.(*RuleViolation)
	if !ok {
		e.logger.Error().Err(err).Int(logging.SeatNumKey, int(seat)).Msg("Command failed")
		return err
	}
	util.Metrics.RuleViolation(rv.Permitted)
	e.logger.Debug().
		Int(logging.SeatNumKey, int(seat)).
		Bool("permitted", rv.Permitted).
		Msgf("Rejected: %s", rv.Msg)
	if seat.Valid() && e.players[seat] != nil {
		e.notify(Rejected, seat, RejectedPayload{Msg: rv.Msg, Permitted: rv.Permitted})
	}
	return err
}

// checkSeat validates a command issuer. Commands are refused while paused.
func (e *Engine) checkSeat(seat Seat) (*player, error) {
	if e.phase == PhaseClosed {
		return nil, forbidden("the game is over")
	}
	if !seat.Valid() || e.players[seat] == nil {
		return nil, forbidden(fmt.Sprintf("seat %d is not taken", seat))
	}
	if e.paused {
		return nil, violation("the game is paused")
	}
	return e.players[seat], nil
}

// JoinAtRandomSeat seats a new player in a random empty seat. The fourth join
// deals the first round.
func (e *Engine) JoinAtRandomSeat(name string) (Seat, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	if e.phase == PhaseClosed {
		return NoSeat, e.reject(NoSeat, forbidden("the game is over"))
	}
	if e.numPlayers == NumSeats || e.phase != PhaseWaitingForPlayers {
		return NoSeat, e.reject(NoSeat, violation("the game is full"))
	}
	var empty []Seat
	for s := Seat(0); s < NumSeats; s++ {
		if e.players[s] == nil {
			empty = append(empty, s)
		}
	}
	seat := empty[e.rnd.Intn(len(empty))]
	p := &player{
		name:      name,
		id:        uuid.New().String(),
		chamber:   chamber.NewChamber(e.classifier),
		connected: true,
	}
	e.players[seat] = p
	e.numPlayers++
	e.logger.Info().
		Int(logging.SeatNumKey, int(seat)).
		Str(logging.PlayerNameKey, name).
		Str(logging.PlayerIDKey, p.id).
		Msg("Player joined")
	e.notify(PlayerJoined, NoSeat, PlayerJoinedPayload{Seat: seat, Name: name, PlayerID: p.id})

	if e.numPlayers == NumSeats {
		if err := e.deal(); err != nil {
			return seat, err
		}
		e.startPlay()
	}
	return seat, nil
}

// deal gives every seat a fresh chamber of 13 cards. A bad deal from the
// configured source is replaced by a random one.
func (e *Engine) deal() error {
	hands, err := e.dealer.NextDeal(e.code)
	if err == nil {
		err = validateDeal(hands)
	}
	if err != nil {
		e.logger.Error().Err(err).Msg("Deal source failed. Dealing a random deck.")
		hands = Deal(cards.NewDeck(nil).Deal())
	}
	e.round++
	for s := Seat(0); s < NumSeats; s++ {
		p := e.players[s]
		p.chamber.Reset()
		if err := p.chamber.AddCards(hands[s]); err != nil {
			return err
		}
		p.finished = false
		p.unlocked = false
		p.passUnlocked = false
		e.notify(CardsDealt, s, CardsPayload{Cards: p.chamber.Cards()})
	}
	util.Metrics.RoundStarted()
	e.logger.Info().Int(logging.RoundNumKey, e.round).Msg("Cards dealt")
	return nil
}

// startPlay opens a round on the current deal. The holder of the 3 of clubs
// acts first and must include it.
func (e *Engine) startPlay() {
	e.phase = PhasePlaying
	e.inPlayKind = InPlayBase
	e.inPlay.Clear()
	e.winner = NoSeat
	e.passCount = 0
	e.positions = nil
	first := NoSeat
	for s := Seat(0); s < NumSeats; s++ {
		p := e.players[s]
		p.finished = false
		p.unlocked = false
		p.passUnlocked = false
		p.reserve = e.timing.Reserve()
		if p.chamber.Holds(cards.ThreeOfClubs) {
			first = s
		}
	}
	e.notify(RoundStarted, NoSeat, RoundStartedPayload{Round: e.round, FirstSeat: first})
	e.startTurn(first)
}

func (e *Engine) startTurn(seat Seat) {
	e.current = seat
	e.notify(TurnStarted, NoSeat, TurnPayload{Seat: seat})
	e.startTimer(seat, timerPurposeTurn, e.timing.Turn())
}

// nextUnfinished returns the first unfinished seat after from in turn order.
func (e *Engine) nextUnfinished(from Seat) Seat {
	for i := 1; i <= NumSeats; i++ {
		s := (from + Seat(i)) % NumSeats
		if !e.players[s].finished {
			return s
		}
	}
	return NoSeat
}

func (e *Engine) numUnfinished() int {
	n := 0
	for _, p := range e.players {
		if !p.finished {
			n++
		}
	}
	return n
}

// Close stops every timer. Later commands are rejected.
func (e *Engine) Close() {
	e.lock.Lock()
	defer e.lock.Unlock()
	if e.phase == PhaseClosed {
		return
	}
	for key := range e.timers {
		e.cancelTimer(key)
	}
	e.phase = PhaseClosed
	e.logger.Info().Msg("Game closed")
	e.notify(GameClosed, NoSeat, nil)
}

type SeatSnapshot struct {
	Occupied      bool
	Name          string
	PlayerID      string
	Connected     bool
	Finished      bool
	Role          Role
	Cards         []cards.Card
	Selected      []cards.Card
	StoredHands   []chamber.StoredHand
	Unlocked      bool
	PassUnlocked  bool
	Reserve       time.Duration
	Takes         int
	Gives         int
	AskRank       int
	Waiting       bool
	GivingOptions []cards.Card
}

type Snapshot struct {
	Code       string
	Phase      Phase
	Round      int
	Paused     bool
	Current    Seat
	InPlayKind InPlayKind
	InPlay     []cards.Card
	Winner     Seat
	PassCount  int
	Positions  []Seat
	Seats      [NumSeats]SeatSnapshot
}

// Snapshot copies the engine state, e.g. to resync a reconnecting client.
func (e *Engine) Snapshot() Snapshot {
	e.lock.Lock()
	defer e.lock.Unlock()
	snap := Snapshot{
		Code:       e.code,
		Phase:      e.phase,
		Round:      e.round,
		Paused:     e.paused,
		Current:    e.current,
		InPlayKind: e.inPlayKind,
		Winner:     e.winner,
		PassCount:  e.passCount,
		Positions:  append([]Seat(nil), e.positions...),
	}
	if e.inPlayKind == InPlayHand {
		snap.InPlay = e.inPlay.Cards()
	}
	for s, p := range e.players {
		if p == nil {
			continue
		}
		snap.Seats[s] = SeatSnapshot{
			Occupied:      true,
			Name:          p.name,
			PlayerID:      p.id,
			Connected:     p.connected,
			Finished:      p.finished,
			Role:          p.role,
			Cards:         p.chamber.Cards(),
			Selected:      p.chamber.Selection().Cards(),
			StoredHands:   p.chamber.StoredHands(),
			Unlocked:      p.unlocked,
			PassUnlocked:  p.passUnlocked,
			Reserve:       p.reserve,
			Takes:         p.takes,
			Gives:         p.gives,
			AskRank:       p.askRank,
			Waiting:       p.waiting,
			GivingOptions: append([]cards.Card(nil), p.givingOptions...),
		}
	}
	return snap
}

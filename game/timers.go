package game

import (
	"time"

	"presidents.com/server/cards"
	"presidents.com/server/logging"
	"presidents.com/server/util"
)

// startTimer replaces the timer under key. While paused the timer is created
// frozen and scheduled on resume.
func (e *Engine) startTimer(key Seat, purpose string, d time.Duration) {
	e.cancelTimer(key)
	t := &seatTimer{purpose: purpose, duration: d, remaining: d}
	e.timers[key] = t
	if key != tradingTimerKey {
		e.notify(TimerStarted, NoSeat, TimerPayload{Seat: key, Purpose: purpose, Duration: d})
	}
	if !e.paused {
		e.scheduleTimer(key, t)
	}
}

func (e *Engine) scheduleTimer(key Seat, t *seatTimer) {
	e.timerSeq++
	seq := e.timerSeq
	t.seq = seq
	t.startedAt = e.scheduler.Now()
	t.slice = t.remaining
	t.handle = e.scheduler.Schedule(t.remaining, func() {
		e.onTimer(key, seq)
	})
}

func (e *Engine) cancelTimer(key Seat) {
	t, ok := e.timers[key]
	if !ok {
		return
	}
	if t.handle != 0 {
		e.scheduler.Cancel(t.handle)
	}
	delete(e.timers, key)
}

// stopTimer ends a seat's timer, charging any reserve time it used.
func (e *Engine) stopTimer(seat Seat) {
	t, ok := e.timers[seat]
	if !ok {
		return
	}
	if t.purpose == timerPurposeReserve {
		p := e.players[seat]
		p.reserve = e.remaining(t)
	}
	e.cancelTimer(seat)
}

func (e *Engine) remaining(t *seatTimer) time.Duration {
	if t.handle == 0 {
		return t.remaining
	}
	left := t.slice - e.scheduler.Now().Sub(t.startedAt)
	if left < 0 {
		return 0
	}
	return left
}

func (e *Engine) onTimer(key Seat, seq uint64) {
	e.lock.Lock()
	defer e.lock.Unlock()
	t, ok := e.timers[key]
	if !ok || t.seq != seq || t.handle == 0 || e.paused || e.phase == PhaseClosed {
		return
	}
	delete(e.timers, key)
	util.Metrics.TimedOut(t.purpose)
	e.logger.Debug().
		Int(logging.SeatNumKey, int(key)).
		Str(logging.TimerPurposeKey, t.purpose).
		Msg("Timer expired")

	switch t.purpose {
	case timerPurposeTrading:
		e.notify(TimedOut, NoSeat, TimerPayload{Seat: NoSeat, Purpose: t.purpose, Duration: t.duration})
		e.forceTrades()
	case timerPurposeTurn:
		e.notify(TimedOut, NoSeat, TimerPayload{Seat: key, Purpose: t.purpose, Duration: t.duration})
		p := e.players[key]
		if p.reserve > 0 {
			e.notify(ReserveStarted, NoSeat, TimerPayload{Seat: key, Purpose: timerPurposeReserve, Duration: p.reserve})
			e.startTimer(key, timerPurposeReserve, p.reserve)
			return
		}
		e.autoAct(key)
	case timerPurposeReserve:
		e.notify(TimedOut, NoSeat, TimerPayload{Seat: key, Purpose: t.purpose, Duration: t.duration})
		e.players[key].reserve = 0
		e.autoAct(key)
	}
}

// autoAct takes the turn for a seat that ran out of time: it leads the lowest
// card on an open table and passes otherwise.
func (e *Engine) autoAct(seat Seat) {
	if e.phase != PhasePlaying || seat != e.current {
		return
	}
	switch e.inPlayKind {
	case InPlayBase:
		e.autoPlay(seat, cards.ThreeOfClubs)
	case InPlayNone:
		e.autoPlay(seat, e.players[seat].chamber.LowestCard())
	default:
		e.passTurn(seat, true)
	}
}

// Pause freezes every timer. Commands are refused until Resume.
func (e *Engine) Pause() error {
	e.lock.Lock()
	defer e.lock.Unlock()
	if e.phase == PhaseClosed {
		return e.reject(NoSeat, forbidden("the game is over"))
	}
	e.manualPause = true
	e.updatePause("paused")
	return nil
}

func (e *Engine) Resume() error {
	e.lock.Lock()
	defer e.lock.Unlock()
	if e.phase == PhaseClosed {
		return e.reject(NoSeat, forbidden("the game is over"))
	}
	e.manualPause = false
	e.updatePause("resumed")
	return nil
}

// Disconnect marks a seat offline. The game stays paused while any seat is offline.
func (e *Engine) Disconnect(seat Seat) error {
	return e.setConnected(seat, false)
}

func (e *Engine) Reconnect(seat Seat) error {
	return e.setConnected(seat, true)
}

func (e *Engine) setConnected(seat Seat, connected bool) error {
	e.lock.Lock()
	defer e.lock.Unlock()
	if e.phase == PhaseClosed {
		return e.reject(seat, forbidden("the game is over"))
	}
	if !seat.Valid() || e.players[seat] == nil {
		return e.reject(seat, forbidden("seat is not taken"))
	}
	p := e.players[seat]
	if p.connected == connected {
		return nil
	}
	p.connected = connected
	if connected {
		e.notify(PlayerReconnected, NoSeat, TurnPayload{Seat: seat})
		e.updatePause("reconnected")
	} else {
		e.notify(PlayerDisconnected, NoSeat, TurnPayload{Seat: seat})
		e.updatePause("disconnected")
	}
	return nil
}

func (e *Engine) shouldPause() bool {
	if e.manualPause {
		return true
	}
	for _, p := range e.players {
		if p != nil && !p.connected {
			return true
		}
	}
	return false
}

func (e *Engine) updatePause(reason string) {
	pause := e.shouldPause()
	if pause == e.paused {
		return
	}
	e.paused = pause
	if pause {
		for key, t := range e.timers {
			t.remaining = e.remaining(t)
			e.scheduler.Cancel(t.handle)
			t.handle = 0
			if t.purpose == timerPurposeReserve {
				e.players[key].reserve = t.remaining
			}
		}
		e.logger.Info().Str("reason", reason).Msg("Game paused")
		e.notify(Paused, NoSeat, PausePayload{Reason: reason})
		return
	}
	for key, t := range e.timers {
		e.scheduleTimer(key, t)
	}
	e.logger.Info().Str("reason", reason).Msg("Game resumed")
	e.notify(Resumed, NoSeat, PausePayload{Reason: reason})
}

package game

import (
	"fmt"

	"github.com/pkg/errors"

	"presidents.com/server/cards"
	"presidents.com/server/chamber"
	"presidents.com/server/logging"
	"presidents.com/server/util"
)

// SelectOrDeselectCard toggles a held card in the seat's selection.
func (e *Engine) SelectOrDeselectCard(seat Seat, card cards.Card) error {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.reject(seat, e.toggleCard(seat, card))
}

func (e *Engine) toggleCard(seat Seat, card cards.Card) error {
	p, err := e.checkSeat(seat)
	if err != nil {
		return err
	}
	if e.phase != PhasePlaying && e.phase != PhaseTrading {
		return forbidden("cards cannot be selected before the deal")
	}
	if !card.Valid() {
		return forbidden(fmt.Sprintf("invalid card %d", uint8(card)))
	}
	if !p.chamber.Holds(card) {
		return forbidden(fmt.Sprintf("you do not hold %s", card))
	}
	if p.chamber.IsSelected(card) {
		released, _ := p.chamber.DeselectCard(card)
		e.notify(CardDeselected, seat, CardPayload{Card: card})
		e.notifyStoredHands(StoredHandDeselected, seat, released)
	} else {
		marked, err := p.chamber.SelectCard(card)
		if err != nil {
			if _, ok := errors.Cause(err).(cards.FullHandError); ok {
				return violation("you cannot select more than five cards")
			}
			return err
		}
		e.notify(CardSelected, seat, CardPayload{Card: card})
		e.notifyStoredHands(StoredHandSelected, seat, marked)
	}
	e.selectionChanged(seat)
	return nil
}

// ClearSelection deselects every selected card of the seat.
func (e *Engine) ClearSelection(seat Seat) error {
	e.lock.Lock()
	defer e.lock.Unlock()
	p, err := e.checkSeat(seat)
	if err != nil {
		return e.reject(seat, err)
	}
	e.clearSelection(seat, p)
	return nil
}

func (e *Engine) clearSelection(seat Seat, p *player) {
	if p.chamber.Selection().IsEmpty() {
		return
	}
	for _, card := range p.chamber.Selection().Cards() {
		released, _ := p.chamber.DeselectCard(card)
		e.notify(CardDeselected, seat, CardPayload{Card: card})
		e.notifyStoredHands(StoredHandDeselected, seat, released)
	}
	e.selectionChanged(seat)
}

// selectionChanged relocks whatever was unlocked against the old selection.
func (e *Engine) selectionChanged(seat Seat) {
	p := e.players[seat]
	if p.unlocked {
		p.unlocked = false
		e.notify(PlayLocked, seat, HandPayload{Seat: seat})
	}
	p.giveUnlocked = false
}

func (e *Engine) notifyStoredHands(kind EventKind, seat Seat, ids []chamber.HandID) {
	for _, id := range ids {
		e.notify(kind, seat, StoredHandPayload{ID: id})
	}
}

// StoreHand saves a combination of held cards under a new id.
func (e *Engine) StoreHand(seat Seat, hand []cards.Card) (chamber.HandID, error) {
	e.lock.Lock()
	defer e.lock.Unlock()
	id, err := e.storeHand(seat, hand)
	return id, e.reject(seat, err)
}

func (e *Engine) storeHand(seat Seat, hand []cards.Card) (chamber.HandID, error) {
	p, err := e.checkSeat(seat)
	if err != nil {
		return 0, err
	}
	h, err := cards.NewHandFromCards(e.classifier, hand...)
	if err != nil {
		return 0, violation(fmt.Sprintf("cannot store %s: %s", cards.CardsToString(hand), err))
	}
	result, err := p.chamber.StoreHand(h)
	if err != nil {
		switch err := err.(type) {
		case chamber.HandNotStorableError:
			return 0, violation(fmt.Sprintf("cannot store %s: %s", h, err.Reason))
		case chamber.HandAlreadyStoredError:
			return 0, violation(fmt.Sprintf("%s is already stored", h))
		}
		return 0, err
	}
	e.notify(HandStored, seat, StoredHandPayload{ID: result.ID, Cards: h.Cards()})
	for _, card := range result.Deselected {
		e.notify(CardDeselected, seat, CardPayload{Card: card})
	}
	e.notifyStoredHands(StoredHandDeselected, seat, result.Released)
	if len(result.Deselected) > 0 {
		e.selectionChanged(seat)
	}
	return result.ID, nil
}

func (e *Engine) UnstoreHand(seat Seat, id chamber.HandID) error {
	e.lock.Lock()
	defer e.lock.Unlock()
	p, err := e.checkSeat(seat)
	if err != nil {
		return e.reject(seat, err)
	}
	if err := p.chamber.UnstoreHand(id); err != nil {
		return e.reject(seat, forbidden(err.Error()))
	}
	e.notify(HandUnstored, seat, StoredHandPayload{ID: id})
	return nil
}

// checkPlaying validates a play-phase command from an unfinished seat.
func (e *Engine) checkPlaying(seat Seat) (*player, error) {
	p, err := e.checkSeat(seat)
	if err != nil {
		return nil, err
	}
	if e.phase != PhasePlaying {
		return nil, forbidden("hands cannot be played outside of a round")
	}
	if p.finished {
		return nil, forbidden("you have already finished this round")
	}
	return p, nil
}

// UnlockPlay arms the current selection for play. Seats may unlock before
// their turn; the unlock is revoked if a later hand makes it unplayable.
func (e *Engine) UnlockPlay(seat Seat) error {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.reject(seat, e.unlockPlay(seat))
}

func (e *Engine) unlockPlay(seat Seat) error {
	p, err := e.checkPlaying(seat)
	if err != nil {
		return err
	}
	hand := p.chamber.Selection()
	if err := e.playable(seat, hand); err != nil {
		return err
	}
	p.unlocked = true
	e.notify(PlayUnlocked, seat, HandPayload{Seat: seat, Cards: hand.Cards(), Type: hand.Type()})
	return nil
}

// playable checks hand against what is in play.
func (e *Engine) playable(seat Seat, hand cards.Hand) error {
	if hand.IsEmpty() {
		return violation("select cards to play")
	}
	if !hand.IsValid() {
		return violation(fmt.Sprintf("%s is not a valid hand", hand))
	}
	switch e.inPlayKind {
	case InPlayBase:
		if seat == e.current && !hand.Contains(cards.ThreeOfClubs) {
			return violation("the opening hand must contain the 3 of clubs")
		}
	case InPlayHand:
		greater, err := hand.Greater(e.inPlay)
		if err != nil {
			return violation(fmt.Sprintf("a %s cannot be played on a %s", hand.Type(), e.inPlay.Type()))
		}
		if !greater {
			return violation(fmt.Sprintf("%s does not beat %s", hand, e.inPlay))
		}
	}
	return nil
}

func (e *Engine) Play(seat Seat) error {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.reject(seat, e.play(seat))
}

func (e *Engine) play(seat Seat) error {
	p, err := e.checkPlaying(seat)
	if err != nil {
		return err
	}
	if seat != e.current {
		return violation("it is not your turn")
	}
	if !p.unlocked {
		return forbidden("unlock the hand before playing it")
	}
	hand := p.chamber.Selection()
	if err := e.playable(seat, hand); err != nil {
		p.unlocked = false
		e.notify(PlayLocked, seat, HandPayload{Seat: seat})
		return err
	}
	return e.playHand(seat, hand, false)
}

// playHand moves hand from the seat's chamber to the table and advances the turn.
func (e *Engine) playHand(seat Seat, hand cards.Hand, auto bool) error {
	p := e.players[seat]
	removed, err := p.chamber.RemoveCards(hand.Cards())
	if err != nil {
		return errors.Wrap(err, "removing played cards")
	}
	e.stopTimer(seat)
	e.inPlay = hand
	e.inPlayKind = InPlayHand
	e.winner = seat
	e.passCount = 0
	p.unlocked = false
	p.passUnlocked = false

	util.Metrics.HandPlayed()
	e.logger.Info().
		Int(logging.SeatNumKey, int(seat)).
		Str(logging.CardsKey, hand.String()).
		Bool("auto", auto).
		Msg("Hand played")
	e.notify(HandPlayed, NoSeat, HandPayload{Seat: seat, Cards: hand.Cards(), Type: hand.Type(), Auto: auto})
	for _, id := range removed {
		e.notify(HandUnstored, seat, StoredHandPayload{ID: id})
	}

	for s := Seat(0); s < NumSeats; s++ {
		other := e.players[s]
		if s == seat || other.finished || !other.unlocked {
			continue
		}
		if err := e.playable(s, other.chamber.Selection()); err != nil {
			other.unlocked = false
			e.notify(PlayLocked, s, HandPayload{Seat: s})
		}
	}

	if p.chamber.IsEmpty() {
		e.finishSeat(seat)
		if e.phase != PhasePlaying {
			return nil
		}
	}
	e.startTurn(e.nextUnfinished(seat))
	return nil
}

// autoPlay plays the single card for a seat whose time ran out.
func (e *Engine) autoPlay(seat Seat, card cards.Card) {
	p := e.players[seat]
	e.clearSelection(seat, p)
	hand, err := cards.NewHandFromCards(e.classifier, card)
	if err == nil {
		err = e.playHand(seat, hand, true)
	}
	if err != nil {
		e.logger.Error().Err(err).Int(logging.SeatNumKey, int(seat)).Msg("Auto play failed")
	}
}

func (e *Engine) UnlockPass(seat Seat) error {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.reject(seat, e.unlockPass(seat))
}

func (e *Engine) unlockPass(seat Seat) error {
	p, err := e.checkPlaying(seat)
	if err != nil {
		return err
	}
	if err := e.passable(seat); err != nil {
		return err
	}
	p.passUnlocked = true
	e.notify(PassUnlocked, seat, PassPayload{Seat: seat})
	return nil
}

func (e *Engine) passable(seat Seat) error {
	switch e.inPlayKind {
	case InPlayBase:
		return violation("you cannot pass before the 3 of clubs is played")
	case InPlayNone:
		return violation("you cannot pass when any hand may be played")
	}
	if seat == e.winner {
		return violation("you cannot pass on your own hand")
	}
	return nil
}

func (e *Engine) Pass(seat Seat) error {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.reject(seat, e.pass(seat))
}

func (e *Engine) pass(seat Seat) error {
	p, err := e.checkPlaying(seat)
	if err != nil {
		return err
	}
	if seat != e.current {
		return violation("it is not your turn")
	}
	if !p.passUnlocked {
		return forbidden("unlock pass before passing")
	}
	if err := e.passable(seat); err != nil {
		return err
	}
	e.passTurn(seat, false)
	return nil
}

// passTurn records a pass and clears the trick once everyone who could beat
// the hand in play has passed on it.
func (e *Engine) passTurn(seat Seat, auto bool) {
	p := e.players[seat]
	e.stopTimer(seat)
	p.passUnlocked = false
	e.passCount++
	util.Metrics.Passed()
	e.logger.Debug().Int(logging.SeatNumKey, int(seat)).Bool("auto", auto).Msg("Passed")
	e.notify(Passed, NoSeat, PassPayload{Seat: seat, Auto: auto})

	unfinished := e.numUnfinished()
	winnerLive := e.winner != NoSeat && !e.players[e.winner].finished
	if (winnerLive && e.passCount >= unfinished-1) || (!winnerLive && e.passCount >= unfinished) {
		e.clearTrick()
	}
	e.startTurn(e.nextUnfinished(seat))
}

func (e *Engine) clearTrick() {
	e.inPlayKind = InPlayNone
	e.inPlay.Clear()
	e.winner = NoSeat
	e.passCount = 0
	for s := Seat(0); s < NumSeats; s++ {
		p := e.players[s]
		if p.passUnlocked {
			p.passUnlocked = false
			e.notify(PassLocked, s, PassPayload{Seat: s})
		}
	}
	e.notify(TrickCleared, NoSeat, nil)
}

// finishSeat records a seat emptying its chamber. When only one seat is left
// it is finished as asshole and the next round is dealt for trading.
func (e *Engine) finishSeat(seat Seat) {
	e.markFinished(seat)
	if e.numUnfinished() > 1 {
		return
	}
	last := e.nextUnfinished(seat)
	e.markFinished(last)
	e.endRound()
}

func (e *Engine) markFinished(seat Seat) {
	p := e.players[seat]
	e.stopTimer(seat)
	p.finished = true
	p.unlocked = false
	p.passUnlocked = false
	e.positions = append(e.positions, seat)
	p.role = []Role{RolePresident, RoleVicePresident, RoleViceAsshole, RoleAsshole}[len(e.positions)-1]
	e.logger.Info().
		Int(logging.SeatNumKey, int(seat)).
		Str("role", p.role.String()).
		Msg("Player finished")
	e.notify(PlayerFinished, NoSeat, FinishedPayload{Seat: seat, Role: p.role, Position: len(e.positions)})
}

func (e *Engine) endRound() {
	for key := range e.timers {
		e.cancelTimer(key)
	}
	e.current = NoSeat
	e.notify(RoundFinished, NoSeat, RoundFinishedPayload{Round: e.round, Positions: append([]Seat(nil), e.positions...)})
	if err := e.deal(); err != nil {
		e.logger.Error().Err(err).Msg("Could not deal the next round")
		return
	}
	e.startTrading()
}

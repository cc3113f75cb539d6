package game

import (
	"fmt"

	"presidents.com/server/cards"
	"presidents.com/server/logging"
	"presidents.com/server/util"
)

// startTrading opens the trading phase on the freshly dealt cards. The
// president trades two cards with the asshole, the vice president one card
// with the vice asshole.
func (e *Engine) startTrading() {
	e.phase = PhaseTrading
	payload := TradingStartedPayload{}
	for s := Seat(0); s < NumSeats; s++ {
		p := e.players[s]
		p.takes = tradeCount[p.role]
		p.gives = tradeCount[p.role]
		p.askRank = 0
		p.askUnlocked = false
		p.giveUnlocked = false
		p.waiting = false
		p.alreadyAsked = [cards.NumRanks + 1]bool{}
		p.givingOptions = nil
		p.given = make(map[cards.Card]bool)
		p.taken = make(map[cards.Card]bool)
		payload.Roles[s] = p.role
	}
	e.logger.Info().Int(logging.RoundNumKey, e.round).Msg("Trading started")
	e.notify(TradingStarted, NoSeat, payload)
	e.startTimer(tradingTimerKey, timerPurposeTrading, e.timing.Trading())
}

func isAsker(role Role) bool {
	return role == RolePresident || role == RoleVicePresident
}

// partner returns the seat a seat trades with.
func (e *Engine) partner(seat Seat) Seat {
	want := map[Role]Role{
		RolePresident:     RoleAsshole,
		RoleAsshole:       RolePresident,
		RoleVicePresident: RoleViceAsshole,
		RoleViceAsshole:   RoleVicePresident,
	}[e.players[seat].role]
	for s := Seat(0); s < NumSeats; s++ {
		if e.players[s].role == want {
			return s
		}
	}
	return NoSeat
}

func (e *Engine) checkTrading(seat Seat) (*player, error) {
	p, err := e.checkSeat(seat)
	if err != nil {
		return nil, err
	}
	if e.phase != PhaseTrading {
		return nil, forbidden("cards can only be traded between rounds")
	}
	return p, nil
}

func (e *Engine) checkAsker(seat Seat) (*player, error) {
	p, err := e.checkTrading(seat)
	if err != nil {
		return nil, err
	}
	if !isAsker(p.role) {
		return nil, forbidden("only the president and vice president ask for cards")
	}
	return p, nil
}

// SelectAskRank toggles the rank the seat will ask its partner for.
func (e *Engine) SelectAskRank(seat Seat, rank int) error {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.reject(seat, e.selectAskRank(seat, rank))
}

func (e *Engine) selectAskRank(seat Seat, rank int) error {
	p, err := e.checkAsker(seat)
	if err != nil {
		return err
	}
	if rank < 1 || rank > cards.NumRanks {
		return forbidden(fmt.Sprintf("invalid rank %d", rank))
	}
	if p.alreadyAsked[rank] {
		return violation("your partner has no cards of that rank")
	}
	if p.askRank == rank {
		p.askRank = 0
	} else {
		p.askRank = rank
	}
	p.askUnlocked = false
	e.notify(AskRankSelected, seat, RankPayload{Seat: seat, Rank: p.askRank})
	return nil
}

func (e *Engine) UnlockAsk(seat Seat) error {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.reject(seat, e.unlockAsk(seat))
}

func (e *Engine) unlockAsk(seat Seat) error {
	p, err := e.checkAsker(seat)
	if err != nil {
		return err
	}
	if err := askable(p); err != nil {
		return err
	}
	p.askUnlocked = true
	e.notify(AskUnlocked, seat, RankPayload{Seat: seat, Rank: p.askRank})
	return nil
}

func askable(p *player) error {
	if p.takes == 0 {
		return violation("you have no asks left")
	}
	if p.waiting {
		return violation("wait for your partner to answer")
	}
	if p.askRank == 0 {
		return violation("select a rank to ask for")
	}
	return nil
}

// Ask requests the selected rank from the partner. A partner holding none of
// it answers at once and the rank cannot be asked again.
func (e *Engine) Ask(seat Seat) error {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.reject(seat, e.ask(seat))
}

func (e *Engine) ask(seat Seat) error {
	p, err := e.checkAsker(seat)
	if err != nil {
		return err
	}
	if !p.askUnlocked {
		return forbidden("unlock the ask first")
	}
	if err := askable(p); err != nil {
		return err
	}
	rank := p.askRank
	p.askRank = 0
	p.askUnlocked = false
	other := e.partner(seat)
	giver := e.players[other]
	var options []cards.Card
	for _, card := range giver.chamber.CardsOfRank(rank) {
		if !giver.given[card] {
			options = append(options, card)
		}
	}
	e.logger.Debug().Int(logging.SeatNumKey, int(seat)).Int("rank", rank).Int("options", len(options)).Msg("Asked")
	e.notify(Asked, NoSeat, RankPayload{Seat: seat, Rank: rank})
	if len(options) == 0 {
		p.alreadyAsked[rank] = true
		e.notify(NoCardsOfRank, seat, RankPayload{Seat: other, Rank: rank})
		return nil
	}
	p.waiting = true
	giver.givingOptions = options
	giver.giveUnlocked = false
	e.notify(GivingOptions, other, CardsPayload{Cards: options})
	return nil
}

// UnlockGive arms the single selected card for giving.
func (e *Engine) UnlockGive(seat Seat) error {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.reject(seat, e.unlockGive(seat))
}

func (e *Engine) unlockGive(seat Seat) error {
	p, err := e.checkTrading(seat)
	if err != nil {
		return err
	}
	card, err := e.givable(p)
	if err != nil {
		return err
	}
	p.giveUnlocked = true
	e.notify(GiveUnlocked, seat, TransferPayload{From: seat, To: e.partner(seat), Card: card})
	return nil
}

// givable returns the selected card if the seat may give it. Askers give
// back any card they did not receive; asked seats give one of the options.
func (e *Engine) givable(p *player) (cards.Card, error) {
	if p.gives == 0 {
		return cards.NoCard, violation("you have no cards left to give")
	}
	selection := p.chamber.Selection()
	if selection.Size() != 1 {
		return cards.NoCard, violation("select exactly one card to give")
	}
	card := selection.Cards()[0]
	if isAsker(p.role) {
		if p.taken[card] {
			return cards.NoCard, violation("you cannot give back a card you received")
		}
		return card, nil
	}
	if len(p.givingOptions) == 0 {
		return cards.NoCard, violation("wait to be asked for a card")
	}
	for _, option := range p.givingOptions {
		if option == card {
			return card, nil
		}
	}
	return cards.NoCard, violation(fmt.Sprintf("you must give one of %s", cards.CardsToString(p.givingOptions)))
}

func (e *Engine) Give(seat Seat) error {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.reject(seat, e.give(seat))
}

func (e *Engine) give(seat Seat) error {
	p, err := e.checkTrading(seat)
	if err != nil {
		return err
	}
	if !p.giveUnlocked {
		return forbidden("unlock the give first")
	}
	card, err := e.givable(p)
	if err != nil {
		p.giveUnlocked = false
		return err
	}
	if err := e.transfer(seat, e.partner(seat), card); err != nil {
		return err
	}
	e.maybeFinishTrading()
	return nil
}

// transfer moves card between trading partners and updates both counters.
func (e *Engine) transfer(from Seat, to Seat, card cards.Card) error {
	giver := e.players[from]
	receiver := e.players[to]
	if giver.chamber.IsSelected(card) {
		released, _ := giver.chamber.DeselectCard(card)
		e.notify(CardDeselected, from, CardPayload{Card: card})
		e.notifyStoredHands(StoredHandDeselected, from, released)
	}
	removed, err := giver.chamber.RemoveCard(card)
	if err != nil {
		return err
	}
	if err := receiver.chamber.AddCard(card); err != nil {
		return err
	}
	for _, id := range removed {
		e.notify(HandUnstored, from, StoredHandPayload{ID: id})
	}
	giver.given[card] = true
	receiver.taken[card] = true
	giver.gives--
	receiver.takes--
	giver.giveUnlocked = false
	if !isAsker(giver.role) {
		giver.givingOptions = nil
		receiver.waiting = false
	}
	util.Metrics.CardTraded()
	e.logger.Debug().
		Int(logging.SeatNumKey, int(from)).
		Int("to", int(to)).
		Str(logging.CardsKey, card.String()).
		Msg("Card traded")
	payload := TransferPayload{From: from, To: to, Card: card}
	e.notify(CardGiven, from, payload)
	e.notify(CardReceived, to, payload)
	return nil
}

func (e *Engine) tradingDone() bool {
	for _, p := range e.players {
		if p.takes > 0 || p.gives > 0 {
			return false
		}
	}
	return true
}

func (e *Engine) maybeFinishTrading() {
	if e.phase != PhaseTrading || !e.tradingDone() {
		return
	}
	e.cancelTimer(tradingTimerKey)
	for s := Seat(0); s < NumSeats; s++ {
		p := e.players[s]
		p.givingOptions = nil
		p.waiting = false
		p.askUnlocked = false
		p.giveUnlocked = false
		p.askRank = 0
	}
	e.logger.Info().Int(logging.RoundNumKey, e.round).Msg("Trading finished")
	e.notify(TradingFinished, NoSeat, nil)
	e.startPlay()
}

// forceTrades completes every outstanding trade with the lowest eligible card.
func (e *Engine) forceTrades() {
	for s := Seat(0); s < NumSeats; s++ {
		p := e.players[s]
		if !isAsker(p.role) {
			continue
		}
		other := e.partner(s)
		giver := e.players[other]
		for p.takes > 0 {
			card := lowestExcept(giver.givingOptions, nil)
			if card == cards.NoCard {
				card = lowestExcept(giver.chamber.Cards(), giver.given)
			}
			if card == cards.NoCard || e.transfer(other, s, card) != nil {
				break
			}
		}
		for p.gives > 0 {
			card := lowestExcept(p.chamber.Cards(), p.taken)
			if card == cards.NoCard || e.transfer(s, other, card) != nil {
				break
			}
		}
	}
	if !e.tradingDone() {
		e.logger.Error().Msg("Trading could not be completed. Starting the round anyway.")
		for _, p := range e.players {
			p.takes = 0
			p.gives = 0
		}
	}
	e.maybeFinishTrading()
}

// lowestExcept returns the lowest card of sorted not in skip.
func lowestExcept(sorted []cards.Card, skip map[cards.Card]bool) cards.Card {
	for _, card := range sorted {
		if !skip[card] {
			return card
		}
	}
	return cards.NoCard
}

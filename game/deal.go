package game

import (
	"fmt"
	"math/rand"
	"sync"

	"presidents.com/server/cards"
)

// Deal is the 13 cards of each seat.
type Deal [NumSeats][]cards.Card

// DealSource produces the cards for the next round of a game.
type DealSource interface {
	NextDeal(gameCode string) (Deal, error)
}

// RandomDealer shuffles a full deck for every deal.
type RandomDealer struct {
	lock   sync.Mutex
	source rand.Source
}

// NewRandomDealer uses source for shuffling; nil seeds from crypto/rand on
// every deal.
func NewRandomDealer(source rand.Source) *RandomDealer {
	return &RandomDealer{source: source}
}

func (d *RandomDealer) NextDeal(gameCode string) (Deal, error) {
	d.lock.Lock()
	defer d.lock.Unlock()
	return Deal(cards.NewDeck(d.source).Deal()), nil
}

// MemoryDealSetup serves scripted deals queued per game and falls back to
// another source once a game's queue is drained.
type MemoryDealSetup struct {
	lock     sync.Mutex
	deals    map[string][]Deal
	fallback DealSource
}

func NewMemoryDealSetup(fallback DealSource) *MemoryDealSetup {
	if fallback == nil {
		fallback = NewRandomDealer(nil)
	}
	return &MemoryDealSetup{
		deals:    make(map[string][]Deal),
		fallback: fallback,
	}
}

func (m *MemoryDealSetup) Save(gameCode string, deal Deal) error {
	if err := validateDeal(deal); err != nil {
		return err
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	m.deals[gameCode] = append(m.deals[gameCode], deal)
	return nil
}

func (m *MemoryDealSetup) NextDeal(gameCode string) (Deal, error) {
	m.lock.Lock()
	queue := m.deals[gameCode]
	if len(queue) > 0 {
		deal := queue[0]
		if len(queue) == 1 {
			delete(m.deals, gameCode)
		} else {
			m.deals[gameCode] = queue[1:]
		}
		m.lock.Unlock()
		return deal, nil
	}
	m.lock.Unlock()
	return m.fallback.NextDeal(gameCode)
}

// validateDeal checks that the deal hands out every card exactly once, 13 per seat.
func validateDeal(deal Deal) error {
	var seen [cards.MaxCard + 1]bool
	for seat, hand := range deal {
		if len(hand) != cards.CardsPerSeat {
			return InvalidDealError{Msg: fmt.Sprintf("seat %d is dealt %d cards", seat, len(hand))}
		}
		for _, card := range hand {
			if !card.Valid() {
				return InvalidDealError{Msg: fmt.Sprintf("seat %d is dealt invalid card %d", seat, uint8(card))}
			}
			if seen[card] {
				return InvalidDealError{Msg: fmt.Sprintf("card %s is dealt twice", card)}
			}
			seen[card] = true
		}
	}
	return nil
}

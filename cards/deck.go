package cards

import (
	"math/rand"
	"sort"

	"presidents.com/server/util/random"
)

const (
	NumSeats     = 4
	CardsPerSeat = 13
)

type Deck struct {
	cards   []Card
	randGen *rand.Rand
}

// NewDeck returns a shuffled deck. A nil source is seeded from crypto/rand.
func NewDeck(source rand.Source) *Deck {
	if source == nil {
		source = random.NewSource()
	}
	deck := &Deck{randGen: rand.New(source)}
	deck.Shuffle()
	return deck
}

func NewDeckNoShuffle() *Deck {
	deck := &Deck{}
	deck.cards = fullDeck()
	return deck
}

func fullDeck() []Card {
	cards := make([]Card, 0, MaxCard)
	for c := ThreeOfClubs; c <= MaxCard; c++ {
		cards = append(cards, c)
	}
	return cards
}

func (deck *Deck) Shuffle() *Deck {
	deck.cards = fullDeck()
	if deck.randGen == nil {
		deck.randGen = rand.New(random.NewSource())
	}
	deck.randGen.Shuffle(len(deck.cards), func(i, j int) {
		deck.cards[i], deck.cards[j] = deck.cards[j], deck.cards[i]
	})
	return deck
}

func (deck *Deck) Draw(n int) []Card {
	cards := make([]Card, n)
	copy(cards, deck.cards[:n])
	deck.cards = deck.cards[n:]
	return cards
}

func (deck *Deck) Empty() bool {
	return len(deck.cards) == 0
}

// Deal splits a full deck into four sorted 13-card hands.
func (deck *Deck) Deal() [NumSeats][]Card {
	var hands [NumSeats][]Card
	for seat := range hands {
		hands[seat] = make([]Card, 0, CardsPerSeat)
	}
	for i := 0; !deck.Empty(); i++ {
		hands[i%NumSeats] = append(hands[i%NumSeats], deck.Draw(1)[0])
	}
	for _, hand := range hands {
		SortCards(hand)
	}
	return hands
}

func SortCards(cards []Card) {
	sort.Slice(cards, func(i, j int) bool { return cards[i] < cards[j] })
}

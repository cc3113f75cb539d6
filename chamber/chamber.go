package chamber

import (
	"sort"

	"github.com/emirpasic/gods/sets/treeset"

	"presidents.com/server/cards"
)

// HandID is an opaque handle to a stored hand.
type HandID uint32

// StoredHand is a read-only view of a stored combination. Selected counts how
// many of its cards are currently in the live selection.
type StoredHand struct {
	ID       HandID
	Hand     cards.Hand
	Selected int
}

type storedHand struct {
	id       HandID
	hand     cards.Hand
	selected int
}

// storableTypes lists the combination types a chamber keeps, in the order
// StoredHands reports them.
var storableTypes = []cards.ComboType{cards.Double, cards.Triple, cards.FullHouse, cards.Straight, cards.Bomb}

// StoreResult reports what storing a hand changed besides the new entry:
// cards that left the selection and stored hands whose selected count fell to 0.
type StoreResult struct {
	ID         HandID
	Deselected []cards.Card
	Released   []HandID
}

// Chamber is one seat's private card storage: the cards held, the live
// selection and the stored combinations.
//
// Stored hands live in an arena keyed by HandID. cardHands indexes, for every
// held card, the stored hands that contain it; an entry exists only while the
// hand is stored and the card is held. byType keeps each type's hands in
// ascending order.
type Chamber struct {
	classifier *cards.Classifier

	held    [cards.MaxCard + 1]bool
	numHeld int

	selection cards.Hand

	hands     map[HandID]*storedHand
	cardHands [cards.MaxCard + 1]map[HandID]struct{}
	byType    map[cards.ComboType]*treeset.Set
	nextID    HandID
}

func NewChamber(classifier *cards.Classifier) *Chamber {
	c := &Chamber{classifier: classifier}
	c.Reset()
	return c
}

func (c *Chamber) Reset() {
	c.held = [cards.MaxCard + 1]bool{}
	c.numHeld = 0
	c.selection = cards.NewHand(c.classifier)
	c.hands = make(map[HandID]*storedHand)
	c.cardHands = [cards.MaxCard + 1]map[HandID]struct{}{}
	c.byType = make(map[cards.ComboType]*treeset.Set)
	for _, t := range storableTypes {
		c.byType[t] = treeset.NewWith(compareStored)
	}
}

func (c *Chamber) Holds(card cards.Card) bool {
	return card.Valid() && c.held[card]
}

func (c *Chamber) Size() int {
	return c.numHeld
}

func (c *Chamber) IsEmpty() bool {
	return c.numHeld == 0
}

// Cards returns the held cards in ascending order.
func (c *Chamber) Cards() []cards.Card {
	held := make([]cards.Card, 0, c.numHeld)
	for card := cards.ThreeOfClubs; card <= cards.MaxCard; card++ {
		if c.held[card] {
			held = append(held, card)
		}
	}
	return held
}

func (c *Chamber) CardsOfRank(rank int) []cards.Card {
	var held []cards.Card
	for suit := 0; suit < cards.NumSuits; suit++ {
		card := cards.NewCard(rank, suit)
		if c.Holds(card) {
			held = append(held, card)
		}
	}
	return held
}

// LowestCard returns the lowest held card, or NoCard when empty.
func (c *Chamber) LowestCard() cards.Card {
	for card := cards.ThreeOfClubs; card <= cards.MaxCard; card++ {
		if c.held[card] {
			return card
		}
	}
	return cards.NoCard
}

func (c *Chamber) AddCard(card cards.Card) error {
	if !card.Valid() {
		return cards.InvalidCardError{Card: card}
	}
	if c.held[card] {
		return CardAlreadyInChamberError{Card: card}
	}
	c.held[card] = true
	c.numHeld++
	return nil
}

// AddCards adds every card or none of them.
func (c *Chamber) AddCards(batch []cards.Card) error {
	seen := make(map[cards.Card]bool, len(batch))
	for _, card := range batch {
		if !card.Valid() {
			return cards.InvalidCardError{Card: card}
		}
		if c.held[card] || seen[card] {
			return CardAlreadyInChamberError{Card: card}
		}
		seen[card] = true
	}
	for _, card := range batch {
		c.held[card] = true
		c.numHeld++
	}
	return nil
}

// RemoveCard drops a held card, takes it out of the selection if it is there
// and unstores every stored hand containing it. The ids of the unstored hands
// are returned.
func (c *Chamber) RemoveCard(card cards.Card) ([]HandID, error) {
	if !c.Holds(card) {
		return nil, CardNotInChamberError{Card: card}
	}
	return c.removeCard(card), nil
}

// RemoveCards removes every card or none of them.
func (c *Chamber) RemoveCards(batch []cards.Card) ([]HandID, error) {
	seen := make(map[cards.Card]bool, len(batch))
	for _, card := range batch {
		if !c.Holds(card) || seen[card] {
			return nil, CardNotInChamberError{Card: card}
		}
		seen[card] = true
	}
	var removed []HandID
	for _, card := range batch {
		removed = append(removed, c.removeCard(card)...)
	}
	return removed, nil
}

func (c *Chamber) removeCard(card cards.Card) []HandID {
	if c.selection.Contains(card) {
		_ = c.selection.Remove(card)
	}

	// collect first: unstoring edits the index being walked
	ids := make([]HandID, 0, len(c.cardHands[card]))
	for id := range c.cardHands[card] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		c.unstore(id)
	}
	c.cardHands[card] = nil

	c.held[card] = false
	c.numHeld--
	return ids
}

// Selection returns a copy of the live selection.
func (c *Chamber) Selection() cards.Hand {
	return c.selection
}

func (c *Chamber) IsSelected(card cards.Card) bool {
	return c.selection.Contains(card)
}

// SelectCard adds a held card to the selection. It returns the stored hands
// whose selected count went from 0 to 1.
func (c *Chamber) SelectCard(card cards.Card) ([]HandID, error) {
	if !c.Holds(card) {
		return nil, CardNotInChamberError{Card: card}
	}
	if err := c.selection.Add(card); err != nil {
		return nil, err
	}
	var marked []HandID
	for _, id := range c.handsWith(card) {
		sh := c.hands[id]
		sh.selected++
		if sh.selected == 1 {
			marked = append(marked, id)
		}
	}
	return marked, nil
}

// DeselectCard removes a card from the selection. It returns the stored hands
// whose selected count went from 1 to 0.
func (c *Chamber) DeselectCard(card cards.Card) ([]HandID, error) {
	if err := c.selection.Remove(card); err != nil {
		return nil, err
	}
	var released []HandID
	for _, id := range c.handsWith(card) {
		sh := c.hands[id]
		sh.selected--
		if sh.selected == 0 {
			released = append(released, id)
		}
	}
	return released, nil
}

// DeselectAll empties the selection, returning the cards that were selected.
func (c *Chamber) DeselectAll() []cards.Card {
	selected := c.selection.Cards()
	for _, card := range selected {
		_, _ = c.DeselectCard(card)
	}
	return selected
}

// StoreHand keeps a validated combination of held cards for later replay. The
// hand's cards are deselected first since stored and selected are exclusive.
func (c *Chamber) StoreHand(hand cards.Hand) (StoreResult, error) {
	if hand.Size() < 2 {
		return StoreResult{}, HandNotStorableError{Hand: hand, Reason: "fewer than two cards"}
	}
	slots := hand.Slots()
	for i := hand.Head() + 1; i < cards.HandSize; i++ {
		if i > hand.Head()+1 && slots[i-1] >= slots[i] {
			return StoreResult{}, HandNotStorableError{Hand: hand, Reason: "cards are not in ascending order"}
		}
		if !c.Holds(slots[i]) {
			return StoreResult{}, HandNotStorableError{Hand: hand, Reason: "card " + slots[i].String() + " is not held"}
		}
	}
	if t := c.classifier.Classify(slots); c.byType[t] == nil || t != hand.Type() {
		return StoreResult{}, HandNotStorableError{Hand: hand, Reason: "not a valid combination"}
	}
	if id, found := c.findStored(hand); found {
		return StoreResult{}, HandAlreadyStoredError{Hand: hand, ID: id}
	}

	result := StoreResult{}
	for _, card := range hand.Cards() {
		if c.selection.Contains(card) {
			released, _ := c.DeselectCard(card)
			result.Deselected = append(result.Deselected, card)
			result.Released = append(result.Released, released...)
		}
	}

	c.nextID++
	sh := &storedHand{id: c.nextID, hand: hand}
	c.hands[sh.id] = sh
	for _, card := range hand.Cards() {
		if c.cardHands[card] == nil {
			c.cardHands[card] = make(map[HandID]struct{})
		}
		c.cardHands[card][sh.id] = struct{}{}
	}
	c.insertOrdered(sh)
	result.ID = sh.id
	return result, nil
}

// findStored scans only the index of the hand's least shared card.
func (c *Chamber) findStored(hand cards.Hand) (HandID, bool) {
	var pivot cards.Card
	for _, card := range hand.Cards() {
		if pivot == cards.NoCard || len(c.cardHands[card]) < len(c.cardHands[pivot]) {
			pivot = card
		}
	}
	for id := range c.cardHands[pivot] {
		if c.hands[id].hand.Slots() == hand.Slots() {
			return id, true
		}
	}
	return 0, false
}

// compareStored orders hands of one type; ties fall back to the id.
func compareStored(a, b interface{}) int {
	x, y := a.(*storedHand), b.(*storedHand)
	if order, err := x.hand.Compare(y.hand); err == nil && order != 0 {
		return order
	}
	switch {
	case x.id < y.id:
		return -1
	case x.id > y.id:
		return 1
	}
	return 0
}

// insertOrdered and unstore are O(log n) in the hands of that type.
func (c *Chamber) insertOrdered(sh *storedHand) {
	c.byType[sh.hand.Type()].Add(sh)
}

func (c *Chamber) UnstoreHand(id HandID) error {
	if _, ok := c.hands[id]; !ok {
		return StoredHandNotFoundError{ID: id}
	}
	c.unstore(id)
	return nil
}

func (c *Chamber) unstore(id HandID) {
	sh := c.hands[id]
	for _, card := range sh.hand.Cards() {
		delete(c.cardHands[card], id)
	}
	delete(c.hands, id)
	c.byType[sh.hand.Type()].Remove(sh)
}

func (c *Chamber) handsWith(card cards.Card) []HandID {
	ids := make([]HandID, 0, len(c.cardHands[card]))
	for id := range c.cardHands[card] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// StoredHandsWith returns the ids of stored hands containing card.
func (c *Chamber) StoredHandsWith(card cards.Card) []HandID {
	if !card.Valid() {
		return nil
	}
	return c.handsWith(card)
}

func (c *Chamber) StoredHand(id HandID) (StoredHand, bool) {
	sh, ok := c.hands[id]
	if !ok {
		return StoredHand{}, false
	}
	return sh.view(), true
}

func (c *Chamber) NumStored() int {
	return len(c.hands)
}

// StoredHands returns every stored hand, ascending within each type.
func (c *Chamber) StoredHands() []StoredHand {
	views := make([]StoredHand, 0, len(c.hands))
	for _, t := range storableTypes {
		for _, v := range c.byType[t].Values() {
			views = append(views, v.(*storedHand).view())
		}
	}
	return views
}

func (sh *storedHand) view() StoredHand {
	return StoredHand{ID: sh.id, Hand: sh.hand, Selected: sh.selected}
}

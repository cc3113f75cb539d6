package chamber

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"presidents.com/server/cards"
)

var testClassifier = cards.NewClassifier()

func newTestChamber(t *testing.T, held ...cards.Card) *Chamber {
	t.Helper()
	c := NewChamber(testClassifier)
	require.NoError(t, c.AddCards(held))
	return c
}

func hand(t *testing.T, cs ...cards.Card) cards.Hand {
	t.Helper()
	h, err := cards.NewHandFromCards(testClassifier, cs...)
	require.NoError(t, err)
	return h
}

// checkIndex verifies every stored hand is indexed on exactly its cards.
func checkIndex(t *testing.T, c *Chamber) {
	t.Helper()
	for card := cards.ThreeOfClubs; card <= cards.MaxCard; card++ {
		for id := range c.cardHands[card] {
			sh, ok := c.hands[id]
			require.True(t, ok, "card %s indexes missing hand #%d", card, id)
			require.True(t, sh.hand.Contains(card), "card %s indexes #%d which lacks it", card, id)
			require.True(t, c.held[card], "unheld card %s is indexed", card)
		}
	}
	for id, sh := range c.hands {
		for _, card := range sh.hand.Cards() {
			_, ok := c.cardHands[card][id]
			require.True(t, ok, "hand #%d missing from index of %s", id, card)
		}
	}
}

func TestAddRemoveCards(t *testing.T) {
	all := []cards.Card{1, 2, 3, 17, 30, 52}
	c := newTestChamber(t, all...)
	require.Equal(t, 6, c.Size())
	if !cmp.Equal(c.Cards(), all) {
		t.Errorf("cards %v", c.Cards())
	}
	_, err := c.RemoveCards(all)
	require.NoError(t, err)
	require.True(t, c.IsEmpty())
	require.Empty(t, c.Cards())
}

func TestBulkOperationsAreAtomic(t *testing.T) {
	c := newTestChamber(t, 1, 2, 3)
	require.Equal(t, CardAlreadyInChamberError{Card: 3}, c.AddCards([]cards.Card{10, 11, 3}))
	require.False(t, c.Holds(10))
	require.Equal(t, CardAlreadyInChamberError{Card: 12}, c.AddCards([]cards.Card{12, 12}))
	require.False(t, c.Holds(12))

	_, err := c.RemoveCards([]cards.Card{1, 2, 40})
	require.Equal(t, CardNotInChamberError{Card: 40}, err)
	require.True(t, c.Holds(1))
	require.True(t, c.Holds(2))
	require.Equal(t, 3, c.Size())
}

func TestSingleCardErrors(t *testing.T) {
	c := newTestChamber(t, 1)
	require.Equal(t, CardAlreadyInChamberError{Card: 1}, c.AddCard(1))
	_, err := c.RemoveCard(2)
	require.Equal(t, CardNotInChamberError{Card: 2}, err)
	_, err = c.SelectCard(2)
	require.Equal(t, CardNotInChamberError{Card: 2}, err)
	_, err = c.DeselectCard(1)
	require.Equal(t, cards.CardNotInHandError{Card: 1}, err)
}

func TestStoreHandThenRemoveCardUnstores(t *testing.T) {
	c := newTestChamber(t, 1, 2, 3, 4, 5, 6)
	double, err := c.StoreHand(hand(t, 1, 2))
	require.NoError(t, err)
	triple, err := c.StoreHand(hand(t, 1, 2, 3))
	require.NoError(t, err)
	other, err := c.StoreHand(hand(t, 5, 6))
	require.NoError(t, err)
	checkIndex(t, c)

	removed, err := c.RemoveCard(2)
	require.NoError(t, err)
	require.ElementsMatch(t, []HandID{double.ID, triple.ID}, removed)
	checkIndex(t, c)

	require.Empty(t, c.StoredHandsWith(1))
	require.Empty(t, c.StoredHandsWith(3))
	require.Equal(t, []HandID{other.ID}, c.StoredHandsWith(5))
	require.Equal(t, 1, c.NumStored())
}

func TestStoreHandValidation(t *testing.T) {
	c := newTestChamber(t, 1, 2, 5, 9)
	testCases := []struct {
		name string
		hand cards.Hand
	}{
		{"single", hand(t, 1)},
		{"unheld card", hand(t, 1, 3)},
		{"invalid combination", hand(t, 1, 5)},
	}
	for _, tc := range testCases {
		_, err := c.StoreHand(tc.hand)
		var notStorable HandNotStorableError
		require.ErrorAs(t, err, &notStorable, tc.name)
	}

	res, err := c.StoreHand(hand(t, 1, 2))
	require.NoError(t, err)
	_, err = c.StoreHand(hand(t, 1, 2))
	require.Equal(t, HandAlreadyStoredError{Hand: hand(t, 1, 2), ID: res.ID}, err)
}

func TestStoreHandDeselects(t *testing.T) {
	c := newTestChamber(t, 1, 2, 3)
	_, err := c.SelectCard(1)
	require.NoError(t, err)
	_, err = c.SelectCard(3)
	require.NoError(t, err)

	res, err := c.StoreHand(hand(t, 1, 2))
	require.NoError(t, err)
	require.Equal(t, []cards.Card{1}, res.Deselected)
	require.False(t, c.IsSelected(1))
	require.True(t, c.IsSelected(3))

	sh, ok := c.StoredHand(res.ID)
	require.True(t, ok)
	require.Equal(t, 0, sh.Selected)
}

func TestSelectedCountEdges(t *testing.T) {
	c := newTestChamber(t, 1, 2, 3)
	pair, err := c.StoreHand(hand(t, 1, 2))
	require.NoError(t, err)
	trips, err := c.StoreHand(hand(t, 1, 2, 3))
	require.NoError(t, err)

	marked, err := c.SelectCard(1)
	require.NoError(t, err)
	require.Equal(t, []HandID{pair.ID, trips.ID}, marked)

	marked, err = c.SelectCard(2)
	require.NoError(t, err)
	require.Empty(t, marked)
	sh, _ := c.StoredHand(pair.ID)
	require.Equal(t, 2, sh.Selected)

	released, err := c.DeselectCard(1)
	require.NoError(t, err)
	require.Empty(t, released)

	released, err = c.DeselectCard(2)
	require.NoError(t, err)
	require.Equal(t, []HandID{pair.ID, trips.ID}, released)
}

func TestStoredHandsOrdered(t *testing.T) {
	c := newTestChamber(t, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	for _, h := range []cards.Hand{hand(t, 9, 10), hand(t, 1, 2), hand(t, 5, 8), hand(t, 3, 4), hand(t, 5, 6, 7)} {
		_, err := c.StoreHand(h)
		require.NoError(t, err)
	}
	var got [][]cards.Card
	for _, sh := range c.StoredHands() {
		got = append(got, sh.Hand.Cards())
	}
	expected := [][]cards.Card{{1, 2}, {3, 4}, {5, 8}, {9, 10}, {5, 6, 7}}
	if !cmp.Equal(got, expected) {
		t.Errorf("stored hands %v, expected %v", got, expected)
	}
}

func TestRemoveCardsKeepsStoredOrder(t *testing.T) {
	all := make([]cards.Card, 0, 20)
	for card := cards.Card(1); card <= 20; card++ {
		all = append(all, card)
	}
	c := newTestChamber(t, all...)
	// every double within ranks 1..5, stored ascending
	var ids []HandID
	for first := cards.Card(1); first <= 20; first++ {
		for second := first + 1; second <= 20 && second.Rank() == first.Rank(); second++ {
			res, err := c.StoreHand(hand(t, first, second))
			require.NoError(t, err)
			ids = append(ids, res.ID)
		}
	}
	require.Equal(t, 30, c.NumStored())

	removed, err := c.RemoveCards([]cards.Card{6, 13})
	require.NoError(t, err)
	require.Len(t, removed, 6)
	require.Equal(t, 24, c.NumStored())
	require.Equal(t, c.NumStored(), c.byType[cards.Double].Size())
	checkIndex(t, c)

	stored := c.StoredHands()
	for i := 1; i < len(stored); i++ {
		less, err := stored[i-1].Hand.Less(stored[i].Hand)
		require.NoError(t, err)
		require.True(t, less, "%s listed before %s", stored[i-1].Hand, stored[i].Hand)
	}
	for _, sh := range stored {
		require.False(t, sh.Hand.Contains(6) || sh.Hand.Contains(13), "%s survived removal", sh.Hand)
	}
	require.NoError(t, c.UnstoreHand(ids[0]))
	require.Equal(t, 23, c.byType[cards.Double].Size())
}

func TestUnstoreHand(t *testing.T) {
	c := newTestChamber(t, 1, 2)
	res, err := c.StoreHand(hand(t, 1, 2))
	require.NoError(t, err)
	require.NoError(t, c.UnstoreHand(res.ID))
	require.Equal(t, StoredHandNotFoundError{ID: res.ID}, c.UnstoreHand(res.ID))
	checkIndex(t, c)
	require.Equal(t, 0, c.NumStored())
	require.True(t, c.Holds(1))
}

func TestRemoveCardLeavesSelectionConsistent(t *testing.T) {
	c := newTestChamber(t, 1, 2, 3)
	_, err := c.SelectCard(2)
	require.NoError(t, err)
	_, err = c.RemoveCard(2)
	require.NoError(t, err)
	require.True(t, c.Selection().IsEmpty())
	_, err = c.RemoveCard(3)
	require.NoError(t, err)
	require.Equal(t, cards.ThreeOfClubs, c.LowestCard())
}

func TestReset(t *testing.T) {
	c := newTestChamber(t, 1, 2, 3)
	_, err := c.StoreHand(hand(t, 1, 2))
	require.NoError(t, err)
	_, err = c.SelectCard(3)
	require.NoError(t, err)
	c.Reset()
	require.True(t, c.IsEmpty())
	require.True(t, c.Selection().IsEmpty())
	require.Equal(t, 0, c.NumStored())
	require.Equal(t, cards.NoCard, c.LowestCard())
}

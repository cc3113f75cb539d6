package cards

// ComboType is the classification code of a hand. Codes are grouped by card
// count: the tens digit is the number of cards, a zero units digit marks an
// invalid arrangement of that many cards.
type ComboType int

const (
	Empty         ComboType = 0
	Single        ComboType = 11
	InvalidDouble ComboType = 20
	Double        ComboType = 21
	InvalidTriple ComboType = 30
	Triple        ComboType = 31
	InvalidQuad   ComboType = 40
	InvalidFive   ComboType = 50
	FullHouse     ComboType = 51
	Straight      ComboType = 52
	Bomb          ComboType = 53
)

var comboTypeToString = map[ComboType]string{
	Empty:         "Empty",
	Single:        "Single",
	InvalidDouble: "Invalid Double",
	Double:        "Double",
	InvalidTriple: "Invalid Triple",
	Triple:        "Triple",
	InvalidQuad:   "Invalid Quad",
	InvalidFive:   "Invalid Five",
	FullHouse:     "Full House",
	Straight:      "Straight",
	Bomb:          "Bomb",
}

func (t ComboType) String() string {
	if s, ok := comboTypeToString[t]; ok {
		return s
	}
	return "Unknown"
}

// Valid reports whether t is a playable combination.
func (t ComboType) Valid() bool {
	return t != Empty && t%10 != 0
}

const (
	HandSize = 5

	// slot values run 0-52, so the base must exceed 52 for the hash to be unique
	hashBase = 53
)

// Classifier maps every valid sorted 5-slot arrangement to its ComboType.
// It is built once and is read-only afterwards, so one instance can be shared
// by every hand and chamber in the process.
type Classifier struct {
	lookup map[int64]ComboType
}

func NewClassifier() *Classifier {
	c := &Classifier{lookup: make(map[int64]ComboType)}
	c.singles()
	c.multiples()
	c.fullHouses()
	c.straights()
	c.bombs()
	return c
}

// Classify returns the combination code of the slot arrangement. Unknown
// arrangements classify as the invalid code for their card count.
func (c *Classifier) Classify(slots [HandSize]Card) ComboType {
	if t, ok := c.lookup[slotHash(slots)]; ok {
		return t
	}
	count := 0
	for _, s := range slots {
		if s != NoCard {
			count++
		}
	}
	return ComboType(count * 10)
}

// Size returns the number of arrangements in the table.
func (c *Classifier) Size() int {
	return len(c.lookup)
}

func slotHash(slots [HandSize]Card) int64 {
	var h int64
	for _, s := range slots {
		h = h*hashBase + int64(s)
	}
	return h
}

func (c *Classifier) add(cards []Card, t ComboType) {
	sorted := make([]Card, len(cards))
	copy(sorted, cards)
	SortCards(sorted)
	var slots [HandSize]Card
	copy(slots[HandSize-len(sorted):], sorted)
	c.lookup[slotHash(slots)] = t
}

func (c *Classifier) singles() {
	for card := ThreeOfClubs; card <= MaxCard; card++ {
		c.add([]Card{card}, Single)
	}
}

func (c *Classifier) multiples() {
	for rank := 1; rank <= NumRanks; rank++ {
		suited := rankCards(rank)
		for _, double := range combinations(suited, 2) {
			c.add(double, Double)
		}
		for _, triple := range combinations(suited, 3) {
			c.add(triple, Triple)
		}
	}
}

func (c *Classifier) fullHouses() {
	for doubleRank := 1; doubleRank <= NumRanks; doubleRank++ {
		for tripleRank := 1; tripleRank <= NumRanks; tripleRank++ {
			if doubleRank == tripleRank {
				continue
			}
			for _, double := range combinations(rankCards(doubleRank), 2) {
				for _, triple := range combinations(rankCards(tripleRank), 3) {
					c.add(append(append([]Card{}, double...), triple...), FullHouse)
				}
			}
		}
	}
}

// straights adds every pick of one card per rank across five consecutive
// ranks. Suits are not required to match.
func (c *Classifier) straights() {
	for low := 1; low+HandSize-1 <= NumRanks; low++ {
		picked := make([]Card, HandSize)
		var pick func(i int)
		pick = func(i int) {
			if i == HandSize {
				c.add(picked, Straight)
				return
			}
			for _, card := range rankCards(low + i) {
				picked[i] = card
				pick(i + 1)
			}
		}
		pick(0)
	}
}

func (c *Classifier) bombs() {
	for rank := 1; rank <= NumRanks; rank++ {
		quad := rankCards(rank)
		for kicker := ThreeOfClubs; kicker <= MaxCard; kicker++ {
			if kicker.Rank() == rank {
				continue
			}
			c.add(append(append([]Card{}, quad...), kicker), Bomb)
		}
	}
}

func rankCards(rank int) []Card {
	cards := make([]Card, NumSuits)
	for suit := 0; suit < NumSuits; suit++ {
		cards[suit] = NewCard(rank, suit)
	}
	return cards
}

func combinations(cards []Card, k int) [][]Card {
	var result [][]Card
	var combo []Card
	var walk func(start int)
	walk = func(start int) {
		if len(combo) == k {
			result = append(result, append([]Card{}, combo...))
			return
		}
		for i := start; i < len(cards); i++ {
			combo = append(combo, cards[i])
			walk(i + 1)
			combo = combo[:len(combo)-1]
		}
	}
	walk(0)
	return result
}

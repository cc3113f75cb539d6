package cards

// Hand holds up to five cards in ascending order, right aligned: unused slots
// are zero and sit at the low indices. head is the index of the last empty slot
// (-1 when full). The zero value is not usable; build hands with NewHand.
type Hand struct {
	slots      [HandSize]Card
	typeID     ComboType
	head       int
	classifier *Classifier
}

func NewHand(classifier *Classifier) Hand {
	return Hand{head: HandSize - 1, classifier: classifier}
}

func NewHandFromCards(classifier *Classifier, cards ...Card) (Hand, error) {
	h := NewHand(classifier)
	for _, c := range cards {
		if err := h.Add(c); err != nil {
			return Hand{}, err
		}
	}
	return h, nil
}

func (h *Hand) Add(card Card) error {
	if !card.Valid() {
		return InvalidCardError{Card: card}
	}
	if h.Contains(card) {
		return DuplicateCardError{Card: card}
	}
	if h.head < 0 {
		return FullHandError{Card: card}
	}
	i := h.head + 1
	for i < HandSize && card > h.slots[i] {
		i++
	}
	// shift the smaller cards one slot left to open slot i-1
	for j := h.head; j < i-1; j++ {
		h.slots[j] = h.slots[j+1]
	}
	h.slots[i-1] = card
	h.head--
	h.classify()
	return nil
}

func (h *Hand) Remove(card Card) error {
	idx := h.indexOf(card)
	if idx < 0 {
		return CardNotInHandError{Card: card}
	}
	for j := idx; j > h.head+1; j-- {
		h.slots[j] = h.slots[j-1]
	}
	h.slots[h.head+1] = NoCard
	h.head++
	h.classify()
	return nil
}

func (h *Hand) Clear() {
	h.slots = [HandSize]Card{}
	h.head = HandSize - 1
	h.typeID = Empty
}

func (h *Hand) classify() {
	h.typeID = h.classifier.Classify(h.slots)
}

func (h Hand) indexOf(card Card) int {
	if card == NoCard {
		return -1
	}
	for i := h.head + 1; i < HandSize; i++ {
		if h.slots[i] == card {
			return i
		}
	}
	return -1
}

func (h Hand) Contains(card Card) bool {
	return h.indexOf(card) >= 0
}

func (h Hand) Type() ComboType {
	return h.typeID
}

func (h Hand) Slots() [HandSize]Card {
	return h.slots
}

func (h Hand) Head() int {
	return h.head
}

func (h Hand) Size() int {
	return HandSize - 1 - h.head
}

func (h Hand) IsEmpty() bool {
	return h.head == HandSize-1
}

func (h Hand) IsValid() bool {
	return h.typeID.Valid()
}

func (h Hand) IsBomb() bool {
	return h.typeID == Bomb
}

// Cards returns the cards in ascending order.
func (h Hand) Cards() []Card {
	cards := make([]Card, 0, h.Size())
	for i := h.head + 1; i < HandSize; i++ {
		cards = append(cards, h.slots[i])
	}
	return cards
}

func (h Hand) String() string {
	return CardsToString(h.Cards())
}

// Equal compares slot contents, type and head.
func (h Hand) Equal(other Hand) bool {
	return h.slots == other.slots && h.typeID == other.typeID && h.head == other.head
}

// Comparable reports whether the hands can be ordered: a bomb orders against
// anything, other hands only against hands of the same type.
func (h Hand) Comparable(other Hand) bool {
	return h.IsBomb() || other.IsBomb() || h.typeID == other.typeID
}

// Compare returns -1, 0 or 1 as h is lower than, equal to or higher than other.
func (h Hand) Compare(other Hand) (int, error) {
	if !h.Comparable(other) {
		return 0, NotPlayableOnError{Hand: h, Other: other}
	}
	if h.IsBomb() != other.IsBomb() {
		if h.IsBomb() {
			return 1, nil
		}
		return -1, nil
	}

	var mine, theirs int
	switch h.typeID {
	case Bomb:
		// slot 1 is a quad card whichever side the kicker sits on
		mine, theirs = h.slots[1].Rank(), other.slots[1].Rank()
	case Triple, FullHouse:
		// slot 2 always falls inside the triple
		mine, theirs = int(h.slots[2]), int(other.slots[2])
	default:
		mine, theirs = int(h.slots[HandSize-1]), int(other.slots[HandSize-1])
	}
	if mine != theirs {
		return sign(mine - theirs), nil
	}
	for i := HandSize - 1; i >= 0; i-- {
		if h.slots[i] != other.slots[i] {
			return sign(int(h.slots[i]) - int(other.slots[i])), nil
		}
	}
	return 0, nil
}

func (h Hand) Less(other Hand) (bool, error) {
	c, err := h.Compare(other)
	return c < 0, err
}

func (h Hand) Greater(other Hand) (bool, error) {
	c, err := h.Compare(other)
	return c > 0, err
}

func (h Hand) LessOrEqual(other Hand) (bool, error) {
	less, err := h.Less(other)
	if err != nil {
		return false, err
	}
	return less || h.Equal(other), nil
}

func (h Hand) GreaterOrEqual(other Hand) (bool, error) {
	greater, err := h.Greater(other)
	if err != nil {
		return false, err
	}
	return greater || h.Equal(other), nil
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

package cards

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

/**
NOTE: Cards are numbered 1-52. Rank 1 is the three and rank 13 is the two, so the
numbering already follows Presidents ordering. Card 1 is the 3 of clubs.
**/

type Card uint8

const (
	NoCard       Card = 0
	ThreeOfClubs Card = 1
	MaxCard      Card = 52

	NumRanks = 13
	NumSuits = 4
)

const (
	Clubs = iota
	Diamonds
	Hearts
	Spades
)

var strRanks = [...]string{"3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A", "2"}
var strSuits = [...]string{"c", "d", "h", "s"}

// NewCard returns the card of the given rank (1-13) and suit (0-3).
func NewCard(rank int, suit int) Card {
	return Card((rank-1)*NumSuits + suit + 1)
}

func (c Card) Rank() int {
	return (int(c)-1)/NumSuits + 1
}

func (c Card) Suit() int {
	return (int(c) - 1) % NumSuits
}

func (c Card) Valid() bool {
	return c >= 1 && c <= MaxCard
}

func (c Card) String() string {
	if !c.Valid() {
		return fmt.Sprintf("?%d", uint8(c))
	}
	return strRanks[c.Rank()-1] + strSuits[c.Suit()]
}

// ParseCard parses the String form of a card ("3c", "10h", "2s").
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return NoCard, fmt.Errorf("Invalid card [%s]", s)
	}
	rankStr, suitStr := strings.ToUpper(s[:len(s)-1]), strings.ToLower(s[len(s)-1:])
	rank := -1
	for i, r := range strRanks {
		if r == rankStr {
			rank = i + 1
			break
		}
	}
	suit := -1
	for i, su := range strSuits {
		if su == suitStr {
			suit = i
			break
		}
	}
	if rank < 0 || suit < 0 {
		return NoCard, fmt.Errorf("Invalid card [%s]", s)
	}
	return NewCard(rank, suit), nil
}

func CardsToString(cards []Card) string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, c := range cards {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(c.String())
	}
	sb.WriteString("]")
	return sb.String()
}

// Cards is a card list that encodes to JSON as an array of card numbers
// instead of the base64 string a uint8 slice would produce.
type Cards []Card

func (cs Cards) MarshalJSON() ([]byte, error) {
	if cs == nil {
		return []byte("null"), nil
	}
	nums := make([]int, len(cs))
	for i, c := range cs {
		nums[i] = int(c)
	}
	return jsoniter.Marshal(nums)
}

func (cs *Cards) UnmarshalJSON(data []byte) error {
	var nums []int
	if err := jsoniter.Unmarshal(data, &nums); err != nil {
		return err
	}
	if nums == nil {
		*cs = nil
		return nil
	}
	decoded := make(Cards, len(nums))
	for i, n := range nums {
		if n < 1 || n > int(MaxCard) {
			return fmt.Errorf("Invalid card value %d", n)
		}
		decoded[i] = Card(n)
	}
	*cs = decoded
	return nil
}

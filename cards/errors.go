package cards

import "fmt"

type CardNotInHandError struct {
	Card Card
}

func (e CardNotInHandError) Error() string {
	return fmt.Sprintf("Card %s is not in the hand", e.Card)
}

type DuplicateCardError struct {
	Card Card
}

func (e DuplicateCardError) Error() string {
	return fmt.Sprintf("Card %s is already in the hand", e.Card)
}

type FullHandError struct {
	Card Card
}

func (e FullHandError) Error() string {
	return fmt.Sprintf("Cannot add %s: the hand already holds %d cards", e.Card, HandSize)
}

type InvalidCardError struct {
	Card Card
}

func (e InvalidCardError) Error() string {
	return fmt.Sprintf("Invalid card value %d", uint8(e.Card))
}

// NotPlayableOnError is returned when two hands cannot be ordered against each other.
type NotPlayableOnError struct {
	Hand  Hand
	Other Hand
}

func (e NotPlayableOnError) Error() string {
	return fmt.Sprintf("%s %s is not comparable to %s %s", e.Hand.Type(), e.Hand, e.Other.Type(), e.Other)
}

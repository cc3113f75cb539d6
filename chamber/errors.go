package chamber

import (
	"fmt"

	"presidents.com/server/cards"
)

type CardNotInChamberError struct {
	Card cards.Card
}

func (e CardNotInChamberError) Error() string {
	return fmt.Sprintf("Card %s is not in the chamber", e.Card)
}

type CardAlreadyInChamberError struct {
	Card cards.Card
}

func (e CardAlreadyInChamberError) Error() string {
	return fmt.Sprintf("Card %s is already in the chamber", e.Card)
}

type HandNotStorableError struct {
	Hand   cards.Hand
	Reason string
}

func (e HandNotStorableError) Error() string {
	return fmt.Sprintf("Hand %s cannot be stored: %s", e.Hand, e.Reason)
}

type HandAlreadyStoredError struct {
	Hand cards.Hand
	ID   HandID
}

func (e HandAlreadyStoredError) Error() string {
	return fmt.Sprintf("Hand %s is already stored as #%d", e.Hand, e.ID)
}

type StoredHandNotFoundError struct {
	ID HandID
}

func (e StoredHandNotFoundError) Error() string {
	return fmt.Sprintf("Stored hand #%d not found", e.ID)
}

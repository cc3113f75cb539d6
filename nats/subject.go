package nats

import (
	"fmt"
)

// GetEventsSubject carries the events every seat of the game may see.
func GetEventsSubject(gameCode string) string {
	return fmt.Sprintf("presidents.%s.events", gameCode)
}

// GetSeatSubject carries events private to one seat: dealt cards, selection
// state, giving options and rejections.
func GetSeatSubject(gameCode string, seat int) string {
	return fmt.Sprintf("presidents.%s.seat.%d", gameCode, seat)
}

package caches

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
)

// PlayerLocation is where a player is seated.
type PlayerLocation struct {
	GameCode string
	Seat     int
}

// PlayerCache maps player ids to their seats so a transport can route a
// returning player without scanning every game.
type PlayerCache struct {
	playerToSeat *lru.Cache
}

func NewCache(size int) (*PlayerCache, error) {
	playerToSeat, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to initialize playerToSeat cache")
	}
	return &PlayerCache{
		playerToSeat: playerToSeat,
	}, nil
}

func (c *PlayerCache) Add(playerID string, gameCode string, seat int) error {
	if playerID == "" {
		return fmt.Errorf("Invalid player ID [%s]", playerID)
	} else if gameCode == "" {
		return fmt.Errorf("Invalid game Code [%s]", gameCode)
	}

	c.playerToSeat.Add(playerID, PlayerLocation{GameCode: gameCode, Seat: seat})
	return nil
}

func (c *PlayerCache) Locate(playerID string) (PlayerLocation, bool) {
	v, exists := c.playerToSeat.Get(playerID)
	if !exists {
		return PlayerLocation{}, false
	}
	return v.(PlayerLocation), true
}

func (c *PlayerCache) Remove(playerID string) {
	c.playerToSeat.Remove(playerID)
}

func (c *PlayerCache) Len() int {
	return c.playerToSeat.Len()
}

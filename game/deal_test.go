package game

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"presidents.com/server/cards"
)

func TestValidateDeal(t *testing.T) {
	require.NoError(t, validateDeal(standardDeal()))

	short := standardDeal()
	short[2] = short[2][1:]
	require.Error(t, validateDeal(short))

	dup := standardDeal()
	dup[1][0] = dup[0][0]
	require.Error(t, validateDeal(dup))

	invalid := standardDeal()
	invalid[3][12] = 53
	require.Error(t, validateDeal(invalid))
}

func TestRandomDealerDealsFullDeck(t *testing.T) {
	dealer := NewRandomDealer(rand.NewSource(3))
	deal, err := dealer.NextDeal(testGameCode)
	require.NoError(t, err)
	require.NoError(t, validateDeal(deal))
	for _, hand := range deal {
		require.True(t, sortedCards(hand))
	}
}

func sortedCards(cs []cards.Card) bool {
	for i := 1; i < len(cs); i++ {
		if cs[i-1] >= cs[i] {
			return false
		}
	}
	return true
}

type countingDealer struct {
	calls int
}

func (c *countingDealer) NextDeal(string) (Deal, error) {
	c.calls++
	return standardDeal(), nil
}

func TestMemoryDealSetupQueue(t *testing.T) {
	fallback := &countingDealer{}
	setup := NewMemoryDealSetup(fallback)

	reversed := standardDeal()
	reversed[0], reversed[3] = reversed[3], reversed[0]
	require.NoError(t, setup.Save(testGameCode, reversed))
	require.Error(t, setup.Save(testGameCode, Deal{}))

	deal, err := setup.NextDeal(testGameCode)
	require.NoError(t, err)
	if diff := cmp.Diff(reversed, deal); diff != "" {
		t.Errorf("scripted deal mismatch (-want +got):\n%s", diff)
	}
	require.Zero(t, fallback.calls)

	_, err = setup.NextDeal(testGameCode)
	require.NoError(t, err)
	require.Equal(t, 1, fallback.calls)
}

func TestRedisDealSetup(t *testing.T) {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		t.Skip("REDIS_HOST is not set")
	}
	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:6379", host)})
	require.NoError(t, client.Ping(context.Background()).Err())

	fallback := &countingDealer{}
	setup := NewRedisDealSetupWithClient(client, fallback)
	code := fmt.Sprintf("deal-test-%d", rand.Int63())

	reversed := standardDeal()
	reversed[1], reversed[2] = reversed[2], reversed[1]
	require.NoError(t, setup.Save(code, reversed))

	deal, err := setup.NextDeal(code)
	require.NoError(t, err)
	if diff := cmp.Diff(reversed, deal); diff != "" {
		t.Errorf("stored deal mismatch (-want +got):\n%s", diff)
	}

	// a stored deal is used once
	_, err = setup.NextDeal(code)
	require.NoError(t, err)
	require.Equal(t, 1, fallback.calls)
}

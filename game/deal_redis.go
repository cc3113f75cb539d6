package game

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// RedisDealSetup reads a scripted next deal stored under <gameCode>:NEXT_DEAL.
// A stored deal is used once; without one the fallback source deals.
type RedisDealSetup struct {
	rdclient *redis.Client
	fallback DealSource
}

func NewRedisDealSetup(redisURL string, redisPW string, redisDB int, fallback DealSource) *RedisDealSetup {
	rdclient := redis.NewClient(&redis.Options{
		Addr:     redisURL,
		Password: redisPW,
		DB:       redisDB,
	})
	return NewRedisDealSetupWithClient(rdclient, fallback)
}

func NewRedisDealSetupWithClient(rdclient *redis.Client, fallback DealSource) *RedisDealSetup {
	if fallback == nil {
		fallback = NewRandomDealer(nil)
	}
	return &RedisDealSetup{
		rdclient: rdclient,
		fallback: fallback,
	}
}

func (s *RedisDealSetup) Save(gameCode string, deal Deal) error {
	if err := validateDeal(deal); err != nil {
		return err
	}
	dealBytes, err := jsoniter.Marshal(deal)
	if err != nil {
		return err
	}
	return s.rdclient.Set(context.Background(), s.getKey(gameCode), dealBytes, 0).Err()
}

func (s *RedisDealSetup) NextDeal(gameCode string) (Deal, error) {
	key := s.getKey(gameCode)
	dealBytes, err := s.rdclient.Get(context.Background(), key).Bytes()
	if err == redis.Nil {
		return s.fallback.NextDeal(gameCode)
	} else if err != nil {
		return Deal{}, errors.Wrap(err, fmt.Sprintf("Error loading deal setup [%s]", key))
	}
	var deal Deal
	err = jsoniter.Unmarshal(dealBytes, &deal)
	if err != nil {
		return Deal{}, errors.Wrap(err, fmt.Sprintf("Error parsing deal setup [%s]", key))
	}
	if err := s.Remove(gameCode); err != nil {
		return Deal{}, err
	}
	return deal, nil
}

func (s *RedisDealSetup) Remove(gameCode string) error {
	return s.rdclient.Del(context.Background(), s.getKey(gameCode)).Err()
}

func (s *RedisDealSetup) getKey(gameCode string) string {
	return fmt.Sprintf("%s:NEXT_DEAL", gameCode)
}

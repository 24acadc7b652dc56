// Package redis persists the selection lists and the order ledger as
// whole-blob JSON values in a Redis instance shared by the main app and
// the widget process. Each value is written and read atomically as a
// single key; the two processes coordinate through nothing else.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"fivecoin/internal/model"
)

const (
	coinsKey  = "watchlist:selected:coins"
	pairsKey  = "watchlist:selected:pairs"
	ordersKey = "watchlist:orders"
)

// Config configures the Redis store.
type Config struct {
	Addr     string // e.g. "localhost:6379"
	Password string
	DB       int
}

// Store reads and writes the shared selection and ledger blobs.
type Store struct {
	client *goredis.Client
}

// Client returns the underlying Redis client for health checks.
func (s *Store) Client() *goredis.Client { return s.client }

// New creates a Store and pings the server.
func New(cfg Config) (*Store, error) {
	s := open(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	log.Printf("[store] connected to %s", cfg.Addr)
	return s, nil
}

// NewReadOnly creates a Store without requiring the server to be up.
// The widget uses it: every failed read degrades to an empty render
// instead of blocking startup.
func NewReadOnly(cfg Config) *Store {
	s := open(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.client.Ping(ctx).Err(); err != nil {
		log.Printf("[store] WARNING: redis unreachable at %s: %v (rendering empty until it returns)", cfg.Addr, err)
	}
	return s
}

func open(cfg Config) *Store {
	return &Store{client: goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})}
}

// SaveCoins writes the coin selection blob.
func (s *Store) SaveCoins(ctx context.Context, coins []model.Coin) error {
	return s.save(ctx, coinsKey, coins)
}

// LoadCoins reads the coin selection blob. A missing key or undecodable
// blob yields an empty list.
func (s *Store) LoadCoins(ctx context.Context) ([]model.Coin, error) {
	var coins []model.Coin
	if err := s.load(ctx, coinsKey, &coins); err != nil {
		return nil, err
	}
	return coins, nil
}

// SavePairs writes the pair selection blob.
func (s *Store) SavePairs(ctx context.Context, pairs []model.Pair) error {
	return s.save(ctx, pairsKey, pairs)
}

// LoadPairs reads the pair selection blob.
func (s *Store) LoadPairs(ctx context.Context) ([]model.Pair, error) {
	var pairs []model.Pair
	if err := s.load(ctx, pairsKey, &pairs); err != nil {
		return nil, err
	}
	return pairs, nil
}

// SaveOrders writes the order ledger blob.
func (s *Store) SaveOrders(ctx context.Context, orders []model.Order) error {
	return s.save(ctx, ordersKey, orders)
}

// LoadOrders reads the order ledger blob.
func (s *Store) LoadOrders(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	if err := s.load(ctx, ordersKey, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// save serializes v and SETs it as one value. No TTL: the blobs live
// until the next write.
func (s *Store) save(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// load GETs one value and unmarshals it into out. goredis.Nil (key never
// written) leaves out untouched; an undecodable blob is logged and also
// reads as empty, to be replaced by the writer on its next mutation.
func (s *Store) load(ctx context.Context, key string, out interface{}) error {
	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == goredis.Nil {
			return nil
		}
		return fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		log.Printf("[store] undecodable blob at %s, treating as empty: %v", key, err)
		return nil
	}
	return nil
}

// Close closes the Redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

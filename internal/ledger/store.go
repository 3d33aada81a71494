package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrTransactionNotFound indicates a removal target that does not exist.
var ErrTransactionNotFound = errors.New("ledger: transaction not found")

// Store keeps each session's transaction list in Redis. The list lives and
// dies with the session: its TTL matches the session lifetime and there is
// no durable persistence behind it.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore constructs a Store.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// List returns the session's transactions in insertion order.
func (s *Store) List(ctx context.Context, sessionID string) ([]Transaction, error) {
	payload, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var txns []Transaction
	if err := json.Unmarshal(payload, &txns); err != nil {
		return nil, err
	}
	return txns, nil
}

// Append adds transactions to the end of the session's list and returns the
// full list.
func (s *Store) Append(ctx context.Context, sessionID string, txns []Transaction) ([]Transaction, error) {
	current, err := s.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	current = append(current, txns...)
	if err := s.save(ctx, sessionID, current); err != nil {
		return nil, err
	}
	return current, nil
}

// Remove deletes the transaction with the given ID.
func (s *Store) Remove(ctx context.Context, sessionID, id string) error {
	current, err := s.List(ctx, sessionID)
	if err != nil {
		return err
	}
	kept := current[:0]
	for _, txn := range current {
		if txn.ID != id {
			kept = append(kept, txn)
		}
	}
	if len(kept) == len(current) {
		return ErrTransactionNotFound
	}
	return s.save(ctx, sessionID, kept)
}

// Count reports the number of stored transactions.
func (s *Store) Count(ctx context.Context, sessionID string) (int, error) {
	txns, err := s.List(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return len(txns), nil
}

// Clear drops the session's transaction list.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	err := s.client.Del(ctx, s.key(sessionID)).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

func (s *Store) save(ctx context.Context, sessionID string, txns []Transaction) error {
	data, err := json.Marshal(txns)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(sessionID), data, s.ttl).Err()
}

func (s *Store) key(sessionID string) string {
	return "ledger:txns:" + sessionID
}

package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gatepass-ng/gatepass/internal/domain"
	"github.com/redis/go-redis/v9"
)

func keyOrder(reference string) string {
	return fmt.Sprintf("%s:order:%s", ns, reference)
}

func keyPayout(ticketID string) string {
	return fmt.Sprintf("%s:payout:%s", ns, ticketID)
}

// OrderStore keeps pending checkout orders and listing payout destinations
// between the request that created them and the payment callback that settles
// them. Entries expire on their own if the buyer never completes payment.
type OrderStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewOrderStore(rdb *redis.Client, ttl time.Duration) *OrderStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &OrderStore{rdb: rdb, ttl: ttl}
}

func (s *OrderStore) SaveOrder(ctx context.Context, o domain.PendingOrder) error {
	b, err := json.Marshal(o)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, keyOrder(o.Reference), b, s.ttl).Err()
}

// ClaimOrder atomically removes and returns the order, so two callbacks
// carrying the same reference cannot both settle it. Returns nil with no
// error when the order is unknown or expired.
func (s *OrderStore) ClaimOrder(ctx context.Context, reference string) (*domain.PendingOrder, error) {
	v, err := s.rdb.GetDel(ctx, keyOrder(reference)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var o domain.PendingOrder
	if err := json.Unmarshal([]byte(v), &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// SavePayout remembers where to send the proceeds once a listed ticket
// sells. Payout records do not expire with orders: listings have no TTL.
func (s *OrderStore) SavePayout(ctx context.Context, ticketID string, p domain.PayoutDestination) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, keyPayout(ticketID), b, 0).Err()
}

func (s *OrderStore) GetPayout(ctx context.Context, ticketID string) (*domain.PayoutDestination, error) {
	v, err := s.rdb.Get(ctx, keyPayout(ticketID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var p domain.PayoutDestination
	if err := json.Unmarshal([]byte(v), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *OrderStore) DeletePayout(ctx context.Context, ticketID string) error {
	return s.rdb.Del(ctx, keyPayout(ticketID)).Err()
}

// internal/domain/payment/intent_store.go
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/your-org/apparel-store/internal/pkg/apperror"
)

const intentKeyPrefix = "payment_intent:"

// Intent binds a gateway order to the server-computed amount it was created for
type Intent struct {
	GatewayOrderID string          `json:"gateway_order_id"`
	UserID         uint            `json:"user_id"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	CouponCode     string          `json:"coupon_code,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// IntentStore keeps payment intents until they are verified or expire
type IntentStore interface {
	Save(ctx context.Context, intent Intent, ttl time.Duration) error
	Get(ctx context.Context, gatewayOrderID string) (*Intent, error)
	Delete(ctx context.Context, gatewayOrderID string) error
}

// RedisIntentStore stores intents as JSON values with a TTL
type RedisIntentStore struct {
	client *redis.Client
}

// NewRedisIntentStore creates a redis backed intent store
func NewRedisIntentStore(client *redis.Client) *RedisIntentStore {
	return &RedisIntentStore{client: client}
}

func intentKey(gatewayOrderID string) string {
	return intentKeyPrefix + gatewayOrderID
}

// Save stores the intent under its gateway order id
func (s *RedisIntentStore) Save(ctx context.Context, intent Intent, ttl time.Duration) error {
	data, err := json.Marshal(intent)
	if err != nil {
		return apperror.Wrap(apperror.CodeInternal, err, "failed to encode payment intent")
	}
	if err := s.client.Set(ctx, intentKey(intent.GatewayOrderID), data, ttl).Err(); err != nil {
		return apperror.Wrap(apperror.CodeDependency, err, "failed to store payment intent")
	}
	return nil
}

// Get returns the intent, or nil when it expired or never existed
func (s *RedisIntentStore) Get(ctx context.Context, gatewayOrderID string) (*Intent, error) {
	data, err := s.client.Get(ctx, intentKey(gatewayOrderID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, apperror.Wrap(apperror.CodeDependency, err, "failed to load payment intent")
	}

	var intent Intent
	if err := json.Unmarshal(data, &intent); err != nil {
		return nil, apperror.Wrap(apperror.CodeInternal, err, "failed to decode payment intent")
	}
	return &intent, nil
}

// Delete removes the intent
func (s *RedisIntentStore) Delete(ctx context.Context, gatewayOrderID string) error {
	if err := s.client.Del(ctx, intentKey(gatewayOrderID)).Err(); err != nil {
		return apperror.Wrap(apperror.CodeDependency, err, "failed to delete payment intent")
	}
	return nil
}

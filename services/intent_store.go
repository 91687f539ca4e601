package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"ticket-engine/internal/status"
	"ticket-engine/models"
)

// IntentStore keeps payment intents for the span of their confirmation
// window. Both implementations guarantee that CompareAndSetStatus is atomic
// with respect to concurrent calls for the same intent — that atomicity is
// what makes confirmation settle at most once.
type IntentStore interface {
	Put(ctx context.Context, intent *models.PaymentIntent, ttl time.Duration) error
	Get(ctx context.Context, id string) (*models.PaymentIntent, error)

	// CompareAndSetStatus flips the intent from one status to another in a
	// single atomic step, returning false when the current status differs.
	CompareAndSetStatus(ctx context.Context, id string, from, to models.IntentStatus) (bool, error)

	// MarkSucceeded flips processing -> succeeded and records the settled
	// transaction id.
	MarkSucceeded(ctx context.Context, id, transactionID string) error
}

// casStatusScript performs the conditional status flip server-side so that
// concurrent confirmations against one intent serialize inside redis.
// KEYS[1] intent key, ARGV[1] expected status, ARGV[2] new status,
// ARGV[3] transaction id (empty to leave unchanged).
// Returns -1 when the intent is missing, 0 on status mismatch, 1 on success.
const casStatusScript = `
local cur = redis.call('HGET', KEYS[1], 'status')
if not cur then
	return -1
end
if cur ~= ARGV[1] then
	return 0
end
redis.call('HSET', KEYS[1], 'status', ARGV[2])
if ARGV[3] ~= '' then
	redis.call('HSET', KEYS[1], 'transaction_id', ARGV[3])
end
return 1
`

// RedisIntentStore keeps each intent as a redis hash under intent:<id> with
// a TTL covering the confirmation window. The hash holds the immutable
// intent body as JSON plus the mutable status and transaction id fields.
type RedisIntentStore struct {
	client *redis.Client
}

func NewRedisIntentStore(client *redis.Client) *RedisIntentStore {
	return &RedisIntentStore{client: client}
}

func intentKey(id string) string {
	return fmt.Sprintf("intent:%s", id)
}

func (s *RedisIntentStore) Put(ctx context.Context, intent *models.PaymentIntent, ttl time.Duration) error {
	data, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("intent store: marshal: %w", err)
	}

	key := intentKey(intent.ID)
	if err := s.client.HSet(ctx, key, "data", string(data), "status", string(intent.Status), "transaction_id", intent.TransactionID).Err(); err != nil {
		return fmt.Errorf("intent store: put: %w", err)
	}
	if err := s.client.Expire(ctx, key, ttl).Err(); err != nil {
		return fmt.Errorf("intent store: expire: %w", err)
	}
	return nil
}

func (s *RedisIntentStore) Get(ctx context.Context, id string) (*models.PaymentIntent, error) {
	fields, err := s.client.HGetAll(ctx, intentKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("intent store: get: %w", err)
	}
	if len(fields) == 0 {
		return nil, status.ErrIntentNotFound
	}

	var intent models.PaymentIntent
	if err := json.Unmarshal([]byte(fields["data"]), &intent); err != nil {
		return nil, fmt.Errorf("intent store: unmarshal: %w", err)
	}
	intent.Status = models.IntentStatus(fields["status"])
	intent.TransactionID = fields["transaction_id"]
	return &intent, nil
}

func (s *RedisIntentStore) CompareAndSetStatus(ctx context.Context, id string, from, to models.IntentStatus) (bool, error) {
	return s.eval(ctx, id, from, to, "")
}

func (s *RedisIntentStore) MarkSucceeded(ctx context.Context, id, transactionID string) error {
	swapped, err := s.eval(ctx, id, models.IntentProcessing, models.IntentSucceeded, transactionID)
	if err != nil {
		return err
	}
	if !swapped {
		return fmt.Errorf("intent store: %s not in processing state", id)
	}
	return nil
}

func (s *RedisIntentStore) eval(ctx context.Context, id string, from, to models.IntentStatus, transactionID string) (bool, error) {
	res, err := s.client.Eval(ctx, casStatusScript, []string{intentKey(id)},
		string(from), string(to), transactionID).Result()
	if err != nil {
		return false, fmt.Errorf("intent store: cas: %w", err)
	}

	code, ok := res.(int64)
	if !ok {
		return false, fmt.Errorf("intent store: cas: unexpected reply %T", res)
	}
	switch code {
	case -1:
		return false, status.ErrIntentNotFound
	case 0:
		return false, nil
	default:
		return true, nil
	}
}

// MemoryIntentStore is the single-process variant: a mutex-guarded map with
// lazy TTL expiry. It backs tests and development runs without redis.
type MemoryIntentStore struct {
	mu      sync.Mutex
	intents map[string]*memIntent
}

type memIntent struct {
	intent    models.PaymentIntent
	expiresAt time.Time
}

func NewMemoryIntentStore() *MemoryIntentStore {
	return &MemoryIntentStore{intents: make(map[string]*memIntent)}
}

func (s *MemoryIntentStore) Put(_ context.Context, intent *models.PaymentIntent, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *intent
	cp.LineItems = append([]models.LineItem(nil), intent.LineItems...)
	s.intents[intent.ID] = &memIntent{intent: cp, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryIntentStore) Get(_ context.Context, id string) (*models.PaymentIntent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.live(id)
	if err != nil {
		return nil, err
	}

	cp := entry.intent
	cp.LineItems = append([]models.LineItem(nil), entry.intent.LineItems...)
	return &cp, nil
}

func (s *MemoryIntentStore) CompareAndSetStatus(_ context.Context, id string, from, to models.IntentStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.live(id)
	if err != nil {
		return false, err
	}
	if entry.intent.Status != from {
		return false, nil
	}
	entry.intent.Status = to
	return true, nil
}

func (s *MemoryIntentStore) MarkSucceeded(_ context.Context, id, transactionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.live(id)
	if err != nil {
		return err
	}
	if entry.intent.Status != models.IntentProcessing {
		return fmt.Errorf("intent store: %s not in processing state", id)
	}
	entry.intent.Status = models.IntentSucceeded
	entry.intent.TransactionID = transactionID
	return nil
}

// live returns the entry for id, expiring it lazily. Callers hold the lock.
func (s *MemoryIntentStore) live(id string) (*memIntent, error) {
	entry, ok := s.intents[id]
	if !ok {
		return nil, status.ErrIntentNotFound
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.intents, id)
		return nil, status.ErrIntentNotFound
	}
	return entry, nil
}

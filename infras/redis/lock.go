package redis

//go:generate go run go.uber.org/mock/mockgen -source=./lock.go -destination=./mocks/lock_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goRedis "github.com/redis/go-redis/v9"

	"hemobook/config"
)

var ErrLockNotAcquired = errors.New("reservation lock not acquired")

// ReservationLocker serializes the capacity check-and-insert critical section
// per (capacity slot, concrete date) so concurrent bookings cannot overshoot
// a slot's total capacity.
type ReservationLocker interface {
	WithReservationLock(ctx context.Context, slotID string, date time.Time, fn func(ctx context.Context) error) error
}

type reservationLocker struct {
	client *goRedis.Client
	ttl    time.Duration
}

func NewReservationLocker(client *goRedis.Client, cfg *config.Config) ReservationLocker {
	return &reservationLocker{
		client: client,
		ttl:    time.Duration(cfg.Scheduling.ReserveLockTTLSeconds) * time.Second,
	}
}

func (l *reservationLocker) WithReservationLock(ctx context.Context, slotID string, date time.Time, fn func(ctx context.Context) error) error {
	key := fmt.Sprintf("lock:reservation:%s:%s", slotID, date.Format("2006-01-02"))
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire reservation lock: %w", err)
	}

	if !ok {
		return ErrLockNotAcquired
	}

	defer func() {
		_ = l.release(ctx, key, token)
	}()

	lockCtx, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(lockCtx)
}

// The lock is only deleted when it still holds our token, so an expired lock
// reacquired by another caller is never released from here.
var unlockScript = goRedis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *reservationLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, goRedis.Nil) {
		return fmt.Errorf("release reservation lock: %w", err)
	}

	return nil
}

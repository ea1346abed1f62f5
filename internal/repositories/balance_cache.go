package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/gw-ledger/internal/logger"
	"github.com/shopspring/decimal"
)

// BalanceCacheRepository caches per-owner balances in Redis. Every entry is
// tagged with the owner's generation counter at the time the sum was read; the
// counter is incremented after each insert, so an entry is only trusted while
// no write has happened since it was computed.
type BalanceCacheRepository struct {
	client *redis.Client
	exp    time.Duration // expiration for cached sums; generation keys never expire
}

func NewBalanceCacheRepository(client *redis.Client, expiration time.Duration) *BalanceCacheRepository {
	return &BalanceCacheRepository{
		client: client,
		exp:    expiration,
	}
}

func generationKey(ownerID uuid.UUID) string {
	return fmt.Sprintf("balance:gen:%s", ownerID)
}

func sumKey(ownerID uuid.UUID) string {
	return fmt.Sprintf("balance:sum:%s", ownerID)
}

// Generation returns the owner's current generation, zero if none was recorded.
func (r *BalanceCacheRepository) Generation(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	key := generationKey(ownerID)
	gen, err := r.client.Get(ctx, key).Int64()

	logger.Log.Infow(
		"key", key,
		"result", gen,
		"error", err,
	)

	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Get returns the cached sum when it was stored for generation gen.
func (r *BalanceCacheRepository) Get(ctx context.Context, ownerID uuid.UUID, gen int64) (decimal.Decimal, bool, error) {
	key := sumKey(ownerID)
	val, err := r.client.Get(ctx, key).Result()

	logger.Log.Infow(
		"key", key,
		"value", val,
		"error", err,
	)

	if errors.Is(err, redis.Nil) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}

	cachedGen, sum, err := parseCachedSum(val)
	if err != nil {
		return decimal.Zero, false, err
	}
	if cachedGen != gen {
		return decimal.Zero, false, nil
	}
	return sum, true, nil
}

// Set stores sum for generation gen with the configured expiration.
func (r *BalanceCacheRepository) Set(ctx context.Context, ownerID uuid.UUID, gen int64, sum decimal.Decimal) error {
	key := sumKey(ownerID)
	val := strconv.FormatInt(gen, 10) + "|" + sum.String()
	err := r.client.Set(ctx, key, val, r.exp).Err()

	logger.Log.Infow(
		"key", key,
		"value", val,
		"error", err,
	)

	return err
}

// Bump invalidates every cached sum of the owner.
func (r *BalanceCacheRepository) Bump(ctx context.Context, ownerID uuid.UUID) error {
	key := generationKey(ownerID)
	gen, err := r.client.Incr(ctx, key).Result()

	logger.Log.Infow(
		"key", key,
		"result", gen,
		"error", err,
	)

	return err
}

// Invalidate deletes the owner's cached sum.
func (r *BalanceCacheRepository) Invalidate(ctx context.Context, ownerID uuid.UUID) error {
	key := sumKey(ownerID)
	n, err := r.client.Del(ctx, key).Result()

	logger.Log.Infow(
		"key", key,
		"result", n,
		"error", err,
	)

	return err
}

func parseCachedSum(val string) (int64, decimal.Decimal, error) {
	genPart, sumPart, ok := strings.Cut(val, "|")
	if !ok {
		return 0, decimal.Zero, fmt.Errorf("malformed cached balance %q", val)
	}
	gen, err := strconv.ParseInt(genPart, 10, 64)
	if err != nil {
		return 0, decimal.Zero, fmt.Errorf("malformed cached balance generation: %w", err)
	}
	sum, err := decimal.NewFromString(sumPart)
	if err != nil {
		return 0, decimal.Zero, fmt.Errorf("malformed cached balance sum: %w", err)
	}
	return gen, sum, nil
}

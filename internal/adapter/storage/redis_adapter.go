package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const stockKeyPrefix = "flash_item:stock:"

var decrementStockScript = redis.NewScript(`
local key = KEYS[1]
local quantity = tonumber(ARGV[1])

local current = redis.call('GET', key)
if not current then
	return 0
end

current = tonumber(current)
if current >= quantity then
	redis.call('DECRBY', key, quantity)
	return 1
end

return 0
`)

var incrementStockScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end
redis.call('INCRBY', KEYS[1], tonumber(ARGV[1]))
return 1
`)

// RedisAdapter keeps hot stock counters in Redis. Lua scripts make the check and the
// update one atomic step.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func stockKey(itemID string) string {
	return stockKeyPrefix + itemID
}

func (r *RedisAdapter) DecreaseIfAvailable(ctx context.Context, itemID string, quantity int64) (bool, error) {
	result, err := decrementStockScript.Run(ctx, r.client, []string{stockKey(itemID)}, quantity).Int()
	if err != nil {
		return false, err
	}

	return result == 1, nil
}

// Increase returns false when no counter exists for the item.
func (r *RedisAdapter) Increase(ctx context.Context, itemID string, quantity int64) (bool, error) {
	result, err := incrementStockScript.Run(ctx, r.client, []string{stockKey(itemID)}, quantity).Int()
	if err != nil {
		return false, err
	}

	return result == 1, nil
}

// WarmStock creates the counter only if it is missing, so re-onlining an item keeps
// the live count.
func (r *RedisAdapter) WarmStock(ctx context.Context, itemID string, quantity int64) error {
	return r.client.SetNX(ctx, stockKey(itemID), quantity, 0).Err()
}

func (r *RedisAdapter) SetStock(ctx context.Context, itemID string, quantity int64) error {
	return r.client.Set(ctx, stockKey(itemID), quantity, 0).Err()
}

// Stock returns the current counter, or ok=false if there is none.
func (r *RedisAdapter) Stock(ctx context.Context, itemID string) (stock int64, ok bool, err error) {
	stock, err = r.client.Get(ctx, stockKey(itemID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return stock, true, nil
}

package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Lock is a best-effort distributed lock used to keep a sweep from running
// twice at once across schedule fires and processes.
type Lock struct {
	client redis.UniversalClient
	key    string
	value  string
}

// AcquireLock takes key for ttl. It reports false when another holder has it.
func AcquireLock(ctx context.Context, client redis.UniversalClient, key string, ttl time.Duration) (*Lock, bool, error) {
	value := uuid.NewString()

	ok, err := client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	return &Lock{client: client, key: key, value: value}, true, nil
}

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
    return redis.call("del", KEYS[1])
end
return 0
`)

// Release frees the lock if this holder still owns it.
func (l *Lock) Release(ctx context.Context) {
	_, _ = releaseScript.Run(ctx, l.client, []string{l.key}, l.value).Result()
}

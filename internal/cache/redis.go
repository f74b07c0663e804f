package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/julianstephens/bookly/internal/constants"
)

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// Prefix namespaces every key; defaults to "bookly:".
	Prefix string
}

// Redis shares cached results between clients on one machine or network.
// Expiry is delegated to the server TTL.
type Redis struct {
	client *redis.Client
	prefix string
}

func OpenRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}

	prefix := opts.Prefix
	if prefix == "" {
		prefix = constants.RedisKeyPrefix
	}
	return &Redis{client: client, prefix: prefix}, nil
}

// Check pings the server.
func (r *Redis) Check(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis unreachable: %w", err)
	}
	return nil
}

func (r *Redis) key(k Key) string {
	return r.prefix + k.String()
}

func (r *Redis) Get(ctx context.Context, key Key, dst any) (bool, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return true, nil
}

func (r *Redis) Set(ctx context.Context, key Key, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := r.client.Set(ctx, r.key(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, keys ...Key) error {
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = r.key(k)
	}
	return r.client.Del(ctx, names...).Err()
}

// DeleteKind removes the bare kind key and every kind:id and kind@owner key.
func (r *Redis) DeleteKind(ctx context.Context, kinds ...Kind) error {
	for _, kind := range kinds {
		if err := r.client.Del(ctx, r.prefix+string(kind)).Err(); err != nil {
			return err
		}
		for _, sep := range []string{":", "@"} {
			if err := r.deleteMatching(ctx, r.prefix+string(kind)+sep+"*"); err != nil {
				return fmt.Errorf("cache delete kind %s: %w", kind, err)
			}
		}
	}
	return nil
}

// DeleteOwner removes one user's entries and leaves other clients' alone.
func (r *Redis) DeleteOwner(ctx context.Context, owner string) error {
	if owner == "" {
		return nil
	}
	for _, kind := range UserKinds {
		base := r.key(Key{Kind: kind, Owner: owner})
		if err := r.client.Del(ctx, base).Err(); err != nil {
			return err
		}
		if err := r.deleteMatching(ctx, base+":*"); err != nil {
			return fmt.Errorf("cache delete owner: %w", err)
		}
	}
	return nil
}

func (r *Redis) Clear(ctx context.Context) error {
	return r.deleteMatching(ctx, r.prefix+"*")
}

func (r *Redis) deleteMatching(ctx context.Context, pattern string) error {
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := r.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return r.client.Del(ctx, batch...).Err()
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

package scores

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Redis keeps one sorted set per title: score = raw, member = timestamp plus
// a random suffix, so equal timestamps do not collapse into one member.
type Redis struct {
	c      *redis.Client
	prefix string
}

// NewRedis connects to addr and pings it with a short timeout.
func NewRedis(addr, password string, db int) (*Redis, error) {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return &Redis{c: c, prefix: "scores:"}, nil
}

func (r *Redis) key(title string) string { return r.prefix + title }

func (r *Redis) Record(ctx context.Context, e Entry) error {
	if err := validate(e); err != nil {
		return err
	}
	member := stampKey(e.At.UTC())
	if err := r.c.ZAdd(ctx, r.key(e.Title), redis.Z{Score: e.Raw, Member: member}).Err(); err != nil {
		return fmt.Errorf("zadd %s: %w", r.key(e.Title), err)
	}
	return nil
}

func (r *Redis) History(ctx context.Context, title string, descending bool) ([]Entry, error) {
	var (
		zs  []redis.Z
		err error
	)
	if descending {
		zs, err = r.c.ZRevRangeWithScores(ctx, r.key(title), 0, -1).Result()
	} else {
		zs, err = r.c.ZRangeWithScores(ctx, r.key(title), 0, -1).Result()
	}
	if err != nil {
		return nil, fmt.Errorf("zrange %s: %w", r.key(title), err)
	}
	out := make([]Entry, 0, len(zs))
	for _, z := range zs {
		ts, _ := z.Member.(string)
		at, err := parseStamp(ts)
		if err != nil {
			return nil, fmt.Errorf("parse member %q: %w", ts, err)
		}
		out = append(out, Entry{Title: title, Raw: z.Score, At: at})
	}
	// Equal scores come back in member order; re-sort for the timestamp tie-break.
	Sort(out, descending)
	return out, nil
}

// Close releases the client.
func (r *Redis) Close() error { return r.c.Close() }

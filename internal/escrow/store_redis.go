package escrow

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

const (
	keyGamePrefix = "wager:game:"
	keyNextID     = "wager:game:next_id"
	keyGameIndex  = "wager:games"
)

// redisStore persists games as JSON values plus a set index of ids.
// Records are kept without TTL: concluded games stay queryable.
type redisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) GameStore {
	return &redisStore{rdb: rdb}
}

// NewRedisStoreFromURL dials redis and verifies connectivity before use.
func NewRedisStoreFromURL(ctx context.Context, rawURL string) (GameStore, error) {
	opts, err := ParseRedisURL(rawURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisStore(rdb), nil
}

func gameKey(id uint64) string { return keyGamePrefix + strconv.FormatUint(id, 10) }

func (s *redisStore) Load(ctx context.Context, id uint64) (*Game, error) {
	raw, err := s.rdb.Get(ctx, gameKey(id)).Bytes()
	if err == redis.Nil {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, err
	}
	var g Game
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("decode game %d: %w", id, err)
	}
	return &g, nil
}

func (s *redisStore) Save(ctx context.Context, g *Game) error {
	raw, err := json.Marshal(g)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, gameKey(g.ID), raw, 0)
	pipe.SAdd(ctx, keyGameIndex, strconv.FormatUint(g.ID, 10))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save game %d: %w", g.ID, err)
	}
	return nil
}

func (s *redisStore) List(ctx context.Context) ([]*Game, error) {
	members, err := s.rdb.SMembers(ctx, keyGameIndex).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(members))
	for _, m := range members {
		id, perr := strconv.ParseUint(m, 10, 64)
		if perr != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	games := make([]*Game, 0, len(ids))
	for _, id := range ids {
		g, gerr := s.Load(ctx, id)
		if gerr != nil {
			// index can briefly outlive a missing value; skip holes
			continue
		}
		games = append(games, g)
	}
	return games, nil
}

func (s *redisStore) NextID(ctx context.Context) (uint64, error) {
	n, err := s.rdb.Incr(ctx, keyNextID).Result()
	if err != nil {
		return 0, err
	}
	return uint64(n), nil
}

// ParseRedisURL accepts redis:// and rediss:// URLs with an optional
// password and db path segment.
func ParseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}

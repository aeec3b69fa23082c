package redis

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	backend "github.com/redis/go-redis/v9"
)

const schemaVersion = "1"

// HistoryStore implements ports.HistoryStore using Redis sets.
// Each user owns one set of candidate ids, so appends are unions by construction.
type HistoryStore struct {
	client *backend.Client
	prefix string
}

type Option func(*HistoryStore)

// WithPrefix sets the key prefix for history keys.
func WithPrefix(prefix string) Option {
	return func(s *HistoryStore) {
		s.prefix = prefix
	}
}

// New creates a new Redis history store from a redis:// URL.
func New(url string, opts ...Option) (*HistoryStore, error) {
	parsed, err := backend.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return NewFromClient(backend.NewClient(parsed), opts...), nil
}

// NewFromClient creates a new Redis history store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *HistoryStore {
	store := &HistoryStore{
		client: client,
		prefix: "kinder:history:",
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *HistoryStore) key(userID int64) string {
	return s.prefix + strconv.FormatInt(userID, 10)
}

func (s *HistoryStore) indexKey() string {
	return s.prefix + "index"
}

func (s *HistoryStore) schemaKey() string {
	return s.prefix + "schema"
}

// ReadHistory returns the ids shown to the user.
func (s *HistoryStore) ReadHistory(ctx context.Context, userID int64) ([]int64, error) {
	members, err := s.client.SMembers(ctx, s.key(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read history from redis: %w", err)
	}
	ids, err := parseIDs(members)
	if err != nil {
		return nil, fmt.Errorf("corrupt history for user %d: %w", userID, err)
	}
	return ids, nil
}

// AppendHistory adds ids to the user's set and registers the user in the index.
func (s *HistoryStore) AppendHistory(ctx context.Context, userID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	members := make([]any, len(ids))
	for i, id := range ids {
		members[i] = id
	}

	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, s.key(userID), members...)
	pipe.SAdd(ctx, s.indexKey(), userID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append history to redis: %w", err)
	}
	return nil
}

// Provisioned reports whether the schema marker exists.
func (s *HistoryStore) Provisioned(ctx context.Context) (bool, error) {
	n, err := s.client.Exists(ctx, s.schemaKey()).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check redis schema marker: %w", err)
	}
	return n == 1, nil
}

// Provision writes the schema marker.
func (s *HistoryStore) Provision(ctx context.Context) error {
	if err := s.client.SetNX(ctx, s.schemaKey(), schemaVersion, 0).Err(); err != nil {
		return fmt.Errorf("failed to write redis schema marker: %w", err)
	}
	return nil
}

// ListUsers returns every user with a recorded history.
func (s *HistoryStore) ListUsers(ctx context.Context) ([]int64, error) {
	members, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return parseIDs(members)
}

// Ping checks connectivity.
func (s *HistoryStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the redis client.
func (s *HistoryStore) Close() error {
	return s.client.Close()
}

func parseIDs(members []string) ([]int64, error) {
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

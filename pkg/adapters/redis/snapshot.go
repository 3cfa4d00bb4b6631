package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/augtree/pkg/codec"
	"github.com/aretw0/augtree/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

const (
	defaultPrefix = "augtree:snapshot:"
	// 2100-01-01, the index score of snapshots that never expire.
	neverExpires = 4102444800
)

// SnapshotStore implements ports.SnapshotBackend using Redis.
// Snapshots are CBOR encoded and indexed in a sorted set scored by expiry.
type SnapshotStore struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*SnapshotStore)

// WithTTL sets the expiration for snapshots.
func WithTTL(ttl time.Duration) Option {
	return func(s *SnapshotStore) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for snapshots.
func WithPrefix(prefix string) Option {
	return func(s *SnapshotStore) {
		s.prefix = prefix
	}
}

// New creates a Redis snapshot store connected to address.
func New(address, password string, db int, opts ...Option) *SnapshotStore {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a Redis snapshot store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *SnapshotStore {
	store := &SnapshotStore{
		client: client,
		prefix: defaultPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *SnapshotStore) key(name string) string {
	return s.prefix + name
}

func (s *SnapshotStore) indexKey() string {
	return s.prefix + "index"
}

// Save persists the snapshot and refreshes its index entry.
func (s *SnapshotStore) Save(ctx context.Context, snap *domain.Snapshot) error {
	data, err := codec.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = neverExpires
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(snap.Name), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: snap.Name})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save snapshot to redis: %w", err)
	}
	return nil
}

// Load retrieves a snapshot.
func (s *SnapshotStore) Load(ctx context.Context, name string) (*domain.Snapshot, error) {
	data, err := s.client.Get(ctx, s.key(name)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to get snapshot from redis: %w", err)
	}

	var snap domain.Snapshot
	if err := codec.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot %q: %w", name, err)
	}
	return &snap, nil
}

// Delete removes the snapshot and its index entry.
func (s *SnapshotStore) Delete(ctx context.Context, name string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(name))
	pipe.ZRem(ctx, s.indexKey(), name)
	_, err := pipe.Exec(ctx)
	return err
}

// List returns the live snapshot names, pruning expired index entries first.
func (s *SnapshotStore) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired snapshots: %w", err)
	}

	names, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return names, nil
}

// Close closes the redis client.
func (s *SnapshotStore) Close() error {
	return s.client.Close()
}

package model

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"

	"github.com/shaofeinus/POS-tagger/logger"
	"github.com/shaofeinus/POS-tagger/redis"
	"github.com/shaofeinus/POS-tagger/s3client"
	"github.com/shaofeinus/POS-tagger/smoothing"
	"github.com/shaofeinus/POS-tagger/types"
)

var storeLogger = logger.NewLogger("Model store")

type Store interface {
	Save(ctx context.Context, key string, snap *Snapshot) error
	Load(ctx context.Context, key string) (*Snapshot, error)
}

// FileStore keeps each model in its own JSON file. Keys are paths relative
// to the root directory, or plain paths when the root is empty.
type FileStore struct {
	root string
}

func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

func (s *FileStore) path(key string) string {
	if s.root == "" {
		return key
	}
	return filepath.Join(s.root, key)
}

func (s *FileStore) Save(_ context.Context, key string, snap *Snapshot) error {
	b, err := Encode(snap)
	if err != nil {
		return err
	}
	path := s.path(key)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create model directory: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write model: %w", err)
	}
	storeLogger.Info().Str("path", path).Int("bytes", len(b)).Msg("Model saved")
	return nil
}

func (s *FileStore) Load(_ context.Context, key string) (*Snapshot, error) {
	path := s.path(key)
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	return Decode(b)
}

type blobs interface {
	Upload(ctx context.Context, key string, data []byte) error
	Download(ctx context.Context, key string) ([]byte, error)
}

type S3Store struct {
	client blobs
	prefix string
}

func NewS3Store(client blobs, prefix string) *S3Store {
	return &S3Store{client: client, prefix: prefix}
}

func (s *S3Store) Save(ctx context.Context, key string, snap *Snapshot) error {
	b, err := Encode(snap)
	if err != nil {
		return err
	}
	if err := s.client.Upload(ctx, s.prefix+key, b); err != nil {
		return fmt.Errorf("upload model: %w", err)
	}
	storeLogger.Info().Str("key", s.prefix+key).Int("bytes", len(b)).Msg("Model uploaded")
	return nil
}

func (s *S3Store) Load(ctx context.Context, key string) (*Snapshot, error) {
	b, err := s.client.Download(ctx, s.prefix+key)
	if errors.Is(err, s3client.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.prefix+key)
	}
	if err != nil {
		return nil, fmt.Errorf("download model: %w", err)
	}
	return Decode(b)
}

type keyValues interface {
	Get(ctx context.Context, redisKey string) ([]byte, error)
	Update(ctx context.Context, redisKey string, updateFunc func(old []byte) ([]byte, error)) error
}

// RedisStore writes models under the key lock so that concurrent builds
// never interleave.
type RedisStore struct {
	client keyValues
	prefix string
}

func NewRedisStore(client keyValues) *RedisStore {
	return &RedisStore{client: client, prefix: "pos-tagger:model:"}
}

func (s *RedisStore) Save(ctx context.Context, key string, snap *Snapshot) error {
	b, err := Encode(snap)
	if err != nil {
		return err
	}
	err = s.client.Update(ctx, s.prefix+key, func([]byte) ([]byte, error) {
		return b, nil
	})
	if err != nil {
		return fmt.Errorf("store model: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, key string) (*Snapshot, error) {
	b, err := s.client.Get(ctx, s.prefix+key)
	if errors.Is(err, redis.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.prefix+key)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch model: %w", err)
	}
	return Decode(b)
}

const (
	FileBackend  = "file"
	S3Backend    = "s3"
	RedisBackend = "redis"
)

type Config struct {
	Backend string `envconfig:"STORE" default:"file"`
	Dir     string `envconfig:"STORE_DIR" default:""`
	Prefix  string `envconfig:"STORE_PREFIX" default:"models/"`
}

// ReadConfig reads POS_TAGGER_STORE* from the environment.
func ReadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("POS_TAGGER", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Open connects the configured backend. The returned function releases its
// connections.
func Open(cfg Config) (Store, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Backend {
	case "", FileBackend:
		return NewFileStore(cfg.Dir), noop, nil
	case S3Backend:
		client, err := s3client.New()
		if err != nil {
			return nil, nil, fmt.Errorf("connect to s3: %w", err)
		}
		return NewS3Store(client, cfg.Prefix), noop, nil
	case RedisBackend:
		client, err := redis.NewClient(redis.ModelDB)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		return NewRedisStore(&client), client.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown model store %q", cfg.Backend)
}

// LoadStrategy loads the model under key and rebuilds its strategy.
func LoadStrategy(ctx context.Context, store Store, key string, settings types.TuningSettings) (smoothing.Strategy, error) {
	snap, err := store.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	strategy, err := snap.Rebuild(settings)
	if err != nil {
		return nil, fmt.Errorf("rebuild model %s: %w", key, err)
	}
	storeLogger.Info().
		Str("key", key).
		Str("strategy", strategy.Name()).
		Str("params", strategy.Params().String()).
		Msg("Model loaded")
	return strategy, nil
}

// SaveStrategy persists a strategy under key.
func SaveStrategy(ctx context.Context, store Store, key string, s smoothing.Strategy) error {
	snap, err := FromStrategy(s)
	if err != nil {
		return err
	}
	return store.Save(ctx, key, snap)
}

package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/go-redis/redis/v8"
	"github.com/kelseyhightower/envconfig"
)

type DB int

const (
	ModelDB  DB = 0
	TuningDB DB = 1
	JobsDB   DB = 2
)

type ReleaseLock func() error

var ErrNotFound = errors.New("redis key not found")

type Client struct {
	client         redis.UniversalClient
	lockExpiration time.Duration
}

type Config struct {
	LockExpirationSeconds   int     `envconfig:"POS_TAGGER_REDIS_LOCK_EXPIRATION" default:"3"`
	Host                    string  `envconfig:"POS_TAGGER_REDIS_HOST" required:"true"`
	Port                    string  `envconfig:"POS_TAGGER_REDIS_PORT" default:"6379"`
	HASentinelPort          string  `envconfig:"POS_TAGGER_REDIS_HA_SENTINEL_PORT" default:"26379"`
	HASentinelMasterName    string  `envconfig:"POS_TAGGER_REDIS_HA_MASTER_NAME" default:"mymaster"`
	Password                string  `envconfig:"POS_TAGGER_REDIS_AUTH_PASSWORD" default:"0"`
	AuthRequired            bool    `envconfig:"POS_TAGGER_REDIS_AUTH_REQUIRED" default:"false"`
	HAMode                  bool    `envconfig:"POS_TAGGER_REDIS_HA_MODE" default:"false"`
	HASentinelSocketTimeout float32 `envconfig:"POS_TAGGER_REDIS_SOCKET_TIMEOUT" default:"0.5"`
}

func NewClient(db DB) (Client, error) {
	cfg, err := readEnvironment()
	if err != nil {
		return Client{}, err
	}
	return NewClientFromConfig(cfg, db), nil
}

func NewClientFromConfig(cfg *Config, db DB) Client {
	var client redis.UniversalClient
	if cfg.HAMode {
		client = CreateClusterClient(cfg, db)
	} else {
		client = CreateClient(cfg, db)
	}
	return Client{
		client:         client,
		lockExpiration: time.Duration(cfg.LockExpirationSeconds) * time.Second,
	}
}

func CreateClusterClient(cfg *Config, db DB) *redis.ClusterClient {
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.HASentinelPort)
	timeout := time.Duration(float64(cfg.HASentinelSocketTimeout) * float64(time.Second))
	options := redis.FailoverOptions{
		SentinelAddrs: []string{addr},
		ReadTimeout:   timeout,
		WriteTimeout:  timeout,
		MaxRetries:    6,
		DB:            int(db),
		MasterName:    cfg.HASentinelMasterName,
	}
	if cfg.AuthRequired {
		options.Password = cfg.Password
	}
	return redis.NewFailoverClusterClient(&options)
}

func CreateClient(cfg *Config, db DB) *redis.Client {
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	options := redis.Options{
		Addr:       addr,
		MaxRetries: 6,
		DB:         int(db),
	}
	if cfg.AuthRequired {
		options.Password = cfg.Password
	}
	return redis.NewClient(&options)
}

func (client *Client) Get(ctx context.Context, redisKey string) ([]byte, error) {
	b, err := client.client.Get(ctx, redisKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%s: %w", redisKey, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (client *Client) Set(ctx context.Context, redisKey string, value []byte) error {
	return client.client.Set(ctx, redisKey, value, 0).Err()
}

// Update replaces the value of redisKey with the result of updateFunc while
// holding the key lock. old is nil when the key does not exist.
func (client *Client) Update(
	ctx context.Context,
	redisKey string,
	updateFunc func(old []byte) ([]byte, error)) (err error) {
	releaseLock, err := client.Lock(ctx, redisKey)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := releaseLock(); err == nil {
			err = releaseErr
		}
	}()

	old, err := client.Get(ctx, redisKey)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	value, err := updateFunc(old)
	if err != nil {
		return err
	}
	return client.Set(ctx, redisKey, value)
}

func (client *Client) Lock(ctx context.Context, redisKey string) (ReleaseLock, error) {
	lockCl := redislock.New(client.client)
	str := redislock.LimitRetry(redislock.LinearBackoff(time.Second), 20)
	lockKey := fmt.Sprintf("lock:%s", redisKey)
	lock, err := lockCl.Obtain(ctx, lockKey, client.lockExpiration, &redislock.Options{RetryStrategy: str})
	if err != nil {
		return nil, err
	}
	return func() error {
		return lock.Release(ctx)
	}, nil
}

func (client *Client) Close() error {
	return client.client.Close()
}

func readEnvironment() (*Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

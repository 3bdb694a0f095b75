package tuning

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/shaofeinus/POS-tagger/redis"
)

// Checkpoint is the progress of a run after its last finished trial.
type Checkpoint struct {
	Strategy     string             `json:"strategy"`
	Step         int                `json:"step"`
	BestStep     int                `json:"best_step"`
	BestAccuracy float64            `json:"best_accuracy"`
	Params       map[string]float64 `json:"params"`
	Best         map[string]float64 `json:"best"`
}

type Checkpointer interface {
	Load(ctx context.Context, runID string) (Checkpoint, bool, error)
	Save(ctx context.Context, runID string, cp Checkpoint) error
}

type MemoryCheckpointer struct {
	mu          sync.Mutex
	checkpoints map[string]Checkpoint
}

func NewMemoryCheckpointer() *MemoryCheckpointer {
	return &MemoryCheckpointer{checkpoints: map[string]Checkpoint{}}
}

func (m *MemoryCheckpointer) Load(_ context.Context, runID string) (Checkpoint, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp, ok := m.checkpoints[runID]
	return cp, ok, nil
}

func (m *MemoryCheckpointer) Save(_ context.Context, runID string, cp Checkpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkpoints[runID] = cp
	return nil
}

type redisTransactions interface {
	Get(ctx context.Context, redisKey string) ([]byte, error)
	Update(ctx context.Context, redisKey string, updateFunc func(old []byte) ([]byte, error)) error
}

// RedisCheckpointer stores checkpoints as JSON under the run key. Writes
// hold the key lock.
type RedisCheckpointer struct {
	client redisTransactions
	prefix string
}

func NewRedisCheckpointer(client redisTransactions) *RedisCheckpointer {
	return &RedisCheckpointer{client: client, prefix: "pos-tagger:tuning:"}
}

func (r *RedisCheckpointer) Load(ctx context.Context, runID string) (Checkpoint, bool, error) {
	b, err := r.client.Get(ctx, r.prefix+runID)
	if errors.Is(err, redis.ErrNotFound) {
		return Checkpoint{}, false, nil
	}
	if err != nil {
		return Checkpoint{}, false, err
	}
	var cp Checkpoint
	if err := json.Unmarshal(b, &cp); err != nil {
		return Checkpoint{}, false, err
	}
	return cp, true, nil
}

func (r *RedisCheckpointer) Save(ctx context.Context, runID string, cp Checkpoint) error {
	return r.client.Update(ctx, r.prefix+runID, func([]byte) ([]byte, error) {
		return json.Marshal(cp)
	})
}

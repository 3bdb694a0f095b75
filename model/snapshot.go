package model

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shaofeinus/POS-tagger/smoothing"
	"github.com/shaofeinus/POS-tagger/stats"
	"github.com/shaofeinus/POS-tagger/types"
	"github.com/shaofeinus/POS-tagger/utils"
)

const Version = 1

var (
	ErrChecksum = errors.New("model checksum mismatch")
	ErrNotFound = errors.New("model not found")
	ErrVersion  = errors.New("unsupported model version")
)

// Snapshot is a persisted model: the counts and parameters a strategy is
// rebuilt from. Probability tables are recomputed on load.
type Snapshot struct {
	Version  int                `json:"version"`
	Strategy string             `json:"strategy"`
	Params   map[string]float64 `json:"params"`
	Trained  bool               `json:"trained"`
	Counts   stats.Snapshot     `json:"counts"`
	Checksum string             `json:"checksum"`
}

func FromStrategy(s smoothing.Strategy) (*Snapshot, error) {
	counts := s.Counts().Snapshot()
	sum, err := checksum(counts)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Version:  Version,
		Strategy: s.Name(),
		Params:   s.Params().Map(),
		Trained:  s.Trained(),
		Counts:   counts,
		Checksum: sum,
	}, nil
}

// checksum is the murmur3 hash of the counts JSON in hex.
func checksum(counts stats.Snapshot) (string, error) {
	b, err := json.Marshal(counts)
	if err != nil {
		return "", fmt.Errorf("encode counts: %w", err)
	}
	return fmt.Sprintf("%016x", utils.HashBytes(b)), nil
}

func (s *Snapshot) Verify() error {
	if s.Version != Version {
		return fmt.Errorf("%w: %d", ErrVersion, s.Version)
	}
	sum, err := checksum(s.Counts)
	if err != nil {
		return err
	}
	if sum != s.Checksum {
		return ErrChecksum
	}
	return nil
}

// Rebuild restores the persisted strategy over the Penn Treebank tags and
// English suffixes. A snapshot of a trained strategy is trained again.
func (s *Snapshot) Rebuild(settings types.TuningSettings) (smoothing.Strategy, error) {
	if err := s.Verify(); err != nil {
		return nil, err
	}
	counts := stats.New(types.PennTreebank(), types.EnglishSuffixes())
	if err := counts.Restore(s.Counts); err != nil {
		return nil, fmt.Errorf("restore counts: %w", err)
	}

	strategy, err := smoothing.New(s.Strategy, counts, settings)
	if err != nil {
		return nil, err
	}
	params, err := smoothing.ParamsFromMap(strategy.Grid().Names(), s.Params)
	if err != nil {
		return nil, fmt.Errorf("restore %s parameters: %w", s.Strategy, err)
	}
	if err := strategy.SetParams(params); err != nil {
		return nil, err
	}
	if s.Trained {
		if err := strategy.Train(); err != nil {
			return nil, fmt.Errorf("train restored %s: %w", s.Strategy, err)
		}
	}
	return strategy, nil
}

func Encode(s *Snapshot) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Decode parses and verifies a snapshot.
func Decode(b []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if err := s.Verify(); err != nil {
		return nil, err
	}
	return &s, nil
}

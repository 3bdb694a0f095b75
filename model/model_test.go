package model

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/shaofeinus/POS-tagger/corpus"
	"github.com/shaofeinus/POS-tagger/pos"
	"github.com/shaofeinus/POS-tagger/redis"
	"github.com/shaofeinus/POS-tagger/s3client"
	"github.com/shaofeinus/POS-tagger/smoothing"
	"github.com/shaofeinus/POS-tagger/stats"
	"github.com/shaofeinus/POS-tagger/types"
)

var trainingLines = []string{
	"The/DT dog/NN runs/VBZ ./.",
	"A/DT cat/NN sleeps/VBZ ./.",
	"The/DT dogs/NNS run/VBP ./.",
	"Dogs/NNS bark/VBP loudly/RB ./.",
}

func trained(t *testing.T) smoothing.Strategy {
	sentences := make([]types.Sentence, len(trainingLines))
	for i, line := range trainingLines {
		sent, err := corpus.ParseTagged(i, line)
		require.NoError(t, err)
		sentences[i] = sent
	}
	s := smoothing.NewFinal(stats.New(types.PennTreebank(), types.EnglishSuffixes()), types.DefaultTuningSettings())
	require.NoError(t, s.Fit(sentences))
	require.NoError(t, s.Seek(5))
	require.NoError(t, s.Train())
	return s
}

func requireSameModel(t *testing.T, want, got smoothing.Strategy) {
	require.Equal(t, want.Name(), got.Name())
	require.True(t, want.Params().Equal(got.Params()), got.Params().String())
	require.Equal(t, want.Trained(), got.Trained())

	words := []string{"The", "cats", "bark", "loudly", "."}
	wantTags, err := pos.NewDecoder(want, types.PennTreebank()).Tag(words)
	require.NoError(t, err)
	gotTags, err := pos.NewDecoder(got, types.PennTreebank()).Tag(words)
	require.NoError(t, err)
	require.Equal(t, wantTags, gotTags)

	tags := types.PennTreebank()
	for _, name := range []string{"DT", "NN", "NNS", "VBZ", "VBP", "RB"} {
		tag, _ := tags.Lookup(name)
		for _, word := range []string{"the", "dog", "dogs", "barks", "Zorblings"} {
			p, err := want.Emission(tag, word)
			require.NoError(t, err)
			q, err := got.Emission(tag, word)
			require.NoError(t, err)
			require.Equal(t, p, q, "%s %s", name, word)
		}
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := trained(t)
	snap, err := FromStrategy(s)
	require.NoError(t, err)
	require.Equal(t, Version, snap.Version)
	require.Equal(t, smoothing.FinalName, snap.Strategy)
	require.True(t, snap.Trained)
	require.NoError(t, snap.Verify())

	b, err := Encode(snap)
	require.NoError(t, err)
	decoded, err := Decode(b)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(snap, decoded))

	again, err := Encode(decoded)
	require.NoError(t, err)
	require.True(t, jsonpatch.Equal(b, again))

	restored, err := decoded.Rebuild(types.DefaultTuningSettings())
	require.NoError(t, err)
	requireSameModel(t, s, restored)
}

func TestDecodeRejectsTamperedCounts(t *testing.T) {
	snap, err := FromStrategy(trained(t))
	require.NoError(t, err)
	b, err := Encode(snap)
	require.NoError(t, err)

	tampered, err := jsonpatch.MergePatch(b, []byte(`{"counts": {"tag_counts": {"NN": 99}}}`))
	require.NoError(t, err)
	_, err = Decode(tampered)
	require.True(t, errors.Is(err, ErrChecksum))

	// parameters are outside the checksum
	retuned, err := jsonpatch.MergePatch(b, []byte(`{"params": {"d": 0.1}}`))
	require.NoError(t, err)
	_, err = Decode(retuned)
	require.NoError(t, err)

	future, err := jsonpatch.MergePatch(b, []byte(`{"version": 2}`))
	require.NoError(t, err)
	_, err = Decode(future)
	require.True(t, errors.Is(err, ErrVersion))

	_, err = Decode([]byte("not json"))
	require.Error(t, err)
}

func TestSnapshotStrategyErrors(t *testing.T) {
	snap, err := FromStrategy(trained(t))
	require.NoError(t, err)

	unknown := *snap
	unknown.Strategy = "laplace"
	_, err = unknown.Rebuild(types.DefaultTuningSettings())
	require.Error(t, err)

	missing := *snap
	missing.Params = map[string]float64{smoothing.Discount: 0.1}
	_, err = missing.Rebuild(types.DefaultTuningSettings())
	require.Error(t, err)
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())
	s := trained(t)
	snap, err := FromStrategy(s)
	require.NoError(t, err)

	_, err = store.Load(ctx, "model.json")
	require.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, store.Save(ctx, filepath.Join("nested", "model.json"), snap))
	loaded, err := store.Load(ctx, filepath.Join("nested", "model.json"))
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(snap, loaded))
}

type fakeBlobs struct {
	objects   map[string][]byte
	uploads   []string
	downloads []string
}

func (f *fakeBlobs) Upload(_ context.Context, key string, data []byte) error {
	f.uploads = append(f.uploads, key)
	f.objects[key] = data
	return nil
}

func (f *fakeBlobs) Download(_ context.Context, key string) ([]byte, error) {
	f.downloads = append(f.downloads, key)
	b, ok := f.objects[key]
	if !ok {
		return nil, s3client.ErrNotFound
	}
	return b, nil
}

func TestS3Store(t *testing.T) {
	ctx := context.Background()
	client := &fakeBlobs{objects: map[string][]byte{}}
	store := NewS3Store(client, "models/")
	snap, err := FromStrategy(trained(t))
	require.NoError(t, err)

	_, err = store.Load(ctx, "final.json")
	require.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, store.Save(ctx, "final.json", snap))
	loaded, err := store.Load(ctx, "final.json")
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(snap, loaded))

	require.Equal(t, []string{"models/final.json"}, client.uploads)
	require.Equal(t, []string{"models/final.json", "models/final.json"}, client.downloads)
}

type fakeKeyValues struct {
	values  map[string][]byte
	updates []string
}

func (f *fakeKeyValues) Get(_ context.Context, key string) ([]byte, error) {
	b, ok := f.values[key]
	if !ok {
		return nil, redis.ErrNotFound
	}
	return b, nil
}

func (f *fakeKeyValues) Update(_ context.Context, key string, updateFunc func(old []byte) ([]byte, error)) error {
	f.updates = append(f.updates, key)
	b, err := updateFunc(f.values[key])
	if err != nil {
		return err
	}
	f.values[key] = b
	return nil
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	client := &fakeKeyValues{values: map[string][]byte{}}
	store := NewRedisStore(client)
	snap, err := FromStrategy(trained(t))
	require.NoError(t, err)

	_, err = store.Load(ctx, "final")
	require.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, store.Save(ctx, "final", snap))
	require.Equal(t, []string{"pos-tagger:model:final"}, client.updates)

	loaded, err := store.Load(ctx, "final")
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(snap, loaded))
}

func TestOpen(t *testing.T) {
	store, closeStore, err := Open(Config{Backend: FileBackend, Dir: t.TempDir()})
	require.NoError(t, err)
	require.IsType(t, &FileStore{}, store)
	require.NoError(t, closeStore())

	_, _, err = Open(Config{Backend: "ftp"})
	require.Error(t, err)
}

func TestSaveAndLoadStrategy(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())
	s := trained(t)

	require.NoError(t, SaveStrategy(ctx, store, "final.json", s))
	loaded, err := LoadStrategy(ctx, store, "final.json", types.DefaultTuningSettings())
	require.NoError(t, err)
	requireSameModel(t, s, loaded)

	_, err = LoadStrategy(ctx, store, "missing.json", types.DefaultTuningSettings())
	require.True(t, errors.Is(err, ErrNotFound))
}

package retriever

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ops-assistant-be/pkg/embedding"
	"ops-assistant-be/pkg/rag"
	"ops-assistant-be/pkg/rag/snapshot"
)

type scriptedProvider struct {
	vectors map[string][]float32
	fails   int
	calls   int
}

func (p *scriptedProvider) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	p.calls++
	if p.fails > 0 {
		p.fails--
		return nil, errors.New("provider unavailable")
	}
	vec, ok := p.vectors[text]
	if !ok {
		vec = []float32{0, 1}
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: vec},
	}, nil
}

func testSnapshot() *snapshot.Snapshot {
	docA := uuid.New()
	return snapshot.New([]rag.Chunk{
		{DocId: docA, ChunkId: 0, Content: "refund policy", Embedding: []float32{1, 0}},
		{DocId: docA, ChunkId: 1, Content: "unrelated", Embedding: []float32{0, 1}},
	})
}

func TestRetrieveReturnsRankedEvidence(t *testing.T) {
	provider := &scriptedProvider{vectors: map[string][]float32{"refunds": {1, 0}}}
	r := New(provider, nil, Config{TopK: 5, MinScore: 0.5})

	set, err := r.Retrieve(context.Background(), testSnapshot(), UnitQuery{Unit: "steps", Query: "refunds"})
	require.NoError(t, err)
	assert.Equal(t, "steps", set.Unit)
	require.Len(t, set.Items, 1)
	assert.Equal(t, "refund policy", set.Items[0].Chunk.Content)
}

func TestRetrieveRetriesOnceThenSucceeds(t *testing.T) {
	provider := &scriptedProvider{
		vectors: map[string][]float32{"refunds": {1, 0}},
		fails:   1,
	}
	r := New(provider, nil, Config{TopK: 5, RetryBackoff: time.Millisecond})

	set, err := r.Retrieve(context.Background(), testSnapshot(), UnitQuery{Unit: "steps", Query: "refunds"})
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls)
	assert.False(t, set.Empty())
}

func TestRetrieveFailsAfterSecondAttempt(t *testing.T) {
	provider := &scriptedProvider{fails: 2}
	r := New(provider, nil, Config{RetryBackoff: time.Millisecond})

	_, err := r.Retrieve(context.Background(), testSnapshot(), UnitQuery{Unit: "steps", Query: "refunds"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmbedFailed)
	// A provider rejection is not reported as a timeout.
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.Equal(t, 2, provider.calls)
}

type slowProvider struct {
	delay time.Duration
}

func (p *slowProvider) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	time.Sleep(p.delay)
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{1, 0}},
	}, nil
}

func TestDeadlineExpirySurfacesAsTimeout(t *testing.T) {
	provider := &slowProvider{delay: 100 * time.Millisecond}
	r := New(provider, nil, Config{Timeout: 5 * time.Millisecond, RetryBackoff: time.Millisecond})

	_, err := r.Retrieve(context.Background(), testSnapshot(), UnitQuery{Unit: "steps", Query: "refunds"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.NotErrorIs(t, err, ErrEmbedFailed)
}

func TestRetrieveUsesCache(t *testing.T) {
	provider := &scriptedProvider{vectors: map[string][]float32{"refunds": {1, 0}}}
	cache := embedding.NewCache(time.Minute, time.Minute)
	r := New(provider, cache, Config{TopK: 5})

	_, err := r.Retrieve(context.Background(), testSnapshot(), UnitQuery{Unit: "steps", Query: "refunds"})
	require.NoError(t, err)
	_, err = r.Retrieve(context.Background(), testSnapshot(), UnitQuery{Unit: "purpose", Query: "refunds"})
	require.NoError(t, err)

	assert.Equal(t, 1, provider.calls)
}

func TestCollectAllPreservesQueryOrder(t *testing.T) {
	provider := &scriptedProvider{vectors: map[string][]float32{
		"refunds":     {1, 0},
		"other topic": {0, 1},
	}}
	r := New(provider, nil, Config{TopK: 5})

	sets, err := r.CollectAll(context.Background(), testSnapshot(), []UnitQuery{
		{Unit: "steps", Query: "refunds"},
		{Unit: "metrics", Query: "other topic"},
	})
	require.NoError(t, err)
	require.Len(t, sets, 2)
	assert.Equal(t, "steps", sets[0].Unit)
	assert.Equal(t, "metrics", sets[1].Unit)
}

func TestCollectAllPropagatesFailure(t *testing.T) {
	provider := &scriptedProvider{fails: 10}
	r := New(provider, nil, Config{RetryBackoff: time.Millisecond})

	_, err := r.CollectAll(context.Background(), testSnapshot(), []UnitQuery{
		{Unit: "steps", Query: "refunds"},
	})
	assert.ErrorIs(t, err, ErrEmbedFailed)
}

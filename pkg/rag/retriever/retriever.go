// Package retriever turns per-unit queries into ranked evidence sets by
// embedding the query and searching a pinned chunk snapshot.
package retriever

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ops-assistant-be/pkg/embedding"
	"ops-assistant-be/pkg/rag"
	"ops-assistant-be/pkg/rag/snapshot"
)

// ErrTimeout is returned when embedding a query exceeds the configured
// timeout after one retry.
var ErrTimeout = errors.New("retriever: embedding query timed out")

// ErrEmbedFailed is returned when the embedding provider fails for a
// reason other than the deadline, again after one retry.
var ErrEmbedFailed = errors.New("retriever: embedding query failed")

type Config struct {
	TopK         int
	MinScore     float64
	Timeout      time.Duration
	RetryBackoff time.Duration
}

func (c *Config) defaults() {
	if c.TopK <= 0 {
		c.TopK = 8
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 2 * time.Second
	}
}

// UnitQuery is one structural unit's retrieval request.
type UnitQuery struct {
	Unit  string
	Query string
}

type Retriever struct {
	provider embedding.EmbeddingProvider
	cache    *embedding.Cache
	config   Config
}

func New(provider embedding.EmbeddingProvider, cache *embedding.Cache, config Config) *Retriever {
	config.defaults()
	return &Retriever{
		provider: provider,
		cache:    cache,
		config:   config,
	}
}

// Retrieve embeds the unit's query and searches the snapshot. The embedding
// call gets the configured timeout and one retry after a backoff; a second
// failure surfaces as ErrTimeout (deadline expired) or ErrEmbedFailed
// (provider error) so the caller can map it to a typed error rather than a
// partial result.
func (r *Retriever) Retrieve(ctx context.Context, snap *snapshot.Snapshot, query UnitQuery) (rag.EvidenceSet, error) {
	set := rag.EvidenceSet{Unit: query.Unit}

	vec, err := r.embedQuery(ctx, query.Query)
	if err != nil {
		return set, err
	}

	for _, hit := range snap.Search(vec, r.config.TopK, r.config.MinScore) {
		set.Items = append(set.Items, rag.EvidenceItem{Chunk: hit.Chunk, Score: hit.Score})
	}
	return set, nil
}

// CollectAll retrieves evidence for every unit query concurrently. Results
// keep the order of queries. The first error cancels the remaining work.
func (r *Retriever) CollectAll(ctx context.Context, snap *snapshot.Snapshot, queries []UnitQuery) ([]rag.EvidenceSet, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sets := make([]rag.EvidenceSet, len(queries))
	errs := make([]error, len(queries))

	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		go func(i int, q UnitQuery) {
			defer wg.Done()
			set, err := r.Retrieve(ctx, snap, q)
			if err != nil {
				errs[i] = err
				cancel()
				return
			}
			sets[i] = set
		}(i, q)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return sets, nil
}

func (r *Retriever) embedQuery(ctx context.Context, text string) ([]float32, error) {
	if r.cache != nil {
		if vec, found := r.cache.Get(text); found {
			return vec, nil
		}
	}

	vec, err := r.embedOnce(ctx, text)
	if err != nil {
		select {
		case <-ctx.Done():
			return nil, wrapEmbedErr(ctx.Err())
		case <-time.After(r.config.RetryBackoff):
		}
		vec, err = r.embedOnce(ctx, text)
		if err != nil {
			return nil, wrapEmbedErr(err)
		}
	}

	if r.cache != nil {
		r.cache.Set(text, vec)
	}
	return vec, nil
}

// wrapEmbedErr keeps the timeout label for deadline expiry only; provider
// failures like auth or transport errors must not surface as a timeout
// that never happened.
func wrapEmbedErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrEmbedFailed, err)
}

func (r *Retriever) embedOnce(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	type result struct {
		vec []float32
		err error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := r.provider.Generate(text, embedding.TaskRetrievalQuery)
		if err != nil {
			done <- result{err: err}
			return
		}
		done <- result{vec: resp.Embedding.Values}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		return res.vec, res.err
	}
}

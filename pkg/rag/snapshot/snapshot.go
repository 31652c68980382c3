// Package snapshot provides an immutable in-memory projection of document
// chunks pinned at the start of a generation request. Searches against a
// snapshot are unaffected by concurrent ingestion or deletion, and results
// are deterministic for identical inputs.
package snapshot

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"ops-assistant-be/pkg/rag"
)

// Snapshot holds a fixed set of chunks with their embeddings. Construct one
// per request with New; it is never mutated afterwards and is safe for
// concurrent reads.
type Snapshot struct {
	chunks []rag.Chunk
	byKey  map[chunkKey]int
	docIds []uuid.UUID
}

type chunkKey struct {
	docId   uuid.UUID
	chunkId int
}

// Result is one search hit with its cosine similarity score.
type Result struct {
	Chunk rag.Chunk
	Score float64
}

func New(chunks []rag.Chunk) *Snapshot {
	s := &Snapshot{
		chunks: make([]rag.Chunk, len(chunks)),
		byKey:  make(map[chunkKey]int, len(chunks)),
	}
	copy(s.chunks, chunks)

	seen := make(map[uuid.UUID]bool)
	for i, c := range s.chunks {
		s.byKey[chunkKey{c.DocId, c.ChunkId}] = i
		if !seen[c.DocId] {
			seen[c.DocId] = true
			s.docIds = append(s.docIds, c.DocId)
		}
	}
	return s
}

func (s *Snapshot) Len() int {
	return len(s.chunks)
}

// DocIds returns the distinct document ids present, in first-seen order.
func (s *Snapshot) DocIds() []uuid.UUID {
	out := make([]uuid.UUID, len(s.docIds))
	copy(out, s.docIds)
	return out
}

// Lookup returns the chunk with the given locator, or false when absent.
func (s *Snapshot) Lookup(docId uuid.UUID, chunkId int) (rag.Chunk, bool) {
	i, ok := s.byKey[chunkKey{docId, chunkId}]
	if !ok {
		return rag.Chunk{}, false
	}
	return s.chunks[i], true
}

// Search ranks all chunks by cosine similarity against the query embedding
// and returns at most k results scoring at or above minScore. Ties are
// broken by (doc id, chunk id) ascending so equal inputs always yield the
// same ordering.
func (s *Snapshot) Search(query []float32, k int, minScore float64) []Result {
	if k <= 0 || len(query) == 0 {
		return nil
	}

	results := make([]Result, 0, len(s.chunks))
	for _, c := range s.chunks {
		score := cosineSimilarity(query, c.Embedding)
		if score < minScore {
			continue
		}
		results = append(results, Result{Chunk: c, Score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		a, b := results[i].Chunk, results[j].Chunk
		if a.DocId != b.DocId {
			return a.DocId.String() < b.DocId.String()
		}
		return a.ChunkId < b.ChunkId
	})

	if len(results) > k {
		results = results[:k]
	}
	return results
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

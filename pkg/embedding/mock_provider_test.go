package embedding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cosine(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot // both inputs are unit length
}

func TestMockProviderIsDeterministic(t *testing.T) {
	p := NewMockProvider(768)

	first, err := p.Generate("refund approval workflow", TaskRetrievalDocument)
	require.NoError(t, err)
	second, err := p.Generate("refund approval workflow", TaskRetrievalDocument)
	require.NoError(t, err)

	assert.Equal(t, first.Embedding.Values, second.Embedding.Values)
	assert.Len(t, first.Embedding.Values, 768)
}

func TestMockProviderVectorsAreNormalized(t *testing.T) {
	p := NewMockProvider(128)
	resp, err := p.Generate("some text to embed", TaskRetrievalQuery)
	require.NoError(t, err)

	var norm float64
	for _, v := range resp.Embedding.Values {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, norm, 1e-5)
}

func TestMockProviderSharedTokensRaiseSimilarity(t *testing.T) {
	p := NewMockProvider(768)

	refundA, _ := p.Generate("refund approval by finance manager", TaskRetrievalQuery)
	refundB, _ := p.Generate("finance manager handles refund approval steps", TaskRetrievalDocument)
	cooking, _ := p.Generate("banana bread flour sugar oven", TaskRetrievalDocument)

	related := cosine(refundA.Embedding.Values, refundB.Embedding.Values)
	unrelated := cosine(refundA.Embedding.Values, cooking.Embedding.Values)
	assert.Greater(t, related, unrelated)
}

func TestCacheRoundTrip(t *testing.T) {
	c := NewCache(0, 0)
	_, found := c.Get("missing")
	assert.False(t, found)

	c.Set("query", []float32{1, 2, 3})
	got, found := c.Get("query")
	require.True(t, found)
	assert.Equal(t, []float32{1, 2, 3}, got)

	c.Flush()
	_, found = c.Get("query")
	assert.False(t, found)
}

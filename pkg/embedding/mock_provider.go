package embedding

import (
	"hash/fnv"
	"strings"
)

// MockProvider is the MOCK_AI embedding backend: a deterministic,
// offline bag-of-tokens embedder. Texts sharing tokens get similar
// vectors, which is enough for retrieval to behave sensibly in demos
// and tests without any model server.
type MockProvider struct {
	Dim int
}

func NewMockProvider(dim int) EmbeddingProvider {
	if dim <= 0 {
		dim = 768
	}
	return &MockProvider{Dim: dim}
}

func (p *MockProvider) Generate(text string, taskType string) (*EmbeddingResponse, error) {
	vec := make([]float32, p.Dim)

	for _, token := range tokenize(text) {
		h := fnv.New64a()
		h.Write([]byte(token))
		sum := h.Sum64()

		// Each token contributes to a few pseudo-random dimensions.
		for i := 0; i < 4; i++ {
			idx := int((sum >> (i * 16)) % uint64(p.Dim))
			sign := float32(1)
			if (sum>>(i*16+7))&1 == 1 {
				sign = -1
			}
			vec[idx] += sign
		}
	}

	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{
			Values: normalizeVector(vec),
		},
	}, nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
}

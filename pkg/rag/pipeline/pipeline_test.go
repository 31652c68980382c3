package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ops-assistant-be/pkg/embedding"
	"ops-assistant-be/pkg/rag"
	"ops-assistant-be/pkg/rag/generator"
	"ops-assistant-be/pkg/rag/retriever"
	"ops-assistant-be/pkg/rag/snapshot"
	"ops-assistant-be/pkg/rag/verifier"
)

// topicVec marks content as on-topic for the test corpus; offTopicVec is
// orthogonal so irrelevant chunks score zero against every query.
var (
	topicVec    = []float32{1, 0}
	offTopicVec = []float32{0, 1}
)

// constantProvider embeds every query as on-topic.
type constantProvider struct{}

func (constantProvider) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: topicVec},
	}, nil
}

func newPipeline(drafter generator.Drafter) *Pipeline {
	r := retriever.New(constantProvider{}, nil, retriever.Config{TopK: 8, MinScore: 0.35})
	g := generator.New(drafter)
	v := verifier.New(verifier.Config{MaxUnsupportedForMedium: 1})
	return New(r, g, v)
}

func refundChunks(docId uuid.UUID) []rag.Chunk {
	lines := []string{
		"Refund requests are submitted through the billing portal by the support agent.",
		"Approval: Finance Manager reviews every refund request within two business days.",
		"Agents record the order number and customer email before filing the refund.",
	}
	chunks := make([]rag.Chunk, len(lines))
	for i, line := range lines {
		chunks[i] = rag.Chunk{
			DocId:     docId,
			Filename:  "refund_policy.txt",
			ChunkId:   i,
			Content:   line,
			Embedding: topicVec,
		}
	}
	return chunks
}

func TestGenerateSopFromSingleDocument(t *testing.T) {
	docId := uuid.New()
	snap := snapshot.New(refundChunks(docId))
	p := newPipeline(generator.NewMockDrafter())

	res, err := p.Run(context.Background(), snap, Request{Kind: rag.KindSOP})
	require.NoError(t, err)

	doc := res.Document
	require.Equal(t, rag.KindSOP, doc.Kind)
	require.NotNil(t, doc.Sop)
	require.NotEmpty(t, doc.Sop.Steps)

	// Every citation must point into the snapshot and quote it verbatim.
	for _, step := range doc.Sop.Steps {
		for _, ref := range step.SourceRefs {
			assert.Equal(t, docId, ref.DocId)
			assert.False(t, ref.Unverified)
		}
	}
	assert.Equal(t, rag.ConfidenceHigh, res.Verification.OverallConfidence)
	assert.Empty(t, res.Verification.Issues)
}

func TestConflictingDocumentsLowerConfidence(t *testing.T) {
	docA := uuid.New()
	docB := uuid.New()
	chunks := append(refundChunks(docA), rag.Chunk{
		DocId:     docB,
		Filename:  "old_refund_policy.txt",
		ChunkId:   0,
		Content:   "Approval: Team Lead signs off on all refund requests personally.",
		Embedding: topicVec,
	})
	snap := snapshot.New(chunks)
	p := newPipeline(generator.NewMockDrafter())

	res, err := p.Run(context.Background(), snap, Request{Kind: rag.KindSOP})
	require.NoError(t, err)

	require.Len(t, res.Verification.Conflicts, 1)
	conflict := res.Verification.Conflicts[0]
	assert.Equal(t, "Approval", conflict.Topic)
	assert.Len(t, conflict.Values, 2)
	assert.Equal(t, rag.ConfidenceLow, res.Verification.OverallConfidence)
}

func TestSnapshotUnaffectedByConcurrentMutation(t *testing.T) {
	docId := uuid.New()
	chunks := refundChunks(docId)
	snap := snapshot.New(chunks)

	// Simulate the source being deleted and rewritten mid-request.
	for i := range chunks {
		chunks[i].Content = "REPLACED"
		chunks[i].Embedding = offTopicVec
	}

	p := newPipeline(generator.NewMockDrafter())
	res, err := p.Run(context.Background(), snap, Request{Kind: rag.KindSOP})
	require.NoError(t, err)

	require.NotEmpty(t, res.Document.Sop.Steps)
	for _, step := range res.Document.Sop.Steps {
		assert.NotContains(t, step.Action, "REPLACED")
	}
	assert.Equal(t, rag.ConfidenceHigh, res.Verification.OverallConfidence)
}

func TestIrrelevantCorpusYieldsPlaceholders(t *testing.T) {
	docId := uuid.New()
	snap := snapshot.New([]rag.Chunk{{
		DocId:     docId,
		Filename:  "banana_bread.txt",
		ChunkId:   0,
		Content:   "Mix the flour and sugar, then bake for forty minutes.",
		Embedding: offTopicVec,
	}})
	p := newPipeline(generator.NewMockDrafter())

	res, err := p.Run(context.Background(), snap, Request{Kind: rag.KindProcess})
	require.NoError(t, err)

	doc := res.Document.Process
	require.NotNil(t, doc)
	assert.True(t, doc.Overview.NoEvidence)
	assert.Equal(t, rag.NoEvidenceText, doc.Overview.Text)
	require.Len(t, doc.ProcessSteps, 1)
	assert.True(t, doc.ProcessSteps[0].NoEvidence)

	assert.NotEmpty(t, res.Verification.Issues)
	assert.NotEmpty(t, res.Verification.MissingInfo)
	assert.Equal(t, rag.ConfidenceLow, res.Verification.OverallConfidence)
}

// fabricatingDrafter behaves like the mock drafter except the purpose unit,
// where it cites a quote that does not occur in the chunk.
type fabricatingDrafter struct {
	mock *generator.MockDrafter
}

func (d *fabricatingDrafter) Draft(ctx context.Context, unit generator.Unit, evidence rag.EvidenceSet, docCtx generator.DocContext) (string, error) {
	if unit.Name == generator.UnitPurposeScope {
		top := evidence.Items[0].Chunk
		return fmt.Sprintf(`{
			"title": "Refund SOP",
			"purpose": {"text": "made up", "source_refs": [{"doc_id": "%s", "chunk_id": %d, "quote": "this quote was never written"}]},
			"scope": {"text": "also made up", "source_refs": [{"doc_id": "%s", "chunk_id": %d, "quote": "neither was this one"}]}
		}`, top.DocId, top.ChunkId, top.DocId, top.ChunkId), nil
	}
	return d.mock.Draft(ctx, unit, evidence, docCtx)
}

func TestFabricatedQuoteIsFlaggedNotSilentlyKept(t *testing.T) {
	docId := uuid.New()
	snap := snapshot.New(refundChunks(docId))
	p := newPipeline(&fabricatingDrafter{mock: generator.NewMockDrafter()})

	res, err := p.Run(context.Background(), snap, Request{Kind: rag.KindSOP})
	require.NoError(t, err)

	purpose := res.Document.Sop.Purpose
	require.NotEmpty(t, purpose.SourceRefs)
	for _, ref := range purpose.SourceRefs {
		assert.True(t, ref.Unverified)
	}

	var sawUnverifiedIssue bool
	for _, issue := range res.Verification.Issues {
		if issue.Type == rag.IssueUnverifiedCitation {
			sawUnverifiedIssue = true
		}
	}
	assert.True(t, sawUnverifiedIssue)
	assert.Equal(t, rag.ConfidenceLow, res.Verification.OverallConfidence)
}

func TestRaciOnlyGeneratedWhenRequested(t *testing.T) {
	docId := uuid.New()
	snap := snapshot.New(refundChunks(docId))
	p := newPipeline(generator.NewMockDrafter())

	res, err := p.Run(context.Background(), snap, Request{Kind: rag.KindProcess})
	require.NoError(t, err)
	assert.Empty(t, res.Document.Process.Raci)

	res, err = p.Run(context.Background(), snap, Request{Kind: rag.KindProcess, IncludeRaci: true})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Document.Process.Raci)
}

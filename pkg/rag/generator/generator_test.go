package generator

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ops-assistant-be/pkg/rag"
)

// scriptedDrafter replays canned outputs per unit; unknown units fall back
// to the mock drafter.
type scriptedDrafter struct {
	outputs map[string][]string
	calls   map[string]int
	mock    MockDrafter
}

func newScriptedDrafter(outputs map[string][]string) *scriptedDrafter {
	return &scriptedDrafter{outputs: outputs, calls: map[string]int{}}
}

func (d *scriptedDrafter) Draft(ctx context.Context, unit Unit, evidence rag.EvidenceSet, docCtx DocContext) (string, error) {
	n := d.calls[unit.Name]
	d.calls[unit.Name] = n + 1
	outs, ok := d.outputs[unit.Name]
	if !ok {
		return d.mock.Draft(ctx, unit, evidence, docCtx)
	}
	if n >= len(outs) {
		n = len(outs) - 1
	}
	return outs[n], nil
}

func evidenceFor(unit string, chunks ...rag.Chunk) rag.EvidenceSet {
	set := rag.EvidenceSet{Unit: unit}
	for i, c := range chunks {
		set.Items = append(set.Items, rag.EvidenceItem{Chunk: c, Score: 0.9 - float64(i)*0.1})
	}
	return set
}

func sopFixture() (rag.Chunk, []Unit, []rag.EvidenceSet) {
	chunk := rag.Chunk{
		DocId:    uuid.New(),
		Filename: "refund_policy.txt",
		ChunkId:  0,
		Content:  "Refunds must be approved by the Finance Manager. Agents submit requests in the billing portal. Approval: Finance Manager reviews within two days.",
	}
	units := UnitsFor(rag.KindSOP, false)
	sets := make([]rag.EvidenceSet, len(units))
	for i, u := range units {
		sets[i] = evidenceFor(u.Name, chunk)
	}
	return chunk, units, sets
}

func TestGenerateSopWithMockDrafter(t *testing.T) {
	_, units, sets := sopFixture()
	g := New(NewMockDrafter())

	doc, err := g.Generate(context.Background(), DocContext{Kind: rag.KindSOP}, units, sets)
	require.NoError(t, err)
	require.Equal(t, rag.KindSOP, doc.Kind)
	require.NotNil(t, doc.Sop)
	assert.Nil(t, doc.Process)

	assert.NotEmpty(t, doc.Sop.Title)
	assert.NotEmpty(t, doc.Sop.Purpose.Text)
	require.NotEmpty(t, doc.Sop.Steps)
	for i, step := range doc.Sop.Steps {
		assert.Equal(t, i+1, step.Step)
	}
}

func TestGenerateProcessWithRaci(t *testing.T) {
	chunk := rag.Chunk{
		DocId:    uuid.New(),
		Filename: "onboarding.txt",
		ChunkId:  0,
		Content:  "Onboarding starts when HR receives a signed offer. HR Manager: prepares the accounts and equipment. IT Support: provisions laptop access.",
	}
	units := UnitsFor(rag.KindProcess, true)
	require.Equal(t, UnitRaci, units[len(units)-1].Name)

	sets := make([]rag.EvidenceSet, len(units))
	for i, u := range units {
		sets[i] = evidenceFor(u.Name, chunk)
	}

	g := New(NewMockDrafter())
	doc, err := g.Generate(context.Background(), DocContext{Kind: rag.KindProcess}, units, sets)
	require.NoError(t, err)
	require.NotNil(t, doc.Process)
	assert.NotEmpty(t, doc.Process.Raci)
	require.NotEmpty(t, doc.Process.ProcessSteps)
	assert.Equal(t, 1, doc.Process.ProcessSteps[0].Step)
}

func TestGenerateSkipsRaciWhenNotRequested(t *testing.T) {
	units := UnitsFor(rag.KindProcess, false)
	for _, u := range units {
		assert.NotEqual(t, UnitRaci, u.Name)
	}
}

func TestNoEvidenceUnitGetsPlaceholderAndNoDraftCall(t *testing.T) {
	_, units, sets := sopFixture()
	// Empty the exceptions unit's evidence.
	for i, u := range units {
		if u.Name == UnitExceptions {
			sets[i] = rag.EvidenceSet{Unit: u.Name}
		}
	}

	drafter := newScriptedDrafter(nil)
	g := New(drafter)
	doc, err := g.Generate(context.Background(), DocContext{Kind: rag.KindSOP}, units, sets)
	require.NoError(t, err)

	assert.True(t, doc.Sop.Exceptions.NoEvidence)
	assert.Empty(t, doc.Sop.Exceptions.Items)
	assert.Zero(t, drafter.calls[UnitExceptions])
}

func TestMalformedDraftRetriedOnce(t *testing.T) {
	_, units, sets := sopFixture()
	drafter := newScriptedDrafter(map[string][]string{
		UnitPrerequisites: {
			"not json at all",
			`{"items": ["Have billing portal access"], "source_refs": []}`,
		},
	})

	g := New(drafter)
	doc, err := g.Generate(context.Background(), DocContext{Kind: rag.KindSOP}, units, sets)
	require.NoError(t, err)
	assert.Equal(t, 2, drafter.calls[UnitPrerequisites])
	assert.Equal(t, []string{"Have billing portal access"}, doc.Sop.Prerequisites.Items)
}

func TestMalformedDraftTwiceIsShapeError(t *testing.T) {
	_, units, sets := sopFixture()
	drafter := newScriptedDrafter(map[string][]string{
		UnitSteps: {"garbage", "still garbage"},
	})

	g := New(drafter)
	_, err := g.Generate(context.Background(), DocContext{Kind: rag.KindSOP}, units, sets)
	require.Error(t, err)

	var shapeErr *ShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, UnitSteps, shapeErr.Unit)
	assert.Equal(t, 2, drafter.calls[UnitSteps])
}

func TestRefsOutsideEvidenceAreDropped(t *testing.T) {
	chunk, units, sets := sopFixture()
	foreign := uuid.New()
	drafter := newScriptedDrafter(map[string][]string{
		UnitPrerequisites: {fmt.Sprintf(
			`{"items": ["x"], "source_refs": [
				{"doc_id": "%s", "chunk_id": 0, "quote": "in evidence"},
				{"doc_id": "%s", "chunk_id": 0, "quote": "never retrieved"},
				{"doc_id": "%s", "chunk_id": 42, "quote": "wrong chunk"},
				{"doc_id": "not-a-uuid", "chunk_id": 0, "quote": "bad id"}
			]}`, chunk.DocId, foreign, chunk.DocId)},
	})

	g := New(drafter)
	doc, err := g.Generate(context.Background(), DocContext{Kind: rag.KindSOP}, units, sets)
	require.NoError(t, err)
	require.Len(t, doc.Sop.Prerequisites.SourceRefs, 1)
	ref := doc.Sop.Prerequisites.SourceRefs[0]
	assert.Equal(t, chunk.DocId, ref.DocId)
	assert.Equal(t, "refund_policy.txt", ref.Filename)
}

func TestExtractJSONStripsCodeFence(t *testing.T) {
	raw, err := extractJSON("```json\n{\"items\": []}\n```")
	require.NoError(t, err)
	assert.JSONEq(t, `{"items": []}`, string(raw))

	_, err = extractJSON("no object here")
	assert.Error(t, err)
}

func TestDefaultTitles(t *testing.T) {
	asm := newAssembler(rag.KindSOP)
	doc := asm.finalize()
	assert.Equal(t, "Standard Operating Procedure", doc.Sop.Title)

	asm = newAssembler(rag.KindProcess)
	doc = asm.finalize()
	assert.Equal(t, "Process Document", doc.Process.Title)
}

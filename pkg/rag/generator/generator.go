// Package generator drafts SOP and Process documents one structural unit at
// a time from retrieved evidence, then assembles and finalizes the result.
//
// The generator walks a fixed unit plan per output kind. Each unit is drafted
// independently against its own evidence set; a unit with no evidence is
// never sent to the drafter and gets an explicit no-evidence placeholder
// instead. Citations returned by the drafter are filtered against the unit's
// evidence set, so a reference to a chunk the drafter never saw cannot
// survive into the output.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"ops-assistant-be/pkg/rag"
)

// ShapeError reports that a drafted unit could not be parsed into its
// expected shape even after a retry.
type ShapeError struct {
	Unit string
	Err  error
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("generator: unit %s produced malformed output: %v", e.Unit, e.Err)
}

func (e *ShapeError) Unwrap() error {
	return e.Err
}

// DocContext carries cross-unit drafting context.
type DocContext struct {
	Kind      string
	Style     string
	Filenames []string
}

// Drafter produces the raw drafted text for one unit. Implementations
// return a JSON object matching the unit's schema; the generator owns
// parsing and retry.
type Drafter interface {
	Draft(ctx context.Context, unit Unit, evidence rag.EvidenceSet, docCtx DocContext) (string, error)
}

// Unit is one entry of the drafting plan: a named structural unit and the
// retrieval query used to collect its evidence.
type Unit struct {
	Name  string
	Query string
}

// SOP unit names.
const (
	UnitPurposeScope   = "purpose_scope"
	UnitRoles          = "roles"
	UnitPrerequisites  = "prerequisites"
	UnitSteps          = "steps"
	UnitExceptions     = "exceptions"
	UnitAuditChecklist = "audit_checklist"
)

// Process unit names.
const (
	UnitOverview      = "overview"
	UnitInputsOutputs = "inputs_outputs"
	UnitSystems       = "systems"
	UnitProcessSteps  = "process_steps"
	UnitEdgeCases     = "edge_cases"
	UnitMetrics       = "metrics"
	UnitRaci          = "raci"
)

// UnitsFor returns the drafting plan for the given output kind. The order
// is fixed; retrieval and drafting both follow it.
func UnitsFor(kind string, includeRaci bool) []Unit {
	if kind == rag.KindProcess {
		units := []Unit{
			{UnitOverview, "process overview purpose trigger what starts the process"},
			{UnitInputsOutputs, "process inputs required information outputs deliverables results"},
			{UnitSystems, "systems tools applications software used in the process"},
			{UnitProcessSteps, "process steps sequence workflow what happens who does it"},
			{UnitEdgeCases, "edge cases exceptions special situations escalation failures"},
			{UnitMetrics, "metrics targets SLA timelines measurements"},
		}
		if includeRaci {
			units = append(units, Unit{UnitRaci, "responsible accountable consulted informed roles approval ownership"})
		}
		return units
	}
	return []Unit{
		{UnitPurposeScope, "purpose scope objective of the procedure what it covers"},
		{UnitRoles, "roles responsibilities who is responsible owner approver"},
		{UnitPrerequisites, "prerequisites requirements access needed before starting"},
		{UnitSteps, "procedure steps instructions sequence actions owner tools"},
		{UnitExceptions, "exceptions special cases escalation when the procedure does not apply"},
		{UnitAuditChecklist, "audit checklist verification compliance records evidence"},
	}
}

type Generator struct {
	drafter Drafter
}

func New(drafter Drafter) *Generator {
	return &Generator{drafter: drafter}
}

// Generate drafts every unit in the plan and assembles the final document.
// sets must be aligned with UnitsFor(docCtx.Kind, includeRaci): sets[i] is
// the evidence for the i-th unit. Units whose evidence set is empty are
// skipped and filled with a no-evidence placeholder.
func (g *Generator) Generate(ctx context.Context, docCtx DocContext, units []Unit, sets []rag.EvidenceSet) (*rag.GeneratedDocument, error) {
	if len(units) != len(sets) {
		return nil, fmt.Errorf("generator: %d units but %d evidence sets", len(units), len(sets))
	}

	asm := newAssembler(docCtx.Kind)
	for i, unit := range units {
		evidence := sets[i]
		if evidence.Empty() {
			asm.applyNoEvidence(unit.Name)
			continue
		}

		if err := g.draftUnit(ctx, asm, unit, evidence, docCtx); err != nil {
			return nil, err
		}
	}

	return asm.finalize(), nil
}

// draftUnit drafts one unit and applies it to the assembler. A malformed
// draft (no JSON object, or JSON that does not match the unit's shape) is
// redrafted once; a second malformed draft is a ShapeError.
func (g *Generator) draftUnit(ctx context.Context, asm *assembler, unit Unit, evidence rag.EvidenceSet, docCtx DocContext) error {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		text, err := g.drafter.Draft(ctx, unit, evidence, docCtx)
		if err != nil {
			return fmt.Errorf("generator: drafting unit %s: %w", unit.Name, err)
		}
		raw, err := extractJSON(text)
		if err != nil {
			lastErr = err
			continue
		}
		if err := asm.apply(unit.Name, raw, evidence); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return &ShapeError{Unit: unit.Name, Err: lastErr}
}

// extractJSON pulls the outermost JSON object out of the drafted text,
// tolerating surrounding prose and markdown code fences.
func extractJSON(text string) (json.RawMessage, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON object in output")
	}
	candidate := text[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return nil, fmt.Errorf("invalid JSON object in output")
	}
	return json.RawMessage(candidate), nil
}

// wireRef is the citation shape drafters emit.
type wireRef struct {
	DocId   string `json:"doc_id"`
	ChunkId int    `json:"chunk_id"`
	Quote   string `json:"quote"`
}

// resolveRefs filters drafted citations down to chunks actually present in
// the unit's evidence set, resolving the filename from the cited chunk.
func resolveRefs(refs []wireRef, evidence rag.EvidenceSet) []rag.SourceRef {
	var out []rag.SourceRef
	for _, ref := range refs {
		docId, err := uuid.Parse(ref.DocId)
		if err != nil {
			continue
		}
		if !evidence.Contains(docId, ref.ChunkId) {
			continue
		}
		filename := ""
		for _, item := range evidence.Items {
			if item.Chunk.DocId == docId && item.Chunk.ChunkId == ref.ChunkId {
				filename = item.Chunk.Filename
				break
			}
		}
		out = append(out, rag.SourceRef{
			DocId:    docId,
			Filename: filename,
			ChunkId:  ref.ChunkId,
			Quote:    ref.Quote,
		})
	}
	return out
}

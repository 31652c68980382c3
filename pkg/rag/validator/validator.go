// Package validator checks every citation in a generated document against
// the chunks it claims to quote. A quote is valid when its normalized form
// occurs within the normalized text of the cited chunk: whitespace runs
// collapse to one space, case folds, leading and trailing space is trimmed.
//
// Invalid refs are dropped when the node still has at least one valid ref;
// when a node would lose all its citations, the invalid refs are kept but
// flagged Unverified so downstream consumers never see a silently broken
// citation.
package validator

import (
	"strings"

	"github.com/google/uuid"

	"ops-assistant-be/pkg/rag"
)

// Lookup resolves a cited chunk. A snapshot satisfies this.
type Lookup interface {
	Lookup(docId uuid.UUID, chunkId int) (rag.Chunk, bool)
}

// Result summarizes what validation changed.
type Result struct {
	Dropped    int
	Unverified int
}

// NormalizeQuote lowercases, trims, and collapses all whitespace runs to a
// single space. Containment is checked on normalized forms for both quote
// and chunk.
func NormalizeQuote(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

type Validator struct {
	lookup Lookup
}

func New(lookup Lookup) *Validator {
	return &Validator{lookup: lookup}
}

// Validate walks every ref-bearing node of the document in place.
func (v *Validator) Validate(doc *rag.GeneratedDocument) Result {
	var res Result
	if doc.Sop != nil {
		v.validateSop(doc.Sop, &res)
	}
	if doc.Process != nil {
		v.validateProcess(doc.Process, &res)
	}
	return res
}

func (v *Validator) validateSop(sop *rag.SopDocument, res *Result) {
	sop.Purpose.SourceRefs = v.filterRefs(sop.Purpose.SourceRefs, res)
	sop.Scope.SourceRefs = v.filterRefs(sop.Scope.SourceRefs, res)
	for i := range sop.Roles {
		sop.Roles[i].SourceRefs = v.filterRefs(sop.Roles[i].SourceRefs, res)
	}
	sop.Prerequisites.SourceRefs = v.filterRefs(sop.Prerequisites.SourceRefs, res)
	for i := range sop.Steps {
		sop.Steps[i].SourceRefs = v.filterRefs(sop.Steps[i].SourceRefs, res)
	}
	sop.Exceptions.SourceRefs = v.filterRefs(sop.Exceptions.SourceRefs, res)
	sop.AuditChecklist.SourceRefs = v.filterRefs(sop.AuditChecklist.SourceRefs, res)
}

func (v *Validator) validateProcess(p *rag.ProcessDocument, res *Result) {
	p.Overview.SourceRefs = v.filterRefs(p.Overview.SourceRefs, res)
	p.Trigger.SourceRefs = v.filterRefs(p.Trigger.SourceRefs, res)
	p.Inputs.SourceRefs = v.filterRefs(p.Inputs.SourceRefs, res)
	p.Outputs.SourceRefs = v.filterRefs(p.Outputs.SourceRefs, res)
	p.Systems.SourceRefs = v.filterRefs(p.Systems.SourceRefs, res)
	for i := range p.ProcessSteps {
		p.ProcessSteps[i].SourceRefs = v.filterRefs(p.ProcessSteps[i].SourceRefs, res)
	}
	p.EdgeCases.SourceRefs = v.filterRefs(p.EdgeCases.SourceRefs, res)
	p.Metrics.SourceRefs = v.filterRefs(p.Metrics.SourceRefs, res)
	for i := range p.Raci {
		p.Raci[i].SourceRefs = v.filterRefs(p.Raci[i].SourceRefs, res)
	}
}

func (v *Validator) isValid(ref rag.SourceRef) bool {
	chunk, ok := v.lookup.Lookup(ref.DocId, ref.ChunkId)
	if !ok {
		return false
	}
	quote := NormalizeQuote(ref.Quote)
	if quote == "" {
		return false
	}
	return strings.Contains(NormalizeQuote(chunk.Content), quote)
}

// filterRefs applies the drop-or-flag policy to one node's citations.
func (v *Validator) filterRefs(refs []rag.SourceRef, res *Result) []rag.SourceRef {
	if len(refs) == 0 {
		return refs
	}

	valid := make([]rag.SourceRef, 0, len(refs))
	invalidCount := 0
	for _, ref := range refs {
		if v.isValid(ref) {
			ref.Unverified = false
			valid = append(valid, ref)
		} else {
			invalidCount++
		}
	}

	if len(valid) > 0 {
		res.Dropped += invalidCount
		return valid
	}

	// No valid sibling survives: keep the refs but flag them.
	flagged := make([]rag.SourceRef, len(refs))
	for i, ref := range refs {
		ref.Unverified = true
		flagged[i] = ref
	}
	res.Unverified += len(flagged)
	return flagged
}

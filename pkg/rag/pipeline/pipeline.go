// Package pipeline runs the full grounded generation flow against a pinned
// chunk snapshot: evidence collection, per-unit drafting, citation
// validation, and verification. Each request gets its own snapshot, so a
// running generation never observes concurrent ingestion or deletion.
package pipeline

import (
	"context"

	"ops-assistant-be/pkg/rag"
	"ops-assistant-be/pkg/rag/generator"
	"ops-assistant-be/pkg/rag/retriever"
	"ops-assistant-be/pkg/rag/snapshot"
	"ops-assistant-be/pkg/rag/validator"
	"ops-assistant-be/pkg/rag/verifier"
)

// Request describes one generation run.
type Request struct {
	Kind        string
	Style       string
	IncludeRaci bool
	Filenames   []string
}

// Result is the finished document plus its verification report.
type Result struct {
	Document     *rag.GeneratedDocument
	Verification rag.VerificationReport
}

type Pipeline struct {
	retriever *retriever.Retriever
	generator *generator.Generator
	verifier  *verifier.Verifier
}

func New(r *retriever.Retriever, g *generator.Generator, v *verifier.Verifier) *Pipeline {
	return &Pipeline{retriever: r, generator: g, verifier: v}
}

// Run executes the stages in order. Evidence is collected up front for every
// unit in the plan; drafting only starts once collection succeeded, so a
// retrieval failure never yields a half-drafted document.
func (p *Pipeline) Run(ctx context.Context, snap *snapshot.Snapshot, req Request) (*Result, error) {
	units := generator.UnitsFor(req.Kind, req.IncludeRaci)

	queries := make([]retriever.UnitQuery, len(units))
	for i, u := range units {
		queries[i] = retriever.UnitQuery{Unit: u.Name, Query: u.Query}
	}

	sets, err := p.retriever.CollectAll(ctx, snap, queries)
	if err != nil {
		return nil, err
	}

	docCtx := generator.DocContext{
		Kind:      req.Kind,
		Style:     req.Style,
		Filenames: req.Filenames,
	}
	doc, err := p.generator.Generate(ctx, docCtx, units, sets)
	if err != nil {
		return nil, err
	}

	validator.New(snap).Validate(doc)
	report := p.verifier.Verify(doc, sets)

	return &Result{Document: doc, Verification: report}, nil
}

package generator

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"ops-assistant-be/pkg/rag"
)

// MockDrafter drafts units extractively, without any model call: it quotes
// sentences verbatim from the unit's evidence and cites the chunks they
// came from. Deterministic for fixed evidence, which makes it usable both
// for local development and for pipeline tests.
type MockDrafter struct{}

func NewMockDrafter() *MockDrafter {
	return &MockDrafter{}
}

var (
	sentenceSplitRe = regexp.MustCompile(`(?m)[.!?]\s+|\n+`)
	ownerLineRe     = regexp.MustCompile(`(?m)^\s*([A-Z][A-Za-z /&-]{2,40}):\s*(.+)$`)
)

func (d *MockDrafter) Draft(_ context.Context, unit Unit, evidence rag.EvidenceSet, docCtx DocContext) (string, error) {
	switch unit.Name {
	case UnitSteps:
		return d.draftSteps(evidence)
	case UnitProcessSteps:
		return d.draftProcessSteps(evidence)
	case UnitPurposeScope, UnitOverview:
		return d.draftTexts(unit.Name, evidence)
	case UnitRoles:
		return d.draftRoles(evidence)
	case UnitInputsOutputs:
		return d.draftInputsOutputs(evidence)
	case UnitRaci:
		return d.draftRaci(evidence)
	default:
		return d.draftList(evidence)
	}
}

// firstSentences returns up to n verbatim sentences from the chunk, paired
// with a ready-made citation for each.
func firstSentences(item rag.EvidenceItem, n int) []string {
	parts := sentenceSplitRe.Split(item.Chunk.Content, -1)
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if len(p) < 10 {
			continue
		}
		out = append(out, p)
		if len(out) == n {
			break
		}
	}
	return out
}

func refFor(item rag.EvidenceItem, quote string) wireRef {
	return wireRef{
		DocId:   item.Chunk.DocId.String(),
		ChunkId: item.Chunk.ChunkId,
		Quote:   quote,
	}
}

func (d *MockDrafter) draftTexts(unit string, evidence rag.EvidenceSet) (string, error) {
	top := evidence.Items[0]
	sentences := firstSentences(top, 2)
	if len(sentences) == 0 {
		sentences = []string{top.Chunk.Content}
	}
	text := func(i int) wireText {
		if i >= len(sentences) {
			i = len(sentences) - 1
		}
		return wireText{
			Text:       sentences[i],
			SourceRefs: []wireRef{refFor(top, sentences[i])},
		}
	}

	if unit == UnitOverview {
		return marshal(wireOverview{
			Title:    titleFromFilename(top.Chunk.Filename),
			Overview: text(0),
			Trigger:  text(1),
		})
	}
	return marshal(wirePurposeScope{
		Title:   titleFromFilename(top.Chunk.Filename),
		Purpose: text(0),
		Scope:   text(1),
	})
}

func (d *MockDrafter) draftList(evidence rag.EvidenceSet) (string, error) {
	var w wireList
	for _, item := range evidence.Items {
		for _, s := range firstSentences(item, 2) {
			w.Items = append(w.Items, s)
			w.SourceRefs = append(w.SourceRefs, refFor(item, s))
			if len(w.Items) == 4 {
				return marshal(w)
			}
		}
	}
	return marshal(w)
}

func (d *MockDrafter) draftSteps(evidence rag.EvidenceSet) (string, error) {
	var w wireSteps
	for _, item := range evidence.Items {
		for _, s := range firstSentences(item, 3) {
			owner := ownerFromLine(s)
			w.Steps = append(w.Steps, struct {
				Action     string    `json:"action"`
				Owner      string    `json:"owner"`
				Tools      []string  `json:"tools"`
				Output     string    `json:"output"`
				SourceRefs []wireRef `json:"source_refs"`
			}{Action: s, Owner: owner, SourceRefs: []wireRef{refFor(item, s)}})
			if len(w.Steps) == 6 {
				return marshal(w)
			}
		}
	}
	return marshal(w)
}

func (d *MockDrafter) draftProcessSteps(evidence rag.EvidenceSet) (string, error) {
	var w wireProcessSteps
	for _, item := range evidence.Items {
		for _, s := range firstSentences(item, 3) {
			w.ProcessSteps = append(w.ProcessSteps, struct {
				WhatHappens string    `json:"what_happens"`
				Owner       string    `json:"owner"`
				SourceRefs  []wireRef `json:"source_refs"`
			}{WhatHappens: s, Owner: ownerFromLine(s), SourceRefs: []wireRef{refFor(item, s)}})
			if len(w.ProcessSteps) == 6 {
				return marshal(w)
			}
		}
	}
	return marshal(w)
}

func (d *MockDrafter) draftRoles(evidence rag.EvidenceSet) (string, error) {
	var w wireRoles
	seen := map[string]bool{}
	for _, item := range evidence.Items {
		for _, m := range ownerLineRe.FindAllStringSubmatch(item.Chunk.Content, -1) {
			role := strings.TrimSpace(m[1])
			if seen[role] {
				continue
			}
			seen[role] = true
			w.Roles = append(w.Roles, struct {
				Role             string    `json:"role"`
				Responsibilities []string  `json:"responsibilities"`
				SourceRefs       []wireRef `json:"source_refs"`
			}{Role: role, Responsibilities: []string{strings.TrimSpace(m[2])}, SourceRefs: []wireRef{refFor(item, strings.TrimSpace(m[0]))}})
		}
	}
	return marshal(w)
}

func (d *MockDrafter) draftInputsOutputs(evidence rag.EvidenceSet) (string, error) {
	top := evidence.Items[0]
	sentences := firstSentences(top, 2)
	var w wireInputsOutputs
	if len(sentences) > 0 {
		w.Inputs = wireList{Items: []string{sentences[0]}, SourceRefs: []wireRef{refFor(top, sentences[0])}}
		last := sentences[len(sentences)-1]
		w.Outputs = wireList{Items: []string{last}, SourceRefs: []wireRef{refFor(top, last)}}
	}
	return marshal(w)
}

func (d *MockDrafter) draftRaci(evidence rag.EvidenceSet) (string, error) {
	var w wireRaci
	for _, item := range evidence.Items {
		for _, m := range ownerLineRe.FindAllStringSubmatch(item.Chunk.Content, -1) {
			w.Raci = append(w.Raci, struct {
				Activity   string    `json:"activity"`
				R          string    `json:"r"`
				A          string    `json:"a"`
				C          []string  `json:"c"`
				I          []string  `json:"i"`
				SourceRefs []wireRef `json:"source_refs"`
			}{
				Activity:   strings.TrimSpace(m[1]),
				R:          strings.TrimSpace(m[2]),
				A:          strings.TrimSpace(m[2]),
				SourceRefs: []wireRef{refFor(item, strings.TrimSpace(m[0]))},
			})
			if len(w.Raci) == 4 {
				return marshal(w)
			}
		}
	}
	return marshal(w)
}

// ownerFromLine extracts a "Role: does something" owner when the sentence
// carries one, else falls back to an unassigned owner.
func ownerFromLine(s string) string {
	if m := ownerLineRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return "Unassigned"
}

func titleFromFilename(filename string) string {
	base := filename
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	return strings.TrimSpace(base)
}

func marshal(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

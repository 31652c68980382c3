package verifier

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ops-assistant-be/pkg/rag"
)

func citedText(text string) rag.SectionText {
	return rag.SectionText{
		Text:       text,
		SourceRefs: []rag.SourceRef{{DocId: uuid.New(), ChunkId: 0, Quote: text}},
	}
}

func citedList(items ...string) rag.SectionList {
	return rag.SectionList{
		Items:      items,
		SourceRefs: []rag.SourceRef{{DocId: uuid.New(), ChunkId: 0, Quote: items[0]}},
	}
}

func cleanSop() *rag.GeneratedDocument {
	return &rag.GeneratedDocument{
		Kind: rag.KindSOP,
		Sop: &rag.SopDocument{
			Title:   "Refund Handling",
			Purpose: citedText("Handle refunds"),
			Scope:   citedText("All refund requests"),
			Roles: []rag.RoleBlock{{
				Role:             "Finance Manager",
				Responsibilities: []string{"Approves refunds"},
				SourceRefs:       []rag.SourceRef{{DocId: uuid.New(), ChunkId: 0, Quote: "q"}},
			}},
			Prerequisites: citedList("Portal access"),
			Steps: []rag.SopStep{{
				Step:       1,
				Action:     "Submit the request",
				Owner:      "Agent",
				SourceRefs: []rag.SourceRef{{DocId: uuid.New(), ChunkId: 0, Quote: "q"}},
			}},
			Exceptions:     citedList("None"),
			AuditChecklist: citedList("Ticket recorded"),
		},
	}
}

func evidenceWith(contents ...string) []rag.EvidenceSet {
	set := rag.EvidenceSet{Unit: "steps"}
	for i, c := range contents {
		set.Items = append(set.Items, rag.EvidenceItem{
			Chunk: rag.Chunk{DocId: uuid.New(), ChunkId: i, Content: c},
			Score: 0.9,
		})
	}
	return []rag.EvidenceSet{set}
}

func TestCleanDocumentIsHighConfidence(t *testing.T) {
	v := New(Config{MaxUnsupportedForMedium: 1})
	report := v.Verify(cleanSop(), evidenceWith("Refunds are handled by the finance team."))

	assert.Empty(t, report.Issues)
	assert.Empty(t, report.Conflicts)
	assert.Empty(t, report.MissingInfo)
	assert.Equal(t, rag.ConfidenceHigh, report.OverallConfidence)
}

func TestUncitedStepIsUnsupportedClaim(t *testing.T) {
	doc := cleanSop()
	doc.Sop.Steps = append(doc.Sop.Steps, rag.SopStep{Step: 2, Action: "Do something uncited"})

	v := New(Config{MaxUnsupportedForMedium: 1})
	report := v.Verify(doc, evidenceWith("irrelevant"))

	require.Len(t, report.Issues, 1)
	assert.Equal(t, rag.IssueUnsupportedClaim, report.Issues[0].Type)
	assert.Equal(t, "step 2", report.Issues[0].Step)
	assert.Equal(t, rag.ConfidenceMedium, report.OverallConfidence)
}

func TestTooManyUnsupportedClaimsIsLowConfidence(t *testing.T) {
	doc := cleanSop()
	doc.Sop.Steps = append(doc.Sop.Steps,
		rag.SopStep{Step: 2, Action: "Uncited one"},
		rag.SopStep{Step: 3, Action: "Uncited two"},
	)

	v := New(Config{MaxUnsupportedForMedium: 1})
	report := v.Verify(doc, evidenceWith("irrelevant"))

	assert.Len(t, report.Issues, 2)
	assert.Equal(t, rag.ConfidenceLow, report.OverallConfidence)
}

func TestConflictingSourcesDetected(t *testing.T) {
	sets := evidenceWith(
		"Approval: Finance Manager must sign off.",
		"Approval: Team Lead signs off on all requests.",
	)

	v := New(Config{MaxUnsupportedForMedium: 1})
	report := v.Verify(cleanSop(), sets)

	require.Len(t, report.Conflicts, 1)
	assert.Equal(t, "Approval", report.Conflicts[0].Topic)
	assert.Len(t, report.Conflicts[0].Values, 2)
	assert.Equal(t, rag.ConfidenceLow, report.OverallConfidence)
}

func TestAgreeingSourcesAreNotAConflict(t *testing.T) {
	sets := evidenceWith(
		"Approval: Finance Manager",
		"Approval:   finance manager",
	)

	v := New(Config{MaxUnsupportedForMedium: 1})
	report := v.Verify(cleanSop(), sets)
	assert.Empty(t, report.Conflicts)
}

func TestDuplicateChunkCountedOnce(t *testing.T) {
	docId := uuid.New()
	chunk := rag.Chunk{DocId: docId, ChunkId: 0, Content: "Approval: Finance Manager"}
	sets := []rag.EvidenceSet{
		{Unit: "steps", Items: []rag.EvidenceItem{{Chunk: chunk, Score: 0.9}}},
		{Unit: "roles", Items: []rag.EvidenceItem{{Chunk: chunk, Score: 0.8}}},
	}

	claims := extractClaims(sets)
	assert.Len(t, claims, 1)
}

func TestNoEvidenceSectionsFeedMissingInfo(t *testing.T) {
	doc := cleanSop()
	doc.Sop.Exceptions = rag.SectionList{NoEvidence: true}
	doc.Sop.AuditChecklist = rag.SectionList{NoEvidence: true}

	v := New(Config{MaxUnsupportedForMedium: 1})
	report := v.Verify(doc, evidenceWith("irrelevant"))

	assert.Len(t, report.MissingInfo, 2)
	// Two unsupported sections exceed the medium budget of one.
	assert.Equal(t, rag.ConfidenceLow, report.OverallConfidence)
}

func TestUnverifiedCitationRulesOutMedium(t *testing.T) {
	doc := cleanSop()
	doc.Sop.Purpose.SourceRefs[0].Unverified = true

	v := New(Config{MaxUnsupportedForMedium: 5})
	report := v.Verify(doc, evidenceWith("irrelevant"))

	require.Len(t, report.Issues, 1)
	assert.Equal(t, rag.IssueUnverifiedCitation, report.Issues[0].Type)
	assert.Equal(t, rag.ConfidenceLow, report.OverallConfidence)
}

func TestUnverifiedRoleCitationRulesOutHigh(t *testing.T) {
	doc := cleanSop()
	doc.Sop.Roles[0].SourceRefs[0].Unverified = true

	v := New(Config{MaxUnsupportedForMedium: 1})
	report := v.Verify(doc, evidenceWith("irrelevant"))

	require.Len(t, report.Issues, 1)
	assert.Equal(t, rag.IssueUnverifiedCitation, report.Issues[0].Type)
	assert.Equal(t, `role "Finance Manager"`, report.Issues[0].Step)
	assert.Equal(t, rag.ConfidenceLow, report.OverallConfidence)
}

func TestUncitedRoleResponsibilitiesAreUnsupported(t *testing.T) {
	doc := cleanSop()
	doc.Sop.Roles[0].SourceRefs = nil

	v := New(Config{MaxUnsupportedForMedium: 1})
	report := v.Verify(doc, evidenceWith("irrelevant"))

	require.Len(t, report.Issues, 1)
	assert.Equal(t, rag.IssueUnsupportedClaim, report.Issues[0].Type)
	assert.Equal(t, `role "Finance Manager"`, report.Issues[0].Step)
	assert.Equal(t, rag.ConfidenceMedium, report.OverallConfidence)
}

func TestRaciRowCitationsAreChecked(t *testing.T) {
	doc := &rag.GeneratedDocument{
		Kind: rag.KindProcess,
		Process: &rag.ProcessDocument{
			Title:    "Refund Process",
			Overview: citedText("Refunds flow from intake to payout"),
			Trigger:  citedText("A customer files a refund request"),
			Inputs:   citedList("Refund request form"),
			Outputs:  citedList("Processed refund"),
			Systems:  citedList("Billing portal"),
			ProcessSteps: []rag.ProcessStep{{
				Step:        1,
				WhatHappens: "Agent logs the request",
				SourceRefs:  []rag.SourceRef{{DocId: uuid.New(), ChunkId: 0, Quote: "q"}},
			}},
			EdgeCases: citedList("Duplicate requests"),
			Metrics:   citedList("Time to refund"),
			Raci: []rag.RaciRow{
				{
					Activity:   "Approve refund",
					R:          "Agent",
					A:          "Finance Manager",
					SourceRefs: []rag.SourceRef{{DocId: uuid.New(), ChunkId: 0, Quote: "q", Unverified: true}},
				},
				{Activity: "Notify customer", R: "Agent", A: "Team Lead"},
			},
		},
	}

	v := New(Config{MaxUnsupportedForMedium: 5})
	report := v.Verify(doc, evidenceWith("irrelevant"))

	require.Len(t, report.Issues, 2)
	assert.Equal(t, rag.IssueUnverifiedCitation, report.Issues[0].Type)
	assert.Equal(t, `raci "Approve refund"`, report.Issues[0].Step)
	assert.Equal(t, rag.IssueUnsupportedClaim, report.Issues[1].Type)
	assert.Equal(t, `raci "Notify customer"`, report.Issues[1].Step)
	assert.Equal(t, rag.ConfidenceLow, report.OverallConfidence)
}

func TestVerifyIsDeterministic(t *testing.T) {
	doc := cleanSop()
	doc.Sop.Steps = append(doc.Sop.Steps, rag.SopStep{Step: 2, Action: "Uncited"})
	sets := evidenceWith(
		"Approval: Finance Manager",
		"Approval: Team Lead",
	)

	v := New(Config{MaxUnsupportedForMedium: 1})
	first := v.Verify(doc, sets)
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, v.Verify(doc, sets))
	}
}

func TestRolesMissingWhenEmpty(t *testing.T) {
	doc := cleanSop()
	doc.Sop.Roles = nil

	v := New(Config{MaxUnsupportedForMedium: 1})
	report := v.Verify(doc, evidenceWith("irrelevant"))
	assert.Contains(t, report.MissingInfo[0], "roles")
}

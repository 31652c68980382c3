package rag

import "github.com/google/uuid"

// Output kinds for generated documents.
const (
	KindSOP     = "sop"
	KindProcess = "process"
)

// Confidence levels for a VerificationReport.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Issue types emitted by the verification checker.
const (
	IssueUnsupportedClaim   = "unsupported_claim"
	IssueUnverifiedCitation = "unverified_citation"
)

// NoEvidenceText is the explicit marker used when a structural unit has no
// supporting evidence; structure is mandatory, fabrication is not.
const NoEvidenceText = "No supporting evidence found in the provided source documents."

// Chunk is the pipeline view of one stored document chunk.
type Chunk struct {
	DocId     uuid.UUID `json:"doc_id"`
	Filename  string    `json:"filename"`
	ChunkId   int       `json:"chunk_id"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"-"`
}

// EvidenceItem pairs a chunk with its similarity score for one unit's query.
type EvidenceItem struct {
	Chunk Chunk
	Score float64
}

// EvidenceSet is the ranked, transient evidence one structural unit may be
// grounded on. Never persisted.
type EvidenceSet struct {
	Unit  string
	Items []EvidenceItem
}

func (s EvidenceSet) Empty() bool {
	return len(s.Items) == 0
}

// Contains reports whether the given chunk locator is part of this set.
func (s EvidenceSet) Contains(docId uuid.UUID, chunkId int) bool {
	for _, item := range s.Items {
		if item.Chunk.DocId == docId && item.Chunk.ChunkId == chunkId {
			return true
		}
	}
	return false
}

// SourceRef cites a verbatim quote from a specific chunk. After validation,
// Quote occurs (whitespace/case-normalized) within the chunk's text, or the
// ref carries the Unverified flag; an invalid ref never reaches the caller
// unflagged.
type SourceRef struct {
	DocId      uuid.UUID `json:"doc_id"`
	Filename   string    `json:"filename"`
	ChunkId    int       `json:"chunk_id"`
	Quote      string    `json:"quote"`
	Unverified bool      `json:"unverified,omitempty"`
}

// SectionText is prose content with its citations.
type SectionText struct {
	Text       string      `json:"text"`
	SourceRefs []SourceRef `json:"source_refs"`
	NoEvidence bool        `json:"no_evidence,omitempty"`
}

// SectionList is list content with its citations.
type SectionList struct {
	Items      []string    `json:"items"`
	SourceRefs []SourceRef `json:"source_refs"`
	NoEvidence bool        `json:"no_evidence,omitempty"`
}

type RoleBlock struct {
	Role             string      `json:"role"`
	Responsibilities []string    `json:"responsibilities"`
	SourceRefs       []SourceRef `json:"source_refs"`
}

type SopStep struct {
	Step       int         `json:"step"`
	Action     string      `json:"action"`
	Owner      string      `json:"owner"`
	Tools      []string    `json:"tools"`
	Output     string      `json:"output"`
	SourceRefs []SourceRef `json:"source_refs"`
	NoEvidence bool        `json:"no_evidence,omitempty"`
}

type SopDocument struct {
	Title          string      `json:"title"`
	Purpose        SectionText `json:"purpose"`
	Scope          SectionText `json:"scope"`
	Roles          []RoleBlock `json:"roles"`
	Prerequisites  SectionList `json:"prerequisites"`
	Steps          []SopStep   `json:"steps"`
	Exceptions     SectionList `json:"exceptions"`
	AuditChecklist SectionList `json:"audit_checklist"`
}

type ProcessStep struct {
	Step        int         `json:"step"`
	WhatHappens string      `json:"what_happens"`
	Owner       string      `json:"owner"`
	SourceRefs  []SourceRef `json:"source_refs"`
	NoEvidence  bool        `json:"no_evidence,omitempty"`
}

type RaciRow struct {
	Activity   string      `json:"activity"`
	R          string      `json:"r"`
	A          string      `json:"a"`
	C          []string    `json:"c"`
	I          []string    `json:"i"`
	SourceRefs []SourceRef `json:"source_refs"`
}

type ProcessDocument struct {
	Title        string        `json:"title"`
	Overview     SectionText   `json:"overview"`
	Trigger      SectionText   `json:"trigger"`
	Inputs       SectionList   `json:"inputs"`
	Outputs      SectionList   `json:"outputs"`
	Systems      SectionList   `json:"systems"`
	ProcessSteps []ProcessStep `json:"process_steps"`
	EdgeCases    SectionList   `json:"edge_cases"`
	Metrics      SectionList   `json:"metrics"`
	Raci         []RaciRow     `json:"raci,omitempty"`
}

// GeneratedDocument is a tagged union over the two output shapes. Exactly
// one of Sop/Process is set, matching Kind. Immutable once returned: a new
// request produces a new document.
type GeneratedDocument struct {
	Kind    string           `json:"kind"`
	Sop     *SopDocument     `json:"sop,omitempty"`
	Process *ProcessDocument `json:"process,omitempty"`
}

type Issue struct {
	Type           string `json:"type"`
	Step           string `json:"step"`
	Details        string `json:"details"`
	Recommendation string `json:"recommendation,omitempty"`
}

type Conflict struct {
	Topic          string   `json:"topic"`
	Values         []string `json:"values"`
	Recommendation string   `json:"recommendation,omitempty"`
}

// VerificationReport is derived deterministically from a GeneratedDocument
// and its evidence sets; same inputs, same report.
type VerificationReport struct {
	Issues            []Issue    `json:"issues"`
	Conflicts         []Conflict `json:"conflicts"`
	MissingInfo       []string   `json:"missing_info"`
	OverallConfidence string     `json:"overall_confidence"`
}

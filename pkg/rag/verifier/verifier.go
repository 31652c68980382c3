// Package verifier derives a VerificationReport from a generated document
// and the evidence it was drafted from. The report is a pure function of
// its inputs: the same document and evidence always yield the same issues,
// conflicts, and confidence.
package verifier

import (
	"fmt"

	"ops-assistant-be/pkg/rag"
)

type Config struct {
	// MaxUnsupportedForMedium is the largest number of unsupported-claim
	// issues a report may carry and still rate medium confidence.
	MaxUnsupportedForMedium int
}

type Verifier struct {
	config Config
}

func New(config Config) *Verifier {
	if config.MaxUnsupportedForMedium < 0 {
		config.MaxUnsupportedForMedium = 0
	}
	return &Verifier{config: config}
}

// Verify runs the three scans and maps the outcome to a confidence level:
// high when there are no issues and no conflicts; medium when there are no
// conflicts, no unverified citations, and at most MaxUnsupportedForMedium
// unsupported claims; low otherwise.
func (v *Verifier) Verify(doc *rag.GeneratedDocument, sets []rag.EvidenceSet) rag.VerificationReport {
	report := rag.VerificationReport{
		Issues:      []rag.Issue{},
		Conflicts:   []rag.Conflict{},
		MissingInfo: []string{},
	}

	v.scanUnsupported(doc, &report)
	report.Conflicts = findConflicts(extractClaims(sets))
	if report.Conflicts == nil {
		report.Conflicts = []rag.Conflict{}
	}
	v.scanCompleteness(doc, &report)

	report.OverallConfidence = v.confidence(report)
	return report
}

func (v *Verifier) confidence(report rag.VerificationReport) string {
	if len(report.Issues) == 0 && len(report.Conflicts) == 0 {
		return rag.ConfidenceHigh
	}
	if len(report.Conflicts) > 0 {
		return rag.ConfidenceLow
	}

	unsupported := 0
	for _, issue := range report.Issues {
		if issue.Type != rag.IssueUnsupportedClaim {
			// Any other issue type (unverified citations) rules out medium.
			return rag.ConfidenceLow
		}
		unsupported++
	}
	if unsupported <= v.config.MaxUnsupportedForMedium {
		return rag.ConfidenceMedium
	}
	return rag.ConfidenceLow
}

// scanUnsupported flags content nodes that carry substantive text without a
// single verified citation backing it.
func (v *Verifier) scanUnsupported(doc *rag.GeneratedDocument, report *rag.VerificationReport) {
	addUnsupported := func(step, details string) {
		report.Issues = append(report.Issues, rag.Issue{
			Type:           rag.IssueUnsupportedClaim,
			Step:           step,
			Details:        details,
			Recommendation: "Provide source material covering this section or remove the claim.",
		})
	}
	addUnverified := func(step string, count int) {
		report.Issues = append(report.Issues, rag.Issue{
			Type:           rag.IssueUnverifiedCitation,
			Step:           step,
			Details:        fmt.Sprintf("%d citation(s) could not be verified against the source chunks", count),
			Recommendation: "Regenerate the section or check the cited source documents.",
		})
	}

	checkText := func(name string, s rag.SectionText) {
		if s.NoEvidence {
			addUnsupported(name, "no supporting evidence was found for this section")
			return
		}
		if n := countUnverified(s.SourceRefs); n > 0 {
			addUnverified(name, n)
		} else if s.Text != "" && len(s.SourceRefs) == 0 {
			addUnsupported(name, "section text carries no citations")
		}
	}
	checkList := func(name string, s rag.SectionList) {
		if s.NoEvidence {
			addUnsupported(name, "no supporting evidence was found for this section")
			return
		}
		if n := countUnverified(s.SourceRefs); n > 0 {
			addUnverified(name, n)
		} else if len(s.Items) > 0 && len(s.SourceRefs) == 0 {
			addUnsupported(name, "list items carry no citations")
		}
	}

	if doc.Sop != nil {
		checkText("purpose", doc.Sop.Purpose)
		checkText("scope", doc.Sop.Scope)
		for _, role := range doc.Sop.Roles {
			name := fmt.Sprintf("role %q", role.Role)
			if n := countUnverified(role.SourceRefs); n > 0 {
				addUnverified(name, n)
			} else if len(role.Responsibilities) > 0 && len(role.SourceRefs) == 0 {
				addUnsupported(name, "role responsibilities carry no citations")
			}
		}
		checkList("prerequisites", doc.Sop.Prerequisites)
		for _, step := range doc.Sop.Steps {
			name := fmt.Sprintf("step %d", step.Step)
			if step.NoEvidence {
				addUnsupported(name, "no supporting evidence was found for the procedure steps")
				continue
			}
			if n := countUnverified(step.SourceRefs); n > 0 {
				addUnverified(name, n)
			} else if len(step.SourceRefs) == 0 {
				addUnsupported(name, "step carries no citations")
			}
		}
		checkList("exceptions", doc.Sop.Exceptions)
		checkList("audit_checklist", doc.Sop.AuditChecklist)
	}

	if doc.Process != nil {
		checkText("overview", doc.Process.Overview)
		checkText("trigger", doc.Process.Trigger)
		checkList("inputs", doc.Process.Inputs)
		checkList("outputs", doc.Process.Outputs)
		checkList("systems", doc.Process.Systems)
		for _, step := range doc.Process.ProcessSteps {
			name := fmt.Sprintf("step %d", step.Step)
			if step.NoEvidence {
				addUnsupported(name, "no supporting evidence was found for the process steps")
				continue
			}
			if n := countUnverified(step.SourceRefs); n > 0 {
				addUnverified(name, n)
			} else if len(step.SourceRefs) == 0 {
				addUnsupported(name, "step carries no citations")
			}
		}
		checkList("edge_cases", doc.Process.EdgeCases)
		checkList("metrics", doc.Process.Metrics)
		for _, row := range doc.Process.Raci {
			name := fmt.Sprintf("raci %q", row.Activity)
			if n := countUnverified(row.SourceRefs); n > 0 {
				addUnverified(name, n)
			} else if len(row.SourceRefs) == 0 {
				addUnsupported(name, "raci row carries no citations")
			}
		}
	}
}

// scanCompleteness records sections that stayed empty for lack of evidence
// so readers know what the sources never covered.
func (v *Verifier) scanCompleteness(doc *rag.GeneratedDocument, report *rag.VerificationReport) {
	add := func(section string) {
		report.MissingInfo = append(report.MissingInfo,
			fmt.Sprintf("The source documents contain no information for the %q section.", section))
	}

	if doc.Sop != nil {
		if doc.Sop.Purpose.NoEvidence {
			add("purpose")
		}
		if doc.Sop.Scope.NoEvidence {
			add("scope")
		}
		if len(doc.Sop.Roles) == 0 {
			add("roles")
		}
		if doc.Sop.Prerequisites.NoEvidence {
			add("prerequisites")
		}
		for _, step := range doc.Sop.Steps {
			if step.NoEvidence {
				add("steps")
				break
			}
		}
		if doc.Sop.Exceptions.NoEvidence {
			add("exceptions")
		}
		if doc.Sop.AuditChecklist.NoEvidence {
			add("audit_checklist")
		}
	}

	if doc.Process != nil {
		if doc.Process.Overview.NoEvidence {
			add("overview")
		}
		if doc.Process.Trigger.NoEvidence {
			add("trigger")
		}
		if doc.Process.Inputs.NoEvidence {
			add("inputs")
		}
		if doc.Process.Outputs.NoEvidence {
			add("outputs")
		}
		if doc.Process.Systems.NoEvidence {
			add("systems")
		}
		for _, step := range doc.Process.ProcessSteps {
			if step.NoEvidence {
				add("process_steps")
				break
			}
		}
		if doc.Process.EdgeCases.NoEvidence {
			add("edge_cases")
		}
		if doc.Process.Metrics.NoEvidence {
			add("metrics")
		}
	}
}

func countUnverified(refs []rag.SourceRef) int {
	n := 0
	for _, ref := range refs {
		if ref.Unverified {
			n++
		}
	}
	return n
}

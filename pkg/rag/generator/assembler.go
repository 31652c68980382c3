package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"ops-assistant-be/pkg/rag"
)

// Per-unit wire shapes. These are what drafters emit; the assembler maps
// them onto the final document, dropping citations that fall outside the
// unit's evidence set.

type wireText struct {
	Text       string    `json:"text"`
	SourceRefs []wireRef `json:"source_refs"`
}

type wireList struct {
	Items      []string  `json:"items"`
	SourceRefs []wireRef `json:"source_refs"`
}

type wirePurposeScope struct {
	Title   string   `json:"title"`
	Purpose wireText `json:"purpose"`
	Scope   wireText `json:"scope"`
}

type wireRoles struct {
	Roles []struct {
		Role             string    `json:"role"`
		Responsibilities []string  `json:"responsibilities"`
		SourceRefs       []wireRef `json:"source_refs"`
	} `json:"roles"`
}

type wireSteps struct {
	Steps []struct {
		Action     string    `json:"action"`
		Owner      string    `json:"owner"`
		Tools      []string  `json:"tools"`
		Output     string    `json:"output"`
		SourceRefs []wireRef `json:"source_refs"`
	} `json:"steps"`
}

type wireOverview struct {
	Title    string   `json:"title"`
	Overview wireText `json:"overview"`
	Trigger  wireText `json:"trigger"`
}

type wireInputsOutputs struct {
	Inputs  wireList `json:"inputs"`
	Outputs wireList `json:"outputs"`
}

type wireProcessSteps struct {
	ProcessSteps []struct {
		WhatHappens string    `json:"what_happens"`
		Owner       string    `json:"owner"`
		SourceRefs  []wireRef `json:"source_refs"`
	} `json:"process_steps"`
}

type wireRaci struct {
	Raci []struct {
		Activity   string    `json:"activity"`
		R          string    `json:"r"`
		A          string    `json:"a"`
		C          []string  `json:"c"`
		I          []string  `json:"i"`
		SourceRefs []wireRef `json:"source_refs"`
	} `json:"raci"`
}

type assembler struct {
	kind    string
	sop     rag.SopDocument
	process rag.ProcessDocument
}

func newAssembler(kind string) *assembler {
	return &assembler{kind: kind}
}

func noEvidenceText() rag.SectionText {
	return rag.SectionText{Text: rag.NoEvidenceText, NoEvidence: true}
}

func noEvidenceList() rag.SectionList {
	return rag.SectionList{NoEvidence: true}
}

// applyNoEvidence fills the unit's slot with an explicit placeholder so the
// document keeps its full structure even when nothing relevant was found.
func (a *assembler) applyNoEvidence(unit string) {
	switch unit {
	case UnitPurposeScope:
		a.sop.Purpose = noEvidenceText()
		a.sop.Scope = noEvidenceText()
	case UnitRoles:
		a.sop.Roles = []rag.RoleBlock{}
	case UnitPrerequisites:
		a.sop.Prerequisites = noEvidenceList()
	case UnitSteps:
		a.sop.Steps = []rag.SopStep{{Step: 1, Action: rag.NoEvidenceText, NoEvidence: true}}
	case UnitExceptions:
		a.sop.Exceptions = noEvidenceList()
	case UnitAuditChecklist:
		a.sop.AuditChecklist = noEvidenceList()
	case UnitOverview:
		a.process.Overview = noEvidenceText()
		a.process.Trigger = noEvidenceText()
	case UnitInputsOutputs:
		a.process.Inputs = noEvidenceList()
		a.process.Outputs = noEvidenceList()
	case UnitSystems:
		a.process.Systems = noEvidenceList()
	case UnitProcessSteps:
		a.process.ProcessSteps = []rag.ProcessStep{{Step: 1, WhatHappens: rag.NoEvidenceText, NoEvidence: true}}
	case UnitEdgeCases:
		a.process.EdgeCases = noEvidenceList()
	case UnitMetrics:
		a.process.Metrics = noEvidenceList()
	case UnitRaci:
		a.process.Raci = []rag.RaciRow{}
	}
}

// apply parses the drafted JSON for one unit and maps it into the document.
func (a *assembler) apply(unit string, raw json.RawMessage, evidence rag.EvidenceSet) error {
	switch unit {
	case UnitPurposeScope:
		var w wirePurposeScope
		if err := json.Unmarshal(raw, &w); err != nil {
			return err
		}
		a.sop.Title = strings.TrimSpace(w.Title)
		a.sop.Purpose = mapText(w.Purpose, evidence)
		a.sop.Scope = mapText(w.Scope, evidence)

	case UnitRoles:
		var w wireRoles
		if err := json.Unmarshal(raw, &w); err != nil {
			return err
		}
		a.sop.Roles = make([]rag.RoleBlock, 0, len(w.Roles))
		for _, r := range w.Roles {
			a.sop.Roles = append(a.sop.Roles, rag.RoleBlock{
				Role:             r.Role,
				Responsibilities: r.Responsibilities,
				SourceRefs:       resolveRefs(r.SourceRefs, evidence),
			})
		}

	case UnitPrerequisites:
		return a.applyList(raw, evidence, &a.sop.Prerequisites)
	case UnitExceptions:
		return a.applyList(raw, evidence, &a.sop.Exceptions)
	case UnitAuditChecklist:
		return a.applyList(raw, evidence, &a.sop.AuditChecklist)

	case UnitSteps:
		var w wireSteps
		if err := json.Unmarshal(raw, &w); err != nil {
			return err
		}
		if len(w.Steps) == 0 {
			return fmt.Errorf("steps unit drafted no steps")
		}
		a.sop.Steps = make([]rag.SopStep, 0, len(w.Steps))
		for _, s := range w.Steps {
			a.sop.Steps = append(a.sop.Steps, rag.SopStep{
				Action:     s.Action,
				Owner:      s.Owner,
				Tools:      s.Tools,
				Output:     s.Output,
				SourceRefs: resolveRefs(s.SourceRefs, evidence),
			})
		}

	case UnitOverview:
		var w wireOverview
		if err := json.Unmarshal(raw, &w); err != nil {
			return err
		}
		a.process.Title = strings.TrimSpace(w.Title)
		a.process.Overview = mapText(w.Overview, evidence)
		a.process.Trigger = mapText(w.Trigger, evidence)

	case UnitInputsOutputs:
		var w wireInputsOutputs
		if err := json.Unmarshal(raw, &w); err != nil {
			return err
		}
		a.process.Inputs = mapList(w.Inputs, evidence)
		a.process.Outputs = mapList(w.Outputs, evidence)

	case UnitSystems:
		return a.applyList(raw, evidence, &a.process.Systems)
	case UnitEdgeCases:
		return a.applyList(raw, evidence, &a.process.EdgeCases)
	case UnitMetrics:
		return a.applyList(raw, evidence, &a.process.Metrics)

	case UnitProcessSteps:
		var w wireProcessSteps
		if err := json.Unmarshal(raw, &w); err != nil {
			return err
		}
		if len(w.ProcessSteps) == 0 {
			return fmt.Errorf("process_steps unit drafted no steps")
		}
		a.process.ProcessSteps = make([]rag.ProcessStep, 0, len(w.ProcessSteps))
		for _, s := range w.ProcessSteps {
			a.process.ProcessSteps = append(a.process.ProcessSteps, rag.ProcessStep{
				WhatHappens: s.WhatHappens,
				Owner:       s.Owner,
				SourceRefs:  resolveRefs(s.SourceRefs, evidence),
			})
		}

	case UnitRaci:
		var w wireRaci
		if err := json.Unmarshal(raw, &w); err != nil {
			return err
		}
		a.process.Raci = make([]rag.RaciRow, 0, len(w.Raci))
		for _, r := range w.Raci {
			a.process.Raci = append(a.process.Raci, rag.RaciRow{
				Activity:   r.Activity,
				R:          r.R,
				A:          r.A,
				C:          r.C,
				I:          r.I,
				SourceRefs: resolveRefs(r.SourceRefs, evidence),
			})
		}

	default:
		return fmt.Errorf("unknown unit %q", unit)
	}
	return nil
}

func (a *assembler) applyList(raw json.RawMessage, evidence rag.EvidenceSet, dst *rag.SectionList) error {
	var w wireList
	if err := json.Unmarshal(raw, &w); err != nil {
		return err
	}
	*dst = mapList(w, evidence)
	return nil
}

func mapText(w wireText, evidence rag.EvidenceSet) rag.SectionText {
	return rag.SectionText{
		Text:       strings.TrimSpace(w.Text),
		SourceRefs: resolveRefs(w.SourceRefs, evidence),
	}
}

func mapList(w wireList, evidence rag.EvidenceSet) rag.SectionList {
	return rag.SectionList{
		Items:      w.Items,
		SourceRefs: resolveRefs(w.SourceRefs, evidence),
	}
}

// finalize renumbers steps, fills default titles, and wraps the assembled
// document in its tagged union.
func (a *assembler) finalize() *rag.GeneratedDocument {
	if a.kind == rag.KindProcess {
		if a.process.Title == "" {
			a.process.Title = "Process Document"
		}
		for i := range a.process.ProcessSteps {
			a.process.ProcessSteps[i].Step = i + 1
		}
		doc := a.process
		return &rag.GeneratedDocument{Kind: rag.KindProcess, Process: &doc}
	}

	if a.sop.Title == "" {
		a.sop.Title = "Standard Operating Procedure"
	}
	for i := range a.sop.Steps {
		a.sop.Steps[i].Step = i + 1
	}
	doc := a.sop
	return &rag.GeneratedDocument{Kind: rag.KindSOP, Sop: &doc}
}

package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ops-assistant-be/pkg/llm"
	"ops-assistant-be/pkg/rag"
)

// unitSchemas holds the JSON schema fragment each unit must produce. The
// ref placeholder is shared so every schema cites the same way.
const refSchema = `{"doc_id": "<doc_id>", "chunk_id": <chunk_id>, "quote": "<verbatim quote from that chunk>"}`

var unitSchemas = map[string]string{
	UnitPurposeScope:   `{"title": "...", "purpose": {"text": "...", "source_refs": [REF]}, "scope": {"text": "...", "source_refs": [REF]}}`,
	UnitRoles:          `{"roles": [{"role": "...", "responsibilities": ["..."], "source_refs": [REF]}]}`,
	UnitPrerequisites:  `{"items": ["..."], "source_refs": [REF]}`,
	UnitSteps:          `{"steps": [{"action": "...", "owner": "...", "tools": ["..."], "output": "...", "source_refs": [REF]}]}`,
	UnitExceptions:     `{"items": ["..."], "source_refs": [REF]}`,
	UnitAuditChecklist: `{"items": ["..."], "source_refs": [REF]}`,
	UnitOverview:       `{"title": "...", "overview": {"text": "...", "source_refs": [REF]}, "trigger": {"text": "...", "source_refs": [REF]}}`,
	UnitInputsOutputs:  `{"inputs": {"items": ["..."], "source_refs": [REF]}, "outputs": {"items": ["..."], "source_refs": [REF]}}`,
	UnitSystems:        `{"items": ["..."], "source_refs": [REF]}`,
	UnitProcessSteps:   `{"process_steps": [{"what_happens": "...", "owner": "...", "source_refs": [REF]}]}`,
	UnitEdgeCases:      `{"items": ["..."], "source_refs": [REF]}`,
	UnitMetrics:        `{"items": ["..."], "source_refs": [REF]}`,
	UnitRaci:           `{"raci": [{"activity": "...", "r": "...", "a": "...", "c": ["..."], "i": ["..."], "source_refs": [REF]}]}`,
}

const systemPrompt = `You are an operations documentation writer. You write grounded content: every statement must come from the provided source excerpts, and every source_refs quote must be copied VERBATIM from the cited excerpt. Never invent facts that are not in the excerpts. Respond with a single JSON object and nothing else.`

// LLMDrafter drafts units by prompting an LLM with the unit's evidence and
// schema. Each call gets its own timeout.
type LLMDrafter struct {
	provider llm.LLMProvider
	timeout  time.Duration
}

func NewLLMDrafter(provider llm.LLMProvider, timeout time.Duration) *LLMDrafter {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &LLMDrafter{provider: provider, timeout: timeout}
}

func (d *LLMDrafter) Draft(ctx context.Context, unit Unit, evidence rag.EvidenceSet, docCtx DocContext) (string, error) {
	schema, ok := unitSchemas[unit.Name]
	if !ok {
		return "", fmt.Errorf("no schema for unit %q", unit.Name)
	}
	schema = strings.ReplaceAll(schema, "REF", refSchema)

	var sb strings.Builder
	sb.WriteString("Source excerpts:\n\n")
	for _, item := range evidence.Items {
		fmt.Fprintf(&sb, "[doc_id=%s chunk_id=%d file=%s]\n%s\n\n",
			item.Chunk.DocId, item.Chunk.ChunkId, item.Chunk.Filename, item.Chunk.Content)
	}
	fmt.Fprintf(&sb, "Write the %q section of a %s document based only on the excerpts above.\n", unit.Name, docCtx.Kind)
	if docCtx.Style != "" {
		fmt.Fprintf(&sb, "Writing style: %s.\n", docCtx.Style)
	}
	fmt.Fprintf(&sb, "Return JSON exactly matching this schema:\n%s\n", schema)

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	return d.provider.Chat(ctx, []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: sb.String()},
	}, llm.WithTemperature(0.1))
}

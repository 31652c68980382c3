package verifier

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"ops-assistant-be/pkg/rag"
)

// claim is one "Topic: value" statement found in a source chunk.
type claim struct {
	Topic    string // normalized key
	RawTopic string
	Value    string
	DocId    uuid.UUID
	ChunkId  int
}

// topicLineRe matches declarative "Topic: value" lines, the form operational
// docs use for approvals, owners, SLAs and the like.
var topicLineRe = regexp.MustCompile(`(?m)^\s*([A-Z][A-Za-z0-9 /&-]{2,40}?)\s*:\s*([^\n]+)$`)

func normalizeKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// extractClaims pulls topic claims from every distinct chunk across the
// evidence sets. A chunk appearing in several sets contributes once.
func extractClaims(sets []rag.EvidenceSet) []claim {
	type chunkKey struct {
		docId   uuid.UUID
		chunkId int
	}
	seen := map[chunkKey]bool{}

	var claims []claim
	for _, set := range sets {
		for _, item := range set.Items {
			key := chunkKey{item.Chunk.DocId, item.Chunk.ChunkId}
			if seen[key] {
				continue
			}
			seen[key] = true

			for _, m := range topicLineRe.FindAllStringSubmatch(item.Chunk.Content, -1) {
				value := strings.TrimSpace(m[2])
				if value == "" {
					continue
				}
				claims = append(claims, claim{
					Topic:    normalizeKey(m[1]),
					RawTopic: strings.TrimSpace(m[1]),
					Value:    value,
					DocId:    item.Chunk.DocId,
					ChunkId:  item.Chunk.ChunkId,
				})
			}
		}
	}
	return claims
}

// findConflicts groups claims by topic key and reports topics where the
// sources disagree. Values are compared normalized but reported verbatim,
// in first-seen order.
func findConflicts(claims []claim) []rag.Conflict {
	type topicGroup struct {
		rawTopic string
		values   []string
		seen     map[string]bool
	}

	groups := map[string]*topicGroup{}
	var order []string
	for _, c := range claims {
		g, ok := groups[c.Topic]
		if !ok {
			g = &topicGroup{rawTopic: c.RawTopic, seen: map[string]bool{}}
			groups[c.Topic] = g
			order = append(order, c.Topic)
		}
		norm := normalizeKey(c.Value)
		if g.seen[norm] {
			continue
		}
		g.seen[norm] = true
		g.values = append(g.values, c.Value)
	}

	var conflicts []rag.Conflict
	for _, topic := range order {
		g := groups[topic]
		if len(g.values) < 2 {
			continue
		}
		conflicts = append(conflicts, rag.Conflict{
			Topic:          g.rawTopic,
			Values:         g.values,
			Recommendation: "Confirm with the document owners which statement is current and update the sources.",
		})
	}
	return conflicts
}

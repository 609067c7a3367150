package memory

import (
	"encoding/json"
	"strings"

	"github.com/intentlayer/statecore/core"
)

// Search scoring weights. Payload matches outrank context matches, full
// phrase matches outrank token overlap, and the accumulated score is scaled
// by the entry's stored relevance so important interactions surface first.
const (
	phraseInDataWeight    = 1.0
	phraseInContextWeight = 0.5
	tokenInDataWeight     = 0.3
	tokenInContextWeight  = 0.1
)

// searchScore computes a text-match score for one entry against a lower-cased
// query. Zero means no match; callers drop those entries.
func searchScore(e *core.MemoryEntry, query string) float64 {
	dataText := strings.ToLower(serialize(e.Data))
	contextText := strings.ToLower(serialize(e.Context))

	score := 0.0
	if strings.Contains(dataText, query) {
		score += phraseInDataWeight
	}
	if strings.Contains(contextText, query) {
		score += phraseInContextWeight
	}
	for _, token := range strings.Fields(query) {
		if strings.Contains(dataText, token) {
			score += tokenInDataWeight
		}
		if strings.Contains(contextText, token) {
			score += tokenInContextWeight
		}
	}
	return score * e.RelevanceScore
}

// serialize flattens an opaque map to its JSON form for substring matching.
// Marshal failures degrade to an empty haystack rather than an error: a
// single unserializable value must not break search.
func serialize(m map[string]any) string {
	if len(m) == 0 {
		return ""
	}
	b, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(b)
}

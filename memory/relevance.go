package memory

// Relevance scoring weights. The score is computed once at write time and
// never recomputed, so changing these only affects new entries.
const (
	baseScore         = 0.5
	highValueBonus    = 0.3 // purchase, support, form_fill
	inquiryBonus      = 0.2 // question, search
	entityBonus       = 0.1 // per entity in the payload
	entityBonusCap    = 0.3
	richContextBonus  = 0.1 // context carrying more than two keys
	richContextMinLen = 3
)

var (
	highValueTypes = map[string]bool{"purchase": true, "support": true, "form_fill": true}
	inquiryTypes   = map[string]bool{"question": true, "search": true}
)

// relevanceScore assigns a deterministic weight in [0, 1] to an interaction.
// The type bonuses are mutually exclusive since the two type sets do not
// overlap; the entity bonus is capped regardless of how many entities the
// extraction layer reports.
func relevanceScore(interaction, context map[string]any) float64 {
	score := baseScore

	interactionType, _ := interaction["type"].(string)
	switch {
	case highValueTypes[interactionType]:
		score += highValueBonus
	case inquiryTypes[interactionType]:
		score += inquiryBonus
	}

	if entities, ok := interaction["entities"]; ok {
		bonus := float64(entityCount(entities)) * entityBonus
		if bonus > entityBonusCap {
			bonus = entityBonusCap
		}
		score += bonus
	}

	if len(context) >= richContextMinLen {
		score += richContextBonus
	}

	if score > 1.0 {
		score = 1.0
	}
	if score < 0 {
		score = 0
	}
	return score
}

// entityCount tolerates the slice shapes a decoded JSON payload can carry.
func entityCount(entities any) int {
	switch v := entities.(type) {
	case []any:
		return len(v)
	case []string:
		return len(v)
	case []map[string]any:
		return len(v)
	default:
		return 0
	}
}

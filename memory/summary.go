package memory

import (
	"sort"
	"time"

	"github.com/intentlayer/statecore/core"
)

const (
	summaryWindow     = 20 // most recent entries feeding the summary
	recentIntentsKept = 5
	commonEntitiesTop = 5
	activityWindow    = 7 * 24 * time.Hour
)

// recomputeSummary derives the context summary from the aggregate's 20 most
// recent entries. Called after every store while the caller holds the write
// lock.
func recomputeSummary(um *core.UserMemory, now time.Time) {
	recent := make([]core.MemoryEntry, len(um.Entries))
	copy(recent, um.Entries)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Timestamp.After(recent[j].Timestamp)
	})
	if len(recent) > summaryWindow {
		recent = recent[:summaryWindow]
	}

	interactionTypes := map[string]int{}
	entityCounts := map[string]int{}
	var intents []string

	// Chronological order so recent_intents reads oldest to newest.
	for i := len(recent) - 1; i >= 0; i-- {
		entry := recent[i]
		interactionTypes[entry.InteractionType]++

		if intent, ok := entry.Data["intent"].(string); ok {
			intents = append(intents, intent)
		}
		for _, tag := range stringSlice(entry.Context["entity_types"]) {
			entityCounts[tag]++
		}
	}
	if len(intents) > recentIntentsKept {
		intents = intents[len(intents)-recentIntentsKept:]
	}

	um.ContextSummary = core.ContextSummary{
		TotalInteractions:     len(um.Entries),
		RecentInteractions:    len(recent),
		MostCommonInteraction: topKey(interactionTypes),
		InteractionTypes:      interactionTypes,
		RecentIntents:         intents,
		CommonEntities:        topCounts(entityCounts, commonEntitiesTop),
		LastUpdated:           now,
		UserActivityLevel:     activityLevel(um.Entries, now),
	}
}

// activityLevel classifies the user from interaction volume in the trailing
// week.
func activityLevel(entries []core.MemoryEntry, now time.Time) string {
	if len(entries) == 0 {
		return core.ActivityInactive
	}
	weekAgo := now.Add(-activityWindow)
	recent := 0
	for _, e := range entries {
		if e.Timestamp.After(weekAgo) {
			recent++
		}
	}
	switch {
	case recent >= 10:
		return core.ActivityVeryActive
	case recent >= 5:
		return core.ActivityActive
	case recent >= 1:
		return core.ActivityModerate
	default:
		return core.ActivityLow
	}
}

// topKey returns the most frequent key, breaking count ties by name so the
// summary is deterministic.
func topKey(counts map[string]int) string {
	best := ""
	bestCount := 0
	for k, c := range counts {
		if c > bestCount || (c == bestCount && (best == "" || k < best)) {
			best, bestCount = k, c
		}
	}
	return best
}

// topCounts keeps the n highest-count keys.
func topCounts(counts map[string]int, n int) map[string]int {
	if len(counts) <= n {
		res := make(map[string]int, len(counts))
		for k, v := range counts {
			res[k] = v
		}
		return res
	}

	type kv struct {
		key   string
		count int
	}
	ranked := make([]kv, 0, len(counts))
	for k, v := range counts {
		ranked = append(ranked, kv{k, v})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].key < ranked[j].key
	})

	res := make(map[string]int, n)
	for _, item := range ranked[:n] {
		res[item.key] = item.count
	}
	return res
}

// stringSlice tolerates the slice shapes a decoded JSON context can carry
// under entity_types.
func stringSlice(v any) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []any:
		res := make([]string, 0, len(vv))
		for _, item := range vv {
			if s, ok := item.(string); ok {
				res = append(res, s)
			}
		}
		return res
	default:
		return nil
	}
}

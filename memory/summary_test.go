package memory

import (
	"fmt"
	"testing"
	"time"

	"github.com/intentlayer/statecore/core"
	"github.com/intentlayer/statecore/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func aggregateWith(entries ...core.MemoryEntry) *core.UserMemory {
	return &core.UserMemory{
		UserID:      "u1",
		Entries:     entries,
		Preferences: map[string]any{},
	}
}

func TestActivityLevel(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	build := func(recent, stale int) []core.MemoryEntry {
		var entries []core.MemoryEntry
		for i := 0; i < recent; i++ {
			entries = append(entries, testutil.NewEntryBuilder("u1").At(now.Add(-time.Hour)).Build())
		}
		for i := 0; i < stale; i++ {
			entries = append(entries, testutil.NewEntryBuilder("u1").At(now.Add(-10*24*time.Hour)).Build())
		}
		return entries
	}

	assert.Equal(t, core.ActivityInactive, activityLevel(nil, now))
	assert.Equal(t, core.ActivityLow, activityLevel(build(0, 3), now))
	assert.Equal(t, core.ActivityModerate, activityLevel(build(1, 0), now))
	assert.Equal(t, core.ActivityActive, activityLevel(build(5, 0), now))
	assert.Equal(t, core.ActivityVeryActive, activityLevel(build(12, 0), now))
}

func TestRecomputeSummary_IntentsChronologicalLastFive(t *testing.T) {
	base := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	var entries []core.MemoryEntry
	for i := 1; i <= 7; i++ {
		entries = append(entries, testutil.NewEntryBuilder("u1").
			At(base.Add(time.Duration(i)*time.Minute)).
			Data("intent", fmt.Sprintf("intent-%d", i)).
			Build())
	}
	um := aggregateWith(entries...)

	recomputeSummary(um, base.Add(time.Hour))

	assert.Equal(t,
		[]string{"intent-3", "intent-4", "intent-5", "intent-6", "intent-7"},
		um.ContextSummary.RecentIntents,
		"recent intents keep the last five in chronological order")
}

func TestRecomputeSummary_WindowAndTallies(t *testing.T) {
	base := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	var entries []core.MemoryEntry
	// 25 old questions: only the 20 most recent entries feed the summary,
	// so five of these fall outside the window.
	for i := 0; i < 25; i++ {
		entries = append(entries, testutil.NewEntryBuilder("u1").
			Type("question").
			At(base.Add(time.Duration(i)*time.Minute)).
			Build())
	}
	// 3 fresh purchases, each tagged with entity types.
	for i := 0; i < 3; i++ {
		entries = append(entries, testutil.NewEntryBuilder("u1").
			Type("purchase").
			At(base.Add(time.Duration(30+i)*time.Minute)).
			Context("entity_types", []any{"product", "price"}).
			Build())
	}
	um := aggregateWith(entries...)

	recomputeSummary(um, base.Add(time.Hour))
	sum := um.ContextSummary

	assert.Equal(t, 28, sum.TotalInteractions)
	assert.Equal(t, 20, sum.RecentInteractions)
	assert.Equal(t, "question", sum.MostCommonInteraction)
	assert.Equal(t, map[string]int{"question": 17, "purchase": 3}, sum.InteractionTypes)
	assert.Equal(t, map[string]int{"product": 3, "price": 3}, sum.CommonEntities)
	assert.Equal(t, core.ActivityVeryActive, sum.UserActivityLevel)
}

func TestTopCounts(t *testing.T) {
	counts := map[string]int{"a": 5, "b": 4, "c": 3, "d": 2, "e": 2, "f": 1}

	top := topCounts(counts, 5)
	assert.Len(t, top, 5)
	assert.NotContains(t, top, "f")
	assert.Equal(t, 5, top["a"])

	small := topCounts(map[string]int{"x": 1}, 5)
	assert.Equal(t, map[string]int{"x": 1}, small)
}

func TestTopKeyIsDeterministic(t *testing.T) {
	assert.Equal(t, "alpha", topKey(map[string]int{"beta": 2, "alpha": 2}))
	assert.Equal(t, "", topKey(map[string]int{}))
}

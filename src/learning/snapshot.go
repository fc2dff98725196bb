package learning

import (
	"context"
	"maps"
	"math"
	"sort"
	"time"

	"hotel_concierge/src/model"
)

const (
	topIntentLimit  = 10
	frequentLimit   = 3
	weeklyGrowthAge = 7 * 24 * time.Hour
)

// ExportSnapshot summarises the memory for download. Pattern internals and
// raw conversations are left out.
func (s *Store) ExportSnapshot() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.Snapshot{
		ExportDate:        s.now(),
		UserID:            s.userID,
		TotalInteractions: s.memory.TotalInteractions,
		Preferences:       s.profile.Preferences.Clone(),
		ConversationCount: len(s.memory.Conversations) + s.memory.ImportedConversations,
		LastActive:        s.memory.LastActive,
		IntentCounts:      maps.Clone(s.profile.Behavior.CommonIntents),
		TimeOfDay:         maps.Clone(s.profile.Behavior.PreferredTimeOfDay),
	}
}

// ImportSnapshot restores the aggregates of an exported snapshot, so a
// following export reports the same counts. The user id is kept.
func (s *Store) ImportSnapshot(ctx context.Context, snap model.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profile.Preferences = fillPreferences(snap.Preferences.Clone())
	s.profile.Behavior.CommonIntents = cloneCounts(snap.IntentCounts)
	s.profile.Behavior.PreferredTimeOfDay = cloneCounts(snap.TimeOfDay)
	if snap.Preferences.Language != "" {
		s.profile.Behavior.LanguagePreference = snap.Preferences.Language
	}

	s.memory.TotalInteractions = snap.TotalInteractions
	s.memory.ImportedConversations = max(0, snap.ConversationCount-len(s.memory.Conversations))
	if !snap.LastActive.IsZero() {
		s.memory.LastActive = snap.LastActive
	}
	s.persist(ctx)
}

func cloneCounts(in map[string]int) map[string]int {
	if in == nil {
		return make(map[string]int)
	}
	return maps.Clone(in)
}

// MemoryStats gathers what the "what do you remember" reply needs.
func (s *Store) MemoryStats() model.MemoryStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs := s.profile.Preferences
	stats := model.MemoryStats{
		TotalInteractions: s.memory.TotalInteractions,
		Name:              prefs.Name,
		RoomType:          prefs.RoomPreferences.Type,
		FrequentRequests:  append([]string{}, prefs.FrequentRequests[:min(frequentLimit, len(prefs.FrequentRequests))]...),
	}
	if n := len(s.memory.Conversations); n > 0 {
		stats.LastIntent = s.memory.Conversations[n-1].Intent.Primary
	}
	return stats
}

// Analytics summarises the learning table and behavior counters.
func (s *Store) Analytics() model.Analytics {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := model.Analytics{
		TotalPatterns:        len(s.profile.Patterns),
		TopIntents:           topIntents(s.profile.Behavior.CommonIntents, topIntentLimit),
		LanguageDistribution: make(map[model.Language]int),
		Behavior: model.BehaviorStats{
			CommonIntents:      maps.Clone(s.profile.Behavior.CommonIntents),
			PreferredTimeOfDay: maps.Clone(s.profile.Behavior.PreferredTimeOfDay),
			LanguagePreference: s.profile.Behavior.LanguagePreference,
		},
	}
	if len(s.profile.Patterns) == 0 {
		return a
	}

	cutoff := s.now().Add(-weeklyGrowthAge)
	sum, lo, hi := 0.0, math.Inf(1), math.Inf(-1)
	for _, p := range s.profile.Patterns {
		a.LanguageDistribution[p.Language]++
		sum += p.Confidence
		lo = math.Min(lo, p.Confidence)
		hi = math.Max(hi, p.Confidence)
		if !p.LastUsed.Before(cutoff) {
			a.WeeklyGrowth++
		}
	}
	a.AverageConfidence = sum / float64(len(s.profile.Patterns))
	a.MinConfidence = lo
	a.MaxConfidence = hi
	return a
}

func topIntents(counts map[string]int, limit int) []model.IntentCount {
	out := make([]model.IntentCount, 0, len(counts))
	for intent, count := range counts {
		out = append(out, model.IntentCount{Intent: intent, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Intent < out[j].Intent
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Package normalizer turns loosely shaped input into models.NormalizedInput.
package normalizer

import "TipFusion/internal/domain/models"

// Normalize never fails: missing or mistyped sections become empty containers
// and a top-level "odds" key is merged into match_data.odds. The caller's map
// is not modified.
func Normalize(raw map[string]any) models.NormalizedInput {
	out := models.NormalizedInput{
		MatchData:   copyMap(section(raw, "match_data")),
		Stats:       section(raw, "stats"),
		Sequence:    sequence(raw["sequence"]),
		Graph:       section(raw, "graph"),
		PlayerStats: section(raw, "player_stats"),
		LiveFeed:    section(raw, "live_feed"),
		Metadata:    section(raw, "metadata"),
	}
	if odds, ok := raw["odds"]; ok && odds != nil {
		out.MatchData["odds"] = odds
	}
	return out
}

// NormalizeInput re-normalizes an already typed record, filling nil sections.
func NormalizeInput(in models.NormalizedInput) models.NormalizedInput {
	return Normalize(in.AsMap())
}

func section(raw map[string]any, key string) map[string]any {
	if v, ok := raw[key].(map[string]any); ok && v != nil {
		return v
	}
	return map[string]any{}
}

func sequence(v any) []any {
	switch s := v.(type) {
	case []any:
		if s != nil {
			return s
		}
	case []float64:
		out := make([]any, len(s))
		for i, x := range s {
			out[i] = x
		}
		return out
	}
	return []any{}
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

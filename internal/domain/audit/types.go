package audit

import (
	"github.com/adolfohrq/prdgen/internal/domain/generation"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// Filter narrows List. Zero fields match everything.
type Filter struct {
	Recipe  string
	Outcome generation.Outcome
	Limit   int
}

func (f Filter) limit() int {
	switch {
	case f.Limit <= 0:
		return defaultListLimit
	case f.Limit > maxListLimit:
		return maxListLimit
	default:
		return f.Limit
	}
}

// RecipeStats aggregates the stored events of one recipe.
type RecipeStats struct {
	Recipe       string  `json:"recipe"`
	Total        int     `json:"total"`
	Succeeded    int     `json:"succeeded"`
	Empty        int     `json:"empty"`
	Failed       int     `json:"failed"`
	FallbackUsed int     `json:"fallbackUsed"`
	AvgLatencyMs float64 `json:"avgLatencyMs"`
}

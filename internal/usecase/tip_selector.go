package usecase

import (
	"sort"

	"TipFusion/internal/domain/models"
)

// Thresholds gate which candidates become tips.
type Thresholds struct {
	MaxSingles     int
	MinValue       float64
	MaxRisk        float64
	MinReliability float64
	RequireTMX     bool
	MaxLive        int
	MaxProp        int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxSingles:     4,
		MinValue:       0.05,
		MaxRisk:        0.65,
		MinReliability: 0.40,
		RequireTMX:     true,
		MaxLive:        3,
		MaxProp:        3,
	}
}

type TipSelector struct {
	th Thresholds
}

func NewTipSelector(th Thresholds) *TipSelector {
	return &TipSelector{th: th}
}

func (s *TipSelector) Thresholds() Thresholds { return s.th }

// Admit applies the availability, value, risk and reliability gates.
func (s *TipSelector) Admit(c models.TipCandidate) bool {
	return Admit(c, s.th)
}

func Admit(c models.TipCandidate, th Thresholds) bool {
	if th.RequireTMX && !c.TmxAvailable {
		return false
	}
	return c.Value >= th.MinValue &&
		c.Risk <= th.MaxRisk &&
		c.Reliability >= th.MinReliability
}

// CandidateScore ranks admitted candidates within a category.
func CandidateScore(c models.TipCandidate) float64 {
	return c.Value*0.5 + c.Reliability*0.3 + (1-c.Risk)*0.2
}

// Select admits, scores and caps candidates per category. Props are matched
// by market, live by flag, everything else is a single.
func (s *TipSelector) Select(candidates []models.TipCandidate) models.TipSelection {
	var singles, live, props []models.TipCandidate
	for _, c := range candidates {
		if !s.Admit(c) {
			continue
		}
		c.Score = CandidateScore(c)
		switch {
		case c.Market == models.MarketProp:
			props = append(props, c)
		case c.Live:
			live = append(live, c)
		default:
			singles = append(singles, c)
		}
	}
	return models.TipSelection{
		Singles: top(singles, s.th.MaxSingles),
		Live:    top(live, s.th.MaxLive),
		Props:   top(props, s.th.MaxProp),
	}
}

func top(cs []models.TipCandidate, n int) []models.TipCandidate {
	sort.SliceStable(cs, func(i, j int) bool { return cs[i].Score > cs[j].Score })
	if n < 0 {
		n = 0
	}
	if len(cs) > n {
		cs = cs[:n]
	}
	return cs
}

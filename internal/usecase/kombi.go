package usecase

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"TipFusion/internal/domain/models"
)

// KombiScore ranks kombi legs.
func KombiScore(a models.Assessment) float64 {
	return a.Edge.EdgeScore*0.6 + a.Value.ValueIndex*0.3 - (1-a.Risk.RiskScore)*0.1
}

// KombiSize is 4 legs above a 150 bankroll, 2 below 50, otherwise 3.
func KombiSize(bankroll float64) int {
	switch {
	case bankroll > 150:
		return 4
	case bankroll < 50:
		return 2
	}
	return 3
}

// BuildKombi ranks the assessments and takes the top legs. EstimatedOdds is
// the exact product of leg odds; details carry a 2 dp display value.
func BuildKombi(assessments []models.Assessment, bankroll float64) models.KombiSlip {
	ranked := append([]models.Assessment(nil), assessments...)
	sort.SliceStable(ranked, func(i, j int) bool { return KombiScore(ranked[i]) > KombiScore(ranked[j]) })

	n := min(KombiSize(bankroll), len(ranked))
	selections := make([]models.KombiSelection, 0, n)
	total := 1.0
	display := decimal.NewFromInt(1)
	for _, a := range ranked[:n] {
		odds := a.Event.Odds.Get(a.Edge.BestPick)
		if odds <= 0 {
			odds = 1.0
		}
		total *= odds
		display = display.Mul(decimal.NewFromFloat(odds))
		selections = append(selections, models.KombiSelection{
			MatchID:    a.Event.ID,
			Pick:       a.Edge.BestPick,
			Odds:       odds,
			EdgeScore:  a.Edge.EdgeScore,
			ValueIndex: a.Value.ValueIndex,
			RiskLevel:  a.Risk.RiskLevel,
		})
	}

	ranking := make([]string, len(ranked))
	for i, a := range ranked {
		ranking[i] = a.Event.ID
	}
	return models.KombiSlip{
		KombiSize:     len(selections),
		Selections:    selections,
		EstimatedOdds: total,
		Details: map[string]any{
			"display_odds": display.Round(2).String(),
			"bankroll":     bankroll,
			"candidates":   len(ranked),
			"ranking":      ranking,
		},
	}
}

// KombiBuilder assesses candidate events and builds a slip sized by the
// kombi pool's bankroll.
type KombiBuilder struct {
	orch *Orchestrator
}

func NewKombiBuilder(orch *Orchestrator) *KombiBuilder {
	return &KombiBuilder{orch: orch}
}

// Generate builds a kombi over events. It fails only when ctx is done.
func (b *KombiBuilder) Generate(ctx context.Context, events []models.Event) (models.KombiSlip, *models.StakeRecommendation, error) {
	assessments := b.orch.AssessAll(ctx, events, ModeBatch)
	if err := ctx.Err(); err != nil {
		return models.KombiSlip{}, nil, err
	}
	pool := b.orch.Pools().Kombi()
	slip := BuildKombi(assessments, pool.State().Bankroll)
	if slip.KombiSize == 0 {
		return slip, nil, nil
	}

	rec := KombiStake(pool, kombiLegs(slip, assessments))
	return slip, &rec, nil
}

func kombiLegs(slip models.KombiSlip, assessments []models.Assessment) []models.Assessment {
	chosen := make(map[string]bool, slip.KombiSize)
	for _, s := range slip.Selections {
		chosen[s.MatchID] = true
	}
	legs := make([]models.Assessment, 0, slip.KombiSize)
	for _, a := range assessments {
		if chosen[a.Event.ID] {
			legs = append(legs, a)
		}
	}
	return legs
}

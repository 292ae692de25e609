package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"TipFusion/internal/domain/models"
	drepo "TipFusion/internal/domain/repository"
	domsvc "TipFusion/internal/domain/service"
	"TipFusion/pkg/logger"
	"TipFusion/pkg/util"
)

const (
	defaultSportWeight = 0.05
	defaultLiveHour    = 14
	defaultMinDepth    = 0.3
	defaultSpike       = 0.05

	singleMinValue = 1.0
	singleMinConf  = 0.60
	singleMinKelly = 0.01
	singleMaxKelly = 0.02

	kombiMinValue = 1.02
	kombiMinConf  = 0.58
	kombiMaxPicks = 5
	kombiStakePct = 0.02

	liveMinValue = 1.03
	liveMinConf  = 0.62
	liveMaxPicks = 2
	liveStakePct = 0.01

	minCleanOdds = 1.01
	recalMax     = 1.5
	recalSlope   = 0.6
)

// DefaultSportWeights weight single picks per sport.
func DefaultSportWeights() map[string]float64 {
	return map[string]float64{"foci": 0.60, "kosar": 0.20, "hoki": 0.10, "tenisz": 0.10}
}

// Strategy plans the daily single, kombi and live picks on top of the
// orchestrator's assessments.
type Strategy struct {
	orch     *Orchestrator
	checker  domsvc.AvailabilityChecker
	pub      drepo.DecisionPublisher
	weights  map[string]float64
	liveHour int
	minDepth float64
	spike    float64
	log      *logger.Logger
	now      func() time.Time

	mu     sync.RWMutex
	latest *models.DailyPicks
}

type StrategyOption func(*Strategy)

// WithAvailability enables the bookmaker crosscheck.
func WithAvailability(c domsvc.AvailabilityChecker) StrategyOption {
	return func(s *Strategy) { s.checker = c }
}

func WithPicksPublisher(p drepo.DecisionPublisher) StrategyOption {
	return func(s *Strategy) { s.pub = p }
}

func WithSportWeights(w map[string]float64) StrategyOption {
	return func(s *Strategy) {
		if len(w) > 0 {
			s.weights = w
		}
	}
}

func WithLiveFromHour(h int) StrategyOption {
	return func(s *Strategy) { s.liveHour = h }
}

func WithStrategyLogger(l *logger.Logger) StrategyOption {
	return func(s *Strategy) {
		if l != nil {
			s.log = l
		}
	}
}

func withStrategyClock(now func() time.Time) StrategyOption {
	return func(s *Strategy) { s.now = now }
}

func NewStrategy(orch *Orchestrator, opts ...StrategyOption) *Strategy {
	s := &Strategy{
		orch:     orch,
		weights:  DefaultSportWeights(),
		liveHour: defaultLiveHour,
		minDepth: defaultMinDepth,
		spike:    defaultSpike,
		log:      logger.Nop(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Latest returns the last generated daily picks.
func (s *Strategy) Latest() (*models.DailyPicks, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.latest != nil
}

// Generate assesses both event lists, filters them into picks and sizes the
// stakes from the current pool bankrolls. The picks are kept as Latest even
// when publishing fails.
func (s *Strategy) Generate(ctx context.Context, events, live []models.Event) (*models.DailyPicks, error) {
	pre := s.prepare(ctx, s.Picks(ctx, events, ModeBatch))
	inplay := s.prepare(ctx, s.Picks(ctx, live, ModeLive))

	pools := s.orch.Pools()
	singles := SelectSingles(pre, s.weights)
	dp := &models.DailyPicks{
		GeneratedAt:  s.now().UTC(),
		Singles:      singles,
		SingleStakes: make(map[string]float64, len(singles)),
		Kombi:        SelectKombi(pre, singles),
		KombiStake:   percentStake(pools.Kombi().State().Bankroll, kombiStakePct),
		Live:         SelectLive(inplay, s.now(), s.liveHour),
		LiveStakes:   map[string]float64{},
	}
	for sport, p := range singles {
		dp.SingleStakes[sport] = SingleStake(pools.Single().State().Bankroll, p.Kelly)
	}
	s.stakeLive(dp)

	s.mu.Lock()
	s.latest = dp
	s.mu.Unlock()

	s.log.Info("daily picks generated",
		logger.Int("singles", len(dp.Singles)),
		logger.Int("kombi", len(dp.Kombi)),
		logger.Int("live", len(dp.Live)))
	return dp, s.publish(ctx, dp)
}

// GenerateLive re-plans the live picks only. Singles and kombi are carried
// over from the latest plan.
func (s *Strategy) GenerateLive(ctx context.Context, live []models.Event) (*models.DailyPicks, error) {
	inplay := s.prepare(ctx, s.Picks(ctx, live, ModeLive))

	s.mu.Lock()
	dp := &models.DailyPicks{}
	if s.latest != nil {
		cp := *s.latest
		dp = &cp
	}
	dp.GeneratedAt = s.now().UTC()
	dp.Live = SelectLive(inplay, s.now(), s.liveHour)
	dp.LiveStakes = map[string]float64{}
	s.stakeLive(dp)
	s.latest = dp
	s.mu.Unlock()

	s.log.Info("live picks generated", logger.Int("live", len(dp.Live)))
	return dp, s.publish(ctx, dp)
}

func (s *Strategy) stakeLive(dp *models.DailyPicks) {
	stake := percentStake(s.orch.Pools().Live().State().Bankroll, liveStakePct)
	for _, p := range dp.Live {
		dp.LiveStakes[p.EventID] = stake
	}
}

func (s *Strategy) publish(ctx context.Context, dp *models.DailyPicks) error {
	if s.pub == nil {
		return nil
	}
	if err := s.pub.PublishPicks(ctx, dp); err != nil {
		return fmt.Errorf("publish daily picks: %w", err)
	}
	return nil
}

// Picks assesses events and maps each onto a strategy pick.
func (s *Strategy) Picks(ctx context.Context, events []models.Event, mode Mode) []models.Pick {
	if len(events) == 0 {
		return nil
	}
	assessments := s.orch.AssessAll(ctx, events, mode)
	out := make([]models.Pick, len(assessments))
	for i, a := range assessments {
		out[i] = s.pick(a)
	}
	return out
}

// pick values the best edge leg as 1+edge against fair odds 1/p.
func (s *Strategy) pick(a models.Assessment) models.Pick {
	out := a.Edge.BestPick
	p := a.Fused.Get(out)
	var fair float64
	if p > 0 {
		fair = 1 / p
	}
	return models.Pick{
		EventID:    a.Event.ID,
		Sport:      a.Event.Sport,
		Pick:       out,
		Odds:       a.Edge.BestOdds,
		FairOdds:   fair,
		Value:      1 + a.Edge.EdgeScore,
		Confidence: a.Fused.Confidence,
		Kelly:      a.Edge.Kelly,
		Liquid:     a.Event.TmxAvailable || a.Liquidity.LiquidityDepth >= s.minDepth,
		OddsSpike:  math.Abs(a.Features.OddsVelocity) >= s.spike,
	}
}

// prepare runs the crosscheck, cleanup and recalibration passes.
func (s *Strategy) prepare(ctx context.Context, picks []models.Pick) []models.Pick {
	if s.checker != nil {
		picks = s.Crosscheck(ctx, picks)
	}
	picks = Cleanup(picks)
	for i := range picks {
		picks[i].Value = Recalibrate(picks[i].Value)
	}
	return picks
}

// Crosscheck drops picks the bookmaker does not offer and revalues the rest
// at the best offered price over the fair odds. Lookup failures drop the pick.
func (s *Strategy) Crosscheck(ctx context.Context, picks []models.Pick) []models.Pick {
	out := make([]models.Pick, 0, len(picks))
	for _, p := range picks {
		offered, ok, err := s.checker.Offered(ctx, p.EventID)
		if err != nil {
			s.log.Warn("availability check failed", logger.String("event_id", p.EventID), logger.Error(err))
			continue
		}
		if !ok {
			continue
		}
		p.TmxOdds = offered.Max()
		if p.FairOdds > 0 {
			p.Value = p.TmxOdds / p.FairOdds
		}
		out = append(out, p)
	}
	return out
}

// Cleanup keeps the first pick per event and drops illiquid ones, odds at or
// below 1.01 and value at or below 1.0.
func Cleanup(picks []models.Pick) []models.Pick {
	seen := make(map[string]struct{}, len(picks))
	out := make([]models.Pick, 0, len(picks))
	for _, p := range picks {
		if _, dup := seen[p.EventID]; dup {
			continue
		}
		seen[p.EventID] = struct{}{}
		if !p.Liquid || p.Odds <= minCleanOdds || p.Value <= singleMinValue {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Recalibrate maps engine value onto the common scale: clamp to [1, 1.5],
// then shrink the excess over 1 by 0.6.
func Recalibrate(v float64) float64 {
	return 1 + (util.Clip(v, 1, recalMax)-1)*recalSlope
}

// SelectSingles picks the best single per sport by value·confidence·weight.
func SelectSingles(picks []models.Pick, weights map[string]float64) map[string]models.Pick {
	best := map[string]models.Pick{}
	for _, p := range picks {
		if !p.Liquid || p.Value <= singleMinValue || p.Confidence <= singleMinConf {
			continue
		}
		w, ok := weights[p.Sport]
		if !ok {
			w = defaultSportWeight
		}
		p.Score = p.Value * p.Confidence * w
		if cur, ok := best[p.Sport]; !ok || p.Score > cur.Score {
			best[p.Sport] = p
		}
	}
	return best
}

// SelectKombi ranks the remaining picks by value·confidence and keeps five.
func SelectKombi(picks []models.Pick, singles map[string]models.Pick) []models.Pick {
	used := make(map[string]struct{}, len(singles))
	for _, p := range singles {
		used[p.EventID] = struct{}{}
	}
	var out []models.Pick
	for _, p := range picks {
		if _, ok := used[p.EventID]; ok {
			continue
		}
		if !p.Liquid || p.Value <= kombiMinValue || p.Confidence <= kombiMinConf {
			continue
		}
		out = append(out, p)
	}
	return rankPicks(out, kombiMaxPicks)
}

// SelectLive keeps the two best spiking live picks, and nothing before fromHour.
func SelectLive(picks []models.Pick, now time.Time, fromHour int) []models.Pick {
	if now.Hour() < fromHour {
		return []models.Pick{}
	}
	var out []models.Pick
	for _, p := range picks {
		if p.OddsSpike && p.Value > liveMinValue && p.Confidence > liveMinConf {
			out = append(out, p)
		}
	}
	return rankPicks(out, liveMaxPicks)
}

func rankPicks(picks []models.Pick, limit int) []models.Pick {
	for i := range picks {
		picks[i].Score = picks[i].Value * picks[i].Confidence
	}
	sort.SliceStable(picks, func(i, j int) bool { return picks[i].Score > picks[j].Score })
	if len(picks) > limit {
		picks = picks[:limit]
	}
	if picks == nil {
		picks = []models.Pick{}
	}
	return picks
}

// SingleStake is bankroll·clamp(kelly, 1%, 2%) rounded to cents.
func SingleStake(bankroll, kelly float64) float64 {
	return percentStake(bankroll, util.Clip(kelly, singleMinKelly, singleMaxKelly))
}

func percentStake(bankroll, pct float64) float64 {
	return decimal.NewFromFloat(bankroll).Mul(decimal.NewFromFloat(pct)).Round(2).InexactFloat64()
}

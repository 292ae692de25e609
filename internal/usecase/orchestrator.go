package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"TipFusion/internal/domain/models"
	domrepo "TipFusion/internal/domain/repository"
	domsvc "TipFusion/internal/domain/service"
	"TipFusion/internal/engine"
	"TipFusion/internal/services/engines"
	"TipFusion/internal/services/evaluator"
	"TipFusion/internal/services/features"
	"TipFusion/internal/services/fusion"
	"TipFusion/internal/services/liquidity"
	"TipFusion/internal/services/normalizer"
	"TipFusion/internal/services/selector"
	"TipFusion/pkg/logger"
	"TipFusion/pkg/metrics"
)

// Mode selects the engine set and feature depth of a pipeline run.
type Mode int

const (
	ModeBatch Mode = iota
	ModeLive
)

func (m Mode) String() string {
	if m == ModeLive {
		return "live"
	}
	return "batch"
}

// Orchestrator drives normalize → engines → fusion → evaluators → selection → staking.
type Orchestrator struct {
	registry  *engine.Registry
	engines   []string
	engineCfg map[string]map[string]any
	timeout   time.Duration
	workers   int

	features  *features.Builder
	liquidity domsvc.LiquidityAnalyzer
	risk      domsvc.RiskEvaluator
	value     domsvc.ValueEvaluator
	edge      domsvc.EdgeEvaluator
	router    domsvc.ModelRouter

	tips    *TipSelector
	pools   *Pools
	metrics domrepo.Metrics
	logger  *logger.Logger
	now     func() time.Time
}

type OrchestratorOption func(*Orchestrator)

// WithEngines fixes the batch engine set. Empty means every registered engine.
func WithEngines(ids []string) OrchestratorOption {
	return func(o *Orchestrator) { o.engines = append([]string(nil), ids...) }
}

func WithEngineConfig(cfg map[string]map[string]any) OrchestratorOption {
	return func(o *Orchestrator) { o.engineCfg = cfg }
}

func WithEngineTimeout(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func WithWorkers(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

func WithRouter(r domsvc.ModelRouter) OrchestratorOption {
	return func(o *Orchestrator) { o.router = r }
}

func WithMetrics(m domrepo.Metrics) OrchestratorOption {
	return func(o *Orchestrator) {
		if m != nil {
			o.metrics = m
		}
	}
}

func WithLogger(l *logger.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

func NewOrchestrator(registry *engine.Registry, tips *TipSelector, pools *Pools, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		registry:  registry,
		timeout:   2 * time.Second,
		workers:   4,
		features:  features.NewBuilder(),
		liquidity: liquidity.NewAnalyzer(),
		risk:      evaluator.Risk{},
		value:     evaluator.Value{},
		edge:      evaluator.Edge{},
		router:    selector.New(),
		tips:      tips,
		pools:     pools,
		metrics:   metrics.Nop{},
		logger:    logger.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) Registry() *engine.Registry { return o.registry }
func (o *Orchestrator) Pools() *Pools              { return o.pools }
func (o *Orchestrator) Tips() *TipSelector         { return o.tips }

// engineIDs resolves which engines run. Live runs only the routed model, or
// the live engine when the routed id has no registered engine.
func (o *Orchestrator) engineIDs(mode Mode, model string) []string {
	if mode == ModeLive {
		if model != "" && model != selector.FallbackModel && o.registry.Has(model) {
			return []string{model}
		}
		if o.registry.Has(engines.LiveID) {
			return []string{engines.LiveID}
		}
		return nil
	}
	if len(o.engines) == 0 {
		return o.registry.ListEngines()
	}
	return o.engines
}

// RunEngines executes the given engines concurrently, each bounded by the
// engine timeout. Unknown ids become failed results.
func (o *Orchestrator) RunEngines(ctx context.Context, ids []string, in models.NormalizedInput) map[string]models.EngineResult {
	type item struct {
		id  string
		res models.EngineResult
	}
	ch := make(chan item, len(ids))
	var wg sync.WaitGroup

	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			e, err := o.registry.CreateInstance(id, o.engineCfg[id])
			if err != nil {
				ch <- item{id, models.EngineResult{Error: err.Error(), Meta: models.EngineMeta{Engine: id}}}
				return
			}
			ch <- item{id, engine.Run(ctx, e, in, o.timeout)}
		}(id)
	}
	go func() { wg.Wait(); close(ch) }()

	results := make(map[string]models.EngineResult, len(ids))
	for it := range ch {
		results[it.id] = it.res
		o.metrics.RecordEngineRun(it.id, it.res.Success, it.res.Meta.Elapsed.Seconds())
		if !it.res.Success {
			o.logger.Warn("engine failed",
				logger.String("engine", it.id),
				logger.String("error", it.res.Error),
				logger.Duration("elapsed", it.res.Meta.Elapsed))
		}
	}
	return results
}

// Assess computes everything about an event short of selection and staking.
func (o *Orchestrator) Assess(ctx context.Context, e models.Event, mode Mode) models.Assessment {
	var model string
	if mode == ModeLive {
		model = o.router.Route(e, nil)
	}
	return o.assess(ctx, e, mode, model)
}

// AssessAll assesses events on the worker pool, keeping input order.
func (o *Orchestrator) AssessAll(ctx context.Context, events []models.Event, mode Mode) []models.Assessment {
	out := make([]models.Assessment, len(events))
	o.forEach(len(events), func(i int) {
		out[i] = o.Assess(ctx, events[i], mode)
	})
	return out
}

func (o *Orchestrator) assess(ctx context.Context, e models.Event, mode Mode, model string) models.Assessment {
	start := o.now()
	in := normalizer.Normalize(e.RawInput())

	ratio := o.pools.forMode(e, mode).Ratio()
	feats := o.features.Build(e, in, features.Options{Live: mode == ModeLive, BankrollRatio: &ratio})
	liq := o.liquidity.Analyze(e)

	results := o.RunEngines(ctx, o.engineIDs(mode, model), in)
	successful := fusion.Successful(results)
	fused := fusion.Fuse(successful)

	a := models.Assessment{
		Event:       e,
		Input:       in,
		Features:    feats,
		Results:     results,
		EngineCount: len(successful),
		Fused:       fused,
		Liquidity:   liq,
		Errors:      map[string]string{},
	}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		a.Risk = o.risk.EvaluateRisk(fused, feats)
	}()
	go func() {
		defer wg.Done()
		a.Value = o.value.EvaluateValue(fused, feats, liq)
	}()
	go func() {
		defer wg.Done()
		a.Edge = o.edge.EvaluateEdge(fused, feats, liq)
	}()
	wg.Wait()

	for id, r := range results {
		if !r.Success {
			a.Errors[id] = r.Error
		}
	}
	if len(a.Errors) == 0 {
		a.Errors = nil
	}
	o.metrics.RecordLatency("assess_"+mode.String(), o.now().Sub(start).Seconds())
	return a
}

// Candidate maps an assessment onto the numbers the tip selector filters on.
// Value is the edge score; reliability is the event's own when supplied,
// otherwise the fused confidence.
func Candidate(a models.Assessment) models.TipCandidate {
	e := a.Event
	market := e.Market
	if market == "" {
		market = models.MarketMain
	}
	reliability := a.Fused.Confidence
	if e.Reliability != nil {
		reliability = *e.Reliability
	}
	return models.TipCandidate{
		EventID:      e.ID,
		Sport:        e.Sport,
		Market:       market,
		Pick:         a.Edge.BestPick,
		Odds:         a.Edge.BestOdds,
		Probability:  a.Fused.Get(a.Edge.BestPick),
		Value:        a.Edge.EdgeScore,
		Risk:         a.Risk.RiskScore,
		Reliability:  reliability,
		TmxAvailable: e.TmxAvailable,
		Live:         e.Live,
	}
}

// Decide runs the full pipeline for one event. Engine failures never abort
// it; they are reported in Decision.Errors.
func (o *Orchestrator) Decide(ctx context.Context, e models.Event, meta *models.MetaDecision) *models.Decision {
	d, _ := o.decide(ctx, e, meta)
	return d
}

func (o *Orchestrator) decide(ctx context.Context, e models.Event, meta *models.MetaDecision) (*models.Decision, models.Assessment) {
	mode := ModeBatch
	if e.Live {
		mode = ModeLive
	}
	model := o.router.Route(e, meta)
	a := o.assess(ctx, e, mode, model)

	tip := Candidate(a)
	admitted := o.tips.Admit(tip)
	tip.Score = CandidateScore(tip)
	pool := o.pools.forMode(e, mode)

	d := &models.Decision{
		ID:          uuid.NewString(),
		EventID:     e.ID,
		Sport:       e.Sport,
		League:      e.League,
		Input:       a.Input,
		EngineCount: a.EngineCount,
		Engines:     a.Results,
		Fused:       a.Fused,
		Liquidity:   a.Liquidity,
		Risk:        a.Risk,
		Value:       a.Value,
		Edge:        a.Edge,
		Model:       model,
		Tip:         tip,
		Admitted:    admitted,
		Pool:        pool.Pool(),
		Errors:      a.Errors,
		CreatedAt:   o.now().UTC(),
	}
	if admitted {
		rec := pool.RecommendStake(a.Risk, a.Liquidity, a.Fused)
		d.Stake = &rec
	}
	o.metrics.RecordDecision(string(d.Pool), admitted)
	o.logger.Debug("decision",
		logger.String("event_id", e.ID),
		logger.String("model", model),
		logger.Int("engines", a.EngineCount),
		logger.Bool("admitted", admitted))
	return d, a
}

// DecideBatch decides every event on the worker pool, selects tips among the
// admitted ones and folds the selected singles into a kombi.
func (o *Orchestrator) DecideBatch(ctx context.Context, events []models.Event, meta *models.MetaDecision) *models.BatchResult {
	decisions := make([]*models.Decision, len(events))
	assessments := make([]models.Assessment, len(events))
	o.forEach(len(events), func(i int) {
		decisions[i], assessments[i] = o.decide(ctx, events[i], meta)
	})

	var candidates []models.TipCandidate
	byEvent := make(map[string]models.Assessment, len(events))
	for i, d := range decisions {
		if d.Admitted {
			candidates = append(candidates, d.Tip)
		}
		byEvent[d.EventID] = assessments[i]
	}

	res := &models.BatchResult{Decisions: decisions, Selection: o.tips.Select(candidates)}

	legs := make([]models.Assessment, 0, len(res.Selection.Singles))
	for _, c := range res.Selection.Singles {
		legs = append(legs, byEvent[c.EventID])
	}
	if len(legs) >= 2 {
		kp := o.pools.Kombi()
		slip := BuildKombi(legs, kp.State().Bankroll)
		res.Kombi = &slip
		rec := KombiStake(kp, kombiLegs(slip, legs))
		res.KombiStake = &rec
	}
	return res
}

// Run is the plain engine pass over a raw record.
func (o *Orchestrator) Run(ctx context.Context, raw map[string]any) models.RunOutput {
	in := normalizer.Normalize(raw)
	results := o.RunEngines(ctx, o.engineIDs(ModeBatch, ""), in)
	return models.RunOutput{
		Input:       in,
		Results:     results,
		EngineCount: len(fusion.Successful(results)),
	}
}

// forEach runs fn(0..n-1) on at most o.workers goroutines.
func (o *Orchestrator) forEach(n int, fn func(i int)) {
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < min(o.workers, n); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fn(i)
			}
		}()
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

// KombiStake sizes a kombi from the kombi pool using the most conservative
// leg, the one with the lowest risk score.
func KombiStake(pool *BankrollManager, legs []models.Assessment) models.StakeRecommendation {
	if len(legs) == 0 {
		return pool.RecommendStake(models.RiskAssessment{}, models.LiquidityReport{}, models.FusedSignal{})
	}
	sorted := append([]models.Assessment(nil), legs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Risk.RiskScore < sorted[j].Risk.RiskScore })
	l := sorted[0]
	return pool.RecommendStake(l.Risk, l.Liquidity, l.Fused)
}

func (p *Pools) forMode(e models.Event, mode Mode) *BankrollManager {
	if mode == ModeLive {
		return p.Live()
	}
	return p.ForEvent(e)
}

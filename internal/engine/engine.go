// Package engine defines the scoring-engine contract, its execution wrapper
// and the registry engines are built from.
package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"TipFusion/internal/domain/models"
)

// Engine turns a normalized input into a standardized probability estimate.
type Engine interface {
	Name() string
	Version() string
	Prepare(in models.NormalizedInput) (models.NormalizedInput, error)
	RunModel(ctx context.Context, in models.NormalizedInput) (models.ModelOutput, error)
	Postprocess(out models.ModelOutput) (models.EngineOutput, error)
}

// Base provides default Prepare and Postprocess steps. Embed it and override RunModel.
type Base struct {
	name    string
	version string
	Config  map[string]any
}

func NewBase(name, version string, cfg map[string]any) Base {
	if version == "" {
		version = "1.0"
	}
	if cfg == nil {
		cfg = map[string]any{}
	}
	return Base{name: name, version: version, Config: cfg}
}

func (b *Base) Name() string    { return b.name }
func (b *Base) Version() string { return b.version }

func (b *Base) Prepare(in models.NormalizedInput) (models.NormalizedInput, error) {
	return in, nil
}

func (b *Base) RunModel(context.Context, models.NormalizedInput) (models.ModelOutput, error) {
	return models.ModelOutput{}, fmt.Errorf("%s: %w", b.name, ErrNotImplemented)
}

// Postprocess reports the raw output with the model's confidence, 1.0 when absent.
func (b *Base) Postprocess(out models.ModelOutput) (models.EngineOutput, error) {
	conf := 1.0
	if out.Confidence != nil {
		conf = clamp01(*out.Confidence)
	}
	return models.EngineOutput{
		Engine:        b.name,
		Probabilities: out.Probabilities,
		Confidence:    conf,
		Raw:           out,
	}, nil
}

// ConfigFloat reads a numeric config value with a fallback.
func (b *Base) ConfigFloat(key string, def float64) float64 {
	if v, ok := models.AsFloat(b.Config[key]); ok {
		return v
	}
	return def
}

// RunPipeline runs prepare, model and postprocess in order.
func RunPipeline(ctx context.Context, e Engine, in models.NormalizedInput) (models.EngineOutput, error) {
	prepared, err := e.Prepare(in)
	if err != nil {
		return models.EngineOutput{}, &ComputationError{Engine: e.Name(), Stage: "prepare", Err: err}
	}
	raw, err := e.RunModel(ctx, prepared)
	if err != nil {
		return models.EngineOutput{}, &ComputationError{Engine: e.Name(), Stage: "run_model", Err: err}
	}
	out, err := e.Postprocess(raw)
	if err != nil {
		return models.EngineOutput{}, &ComputationError{Engine: e.Name(), Stage: "postprocess", Err: err}
	}
	return out, nil
}

// Run executes the pipeline under a timeout and never fails: panics, errors and
// timeouts all become an unsuccessful EngineResult. A non-positive timeout
// only honours ctx.
func Run(ctx context.Context, e Engine, in models.NormalizedInput, timeout time.Duration) models.EngineResult {
	start := time.Now()
	meta := models.EngineMeta{Engine: e.Name(), Version: e.Version()}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type outcome struct {
		out models.EngineOutput
		err error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: &ComputationError{
					Engine: e.Name(),
					Stage:  "panic",
					Err:    fmt.Errorf("%v\n%s", r, debug.Stack()),
				}}
			}
		}()
		out, err := RunPipeline(ctx, e, in)
		done <- outcome{out: out, err: err}
	}()

	var res outcome
	select {
	case res = <-done:
		if res.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			res.err = fmt.Errorf("%s: %w: %v", e.Name(), ErrTimeout, res.err)
		}
	case <-ctx.Done():
		res.err = fmt.Errorf("%s: %w: %v", e.Name(), ErrTimeout, ctx.Err())
	}

	meta.Elapsed = time.Since(start)
	if res.err != nil {
		return models.EngineResult{Success: false, Error: res.err.Error(), Meta: meta}
	}
	out := res.out
	return models.EngineResult{Success: true, Data: &out, Meta: meta}
}

func clamp01(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Package fusion combines standardized engine outputs into one FusedSignal.
package fusion

import (
	"sort"

	"TipFusion/internal/domain/models"
	"TipFusion/pkg/util"
)

const (
	defaultConfidence = 0.5
	uniform           = 1.0 / 3.0
)

// Standardize converts a model output into the fixed engine output shape.
// A missing confidence defaults to 0.5; probabilities may stay nil.
func Standardize(engine string, out models.ModelOutput) models.EngineOutput {
	conf := defaultConfidence
	if out.Confidence != nil {
		conf = util.Clip01(*out.Confidence)
	}
	var probs *models.Probabilities
	if out.Probabilities != nil {
		p := *out.Probabilities
		probs = &p
	}
	return models.EngineOutput{Engine: engine, Probabilities: probs, Confidence: conf, Raw: out}
}

// Fallback is the uniform signal used when nothing usable was produced.
func Fallback() models.FusedSignal {
	return models.FusedSignal{
		Probabilities: models.Probabilities{Home: uniform, Draw: uniform, Away: uniform},
		Confidence:    0,
	}
}

// Fuse returns the confidence-weighted average of the engines' probabilities.
// Engines without probabilities or with non-positive confidence are ignored.
// The fused confidence is the plain mean of the contributing engines' confidence
// and the probabilities are renormalized to sum to 1.
func Fuse(outputs map[string]models.EngineOutput) models.FusedSignal {
	if len(outputs) == 0 {
		return Fallback()
	}

	names := make([]string, 0, len(outputs))
	for name := range outputs {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		acc     models.Probabilities
		weight  float64
		confSum float64
		used    []string
	)
	for _, name := range names {
		out := outputs[name]
		c := util.Clip01(out.Confidence)
		if out.Probabilities == nil || c <= 0 {
			continue
		}
		p := out.Probabilities
		acc.Home += util.Clip01(p.Home) * c
		acc.Draw += util.Clip01(p.Draw) * c
		acc.Away += util.Clip01(p.Away) * c
		weight += c
		confSum += c
		used = append(used, name)
	}
	if weight == 0 {
		return Fallback()
	}

	acc.Home /= weight
	acc.Draw /= weight
	acc.Away /= weight

	total := acc.Sum()
	if total <= 0 {
		fb := Fallback()
		fb.Confidence = confSum / float64(len(used))
		fb.Engines = used
		return fb
	}

	return models.FusedSignal{
		Probabilities: models.Probabilities{
			Home: acc.Home / total,
			Draw: acc.Draw / total,
			Away: acc.Away / total,
		},
		Confidence: util.Clip01(confSum / float64(len(used))),
		Engines:    used,
	}
}

// Successful extracts the outputs of successful results, keyed by engine id.
func Successful(results map[string]models.EngineResult) map[string]models.EngineOutput {
	out := make(map[string]models.EngineOutput, len(results))
	for id, r := range results {
		if r.Success && r.Data != nil {
			out[id] = *r.Data
		}
	}
	return out
}

package engines

import "TipFusion/internal/engine"

const (
	MarketID = "market"
	FormID   = "form"
	PriorID  = "prior"
	LiveID   = "live"
	RemoteID = "remote"
)

// RegisterBuiltins adds every built-in engine to r. The remote engine is only
// registered when a service URL is configured.
func RegisterBuiltins(r *engine.Registry, remoteURL string) {
	r.Register(MarketID, NewMarket)
	r.Register(FormID, NewForm)
	r.Register(PriorID, NewPrior)
	r.Register(LiveID, NewLive)
	if remoteURL != "" {
		r.Register(RemoteID, func(cfg map[string]any) (engine.Engine, error) {
			merged := map[string]any{"url": remoteURL}
			for k, v := range cfg {
				merged[k] = v
			}
			return NewRemote(merged)
		})
	}
}

// Batch is the default engine set for pre-match runs.
var Batch = []string{MarketID, FormID, PriorID}

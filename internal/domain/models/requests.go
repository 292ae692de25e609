package models

// Requests for HTTP endpoints. Defined in domain for consistency and reuse.

type DecideRequest struct {
	Event Event         `json:"event" validate:"required"`
	Meta  *MetaDecision `json:"meta,omitempty"`
}

type BatchRequest struct {
	Events []Event       `json:"events" validate:"required,min=1,max=500,dive"`
	Meta   *MetaDecision `json:"meta,omitempty"`
}

type KombiRequest struct {
	Events []Event `json:"events" validate:"required,min=1,max=100,dive"`
}

type SettleRequest struct {
	Pool       string  `param:"pool" validate:"required,oneof=single kombi live"`
	DecisionID string  `json:"decision_id"`
	EventID    string  `json:"event_id" validate:"required"`
	Sport      string  `json:"sport"`
	Won        bool    `json:"won"`
	Stake      float64 `json:"stake" validate:"gt=0"`
	Odds       float64 `json:"odds" validate:"gte=1"`
	Value      float64 `json:"value"`
	Confidence float64 `json:"confidence" validate:"gte=0,lte=1"`
}

type PoolRequest struct {
	Pool string `param:"pool" validate:"required,oneof=single kombi live"`
}

type HistoryRequest struct {
	Pool  string `param:"pool" validate:"required,oneof=single kombi live"`
	From  string `query:"from"`
	To    string `query:"to"`
	Limit int    `query:"limit" default:"100" validate:"gte=1,lte=5000"`
}

type DecisionQuery struct {
	EventID string `query:"event_id"`
	From    string `query:"from"`
	To      string `query:"to"`
	Limit   int    `query:"limit" default:"100" validate:"gte=1,lte=5000"`
}

type RegisterModelRequest struct {
	Name      string   `json:"name" validate:"required"`
	ROI       float64  `json:"roi"`
	Precision *float64 `json:"precision,omitempty" validate:"omitempty,gte=0,lte=1"`
	Drift     float64  `json:"drift" validate:"gte=0"`
	Version   string   `json:"version" default:"1.0"`
	Leagues   []string `json:"leagues,omitempty"`
}

package domain

// Phase is the lifecycle tag of a token, derived from its market rank at
// ingestion. Ticks never change it.
type Phase string

const (
	PhaseNew      Phase = "new"
	PhaseFinal    Phase = "final"
	PhaseMigrated Phase = "migrated"
)

// Direction describes the most recent price movement of a token.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"
)

// Txns holds 24h transaction counts split by side.
type Txns struct {
	Buys  int64 `json:"buys"`
	Sells int64 `json:"sells"`
}

// Total returns buys + sells. Used as the sort value for the txns column.
func (t Txns) Total() int64 {
	return t.Buys + t.Sells
}

// Token is a canonical token record. Identity fields (ID, Name, Symbol,
// AgeMinutes, Phase) are fixed at snapshot ingestion; PriceUsd, MarketCap
// and Volume24h may be overwritten by price updates.
type Token struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Symbol     string `json:"symbol"`
	AgeMinutes int64  `json:"ageMinutes"`
	AvatarURL  string `json:"avatarUrl,omitempty"`
	Phase      Phase  `json:"phase"`

	PriceUsd       float64 `json:"priceUsd"`
	PriceChangePct float64 `json:"priceChangePct"`
	MarketCap      float64 `json:"marketCap"`
	Liquidity      float64 `json:"liquidity"`
	Volume24h      float64 `json:"volume24h"`
	Txns           Txns    `json:"txns"`
	Score          float64 `json:"score"`
}

// TokenRuntime is the per-token live overlay. It tracks the price seen at
// the most recent update so the direction of the next one can be computed.
type TokenRuntime struct {
	LastPriceUsd float64   `json:"lastPriceUsd"`
	Direction    Direction `json:"direction"`
}

// Row pairs a canonical token with its runtime overlay. This is the unit
// the view derivation pipeline operates on.
type Row struct {
	Token   Token        `json:"token"`
	Runtime TokenRuntime `json:"runtime"`
}

// PriceUpdate is a single asynchronous price event for one token.
// MarketCap and Volume24h are optional; nil means "leave unchanged".
type PriceUpdate struct {
	ID        string   `json:"id"`
	PriceUsd  float64  `json:"priceUsd"`
	MarketCap *float64 `json:"marketCap,omitempty"`
	Volume24h *float64 `json:"volume24h,omitempty"`
}

package models

// Holding represents a single enriched token position in a wallet portfolio.
// Holdings are constructed once per analysis from raw chain balances, enriched
// with price and category data, and immutable thereafter.
type Holding struct {
	Symbol             string  `json:"symbol"`
	Name               string  `json:"name"`
	Amount             float64 `json:"amount"`
	ValueUSD           float64 `json:"valueUsd"`
	PercentOfPortfolio float64 `json:"percentOfPortfolio"`
	IsMeme             bool    `json:"isMeme"`
	// SourceAddress is the token contract address (EVM) or mint (Solana), if known
	SourceAddress string `json:"sourceAddress,omitempty"`
}

// RawHolding represents an unenriched token balance as returned by a chain adapter
type RawHolding struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name,omitempty"`
	Amount        float64 `json:"amount"`
	SourceAddress string  `json:"sourceAddress,omitempty"`
}

// TokenInfo represents price and category data for a token as returned by the
// pricing provider
type TokenInfo struct {
	ID       string  `json:"id"`
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	PriceUSD float64 `json:"priceUsd"`
	IsMeme   bool    `json:"isMeme"`
}

// Portfolio aggregates the enriched holdings of one wallet
type Portfolio struct {
	TotalValueUSD     float64   `json:"totalValueUsd"`
	Holdings          []Holding `json:"holdings"`
	TopHoldingPercent float64   `json:"topHoldingPercent"`
}

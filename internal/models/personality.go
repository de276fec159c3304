package models

// Dimension represents one scored personality dimension of a wallet.
// Score is always within [0,100] and always inside the sub-range declared by
// the dimension's category key.
type Dimension struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Emoji       string `json:"emoji"`
	Description string `json:"description"`
	Score       int    `json:"score"`
}

// PersonalityResult bundles the six dimensions plus the three headline tags
type PersonalityResult struct {
	Tags       []string              `json:"tags"`
	Dimensions PersonalityDimensions `json:"dimensions"`
}

// PersonalityDimensions holds the six required dimension instances
type PersonalityDimensions struct {
	TradingStyle    Dimension `json:"tradingStyle"`
	TokenPreference Dimension `json:"tokenPreference"`
	PortfolioSize   Dimension `json:"portfolioSize"`
	PnlStatus       Dimension `json:"pnlStatus"`
	Concentration   Dimension `json:"concentration"`
	WalletAge       Dimension `json:"walletAge"`
}

// AIContent holds the free-text embellishment for an analysis. When the AI
// collaborator fails, both fields are filled with deterministic fallback text.
type AIContent struct {
	Description string `json:"description"`
	RoastLine   string `json:"roastLine"`
}

package models

import "github.com/wallet-fortune/internal/types"

// Stem is one of the ten heavenly stems of the sexagenary calendar cycle
type Stem string

// Branch is one of the twelve earthly branches of the sexagenary calendar cycle
type Branch string

// Element is one of the five symbolic elements used both for calendar pillars
// and for classifying token holdings
type Element string

const (
	Wood  Element = "wood"
	Fire  Element = "fire"
	Earth Element = "earth"
	Metal Element = "metal"
	Water Element = "water"
)

// Pillar is a stem+branch pair representing one temporal unit of the chart
type Pillar struct {
	Stem          Stem    `json:"stem"`
	Branch        Branch  `json:"branch"`
	StemElement   Element `json:"stemElement"`
	BranchElement Element `json:"branchElement"`
	Label         string  `json:"label"`
}

// FourPillarChart is the complete four-pillar chart derived from a timestamp.
// DayMaster always equals the day pillar's stem.
type FourPillarChart struct {
	Year      Pillar `json:"year"`
	Month     Pillar `json:"month"`
	Day       Pillar `json:"day"`
	Hour      Pillar `json:"hour"`
	DayMaster Stem   `json:"dayMaster"`
}

// ElementStats holds element occurrence counts across the chart's eight
// stem/branch slots. The five counts always sum to 8.
type ElementStats struct {
	Counts    map[Element]int `json:"counts"`
	Strongest Element         `json:"strongest"`
	Weakest   Element         `json:"weakest"`
	// Favorable holds the 1-2 balancing elements recommended for the chart
	Favorable []Element `json:"favorable"`
}

// WealthIndicator counts occurrences of the chart's wealth element split by
// slot kind: stem slots count toward Primary, branch slots toward Secondary.
type WealthIndicator struct {
	Primary   int                `json:"primary"`
	Secondary int                `json:"secondary"`
	Status    types.WealthStatus `json:"status"`
}

// ArchetypeResult is the qualitative pattern derived from a chart
type ArchetypeResult struct {
	PatternName     string          `json:"patternName"`
	Description     string          `json:"description"`
	WealthIndicator WealthIndicator `json:"wealthIndicator"`
	StyleAdvice     string          `json:"styleAdvice"`
}

// YearlyForecast is the year-ahead narrative for the configured target year
type YearlyForecast struct {
	Year            int      `json:"year"`
	CyclicLabel     string   `json:"cyclicLabel"`
	Narrative       string   `json:"narrative"`
	Recommendation  string   `json:"recommendation"`
	FavorableMonths []string `json:"favorableMonths"`
}

// HoldingsElements describes how the wallet's holdings map onto the element
// taxonomy, weighted by portfolio percentage
type HoldingsElements struct {
	Weights  map[Element]float64 `json:"weights"`
	TokenMap map[string]Element  `json:"tokenMap"`
	Dominant Element             `json:"dominant"`
}

// Harmony describes the relation between the chart's day-master element and
// the holdings' dominant element
type Harmony struct {
	Relation    string `json:"relation"`
	Score       int    `json:"score"`
	Description string `json:"description"`
}

// BaziResult bundles the complete chart reading for one wallet
type BaziResult struct {
	Chart     FourPillarChart  `json:"chart"`
	Elements  ElementStats     `json:"elements"`
	Archetype ArchetypeResult  `json:"archetype"`
	Forecast  YearlyForecast   `json:"forecast"`
	Holdings  HoldingsElements `json:"holdings"`
	Harmony   Harmony          `json:"harmony"`
}

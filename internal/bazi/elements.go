package bazi

import (
	"strings"

	"github.com/wallet-fortune/internal/models"
)

// elementOrder fixes iteration order for deterministic strongest/weakest
// tie-breaking
var elementOrder = [5]models.Element{
	models.Metal, models.Wood, models.Water, models.Fire, models.Earth,
}

// generates maps each element to the element that produces it in the fixed
// production cycle (water->wood->fire->earth->metal->water)
var generates = map[models.Element]models.Element{
	models.Wood:  models.Water,
	models.Fire:  models.Wood,
	models.Earth: models.Fire,
	models.Metal: models.Earth,
	models.Water: models.Metal,
}

// dominatedBy maps each element to the element that overcomes it in the fixed
// domination cycle (water->fire->metal->wood->earth->water)
var dominatedBy = map[models.Element]models.Element{
	models.Fire:  models.Water,
	models.Metal: models.Fire,
	models.Wood:  models.Metal,
	models.Earth: models.Wood,
	models.Water: models.Earth,
}

// dominates maps each element to the element it overcomes
var dominates = map[models.Element]models.Element{
	models.Fire:  models.Metal,
	models.Metal: models.Wood,
	models.Wood:  models.Earth,
	models.Earth: models.Water,
	models.Water: models.Fire,
}

// Generator returns the element that produces e in the production cycle
func Generator(e models.Element) models.Element {
	return generates[e]
}

// Dominates returns the element that e overcomes in the domination cycle.
// This is the wealth element when e is the day-master's element.
func Dominates(e models.Element) models.Element {
	return dominates[e]
}

// Overcomer returns the element that overcomes e in the domination cycle
func Overcomer(e models.Element) models.Element {
	return dominatedBy[e]
}

// AnalyzeChart counts element occurrences across the chart's eight stem and
// branch slots and derives the strongest, weakest and favorable elements.
// The five counts always sum to 8.
func AnalyzeChart(chart models.FourPillarChart) models.ElementStats {
	counts := map[models.Element]int{
		models.Metal: 0, models.Wood: 0, models.Water: 0,
		models.Fire: 0, models.Earth: 0,
	}

	for _, p := range []models.Pillar{chart.Year, chart.Month, chart.Day, chart.Hour} {
		counts[p.StemElement]++
		counts[p.BranchElement]++
	}

	strongest := elementOrder[0]
	weakest := elementOrder[0]
	for _, e := range elementOrder {
		if counts[e] > counts[strongest] {
			strongest = e
		}
		if counts[e] < counts[weakest] {
			weakest = e
		}
	}

	return models.ElementStats{
		Counts:    counts,
		Strongest: strongest,
		Weakest:   weakest,
		Favorable: favorableElements(counts, weakest, strongest),
	}
}

// favorableElements picks the balancing elements: every missing element if any
// count is zero, otherwise the weakest element, its generator, and the
// overcomer of the strongest element, capped at two.
func favorableElements(counts map[models.Element]int, weakest, strongest models.Element) []models.Element {
	var missing []models.Element
	for _, e := range elementOrder {
		if counts[e] == 0 {
			missing = append(missing, e)
		}
	}
	if len(missing) > 0 {
		return missing
	}

	result := []models.Element{weakest}
	if gen := generates[weakest]; gen != weakest {
		result = append(result, gen)
	}
	if over := dominatedBy[strongest]; len(result) < 2 && !containsElement(result, over) {
		result = append(result, over)
	}
	if len(result) > 2 {
		result = result[:2]
	}
	return result
}

func containsElement(list []models.Element, e models.Element) bool {
	for _, x := range list {
		if x == e {
			return true
		}
	}
	return false
}

// Fixed symbol classification tables for the token-to-element mapping
var (
	majorSymbols = map[string]bool{
		"BTC": true, "WBTC": true, "ETH": true, "WETH": true,
	}
	stableSymbols = map[string]bool{
		"USDT": true, "USDC": true, "DAI": true, "BUSD": true, "FDUSD": true,
	}
	memeSymbols = map[string]bool{
		"DOGE": true, "SHIB": true, "PEPE": true, "FLOKI": true, "BONK": true,
	}
	layer1Symbols = map[string]bool{
		"SOL": true, "AVAX": true, "MATIC": true, "POL": true, "ADA": true,
		"DOT": true, "ATOM": true, "NEAR": true, "FTM": true, "ALGO": true,
	}
	defiSymbols = map[string]bool{
		"AAVE": true, "UNI": true, "SUSHI": true, "CRV": true, "MKR": true,
		"COMP": true, "SNX": true, "LINK": true, "LDO": true, "RPL": true,
	}
)

// MapTokenElement maps a holding to one of the five elements. Every holding
// gets an element: the keyword tables are tried first, then portfolio-weight
// thresholds, then a hash of the symbol's first byte.
func MapTokenElement(h models.Holding) models.Element {
	symbol := strings.ToUpper(h.Symbol)

	switch {
	case majorSymbols[symbol]:
		return models.Metal
	case stableSymbols[symbol]:
		return models.Water
	case h.IsMeme || memeSymbols[symbol]:
		return models.Fire
	case layer1Symbols[symbol]:
		return models.Wood
	case defiSymbols[symbol]:
		return models.Earth
	}

	// Heavy positions read as stored wealth, dust as liquidity
	if h.PercentOfPortfolio > 30 {
		return models.Metal
	}
	if h.PercentOfPortfolio < 5 {
		return models.Water
	}

	if symbol == "" {
		return elementOrder[0]
	}
	return elementOrder[int(symbol[0])%5]
}

// AnalyzeHoldings maps every holding onto the element taxonomy, accumulating
// portfolio-percentage weight per element, and picks the dominant element.
func AnalyzeHoldings(holdings []models.Holding) models.HoldingsElements {
	weights := map[models.Element]float64{
		models.Metal: 0, models.Wood: 0, models.Water: 0,
		models.Fire: 0, models.Earth: 0,
	}
	tokenMap := make(map[string]models.Element, len(holdings))

	for _, h := range holdings {
		e := MapTokenElement(h)
		tokenMap[h.Symbol] = e
		weights[e] += h.PercentOfPortfolio
	}

	dominant := elementOrder[0]
	max := 0.0
	for _, e := range elementOrder {
		if weights[e] > max {
			max = weights[e]
			dominant = e
		}
	}

	return models.HoldingsElements{
		Weights:  weights,
		TokenMap: tokenMap,
		Dominant: dominant,
	}
}

// Harmony relation names
const (
	RelationGenerates = "generates"
	RelationOvercomes = "overcomes"
	RelationSame      = "same"
	RelationNeutral   = "neutral"
)

// AnalyzeHarmony describes the relation between the day-master's element and
// the holdings' dominant element, with a fixed score per relation kind.
func AnalyzeHarmony(dayMaster models.Stem, holdingsElement models.Element) models.Harmony {
	self := stemElements[dayMaster]

	switch {
	case holdingsElement == self:
		return models.Harmony{
			Relation:    RelationSame,
			Score:       70,
			Description: "Your holdings share your chart's element: steady, but short on fresh momentum.",
		}
	case holdingsElement == generates[self]:
		return models.Harmony{
			Relation:    RelationGenerates,
			Score:       85,
			Description: "Your holdings feed your chart's element: positions work in your favor.",
		}
	case generates[holdingsElement] == self:
		return models.Harmony{
			Relation:    RelationGenerates,
			Score:       75,
			Description: "Your chart feeds your holdings: effort-heavy, but the effort pays.",
		}
	case holdingsElement == dominatedBy[self]:
		return models.Harmony{
			Relation:    RelationOvercomes,
			Score:       45,
			Description: "Your holdings press against your chart's element: expect friction.",
		}
	case dominatedBy[holdingsElement] == self:
		return models.Harmony{
			Relation:    RelationOvercomes,
			Score:       60,
			Description: "Your chart holds the upper hand over your bags: control, with caution.",
		}
	}

	return models.Harmony{
		Relation:    RelationNeutral,
		Score:       65,
		Description: "Holdings and chart sit side by side: neither help nor hindrance.",
	}
}

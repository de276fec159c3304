package bazi

import (
	"github.com/wallet-fortune/internal/models"
	"github.com/wallet-fortune/internal/types"
)

// Wealth status thresholds over primary+secondary occurrence counts
const (
	wealthStrongThreshold = 3
	wealthWeakThreshold   = 1
)

// Pattern names, ordered by the priority chain that selects them
const (
	PatternHeavyWealth   = "Heavy Wealth, Light Self"
	PatternBalanced      = "Self and Wealth in Balance"
	PatternDominantSelf  = "Dominant Self"
	PatternOutputWealth  = "Output Feeds Wealth"
	PatternSteadyWealth  = "Steady Wealth"
	PatternWindfall      = "Windfall Wealth"
	PatternPeerSupport   = "Peer Support"
	PatternEvenKeel      = "Even Keel"
)

var patternDescriptions = map[string]string{
	PatternHeavyWealth:  "Wealth stars crowd your chart, but your own pillar runs thin. Opportunities abound; pick few, and pick carefully.",
	PatternBalanced:     "Self and wealth sit in balance. Steady hands, measured moves, and fortune flows on schedule.",
	PatternDominantSelf: "Your own element rules the chart. Decisive, forceful, built for conviction bets.",
	PatternOutputWealth: "Talent turns to treasure. A sharp eye for openings and the flexibility to ride them.",
	PatternSteadyWealth: "Grounded and patient, favoring dependable returns. Long-horizon positions compound quietly in your favor.",
	PatternWindfall:     "An opportunist's chart. Short windows, quick strikes, outsized swings both ways.",
	PatternPeerSupport:  "No wealth star in sight, but allies everywhere. Ride the crowd's conviction and borrow its momentum.",
	PatternEvenKeel:     "A level chart with no strong pull. Spread wide, follow the current, take what the market gives.",
}

// Analyze derives the archetype for a chart: wealth-indicator counts, status,
// the pattern selected by the priority chain, and style advice.
func Analyze(chart models.FourPillarChart, stats models.ElementStats) models.ArchetypeResult {
	self := stemElements[chart.DayMaster]
	wealthElement := dominates[self]

	primary, secondary := countWealth(chart, wealthElement)
	total := primary + secondary

	status := types.WealthBalanced
	if total >= wealthStrongThreshold {
		status = types.WealthStrong
	} else if total <= wealthWeakThreshold {
		status = types.WealthWeak
	}

	pattern := selectPattern(self, stats, primary, secondary)

	return models.ArchetypeResult{
		PatternName: pattern,
		Description: patternDescriptions[pattern],
		WealthIndicator: models.WealthIndicator{
			Primary:   primary,
			Secondary: secondary,
			Status:    status,
		},
		StyleAdvice: styleAdvice(pattern, status),
	}
}

// countWealth counts wealth-element occurrences split by slot kind: stem slots
// toward primary, branch slots toward secondary. This is a simplification of
// the traditional sub-classification and is preserved as-is.
func countWealth(chart models.FourPillarChart, wealth models.Element) (primary, secondary int) {
	for _, p := range []models.Pillar{chart.Year, chart.Month, chart.Day, chart.Hour} {
		if p.StemElement == wealth {
			primary++
		}
		if p.BranchElement == wealth {
			secondary++
		}
	}
	return primary, secondary
}

// selectPattern evaluates the fixed priority chain top-down; the first
// matching rule wins.
func selectPattern(self models.Element, stats models.ElementStats, primary, secondary int) string {
	total := primary + secondary

	switch {
	case total >= 3 && stats.Counts[self] <= 2:
		return PatternHeavyWealth
	case total >= 2 && stats.Counts[self] >= 2:
		return PatternBalanced
	case stats.Strongest == self && stats.Counts[self] >= 4:
		return PatternDominantSelf
	case total >= 2:
		return PatternOutputWealth
	case primary > secondary && primary >= 1:
		return PatternSteadyWealth
	case secondary > primary && secondary >= 1:
		return PatternWindfall
	case total == 0:
		return PatternPeerSupport
	}
	return PatternEvenKeel
}

func styleAdvice(pattern string, status types.WealthStatus) string {
	switch status {
	case types.WealthStrong:
		if pattern == PatternHeavyWealth {
			return "Fortune is generous but your capacity is not. Small tickets, many baskets, and never all-in."
		}
		return "Wealth stars are burning bright. Lean in, stay with the majors, and add on strength."
	case types.WealthWeak:
		return "The wealth star runs dim. Defense first: hold the blue chips and wait for your window."
	}
	return "Fortune runs level. Trade with the trend, size with discipline, and favor the sure thing."
}

// ForecastTable carries the curated per-year forecast data. The cyclic label
// and texts are year-specific and manually maintained; a new table must be
// supplied when the target year rolls over.
type ForecastTable struct {
	Year            int
	CyclicLabel     string
	Narratives      map[models.Element]string
	Recommendations map[models.Element]string
	FavorableMonths map[models.Element][]string
}

// recommendationPriority fixes which favorable element drives the yearly
// recommendation when several are present
var recommendationPriority = [4]models.Element{
	models.Fire, models.Wood, models.Metal, models.Water,
}

// DefaultForecastTable returns the built-in table for the yi-si year 2025
func DefaultForecastTable() ForecastTable {
	return ForecastTable{
		Year:        2025,
		CyclicLabel: "yi-si",
		Narratives: map[models.Element]string{
			models.Wood:  "In the yi-si year wood feeds fire, and the flame favors your chart. A fresh wave may be building: memes and young chains could run. Ride it while it lasts.",
			models.Fire:  "In the yi-si year wood feeds fire, and the flame favors your chart. A fresh wave may be building: memes and young chains could run. Ride it while it lasts.",
			models.Metal: "In the yi-si year fire presses hard on metal. Expect headwinds: avoid chasing tops, keep risk tight, and let better entries come to you.",
			models.Water: "In the yi-si year fire runs hot and water runs low. Keep a low profile: stay liquid, trim exposure, and watch from the shore.",
			models.Earth: "In the yi-si year fire feeds earth, and your footing is firm. Build positions in yield and staking plays; slow accumulation wins this one.",
		},
		Recommendations: map[models.Element]string{
			models.Fire:  "The year favors the hot sectors: meme plays, emerging layer-1s, AI narratives. Lean with the trend and participate.",
			models.Wood:  "The year favors the hot sectors: meme plays, emerging layer-1s, AI narratives. Lean with the trend and participate.",
			models.Metal: "Fire presses metal this year. Anchor the portfolio with BTC and ETH, skip the lottery tickets, and protect the base.",
			models.Water: "Fire runs over water this year. Raise the stablecoin allocation, stay nimble, and let patience be the position.",
			models.Earth: "Fire feeds earth this year. Put capital to work in DeFi staking for steady yield and let the pile grow quietly.",
		},
		FavorableMonths: map[models.Element][]string{
			models.Wood:  {"February", "March", "August"},
			models.Fire:  {"May", "June", "July"},
			models.Earth: {"April", "July", "October"},
			models.Metal: {"August", "September", "October"},
			models.Water: {"November", "December", "January"},
		},
	}
}

// ForecastTableForYear retargets the default table at the given calendar
// year. Only the year and cyclic label change: the narratives and
// recommendations are curated per-year and stay on the default year's set
// until a matching table is written, so callers overriding the year should
// surface that the prose is stale.
func ForecastTableForYear(year int) ForecastTable {
	table := DefaultForecastTable()
	if year == 0 || year == table.Year {
		return table
	}
	_, _, label := YearCyclic(year)
	table.Year = year
	table.CyclicLabel = label
	return table
}

// Forecast derives the year-ahead reading for the table's target year from
// the day-master's element and the chart's favorable elements.
func Forecast(chart models.FourPillarChart, stats models.ElementStats, table ForecastTable) models.YearlyForecast {
	self := stemElements[chart.DayMaster]

	recommendation := table.Recommendations[models.Earth]
	for _, e := range recommendationPriority {
		if containsElement(stats.Favorable, e) {
			recommendation = table.Recommendations[e]
			break
		}
	}

	months := table.FavorableMonths[self]
	if len(months) == 0 {
		months = []string{"steady all year"}
	}

	return models.YearlyForecast{
		Year:            table.Year,
		CyclicLabel:     table.CyclicLabel,
		Narrative:       table.Narratives[self],
		Recommendation:  recommendation,
		FavorableMonths: months,
	}
}

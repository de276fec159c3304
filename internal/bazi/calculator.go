// Package bazi implements the four-pillar chart calculator and its derived
// elemental and pattern analysis. All functions are pure and deterministic:
// identical timestamps always produce identical charts.
package bazi

import (
	"fmt"
	"math"
	"time"

	"github.com/wallet-fortune/internal/models"
)

// The ten heavenly stems, in cycle order
const (
	StemJia  models.Stem = "jia"
	StemYi   models.Stem = "yi"
	StemBing models.Stem = "bing"
	StemDing models.Stem = "ding"
	StemWu   models.Stem = "wu"
	StemJi   models.Stem = "ji"
	StemGeng models.Stem = "geng"
	StemXin  models.Stem = "xin"
	StemRen  models.Stem = "ren"
	StemGui  models.Stem = "gui"
)

// The twelve earthly branches, in cycle order
const (
	BranchZi   models.Branch = "zi"
	BranchChou models.Branch = "chou"
	BranchYin  models.Branch = "yin"
	BranchMao  models.Branch = "mao"
	BranchChen models.Branch = "chen"
	BranchSi   models.Branch = "si"
	BranchWu   models.Branch = "wu"
	BranchWei  models.Branch = "wei"
	BranchShen models.Branch = "shen"
	BranchYou  models.Branch = "you"
	BranchXu   models.Branch = "xu"
	BranchHai  models.Branch = "hai"
)

// stems and branches index the two cycles in order
var stems = [10]models.Stem{
	StemJia, StemYi, StemBing, StemDing, StemWu,
	StemJi, StemGeng, StemXin, StemRen, StemGui,
}

var branches = [12]models.Branch{
	BranchZi, BranchChou, BranchYin, BranchMao, BranchChen, BranchSi,
	BranchWu, BranchWei, BranchShen, BranchYou, BranchXu, BranchHai,
}

// stemElements maps each stem to its fixed element
var stemElements = map[models.Stem]models.Element{
	StemJia: models.Wood, StemYi: models.Wood,
	StemBing: models.Fire, StemDing: models.Fire,
	StemWu: models.Earth, StemJi: models.Earth,
	StemGeng: models.Metal, StemXin: models.Metal,
	StemRen: models.Water, StemGui: models.Water,
}

// branchElements maps each branch to its fixed element
var branchElements = map[models.Branch]models.Element{
	BranchZi: models.Water, BranchChou: models.Earth,
	BranchYin: models.Wood, BranchMao: models.Wood,
	BranchChen: models.Earth, BranchSi: models.Fire,
	BranchWu: models.Fire, BranchWei: models.Earth,
	BranchShen: models.Metal, BranchYou: models.Metal,
	BranchXu: models.Earth, BranchHai: models.Water,
}

// monthStemTable is the "five tigers" rule: the stem of each calendar month
// looked up by the year's stem. Rows are indexed month 1..12.
var monthStemTable = map[models.Stem][12]models.Stem{
	StemJia:  {StemBing, StemDing, StemWu, StemJi, StemGeng, StemXin, StemRen, StemGui, StemJia, StemYi, StemBing, StemDing},
	StemYi:   {StemBing, StemDing, StemWu, StemJi, StemGeng, StemXin, StemRen, StemGui, StemJia, StemYi, StemBing, StemDing},
	StemBing: {StemWu, StemJi, StemGeng, StemXin, StemRen, StemGui, StemJia, StemYi, StemBing, StemDing, StemWu, StemJi},
	StemDing: {StemWu, StemJi, StemGeng, StemXin, StemRen, StemGui, StemJia, StemYi, StemBing, StemDing, StemWu, StemJi},
	StemWu:   {StemGeng, StemXin, StemRen, StemGui, StemJia, StemYi, StemBing, StemDing, StemWu, StemJi, StemGeng, StemXin},
	StemJi:   {StemGeng, StemXin, StemRen, StemGui, StemJia, StemYi, StemBing, StemDing, StemWu, StemJi, StemGeng, StemXin},
	StemGeng: {StemRen, StemGui, StemJia, StemYi, StemBing, StemDing, StemWu, StemJi, StemGeng, StemXin, StemRen, StemGui},
	StemXin:  {StemRen, StemGui, StemJia, StemYi, StemBing, StemDing, StemWu, StemJi, StemGeng, StemXin, StemRen, StemGui},
	StemRen:  {StemJia, StemYi, StemBing, StemDing, StemWu, StemJi, StemGeng, StemXin, StemRen, StemGui, StemJia, StemYi},
	StemGui:  {StemJia, StemYi, StemBing, StemDing, StemWu, StemJi, StemGeng, StemXin, StemRen, StemGui, StemJia, StemYi},
}

// hourStemTable is the "five rats" rule: the stem of each two-hour period
// looked up by the day's stem. Rows are indexed by hour-branch position.
var hourStemTable = map[models.Stem][12]models.Stem{
	StemJia:  {StemJia, StemYi, StemBing, StemDing, StemWu, StemJi, StemGeng, StemXin, StemRen, StemGui, StemJia, StemYi},
	StemYi:   {StemJia, StemYi, StemBing, StemDing, StemWu, StemJi, StemGeng, StemXin, StemRen, StemGui, StemJia, StemYi},
	StemBing: {StemBing, StemDing, StemWu, StemJi, StemGeng, StemXin, StemRen, StemGui, StemJia, StemYi, StemBing, StemDing},
	StemDing: {StemBing, StemDing, StemWu, StemJi, StemGeng, StemXin, StemRen, StemGui, StemJia, StemYi, StemBing, StemDing},
	StemWu:   {StemWu, StemJi, StemGeng, StemXin, StemRen, StemGui, StemJia, StemYi, StemBing, StemDing, StemWu, StemJi},
	StemJi:   {StemWu, StemJi, StemGeng, StemXin, StemRen, StemGui, StemJia, StemYi, StemBing, StemDing, StemWu, StemJi},
	StemGeng: {StemGeng, StemXin, StemRen, StemGui, StemJia, StemYi, StemBing, StemDing, StemWu, StemJi, StemGeng, StemXin},
	StemXin:  {StemGeng, StemXin, StemRen, StemGui, StemJia, StemYi, StemBing, StemDing, StemWu, StemJi, StemGeng, StemXin},
	StemRen:  {StemRen, StemGui, StemJia, StemYi, StemBing, StemDing, StemWu, StemJi, StemGeng, StemXin, StemRen, StemGui},
	StemGui:  {StemRen, StemGui, StemJia, StemYi, StemBing, StemDing, StemWu, StemJi, StemGeng, StemXin, StemRen, StemGui},
}

// referenceYear is a known cycle-zero (jia-zi) year
const referenceYear = 1984

// Day pillar reference: 2000-01-01 UTC is a geng-chen day (stem index 6,
// branch index 4).
var dayReference = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

const (
	dayReferenceStemIndex   = 6
	dayReferenceBranchIndex = 4
)

// StemElement returns the fixed element of a stem
func StemElement(s models.Stem) models.Element {
	return stemElements[s]
}

// BranchElement returns the fixed element of a branch
func BranchElement(b models.Branch) models.Element {
	return branchElements[b]
}

// Calculate derives the full four-pillar chart for a timestamp. The timestamp
// is interpreted in UTC. The month pillar uses calendar-month boundaries
// rather than solar terms; this is a documented simplification of the
// traditional method and downstream narrative text is tuned against it, so it
// must not be corrected.
func Calculate(t time.Time) models.FourPillarChart {
	t = t.UTC()

	yearStem, yearBranch := yearCycle(t.Year())
	year := newPillar(yearStem, yearBranch)

	monthStem, monthBranch := monthCycle(int(t.Month()), yearStem)
	month := newPillar(monthStem, monthBranch)

	dayStem, dayBranch := dayCycle(t)
	day := newPillar(dayStem, dayBranch)

	hourStem, hourBranch := hourCycle(t.Hour(), dayStem)
	hour := newPillar(hourStem, hourBranch)

	return models.FourPillarChart{
		Year:      year,
		Month:     month,
		Day:       day,
		Hour:      hour,
		DayMaster: dayStem,
	}
}

// YearCyclic returns the stem, branch and combined label for a calendar year
func YearCyclic(year int) (models.Stem, models.Branch, string) {
	stem, branch := yearCycle(year)
	return stem, branch, fmt.Sprintf("%s-%s", stem, branch)
}

func newPillar(s models.Stem, b models.Branch) models.Pillar {
	return models.Pillar{
		Stem:          s,
		Branch:        b,
		StemElement:   stemElements[s],
		BranchElement: branchElements[b],
		Label:         fmt.Sprintf("%s-%s", s, b),
	}
}

func yearCycle(year int) (models.Stem, models.Branch) {
	offset := (year - referenceYear) % 60
	return stems[mod(offset, 10)], branches[mod(offset, 12)]
}

// monthCycle maps calendar month 1 to the yin branch, 2 to mao, and so on.
// The stem comes from the five-tigers table keyed by the year stem.
func monthCycle(month int, yearStem models.Stem) (models.Stem, models.Branch) {
	branch := branches[(month+1)%12]
	stem := monthStemTable[yearStem][month-1]
	return stem, branch
}

// dayCycle offsets whole days from the fixed reference date
func dayCycle(t time.Time) (models.Stem, models.Branch) {
	days := int(math.Floor(t.Sub(dayReference).Hours() / 24))
	stem := stems[mod(dayReferenceStemIndex+days, 10)]
	branch := branches[mod(dayReferenceBranchIndex+days, 12)]
	return stem, branch
}

// hourCycle buckets the 24 hours into twelve two-hour branches, with
// 23:00-00:59 as the zi period. The stem comes from the five-rats table keyed
// by the day stem.
func hourCycle(hour int, dayStem models.Stem) (models.Stem, models.Branch) {
	idx := ((hour + 1) / 2) % 12
	return hourStemTable[dayStem][idx], branches[idx]
}

func mod(n, m int) int {
	r := n % m
	if r < 0 {
		r += m
	}
	return r
}

// Package severity scores region conditions and state crises, and rolls
// them up into the dashboard summary figures.
package severity

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/mr1hm/go-crisis-response/internal/models"
)

const (
	LevelUnknown  = -1
	LevelStable   = 0
	LevelModerate = 1
	LevelPoor     = 2
	LevelCritical = 3
)

// Level maps a condition word to its ordinal. "adequate" reads as stable
// and "limited" as poor, as they do for resources.
func Level(condition string) int {
	switch strings.ToLower(strings.TrimSpace(condition)) {
	case "stable", "adequate", "available":
		return LevelStable
	case "moderate":
		return LevelModerate
	case "poor", "limited":
		return LevelPoor
	case "critical", "unavailable":
		return LevelCritical
	default:
		return LevelUnknown
	}
}

type Trend string

const (
	TrendUp      Trend = "up"
	TrendFlat    Trend = "flat"
	TrendDown    Trend = "down"
	TrendUnknown Trend = "unknown"
)

func TrendOf(condition string) Trend {
	switch Level(condition) {
	case LevelCritical, LevelPoor:
		return TrendDown
	case LevelModerate:
		return TrendFlat
	case LevelStable:
		return TrendUp
	default:
		return TrendUnknown
	}
}

// RegionScore is the worst indicator level of the region.
func RegionScore(r models.RegionOverview) int {
	worst := LevelUnknown
	for _, ind := range r.Indicators {
		worst = max(worst, Level(ind.Level))
	}
	return worst
}

// StateScore is the highest crisis severity reported for the state, or
// zero when none are listed.
func StateScore(s models.StateDetail) int {
	score := 0
	for _, c := range s.Crises {
		score = max(score, c.Severity)
	}
	return score
}

type Summary struct {
	Scope           models.Scope `json:"scope"`
	TotalPopulation string       `json:"total_population"`
	PopulationCount float64      `json:"population_count"`
	ActiveAlerts    int          `json:"active_alerts"`
	CriticalAreas   int          `json:"critical_areas"`
	StableRegions   int          `json:"stable_regions"`
	UnparsedRegions []string     `json:"unparsed_regions,omitempty"`
}

// Summarize rolls a set of regions into the headline numbers of a view.
// Regions whose population string cannot be parsed are listed rather than
// silently counted as zero.
func Summarize(scope models.Scope, regions []models.RegionOverview) Summary {
	s := Summary{Scope: scope}
	for _, r := range regions {
		if n, err := ParsePopulation(r.Population); err == nil {
			s.PopulationCount += n
		} else {
			s.UnparsedRegions = append(s.UnparsedRegions, r.Name)
		}

		s.ActiveAlerts += r.Alerts

		switch score := RegionScore(r); {
		case score >= LevelPoor:
			s.CriticalAreas++
		case score == LevelStable:
			s.StableRegions++
		}
	}
	s.TotalPopulation = FormatPopulation(s.PopulationCount)
	return s
}

// populationSuffixes maps the count suffixes used in population strings
// to SI prefixes. Case is ignored, so "44m" is millions, not milli.
var populationSuffixes = map[string]string{
	"k": "k",
	"m": "M",
	"b": "G",
}

// ParsePopulation reads strings like "44M", "2.1m", "500K" or "1.4B".
func ParsePopulation(s string) (float64, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, fmt.Errorf("empty population")
	}
	last := strings.ToLower(raw[len(raw)-1:])
	if prefix, ok := populationSuffixes[last]; ok {
		raw = raw[:len(raw)-1] + prefix
	} else if last < "0" || last > "9" {
		return 0, fmt.Errorf("unexpected suffix %q in population %q", last, s)
	}

	n, unit, err := humanize.ParseSI(raw)
	if err != nil {
		return 0, fmt.Errorf("error parsing population %q: %w", s, err)
	}
	if unit != "" {
		return 0, fmt.Errorf("unexpected unit %q in population %q", unit, s)
	}
	return n, nil
}

var displaySuffixes = strings.NewReplacer("k", "K", "G", "B", " ", "")

// FormatPopulation renders a count the way the dashboards show it ("6.6M",
// "1.4B").
func FormatPopulation(n float64) string {
	return displaySuffixes.Replace(humanize.SIWithDigits(n, 1, ""))
}

// FundingTotal sums the parseable funding amounts of the items. Amounts
// may carry a leading currency sign, thousands separators and a K/M/B
// suffix. Items with no or unreadable funding are skipped and counted.
func FundingTotal(items []models.AidItem) (total decimal.Decimal, skipped int) {
	for _, item := range items {
		amount, err := ParseAmount(item.Funding)
		if err != nil {
			skipped++
			continue
		}
		total = total.Add(amount)
	}
	return total, skipped
}

var amountSuffixes = map[byte]int64{
	'k': 1_000,
	'm': 1_000_000,
	'b': 1_000_000_000,
}

func ParseAmount(s string) (decimal.Decimal, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	raw = strings.TrimPrefix(raw, "$")
	raw = strings.ReplaceAll(raw, ",", "")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	multiplier := int64(1)
	if m, ok := amountSuffixes[raw[len(raw)-1]]; ok {
		multiplier = m
		raw = strings.TrimSpace(raw[:len(raw)-1])
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("error parsing amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative amount %q", s)
	}
	return d.Mul(decimal.NewFromInt(multiplier)), nil
}

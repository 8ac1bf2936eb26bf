package services

import (
	"fmt"
	"strings"
)

// Metric keys. These are the map keys of ScoreReport.Metrics and the
// recognized keys of FinancialSnapshot.ManualOverrides, so they are part of
// the observable contract.
const (
	MetricEPSGrowth5Y        = "epsGrowth5y"
	MetricEPSGrowthNext1Y    = "epsGrowthNext1y"
	MetricRevenueGrowth5Y    = "revenueGrowth5y"
	MetricROE                = "roe"
	MetricROIC               = "roic"
	MetricPERatio            = "peRatio"
	MetricForwardPE          = "forwardPe"
	MetricPEGRatio           = "pegRatio"
	MetricPSRatio            = "psRatio"
	MetricPriceToFCF         = "priceToFcf"
	MetricDebtToEquity       = "debtToEquity"
	MetricInterestCoverage   = "interestCoverage"
	MetricProfitableYears    = "profitableYears"
	MetricRevGrowthStability = "revGrowthStability"
	MetricQuarterlyProgress  = "quarterlyProgress"
	MetricDividendYield      = "dividendYield"
	MetricPayoutRatio        = "payoutRatio"
	MetricDividendGrowth5Y   = "dividendGrowth5y"
	MetricFCFPayoutRatio     = "fcfPayoutRatio"
)

// Display formats for metric values.
const (
	FormatPercent = "percent"
	FormatRatio   = "ratio"
	FormatNumber  = "number"
	FormatDecimal = "decimal"
)

// MetricSpec describes one metric inside a profile. A nil Weight marks the
// metric as display-only: it is computed and interpreted but never counted
// toward the composite score.
type MetricSpec struct {
	Key    string
	Label  string
	Format string
	Weight *float64
}

// Profile is the descriptor that parameterizes the scoring engine. The three
// scorecard flavors differ only in their metric tables and in which calendar
// year they read analyst estimates from; EstimateYearOffset makes that choice
// explicit instead of an accidental divergence (0 = current year, 1 = next).
type Profile struct {
	Name               string
	EstimateYearOffset int
	Metrics            []MetricSpec
}

// Profile names.
const (
	ProfileGARP     = "garp"
	ProfileQARP     = "qarp"
	ProfileDividend = "dividend"
)

func weight(w float64) *float64 { return &w }

var garpProfile = Profile{
	Name:               ProfileGARP,
	EstimateYearOffset: 1,
	Metrics: []MetricSpec{
		{Key: MetricEPSGrowth5Y, Label: "EPS Growth (5Y)", Format: FormatPercent, Weight: weight(1.5)},
		{Key: MetricEPSGrowthNext1Y, Label: "EPS Growth (Next 1Y)", Format: FormatPercent, Weight: weight(1.0)},
		{Key: MetricRevenueGrowth5Y, Label: "Revenue Growth (5Y)", Format: FormatPercent, Weight: weight(1.0)},
		{Key: MetricROE, Label: "Return on Equity", Format: FormatPercent, Weight: weight(1.25)},
		{Key: MetricROIC, Label: "Return on Invested Capital", Format: FormatPercent, Weight: weight(1.25)},
		{Key: MetricForwardPE, Label: "Forward P/E", Format: FormatRatio, Weight: weight(1.0)},
		{Key: MetricPEGRatio, Label: "PEG Ratio", Format: FormatRatio, Weight: weight(1.5)},
		{Key: MetricPSRatio, Label: "P/S Ratio", Format: FormatRatio, Weight: weight(0.5)},
		{Key: MetricPriceToFCF, Label: "Price to FCF", Format: FormatRatio, Weight: weight(1.0)},
		{Key: MetricDebtToEquity, Label: "Debt to Equity", Format: FormatRatio, Weight: weight(1.0)},
		{Key: MetricInterestCoverage, Label: "Interest Coverage", Format: FormatNumber, Weight: weight(0.5)},
		{Key: MetricPERatio, Label: "P/E (TTM)", Format: FormatRatio},
	},
}

var qarpProfile = Profile{
	Name:               ProfileQARP,
	EstimateYearOffset: 0,
	Metrics: []MetricSpec{
		{Key: MetricEPSGrowth5Y, Label: "EPS Growth (5Y)", Format: FormatPercent, Weight: weight(1.0)},
		{Key: MetricEPSGrowthNext1Y, Label: "EPS Growth (Next 1Y)", Format: FormatPercent, Weight: weight(1.0)},
		{Key: MetricRevenueGrowth5Y, Label: "Revenue Growth (5Y)", Format: FormatPercent, Weight: weight(0.75)},
		{Key: MetricROE, Label: "Return on Equity", Format: FormatPercent, Weight: weight(1.5)},
		{Key: MetricROIC, Label: "Return on Invested Capital", Format: FormatPercent, Weight: weight(1.5)},
		{Key: MetricForwardPE, Label: "Forward P/E", Format: FormatRatio, Weight: weight(1.0)},
		{Key: MetricPEGRatio, Label: "PEG Ratio", Format: FormatRatio, Weight: weight(1.0)},
		{Key: MetricPSRatio, Label: "P/S Ratio", Format: FormatRatio, Weight: weight(0.5)},
		{Key: MetricPriceToFCF, Label: "Price to FCF", Format: FormatRatio, Weight: weight(1.0)},
		{Key: MetricDebtToEquity, Label: "Debt to Equity", Format: FormatRatio, Weight: weight(1.0)},
		{Key: MetricInterestCoverage, Label: "Interest Coverage", Format: FormatNumber, Weight: weight(0.75)},
		{Key: MetricProfitableYears, Label: "Profitable Years (5Y)", Format: FormatNumber, Weight: weight(1.0)},
		{Key: MetricRevGrowthStability, Label: "Revenue Growth Stability", Format: FormatDecimal, Weight: weight(1.0)},
		{Key: MetricQuarterlyProgress, Label: "Quarterly Earnings Progress", Format: FormatDecimal, Weight: weight(1.0)},
		{Key: MetricPERatio, Label: "P/E (TTM)", Format: FormatRatio},
	},
}

var dividendProfile = Profile{
	Name:               ProfileDividend,
	EstimateYearOffset: 0,
	Metrics: []MetricSpec{
		{Key: MetricDividendYield, Label: "Dividend Yield", Format: FormatPercent, Weight: weight(1.5)},
		{Key: MetricPayoutRatio, Label: "Payout Ratio", Format: FormatPercent, Weight: weight(1.25)},
		{Key: MetricDividendGrowth5Y, Label: "Dividend Growth (5Y)", Format: FormatPercent, Weight: weight(1.5)},
		{Key: MetricFCFPayoutRatio, Label: "FCF Payout Ratio", Format: FormatPercent, Weight: weight(1.25)},
		{Key: MetricDebtToEquity, Label: "Debt to Equity", Format: FormatRatio, Weight: weight(1.0)},
		{Key: MetricInterestCoverage, Label: "Interest Coverage", Format: FormatNumber, Weight: weight(1.0)},
		{Key: MetricEPSGrowth5Y, Label: "EPS Growth (5Y)", Format: FormatPercent, Weight: weight(0.75)},
		{Key: MetricProfitableYears, Label: "Profitable Years (5Y)", Format: FormatNumber, Weight: weight(0.75)},
	},
}

var profiles = map[string]Profile{
	ProfileGARP:     garpProfile,
	ProfileQARP:     qarpProfile,
	ProfileDividend: dividendProfile,
}

// GetProfile resolves a profile by name, case-insensitively. An empty name
// falls back to the GARP profile.
func GetProfile(name string) (Profile, error) {
	if name == "" {
		return garpProfile, nil
	}
	p, ok := profiles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Profile{}, fmt.Errorf("unknown scoring profile: %q", name)
	}
	return p, nil
}

// ProfileNames lists the available profiles.
func ProfileNames() []string {
	return []string{ProfileGARP, ProfileQARP, ProfileDividend}
}

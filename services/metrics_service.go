package services

import (
	"math"
	"time"

	"scorecardbackend/types"

	"github.com/montanaflynn/stats"
)

// MetricValues holds every derived metric for one snapshot, keyed by metric
// key. A missing key or nil entry both mean "no data".
type MetricValues map[string]*float64

// interestCoverageInfinite is reported when a company has operating income
// but no interest expense at all.
const interestCoverageInfinite = 999.0

// consistencyWindow is the number of most recent annual statements used for
// profitable-years and revenue-stability math.
const consistencyWindow = 5

func floatPtr(v float64) *float64 { return &v }

func isUsable(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

// Cagr returns the compound annual growth rate from start to end over the
// given number of periods, or nil when the inputs cannot support one
// (non-positive start, non-positive period count, non-finite inputs).
func Cagr(start, end float64, periods float64) *float64 {
	if periods <= 0 || start <= 0 {
		return nil
	}
	if math.IsNaN(start) || math.IsInf(start, 0) || math.IsNaN(end) || math.IsInf(end, 0) {
		return nil
	}
	g := math.Pow(end/start, 1/periods) - 1
	if math.IsNaN(g) || math.IsInf(g, 0) {
		return nil
	}
	return &g
}

// resolveSource is the single prioritized-source rule for ratio data: the
// TTM figure wins, the latest annual figure is the fallback.
func resolveSource(ttm, annual *float64) *float64 {
	if isUsable(ttm) {
		return ttm
	}
	if isUsable(annual) {
		return annual
	}
	return nil
}

// CalculateMetrics derives every metric value the given profile consumes
// from one financial snapshot. It never mutates the snapshot and never
// returns NaN or Inf entries; anything degenerate comes back nil. The clock
// is a parameter because estimate selection and quarterly tracking depend on
// the calendar year.
func CalculateMetrics(s *types.FinancialSnapshot, profile Profile, now time.Time) MetricValues {
	values := MetricValues{}
	if s == nil {
		return values
	}

	annual := s.IncomeAnnual // oldest first
	n := len(annual)

	// Five-year growth needs six statements: the CAGR runs from the
	// statement six years back to the latest one.
	if n >= 6 {
		if annual[n-6].EPS != nil && annual[n-1].EPS != nil {
			values[MetricEPSGrowth5Y] = Cagr(*annual[n-6].EPS, *annual[n-1].EPS, 5)
		}
		if annual[n-6].Revenue != nil && annual[n-1].Revenue != nil {
			values[MetricRevenueGrowth5Y] = Cagr(*annual[n-6].Revenue, *annual[n-1].Revenue, 5)
		}
	}

	price := profilePrice(s)

	var lastEPS *float64
	if n > 0 {
		lastEPS = annual[n-1].EPS
	}

	estimateYear := now.Year() + profile.EstimateYearOffset
	forwardEPS := estimateForYear(s.AnalystEstimates, estimateYear)

	// Next-1Y growth, forward P/E and PEG chain off the same estimate.
	if isUsable(forwardEPS) && isUsable(lastEPS) && *lastEPS > 0 {
		values[MetricEPSGrowthNext1Y] = floatPtr(*forwardEPS / *lastEPS - 1)
	}
	if isUsable(price) && isUsable(forwardEPS) && *price > 0 && *forwardEPS > 0 {
		values[MetricForwardPE] = floatPtr(*price / *forwardEPS)
	}
	if fpe, g := values[MetricForwardPE], values[MetricEPSGrowthNext1Y]; isUsable(fpe) && isUsable(g) && *fpe > 0 && *g > 0 {
		// Growth enters the denominator as a whole-number percent.
		values[MetricPEGRatio] = floatPtr(*fpe / (*g * 100))
	}

	var ttmKM, annualKM *types.KeyMetrics
	ttmKM = s.KeyMetricsTTM
	if len(s.KeyMetricsAnnual) > 0 {
		annualKM = &s.KeyMetricsAnnual[len(s.KeyMetricsAnnual)-1]
	}
	values[MetricROE] = resolveSource(kmField(ttmKM, kmROE), kmField(annualKM, kmROE))
	values[MetricROIC] = resolveSource(kmField(ttmKM, kmROIC), kmField(annualKM, kmROIC))
	values[MetricDebtToEquity] = resolveSource(kmField(ttmKM, kmDebtToEquity), kmField(annualKM, kmDebtToEquity))
	values[MetricPERatio] = resolveSource(kmField(ttmKM, kmPERatio), kmField(annualKM, kmPERatio))

	fcfPerShare := resolveSource(kmField(ttmKM, kmFCFPerShare), kmField(annualKM, kmFCFPerShare))
	if isUsable(price) && isUsable(fcfPerShare) && *price > 0 && *fcfPerShare > 0 {
		values[MetricPriceToFCF] = floatPtr(*price / *fcfPerShare)
	}

	var ttmRatios, annualRatios *types.Ratios
	ttmRatios = s.RatiosTTM
	if len(s.RatiosAnnual) > 0 {
		annualRatios = &s.RatiosAnnual[len(s.RatiosAnnual)-1]
	}
	values[MetricPSRatio] = resolveSource(ratioField(ttmRatios, ratioPS), ratioField(annualRatios, ratioPS))
	values[MetricDividendYield] = resolveSource(ratioField(ttmRatios, ratioDividendYield), ratioField(annualRatios, ratioDividendYield))
	values[MetricPayoutRatio] = resolveSource(ratioField(ttmRatios, ratioPayout), ratioField(annualRatios, ratioPayout))

	if n > 0 {
		values[MetricInterestCoverage] = interestCoverage(annual[n-1])
	}

	profitable, stability := consistencyMetrics(annual)
	values[MetricProfitableYears] = profitable
	values[MetricRevGrowthStability] = stability

	values[MetricQuarterlyProgress] = quarterlyProgress(s.IncomeQuarterly, s.AnalystEstimates, now.Year())

	if len(s.FinancialGrowth) > 0 {
		if total := s.FinancialGrowth[len(s.FinancialGrowth)-1].DividendGrowthTotal5Y; isUsable(total) {
			values[MetricDividendGrowth5Y] = Cagr(1, 1+*total, 5)
		}
	}

	if len(s.CashFlowAnnual) > 0 {
		values[MetricFCFPayoutRatio] = fcfPayoutRatio(s.CashFlowAnnual[len(s.CashFlowAnnual)-1])
	}

	applyOverrides(values, s.ManualOverrides, profile)
	return values
}

// applyOverrides replaces computed values with analyst-supplied ones for
// every metric the profile knows about. Overrides exist to patch bad source
// data without touching the pipeline.
func applyOverrides(values MetricValues, overrides map[string]float64, profile Profile) {
	if len(overrides) == 0 {
		return
	}
	for _, spec := range profile.Metrics {
		if ov, ok := overrides[spec.Key]; ok {
			v := ov
			values[spec.Key] = &v
		}
	}
}

func profilePrice(s *types.FinancialSnapshot) *float64 {
	if s.Profile == nil {
		return nil
	}
	return s.Profile.Price
}

// estimateForYear finds the consensus EPS estimate whose fiscal year matches
// the requested calendar year.
func estimateForYear(estimates []types.AnalystEstimate, year int) *float64 {
	for _, e := range estimates {
		if e.FiscalYear == year && isUsable(e.EPSAverage) {
			return e.EPSAverage
		}
	}
	return nil
}

// interestCoverage reports operating income over interest expense. A company
// earning operating income with no interest expense is effectively
// infinitely covered and gets the 999 sentinel.
func interestCoverage(latest types.IncomeStatement) *float64 {
	op := latest.OperatingIncome
	ie := latest.InterestExpense
	if !isUsable(op) {
		return nil
	}
	if isUsable(ie) && *ie > 0 {
		return floatPtr(*op / *ie)
	}
	if *op > 0 {
		return floatPtr(interestCoverageInfinite)
	}
	return nil
}

// consistencyMetrics computes profitable-year count and revenue-growth
// stability over the most recent five annual statements. Stability is the
// population standard deviation of year-over-year revenue growth rates,
// using only transitions where the prior year's revenue is positive; it
// needs at least two valid rates.
func consistencyMetrics(annual []types.IncomeStatement) (profitable, stability *float64) {
	if len(annual) < consistencyWindow {
		return nil, nil
	}
	recent := annual[len(annual)-consistencyWindow:]

	count := 0.0
	for _, st := range recent {
		if isUsable(st.EPS) && *st.EPS > 0 {
			count++
		}
	}
	profitable = &count

	var growthRates []float64
	for i := 1; i < len(recent); i++ {
		prev, cur := recent[i-1].Revenue, recent[i].Revenue
		if isUsable(prev) && isUsable(cur) && *prev > 0 {
			growthRates = append(growthRates, *cur / *prev-1)
		}
	}
	if len(growthRates) < 2 {
		return profitable, nil
	}
	sd, err := stats.StandardDeviationPopulation(stats.Float64Data(growthRates))
	if err != nil || math.IsNaN(sd) || math.IsInf(sd, 0) {
		return profitable, nil
	}
	stability = &sd
	return profitable, stability
}

// quarterlyProgress measures how the current year's reported quarters track
// against the annual consensus estimate. Historical per-quarter shares of
// annual EPS are averaged across every prior year with all four quarters
// reported and a positive total, then applied to the current-year estimate
// to form a target for the quarters reported so far.
func quarterlyProgress(quarters []types.QuarterlyIncomeStatement, estimates []types.AnalystEstimate, currentYear int) *float64 {
	if len(quarters) < 5 || len(estimates) == 0 {
		return nil
	}
	annualEstimate := estimateForYear(estimates, currentYear)
	if !isUsable(annualEstimate) {
		return nil
	}

	byYear := map[int]map[int]float64{}
	for _, q := range quarters {
		if q.Quarter < 1 || q.Quarter > 4 || !isUsable(q.EPS) {
			continue
		}
		if byYear[q.FiscalYear] == nil {
			byYear[q.FiscalYear] = map[int]float64{}
		}
		byYear[q.FiscalYear][q.Quarter] = *q.EPS
	}

	// A prior year only counts when all four quarters are present and sum
	// to a positive total.
	weightSums := [5]float64{}
	validYears := 0
	for year, qs := range byYear {
		if year >= currentYear || len(qs) != 4 {
			continue
		}
		total := qs[1] + qs[2] + qs[3] + qs[4]
		if total <= 0 {
			continue
		}
		for q := 1; q <= 4; q++ {
			weightSums[q] += qs[q] / total
		}
		validYears++
	}
	if validYears == 0 {
		return nil
	}

	actualSum, targetSum := 0.0, 0.0
	reported := false
	for q := 1; q <= 4; q++ {
		eps, ok := byYear[currentYear][q]
		if !ok {
			continue
		}
		reported = true
		actualSum += eps
		targetSum += (weightSums[q] / float64(validYears)) * *annualEstimate
	}
	if !reported || targetSum == 0 {
		return nil
	}
	ratio := actualSum / targetSum
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return nil
	}
	return &ratio
}

// fcfPayoutRatio is dividends paid over free cash flow. Dividends paid comes
// through as a negative outflow, so the magnitude is used. A company paying
// nothing has a payout of exactly zero regardless of FCF.
func fcfPayoutRatio(cf types.CashFlowStatement) *float64 {
	if !isUsable(cf.DividendsPaid) {
		return nil
	}
	if *cf.DividendsPaid == 0 {
		return floatPtr(0)
	}
	if !isUsable(cf.FreeCashFlow) || *cf.FreeCashFlow == 0 {
		return nil
	}
	ratio := math.Abs(*cf.DividendsPaid) / *cf.FreeCashFlow
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return nil
	}
	return &ratio
}

// Field selectors keep resolveSource call sites flat without reflection.

type kmFieldID int

const (
	kmROE kmFieldID = iota
	kmROIC
	kmDebtToEquity
	kmFCFPerShare
	kmPERatio
)

func kmField(km *types.KeyMetrics, id kmFieldID) *float64 {
	if km == nil {
		return nil
	}
	switch id {
	case kmROE:
		return km.ReturnOnEquity
	case kmROIC:
		return km.ReturnOnInvestedCapital
	case kmDebtToEquity:
		return km.DebtToEquity
	case kmFCFPerShare:
		return km.FreeCashFlowPerShare
	case kmPERatio:
		return km.PERatio
	}
	return nil
}

type ratioFieldID int

const (
	ratioPS ratioFieldID = iota
	ratioDividendYield
	ratioPayout
)

func ratioField(r *types.Ratios, id ratioFieldID) *float64 {
	if r == nil {
		return nil
	}
	switch id {
	case ratioPS:
		return r.PriceToSalesRatio
	case ratioDividendYield:
		return r.DividendYield
	case ratioPayout:
		return r.PayoutRatio
	}
	return nil
}

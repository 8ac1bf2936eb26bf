package services

import (
	"math"
	"testing"
	"time"

	"scorecardbackend/types"
)

func f(v float64) *float64 { return &v }

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-4
}

func TestCagr(t *testing.T) {
	got := Cagr(100, 200, 5)
	if got == nil || !almostEqual(*got, 0.148698) {
		t.Errorf("Cagr(100,200,5) = %v, want ~0.148698", got)
	}

	got = Cagr(100, 50, 5)
	if got == nil || !almostEqual(*got, -0.129449) {
		t.Errorf("Cagr(100,50,5) = %v, want ~-0.129449 (shrinkage is a valid rate)", got)
	}

	if got := Cagr(-10, 200, 5); got != nil {
		t.Errorf("Cagr with negative start = %v, want nil", got)
	}
	if got := Cagr(0, 200, 5); got != nil {
		t.Errorf("Cagr with zero start = %v, want nil", got)
	}
	if got := Cagr(100, 200, 0); got != nil {
		t.Errorf("Cagr with zero periods = %v, want nil", got)
	}
	if got := Cagr(math.NaN(), 200, 5); got != nil {
		t.Errorf("Cagr with NaN start = %v, want nil", got)
	}
}

func TestInterestCoverage(t *testing.T) {
	got := interestCoverage(types.IncomeStatement{OperatingIncome: f(500), InterestExpense: f(50)})
	if got == nil || !almostEqual(*got, 10) {
		t.Errorf("coverage = %v, want 10", got)
	}

	// No interest expense at all means effectively infinite coverage.
	got = interestCoverage(types.IncomeStatement{OperatingIncome: f(500)})
	if got == nil || *got != 999 {
		t.Errorf("coverage with nil expense = %v, want 999 sentinel", got)
	}

	got = interestCoverage(types.IncomeStatement{OperatingIncome: f(500), InterestExpense: f(0)})
	if got == nil || *got != 999 {
		t.Errorf("coverage with zero expense = %v, want 999 sentinel", got)
	}

	if got := interestCoverage(types.IncomeStatement{OperatingIncome: f(-5), InterestExpense: f(0)}); got != nil {
		t.Errorf("coverage with negative operating income and no expense = %v, want nil", got)
	}
	if got := interestCoverage(types.IncomeStatement{InterestExpense: f(50)}); got != nil {
		t.Errorf("coverage with nil operating income = %v, want nil", got)
	}
}

func TestConsistencyMetrics(t *testing.T) {
	annual := []types.IncomeStatement{
		{EPS: f(1), Revenue: f(100)},
		{EPS: f(2), Revenue: f(110)},
		{EPS: f(-1), Revenue: f(121)},
		{EPS: f(3), Revenue: f(90)},
		{EPS: f(4), Revenue: f(99)},
	}

	profitable, stability := consistencyMetrics(annual)
	if profitable == nil || *profitable != 4 {
		t.Errorf("profitable years = %v, want 4", profitable)
	}
	// Growth rates 0.1, 0.1, -0.2562, 0.1; population stddev ~0.15424.
	if stability == nil || !almostEqual(*stability, 0.154243) {
		t.Errorf("stability = %v, want ~0.154243", stability)
	}
}

func TestConsistencyMetricsTooFewYears(t *testing.T) {
	annual := []types.IncomeStatement{
		{EPS: f(1), Revenue: f(100)},
		{EPS: f(2), Revenue: f(110)},
	}
	profitable, stability := consistencyMetrics(annual)
	if profitable != nil || stability != nil {
		t.Errorf("consistency with 2 years = (%v, %v), want nils", profitable, stability)
	}
}

func TestConsistencyMetricsSkipsNonPositivePriorRevenue(t *testing.T) {
	annual := []types.IncomeStatement{
		{EPS: f(1), Revenue: f(0)},
		{EPS: f(1), Revenue: f(100)},
		{EPS: f(1), Revenue: f(110)},
		{EPS: f(1), Revenue: f(0)},
		{EPS: f(1), Revenue: f(99)},
	}
	// Valid transitions: 100->110 only (0 priors are excluded, and the
	// 110->0 drop counts since the prior is positive). That leaves two
	// rates: 0.1 and -1.0.
	_, stability := consistencyMetrics(annual)
	if stability == nil {
		t.Fatal("stability = nil, want a value from two rates")
	}
	if !almostEqual(*stability, 0.55) {
		t.Errorf("stability = %v, want 0.55", *stability)
	}
}

func TestFcfPayoutRatio(t *testing.T) {
	got := fcfPayoutRatio(types.CashFlowStatement{DividendsPaid: f(-40), FreeCashFlow: f(100)})
	if got == nil || !almostEqual(*got, 0.4) {
		t.Errorf("fcf payout = %v, want 0.4", got)
	}

	// Paying nothing is a payout of exactly zero even with no FCF.
	got = fcfPayoutRatio(types.CashFlowStatement{DividendsPaid: f(0), FreeCashFlow: f(0)})
	if got == nil || *got != 0 {
		t.Errorf("fcf payout with zero dividends = %v, want 0", got)
	}

	if got := fcfPayoutRatio(types.CashFlowStatement{DividendsPaid: f(-40), FreeCashFlow: f(0)}); got != nil {
		t.Errorf("fcf payout with zero FCF = %v, want nil", got)
	}
	if got := fcfPayoutRatio(types.CashFlowStatement{FreeCashFlow: f(100)}); got != nil {
		t.Errorf("fcf payout with nil dividends = %v, want nil", got)
	}
}

func TestQuarterlyProgress(t *testing.T) {
	quarters := []types.QuarterlyIncomeStatement{
		{FiscalYear: 2024, Quarter: 1, EPS: f(0.25)},
		{FiscalYear: 2024, Quarter: 2, EPS: f(0.25)},
		{FiscalYear: 2024, Quarter: 3, EPS: f(0.25)},
		{FiscalYear: 2024, Quarter: 4, EPS: f(0.25)},
		{FiscalYear: 2025, Quarter: 1, EPS: f(0.5)},
		{FiscalYear: 2025, Quarter: 2, EPS: f(0.5)},
		{FiscalYear: 2025, Quarter: 3, EPS: f(0.5)},
		{FiscalYear: 2025, Quarter: 4, EPS: f(0.5)},
		{FiscalYear: 2026, Quarter: 1, EPS: f(1.1)},
		{FiscalYear: 2026, Quarter: 2, EPS: f(1.0)},
	}
	estimates := []types.AnalystEstimate{{FiscalYear: 2026, EPSAverage: f(4.0)}}

	got := quarterlyProgress(quarters, estimates, 2026)
	// Both prior years weight each quarter at 25%, so two reported quarters
	// target half of the 4.0 estimate; 2.1 actual over 2.0 target.
	if got == nil || !almostEqual(*got, 1.05) {
		t.Errorf("quarterly progress = %v, want 1.05", got)
	}
}

func TestQuarterlyProgressNoValidPriorYears(t *testing.T) {
	quarters := []types.QuarterlyIncomeStatement{
		{FiscalYear: 2025, Quarter: 1, EPS: f(0.5)},
		{FiscalYear: 2025, Quarter: 2, EPS: f(0.5)},
		{FiscalYear: 2025, Quarter: 3, EPS: f(0.5)},
		{FiscalYear: 2026, Quarter: 1, EPS: f(1.1)},
		{FiscalYear: 2026, Quarter: 2, EPS: f(1.0)},
	}
	estimates := []types.AnalystEstimate{{FiscalYear: 2026, EPSAverage: f(4.0)}}

	if got := quarterlyProgress(quarters, estimates, 2026); got != nil {
		t.Errorf("quarterly progress without a complete prior year = %v, want nil", got)
	}
}

func TestEstimateYearFollowsProfile(t *testing.T) {
	now := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	snapshot := &types.FinancialSnapshot{
		Symbol: "TEST",
		IncomeAnnual: []types.IncomeStatement{
			{EPS: f(2.0), Revenue: f(100)},
		},
		AnalystEstimates: []types.AnalystEstimate{
			{FiscalYear: 2026, EPSAverage: f(2.2)},
			{FiscalYear: 2027, EPSAverage: f(2.6)},
		},
	}

	qarpValues := CalculateMetrics(snapshot, qarpProfile, now)
	growth := qarpValues[MetricEPSGrowthNext1Y]
	if growth == nil || !almostEqual(*growth, 0.10) {
		t.Errorf("QARP next-1y growth = %v, want 0.10 (current-year estimate)", growth)
	}

	garpValues := CalculateMetrics(snapshot, garpProfile, now)
	growth = garpValues[MetricEPSGrowthNext1Y]
	if growth == nil || !almostEqual(*growth, 0.30) {
		t.Errorf("GARP next-1y growth = %v, want 0.30 (next-year estimate)", growth)
	}
}

func TestNextYearGrowthNeedsPositiveBase(t *testing.T) {
	now := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	snapshot := &types.FinancialSnapshot{
		Symbol: "TEST",
		IncomeAnnual: []types.IncomeStatement{
			{EPS: f(-1.0), Revenue: f(100)},
		},
		AnalystEstimates: []types.AnalystEstimate{
			{FiscalYear: 2026, EPSAverage: f(2.2)},
		},
	}

	values := CalculateMetrics(snapshot, qarpProfile, now)
	if values[MetricEPSGrowthNext1Y] != nil {
		t.Errorf("next-1y growth off a loss = %v, want nil", values[MetricEPSGrowthNext1Y])
	}
}

func TestManualOverridesWin(t *testing.T) {
	now := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	snapshot := &types.FinancialSnapshot{
		Symbol:       "TEST",
		IncomeAnnual: []types.IncomeStatement{{EPS: f(2.0), Revenue: f(100)}},
		KeyMetricsTTM: &types.KeyMetrics{
			ReturnOnEquity: f(0.08),
		},
		ManualOverrides: map[string]float64{
			MetricROE:       0.22,
			MetricForwardPE: 18,
		},
	}

	values := CalculateMetrics(snapshot, qarpProfile, now)
	if values[MetricROE] == nil || *values[MetricROE] != 0.22 {
		t.Errorf("roe = %v, want the 0.22 override over the fetched 0.08", values[MetricROE])
	}
	if values[MetricForwardPE] == nil || *values[MetricForwardPE] != 18 {
		t.Errorf("forwardPe = %v, want the 18 override even with no estimate", values[MetricForwardPE])
	}
}

func TestTTMWinsOverAnnual(t *testing.T) {
	now := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	snapshot := &types.FinancialSnapshot{
		Symbol:           "TEST",
		IncomeAnnual:     []types.IncomeStatement{{EPS: f(2.0), Revenue: f(100)}},
		KeyMetricsTTM:    &types.KeyMetrics{ReturnOnEquity: f(0.20)},
		KeyMetricsAnnual: []types.KeyMetrics{{ReturnOnEquity: f(0.10)}},
	}

	values := CalculateMetrics(snapshot, qarpProfile, now)
	if values[MetricROE] == nil || *values[MetricROE] != 0.20 {
		t.Errorf("roe = %v, want the TTM 0.20", values[MetricROE])
	}

	snapshot.KeyMetricsTTM = nil
	values = CalculateMetrics(snapshot, qarpProfile, now)
	if values[MetricROE] == nil || *values[MetricROE] != 0.10 {
		t.Errorf("roe without TTM = %v, want the annual 0.10", values[MetricROE])
	}
}

func TestFiveYearGrowthNeedsSixStatements(t *testing.T) {
	now := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	annual := make([]types.IncomeStatement, 0, 6)
	for _, eps := range []float64{1.0, 1.1, 1.25, 1.45, 1.7} {
		annual = append(annual, types.IncomeStatement{EPS: f(eps), Revenue: f(100)})
	}

	snapshot := &types.FinancialSnapshot{Symbol: "TEST", IncomeAnnual: annual}
	values := CalculateMetrics(snapshot, qarpProfile, now)
	if values[MetricEPSGrowth5Y] != nil {
		t.Errorf("5y growth from 5 statements = %v, want nil", values[MetricEPSGrowth5Y])
	}

	snapshot.IncomeAnnual = append(annual, types.IncomeStatement{EPS: f(2.0), Revenue: f(100)})
	values = CalculateMetrics(snapshot, qarpProfile, now)
	got := values[MetricEPSGrowth5Y]
	if got == nil || !almostEqual(*got, 0.148698) {
		t.Errorf("5y growth from 6 statements = %v, want ~0.148698", got)
	}
}

func TestDividendGrowthFromTotal(t *testing.T) {
	now := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	snapshot := &types.FinancialSnapshot{
		Symbol:       "TEST",
		IncomeAnnual: []types.IncomeStatement{{EPS: f(2.0)}},
		FinancialGrowth: []types.FinancialGrowth{
			{DividendGrowthTotal5Y: f(0.61051)}, // 10% a year compounded
		},
	}

	values := CalculateMetrics(snapshot, dividendProfile, now)
	got := values[MetricDividendGrowth5Y]
	if got == nil || !almostEqual(*got, 0.10) {
		t.Errorf("dividend growth = %v, want ~0.10", got)
	}
}

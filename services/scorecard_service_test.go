package services

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"scorecardbackend/types"
)

var scoreClock = time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

// qualityCompounder is a steadily-growing, conservatively-financed business
// with patchy coverage from the data provider: no analyst estimates, no
// quarterly statements and no FCF per share. The missing metrics dilute the
// composite instead of dropping out.
func qualityCompounder() *types.FinancialSnapshot {
	epsSeries := []float64{1.0, 1.1, 1.25, 1.45, 1.7, 2.0}
	revenueSeries := []float64{1000, 1070, 1150, 1235, 1330, 1430}

	annual := make([]types.IncomeStatement, len(epsSeries))
	for i := range epsSeries {
		annual[i] = types.IncomeStatement{
			FiscalYear:      2020 + i,
			EPS:             f(epsSeries[i]),
			Revenue:         f(revenueSeries[i]),
			OperatingIncome: f(500),
			InterestExpense: f(50),
		}
	}

	return &types.FinancialSnapshot{
		Symbol:       "QLTY",
		Profile:      &types.CompanyProfile{Symbol: "QLTY", MarketCap: f(45e9)},
		IncomeAnnual: annual,
		KeyMetricsTTM: &types.KeyMetrics{
			ReturnOnEquity:          f(0.18),
			ReturnOnInvestedCapital: f(0.16),
			DebtToEquity:            f(0.5),
			PERatio:                 f(22),
		},
		ManualOverrides: map[string]float64{
			MetricForwardPE: 18,
			MetricPEGRatio:  1.2,
			MetricPSRatio:   2.0,
		},
	}
}

func TestBuildScoreReportQualityCompounder(t *testing.T) {
	report := BuildScoreReport("QLTY", qualityCompounder(), qarpProfile, scoreClock)

	if report.CompositeScore.Err {
		t.Fatal("composite = ERR, want a number")
	}
	// Three weighted metrics have no data, so a business passing every
	// available check still lands in the low 80s rather than at 100.
	if report.CompositeScore.Value != 81 {
		t.Errorf("composite = %d, want 81", report.CompositeScore.Value)
	}
	if report.CompositeScore.Value < 70 || report.CompositeScore.Value > 89 {
		t.Errorf("composite = %d, want a GARP-quality score in the 70s-80s", report.CompositeScore.Value)
	}

	progress := report.Metrics[MetricQuarterlyProgress]
	if progress.Value != nil || progress.Multiplier != 0 {
		t.Errorf("quarterlyProgress = (%v, %v), want missing data scored zero", progress.Value, progress.Multiplier)
	}
	for _, key := range []string{
		MetricEPSGrowth5Y, MetricRevenueGrowth5Y, MetricROE, MetricROIC,
		MetricForwardPE, MetricPEGRatio, MetricDebtToEquity,
	} {
		if !report.Metrics[key].IsMet {
			t.Errorf("%s should be met for a quality compounder", key)
		}
	}
	if report.Metrics[MetricPERatio].Weight != nil {
		t.Error("peRatio is informational and must not carry a weight")
	}
	if report.MarketCapSize != "Large Cap" {
		t.Errorf("marketCapSize = %q, want \"Large Cap\" for a $45B company", report.MarketCapSize)
	}
}

func TestBuildScoreReportWithoutProfileSkipsMarketCap(t *testing.T) {
	snapshot := qualityCompounder()
	snapshot.Profile = nil

	report := BuildScoreReport("QLTY", snapshot, qarpProfile, scoreClock)
	if report.MarketCapSize != "" {
		t.Errorf("marketCapSize = %q, want empty without a company profile", report.MarketCapSize)
	}
}

func TestBuildScoreReportDeterministic(t *testing.T) {
	first := BuildScoreReport("QLTY", qualityCompounder(), qarpProfile, scoreClock)
	for i := 0; i < 5; i++ {
		again := BuildScoreReport("QLTY", qualityCompounder(), qarpProfile, scoreClock)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d diverged from the first report", i)
		}
	}
}

func TestBuildScoreReportStructuralError(t *testing.T) {
	report := BuildScoreReport("GONE", nil, garpProfile, scoreClock)
	if !report.CompositeScore.Err {
		t.Error("nil snapshot should score ERR")
	}
	if len(report.Metrics) != 0 {
		t.Errorf("ERR report carries %d metrics, want none", len(report.Metrics))
	}

	report = BuildScoreReport("GONE", &types.FinancialSnapshot{Symbol: "GONE"}, garpProfile, scoreClock)
	if !report.CompositeScore.Err {
		t.Error("snapshot without annual income statements should score ERR")
	}

	b, err := json.Marshal(report)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["compositeScore"] != "ERR" {
		t.Errorf("marshaled composite = %v, want the ERR sentinel string", decoded["compositeScore"])
	}
}

func TestBuildScoreReportEmptyDataScoresZero(t *testing.T) {
	// Present-but-empty statements are not a structural error: everything
	// scores zero and the composite is 0, not ERR.
	snapshot := &types.FinancialSnapshot{
		Symbol:       "EMPT",
		IncomeAnnual: []types.IncomeStatement{},
	}
	report := BuildScoreReport("EMPT", snapshot, qarpProfile, scoreClock)
	if report.CompositeScore.Err {
		t.Fatal("empty snapshot scored ERR, want 0")
	}
	if report.CompositeScore.Value != 0 {
		t.Errorf("composite = %d, want 0", report.CompositeScore.Value)
	}
}

func TestDividendCutterDragsScore(t *testing.T) {
	base := &types.FinancialSnapshot{
		Symbol:       "CUTR",
		IncomeAnnual: []types.IncomeStatement{{FiscalYear: 2025, EPS: f(1)}},
		RatiosTTM:    &types.Ratios{DividendYield: f(0.02)},
	}

	withoutGrowthDatum := BuildScoreReport("CUTR", base, dividendProfile, scoreClock)
	if withoutGrowthDatum.CompositeScore.Value != 17 {
		t.Errorf("composite without growth datum = %d, want 17", withoutGrowthDatum.CompositeScore.Value)
	}

	base.FinancialGrowth = []types.FinancialGrowth{{DividendGrowthTotal5Y: f(0)}}
	withCut := BuildScoreReport("CUTR", base, dividendProfile, scoreClock)
	if withCut.CompositeScore.Value != 0 {
		t.Errorf("composite with a flat dividend = %d, want 0 (penalty cancels the yield)", withCut.CompositeScore.Value)
	}
	if withCut.CompositeScore.Value >= withoutGrowthDatum.CompositeScore.Value {
		t.Error("a dividend cut must strictly reduce the composite")
	}
}

func TestCompositeClampsAtZero(t *testing.T) {
	// Only the penalized metric has data, so the raw weighted score is
	// negative and must clamp to 0.
	snapshot := &types.FinancialSnapshot{
		Symbol:          "NEGV",
		IncomeAnnual:    []types.IncomeStatement{{FiscalYear: 2025, EPS: f(1)}},
		FinancialGrowth: []types.FinancialGrowth{{DividendGrowthTotal5Y: f(-0.2)}},
	}
	report := BuildScoreReport("NEGV", snapshot, dividendProfile, scoreClock)
	if report.CompositeScore.Err || report.CompositeScore.Value != 0 {
		t.Errorf("composite = %v, want clamped 0", report.CompositeScore.Display())
	}
}

func TestCompositeScoreRoundTrip(t *testing.T) {
	var score types.CompositeScore
	if err := json.Unmarshal([]byte(`81`), &score); err != nil {
		t.Fatal(err)
	}
	if score.Err || score.Value != 81 {
		t.Errorf("decoded %+v, want value 81", score)
	}

	if err := json.Unmarshal([]byte(`"ERR"`), &score); err != nil {
		t.Fatal(err)
	}
	if !score.Err {
		t.Errorf("decoded %+v, want the error sentinel", score)
	}

	if err := json.Unmarshal([]byte(`"oops"`), &score); err == nil {
		t.Error("arbitrary strings must not decode as composite scores")
	}
}

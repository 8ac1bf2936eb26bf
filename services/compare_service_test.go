package services

import (
	"context"
	"reflect"
	"testing"

	"scorecardbackend/types"

	"github.com/gin-gonic/gin"
)

type stubScorecardService struct {
	reports map[string]types.ScoreReport
}

func (s *stubScorecardService) GetScorecard(ctx context.Context, symbol, profileName string) (types.ScoreReport, error) {
	return s.reports[symbol], nil
}

func (s *stubScorecardService) ListScorecards(ctx context.Context, pageNumber int) ([]types.ScoreReport, error) {
	return nil, nil
}

func (s *stubScorecardService) BatchScore(ctx *gin.Context, symbols []string, profileName string) error {
	return nil
}

func (s *stubScorecardService) ScoreAndPersist(ctx context.Context, symbol string, profile Profile, batchID string) (types.ScoreReport, error) {
	return s.reports[symbol], nil
}

func metricRow(met bool) types.MetricResult {
	mult := 0.0
	if met {
		mult = 1.0
	}
	return types.MetricResult{Multiplier: mult, IsMet: met}
}

func TestCompareOverlap(t *testing.T) {
	stub := &stubScorecardService{reports: map[string]types.ScoreReport{
		"AAA": {
			Symbol:  "AAA",
			Profile: ProfileGARP,
			Metrics: map[string]types.MetricResult{
				MetricROE:          metricRow(true),
				MetricDebtToEquity: metricRow(true),
				MetricPEGRatio:     metricRow(false),
			},
			CompositeScore: types.CompositeScore{Value: 80},
		},
		"BBB": {
			Symbol:  "BBB",
			Profile: ProfileGARP,
			Metrics: map[string]types.MetricResult{
				MetricROE:      metricRow(true),
				MetricPSRatio:  metricRow(true),
				MetricPEGRatio: metricRow(false),
			},
			CompositeScore: types.CompositeScore{Value: 65},
		},
	}}

	svc := NewCompareService(stub)
	got, err := svc.Compare(context.Background(), "AAA", "BBB", "garp")
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(got.CommonMetricsMet, []string{MetricROE}) {
		t.Errorf("common met metrics = %v, want [roe]", got.CommonMetricsMet)
	}
	// One shared metric out of three in the union.
	if !almostEqual(got.OverlapPercent, 100.0/3) {
		t.Errorf("overlap = %v, want ~33.33", got.OverlapPercent)
	}
	if got.CompositeDelta != 15 {
		t.Errorf("delta = %d, want 15", got.CompositeDelta)
	}
}

func TestCompareErrScoreSuppressesDelta(t *testing.T) {
	stub := &stubScorecardService{reports: map[string]types.ScoreReport{
		"AAA": {
			Symbol: "AAA", Profile: ProfileGARP,
			Metrics:        map[string]types.MetricResult{},
			CompositeScore: types.CompositeScore{Value: 80},
		},
		"BAD": {
			Symbol: "BAD", Profile: ProfileGARP,
			Metrics:        map[string]types.MetricResult{},
			CompositeScore: types.CompositeScore{Err: true},
		},
	}}

	svc := NewCompareService(stub)
	got, err := svc.Compare(context.Background(), "AAA", "BAD", "garp")
	if err != nil {
		t.Fatal(err)
	}
	if got.CompositeDelta != 0 {
		t.Errorf("delta against an ERR scorecard = %d, want 0", got.CompositeDelta)
	}
	if got.Composite2 != "ERR" {
		t.Errorf("composite2 = %v, want the ERR sentinel", got.Composite2)
	}
	if got.OverlapPercent != 0 {
		t.Errorf("overlap with no met metrics = %v, want 0", got.OverlapPercent)
	}
}

package services

import (
	"context"
	"sort"

	"scorecardbackend/types"
)

type CompareServiceI interface {
	Compare(ctx context.Context, symbol1, symbol2, profileName string) (types.ScorecardComparison, error)
}

type compareService struct {
	scorecards ScorecardServiceI
}

func NewCompareService(scorecards ScorecardServiceI) CompareServiceI {
	return &compareService{scorecards: scorecards}
}

var CompareService = NewCompareService(ScorecardService)

// Compare scores both tickers under the same profile and reports how their
// met metrics overlap. The overlap percentage is common met metrics over the
// union of met metrics, so two stocks passing disjoint checks score zero.
func (s *compareService) Compare(ctx context.Context, symbol1, symbol2, profileName string) (types.ScorecardComparison, error) {
	report1, err := s.scorecards.GetScorecard(ctx, symbol1, profileName)
	if err != nil {
		return types.ScorecardComparison{}, err
	}
	report2, err := s.scorecards.GetScorecard(ctx, symbol2, profileName)
	if err != nil {
		return types.ScorecardComparison{}, err
	}

	met1 := metKeys(report1)
	met2 := metKeys(report2)

	common := []string{}
	union := map[string]bool{}
	for key := range met1 {
		union[key] = true
	}
	for key := range met2 {
		union[key] = true
	}
	for key := range met1 {
		if met2[key] {
			common = append(common, key)
		}
	}
	sort.Strings(common)

	overlap := 0.0
	if len(union) > 0 {
		overlap = float64(len(common)) / float64(len(union)) * 100
	}

	delta := 0
	if !report1.CompositeScore.Err && !report2.CompositeScore.Err {
		delta = report1.CompositeScore.Value - report2.CompositeScore.Value
	}

	return types.ScorecardComparison{
		Profile:          report1.Profile,
		Symbol1:          symbol1,
		Symbol2:          symbol2,
		Composite1:       report1.CompositeScore.Display(),
		Composite2:       report2.CompositeScore.Display(),
		CompositeDelta:   delta,
		CommonMetricsMet: common,
		OverlapPercent:   overlap,
	}, nil
}

func metKeys(report types.ScoreReport) map[string]bool {
	met := map[string]bool{}
	for key, result := range report.Metrics {
		if result.IsMet {
			met[key] = true
		}
	}
	return met
}

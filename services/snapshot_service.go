package services

import (
	"context"
	"errors"
	"strconv"
	"sync"

	fmp_client "scorecardbackend/clients/fmp"
	"scorecardbackend/types"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

// annualHistoryLimit covers the six statements five-year growth needs plus
// slack for restatements.
const annualHistoryLimit = 10

const quarterlyHistoryLimit = 40

type SnapshotServiceI interface {
	FetchSnapshot(ctx context.Context, symbol string) (*types.FinancialSnapshot, error)
}

type snapshotService struct{}

var SnapshotService SnapshotServiceI = &snapshotService{}

// FetchSnapshot assembles a financial snapshot from every upstream endpoint
// in parallel. Individual endpoint failures are logged and leave their
// section empty; only a failed annual income statement fetch is fatal to the
// snapshot, because nothing meaningful can be scored without it.
func (s *snapshotService) FetchSnapshot(ctx context.Context, symbol string) (*types.FinancialSnapshot, error) {
	span := sentry.StartSpan(ctx, "[SERVICE] fetchSnapshot")
	defer span.Finish()
	ctx = span.Context()

	snapshot := &types.FinancialSnapshot{Symbol: symbol}
	var incomeErr error

	warn := func(section string, err error) {
		zap.L().Warn("snapshot section unavailable",
			zap.String("symbol", symbol),
			zap.String("section", section),
			zap.Error(err))
	}

	var wg sync.WaitGroup
	wg.Add(11)

	go func() {
		defer wg.Done()
		profile, err := fmp_client.GetCompanyProfile(ctx, symbol)
		if err != nil {
			warn("profile", err)
			return
		}
		snapshot.Profile = profile
	}()

	go func() {
		defer wg.Done()
		annual, err := fmp_client.GetIncomeStatements(ctx, symbol, annualHistoryLimit)
		if err != nil {
			warn("incomeAnnual", err)
			incomeErr = err
			return
		}
		reverseInPlace(annual)
		snapshot.IncomeAnnual = annual
	}()

	go func() {
		defer wg.Done()
		quarterly, err := fmp_client.GetQuarterlyIncomeStatements(ctx, symbol, quarterlyHistoryLimit)
		if err != nil {
			warn("incomeQuarterly", err)
			return
		}
		reverseInPlace(quarterly)
		snapshot.IncomeQuarterly = normalizeQuarters(quarterly)
	}()

	go func() {
		defer wg.Done()
		ttm, err := fmp_client.GetKeyMetricsTTM(ctx, symbol)
		if err != nil {
			warn("keyMetricsTTM", err)
			return
		}
		snapshot.KeyMetricsTTM = ttm
	}()

	go func() {
		defer wg.Done()
		annual, err := fmp_client.GetKeyMetrics(ctx, symbol, annualHistoryLimit)
		if err != nil {
			warn("keyMetricsAnnual", err)
			return
		}
		reverseInPlace(annual)
		snapshot.KeyMetricsAnnual = annual
	}()

	go func() {
		defer wg.Done()
		ttm, err := fmp_client.GetRatiosTTM(ctx, symbol)
		if err != nil {
			warn("ratiosTTM", err)
			return
		}
		snapshot.RatiosTTM = ttm
	}()

	go func() {
		defer wg.Done()
		annual, err := fmp_client.GetRatios(ctx, symbol, annualHistoryLimit)
		if err != nil {
			warn("ratiosAnnual", err)
			return
		}
		reverseInPlace(annual)
		snapshot.RatiosAnnual = annual
	}()

	go func() {
		defer wg.Done()
		estimates, err := fmp_client.GetAnalystEstimates(ctx, symbol)
		if err != nil {
			warn("analystEstimates", err)
			return
		}
		snapshot.AnalystEstimates = normalizeEstimates(estimates)
	}()

	go func() {
		defer wg.Done()
		cashFlow, err := fmp_client.GetCashFlowStatements(ctx, symbol, annualHistoryLimit)
		if err != nil {
			warn("cashFlowAnnual", err)
			return
		}
		reverseInPlace(cashFlow)
		snapshot.CashFlowAnnual = cashFlow
	}()

	go func() {
		defer wg.Done()
		balance, err := fmp_client.GetBalanceSheets(ctx, symbol, annualHistoryLimit)
		if err != nil {
			warn("balanceSheetAnnual", err)
			return
		}
		reverseInPlace(balance)
		snapshot.BalanceSheetAnnual = balance
	}()

	go func() {
		defer wg.Done()
		growth, err := fmp_client.GetFinancialGrowth(ctx, symbol, annualHistoryLimit)
		if err != nil {
			warn("financialGrowth", err)
			return
		}
		reverseInPlace(growth)
		snapshot.FinancialGrowth = growth
	}()

	wg.Wait()

	if incomeErr != nil {
		return nil, errors.New("annual income statements unavailable for " + symbol)
	}
	return snapshot, nil
}

// reverseInPlace flips newest-first upstream responses into the oldest-first
// order the metric math expects.
func reverseInPlace[T any](items []T) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}

// normalizeQuarters derives the numeric quarter from the upstream period
// label. Statements with unparseable periods are dropped rather than guessed.
func normalizeQuarters(quarters []types.QuarterlyIncomeStatement) []types.QuarterlyIncomeStatement {
	out := quarters[:0]
	for _, q := range quarters {
		if len(q.Period) != 2 || q.Period[0] != 'Q' {
			continue
		}
		n := int(q.Period[1] - '0')
		if n < 1 || n > 4 {
			continue
		}
		q.Quarter = n
		out = append(out, q)
	}
	return out
}

// normalizeEstimates extracts the fiscal year from each estimate's date
// prefix. Estimates without a parseable year are useless for selection and
// are dropped.
func normalizeEstimates(estimates []types.AnalystEstimate) []types.AnalystEstimate {
	out := estimates[:0]
	for _, e := range estimates {
		if len(e.Date) < 4 {
			continue
		}
		year, err := strconv.Atoi(e.Date[:4])
		if err != nil {
			continue
		}
		e.FiscalYear = year
		out = append(out, e)
	}
	return out
}

package fmp_client

import (
	"context"
	"errors"
	"net/url"

	"scorecardbackend/types"
)

var ErrNotFound = errors.New("fmp: no data for symbol")

// GetCompanyProfile returns the provider's company profile. The endpoint
// responds with a single-element array.
func GetCompanyProfile(ctx context.Context, symbol string) (*types.CompanyProfile, error) {
	var rows []types.CompanyProfile
	if err := getJSON(ctx, "profile/"+symbol, nil, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

func GetIncomeStatements(ctx context.Context, symbol string, limit int) ([]types.IncomeStatement, error) {
	var rows []types.IncomeStatement
	if err := getJSON(ctx, "income-statement/"+symbol, limitQuery(limit), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func GetQuarterlyIncomeStatements(ctx context.Context, symbol string, limit int) ([]types.QuarterlyIncomeStatement, error) {
	q := limitQuery(limit)
	q.Set("period", "quarter")
	var rows []types.QuarterlyIncomeStatement
	if err := getJSON(ctx, "income-statement/"+symbol, q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// The TTM endpoints suffix every field name with TTM, so they unmarshal into
// dedicated rows before conversion.

type keyMetricsTTMRow struct {
	ReturnOnEquity          *float64 `json:"roeTTM"`
	ReturnOnInvestedCapital *float64 `json:"roicTTM"`
	DebtToEquity            *float64 `json:"debtToEquityTTM"`
	FreeCashFlowPerShare    *float64 `json:"freeCashFlowPerShareTTM"`
	PERatio                 *float64 `json:"peRatioTTM"`
}

func GetKeyMetricsTTM(ctx context.Context, symbol string) (*types.KeyMetrics, error) {
	var rows []keyMetricsTTMRow
	if err := getJSON(ctx, "key-metrics-ttm/"+symbol, nil, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	r := rows[0]
	return &types.KeyMetrics{
		ReturnOnEquity:          r.ReturnOnEquity,
		ReturnOnInvestedCapital: r.ReturnOnInvestedCapital,
		DebtToEquity:            r.DebtToEquity,
		FreeCashFlowPerShare:    r.FreeCashFlowPerShare,
		PERatio:                 r.PERatio,
	}, nil
}

func GetKeyMetrics(ctx context.Context, symbol string, limit int) ([]types.KeyMetrics, error) {
	var rows []types.KeyMetrics
	if err := getJSON(ctx, "key-metrics/"+symbol, limitQuery(limit), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

type ratiosTTMRow struct {
	PriceToSalesRatio *float64 `json:"priceToSalesRatioTTM"`
	PayoutRatio       *float64 `json:"payoutRatioTTM"`
	DividendYield     *float64 `json:"dividendYielTTM"` // sic, the provider misspells this field
	NetProfitMargin   *float64 `json:"netProfitMarginTTM"`
	GrossProfitMargin *float64 `json:"grossProfitMarginTTM"`
	PriceToBookRatio  *float64 `json:"priceToBookRatioTTM"`
}

func GetRatiosTTM(ctx context.Context, symbol string) (*types.Ratios, error) {
	var rows []ratiosTTMRow
	if err := getJSON(ctx, "ratios-ttm/"+symbol, nil, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	r := rows[0]
	return &types.Ratios{
		PriceToSalesRatio: r.PriceToSalesRatio,
		PayoutRatio:       r.PayoutRatio,
		DividendYield:     r.DividendYield,
		NetProfitMargin:   r.NetProfitMargin,
		GrossProfitMargin: r.GrossProfitMargin,
		PriceToBookRatio:  r.PriceToBookRatio,
	}, nil
}

func GetRatios(ctx context.Context, symbol string, limit int) ([]types.Ratios, error) {
	var rows []types.Ratios
	if err := getJSON(ctx, "ratios/"+symbol, limitQuery(limit), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func GetAnalystEstimates(ctx context.Context, symbol string) ([]types.AnalystEstimate, error) {
	q := url.Values{}
	q.Set("period", "annual")
	var rows []types.AnalystEstimate
	if err := getJSON(ctx, "analyst-estimates/"+symbol, q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func GetCashFlowStatements(ctx context.Context, symbol string, limit int) ([]types.CashFlowStatement, error) {
	var rows []types.CashFlowStatement
	if err := getJSON(ctx, "cash-flow-statement/"+symbol, limitQuery(limit), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func GetBalanceSheets(ctx context.Context, symbol string, limit int) ([]types.BalanceSheetStatement, error) {
	var rows []types.BalanceSheetStatement
	if err := getJSON(ctx, "balance-sheet-statement/"+symbol, limitQuery(limit), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func GetFinancialGrowth(ctx context.Context, symbol string, limit int) ([]types.FinancialGrowth, error) {
	var rows []types.FinancialGrowth
	if err := getJSON(ctx, "financial-growth/"+symbol, limitQuery(limit), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

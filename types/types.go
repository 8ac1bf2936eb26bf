package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// CompanyProfile holds the descriptive fields of the FMP profile endpoint.
type CompanyProfile struct {
	Symbol      string   `json:"symbol" bson:"symbol"`
	CompanyName string   `json:"companyName" bson:"companyName"`
	Description string   `json:"description" bson:"description"`
	Sector      string   `json:"sector" bson:"sector"`
	Industry    string   `json:"industry" bson:"industry"`
	Price       *float64 `json:"price" bson:"price"`
	MarketCap   *float64 `json:"mktCap" bson:"marketCap"`
	Beta        *float64 `json:"beta" bson:"beta"`
}

// IncomeStatement is one annual income statement. FiscalYear comes from
// FMP's calendarYear, which is a quoted string on the wire.
type IncomeStatement struct {
	FiscalYear      int      `json:"calendarYear,string" bson:"fiscalYear"`
	Revenue         *float64 `json:"revenue" bson:"revenue"`
	EPS             *float64 `json:"eps" bson:"eps"`
	OperatingIncome *float64 `json:"operatingIncome" bson:"operatingIncome"`
	InterestExpense *float64 `json:"interestExpense" bson:"interestExpense"`
	RAndDExpenses   *float64 `json:"researchAndDevelopmentExpenses" bson:"rAndDExpenses"`
	GrossProfit     *float64 `json:"grossProfit" bson:"grossProfit"`
}

// QuarterlyIncomeStatement is one quarterly income statement. Quarter is
// derived from the wire period ("Q1".."Q4") during snapshot normalization.
type QuarterlyIncomeStatement struct {
	FiscalYear int      `json:"calendarYear,string" bson:"fiscalYear"`
	Period     string   `json:"period" bson:"period"`
	Quarter    int      `json:"-" bson:"quarter"`
	EPS        *float64 `json:"eps" bson:"eps"`
}

// KeyMetrics carries the return and leverage figures used by scoring. The
// TTM endpoint suffixes every field with TTM, so the FMP client decodes that
// variant separately and maps it into this shape.
type KeyMetrics struct {
	ReturnOnEquity          *float64 `json:"roe" bson:"roe"`
	ReturnOnInvestedCapital *float64 `json:"roic" bson:"roic"`
	DebtToEquity            *float64 `json:"debtToEquity" bson:"debtToEquity"`
	FreeCashFlowPerShare    *float64 `json:"freeCashFlowPerShare" bson:"freeCashFlowPerShare"`
	PERatio                 *float64 `json:"peRatio" bson:"peRatio"`
}

// Ratios carries the valuation and payout ratios used by scoring.
type Ratios struct {
	PriceToSalesRatio *float64 `json:"priceToSalesRatio" bson:"priceToSalesRatio"`
	PayoutRatio       *float64 `json:"payoutRatio" bson:"payoutRatio"`
	DividendYield     *float64 `json:"dividendYield" bson:"dividendYield"`
	NetProfitMargin   *float64 `json:"netProfitMargin" bson:"netProfitMargin"`
	GrossProfitMargin *float64 `json:"grossProfitMargin" bson:"grossProfitMargin"`
	PriceToBookRatio  *float64 `json:"priceToBookRatio" bson:"priceToBookRatio"`
}

// AnalystEstimate is one fiscal year of consensus EPS estimates.
type AnalystEstimate struct {
	Date       string   `json:"date" bson:"date"`
	FiscalYear int      `json:"-" bson:"fiscalYear"`
	EPSAverage *float64 `json:"estimatedEpsAvg" bson:"epsAverage"`
}

// CashFlowStatement is one annual cash flow statement.
type CashFlowStatement struct {
	FiscalYear             int      `json:"calendarYear,string" bson:"fiscalYear"`
	CapitalExpenditure     *float64 `json:"capitalExpenditure" bson:"capitalExpenditure"`
	AcquisitionsNet        *float64 `json:"acquisitionsNet" bson:"acquisitionsNet"`
	DividendsPaid          *float64 `json:"dividendsPaid" bson:"dividendsPaid"`
	CommonStockRepurchased *float64 `json:"commonStockRepurchased" bson:"commonStockRepurchased"`
	FreeCashFlow           *float64 `json:"freeCashFlow" bson:"freeCashFlow"`
}

// BalanceSheetStatement is one annual balance sheet.
type BalanceSheetStatement struct {
	FiscalYear int      `json:"calendarYear,string" bson:"fiscalYear"`
	Goodwill   *float64 `json:"goodwill" bson:"goodwill"`
}

// FinancialGrowth carries FMP's pre-computed growth figures. The five-year
// dividend growth is a total over the window, not an annualized rate.
type FinancialGrowth struct {
	FiscalYear            int      `json:"calendarYear,string" bson:"fiscalYear"`
	DividendGrowthTotal5Y *float64 `json:"fiveYDividendperShareGrowthPerShare" bson:"dividendGrowthTotal5Y"`
	RevenueGrowthTotal5Y  *float64 `json:"fiveYRevenueGrowthPerShare" bson:"revenueGrowthTotal5Y"`
}

// FinancialSnapshot is the immutable per-ticker input to the scoring engine.
// Statement slices are ordered oldest to newest after normalization. A nil
// IncomeAnnual marks a structurally invalid snapshot; an empty non-nil slice
// is valid and degrades every derived metric to "no data".
type FinancialSnapshot struct {
	Symbol             string                     `json:"symbol" bson:"symbol"`
	Profile            *CompanyProfile            `json:"profile" bson:"profile"`
	IncomeAnnual       []IncomeStatement          `json:"incomeStatementsAnnual" bson:"incomeAnnual"`
	IncomeQuarterly    []QuarterlyIncomeStatement `json:"incomeStatementsQuarterly" bson:"incomeQuarterly"`
	KeyMetricsTTM      *KeyMetrics                `json:"keyMetricsTTM" bson:"keyMetricsTTM"`
	KeyMetricsAnnual   []KeyMetrics               `json:"keyMetricsAnnual" bson:"keyMetricsAnnual"`
	RatiosTTM          *Ratios                    `json:"ratiosTTM" bson:"ratiosTTM"`
	RatiosAnnual       []Ratios                   `json:"ratiosAnnual" bson:"ratiosAnnual"`
	AnalystEstimates   []AnalystEstimate          `json:"analystEstimates" bson:"analystEstimates"`
	CashFlowAnnual     []CashFlowStatement        `json:"cashFlowStatementsAnnual" bson:"cashFlowAnnual"`
	BalanceSheetAnnual []BalanceSheetStatement    `json:"balanceSheetStatementsAnnual" bson:"balanceSheetAnnual"`
	FinancialGrowth    []FinancialGrowth          `json:"financialGrowthAnnual" bson:"financialGrowth"`
	ManualOverrides    map[string]float64         `json:"manualOverrides,omitempty" bson:"manualOverrides,omitempty"`
}

// Interpretation is the qualitative read of one scored metric. Category
// strings are a frozen contract surfaced verbatim in reports.
type Interpretation struct {
	Category string `json:"category" bson:"category"`
	Text     string `json:"text" bson:"text"`
}

// MetricResult is one scored metric inside a ScoreReport. A nil Weight means
// the metric is informational and excluded from the composite score.
type MetricResult struct {
	Label          string         `json:"label" bson:"label"`
	Value          *float64       `json:"value" bson:"value"`
	Format         string         `json:"format" bson:"format"`
	Weight         *float64       `json:"weight,omitempty" bson:"weight,omitempty"`
	Multiplier     float64        `json:"multiplier" bson:"multiplier"`
	IsMet          bool           `json:"isMet" bson:"isMet"`
	Interpretation Interpretation `json:"interpretation" bson:"interpretation"`
}

// CompositeScoreErr is the sentinel surfaced when a snapshot is structurally
// invalid. It must reach callers as-is, never coerced to a number.
const CompositeScoreErr = "ERR"

// CompositeScore is an integer conviction score in [0,100], or the ERR
// sentinel. It marshals to a JSON number or the string "ERR".
type CompositeScore struct {
	Value int  `bson:"value"`
	Err   bool `bson:"err"`
}

func (c CompositeScore) MarshalJSON() ([]byte, error) {
	if c.Err {
		return json.Marshal(CompositeScoreErr)
	}
	return json.Marshal(c.Value)
}

func (c *CompositeScore) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != CompositeScoreErr {
			return fmt.Errorf("invalid composite score sentinel: %q", s)
		}
		c.Err = true
		c.Value = 0
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	c.Value = v
	c.Err = false
	return nil
}

// Display returns the value persisted and rendered for this score: an int,
// or the "ERR" string.
func (c CompositeScore) Display() interface{} {
	if c.Err {
		return CompositeScoreErr
	}
	return c.Value
}

// ScoreReport is the full scoring output for one ticker under one profile.
type ScoreReport struct {
	Symbol         string                  `json:"symbol" bson:"symbol"`
	Profile        string                  `json:"profile" bson:"profile"`
	MarketCapSize  string                  `json:"marketCapSize,omitempty" bson:"marketCapSize,omitempty"`
	Metrics        map[string]MetricResult `json:"metrics" bson:"metrics"`
	CompositeScore CompositeScore          `json:"compositeScore" bson:"compositeScore"`
	GeneratedAt    time.Time               `json:"generatedAt" bson:"generatedAt"`
}

// ScorecardEvent is published to Kafka and RabbitMQ after a report is persisted.
type ScorecardEvent struct {
	EventType      string      `json:"eventType"`
	Symbol         string      `json:"symbol"`
	Profile        string      `json:"profile"`
	CompositeScore interface{} `json:"compositeScore"`
	BatchID        string      `json:"batchId,omitempty"`
	GeneratedAt    time.Time   `json:"generatedAt"`
}

// Filing is one SEC EDGAR filing row.
type Filing struct {
	Form        string `json:"form"`
	Description string `json:"description"`
	FilingDate  string `json:"filingDate"`
	URL         string `json:"url"`
}

// ScorecardComparison reports how two tickers' scorecards line up under the
// same profile.
type ScorecardComparison struct {
	Profile          string      `json:"profile"`
	Symbol1          string      `json:"symbol1"`
	Symbol2          string      `json:"symbol2"`
	Composite1       interface{} `json:"compositeScore1"`
	Composite2       interface{} `json:"compositeScore2"`
	CompositeDelta   int         `json:"compositeDelta"`
	CommonMetricsMet []string    `json:"commonMetricsMet"`
	OverlapPercent   float64     `json:"overlapPercent"`
}

// WatchlistEntry is one row parsed from an uploaded watchlist spreadsheet.
type WatchlistEntry struct {
	Symbol    string             `json:"symbol"`
	Overrides map[string]float64 `json:"overrides,omitempty"`
}

// GeminiRequest mirrors the generateContent request body.
type GeminiRequest struct {
	Contents []struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
	GenerationConfig map[string]interface{} `json:"generationConfig"`
}

// GeminiResponse mirrors the generateContent response body.
type GeminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

package services

import (
	"math"

	"scorecardbackend/types"
)

// Multiplier tiers shared across the ladders.
const (
	multNone      = 0.0
	multWeak      = 0.2
	multPartial   = 0.5
	multDiscount  = 0.8
	multMet       = 1.0
	multAhead     = 1.1
	multExcellent = 1.2
	multPenalty   = -1.0
)

func noData() (float64, types.Interpretation) {
	return multNone, types.Interpretation{
		Category: "No Data",
		Text:     "Insufficient data to evaluate this metric.",
	}
}

func tier(mult float64, category, text string) (float64, types.Interpretation) {
	return mult, types.Interpretation{Category: category, Text: text}
}

// ScoreMetric maps a derived metric value to its score multiplier and
// qualitative interpretation. Every metric carries its own threshold ladder;
// nil and non-finite values uniformly score zero as "No Data".
func ScoreMetric(key string, value *float64) (float64, types.Interpretation) {
	if !isUsable(value) {
		return noData()
	}
	v := *value
	switch key {
	case MetricEPSGrowth5Y:
		return scoreEPSGrowth5Y(v)
	case MetricEPSGrowthNext1Y:
		return scoreEPSGrowthNext1Y(v)
	case MetricRevenueGrowth5Y:
		return scoreRevenueGrowth5Y(v)
	case MetricROE, MetricROIC:
		return scoreReturns(v)
	case MetricPERatio, MetricForwardPE:
		return scorePERatio(v)
	case MetricPEGRatio:
		return scorePEG(v)
	case MetricPSRatio:
		return scorePSRatio(v)
	case MetricPriceToFCF:
		return scorePriceToFCF(v)
	case MetricDebtToEquity:
		return scoreDebtToEquity(v)
	case MetricInterestCoverage:
		return scoreInterestCoverage(v)
	case MetricProfitableYears:
		return scoreProfitableYears(v)
	case MetricRevGrowthStability:
		return scoreRevGrowthStability(v)
	case MetricQuarterlyProgress:
		return scoreQuarterlyProgress(v)
	case MetricDividendYield:
		return scoreDividendYield(v)
	case MetricPayoutRatio:
		return scorePayoutRatio(v)
	case MetricDividendGrowth5Y:
		return scoreDividendGrowth5Y(v)
	case MetricFCFPayoutRatio:
		return scoreFCFPayoutRatio(v)
	}
	return noData()
}

func scoreEPSGrowth5Y(v float64) (float64, types.Interpretation) {
	switch {
	case v > 0.20:
		return tier(multExcellent, "Elite Growth", "EPS has compounded above 20% a year for five years, a mark of elite execution.")
	case v > 0.10:
		return tier(multMet, "Strong Growth", "Double-digit EPS compounding comfortably clears the growth bar.")
	case v > 0.05:
		return tier(multPartial, "Moderate Growth", "Mid-single-digit EPS growth is respectable but below the growth bar.")
	default:
		return tier(multNone, "Weak Growth", "EPS has been flat or shrinking over the last five years.")
	}
}

func scoreEPSGrowthNext1Y(v float64) (float64, types.Interpretation) {
	switch {
	case v > 1.0:
		return tier(multPartial, "Rebound Growth", "Estimates imply EPS more than doubling, usually a snap-back from a depressed base rather than durable growth.")
	case v > 0.40:
		return tier(multDiscount, "Hyper-Growth", "Growth estimates above 40% rarely persist, so the credit is partial.")
	case v > 0.20:
		return tier(multExcellent, "Accelerating Growth", "Consensus sees EPS growth above 20% in the coming year.")
	case v > 0.10:
		return tier(multMet, "Strong Outlook", "Consensus sees healthy double-digit EPS growth next year.")
	case v > 0.05:
		return tier(multPartial, "Modest Outlook", "Next year's expected EPS growth is positive but unremarkable.")
	default:
		return tier(multNone, "Stagnant Outlook", "Analysts expect EPS to stall or decline next year.")
	}
}

func scoreRevenueGrowth5Y(v float64) (float64, types.Interpretation) {
	switch {
	case v > 0.15:
		return tier(multExcellent, "Elite Growth", "Revenue has compounded above 15% a year over five years.")
	case v > 0.05:
		return tier(multMet, "Strong Growth", "Revenue has grown at a healthy clip over five years.")
	case v > 0.0:
		return tier(multPartial, "Slow Growth", "Revenue is growing, but slowly.")
	default:
		return tier(multNone, "Declining Revenue", "The top line has been flat or shrinking over five years.")
	}
}

func scoreReturns(v float64) (float64, types.Interpretation) {
	switch {
	case v > 0.30:
		return tier(multExcellent, "Exceptional Returns", "Returns on capital above 30% signal a dominant, capital-light business.")
	case v > 0.15:
		return tier(multMet, "Quality Compounder", "Returns on capital above 15% clear the quality bar.")
	case v > 0.10:
		return tier(multPartial, "Adequate Returns", "Returns on capital are acceptable but not a moat signal.")
	default:
		return tier(multNone, "Poor Returns", "Returns on capital are too low to compound value for shareholders.")
	}
}

func scorePERatio(v float64) (float64, types.Interpretation) {
	switch {
	case v <= 0:
		return tier(multNone, "Unprofitable", "A non-positive earnings multiple means there are no earnings to price.")
	case v < 15:
		return tier(multExcellent, "Bargain Valuation", "An earnings multiple under 15 prices in very little growth.")
	case v < 25:
		return tier(multMet, "GARP Sweet Spot", "An earnings multiple in the teens-to-twenties is a fair price for a growing business.")
	case v < 40:
		return tier(multPartial, "Rich Valuation", "The earnings multiple leaves little room for execution slips.")
	default:
		return tier(multNone, "Speculative Valuation", "An earnings multiple above 40 depends on flawless growth.")
	}
}

func scorePEG(v float64) (float64, types.Interpretation) {
	switch {
	case v <= 0:
		return tier(multNone, "Not Meaningful", "A non-positive PEG cannot be interpreted.")
	case v < 0.5:
		return tier(multPartial, "Too Good To Be True", "A PEG under 0.5 usually means the market doubts the growth estimate.")
	case v <= 1.5:
		return tier(multMet, "GARP Sweet Spot", "Paying roughly one times growth is the classic GARP setup.")
	case v <= 2.5:
		return tier(multPartial, "Growth Premium", "The price asks for more than two times the expected growth.")
	default:
		return tier(multNone, "Overpriced Growth", "Valuation has detached from the growth on offer.")
	}
}

func scorePSRatio(v float64) (float64, types.Interpretation) {
	switch {
	case v <= 0:
		return tier(multNone, "Not Meaningful", "A non-positive sales multiple cannot be interpreted.")
	case v < 1.5:
		return tier(multExcellent, "Deep Value", "Under 1.5 times sales is cheap for a business of any quality.")
	case v < 2.5:
		return tier(multMet, "Reasonable", "The sales multiple sits in a sensible range.")
	case v < 4.0:
		return tier(multPartial, "Elevated", "The sales multiple demands strong margins to justify.")
	default:
		return tier(multNone, "Expensive", "Above 4 times sales the valuation needs heroic assumptions.")
	}
}

func scorePriceToFCF(v float64) (float64, types.Interpretation) {
	switch {
	case v <= 0:
		return tier(multNone, "Cash Burner", "The business is not generating free cash flow to price.")
	case v < 15:
		return tier(multExcellent, "Cash Flow Bargain", "Under 15 times free cash flow is a bargain for a self-funding business.")
	case v < 25:
		return tier(multMet, "Fairly Priced Cash Flow", "The free-cash-flow multiple is in a reasonable range.")
	case v < 40:
		return tier(multPartial, "Expensive Cash Flow", "The free-cash-flow multiple is stretched.")
	default:
		return tier(multNone, "Speculative", "Free cash flow is too small relative to the price.")
	}
}

func scoreDebtToEquity(v float64) (float64, types.Interpretation) {
	switch {
	case v < 0.3:
		return tier(multExcellent, "Fortress Balance Sheet", "Debt under 30% of equity leaves the company anti-fragile in downturns.")
	case v < 0.7:
		return tier(multMet, "Conservative Leverage", "Leverage is modest and well covered by equity.")
	case v < 1.0:
		return tier(multPartial, "Elevated Leverage", "Debt is approaching the size of the equity base.")
	default:
		return tier(multNone, "High Leverage", "Debt exceeds equity, amplifying any operating stumble.")
	}
}

func scoreInterestCoverage(v float64) (float64, types.Interpretation) {
	switch {
	case v > 10:
		return tier(multExcellent, "Very Safe", "Operating income covers interest more than ten times over.")
	case v > 4:
		return tier(multMet, "Safe", "Interest payments are comfortably covered.")
	case v > 2:
		return tier(multPartial, "Tight", "Coverage is thin enough that a bad year matters.")
	default:
		return tier(multNone, "Strained", "Operating income barely covers the interest bill.")
	}
}

func scoreProfitableYears(v float64) (float64, types.Interpretation) {
	switch {
	case v == 5:
		return tier(multExcellent, "Perfect Record", "Positive EPS in all of the last five years.")
	case v == 4:
		return tier(multMet, "Consistent", "Profitable in four of the last five years.")
	case v == 3:
		return tier(multPartial, "Spotty", "Profitable in only three of the last five years.")
	default:
		return tier(multNone, "Unreliable", "Losses in most of the last five years.")
	}
}

// Lower is better: this ladder scores the standard deviation of YoY revenue
// growth rates.
func scoreRevGrowthStability(v float64) (float64, types.Interpretation) {
	switch {
	case v < 0.10:
		return tier(multExcellent, "Highly Stable", "Revenue growth varies very little year to year.")
	case v < 0.25:
		return tier(multMet, "Stable", "Revenue growth is reasonably predictable.")
	case v < 0.40:
		return tier(multPartial, "Choppy", "Revenue growth swings noticeably between years.")
	default:
		return tier(multNone, "Volatile", "Revenue growth is too erratic to extrapolate.")
	}
}

func scoreQuarterlyProgress(v float64) (float64, types.Interpretation) {
	switch {
	case v > 1.15:
		return tier(multExcellent, "Beating Pace", "Reported quarters are running well ahead of the full-year estimate.")
	case v > 1.0:
		return tier(multAhead, "Ahead of Pace", "Reported quarters are tracking slightly ahead of the full-year estimate.")
	case v > 0.95:
		return tier(multMet, "On Pace", "Reported quarters are tracking in line with the full-year estimate.")
	case v > 0.85:
		return tier(multPartial, "Slightly Behind", "Reported quarters are lagging the full-year estimate.")
	default:
		return tier(multNone, "Falling Behind", "Reported quarters put the full-year estimate at risk.")
	}
}

func scoreDividendYield(v float64) (float64, types.Interpretation) {
	switch {
	case v > 0.10:
		return tier(multWeak, "Potential Yield Trap", "Yields above 10% usually price in a coming dividend cut.")
	case v > 0.04:
		return tier(multExcellent, "High Yield", "A yield above 4% delivers substantial income.")
	case v > 0.015:
		return tier(multMet, "Solid Yield", "The yield meaningfully contributes to total return.")
	case v > 0:
		return tier(multPartial, "Token Yield", "The dividend exists but barely moves the needle.")
	default:
		return tier(multNone, "No Dividend", "The company pays no dividend.")
	}
}

func scorePayoutRatio(v float64) (float64, types.Interpretation) {
	switch {
	case v < 0 || v > 0.9:
		return tier(multNone, "Unsustainable", "The payout exceeds what earnings can sustain.")
	case v > 0.8:
		return tier(multWeak, "Stretched", "The payout consumes nearly all earnings.")
	case v > 0.6:
		return tier(multDiscount, "Elevated", "The payout is high but still earnings-covered.")
	case v > 0:
		return tier(multExcellent, "Healthy", "Earnings cover the dividend with room to grow it.")
	default:
		return tier(multNone, "No Payout", "No earnings are being paid out.")
	}
}

// The only ladder with a negative rung: a flat or cut dividend actively
// subtracts from the weighted score instead of merely contributing nothing.
func scoreDividendGrowth5Y(v float64) (float64, types.Interpretation) {
	switch {
	case v > 0.10:
		return tier(multExcellent, "Fast Grower", "The dividend has compounded above 10% a year.")
	case v > 0.05:
		return tier(multMet, "Steady Grower", "The dividend grows faster than inflation.")
	case v > 0.02:
		return tier(multPartial, "Slow Grower", "Dividend growth barely keeps up with inflation.")
	case v > 0:
		return tier(multNone, "Stagnant Dividend", "Dividend growth has effectively stalled.")
	default:
		return tier(multPenalty, "Dividend Cutter", "A flat or cut dividend over five years is treated as an active penalty.")
	}
}

func scoreFCFPayoutRatio(v float64) (float64, types.Interpretation) {
	switch {
	case v > 1.0 || v < 0:
		return tier(multNone, "Not Covered", "Free cash flow does not cover the dividend.")
	case v > 0.7:
		return tier(multPartial, "Thin Coverage", "Most free cash flow is already committed to the dividend.")
	default:
		return tier(multExcellent, "Well Covered", "Free cash flow covers the dividend with a comfortable margin.")
	}
}

// sanitizeRaw maps a degenerate raw score to zero so the composite never
// surfaces NaN.
func sanitizeRaw(raw float64) float64 {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0
	}
	return raw
}

package services

import (
	"strings"
	"testing"

	"scorecardbackend/types"
)

func TestFormatReportMetrics(t *testing.T) {
	report := types.ScoreReport{
		Symbol:  "QLTY",
		Profile: "qarp",
		Metrics: map[string]types.MetricResult{
			MetricROE: {
				Label:          "Return on Equity",
				Value:          f(0.18),
				Format:         FormatPercent,
				Multiplier:     1.0,
				Interpretation: types.Interpretation{Category: "Strong Returns"},
			},
			MetricForwardPE: {
				Label:          "Forward P/E",
				Value:          f(18),
				Format:         FormatRatio,
				Multiplier:     1.0,
				Interpretation: types.Interpretation{Category: "GARP Sweet Spot"},
			},
			MetricQuarterlyProgress: {
				Label:          "Quarterly Progress",
				Format:         FormatPercent,
				Multiplier:     0,
				Interpretation: types.Interpretation{Category: "No Data"},
			},
		},
	}

	got := FormatReportMetrics(report)

	for _, want := range []string{
		"- Return on Equity: 18.0% (multiplier 1.0, Strong Returns)",
		"- Forward P/E: 18.00x (multiplier 1.0, GARP Sweet Spot)",
		"- Quarterly Progress: N/A (multiplier 0.0, No Data)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("formatted metrics missing %q in:\n%s", want, got)
		}
	}

	// Map iteration order must not leak into the prompt.
	if FormatReportMetrics(report) != got {
		t.Error("formatted metrics are not stable across calls")
	}
	if strings.Index(got, "Forward P/E") > strings.Index(got, "Return on Equity") {
		t.Error("metrics should be sorted by key")
	}
}

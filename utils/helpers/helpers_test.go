package helpers

import "testing"

func TestMatchHeader(t *testing.T) {
	if !MatchHeader("  Ticker Symbol ", []string{`ticker\s*symbol`}) {
		t.Error("expected header to match after normalization")
	}
	if MatchHeader("Company Name", []string{`^symbol$`}) {
		t.Error("unrelated header matched")
	}
}

func TestToFloat(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1,234.5", 1234.5, true},
		{"12%", 0.12, true},
		{" 0.35 ", 0.35, true},
		{"", 0, false},
		{"n/a", 0, false},
	}
	for _, tc := range cases {
		got, ok := ToFloat(tc.in)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("ToFloat(%q) = (%v, %v), want (%v, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestNormalizeSymbol(t *testing.T) {
	cases := map[string]string{
		" aapl ":      "AAPL",
		"NASDAQ:MSFT": "MSFT",
		"BRK.B":       "BRK.B",
	}
	for in, want := range cases {
		if got := NormalizeSymbol(in); got != want {
			t.Errorf("NormalizeSymbol(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGetMarketCapCategory(t *testing.T) {
	cases := map[float64]string{
		500e9: "Mega Cap",
		50e9:  "Large Cap",
		5e9:   "Mid Cap",
		5e8:   "Small Cap",
		0:     "Unknown Category",
	}
	for in, want := range cases {
		if got := GetMarketCapCategory(in); got != want {
			t.Errorf("GetMarketCapCategory(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatMetricValue(t *testing.T) {
	v := 0.148
	if got := FormatMetricValue(&v, "percent"); got != "14.8%" {
		t.Errorf("percent format = %q, want 14.8%%", got)
	}
	r := 18.5
	if got := FormatMetricValue(&r, "ratio"); got != "18.50x" {
		t.Errorf("ratio format = %q, want 18.50x", got)
	}
	n := 5.0
	if got := FormatMetricValue(&n, "number"); got != "5" {
		t.Errorf("number format = %q, want 5", got)
	}
	if got := FormatMetricValue(nil, "percent"); got != "N/A" {
		t.Errorf("nil format = %q, want N/A", got)
	}
}

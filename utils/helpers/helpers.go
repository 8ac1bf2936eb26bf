package helpers

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Helper function to match header titles
func MatchHeader(cellValue string, patterns []string) bool {
	normalizedValue := NormalizeString(cellValue)
	for _, pattern := range patterns {
		matched, _ := regexp.MatchString(pattern, normalizedValue)
		if matched {
			return true
		}
	}
	return false
}

// Helper function to normalize strings
func NormalizeString(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ToFloat parses spreadsheet cell content into a float. Commas are stripped
// and a trailing percent sign divides the value by 100.
func ToFloat(value string) (float64, bool) {
	cleanStr := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if cleanStr == "" {
		return 0, false
	}

	if strings.Contains(cleanStr, "%") {
		cleanStr = strings.ReplaceAll(cleanStr, "%", "")
		f, err := strconv.ParseFloat(cleanStr, 64)
		if err != nil {
			zap.L().Error("Error converting percentage to float64", zap.Error(err))
			return 0, false
		}
		return f / 100.0, true
	}

	f, err := strconv.ParseFloat(cleanStr, 64)
	if err != nil {
		zap.L().Error("Error converting to float64", zap.Error(err))
		return 0, false
	}
	return f, true
}

// NormalizeSymbol uppercases a ticker cell and strips exchange suffixes like
// "NASDAQ:" prefixes some sheets carry.
func NormalizeSymbol(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if idx := strings.LastIndex(s, ":"); idx >= 0 {
		s = s[idx+1:]
	}
	return s
}

// GetMarketCapCategory buckets a market cap in dollars.
func GetMarketCapCategory(marketCap float64) string {
	switch {
	case marketCap >= 200e9:
		return "Mega Cap"
	case marketCap >= 10e9:
		return "Large Cap"
	case marketCap >= 2e9:
		return "Mid Cap"
	case marketCap > 0:
		return "Small Cap"
	}
	return "Unknown Category"
}

// FormatMetricValue renders a metric value for human-facing output according
// to its format kind.
func FormatMetricValue(value *float64, format string) string {
	if value == nil || math.IsNaN(*value) || math.IsInf(*value, 0) {
		return "N/A"
	}
	switch format {
	case "percent":
		return fmt.Sprintf("%.1f%%", *value*100)
	case "ratio":
		return fmt.Sprintf("%.2fx", *value)
	case "number":
		return strconv.Itoa(int(math.Round(*value)))
	default:
		return fmt.Sprintf("%.2f", *value)
	}
}

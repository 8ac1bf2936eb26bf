package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"

	"scorecardbackend/types"
	"scorecardbackend/utils/helpers"
)

var once sync.Once

var GEMINI_API_URL = ""
var GEMINI_API_KEY = ""

func init() {
	once.Do(func() {
		GEMINI_API_URL = os.Getenv("GEMINI_API_URL")
		GEMINI_API_KEY = os.Getenv("GEMINI_API_KEY")
	})
}

// FormatReportMetrics renders the report's metrics as one line per metric,
// sorted by key so the prompt is stable across runs.
func FormatReportMetrics(report types.ScoreReport) string {
	keys := make([]string, 0, len(report.Metrics))
	for key := range report.Metrics {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		m := report.Metrics[key]
		fmt.Fprintf(&b, "- %s: %s (multiplier %.1f, %s)\n",
			m.Label, helpers.FormatMetricValue(m.Value, m.Format), m.Multiplier, m.Interpretation)
	}
	return b.String()
}

// CallGeminiAPI turns a finished scorecard into a short plain-English
// analysis. The model only ever sees the already-computed report, never raw
// financials, so the commentary cannot contradict the scores.
func CallGeminiAPI(report types.ScoreReport) (string, error) {
	prompt := fmt.Sprintf(`You are an equity research assistant. Below is a completed, rule-based
scorecard for %s under the %q investing profile. The composite score is %v
out of 100. Each metric carries its computed value, the multiplier it earned
and a category label.

Write a concise analysis (3 short paragraphs, plain text, no markdown):
1. The overall verdict implied by the composite score.
2. The two or three strongest metrics and what they say about the business.
3. The two or three weakest metrics and what an investor should watch.

Do not invent numbers that are not in the data. Do not give buy or sell advice.

Scorecard data:
%s
`, report.Symbol, report.Profile, report.CompositeScore.Display(), FormatReportMetrics(report))

	requestData := types.GeminiRequest{
		Contents: []struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		}{
			{
				Parts: []struct {
					Text string `json:"text"`
				}{
					{
						Text: prompt,
					},
				},
			},
		},
		GenerationConfig: map[string]interface{}{
			"maxOutputTokens": 2048,
		},
	}
	requestBody, err := json.Marshal(requestData)
	if err != nil {
		return "", err
	}

	apiEndpoint := GEMINI_API_URL + "?key=" + GEMINI_API_KEY
	req, err := http.NewRequest("POST", apiEndpoint, bytes.NewBuffer(requestBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var rawResponse types.GeminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&rawResponse); err != nil {
		return "", err
	}

	if len(rawResponse.Candidates) == 0 || len(rawResponse.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini returned no candidates")
	}

	generatedText := rawResponse.Candidates[0].Content.Parts[0].Text
	cleanedText := strings.TrimPrefix(generatedText, "```")
	cleanedText = strings.TrimSuffix(cleanedText, "```")
	return strings.TrimSpace(cleanedText), nil
}

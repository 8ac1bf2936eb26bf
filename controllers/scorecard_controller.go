package controllers

import (
	"context"
	"strconv"
	"strings"

	"scorecardbackend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ScorecardControllerI interface {
	GetScorecard(ctx *gin.Context)
	GetScorecards(ctx *gin.Context)
	BatchScore(ctx *gin.Context)
	Compare(ctx *gin.Context)
	Analyze(ctx *gin.Context)
	UpdateScores(ctx *gin.Context)
}

type scorecardController struct{}

var ScorecardController ScorecardControllerI = &scorecardController{}

func (s *scorecardController) GetScorecard(ctx *gin.Context) {
	symbol := strings.ToUpper(strings.TrimSpace(ctx.Query("symbol")))
	if symbol == "" {
		ctx.JSON(400, gin.H{"error": "Symbol is required"})
		return
	}
	profile := ctx.Query("profile")

	report, err := services.ScorecardService.GetScorecard(ctx.Request.Context(), symbol, profile)
	if err != nil {
		zap.L().Error("Error building scorecard", zap.String("symbol", symbol), zap.Error(err))
		ctx.JSON(500, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(200, report)
}

func (s *scorecardController) GetScorecards(ctx *gin.Context) {
	pageNumberStr := ctx.DefaultQuery("pageNumber", "1")
	pageNumber, err := strconv.Atoi(pageNumberStr)
	if err != nil || pageNumber < 1 {
		ctx.JSON(400, gin.H{"error": "Invalid page number"})
		return
	}

	reports, err := services.ScorecardService.ListScorecards(ctx.Request.Context(), pageNumber)
	if err != nil {
		zap.L().Error("Error while fetching scorecards", zap.Error(err))
		ctx.JSON(500, gin.H{"error": "Error while fetching scorecards"})
		return
	}
	ctx.JSON(200, gin.H{"scorecards": reports, "pageNumber": pageNumber})
}

type batchScoreRequest struct {
	Symbols []string `json:"symbols" binding:"required"`
	Profile string   `json:"profile"`
}

// BatchScore streams one scorecard per line as each symbol finishes.
func (s *scorecardController) BatchScore(ctx *gin.Context) {
	var req batchScoreRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(400, gin.H{"error": "Symbols are required"})
		return
	}

	symbols := make([]string, 0, len(req.Symbols))
	for _, symbol := range req.Symbols {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if symbol != "" {
			symbols = append(symbols, symbol)
		}
	}
	if len(symbols) == 0 {
		ctx.JSON(400, gin.H{"error": "Symbols are required"})
		return
	}

	ctx.Writer.Header().Set("Content-Type", "application/x-ndjson")
	ctx.Writer.Header().Set("Cache-Control", "no-cache")
	ctx.Writer.Header().Set("Connection", "keep-alive")

	if err := services.ScorecardService.BatchScore(ctx, symbols, req.Profile); err != nil {
		zap.L().Error("Batch score failed", zap.Error(err))
		return
	}
	ctx.Writer.Flush()
}

func (s *scorecardController) Compare(ctx *gin.Context) {
	symbol1 := strings.ToUpper(strings.TrimSpace(ctx.Query("symbol1")))
	symbol2 := strings.ToUpper(strings.TrimSpace(ctx.Query("symbol2")))
	if symbol1 == "" || symbol2 == "" {
		ctx.JSON(400, gin.H{"error": "Both symbol1 and symbol2 are required"})
		return
	}

	comparison, err := services.CompareService.Compare(ctx.Request.Context(), symbol1, symbol2, ctx.Query("profile"))
	if err != nil {
		zap.L().Error("Error comparing scorecards", zap.Error(err))
		ctx.JSON(500, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(200, comparison)
}

type analyzeRequest struct {
	Symbol  string `json:"symbol" binding:"required"`
	Profile string `json:"profile"`
}

// Analyze generates plain-English commentary for a scorecard.
func (s *scorecardController) Analyze(ctx *gin.Context) {
	var req analyzeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(400, gin.H{"error": "Symbol is required"})
		return
	}
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))

	report, err := services.ScorecardService.GetScorecard(ctx.Request.Context(), symbol, req.Profile)
	if err != nil {
		zap.L().Error("Error building scorecard for analysis", zap.String("symbol", symbol), zap.Error(err))
		ctx.JSON(500, gin.H{"error": err.Error()})
		return
	}

	analysis, err := services.CallGeminiAPI(report)
	if err != nil {
		zap.L().Error("Error generating analysis", zap.String("symbol", symbol), zap.Error(err))
		ctx.JSON(502, gin.H{"error": "Analysis generation failed"})
		return
	}

	ctx.JSON(200, gin.H{
		"symbol":         report.Symbol,
		"profile":        report.Profile,
		"compositeScore": report.CompositeScore.Display(),
		"analysis":       analysis,
	})
}

func (s *scorecardController) UpdateScores(ctx *gin.Context) {
	zap.L().Info("Manual scorecard refresh triggered via API")

	// Run the refresh in a goroutine to avoid blocking the request. It gets
	// its own context because the request's dies with the response.
	go func() {
		services.RescoreAll(context.Background())
	}()

	ctx.JSON(200, gin.H{
		"message": "Scorecard refresh process started",
		"status":  "running",
	})
}

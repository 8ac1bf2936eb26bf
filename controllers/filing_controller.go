package controllers

import (
	"strconv"
	"strings"

	edgar_client "scorecardbackend/clients/edgar"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type FilingControllerI interface {
	GetFilings(ctx *gin.Context)
}

type filingController struct{}

var FilingController FilingControllerI = &filingController{}

// GetFilings returns a company's recent SEC filings, optionally narrowed to
// one form type.
func (f *filingController) GetFilings(ctx *gin.Context) {
	symbol := strings.ToUpper(strings.TrimSpace(ctx.Query("symbol")))
	if symbol == "" {
		ctx.JSON(400, gin.H{"error": "Symbol is required"})
		return
	}

	formType := ctx.Query("type")
	count, err := strconv.Atoi(ctx.DefaultQuery("count", "20"))
	if err != nil || count < 1 || count > 100 {
		count = 20
	}

	filings, err := edgar_client.GetRecentFilings(ctx.Request.Context(), symbol, formType, count)
	if err != nil {
		zap.L().Error("Error fetching filings", zap.String("symbol", symbol), zap.Error(err))
		ctx.JSON(502, gin.H{"error": "Error fetching filings"})
		return
	}

	ctx.JSON(200, gin.H{"symbol": symbol, "filings": filings})
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	mongo_client "scorecardbackend/clients/mongo"
	"scorecardbackend/types"
	"scorecardbackend/utils/helpers"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gopkg.in/mgo.v2/bson"
)

// overrideColumns maps watchlist sheet header patterns to the metric keys
// their cells override. Any metric not listed here cannot be overridden from
// a sheet.
var overrideColumns = []struct {
	key      string
	patterns []string
}{
	{MetricEPSGrowth5Y, []string{`eps\s*growth\s*\(?5y?r?\)?`, `5y\s*eps`}},
	{MetricEPSGrowthNext1Y, []string{`eps\s*growth\s*\(?next`, `next\s*year\s*eps`}},
	{MetricRevenueGrowth5Y, []string{`revenue\s*growth`, `5y\s*revenue`}},
	{MetricROE, []string{`^roe$`, `return\s*on\s*equity`}},
	{MetricROIC, []string{`^roic$`, `return\s*on\s*invested`}},
	{MetricForwardPE, []string{`forward\s*p\s*/?\s*e`}},
	{MetricPEGRatio, []string{`peg`}},
	{MetricPSRatio, []string{`p\s*/?\s*s\s*ratio`, `price\s*/?\s*sales`}},
	{MetricPriceToFCF, []string{`price\s*/?\s*fcf`, `p\s*/?\s*fcf`}},
	{MetricDebtToEquity, []string{`debt\s*/?\s*equity`, `d\s*/?\s*e\s*ratio`}},
	{MetricInterestCoverage, []string{`interest\s*coverage`}},
	{MetricDividendYield, []string{`dividend\s*yield`}},
	{MetricPayoutRatio, []string{`payout\s*ratio`}},
}

var symbolHeaderPatterns = []string{`^symbol$`, `^ticker$`, `ticker\s*symbol`}

type WatchlistServiceI interface {
	ParseXLSXFile(ctx *gin.Context, files <-chan string, profileName string, sentryCtx context.Context) error
}

type watchlistService struct {
	cache *ScoreCache
}

func NewWatchlistService(cache *ScoreCache) WatchlistServiceI {
	return &watchlistService{cache: cache}
}

var WatchlistService = NewWatchlistService(DefaultScoreCache)

// ParseXLSXFile ingests uploaded watchlist sheets: each file is archived to
// Cloudinary, parsed for ticker symbols and optional per-metric override
// columns, persisted, then scored. Every finished scorecard is streamed back
// to the uploader as a line of JSON.
func (ws *watchlistService) ParseXLSXFile(ctx *gin.Context, files <-chan string, profileName string, sentryCtx context.Context) error {
	defer sentry.Recover()
	span := sentry.StartSpan(sentryCtx, "[SERVICE] ParseXLSXFile")
	defer span.Finish()

	profile, err := GetProfile(profileName)
	if err != nil {
		return err
	}

	cld, err := cloudinary.NewFromURL(os.Getenv("CLOUDINARY_URL"))
	if err != nil {
		sentry.CaptureException(err)
		span.Status = sentry.SpanStatusInternalError
		return fmt.Errorf("error initializing Cloudinary: %w", err)
	}

	batchID := uuid.New().String()

	for filePath := range files {
		file, err := os.Open(filePath)
		if err != nil {
			sentry.CaptureException(err)
			zap.L().Error("Error opening file", zap.String("filePath", filePath), zap.Error(err))
			removeUpload(filePath)
			continue
		}

		// Archive the raw upload under a UUID name before parsing anything.
		cloudinaryFilename := uuid.New().String() + ".xlsx"
		dbSpan := sentry.StartSpan(span.Context(), "[DB] Upload XLSX File")
		uploadResult, err := cld.Upload.Upload(ctx, file, uploader.UploadParams{
			PublicID: cloudinaryFilename,
			Folder:   "watchlist_uploads",
		})
		dbSpan.Finish()
		if err != nil {
			zap.L().Error("Error uploading file to Cloudinary", zap.String("filePath", filePath), zap.Error(err))
			sentry.CaptureException(err)
			file.Close()
			continue
		}
		zap.L().Info("File uploaded to Cloudinary", zap.String("filePath", filePath), zap.String("url", uploadResult.SecureURL))

		if _, err := file.Seek(0, 0); err != nil {
			zap.L().Error("Error seeking file", zap.String("filePath", filePath), zap.Error(err))
			sentry.CaptureException(err)
			file.Close()
			continue
		}

		entries, err := parseWatchlistSheet(file)
		file.Close()
		removeUpload(filePath)
		if err != nil {
			sentry.CaptureException(err)
			zap.L().Error("Error parsing XLSX file", zap.String("filePath", filePath), zap.Error(err))
			continue
		}
		if len(entries) == 0 {
			zap.L().Warn("No symbols found in sheet", zap.String("filePath", filePath))
			continue
		}

		ws.persistEntries(span.Context(), entries)
		ws.scoreEntries(ctx, entries, profile, batchID)
	}
	return nil
}

func removeUpload(filePath string) {
	if err := os.Remove(filePath); err != nil {
		zap.L().Error("Error removing file", zap.String("filePath", filePath), zap.Error(err))
	}
}

// parseWatchlistSheet walks every sheet in the workbook looking for a header
// row with a symbol column, then reads one entry per data row. Override
// cells that fail to parse are skipped, not zeroed.
func parseWatchlistSheet(file *os.File) ([]types.WatchlistEntry, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []types.WatchlistEntry
	seen := map[string]bool{}

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			zap.L().Error("Error reading rows from sheet", zap.String("sheet", sheet), zap.Error(err))
			continue
		}

		headerFound := false
		symbolCol := -1
		overrideCols := map[int]string{}

		for _, row := range rows {
			if len(row) == 0 {
				continue
			}

			if !headerFound {
				for i, cell := range row {
					if helpers.MatchHeader(cell, symbolHeaderPatterns) {
						headerFound = true
						symbolCol = i
						break
					}
				}
				if !headerFound {
					continue
				}
				for i, cell := range row {
					normalized := helpers.NormalizeString(cell)
					for _, col := range overrideColumns {
						if helpers.MatchHeader(normalized, col.patterns) {
							overrideCols[i] = col.key
							break
						}
					}
				}
				continue
			}

			if symbolCol >= len(row) {
				continue
			}
			symbol := helpers.NormalizeSymbol(row[symbolCol])
			if symbol == "" || seen[symbol] {
				continue
			}
			seen[symbol] = true

			entry := types.WatchlistEntry{Symbol: symbol}
			for i, key := range overrideCols {
				if i >= len(row) {
					continue
				}
				if v, ok := helpers.ToFloat(row[i]); ok {
					if entry.Overrides == nil {
						entry.Overrides = map[string]float64{}
					}
					entry.Overrides[key] = v
				}
			}
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (ws *watchlistService) persistEntries(ctx context.Context, entries []types.WatchlistEntry) {
	span := sentry.StartSpan(ctx, "[DAO] upsertWatchlist")
	defer span.Finish()

	for _, entry := range entries {
		filter := bson.M{"symbol": entry.Symbol}
		update := bson.M{"$set": bson.M{
			"symbol":    entry.Symbol,
			"overrides": entry.Overrides,
			"updatedAt": time.Now(),
		}}
		opts := options.Update().SetUpsert(true)
		if _, err := mongo_client.WatchlistCollection().UpdateOne(ctx, filter, update, opts); err != nil {
			sentry.CaptureException(err)
			zap.L().Error("Error persisting watchlist entry", zap.String("symbol", entry.Symbol), zap.Error(err))
		}
	}
}

// scoreEntries scores each watchlist entry in sheet order and streams the
// reports. Entry overrides are injected into the snapshot before scoring so
// sheet values win over fetched data.
func (ws *watchlistService) scoreEntries(ctx *gin.Context, entries []types.WatchlistEntry, profile Profile, batchID string) {
	for i, entry := range entries {
		if i > 0 {
			time.Sleep(batchPacing)
		}

		report, err := scoreWatchlistEntry(ctx.Request.Context(), entry, profile, batchID)
		if err != nil {
			zap.L().Error("Error scoring watchlist entry",
				zap.String("symbol", entry.Symbol),
				zap.Error(err))
			continue
		}

		// Sheet overrides change the score under every profile, so stale
		// cached reports for the symbol are dropped, not just replaced.
		ws.cache.Invalidate(entry.Symbol)
		ws.cache.Put(report)

		line, err := json.Marshal(report)
		if err != nil {
			zap.L().Error("Error marshaling scorecard", zap.String("symbol", entry.Symbol), zap.Error(err))
			continue
		}
		if _, err := ctx.Writer.Write(append(line, '\n')); err != nil {
			zap.L().Error("Client went away mid-upload", zap.Error(err))
			return
		}
		ctx.Writer.Flush()
	}
}

func scoreWatchlistEntry(ctx context.Context, entry types.WatchlistEntry, profile Profile, batchID string) (types.ScoreReport, error) {
	snapshot, err := SnapshotService.FetchSnapshot(ctx, entry.Symbol)
	if err != nil {
		zap.L().Error("Snapshot fetch failed for watchlist entry",
			zap.String("symbol", entry.Symbol),
			zap.Error(err))
		snapshot = nil
	}
	if snapshot != nil {
		snapshot.ManualOverrides = entry.Overrides
	}

	report := BuildScoreReport(entry.Symbol, snapshot, profile, time.Now())

	filter := bson.M{"symbol": report.Symbol, "profile": report.Profile}
	update := bson.M{"$set": report}
	opts := options.Update().SetUpsert(true)
	if _, err := mongo_client.ScorecardCollection().UpdateOne(ctx, filter, update, opts); err != nil {
		return report, err
	}
	return report, nil
}

package services

import (
	"context"
	"encoding/json"
	"math"
	"time"

	kafka_client "scorecardbackend/clients/kafka"
	mongo_client "scorecardbackend/clients/mongo"
	rabbitmq_client "scorecardbackend/clients/rabbitmq"
	"scorecardbackend/types"
	"scorecardbackend/utils/helpers"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gopkg.in/mgo.v2/bson"
)

const scorecardPageSize = 20

// batchPacing spaces out upstream fetches during batch scoring so the data
// provider's rate limits are respected.
const batchPacing = 1 * time.Second

// BuildScoreReport turns one financial snapshot into a full score report for
// the given profile. It is a pure function of its inputs: the same snapshot,
// profile and clock always produce the same report.
//
// A nil snapshot, or one whose annual income statements are structurally
// missing, produces the ERR composite with no metric rows. Missing individual
// data points are not errors; they score zero and stay in the report.
func BuildScoreReport(symbol string, snapshot *types.FinancialSnapshot, profile Profile, now time.Time) types.ScoreReport {
	report := types.ScoreReport{
		Symbol:      symbol,
		Profile:     profile.Name,
		Metrics:     map[string]types.MetricResult{},
		GeneratedAt: now,
	}

	if snapshot == nil || snapshot.IncomeAnnual == nil {
		report.CompositeScore = types.CompositeScore{Err: true}
		return report
	}

	if snapshot.Profile != nil && snapshot.Profile.MarketCap != nil {
		report.MarketCapSize = helpers.GetMarketCapCategory(*snapshot.Profile.MarketCap)
	}

	values := CalculateMetrics(snapshot, profile, now)

	weighted, totalWeight := 0.0, 0.0
	for _, spec := range profile.Metrics {
		value := values[spec.Key]
		mult, interp := ScoreMetric(spec.Key, value)
		report.Metrics[spec.Key] = types.MetricResult{
			Label:          spec.Label,
			Value:          value,
			Format:         spec.Format,
			Weight:         spec.Weight,
			Multiplier:     mult,
			IsMet:          mult >= 1.0,
			Interpretation: interp,
		}
		if spec.Weight == nil {
			continue
		}
		// The weight always counts toward the denominator. A metric with no
		// data dilutes the score rather than silently dropping out.
		totalWeight += *spec.Weight
		weighted += *spec.Weight * mult
	}

	raw := sanitizeRaw(weighted / totalWeight * 100)
	raw = math.Max(0, math.Min(100, raw))
	report.CompositeScore = types.CompositeScore{Value: int(math.Round(raw))}
	return report
}

type ScorecardServiceI interface {
	GetScorecard(ctx context.Context, symbol, profileName string) (types.ScoreReport, error)
	ListScorecards(ctx context.Context, pageNumber int) ([]types.ScoreReport, error)
	BatchScore(ctx *gin.Context, symbols []string, profileName string) error
	ScoreAndPersist(ctx context.Context, symbol string, profile Profile, batchID string) (types.ScoreReport, error)
}

type scorecardService struct {
	cache     *ScoreCache
	snapshots SnapshotServiceI
}

func NewScorecardService(cache *ScoreCache, snapshots SnapshotServiceI) ScorecardServiceI {
	return &scorecardService{cache: cache, snapshots: snapshots}
}

var ScorecardService = NewScorecardService(DefaultScoreCache, SnapshotService)

// GetScorecard serves a scorecard from cache when fresh, otherwise fetches a
// snapshot, scores it, persists it and publishes the scoring event.
func (s *scorecardService) GetScorecard(ctx context.Context, symbol, profileName string) (types.ScoreReport, error) {
	profile, err := GetProfile(profileName)
	if err != nil {
		return types.ScoreReport{}, err
	}

	if report, ok := s.cache.Get(symbol, profile.Name); ok {
		zap.L().Info("scorecard cache hit",
			zap.String("symbol", symbol),
			zap.String("profile", profile.Name))
		return report, nil
	}

	return s.ScoreAndPersist(ctx, symbol, profile, "")
}

// ScoreAndPersist runs the full pipeline for one symbol: snapshot, score,
// mongo upsert, event fan-out, cache fill. Snapshot fetch failures still
// produce a persisted ERR scorecard rather than an error, matching the
// partial-failure tolerance of the snapshot assembly itself.
func (s *scorecardService) ScoreAndPersist(ctx context.Context, symbol string, profile Profile, batchID string) (types.ScoreReport, error) {
	span := sentry.StartSpan(ctx, "[SERVICE] scoreAndPersist")
	defer span.Finish()

	snapshot, err := s.snapshots.FetchSnapshot(span.Context(), symbol)
	if err != nil {
		zap.L().Error("snapshot fetch failed, scoring as error",
			zap.String("symbol", symbol),
			zap.Error(err))
		snapshot = nil
	}

	report := BuildScoreReport(symbol, snapshot, profile, time.Now())

	if err := s.persist(span.Context(), report); err != nil {
		sentry.CaptureException(err)
		zap.L().Error("persisting scorecard failed",
			zap.String("symbol", symbol),
			zap.Error(err))
		return report, err
	}

	s.publishEvent(report, batchID)
	s.cache.Put(report)
	return report, nil
}

func (s *scorecardService) persist(ctx context.Context, report types.ScoreReport) error {
	span := sentry.StartSpan(ctx, "[DAO] upsertScorecard")
	defer span.Finish()

	filter := bson.M{"symbol": report.Symbol, "profile": report.Profile}
	update := bson.M{"$set": report}
	opts := options.Update().SetUpsert(true)
	_, err := mongo_client.ScorecardCollection().UpdateOne(ctx, filter, update, opts)
	return err
}

func (s *scorecardService) publishEvent(report types.ScoreReport, batchID string) {
	event := types.ScorecardEvent{
		EventType:      "scorecard.generated",
		Symbol:         report.Symbol,
		Profile:        report.Profile,
		CompositeScore: report.CompositeScore.Display(),
		BatchID:        batchID,
		GeneratedAt:    report.GeneratedAt,
	}
	if err := kafka_client.SendScorecardEvent(event); err != nil {
		zap.L().Error("kafka publish failed", zap.String("symbol", report.Symbol), zap.Error(err))
	}
	if err := rabbitmq_client.SendScorecardEvent(event); err != nil {
		zap.L().Error("rabbitmq publish failed", zap.String("symbol", report.Symbol), zap.Error(err))
	}
}

// ListScorecards pages through persisted scorecards, most recent first.
func (s *scorecardService) ListScorecards(ctx context.Context, pageNumber int) ([]types.ScoreReport, error) {
	span := sentry.StartSpan(ctx, "[DAO] listScorecards")
	defer span.Finish()

	if pageNumber < 1 {
		pageNumber = 1
	}
	opts := options.Find().
		SetSort(bson.M{"generatedAt": -1}).
		SetSkip(int64((pageNumber - 1) * scorecardPageSize)).
		SetLimit(scorecardPageSize)

	cursor, err := mongo_client.ScorecardCollection().Find(ctx, bson.M{}, opts)
	if err != nil {
		sentry.CaptureException(err)
		return nil, err
	}
	defer cursor.Close(ctx)

	reports := []types.ScoreReport{}
	for cursor.Next(ctx) {
		var report types.ScoreReport
		if err := cursor.Decode(&report); err != nil {
			zap.L().Error("decoding scorecard failed", zap.Error(err))
			continue
		}
		reports = append(reports, report)
	}
	return reports, cursor.Err()
}

// BatchScore scores a list of symbols sequentially and streams each report
// to the client as a line of JSON the moment it is ready. Fetches are paced
// a second apart. One bad symbol never aborts the batch.
func (s *scorecardService) BatchScore(ctx *gin.Context, symbols []string, profileName string) error {
	profile, err := GetProfile(profileName)
	if err != nil {
		return err
	}

	batchID := uuid.New().String()
	zap.L().Info("starting batch score",
		zap.String("batchId", batchID),
		zap.Int("symbols", len(symbols)),
		zap.String("profile", profile.Name))

	for i, symbol := range symbols {
		if i > 0 {
			time.Sleep(batchPacing)
		}

		report, err := s.ScoreAndPersist(ctx.Request.Context(), symbol, profile, batchID)
		if err != nil {
			zap.L().Error("batch entry failed",
				zap.String("batchId", batchID),
				zap.String("symbol", symbol),
				zap.Error(err))
			continue
		}

		line, err := json.Marshal(report)
		if err != nil {
			zap.L().Error("marshaling scorecard failed", zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		if _, err := ctx.Writer.Write(append(line, '\n')); err != nil {
			zap.L().Error("client went away mid-batch", zap.String("batchId", batchID), zap.Error(err))
			return err
		}
		ctx.Writer.Flush()
	}

	zap.L().Info("batch score finished", zap.String("batchId", batchID))
	return nil
}

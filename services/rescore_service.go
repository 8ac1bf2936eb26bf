package services

import (
	"context"
	"time"

	mongo_client "scorecardbackend/clients/mongo"
	"scorecardbackend/types"

	"go.uber.org/zap"
	"gopkg.in/mgo.v2/bson"
)

// RescoreAll walks every persisted scorecard and regenerates it from fresh
// upstream data, preserving the {symbol, profile} key. Fetches are paced a
// second apart so a full refresh never hammers the provider. Failures are
// counted and logged, never fatal to the sweep.
func RescoreAll(ctx context.Context) {
	zap.L().Info("Starting scorecard refresh process")

	cursor, err := mongo_client.ScorecardCollection().Find(ctx, bson.M{})
	if err != nil {
		zap.L().Error("Error while fetching persisted scorecards", zap.Error(err))
		return
	}
	defer cursor.Close(ctx)

	updatedCount := 0
	errorCount := 0
	first := true

	for cursor.Next(ctx) {
		var stored types.ScoreReport
		if err := cursor.Decode(&stored); err != nil {
			zap.L().Error("Error while decoding scorecard", zap.Error(err))
			errorCount++
			continue
		}

		if stored.Symbol == "" {
			zap.L().Warn("Skipping scorecard without symbol")
			continue
		}

		profile, err := GetProfile(stored.Profile)
		if err != nil {
			zap.L().Warn("Skipping scorecard with unknown profile",
				zap.String("symbol", stored.Symbol),
				zap.String("profile", stored.Profile))
			continue
		}

		if !first {
			time.Sleep(batchPacing)
		}
		first = false

		if _, err := ScorecardService.ScoreAndPersist(ctx, stored.Symbol, profile, ""); err != nil {
			zap.L().Error("Error refreshing scorecard",
				zap.String("symbol", stored.Symbol),
				zap.String("profile", stored.Profile),
				zap.Error(err))
			errorCount++
			continue
		}
		updatedCount++
	}

	if err := cursor.Err(); err != nil {
		zap.L().Error("Scorecard refresh cursor failed", zap.Error(err))
	}

	zap.L().Info("Scorecard refresh finished",
		zap.Int("updated", updatedCount),
		zap.Int("errors", errorCount))
}

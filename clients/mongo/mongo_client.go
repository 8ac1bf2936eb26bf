package mongo_client

import (
	"context"
	"os"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gopkg.in/mgo.v2/bson"
)

var (
	Client *mongo.Client
)

const databaseName = "scorecards"

// ScorecardCollection holds one document per {symbol, profile} pair.
func ScorecardCollection() *mongo.Collection {
	return Client.Database(databaseName).Collection("scorecards")
}

// WatchlistCollection holds the symbols and overrides parsed out of uploaded
// watchlist sheets.
func WatchlistCollection() *mongo.Collection {
	return Client.Database(databaseName).Collection("watchlist")
}

func init() {
	zap.L().Info("MONGO_URI: ", zap.String("uri", os.Getenv("MONGO_URI")))

	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	mongoURI := os.Getenv("MONGO_URI")
	opts := options.Client().ApplyURI(mongoURI).SetServerAPIOptions(serverAPI)

	var err error // This is to ensure Client is not redeclared in the local scope
	Client, err = mongo.Connect(context.TODO(), opts)
	if err != nil {
		panic(err)
	}

	// Send a ping to confirm a successful connection
	pingCmd := bson.M{"ping": 1}
	if err := Client.Database("admin").RunCommand(context.TODO(), pingCmd).Err(); err != nil {
		panic(err)
	}

	zap.L().Info("Connected to MongoDB")
}

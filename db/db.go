package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	UserCollection   *mongo.Collection
	RecipeCollection *mongo.Collection

	Client *mongo.Client
)

// Connect dials MongoDB and wires up the collection globals.
func Connect(ctx context.Context, uri string) error {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return err
	}
	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		return err
	}

	Client = client
	database := client.Database("TastyTreasures")
	UserCollection = database.Collection("Users")
	RecipeCollection = database.Collection("Recipes")
	return nil
}

// Disconnect tears down the client. Safe to call when Connect never ran.
func Disconnect(ctx context.Context) error {
	if Client == nil {
		return nil
	}
	return Client.Disconnect(ctx)
}

package db

import (
	"context"
	"errors"

	"tastytreasures/models"
	"tastytreasures/storage"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUserStore implements storage.UserStore over the Users collection.
type MongoUserStore struct {
	coll *mongo.Collection
}

func NewMongoUserStore(coll *mongo.Collection) *MongoUserStore {
	return &MongoUserStore{coll: coll}
}

func (s *MongoUserStore) Insert(ctx context.Context, user *models.User) error {
	res, err := s.coll.InsertOne(ctx, user)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = id
	}
	return nil
}

func (s *MongoUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *MongoUserStore) AdjustCoins(ctx context.Context, email string, delta int) (int, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"email": email},
		bson.M{"$inc": bson.M{"coins": delta}},
		opts,
	).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, storage.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return user.Coins, nil
}

func (s *MongoUserStore) DebitCoins(ctx context.Context, email string, amount int) error {
	// Conditional update so two racing debits cannot both drain the balance.
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"email": email, "coins": bson.M{"$gte": amount}},
		bson.M{"$inc": bson.M{"coins": -amount}},
	)
	if err != nil {
		return err
	}
	if res.ModifiedCount == 0 {
		if exists, err := s.coll.CountDocuments(ctx, bson.M{"email": email}); err == nil && exists == 0 {
			return storage.ErrNotFound
		}
		return storage.ErrInsufficientFunds
	}
	return nil
}

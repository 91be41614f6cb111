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

// MongoRecipeStore implements storage.RecipeStore over the Recipes collection.
type MongoRecipeStore struct {
	coll *mongo.Collection
}

func NewMongoRecipeStore(coll *mongo.Collection) *MongoRecipeStore {
	return &MongoRecipeStore{coll: coll}
}

func (s *MongoRecipeStore) Insert(ctx context.Context, recipe *models.Recipe) (string, error) {
	res, err := s.coll.InsertOne(ctx, recipe)
	if err != nil {
		return "", err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", errors.New("db: unexpected inserted id type")
	}
	recipe.ID = id
	return id.Hex(), nil
}

func (s *MongoRecipeStore) GetByID(ctx context.Context, id string) (*models.Recipe, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, storage.ErrNotFound
	}
	var recipe models.Recipe
	err = s.coll.FindOne(ctx, bson.M{"_id": objID}).Decode(&recipe)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (s *MongoRecipeStore) List(ctx context.Context, filter storage.ListFilter) ([]models.Recipe, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Country != "" {
		query["country"] = filter.Country
	}
	if filter.Search != "" {
		query["title"] = bson.M{"$regex": primitive.Regex{Pattern: filter.Search, Options: "i"}}
	}

	opts := options.Find()
	if filter.Page > 0 {
		size := filter.PageSize
		if size <= 0 {
			size = storage.DefaultPageSize
		}
		opts.SetSkip(int64((filter.Page - 1) * size))
		opts.SetLimit(int64(size))
	} else {
		opts.SetLimit(int64(storage.UnpaginatedCap))
	}

	cursor, err := s.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var recipes []models.Recipe
	if err := cursor.All(ctx, &recipes); err != nil {
		return nil, err
	}
	if recipes == nil {
		recipes = []models.Recipe{}
	}
	return recipes, nil
}

func (s *MongoRecipeStore) AddPurchaser(ctx context.Context, id, email string) (bool, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, storage.ErrNotFound
	}
	// The $ne guard makes the append-and-count a single conditional write, so
	// concurrent unlocks for the same pair settle to exactly one purchase.
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": objID, "purchased_by": bson.M{"$ne": email}},
		bson.M{
			"$addToSet": bson.M{"purchased_by": email},
			"$inc":      bson.M{"watchCount": 1},
		},
	)
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		if exists, err := s.coll.CountDocuments(ctx, bson.M{"_id": objID}); err == nil && exists == 0 {
			return false, storage.ErrNotFound
		}
		return false, nil
	}
	return res.ModifiedCount > 0, nil
}

func (s *MongoRecipeStore) RemovePurchaser(ctx context.Context, id, email string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return storage.ErrNotFound
	}
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": objID, "purchased_by": email},
		bson.M{
			"$pull": bson.M{"purchased_by": email},
			"$inc":  bson.M{"watchCount": -1},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *MongoRecipeStore) ToggleReaction(ctx context.Context, id, email string) (*models.Recipe, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, storage.ErrNotFound
	}

	// Try to un-react first; if nothing matched, the email was absent and we
	// react instead. Each arm is one atomic update.
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": objID, "reactions": email},
		bson.M{"$pull": bson.M{"reactions": email}},
	)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		res, err = s.coll.UpdateOne(ctx,
			bson.M{"_id": objID, "reactions": bson.M{"$ne": email}},
			bson.M{"$push": bson.M{"reactions": email}},
		)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, storage.ErrNotFound
		}
	}

	return s.GetByID(ctx, id)
}

package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Recipe struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description" json:"description"`
	Category     string             `bson:"category" json:"category"`
	Country      string             `bson:"country" json:"country"`
	VideoURL     string             `bson:"videoURL" json:"videoURL"`
	Ingredients  []string           `bson:"ingredients" json:"ingredients"`
	Steps        []string           `bson:"steps" json:"steps"`
	ImageURLs    []string           `bson:"imageUrls" json:"imageUrls"`
	CreatorEmail string             `bson:"creatorEmail" json:"creatorEmail"`
	WatchCount   int                `bson:"watchCount" json:"watchCount"`
	PurchasedBy  []string           `bson:"purchased_by" json:"purchased_by"`
	Reactions    []string           `bson:"reactions" json:"reactions"`
}

// HasPurchased reports whether email already paid to unlock this recipe.
func (r *Recipe) HasPurchased(email string) bool {
	for _, e := range r.PurchasedBy {
		if e == email {
			return true
		}
	}
	return false
}

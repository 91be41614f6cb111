package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Email    string             `bson:"email" json:"email"`
	Name     string             `bson:"name,omitempty" json:"name,omitempty"`
	PhotoURL string             `bson:"photoURL,omitempty" json:"photoURL,omitempty"`
	Coins    int                `bson:"coins" json:"coins"`
}

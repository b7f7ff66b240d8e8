package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// CartItem carries a price snapshot taken when the product was added, so
// later catalog edits do not change what the customer saw.
type CartItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Title     string             `bson:"title" json:"title"`
	Price     float64            `bson:"price" json:"price"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

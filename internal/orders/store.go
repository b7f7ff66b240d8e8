package orders

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/models"
)

var ErrOrderNotFound = errors.New("order not found")

// Store is the order persistence contract. FindByUser returns only the
// given user's orders, newest first. FindByID reports a missing id as
// (nil, nil), not an error. SetStatus returns ErrOrderNotFound when no
// order matches.
type Store interface {
	Insert(ctx context.Context, order models.Order) (primitive.ObjectID, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	FindByID(ctx context.Context, orderID primitive.ObjectID) (*models.Order, error)
	SetStatus(ctx context.Context, orderID primitive.ObjectID, status string, at time.Time) error
}

// MongoStore keeps orders in the orders collection, sorted reads backed
// by the userId+createdAt compound index.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (m *MongoStore) Insert(ctx context.Context, order models.Order) (primitive.ObjectID, error) {
	res, err := m.db.Collection("orders").InsertOne(ctx, order)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	return id, nil
}

func (m *MongoStore) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := m.db.Collection("orders").Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := make([]models.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (m *MongoStore) FindByID(ctx context.Context, orderID primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := m.db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (m *MongoStore) SetStatus(ctx context.Context, orderID primitive.ObjectID, status string, at time.Time) error {
	res, err := m.db.Collection("orders").UpdateByID(ctx, orderID, bson.M{
		"$set": bson.M{
			"status":    status,
			"updatedAt": at,
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrOrderNotFound
	}
	return nil
}

package handlers

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/models"
)

// normalizeProductDocument tolerates the numeric-type drift Mongo
// introduces (int32/int64/double for stock and rating counts) and
// derives the inStock flag.
func normalizeProductDocument(raw bson.M) (models.Product, error) {
	if val, ok := raw["stock"]; ok {
		raw["stock"] = coerceInt(val)
	} else {
		raw["stock"] = 0
	}

	if rating, ok := raw["rating"].(bson.M); ok {
		if val, ok := rating["count"]; ok {
			rating["count"] = coerceInt(val)
		}
	} else if _, ok := raw["rating"]; !ok {
		raw["rating"] = bson.M{"rate": 0.0, "count": 0}
	}

	data, err := bson.Marshal(raw)
	if err != nil {
		return models.Product{}, err
	}

	var p models.Product
	if err := bson.Unmarshal(data, &p); err != nil {
		return models.Product{}, err
	}

	p.InStock = p.Stock > 0

	return p, nil
}

func coerceInt(val interface{}) int {
	switch typed := val.(type) {
	case int32:
		return int(typed)
	case int64:
		return int(typed)
	case float64:
		return int(typed)
	case int:
		return typed
	default:
		return 0
	}
}

func decodeProducts(ctx context.Context, cursor *mongo.Cursor) ([]models.Product, error) {
	products := make([]models.Product, 0)

	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}

		product, err := normalizeProductDocument(raw)
		if err != nil {
			return nil, err
		}

		products = append(products, product)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

// validImageURL mirrors the admin form rule: empty is allowed, anything
// else must be an absolute http(s) URL.
func validImageURL(image string) bool {
	trimmed := strings.TrimSpace(image)
	if trimmed == "" {
		return true
	}
	return strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://")
}

package handlers

import (
	"encoding/json"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestNormalizeProductDocumentCoercesStock(t *testing.T) {
	tests := []interface{}{int32(5), int64(5), float64(5), 5}
	for _, stock := range tests {
		product, err := normalizeProductDocument(bson.M{
			"title": "Test",
			"price": 100.0,
			"stock": stock,
		})
		if err != nil {
			t.Fatalf("normalizeProductDocument returned error for stock %T: %v", stock, err)
		}
		if product.Stock != 5 {
			t.Fatalf("expected stock 5 for %T, got %d", stock, product.Stock)
		}
		if !product.InStock {
			t.Fatal("expected InStock to be true")
		}
	}
}

func TestNormalizeProductDocumentMissingFields(t *testing.T) {
	product, err := normalizeProductDocument(bson.M{
		"title": "Bare",
		"price": 9.99,
	})
	if err != nil {
		t.Fatalf("normalizeProductDocument returned error: %v", err)
	}
	if product.Stock != 0 || product.InStock {
		t.Fatalf("expected zero stock out of stock, got stock=%d inStock=%v", product.Stock, product.InStock)
	}
	if product.Rating.Rate != 0 || product.Rating.Count != 0 {
		t.Fatalf("expected zero rating, got %+v", product.Rating)
	}
}

func TestNormalizeProductDocumentRatingCount(t *testing.T) {
	product, err := normalizeProductDocument(bson.M{
		"title":  "Rated",
		"price":  10.0,
		"stock":  3,
		"rating": bson.M{"rate": 4.5, "count": int64(120)},
	})
	if err != nil {
		t.Fatalf("normalizeProductDocument returned error: %v", err)
	}
	if product.Rating.Rate != 4.5 || product.Rating.Count != 120 {
		t.Fatalf("expected rating preserved, got %+v", product.Rating)
	}
}

func TestProductJSONIncludesInStock(t *testing.T) {
	product, err := normalizeProductDocument(bson.M{
		"title": "Test",
		"price": 120.0,
		"stock": 10,
	})
	if err != nil {
		t.Fatalf("normalizeProductDocument returned error: %v", err)
	}

	body, err := json.Marshal(product)
	if err != nil {
		t.Fatalf("json marshal failed: %v", err)
	}

	if !strings.Contains(string(body), "\"inStock\":true") {
		t.Fatalf("expected inStock=true in response json, got %s", string(body))
	}
}

func TestValidImageURL(t *testing.T) {
	valid := []string{"", "http://example.com/a.jpg", "https://i.imgur.com/x.png", "  https://cdn.shop/p.webp  "}
	for _, image := range valid {
		if !validImageURL(image) {
			t.Fatalf("expected %q to be valid", image)
		}
	}

	invalid := []string{"ftp://example.com/a.jpg", "example.com/a.jpg", "data:image/png;base64,xyz"}
	for _, image := range invalid {
		if validImageURL(image) {
			t.Fatalf("expected %q to be invalid", image)
		}
	}
}

func TestParsePaginationParams(t *testing.T) {
	page, limit, err := parsePaginationParams("2", "50")
	if err != nil || page != 2 || limit != 50 {
		t.Fatalf("expected page=2 limit=50, got page=%d limit=%d err=%v", page, limit, err)
	}

	page, limit, err = parsePaginationParams("", "")
	if err != nil || page != 1 || limit != 20 {
		t.Fatalf("expected defaults, got page=%d limit=%d err=%v", page, limit, err)
	}

	if _, _, err := parsePaginationParams("0", "10"); err == nil {
		t.Fatal("expected error for page=0")
	}
	if _, _, err := parsePaginationParams("1", "-5"); err == nil {
		t.Fatal("expected error for negative limit")
	}
}

package orders

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

func checkoutInput(items []models.CartItem) CheckoutInput {
	userID := primitive.NewObjectID()
	return CheckoutInput{
		UserID: &userID,
		Name:   "Ada Lovelace",
		Email:  "ada@example.com",
		Shipping: models.ShippingAddress{
			Address: "123 Main St",
			City:    "Springfield",
			State:   "IL",
			Zip:     "62704",
		},
		Items: items,
	}
}

func TestBuildRejectsEmptyCart(t *testing.T) {
	_, err := Build(checkoutInput(nil), time.Now())
	if err != ErrEmptyCart {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestBuildRejectsNonPositiveQuantity(t *testing.T) {
	items := []models.CartItem{
		{ProductID: primitive.NewObjectID(), Title: "A", Price: 10, Quantity: 0},
	}
	_, err := Build(checkoutInput(items), time.Now())
	if err != ErrInvalidQuantity {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestBuildComputesTotalFromSnapshot(t *testing.T) {
	items := []models.CartItem{
		{ProductID: primitive.NewObjectID(), Title: "A", Price: 10, Quantity: 2},
		{ProductID: primitive.NewObjectID(), Title: "B", Price: 5, Quantity: 1},
	}

	order, err := Build(checkoutInput(items), time.Now())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if order.TotalAmount != 25 {
		t.Fatalf("expected totalAmount 25, got %v", order.TotalAmount)
	}
	if order.Status != models.OrderStatusPending {
		t.Fatalf("expected pending status, got %q", order.Status)
	}
}

func TestBuildCopiesItemsByValue(t *testing.T) {
	items := []models.CartItem{
		{ProductID: primitive.NewObjectID(), Title: "A", Price: 10, Quantity: 2},
	}

	order, err := Build(checkoutInput(items), time.Now())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	// A later price change in the live cart must not reach the order.
	items[0].Price = 999
	items[0].Quantity = 99

	if order.Items[0].Price != 10 || order.Items[0].Quantity != 2 {
		t.Fatalf("order items aliased the input slice: %+v", order.Items[0])
	}
	if order.TotalAmount != 20 {
		t.Fatalf("expected totalAmount 20, got %v", order.TotalAmount)
	}
}

func TestBuildGuestOrderHasNilUser(t *testing.T) {
	in := checkoutInput([]models.CartItem{
		{ProductID: primitive.NewObjectID(), Title: "A", Price: 3, Quantity: 1},
	})
	in.UserID = nil

	order, err := Build(in, time.Now())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if order.UserID != nil {
		t.Fatalf("expected nil userId for guest order, got %v", order.UserID)
	}
}

func TestValidOrderStatus(t *testing.T) {
	for _, status := range []string{"pending", "processing", "shipped", "delivered", "cancelled"} {
		if !models.ValidOrderStatus(status) {
			t.Fatalf("expected %q to be valid", status)
		}
	}
	if models.ValidOrderStatus("refunded") {
		t.Fatal("expected unknown status to be invalid")
	}
}

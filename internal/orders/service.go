package orders

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrInvalidStatus   = errors.New("invalid order status")
)

// Publisher receives order-created notifications. Delivery is best
// effort; a failed publish never fails the checkout.
type Publisher interface {
	OrderCreated(ctx context.Context, order models.Order) error
}

type Service struct {
	store     Store
	rdb       *redis.Client
	publisher Publisher
}

// NewService wires the order flows. rdb may be nil (caching disabled)
// and publisher may be nil (no event feed), both useful in tests.
func NewService(store Store, rdb *redis.Client, publisher Publisher) *Service {
	return &Service{store: store, rdb: rdb, publisher: publisher}
}

type CheckoutInput struct {
	UserID   *primitive.ObjectID
	Name     string
	Email    string
	Shipping models.ShippingAddress
	Items    []models.CartItem
}

// Build assembles the order document from a checkout snapshot. The item
// slice is copied by value so later cart mutations cannot reach into the
// stored order, and the total is computed from the snapshot it ships with.
func Build(in CheckoutInput, now time.Time) (models.Order, error) {
	if len(in.Items) == 0 {
		return models.Order{}, ErrEmptyCart
	}

	items := make([]models.CartItem, 0, len(in.Items))
	total := 0.0
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return models.Order{}, ErrInvalidQuantity
		}
		items = append(items, item)
		total += item.Price * float64(item.Quantity)
	}

	return models.Order{
		UserID:          in.UserID,
		UserName:        in.Name,
		UserEmail:       in.Email,
		ShippingAddress: in.Shipping,
		Items:           items,
		TotalAmount:     total,
		Status:          models.OrderStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// Submit validates the cart snapshot and writes the order in a single
// insert. Nothing else is mutated here: the caller clears its cart only
// after Submit returns without error.
func (s *Service) Submit(ctx context.Context, in CheckoutInput) (models.Order, error) {
	order, err := Build(in, time.Now())
	if err != nil {
		return models.Order{}, err
	}

	id, err := s.store.Insert(ctx, order)
	if err != nil {
		return models.Order{}, err
	}
	order.ID = id

	s.invalidateListCache(ctx, order.UserID)

	if s.publisher != nil {
		if err := s.publisher.OrderCreated(ctx, order); err != nil {
			log.Println("[ORDER] [ERROR] order-created publish failed:", err)
		}
	}

	if order.UserID != nil {
		log.Println("[ORDER] [INFO] order created for user:", order.UserID.Hex())
	} else {
		log.Println("[ORDER] [INFO] guest order created")
	}

	return order, nil
}

// UpdateStatus is driven by the administrative status feed; it is the
// only writer after creation.
func (s *Service) UpdateStatus(ctx context.Context, orderID primitive.ObjectID, status string) error {
	if !models.ValidOrderStatus(status) {
		return ErrInvalidStatus
	}

	if err := s.store.SetStatus(ctx, orderID, status, time.Now()); err != nil {
		return err
	}

	s.invalidateOrderCache(ctx, orderID)
	return nil
}

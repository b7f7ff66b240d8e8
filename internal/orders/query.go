package orders

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

// Staleness windows for the read-side caches. The list cache matches the
// five-minute window the storefront tolerates for order history.
const (
	listCacheTTL  = 5 * time.Minute
	orderCacheTTL = 5 * time.Minute
)

func listCacheKey(userID primitive.ObjectID) string {
	return "orders:user:" + userID.Hex()
}

func orderCacheKey(orderID primitive.ObjectID) string {
	return "orders:id:" + orderID.Hex()
}

// ListByUser returns the user's orders, newest first. Results are served
// from cache within the staleness window; a cache miss or a cache error
// falls through to the database.
func (s *Service) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	if s.rdb != nil {
		data, err := s.rdb.Get(ctx, listCacheKey(userID)).Bytes()
		if err == nil {
			var cached []models.Order
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		} else if err != redis.Nil {
			log.Println("[ORDER] [ERROR] list cache read failed:", err)
		}
	}

	orders, err := s.store.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, order := range orders {
		warnMissingCreatedAt(order)
	}

	s.cacheJSON(ctx, listCacheKey(userID), orders, listCacheTTL)
	return orders, nil
}

// GetByID fetches a single order. A missing id is an empty result, not
// an error.
func (s *Service) GetByID(ctx context.Context, orderID primitive.ObjectID) (*models.Order, error) {
	if s.rdb != nil {
		data, err := s.rdb.Get(ctx, orderCacheKey(orderID)).Bytes()
		if err == nil {
			var cached models.Order
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
		} else if err != redis.Nil {
			log.Println("[ORDER] [ERROR] order cache read failed:", err)
		}
	}

	order, err := s.store.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, nil
	}

	warnMissingCreatedAt(*order)
	s.cacheJSON(ctx, orderCacheKey(orderID), *order, orderCacheTTL)
	return order, nil
}

// A zero createdAt means the timestamp write was lost; report it as
// stored rather than substituting the query time.
func warnMissingCreatedAt(order models.Order) {
	if order.CreatedAt.IsZero() {
		log.Println("[ORDER] [WARN] order missing createdAt:", order.ID.Hex())
	}
}

func (s *Service) cacheJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Println("[ORDER] [ERROR] cache write failed:", err)
	}
}

func (s *Service) invalidateListCache(ctx context.Context, userID *primitive.ObjectID) {
	if s.rdb == nil || userID == nil {
		return
	}
	if err := s.rdb.Del(ctx, listCacheKey(*userID)).Err(); err != nil {
		log.Println("[ORDER] [ERROR] list cache invalidation failed:", err)
	}
}

func (s *Service) invalidateOrderCache(ctx context.Context, orderID primitive.ObjectID) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, orderCacheKey(orderID)).Err(); err != nil {
		log.Println("[ORDER] [ERROR] order cache invalidation failed:", err)
	}
}

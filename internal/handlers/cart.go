package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/cart"
	"storefront/internal/models"
)

// cartSessions is the session persistence surface the handlers need;
// satisfied by cart.SessionStore.
type cartSessions interface {
	Load(ctx context.Context, sessionID string) (*cart.Cart, error)
	Save(ctx context.Context, sessionID string, c *cart.Cart) error
	Clear(ctx context.Context, sessionID string) error
}

// Quantity carries no binding tag so a zero or negative value reaches
// the cart and fails with its invalid-quantity message instead of a
// misleading "required" one.
type addCartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func sessionIDFromContext(c *gin.Context) (string, bool) {
	value, ok := c.Get("sessionId")
	if !ok {
		return "", false
	}
	sessionID, ok := value.(string)
	return sessionID, ok && sessionID != ""
}

func cartSummary(current *cart.Cart) gin.H {
	return gin.H{
		"items":     current.Items,
		"itemCount": current.ItemCount(),
		"total":     current.Total(),
	}
}

func GetCart(carts cartSessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, ok := sessionIDFromContext(c)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing session"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		current, err := carts.Load(ctx, sessionID)
		if err != nil {
			log.Println("[CART] [ERROR] load failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cart unavailable"})
			return
		}

		c.JSON(http.StatusOK, cartSummary(current))
	}
}

// AddCartItem snapshots the product's current title and price into the
// cart line; a product already in the cart gets its quantity merged.
func AddCartItem(db *mongo.Database, carts cartSessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, ok := sessionIDFromContext(c)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing session"})
			return
		}

		var req addCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if req.Quantity <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": cart.ErrInvalidQuantity.Error()})
			return
		}

		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.ProductID))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid productId"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var product models.Product
		err = db.Collection("products").FindOne(ctx, bson.M{
			"_id":       productID,
			"isDeleted": bson.M{"$ne": true},
		}).Decode(&product)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid productId"})
			return
		}
		if err != nil {
			log.Println("[CART] [ERROR] product lookup failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		current, err := carts.Load(ctx, sessionID)
		if err != nil {
			log.Println("[CART] [ERROR] load failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cart unavailable"})
			return
		}

		if err := current.Add(product, req.Quantity); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := carts.Save(ctx, sessionID, current); err != nil {
			log.Println("[CART] [ERROR] save failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cart unavailable"})
			return
		}

		c.JSON(http.StatusOK, cartSummary(current))
	}
}

func UpdateCartItem(carts cartSessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, ok := sessionIDFromContext(c)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing session"})
			return
		}

		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("productId")))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid productId"})
			return
		}

		var req setQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		current, err := carts.Load(ctx, sessionID)
		if err != nil {
			log.Println("[CART] [ERROR] load failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cart unavailable"})
			return
		}

		if err := current.SetQuantity(productID, req.Quantity); err != nil {
			status := http.StatusBadRequest
			if err == cart.ErrItemNotFound {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		if err := carts.Save(ctx, sessionID, current); err != nil {
			log.Println("[CART] [ERROR] save failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cart unavailable"})
			return
		}

		c.JSON(http.StatusOK, cartSummary(current))
	}
}

func RemoveCartItem(carts cartSessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, ok := sessionIDFromContext(c)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing session"})
			return
		}

		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("productId")))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid productId"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		current, err := carts.Load(ctx, sessionID)
		if err != nil {
			log.Println("[CART] [ERROR] load failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cart unavailable"})
			return
		}

		if err := current.Remove(productID); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}

		if err := carts.Save(ctx, sessionID, current); err != nil {
			log.Println("[CART] [ERROR] save failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cart unavailable"})
			return
		}

		c.JSON(http.StatusOK, cartSummary(current))
	}
}

func ClearCart(carts cartSessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, ok := sessionIDFromContext(c)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing session"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := carts.Clear(ctx, sessionID); err != nil {
			log.Println("[CART] [ERROR] clear failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cart unavailable"})
			return
		}

		c.JSON(http.StatusOK, cartSummary(cart.New()))
	}
}

package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/auth"
	"storefront/internal/metrics"
	"storefront/internal/models"
	"storefront/internal/orders"
)

// orderSubmitter is the slice of the order service checkout needs.
type orderSubmitter interface {
	Submit(ctx context.Context, in orders.CheckoutInput) (models.Order, error)
}

type checkoutRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Address string `json:"address" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	Zip     string `json:"zip" binding:"required"`
}

// Checkout submits the session cart as an order. Guests may check out;
// the cart is cleared only after the write is confirmed.
func Checkout(ordersSvc orderSubmitter, carts cartSessions, m *metrics.Metrics, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		sessionID, ok := sessionIDFromContext(c)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing session"})
			return
		}

		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		userID, err := userIDFromHeader(c.GetHeader("Authorization"), jwtSecret)
		if err != nil {
			log.Println("[ORDER] [ERROR] token validation failed:", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		current, err := carts.Load(ctx, sessionID)
		if err != nil {
			log.Println("[ORDER] [ERROR] cart load failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cart unavailable"})
			return
		}

		if current.IsEmpty() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cart is empty"})
			return
		}

		order, err := ordersSvc.Submit(ctx, orders.CheckoutInput{
			UserID: userID,
			Name:   strings.TrimSpace(req.Name),
			Email:  strings.ToLower(strings.TrimSpace(req.Email)),
			Shipping: models.ShippingAddress{
				Address: strings.TrimSpace(req.Address),
				City:    strings.TrimSpace(req.City),
				State:   strings.TrimSpace(req.State),
				Zip:     strings.TrimSpace(req.Zip),
			},
			Items: current.Items,
		})
		if err != nil {
			m.IncrementOrdersFailed()
			if errors.Is(err, orders.ErrEmptyCart) || errors.Is(err, orders.ErrInvalidQuantity) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		// The write is confirmed; only now does the cart state change.
		current.Clear()
		if err := carts.Clear(ctx, sessionID); err != nil {
			log.Println("[ORDER] [ERROR] session cart clear failed:", err)
		}

		m.IncrementOrdersCreated()
		c.JSON(http.StatusCreated, gin.H{
			"orderId": order.ID.Hex(),
			"message": "order created",
		})
	}
}

// ListOrders returns the authenticated user's order history, newest
// first.
func ListOrders(ordersSvc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDValue, ok := c.Get("userId")
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		userID := userIDValue.(primitive.ObjectID)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		list, err := ordersSvc.ListByUser(ctx, userID)
		if err != nil {
			log.Println("[ORDER] [ERROR] list failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "orders could not be fetched"})
			return
		}

		c.JSON(http.StatusOK, list)
	}
}

// GetOrder fetches one order by id. An unknown id yields an empty
// result, not an error.
func GetOrder(ordersSvc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		order, err := ordersSvc.GetByID(ctx, orderID)
		if err != nil {
			log.Println("[ORDER] [ERROR] get failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "order could not be fetched"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

// userIDFromHeader resolves an optional bearer token: no header means a
// guest checkout, a present but invalid token is an error.
func userIDFromHeader(header, secret string) (*primitive.ObjectID, error) {
	if strings.TrimSpace(header) == "" {
		return nil, nil
	}

	raw, err := auth.BearerToken(header)
	if err != nil {
		return nil, err
	}

	claims, err := auth.ParseAccessToken(raw, secret)
	if err != nil {
		return nil, err
	}

	userID, err := auth.AccountIDFromClaims(claims)
	if err != nil {
		return nil, err
	}
	return &userID, nil
}

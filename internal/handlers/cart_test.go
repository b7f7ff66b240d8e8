package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/cart"
	"storefront/internal/models"
)

func newCartRouter(sessions cartSessions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(testSession())
	r.POST("/cart/items", AddCartItem(nil, sessions))
	r.PUT("/cart/items/:productId", UpdateCartItem(sessions))
	return r
}

func TestAddCartItemRejectsNonPositiveQuantity(t *testing.T) {
	sessions := newStubCartSessions()
	r := newCartRouter(sessions)

	// Quantity is checked before any product lookup, so the nil db is
	// never touched.
	body := `{"productId":"` + primitive.NewObjectID().Hex() + `","quantity":0}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), cart.ErrInvalidQuantity.Error())
}

func TestUpdateCartItemRejectsNonPositiveQuantity(t *testing.T) {
	sessions := newStubCartSessions()
	productID := primitive.NewObjectID()

	current := cart.New()
	current.Items = append(current.Items, models.CartItem{
		ProductID: productID,
		Title:     "Gopher Tee",
		Price:     10,
		Quantity:  2,
	})
	sessions.carts[testSessionID] = current

	r := newCartRouter(sessions)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/cart/items/"+productID.Hex(), strings.NewReader(`{"quantity":0}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), cart.ErrInvalidQuantity.Error())
	require.Equal(t, 2, current.Items[0].Quantity)
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/cart"
	"storefront/internal/metrics"
	"storefront/internal/models"
	"storefront/internal/orders"
)

// Prometheus collectors register once per process.
var testMetrics = metrics.New()

type stubSubmitter struct {
	err   error
	calls int
	last  orders.CheckoutInput
}

func (s *stubSubmitter) Submit(_ context.Context, in orders.CheckoutInput) (models.Order, error) {
	s.calls++
	s.last = in
	if s.err != nil {
		return models.Order{}, s.err
	}
	order, err := orders.Build(in, time.Now())
	if err != nil {
		return models.Order{}, err
	}
	order.ID = primitive.NewObjectID()
	return order, nil
}

type stubCartSessions struct {
	carts  map[string]*cart.Cart
	clears int
}

func newStubCartSessions() *stubCartSessions {
	return &stubCartSessions{carts: map[string]*cart.Cart{}}
}

func (s *stubCartSessions) Load(_ context.Context, sessionID string) (*cart.Cart, error) {
	if c, ok := s.carts[sessionID]; ok {
		return c, nil
	}
	return cart.New(), nil
}

func (s *stubCartSessions) Save(_ context.Context, sessionID string, c *cart.Cart) error {
	s.carts[sessionID] = c
	return nil
}

func (s *stubCartSessions) Clear(_ context.Context, sessionID string) error {
	s.clears++
	delete(s.carts, sessionID)
	return nil
}

const testSessionID = "session-1"

func testSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("sessionId", testSessionID)
		c.Next()
	}
}

func newCheckoutRouter(submitter orderSubmitter, sessions cartSessions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(testSession())
	r.POST("/orders", Checkout(submitter, sessions, testMetrics, "test-secret"))
	return r
}

const checkoutBody = `{"name":"Ada Lovelace","email":"ada@example.com","address":"123 Main St","city":"Springfield","state":"IL","zip":"62704"}`

func seedSessionCart(sessions *stubCartSessions) {
	c := cart.New()
	c.Items = append(c.Items, models.CartItem{
		ProductID: primitive.NewObjectID(),
		Title:     "Gopher Tee",
		Price:     10,
		Quantity:  2,
	})
	sessions.carts[testSessionID] = c
}

func postCheckout(r *gin.Engine, authorization string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(checkoutBody))
	req.Header.Set("Content-Type", "application/json")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestCheckoutClearsCartOnlyAfterWrite(t *testing.T) {
	submitter := &stubSubmitter{}
	sessions := newStubCartSessions()
	seedSessionCart(sessions)

	w := postCheckout(newCheckoutRouter(submitter, sessions), "")

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, 1, submitter.calls)
	require.Equal(t, 1, sessions.clears)
	require.NotContains(t, sessions.carts, testSessionID)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["orderId"])
}

func TestCheckoutKeepsCartWhenWriteFails(t *testing.T) {
	submitter := &stubSubmitter{err: errors.New("insert failed")}
	sessions := newStubCartSessions()
	seedSessionCart(sessions)

	w := postCheckout(newCheckoutRouter(submitter, sessions), "")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Zero(t, sessions.clears)

	current, err := sessions.Load(context.Background(), testSessionID)
	require.NoError(t, err)
	require.False(t, current.IsEmpty())
	require.Equal(t, 2, current.Items[0].Quantity)
}

func TestCheckoutRejectsEmptyCartBeforeSubmit(t *testing.T) {
	submitter := &stubSubmitter{}
	sessions := newStubCartSessions()

	w := postCheckout(newCheckoutRouter(submitter, sessions), "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "cart is empty")
	require.Zero(t, submitter.calls)
	require.Zero(t, sessions.clears)
}

func TestCheckoutRejectsInvalidToken(t *testing.T) {
	submitter := &stubSubmitter{}
	sessions := newStubCartSessions()
	seedSessionCart(sessions)

	w := postCheckout(newCheckoutRouter(submitter, sessions), "Bearer not-a-token")

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Zero(t, submitter.calls)
	require.Zero(t, sessions.clears)
}

func TestCheckoutWithoutTokenIsGuest(t *testing.T) {
	submitter := &stubSubmitter{}
	sessions := newStubCartSessions()
	seedSessionCart(sessions)

	w := postCheckout(newCheckoutRouter(submitter, sessions), "")

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, 1, submitter.calls)
	require.Nil(t, submitter.last.UserID)
}

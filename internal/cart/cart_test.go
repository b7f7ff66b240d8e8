package cart

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

type CartSuite struct {
	suite.Suite
	cart *Cart
}

func TestCartSuite(t *testing.T) {
	suite.Run(t, new(CartSuite))
}

func (s *CartSuite) SetupTest() {
	s.cart = New()
}

func product(title string, price float64) models.Product {
	return models.Product{ID: primitive.NewObjectID(), Title: title, Price: price}
}

func (s *CartSuite) TestAddMergesSameProduct() {
	p := product("Keyboard", 49.90)

	s.Require().NoError(s.cart.Add(p, 2))
	s.Require().NoError(s.cart.Add(p, 3))

	s.Len(s.cart.Items, 1)
	s.Equal(5, s.cart.Items[0].Quantity)
	s.Equal(5, s.cart.ItemCount())
}

func (s *CartSuite) TestAddKeepsInsertionOrder() {
	first := product("First", 1)
	second := product("Second", 2)
	third := product("Third", 3)

	s.Require().NoError(s.cart.Add(first, 1))
	s.Require().NoError(s.cart.Add(second, 1))
	s.Require().NoError(s.cart.Add(third, 1))
	s.Require().NoError(s.cart.Add(second, 4))

	s.Equal(first.ID, s.cart.Items[0].ProductID)
	s.Equal(second.ID, s.cart.Items[1].ProductID)
	s.Equal(third.ID, s.cart.Items[2].ProductID)
	s.Equal(5, s.cart.Items[1].Quantity)
}

func (s *CartSuite) TestAddRejectsNonPositiveQuantity() {
	p := product("Mug", 8)

	s.ErrorIs(s.cart.Add(p, 0), ErrInvalidQuantity)
	s.ErrorIs(s.cart.Add(p, -2), ErrInvalidQuantity)
	s.True(s.cart.IsEmpty())
	s.Equal(0, s.cart.ItemCount())
}

func (s *CartSuite) TestTotalSumsPriceTimesQuantity() {
	s.Require().NoError(s.cart.Add(product("A", 10), 2))
	s.Require().NoError(s.cart.Add(product("B", 5), 1))

	s.InDelta(25.0, s.cart.Total(), 0.0001)
	s.Equal(3, s.cart.ItemCount())
}

func (s *CartSuite) TestSetQuantityReplacesCount() {
	p := product("Lamp", 20)
	s.Require().NoError(s.cart.Add(p, 2))

	s.Require().NoError(s.cart.SetQuantity(p.ID, 7))
	s.Equal(7, s.cart.Items[0].Quantity)

	s.ErrorIs(s.cart.SetQuantity(p.ID, 0), ErrInvalidQuantity)
	s.Equal(7, s.cart.Items[0].Quantity)
}

func (s *CartSuite) TestSetQuantityUnknownProduct() {
	s.ErrorIs(s.cart.SetQuantity(primitive.NewObjectID(), 1), ErrItemNotFound)
}

func (s *CartSuite) TestRemove() {
	first := product("First", 1)
	second := product("Second", 2)
	s.Require().NoError(s.cart.Add(first, 1))
	s.Require().NoError(s.cart.Add(second, 1))

	s.Require().NoError(s.cart.Remove(first.ID))
	s.Len(s.cart.Items, 1)
	s.Equal(second.ID, s.cart.Items[0].ProductID)

	s.ErrorIs(s.cart.Remove(first.ID), ErrItemNotFound)
}

func (s *CartSuite) TestClear() {
	s.Require().NoError(s.cart.Add(product("A", 10), 2))

	s.cart.Clear()

	s.True(s.cart.IsEmpty())
	s.Equal(0, s.cart.ItemCount())
	s.InDelta(0.0, s.cart.Total(), 0.0001)
}

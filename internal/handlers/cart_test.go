package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/przhiin/OAKSLAND/internal/models"
)

func TestAddToCartUpsert(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "cart@example.com", "secret123", false)
	token := env.accessToken(t, user)
	product := env.createProduct(t, "Teak Dining Table", "199.90")

	resp := env.request(t, http.MethodPost, "/api/cart/add",
		map[string]interface{}{"product_id": product.ID.String(), "quantity": 2}, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, product.Name, body["product"])

	resp = env.request(t, http.MethodPost, "/api/cart/add",
		map[string]interface{}{"product_id": product.ID.String(), "quantity": 3}, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// One row, incremented quantity.
	var items []models.CartItem
	require.NoError(t, env.db.Where("user_id = ?", user.ID).Find(&items).Error)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)

	resp = env.request(t, http.MethodGet, "/api/cart", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "999.50", body["total_amount"])
}

func TestAddToCartDefaultsQuantityToOne(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "cart@example.com", "secret123", false)
	token := env.accessToken(t, user)
	product := env.createProduct(t, "Oak Shelf", "49.00")

	resp := env.request(t, http.MethodPost, "/api/cart/add",
		map[string]interface{}{"product_id": product.ID.String()}, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var item models.CartItem
	require.NoError(t, env.db.Where("user_id = ?", user.ID).First(&item).Error)
	assert.Equal(t, 1, item.Quantity)
}

func TestAddToCartUnknownProduct(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "cart@example.com", "secret123", false)
	token := env.accessToken(t, user)

	resp := env.request(t, http.MethodPost, "/api/cart/add",
		map[string]interface{}{"product_id": uuid.NewString(), "quantity": 1}, token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAddToCartRejectsNegativeQuantity(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "cart@example.com", "secret123", false)
	token := env.accessToken(t, user)
	product := env.createProduct(t, "Oak Shelf", "49.00")

	resp := env.request(t, http.MethodPost, "/api/cart/add",
		map[string]interface{}{"product_id": product.ID.String(), "quantity": -2}, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCartRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/api/cart/add"},
		{http.MethodGet, "/api/cart"},
		{http.MethodPost, "/api/cart/checkout"},
		{http.MethodGet, "/api/cart/orders"},
	} {
		resp := env.request(t, route.method, route.path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", route.method, route.path)
	}
}

func TestCheckout(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "buyer@example.com", "secret123", false)
	token := env.accessToken(t, user)
	table := env.createProduct(t, "Teak Dining Table", "199.90")
	shelf := env.createProduct(t, "Oak Shelf", "49.05")

	env.request(t, http.MethodPost, "/api/cart/add",
		map[string]interface{}{"product_id": table.ID.String(), "quantity": 2}, token)
	env.request(t, http.MethodPost, "/api/cart/add",
		map[string]interface{}{"product_id": shelf.ID.String(), "quantity": 1}, token)

	resp := env.request(t, http.MethodPost, "/api/cart/checkout", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)

	order, ok := body["order"].(map[string]interface{})
	require.True(t, ok, "body: %v", body)
	assert.Equal(t, "448.85", order["total_amount"])
	assert.Equal(t, models.OrderStatusPending, order["status"])

	// The cart is empty afterwards; its rows moved onto the order.
	resp = env.request(t, http.MethodGet, "/api/cart", nil, token)
	body = decodeBody(t, resp)
	assert.Empty(t, body["cart"])

	var orders []models.Order
	require.NoError(t, env.db.Preload("Items").Where("user_id = ?", user.ID).Find(&orders).Error)
	require.Len(t, orders, 1)
	assert.Len(t, orders[0].Items, 2)
	assert.Equal(t, "448.85", orders[0].TotalAmount.String())

	// A second checkout sees the cleared cart and creates nothing.
	resp = env.request(t, http.MethodPost, "/api/cart/checkout", nil, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var count int64
	require.NoError(t, env.db.Model(&models.Order{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCheckoutEmptyCartCreatesNoOrder(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "buyer@example.com", "secret123", false)
	token := env.accessToken(t, user)

	resp := env.request(t, http.MethodPost, "/api/cart/checkout", nil, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var count int64
	require.NoError(t, env.db.Model(&models.Order{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestCheckoutDoesNotTouchOtherCarts(t *testing.T) {
	env := newTestEnv(t)
	buyer := env.createUser(t, "buyer@example.com", "secret123", false)
	other := env.createUser(t, "other@example.com", "secret123", false)
	product := env.createProduct(t, "Walnut Chair", "75.00")

	buyerToken := env.accessToken(t, buyer)
	otherToken := env.accessToken(t, other)

	env.request(t, http.MethodPost, "/api/cart/add",
		map[string]interface{}{"product_id": product.ID.String(), "quantity": 1}, buyerToken)
	env.request(t, http.MethodPost, "/api/cart/add",
		map[string]interface{}{"product_id": product.ID.String(), "quantity": 4}, otherToken)

	resp := env.request(t, http.MethodPost, "/api/cart/checkout", nil, buyerToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var item models.CartItem
	require.NoError(t, env.db.Where("user_id = ? AND order_id IS NULL", other.ID).First(&item).Error)
	assert.Equal(t, 4, item.Quantity)
}

func TestOrderHistoryMostRecentFirst(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "buyer@example.com", "secret123", false)
	token := env.accessToken(t, user)
	first := env.createProduct(t, "Pine Bench", "30.00")
	second := env.createProduct(t, "Ash Stool", "20.00")

	env.request(t, http.MethodPost, "/api/cart/add",
		map[string]interface{}{"product_id": first.ID.String(), "quantity": 1}, token)
	resp := env.request(t, http.MethodPost, "/api/cart/checkout", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	time.Sleep(20 * time.Millisecond)

	env.request(t, http.MethodPost, "/api/cart/add",
		map[string]interface{}{"product_id": second.ID.String(), "quantity": 1}, token)
	resp = env.request(t, http.MethodPost, "/api/cart/checkout", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.request(t, http.MethodGet, "/api/cart/orders", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)

	orders, ok := body["orders"].([]interface{})
	require.True(t, ok)
	require.Len(t, orders, 2)

	newest := orders[0].(map[string]interface{})
	assert.Equal(t, "20.00", newest["total_amount"])
}

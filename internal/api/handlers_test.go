package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/bakery-storefront/internal/api/middleware"
	"github.com/example/bakery-storefront/internal/auth"
	"github.com/example/bakery-storefront/internal/domain/category"
	"github.com/example/bakery-storefront/internal/domain/order"
	"github.com/example/bakery-storefront/internal/domain/product"
	"github.com/example/bakery-storefront/internal/domain/user"
	"github.com/example/bakery-storefront/internal/infrastructure/store/mocks"
)

const (
	testSecret      = "handler-test-secret-with-enough-length"
	adminEmail      = "admin@example.com"
	customerSubject = "customer-subject"
)

type apiFixture struct {
	router     http.Handler
	verifier   *auth.JWTVerifier
	products   *mocks.MockProductStore
	categories *mocks.MockCategoryStore
	orders     *mocks.MockOrderStore
	users      *mocks.MockUserStore
	publisher  *mocks.MockPublisher
}

func newAPIFixture() *apiFixture {
	f := &apiFixture{
		verifier:   auth.NewJWTVerifier(testSecret, 15*time.Minute),
		products:   mocks.NewMockProductStore(),
		categories: mocks.NewMockCategoryStore(),
		orders:     mocks.NewMockOrderStore(),
		users:      mocks.NewMockUserStore(),
		publisher:  mocks.NewMockPublisher(),
	}

	users := user.NewService(f.users)
	catalog := product.NewCatalogService(f.products)
	categorySvc := category.NewService(f.categories, f.products)
	orders := order.NewService(f.orders, f.products, f.users, f.publisher)

	handlers := NewHandlers(catalog, categorySvc, orders, users, f.verifier)
	authn := middleware.NewAuthenticator(f.verifier, users, []string{adminEmail})
	f.router = NewRouter(handlers, authn)
	return f
}

func (f *apiFixture) seedCatalog() {
	f.categories.Add(&category.Category{ID: "cat-cakes", Name: "Cakes", Slug: "cakes", IsActive: true, SortOrder: 1})
	f.products.Add(&product.Product{
		ID: "p1", Name: "Chocolate Truffle Cake", Slug: "chocolate-truffle-cake",
		CategoryID: "cat-cakes", Price: 599, Weight: "500g",
		IsActive: true, IsFeatured: true,
		Availability: product.Availability{InStock: true, Quantity: 10},
	})
}

func (f *apiFixture) token(t *testing.T, subject, email string) string {
	t.Helper()
	token, err := f.verifier.GenerateToken(subject, "+919876543210", email)
	require.NoError(t, err)
	return token
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

type responseEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Errors  []FieldError    `json:"errors"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var env responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) responseEnvelope {
	t.Helper()
	env := decodeEnvelope(t, rec)
	require.NoError(t, json.Unmarshal(env.Data, dst))
	return env
}

func placeBody() map[string]any {
	return map[string]any{
		"items": []map[string]any{{"productId": "p1", "quantity": 2}},
		"deliveryAddress": map[string]any{
			"type": "home", "name": "Priya", "phone": "9876543210",
			"houseNumber": "42A", "street": "MG Road", "pincode": "560001",
			"city": "Bengaluru", "state": "Karnataka",
		},
		"paymentMethod": "cod",
	}
}

// ============================================
// Public Route Tests
// ============================================

func TestHealth(t *testing.T) {
	f := newAPIFixture()

	rec := f.do(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
}

func TestListProducts(t *testing.T) {
	f := newAPIFixture()
	f.seedCatalog()

	rec := f.do(t, http.MethodGet, "/api/products", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var data struct {
		Products   []product.Product `json:"products"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	env := decodeData(t, rec, &data)
	assert.True(t, env.Success)
	require.Len(t, data.Products, 1)
	assert.Equal(t, "Chocolate Truffle Cake", data.Products[0].Name)
	assert.Equal(t, 1, data.Pagination.Total)
}

func TestListProducts_UnknownCategorySlug(t *testing.T) {
	f := newAPIFixture()
	f.seedCatalog()

	rec := f.do(t, http.MethodGet, "/api/products?category=missing", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, decodeEnvelope(t, rec).Success)
}

func TestGetProduct_NotFound(t *testing.T) {
	f := newAPIFixture()

	rec := f.do(t, http.MethodGet, "/api/products/missing", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "product not found", env.Message)
}

func TestProductsByCategory(t *testing.T) {
	f := newAPIFixture()
	f.seedCatalog()

	rec := f.do(t, http.MethodGet, "/api/products/category/cakes", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var data struct {
		Category category.Category `json:"category"`
		Products []product.Product `json:"products"`
	}
	decodeData(t, rec, &data)
	assert.Equal(t, "Cakes", data.Category.Name)
	assert.Len(t, data.Products, 1)
}

func TestListCategories(t *testing.T) {
	f := newAPIFixture()
	f.seedCatalog()

	rec := f.do(t, http.MethodGet, "/api/categories", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var data struct {
		Categories []struct {
			Name         string `json:"name"`
			ProductCount int    `json:"productCount"`
		} `json:"categories"`
	}
	decodeData(t, rec, &data)
	require.Len(t, data.Categories, 1)
	assert.Equal(t, 1, data.Categories[0].ProductCount)
}

func TestUnknownRoute_JSON404(t *testing.T) {
	f := newAPIFixture()

	rec := f.do(t, http.MethodGet, "/api/nope", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "Route not found", env.Message)
}

// ============================================
// Auth Route Tests
// ============================================

func TestVerifyToken(t *testing.T) {
	f := newAPIFixture()
	token := f.token(t, customerSubject, "test@example.com")

	rec := f.do(t, http.MethodPost, "/api/auth/verify-token", "", map[string]any{"idToken": token})

	require.Equal(t, http.StatusOK, rec.Code)
	var data struct {
		User      user.User `json:"user"`
		IsNewUser bool      `json:"isNewUser"`
	}
	decodeData(t, rec, &data)
	assert.True(t, data.IsNewUser)
	assert.Equal(t, customerSubject, data.User.SubjectID)
	assert.Equal(t, "9876543210", data.User.Phone)

	// Second exchange finds the existing account.
	rec = f.do(t, http.MethodPost, "/api/auth/verify-token", "", map[string]any{"idToken": token})
	decodeData(t, rec, &data)
	assert.False(t, data.IsNewUser)
}

func TestVerifyToken_MissingToken(t *testing.T) {
	f := newAPIFixture()

	rec := f.do(t, http.MethodPost, "/api/auth/verify-token", "", map[string]any{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "idToken", env.Errors[0].Field)
}

func TestVerifyToken_InvalidToken(t *testing.T) {
	f := newAPIFixture()

	rec := f.do(t, http.MethodPost, "/api/auth/verify-token", "", map[string]any{"idToken": "garbage"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRoute_RequiresToken(t *testing.T) {
	f := newAPIFixture()

	rec := f.do(t, http.MethodGet, "/api/orders", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, decodeEnvelope(t, rec).Success)
}

func TestAddressLifecycle(t *testing.T) {
	f := newAPIFixture()
	token := f.token(t, customerSubject, "")

	rec := f.do(t, http.MethodPost, "/api/auth/addresses", token, map[string]any{
		"type": "home", "name": "Priya", "phone": "9876543210",
		"houseNumber": "42A", "street": "MG Road", "pincode": "560001",
		"city": "Bengaluru", "state": "Karnataka",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var data struct {
		Addresses []user.Address `json:"addresses"`
	}
	decodeData(t, rec, &data)
	require.Len(t, data.Addresses, 1)
	assert.True(t, data.Addresses[0].IsDefault)

	rec = f.do(t, http.MethodDelete, "/api/auth/addresses/"+data.Addresses[0].ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &data)
	assert.Empty(t, data.Addresses)
}

func TestAddAddress_Validation(t *testing.T) {
	f := newAPIFixture()
	token := f.token(t, customerSubject, "")

	rec := f.do(t, http.MethodPost, "/api/auth/addresses", token, map[string]any{"phone": "123"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "Validation failed", env.Message)
	assert.NotEmpty(t, env.Errors)
}

func TestAddAddress_HouseNumberRequired(t *testing.T) {
	f := newAPIFixture()
	token := f.token(t, customerSubject, "")

	rec := f.do(t, http.MethodPost, "/api/auth/addresses", token, map[string]any{
		"type": "home", "name": "Priya", "phone": "9876543210",
		"street": "MG Road", "pincode": "560001",
		"city": "Bengaluru", "state": "Karnataka",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Contains(t, fields(env.Errors), "houseNumber")
}

// ============================================
// Order Route Tests
// ============================================

func TestPlaceOrder(t *testing.T) {
	f := newAPIFixture()
	f.seedCatalog()
	token := f.token(t, customerSubject, "")

	rec := f.do(t, http.MethodPost, "/api/orders", token, placeBody())

	require.Equal(t, http.StatusCreated, rec.Code)
	var data struct {
		Order order.Order `json:"order"`
	}
	env := decodeData(t, rec, &data)
	assert.Equal(t, "Order placed successfully", env.Message)
	assert.Equal(t, order.StatusPending, data.Order.Status)
	assert.Equal(t, 1198, data.Order.Summary.Subtotal)
	assert.NotEmpty(t, data.Order.OrderNumber)
}

func TestPlaceOrder_Validation(t *testing.T) {
	f := newAPIFixture()
	token := f.token(t, customerSubject, "")

	rec := f.do(t, http.MethodPost, "/api/orders", token, map[string]any{"paymentMethod": "cod"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Contains(t, fields(env.Errors), "items")
	assert.Contains(t, fields(env.Errors), "deliveryAddress.phone")
}

func TestGetOrder_OtherUsersOrderHidden(t *testing.T) {
	f := newAPIFixture()
	f.seedCatalog()
	owner := f.token(t, "owner-subject", "")
	other := f.token(t, "other-subject", "")

	rec := f.do(t, http.MethodPost, "/api/orders", owner, placeBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	var data struct {
		Order order.Order `json:"order"`
	}
	decodeData(t, rec, &data)

	rec = f.do(t, http.MethodGet, "/api/orders/"+data.Order.ID, other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/orders/"+data.Order.ID, owner, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCancelOrder_NoBody(t *testing.T) {
	f := newAPIFixture()
	f.seedCatalog()
	token := f.token(t, customerSubject, "")

	rec := f.do(t, http.MethodPost, "/api/orders", token, placeBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	var data struct {
		Order order.Order `json:"order"`
	}
	decodeData(t, rec, &data)

	rec = f.do(t, http.MethodPut, "/api/orders/"+data.Order.ID+"/cancel", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeData(t, rec, &data)
	assert.Equal(t, "Order cancelled successfully", env.Message)
	assert.Equal(t, order.StatusCancelled, data.Order.Status)
	assert.Equal(t, "Cancelled by customer", data.Order.CancellationReason)
}

func TestRateOrder_Validation(t *testing.T) {
	f := newAPIFixture()
	token := f.token(t, customerSubject, "")

	rec := f.do(t, http.MethodPut, "/api/orders/any/rating", token, map[string]any{"overall": 9})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decodeEnvelope(t, rec).Errors)
}

func TestListOrders_InvalidStatus(t *testing.T) {
	f := newAPIFixture()
	token := f.token(t, customerSubject, "")

	rec := f.do(t, http.MethodGet, "/api/orders?status=shipped", token, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ============================================
// Admin Route Tests
// ============================================

func TestAdminOrders_RequiresAllowListedEmail(t *testing.T) {
	f := newAPIFixture()
	customer := f.token(t, customerSubject, "customer@example.com")

	rec := f.do(t, http.MethodGet, "/api/orders/admin/all", customer, nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminOrders(t *testing.T) {
	f := newAPIFixture()
	f.seedCatalog()
	customer := f.token(t, customerSubject, "")
	admin := f.token(t, "admin-subject", adminEmail)

	rec := f.do(t, http.MethodPost, "/api/orders", customer, placeBody())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/orders/admin/all", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var data struct {
		Orders []order.Order `json:"orders"`
	}
	decodeData(t, rec, &data)
	assert.Len(t, data.Orders, 1)
}

func TestAdminOrders_AliasRoute(t *testing.T) {
	f := newAPIFixture()
	admin := f.token(t, "admin-subject", adminEmail)

	rec := f.do(t, http.MethodGet, "/api/admin/orders", admin, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateOrderStatus(t *testing.T) {
	f := newAPIFixture()
	f.seedCatalog()
	customer := f.token(t, customerSubject, "")
	admin := f.token(t, "admin-subject", adminEmail)

	rec := f.do(t, http.MethodPost, "/api/orders", customer, placeBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	var data struct {
		Order order.Order `json:"order"`
	}
	decodeData(t, rec, &data)

	rec = f.do(t, http.MethodPut, "/api/orders/"+data.Order.ID+"/status", admin,
		map[string]any{"status": "confirmed"})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &data)
	assert.Equal(t, order.StatusConfirmed, data.Order.Status)

	// Customers cannot drive status transitions.
	rec = f.do(t, http.MethodPut, "/api/orders/"+data.Order.ID+"/status", customer,
		map[string]any{"status": "delivered"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

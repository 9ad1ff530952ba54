package cart_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartapi "gopos/internal/api/cart"
	"gopos/internal/cart"
	"gopos/internal/domain"
	apperror "gopos/internal/errors"
	"gopos/internal/pkg/logger"
	"gopos/internal/pkg/middleware"
)

// stubCatalog devolve itens de um mapa fixo.
type stubCatalog map[string]domain.CatalogItem

func (s stubCatalog) Item(id string) (domain.CatalogItem, error) {
	item, ok := s[id]
	if !ok {
		return domain.CatalogItem{}, apperror.NewNotFoundError(id)
	}
	return item, nil
}

func newHandler() (*cartapi.Handler, *cart.Store) {
	catalog := stubCatalog{
		"cafe":  {ID: "cafe", Name: "Café", Price: decimal.RequireFromString("10"), Available: domain.BoundedInt(2)},
		"torta": {ID: "torta", Name: "Torta", Price: decimal.RequireFromString("25"), Available: domain.BoundedInt(0)},
	}
	store := cart.NewStore()
	return cartapi.NewHandler(store, catalog, logger.NewNop()), store
}

func asCashier(req *http.Request, userID string) *http.Request {
	return req.WithContext(middleware.WithUserClaims(req.Context(), middleware.UserClaims{UserID: userID, Role: domain.RoleCashier}))
}

func TestAddItemHandler(t *testing.T) {
	h, store := newHandler()

	for i := 0; i < 2; i++ {
		req := asCashier(httptest.NewRequest(http.MethodPost, "/v1/cart/items", strings.NewReader(`{"item_id":"cafe"}`)), "u1")
		rec := httptest.NewRecorder()
		h.AddItemHandler(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	// Terceira unidade excede o estoque capturado.
	req := asCashier(httptest.NewRequest(http.MethodPost, "/v1/cart/items", strings.NewReader(`{"item_id":"cafe"}`)), "u1")
	rec := httptest.NewRecorder()
	h.AddItemHandler(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	var body domain.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "OUT_OF_STOCK", body.Category)

	lines := store.Get("u1").Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.True(t, store.Get("u2").IsEmpty(), "carrinhos são separados por operador")
}

func TestAddItemHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"item inexistente", `{"item_id":"nada"}`, http.StatusNotFound},
		{"sem estoque", `{"item_id":"torta"}`, http.StatusConflict},
		{"sem item_id", `{}`, http.StatusBadRequest},
		{"json inválido", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newHandler()
			req := asCashier(httptest.NewRequest(http.MethodPost, "/v1/cart/items", strings.NewReader(tt.body)), "u1")
			rec := httptest.NewRecorder()
			h.AddItemHandler(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestUpdateQuantityHandler_Clamps(t *testing.T) {
	h, store := newHandler()
	_, err := store.Get("u1").AddItem(domain.CatalogItem{ID: "cafe", Name: "Café", Price: decimal.RequireFromString("10"), Available: domain.BoundedInt(2)})
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("PUT /v1/cart/items/{id}", h.UpdateQuantityHandler)

	req := asCashier(httptest.NewRequest(http.MethodPut, "/v1/cart/items/cafe", strings.NewReader(`{"quantity":5}`)), "u1")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp cartapi.CartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Clamped)
	assert.Equal(t, "20.00", resp.Subtotal)
	assert.Equal(t, "4.20", resp.Tax)
	assert.Equal(t, "24.20", resp.Total)
}

func TestGetCartHandler_RequiresSession(t *testing.T) {
	h, _ := newHandler()
	rec := httptest.NewRecorder()

	h.GetCartHandler(rec, httptest.NewRequest(http.MethodGet, "/v1/cart", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRender_EmptyCart(t *testing.T) {
	resp := cartapi.Render(nil, false)

	assert.NotNil(t, resp.Lines)
	assert.Equal(t, "0.00", resp.Total)
}

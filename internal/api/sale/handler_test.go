package sale_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gopos/internal/api/sale"
	"gopos/internal/cart"
	"gopos/internal/domain"
	apperror "gopos/internal/errors"
	"gopos/internal/pkg/logger"
	"gopos/internal/pkg/middleware"
	"gopos/internal/service/saleservice"
)

// MockSaleService é uma implementação mock da interface SaleService
type MockSaleService struct {
	mock.Mock
}

func (m *MockSaleService) Finalize(ctx context.Context, c *cart.Cart, payment domain.PaymentMethod, cashierID string) (saleservice.Outcome, error) {
	args := m.Called(ctx, c, payment, cashierID)
	return args.Get(0).(saleservice.Outcome), args.Error(1)
}

func (m *MockSaleService) GetSale(ctx context.Context, id string) (domain.SaleRecord, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.SaleRecord), args.Error(1)
}

func (m *MockSaleService) Reconcile(ctx context.Context, saleID string) (saleservice.Outcome, error) {
	args := m.Called(ctx, saleID)
	return args.Get(0).(saleservice.Outcome), args.Error(1)
}

func checkoutRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/v1/sales/checkout", strings.NewReader(body))
	return req.WithContext(middleware.WithUserClaims(req.Context(), middleware.UserClaims{UserID: "u1", Role: domain.RoleCashier}))
}

func TestCheckoutHandler_Completed(t *testing.T) {
	svc := new(MockSaleService)
	carts := cart.NewStore()
	h := sale.NewHandler(svc, carts, logger.NewNop())

	record := &domain.SaleRecord{
		ID:            "s1",
		ReceiptNumber: "R-20261019-ABCDEF12",
		PaymentMethod: domain.PaymentCash,
		Currency:      "ARS",
		Subtotal:      decimal.RequireFromString("80"),
		Tax:           decimal.RequireFromString("16.8"),
		Total:         decimal.RequireFromString("96.8"),
	}
	svc.On("Finalize", mock.Anything, carts.Get("u1"), domain.PaymentCash, "u1").
		Return(saleservice.Outcome{State: saleservice.StateCompleted, Sale: record}, nil)

	rec := httptest.NewRecorder()
	h.CheckoutHandler(rec, checkoutRequest(`{"payment_method":"Efectivo"}`))

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp sale.OutcomeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, saleservice.StateCompleted, resp.State)
	require.NotNil(t, resp.Receipt)
	assert.Equal(t, "96.80", resp.Receipt.Total)
	assert.Equal(t, "16.80", resp.Receipt.Tax)
	assert.Nil(t, resp.Error)
	svc.AssertExpectations(t)
}

func TestCheckoutHandler_Failures(t *testing.T) {
	tests := []struct {
		name     string
		outcome  saleservice.Outcome
		err      error
		status   int
		category string
	}{
		{
			name:     "carrinho vazio",
			outcome:  saleservice.Outcome{State: saleservice.StateRejected, Reason: apperror.ReasonEmptyCart},
			err:      apperror.ErrEmptyCart,
			status:   http.StatusUnprocessableEntity,
			category: apperror.ReasonEmptyCart,
		},
		{
			name:     "estoque insuficiente",
			outcome:  saleservice.Outcome{State: saleservice.StateRejected, Reason: apperror.ReasonInsufficientStock, ItemID: "B"},
			err:      apperror.NewInsufficientStockError("B", 2, "1"),
			status:   http.StatusConflict,
			category: apperror.ReasonInsufficientStock,
		},
		{
			name:     "finalização já em andamento",
			outcome:  saleservice.Outcome{State: saleservice.StateRejected, Reason: saleservice.ReasonCheckoutInProgress},
			err:      apperror.NewConflictError("Este carrinho já está sendo finalizado."),
			status:   http.StatusConflict,
			category: "CONFLICT",
		},
		{
			name: "falha parcial",
			outcome: saleservice.Outcome{
				State:  saleservice.StatePartiallyFailed,
				Reason: saleservice.ReasonStockUpdateFailed,
				Sale:   &domain.SaleRecord{ID: "s1"},
			},
			err:      &apperror.PartialFailureError{SaleID: "s1", Succeeded: []string{"A"}, Failed: []string{"B"}},
			status:   http.StatusBadGateway,
			category: "PARTIALLY_FAILED",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockSaleService)
			h := sale.NewHandler(svc, cart.NewStore(), logger.NewNop())
			svc.On("Finalize", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(tt.outcome, tt.err)

			rec := httptest.NewRecorder()
			h.CheckoutHandler(rec, checkoutRequest(`{"payment_method":"Efectivo"}`))

			assert.Equal(t, tt.status, rec.Code)
			var resp sale.OutcomeResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.outcome.State, resp.State)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.category, resp.Error.Category)
		})
	}
}

func TestReconcileHandler_NoPending(t *testing.T) {
	svc := new(MockSaleService)
	h := sale.NewHandler(svc, cart.NewStore(), logger.NewNop())
	svc.On("Reconcile", mock.Anything, "s1").Return(saleservice.Outcome{}, apperror.NewNotFoundError("s1"))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/sales/{id}/reconcile", h.ReconcileHandler)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/sales/s1/reconcile", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

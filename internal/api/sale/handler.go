package sale

import (
	"context"
	"net/http"

	"gopos/internal/api/respond"
	"gopos/internal/cart"
	"gopos/internal/domain"
	apperror "gopos/internal/errors"
	"gopos/internal/pkg/logger"
	"gopos/internal/pkg/middleware"
	"gopos/internal/service/saleservice"
)

// SaleService define o contrato que o Handler espera da camada de Serviço.
type SaleService interface {
	Finalize(ctx context.Context, c *cart.Cart, payment domain.PaymentMethod, cashierID string) (saleservice.Outcome, error)
	GetSale(ctx context.Context, id string) (domain.SaleRecord, error)
	Reconcile(ctx context.Context, saleID string) (saleservice.Outcome, error)
}

// CheckoutRequest é o payload de POST /v1/sales/checkout.
type CheckoutRequest struct {
	PaymentMethod domain.PaymentMethod `json:"payment_method" example:"Efectivo"`
}

// Receipt são os totais da venda formatados para impressão.
type Receipt struct {
	Number        string               `json:"number"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	Currency      string               `json:"currency"`
	Subtotal      string               `json:"subtotal"`
	Tax           string               `json:"tax"`
	Total         string               `json:"total"`
}

// OutcomeResponse é o relatório da finalização ou reconciliação.
// Error vem preenchido quando a venda não terminou em COMPLETED.
type OutcomeResponse struct {
	saleservice.Outcome
	Receipt *Receipt              `json:"receipt,omitempty"`
	Error   *domain.ErrorResponse `json:"error,omitempty"`
}

// Handler agrupa os handlers de venda.
type Handler struct {
	Service SaleService
	Carts   *cart.Store
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc SaleService, carts *cart.Store, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Carts:   carts,
		Logger:  log,
	}
}

// CheckoutHandler lida com a requisição POST /v1/sales/checkout.
// @Summary Finaliza a venda do carrinho do operador
// @Description Valida o carrinho contra o estoque atual, registra a venda e aplica as baixas.
// @Description O carrinho só é limpo quando a venda termina em COMPLETED.
// @Tags sales
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param checkout body CheckoutRequest true "Forma de pagamento"
// @Success 201 {object} OutcomeResponse "COMPLETED"
// @Failure 409 {object} OutcomeResponse "REJECTED por estoque insuficiente ou finalização já em andamento"
// @Failure 422 {object} OutcomeResponse "REJECTED por carrinho vazio ou sem pagamento"
// @Failure 502 {object} OutcomeResponse "PARTIALLY_FAILED"
// @Router /sales/checkout [post]
func (h *Handler) CheckoutHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		respond.Error(w, r, h.Logger, apperror.NewUnauthorizedError("Sessão do caixa não identificada."))
		return
	}

	var req CheckoutRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}

	out, err := h.Service.Finalize(r.Context(), h.Carts.Get(claims.UserID), req.PaymentMethod, claims.UserID)
	h.writeOutcome(w, r, out, err, http.StatusCreated)
}

// GetSaleHandler lida com a requisição GET /v1/sales/{id}.
// @Summary Busca uma venda
// @Tags sales
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da venda"
// @Success 200 {object} domain.SaleRecord
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Router /sales/{id} [get]
func (h *Handler) GetSaleHandler(w http.ResponseWriter, r *http.Request) {
	sale, err := h.Service.GetSale(r.Context(), r.PathValue("id"))
	respond.Handle(w, r, h.Logger, sale, err, http.StatusOK)
}

// ReconcileHandler lida com a requisição POST /v1/sales/{id}/reconcile.
// @Summary Reaplica as baixas de estoque pendentes de uma venda
// @Description Apenas admin. Cada baixa pendente é repetida com backoff exponencial.
// @Tags sales
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da venda"
// @Success 200 {object} OutcomeResponse "COMPLETED"
// @Failure 404 {object} domain.ErrorResponse "Sem pendências"
// @Failure 502 {object} OutcomeResponse "Ainda PARTIALLY_FAILED"
// @Router /sales/{id}/reconcile [post]
func (h *Handler) ReconcileHandler(w http.ResponseWriter, r *http.Request) {
	out, err := h.Service.Reconcile(r.Context(), r.PathValue("id"))
	if err != nil && out.State == "" {
		respond.Error(w, r, h.Logger, err)
		return
	}
	h.writeOutcome(w, r, out, err, http.StatusOK)
}

func (h *Handler) writeOutcome(w http.ResponseWriter, r *http.Request, out saleservice.Outcome, err error, successStatus int) {
	resp := OutcomeResponse{Outcome: out}
	if out.Sale != nil {
		resp.Receipt = &Receipt{
			Number:        out.Sale.ReceiptNumber,
			PaymentMethod: out.Sale.PaymentMethod,
			Currency:      out.Sale.Currency,
			Subtotal:      cart.Format(out.Sale.Subtotal),
			Tax:           cart.Format(out.Sale.Tax),
			Total:         cart.Format(out.Sale.Total),
		}
	}

	status := successStatus
	if err != nil {
		code, category, message := apperror.MapToHTTPStatus(err)
		status = code
		resp.Error = &domain.ErrorResponse{Code: code, Category: category, Message: message}
		if code >= http.StatusInternalServerError {
			h.Logger.Error("Venda não concluída.", err)
		}
	}
	respond.JSON(w, h.Logger, resp, status)
}

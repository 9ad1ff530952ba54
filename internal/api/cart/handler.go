package cart

import (
	"net/http"

	"gopos/internal/api/respond"
	"gopos/internal/cart"
	"gopos/internal/domain"
	apperror "gopos/internal/errors"
	"gopos/internal/pkg/logger"
	"gopos/internal/pkg/middleware"
)

// Catalog fornece os itens adicionados ao carrinho.
type Catalog interface {
	Item(id string) (domain.CatalogItem, error)
}

// AddItemRequest é o payload de POST /v1/cart/items.
type AddItemRequest struct {
	ItemID string `json:"item_id"`
}

// UpdateQuantityRequest é o payload de PUT /v1/cart/items/{id}.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartResponse é a visão do carrinho devolvida por todas as rotas.
// Os totais vão formatados com duas casas; as linhas levam os valores exatos.
type CartResponse struct {
	Lines    []cart.Line `json:"lines"`
	Subtotal string      `json:"subtotal"`
	Tax      string      `json:"tax"`
	Total    string      `json:"total"`
	Clamped  bool        `json:"clamped,omitempty"`
}

// Handler agrupa os handlers do carrinho. Cada operador tem o seu carrinho.
type Handler struct {
	Carts   *cart.Store
	Catalog Catalog
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler.
func NewHandler(carts *cart.Store, catalog Catalog, log logger.Logger) *Handler {
	return &Handler{
		Carts:   carts,
		Catalog: catalog,
		Logger:  log,
	}
}

// session devolve o carrinho do operador autenticado.
func (h *Handler) session(r *http.Request) (*cart.Cart, error) {
	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok || claims.UserID == "" {
		return nil, apperror.NewUnauthorizedError("Sessão do caixa não identificada.")
	}
	return h.Carts.Get(claims.UserID), nil
}

// GetCartHandler lida com a requisição GET /v1/cart.
// @Summary Mostra o carrinho
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} CartResponse
// @Failure 401 {object} domain.ErrorResponse
// @Router /cart [get]
func (h *Handler) GetCartHandler(w http.ResponseWriter, r *http.Request) {
	c, err := h.session(r)
	if err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, h.Logger, Render(c.Lines(), false), http.StatusOK)
}

// AddItemHandler lida com a requisição POST /v1/cart/items.
// @Summary Adiciona uma unidade de um item
// @Description Incrementa a linha se o item já estiver no carrinho.
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param item body AddItemRequest true "Item"
// @Success 200 {object} CartResponse
// @Failure 404 {object} domain.ErrorResponse "Item não existe no catálogo"
// @Failure 409 {object} domain.ErrorResponse "Sem estoque"
// @Router /cart/items [post]
func (h *Handler) AddItemHandler(w http.ResponseWriter, r *http.Request) {
	c, err := h.session(r)
	if err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}

	var req AddItemRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}
	if req.ItemID == "" {
		respond.Error(w, r, h.Logger, apperror.NewValidationError("item_id é obrigatório."))
		return
	}

	item, err := h.Catalog.Item(req.ItemID)
	if err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}
	if _, err := c.AddItem(item); err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, h.Logger, Render(c.Lines(), false), http.StatusOK)
}

// UpdateQuantityHandler lida com a requisição PUT /v1/cart/items/{id}.
// @Summary Define a quantidade de uma linha
// @Description Quantidade <= 0 remove a linha; acima do estoque é reduzida (clamped=true).
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do item"
// @Param quantity body UpdateQuantityRequest true "Quantidade"
// @Success 200 {object} CartResponse
// @Failure 404 {object} domain.ErrorResponse "Item não está no carrinho"
// @Router /cart/items/{id} [put]
func (h *Handler) UpdateQuantityHandler(w http.ResponseWriter, r *http.Request) {
	c, err := h.session(r)
	if err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}

	var req UpdateQuantityRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}

	res, err := c.UpdateQuantity(r.PathValue("id"), req.Quantity)
	if err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, h.Logger, Render(c.Lines(), res.Clamped), http.StatusOK)
}

// RemoveItemHandler lida com a requisição DELETE /v1/cart/items/{id}.
// @Summary Remove uma linha
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do item"
// @Success 200 {object} CartResponse
// @Router /cart/items/{id} [delete]
func (h *Handler) RemoveItemHandler(w http.ResponseWriter, r *http.Request) {
	c, err := h.session(r)
	if err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}
	c.RemoveItem(r.PathValue("id"))
	respond.JSON(w, h.Logger, Render(c.Lines(), false), http.StatusOK)
}

// ClearCartHandler lida com a requisição DELETE /v1/cart.
// @Summary Esvazia o carrinho
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} CartResponse
// @Router /cart [delete]
func (h *Handler) ClearCartHandler(w http.ResponseWriter, r *http.Request) {
	c, err := h.session(r)
	if err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}
	c.Clear()
	respond.JSON(w, h.Logger, Render(nil, false), http.StatusOK)
}

// Render monta a resposta a partir das linhas.
func Render(lines []cart.Line, clamped bool) CartResponse {
	if lines == nil {
		lines = []cart.Line{}
	}
	t := cart.ComputeTotals(lines)
	return CartResponse{
		Lines:    lines,
		Subtotal: cart.Format(t.Subtotal),
		Tax:      cart.Format(t.Tax),
		Total:    cart.Format(t.Total),
		Clamped:  clamped,
	}
}

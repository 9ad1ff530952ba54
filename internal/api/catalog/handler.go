package catalog

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"gopos/internal/api/respond"
	"gopos/internal/costing"
	"gopos/internal/domain"
	apperror "gopos/internal/errors"
	"gopos/internal/inventory"
	"gopos/internal/pkg/logger"
	"gopos/internal/service/catalogservice"
)

// CatalogService define o contrato que o Handler espera da camada de Serviço.
type CatalogService interface {
	Current() *catalogservice.Snapshot
	Reload(ctx context.Context) (*catalogservice.Snapshot, error)
	ItemCost(id string, margin, price decimal.NullDecimal) (costing.Result, error)
	Quote(lines []domain.BillOfMaterialsLine, margin, price decimal.NullDecimal) costing.Result
}

// ItemView é um item do catálogo com a classificação de estoque calculada.
type ItemView struct {
	domain.CatalogItem
	State          inventory.State `json:"state"`
	Purchasable    bool            `json:"purchasable"`
	MaxPurchasable *int            `json:"max_purchasable"` // null = ilimitado
}

// CatalogResponse é o corpo de GET /v1/catalog.
type CatalogResponse struct {
	LoadedAt time.Time  `json:"loaded_at"`
	Items    []ItemView `json:"items"`
}

// QuoteRequest é o payload de POST /v1/costing/quote: uma receita em edição.
type QuoteRequest struct {
	Lines         []domain.BillOfMaterialsLine `json:"lines"`
	MarginPercent decimal.NullDecimal          `json:"margin_percent"`
	SalePrice     decimal.NullDecimal          `json:"sale_price"`
}

// Handler agrupa os handlers de catálogo e custos.
type Handler struct {
	Service CatalogService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc CatalogService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// ListCatalogHandler lida com a requisição GET /v1/catalog.
// @Summary Lista o catálogo
// @Description Devolve o snapshot atual do catálogo com o estado de estoque de cada item.
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param category query string false "Filtra por categoria"
// @Success 200 {object} CatalogResponse
// @Failure 401 {object} domain.ErrorResponse
// @Router /catalog [get]
func (h *Handler) ListCatalogHandler(w http.ResponseWriter, r *http.Request) {
	snap := h.Service.Current()
	category := r.URL.Query().Get("category")

	resp := CatalogResponse{LoadedAt: snap.LoadedAt, Items: []ItemView{}}
	for _, item := range snap.Items() {
		if category != "" && item.Category != category {
			continue
		}
		resp.Items = append(resp.Items, view(item))
	}
	respond.JSON(w, h.Logger, resp, http.StatusOK)
}

// ReloadCatalogHandler lida com a requisição POST /v1/catalog/reload.
// @Summary Recarrega o catálogo
// @Description Busca itens e insumos no banco e publica um novo snapshot. Apenas admin.
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Router /catalog/reload [post]
func (h *Handler) ReloadCatalogHandler(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Service.Reload(r.Context())
	if err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, h.Logger, map[string]interface{}{
		"loaded_at": snap.LoadedAt,
		"items":     snap.Len(),
		"inputs":    len(snap.Inputs()),
	}, http.StatusOK)
}

// ItemCostHandler lida com a requisição GET /v1/catalog/{id}/cost.
// @Summary Calcula o custo de um item
// @Description CMV pela receita, preço sugerido e margem realizada. margin e price substituem os valores cadastrados.
// @Tags costing
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do item"
// @Param margin query number false "Margem sugerida (%)"
// @Param price query number false "Preço de venda"
// @Success 200 {object} costing.Result
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Router /catalog/{id}/cost [get]
func (h *Handler) ItemCostHandler(w http.ResponseWriter, r *http.Request) {
	margin, err := queryDecimal(r, "margin")
	if err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}
	price, err := queryDecimal(r, "price")
	if err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}

	res, err := h.Service.ItemCost(r.PathValue("id"), margin, price)
	respond.Handle(w, r, h.Logger, res, err, http.StatusOK)
}

// QuoteHandler lida com a requisição POST /v1/costing/quote.
// @Summary Calcula o custo de uma receita em edição
// @Description Linhas incompletas são ignoradas e contadas em skipped.
// @Tags costing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param quote body QuoteRequest true "Receita"
// @Success 200 {object} costing.Result
// @Failure 400 {object} domain.ErrorResponse
// @Router /costing/quote [post]
func (h *Handler) QuoteHandler(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}
	res := h.Service.Quote(req.Lines, req.MarginPercent, req.SalePrice)
	respond.JSON(w, h.Logger, res, http.StatusOK)
}

func view(item domain.CatalogItem) ItemView {
	v := ItemView{
		CatalogItem: item,
		State:       inventory.Classify(item.Available, item.MinStock),
		Purchasable: inventory.Purchasable(item.Available),
	}
	if n, bounded := inventory.MaxPurchasable(item.Available); bounded {
		v.MaxPurchasable = &n
	}
	return v
}

func queryDecimal(r *http.Request, key string) (decimal.NullDecimal, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, apperror.NewValidationError("Parâmetro " + key + " deve ser numérico.")
	}
	return decimal.NewNullDecimal(d), nil
}

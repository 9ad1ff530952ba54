package catalogrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"gopos/internal/domain"
	apperror "gopos/internal/errors"
	"gopos/internal/pkg/cache"
	"gopos/internal/pkg/logger"
)

// itemsCacheKey guarda a lista completa de itens vendáveis.
const itemsCacheKey = "catalog:items"

// CatalogRepository implementa catalogservice.Repository e as interfaces de estoque
// do finalizador de vendas. Contém as conexões necessárias para acessar dados.
type CatalogRepository struct {
	DB        *sql.DB      // Conexão principal com o banco de dados (PostgreSQL)
	Cache     cache.Client // Cliente de cache (Redis); pode ser nil
	DBTimeout time.Duration
	CacheTTL  time.Duration
	logger    logger.Logger
}

// NewCatalogRepository cria e retorna uma nova instância do Repositório.
// Aqui injetamos as dependências de Infraestrutura (DB e Cache).
func NewCatalogRepository(db *sql.DB, cacheClient cache.Client, dbTimeout, cacheTTL time.Duration, logger logger.Logger) *CatalogRepository {
	return &CatalogRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		CacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// ListSellableItems devolve os itens ativos do catálogo com suas receitas,
// utilizando a estratégia Cache-Aside.
func (r *CatalogRepository) ListSellableItems(ctx context.Context) ([]domain.CatalogItem, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	// --- 1. Cache-Aside (READ) ---
	if items, ok := r.readCache(ctxTimeout); ok {
		return items, nil
	}

	// --- 2. Busca no Banco de Dados (PostgreSQL) ---
	const itemsSQL = `
		SELECT id, name, price, unit_cost, category, stock, min_stock, suggested_margin
		FROM catalog_items
		WHERE is_active = TRUE
		ORDER BY name, id`

	rows, err := r.DB.QueryContext(ctxTimeout, itemsSQL)
	if err != nil {
		r.logger.Error("Falha ao listar itens do catálogo no DB.", err)
		return nil, apperror.NewDBError("Falha ao listar itens do catálogo", err)
	}
	defer rows.Close()

	var (
		items []domain.CatalogItem
		index = map[string]int{}
	)
	for rows.Next() {
		var (
			item  domain.CatalogItem
			stock decimal.NullDecimal
		)
		if err := rows.Scan(
			&item.ID,
			&item.Name,
			&item.Price,
			&item.UnitCost,
			&item.Category,
			&stock,
			&item.MinStock,
			&item.SuggestedMargin,
		); err != nil {
			r.logger.Error("Falha ao ler item do catálogo.", err)
			return nil, apperror.NewDBError("Falha ao ler item do catálogo", err)
		}
		item.Available = domain.FromNullDecimal(stock) // NULL = serviço, sem controle de estoque
		index[item.ID] = len(items)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Falha ao iterar itens do catálogo", err)
	}

	if err := r.loadBillsOfMaterials(ctxTimeout, items, index); err != nil {
		return nil, err
	}

	// --- 3. Cache-Aside (WRITE) ---
	r.writeCache(ctxTimeout, items)

	r.logger.Debug("Itens do catálogo carregados do DB.", map[string]interface{}{"items": len(items)})
	return items, nil
}

// loadBillsOfMaterials preenche as receitas dos itens numa única consulta.
func (r *CatalogRepository) loadBillsOfMaterials(ctx context.Context, items []domain.CatalogItem, index map[string]int) error {
	const bomSQL = `
		SELECT b.item_id, COALESCE(b.input_id, ''), b.quantity
		FROM bom_lines b
		JOIN catalog_items c ON c.id = b.item_id
		WHERE c.is_active = TRUE
		ORDER BY b.item_id, b.position`

	rows, err := r.DB.QueryContext(ctx, bomSQL)
	if err != nil {
		r.logger.Error("Falha ao listar receitas no DB.", err)
		return apperror.NewDBError("Falha ao listar receitas", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			itemID string
			line   domain.BillOfMaterialsLine
		)
		if err := rows.Scan(&itemID, &line.InputID, &line.Quantity); err != nil {
			return apperror.NewDBError("Falha ao ler linha de receita", err)
		}
		if i, ok := index[itemID]; ok {
			items[i].BillOfMaterials = append(items[i].BillOfMaterials, line)
		}
	}
	if err := rows.Err(); err != nil {
		return apperror.NewDBError("Falha ao iterar receitas", err)
	}
	return nil
}

// ListInputItems devolve o catálogo de insumos. Não passa pelo cache: só é lido
// na recarga completa do catálogo.
func (r *CatalogRepository) ListInputItems(ctx context.Context) ([]domain.InputItem, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const inputsSQL = `SELECT id, name, unit, on_hand, unit_cost FROM input_items ORDER BY name, id`

	rows, err := r.DB.QueryContext(ctxTimeout, inputsSQL)
	if err != nil {
		r.logger.Error("Falha ao listar insumos no DB.", err)
		return nil, apperror.NewDBError("Falha ao listar insumos", err)
	}
	defer rows.Close()

	var inputs []domain.InputItem
	for rows.Next() {
		var in domain.InputItem
		if err := rows.Scan(&in.ID, &in.Name, &in.Unit, &in.OnHand, &in.UnitCost); err != nil {
			return nil, apperror.NewDBError("Falha ao ler insumo", err)
		}
		inputs = append(inputs, in)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Falha ao iterar insumos", err)
	}
	return inputs, nil
}

func (r *CatalogRepository) readCache(ctx context.Context) ([]domain.CatalogItem, bool) {
	if r.Cache == nil {
		return nil, false
	}
	cached, err := r.Cache.Get(ctx, itemsCacheKey)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			r.logger.Warn("Falha ao ler o catálogo do cache; seguindo para o DB.", map[string]interface{}{"error": err.Error()})
		}
		return nil, false
	}
	var items []domain.CatalogItem
	if err := json.Unmarshal([]byte(cached), &items); err != nil {
		r.logger.Warn("Catálogo em cache corrompido; seguindo para o DB.", map[string]interface{}{"error": err.Error()})
		return nil, false
	}
	return items, true
}

func (r *CatalogRepository) writeCache(ctx context.Context, items []domain.CatalogItem) {
	if r.Cache == nil {
		return
	}
	data, err := json.Marshal(items)
	if err != nil {
		r.logger.Warn("Falha ao serializar o catálogo para o cache.", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := r.Cache.Set(ctx, itemsCacheKey, data, r.CacheTTL); err != nil {
		r.logger.Warn("Falha ao gravar o catálogo no cache.", map[string]interface{}{"error": err.Error()})
	}
}

// invalidate remove a lista em cache depois de qualquer alteração de estoque.
func (r *CatalogRepository) invalidate(ctx context.Context) {
	if r.Cache == nil {
		return
	}
	if err := r.Cache.Delete(ctx, itemsCacheKey); err != nil {
		r.logger.Warn("Falha ao invalidar o catálogo em cache.", map[string]interface{}{"error": err.Error()})
	}
}

package catalogrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"gopos/internal/domain"
	apperror "gopos/internal/errors"
)

// SetItemStock grava o estoque absoluto de um item controlado.
func (r *CatalogRepository) SetItemStock(ctx context.Context, itemID string, newQuantity decimal.Decimal) error {
	r.logger.Debug("Atualizando estoque do item.", map[string]interface{}{"item_id": itemID, "new_quantity": newQuantity.String()})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	// stock IS NOT NULL impede gravar estoque em itens ilimitados.
	query := `
        UPDATE catalog_items
        SET stock = $1, updated_at = $2
        WHERE id = $3 AND stock IS NOT NULL`

	result, err := r.DB.ExecContext(ctxTimeout, query, newQuantity, time.Now().UTC(), itemID)
	if err != nil {
		r.logger.Error("Falha ao atualizar estoque do item.", err)
		return apperror.NewDBError("Falha ao atualizar estoque", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("Falha ao verificar linhas afetadas após atualização de estoque.", err)
		return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		r.logger.Warn("Item sem controle de estoque ou inexistente.", map[string]interface{}{"item_id": itemID})
		return apperror.NewNotFoundError(fmt.Sprintf("Item %s não existe ou não controla estoque.", itemID))
	}

	r.invalidate(ctx)
	r.logger.Info("Estoque do item atualizado.", map[string]interface{}{"item_id": itemID, "new_quantity": newQuantity.String()})
	return nil
}

// ApplyStockDecrements aplica as baixas de uma venda numa única transação.
// Cada UPDATE é condicional (stock >= quantidade); se algum não afetar linhas,
// a transação inteira é desfeita e nenhuma baixa é aplicada.
func (r *CatalogRepository) ApplyStockDecrements(ctx context.Context, decrements []domain.StockDecrement) error {
	r.logger.Debug("Iniciando baixa de estoque em lote.", map[string]interface{}{"items": len(decrements)})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		r.logger.Error("Falha ao iniciar transação para baixa de estoque.", err)
		return apperror.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback() // Rollback em caso de erro

	queryUpdate := `
        UPDATE catalog_items
        SET stock = stock - $1, updated_at = $2
        WHERE id = $3 AND stock IS NOT NULL AND stock >= $1`

	now := time.Now().UTC()
	for _, d := range decrements {
		result, err := tx.ExecContext(ctxTimeout, queryUpdate, d.Quantity, now, d.ItemID)
		if err != nil {
			r.logger.Error("Falha ao aplicar baixa de estoque.", err)
			return apperror.NewDBError("Falha ao aplicar baixa de estoque", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
		}
		if rowsAffected == 0 {
			r.logger.Warn("Baixa condicional recusada: estoque insuficiente.", map[string]interface{}{
				"item_id":  d.ItemID,
				"quantity": d.Quantity.String(),
			})
			// O estoque foi modificado por outra operação desde a validação.
			return apperror.NewConflictError(fmt.Sprintf("Estoque insuficiente para o item %s. Nenhuma baixa foi aplicada.", d.ItemID))
		}
	}

	if commitErr := tx.Commit(); commitErr != nil {
		r.logger.Error("Falha ao commitar transação de baixa de estoque.", commitErr)
		return apperror.NewDBError("Falha ao commitar transação", commitErr)
	}

	r.invalidate(ctx)
	r.logger.Info("Baixas de estoque aplicadas.", map[string]interface{}{"items": len(decrements)})
	return nil
}

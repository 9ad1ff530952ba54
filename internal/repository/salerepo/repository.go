package salerepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gopos/internal/domain"
	apperror "gopos/internal/errors"
	"gopos/internal/pkg/database"
	"gopos/internal/pkg/logger"
)

// SaleRepository grava e consulta vendas finalizadas.
type SaleRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewSaleRepository cria e retorna uma nova instância do Repositório de Vendas.
func NewSaleRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *SaleRepository {
	return &SaleRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// RecordSale persiste a venda e suas linhas numa única transação.
// O ID e o número do comprovante vêm prontos do finalizador.
func (r *SaleRepository) RecordSale(ctx context.Context, sale domain.SaleRecord) (domain.SaleRecord, error) {
	r.logger.Debug("Iniciando RecordSale no repositório.", map[string]interface{}{"sale_id": sale.ID, "lines": len(sale.Lines)})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		r.logger.Error("Falha ao iniciar transação para registrar venda.", err)
		return domain.SaleRecord{}, apperror.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback() // Rollback em caso de erro

	const saleSQL = `
        INSERT INTO sales (id, receipt_number, created_at, payment_method, currency, subtotal, tax, total, status, cashier_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''))`

	_, err = tx.ExecContext(ctxTimeout, saleSQL,
		sale.ID,
		sale.ReceiptNumber,
		sale.CreatedAt,
		sale.PaymentMethod,
		sale.Currency,
		sale.Subtotal,
		sale.Tax,
		sale.Total,
		sale.Status,
		sale.CashierID,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			r.logger.Warn("Venda já registrada.", map[string]interface{}{"sale_id": sale.ID})
			return domain.SaleRecord{}, apperror.NewConflictError(fmt.Sprintf("A venda %s já foi registrada.", sale.ID))
		}
		r.logger.Error("Falha ao inserir venda no DB.", err)
		return domain.SaleRecord{}, apperror.NewDBError("Falha ao inserir venda", err)
	}

	const lineSQL = `
        INSERT INTO sale_lines (sale_id, position, item_id, name, quantity, unit_price, line_total)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for i, l := range sale.Lines {
		_, err = tx.ExecContext(ctxTimeout, lineSQL, sale.ID, i, l.ItemID, l.Name, l.Quantity, l.UnitPrice, l.LineTotal)
		if err != nil {
			r.logger.Error("Falha ao inserir linha da venda no DB.", err)
			return domain.SaleRecord{}, apperror.NewDBError("Falha ao inserir linhas da venda", err)
		}
	}

	if commitErr := tx.Commit(); commitErr != nil {
		r.logger.Error("Falha ao commitar transação da venda.", commitErr)
		return domain.SaleRecord{}, apperror.NewDBError("Falha ao commitar transação", commitErr)
	}

	r.logger.Info("Venda gravada com sucesso.", map[string]interface{}{"sale_id": sale.ID, "receipt": sale.ReceiptNumber})
	return sale, nil
}

// FindSaleByID busca uma venda e suas linhas.
func (r *SaleRepository) FindSaleByID(ctx context.Context, id string) (domain.SaleRecord, error) {
	r.logger.Debug("Iniciando FindSaleByID no repositório.", map[string]interface{}{"sale_id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT id, receipt_number, created_at, payment_method, currency, subtotal, tax, total, status, COALESCE(cashier_id, '')
        FROM sales
        WHERE id = $1`

	var sale domain.SaleRecord
	err := r.DB.QueryRowContext(ctxTimeout, query, id).Scan(
		&sale.ID, &sale.ReceiptNumber, &sale.CreatedAt, &sale.PaymentMethod, &sale.Currency,
		&sale.Subtotal, &sale.Tax, &sale.Total, &sale.Status, &sale.CashierID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Info("Venda não encontrada.", map[string]interface{}{"sale_id": id})
		return domain.SaleRecord{}, apperror.NewNotFoundError(fmt.Sprintf("Venda com ID %s não encontrada.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar venda no DB.", err)
		return domain.SaleRecord{}, apperror.NewDBError("Falha ao buscar venda", err)
	}

	linesQuery := `
        SELECT item_id, name, quantity, unit_price, line_total
        FROM sale_lines
        WHERE sale_id = $1
        ORDER BY position`

	rows, err := r.DB.QueryContext(ctxTimeout, linesQuery, id)
	if err != nil {
		r.logger.Error("Falha ao buscar linhas da venda no DB.", err)
		return domain.SaleRecord{}, apperror.NewDBError("Falha ao buscar linhas da venda", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l domain.SaleLine
		if err := rows.Scan(&l.ItemID, &l.Name, &l.Quantity, &l.UnitPrice, &l.LineTotal); err != nil {
			return domain.SaleRecord{}, apperror.NewDBError("Falha ao ler linha da venda", err)
		}
		sale.Lines = append(sale.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return domain.SaleRecord{}, apperror.NewDBError("Falha ao iterar linhas da venda", err)
	}

	return sale, nil
}

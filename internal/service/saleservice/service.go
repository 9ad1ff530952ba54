package saleservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gopos/config"
	"gopos/internal/cart"
	"gopos/internal/domain"
	apperror "gopos/internal/errors"
	"gopos/internal/inventory"
	"gopos/internal/pkg/logger"
	"gopos/internal/service/catalogservice"
)

// SaleRepository define o contrato de gravação de vendas esperado da camada de Persistência.
type SaleRepository interface {
	RecordSale(ctx context.Context, draft domain.SaleRecord) (domain.SaleRecord, error)
	FindSaleByID(ctx context.Context, id string) (domain.SaleRecord, error)
}

// StockRepository define a atualização de estoque item a item.
type StockRepository interface {
	SetItemStock(ctx context.Context, itemID string, newQuantity decimal.Decimal) error
}

// BatchStockRepository aplica todas as baixas de uma venda em uma única transação
// condicional (tudo ou nada). Necessário apenas no modo atomic.
type BatchStockRepository interface {
	ApplyStockDecrements(ctx context.Context, decrements []domain.StockDecrement) error
}

// PendingStore guarda os relatórios de vendas que aguardam reconciliação.
type PendingStore interface {
	SavePending(ctx context.Context, outcome Outcome) error
	GetPending(ctx context.Context, saleID string) (Outcome, error)
	DeletePending(ctx context.Context, saleID string) error
}

// Catalog é a parte do serviço de catálogo usada pelo finalizador.
type Catalog interface {
	Current() *catalogservice.Snapshot
	ReloadItems(ctx context.Context) (*catalogservice.Snapshot, error)
}

// Options controla o comportamento do finalizador.
type Options struct {
	Mode         string        // config.DecrementBestEffort ou config.DecrementAtomic
	Currency     string        // Moeda base da loja
	MaxRetries   int           // Tentativas extras por baixa na reconciliação
	RetryBackoff time.Duration // Espera inicial do backoff exponencial
}

// Service é o finalizador de vendas.
type Service struct {
	sales   SaleRepository
	stock   StockRepository
	batch   BatchStockRepository
	pending PendingStore
	catalog Catalog
	logger  logger.Logger
	opts    Options

	now   func() time.Time
	newID func() string
}

// NewService cria o finalizador. pending pode ser nil (sem reconciliação persistida).
// No modo atomic, stock precisa implementar BatchStockRepository; caso contrário
// o serviço volta ao modo best_effort e registra um aviso.
func NewService(sales SaleRepository, stock StockRepository, catalog Catalog, pending PendingStore, logger logger.Logger, opts Options) *Service {
	if opts.Mode == "" {
		opts.Mode = config.DecrementBestEffort
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 100 * time.Millisecond
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}

	s := &Service{
		sales:   sales,
		stock:   stock,
		pending: pending,
		catalog: catalog,
		logger:  logger,
		opts:    opts,
		now:     time.Now,
		newID:   uuid.NewString,
	}

	if opts.Mode == config.DecrementAtomic {
		batch, ok := stock.(BatchStockRepository)
		if !ok {
			logger.Warn("Repositório de estoque não suporta baixa em lote; usando best_effort.", nil)
			s.opts.Mode = config.DecrementBestEffort
		} else {
			s.batch = batch
		}
	}
	return s
}

// Finalize executa a máquina de estados da venda para o carrinho informado.
//
// O contexto do chamador só é respeitado durante a validação. A partir do registro da
// venda a execução não pode ser cancelada e sempre termina em COMPLETED ou PARTIALLY_FAILED.
// Uma segunda finalização do mesmo carrinho, enquanto a primeira não termina, é recusada
// com ConflictError. Em COMPLETED saem do carrinho apenas as quantidades vendidas.
func (s *Service) Finalize(ctx context.Context, c *cart.Cart, payment domain.PaymentMethod, cashierID string) (Outcome, error) {
	out := Outcome{}
	out.enter(StateIdle)

	// 1. Validação (sem efeitos colaterais)
	out.enter(StateValidating)
	lines, ok := c.BeginCheckout()
	if !ok {
		out.enter(StateRejected)
		out.Reason = ReasonCheckoutInProgress
		s.logger.Warn("Finalização recusada: o carrinho já está sendo finalizado.", map[string]interface{}{"cashier_id": cashierID})
		return out, apperror.NewConflictError("Este carrinho já está sendo finalizado.")
	}
	defer c.EndCheckout()

	if len(lines) == 0 {
		return s.reject(out, apperror.ErrEmptyCart)
	}
	if strings.TrimSpace(string(payment)) == "" {
		return s.reject(out, apperror.ErrNoPaymentMethod)
	}

	snap, err := s.catalog.ReloadItems(ctx)
	if err != nil {
		s.logger.Warn("Falha ao recarregar estoque; validando contra o último snapshot conhecido.", map[string]interface{}{
			"loaded_at": snap.LoadedAt,
			"error":     err.Error(),
		})
	}
	for _, l := range lines {
		avail, ok := snap.Availability(l.ItemID)
		if !ok {
			avail = domain.BoundedInt(0) // item retirado do catálogo
		}
		if !inventory.CanPurchase(avail, l.Quantity) {
			return s.reject(out, apperror.NewInsufficientStockError(l.ItemID, l.Quantity, avail.String()))
		}
	}

	if err := ctx.Err(); err != nil {
		out.enter(StateRejected)
		out.Reason = ReasonCancelled
		return out, err
	}

	// Daqui em diante a execução não pode mais ser cancelada.
	ctx = context.WithoutCancel(ctx)

	// 2. Registro da venda
	out.enter(StateSubmitting)
	draft := s.buildSale(lines, payment, cashierID)
	sale, err := s.sales.RecordSale(ctx, draft)
	if err != nil {
		s.logger.Error("Falha ao registrar a venda; carrinho preservado.", err)
		out.enter(StatePartiallyFailed)
		out.Reason = ReasonSaleNotRecorded
		return out, apperror.NewSaleNotRecordedError(err)
	}
	out.Sale = &sale
	s.logger.Info("Venda registrada.", map[string]interface{}{
		"sale_id": sale.ID,
		"receipt": sale.ReceiptNumber,
		"total":   cart.Format(sale.Total),
	})

	// 3. Baixas de estoque
	out.enter(StateApplying)
	if s.opts.Mode == config.DecrementAtomic {
		s.applyAtomic(ctx, snap, lines, &out)
	} else {
		s.applySequential(ctx, snap, lines, &out)
	}

	if len(out.Failed) > 0 {
		out.enter(StatePartiallyFailed)
		out.Reason = ReasonStockUpdateFailed
		s.savePending(ctx, out)
		s.logger.Warn("Venda registrada com baixas de estoque pendentes.", map[string]interface{}{
			"sale_id":   sale.ID,
			"succeeded": out.SucceededIDs(),
			"failed":    out.FailedIDs(),
		})
		return out, s.partialFailure(out)
	}

	out.enter(StateCompleted)
	c.RemoveSold(lines)
	if _, err := s.catalog.ReloadItems(ctx); err != nil {
		s.logger.Warn("Venda concluída, mas a recarga do catálogo falhou.", map[string]interface{}{"sale_id": sale.ID})
	}
	return out, nil
}

// GetSale busca uma venda registrada.
func (s *Service) GetSale(ctx context.Context, id string) (domain.SaleRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.SaleRecord{}, apperror.NewValidationError("O ID da venda deve ser um UUID válido.")
	}
	return s.sales.FindSaleByID(ctx, id)
}

// reject encerra a tentativa em REJECTED sem efeitos colaterais.
func (s *Service) reject(out Outcome, err error) (Outcome, error) {
	out.enter(StateRejected)
	var rej *apperror.RejectionError
	if errors.As(err, &rej) {
		out.Reason = rej.Reason
		out.ItemID = rej.ItemID
	}
	s.logger.Debug("Venda rejeitada na validação.", map[string]interface{}{"reason": out.Reason, "item_id": out.ItemID})
	return out, err
}

// buildSale monta o rascunho da venda a partir das linhas do carrinho.
func (s *Service) buildSale(lines []cart.Line, payment domain.PaymentMethod, cashierID string) domain.SaleRecord {
	id := s.newID()
	now := s.now().UTC()
	totals := cart.ComputeTotals(lines)

	saleLines := make([]domain.SaleLine, len(lines))
	for i, l := range lines {
		saleLines[i] = domain.SaleLine{
			ItemID:    l.ItemID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.Total(),
		}
	}

	return domain.SaleRecord{
		ID:            id,
		ReceiptNumber: receiptNumber(now, id),
		CreatedAt:     now,
		PaymentMethod: payment,
		Currency:      s.opts.Currency,
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		Total:         totals.Total,
		Lines:         saleLines,
		Status:        domain.SaleCompleted,
		CashierID:     cashierID,
	}
}

// receiptNumber gera o número do comprovante: R-AAAAMMDD-XXXXXXXX.
func receiptNumber(at time.Time, saleID string) string {
	suffix := strings.ReplaceAll(saleID, "-", "")
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return fmt.Sprintf("R-%s-%s", at.Format("20060102"), strings.ToUpper(suffix))
}

func (s *Service) savePending(ctx context.Context, out Outcome) {
	if s.pending == nil || out.Sale == nil {
		return
	}
	if err := s.pending.SavePending(ctx, out); err != nil {
		// O relatório continua sendo devolvido ao chamador.
		s.logger.Error(fmt.Sprintf("Falha ao guardar a reconciliação pendente da venda %s.", out.Sale.ID), err)
	}
}

func (s *Service) partialFailure(out Outcome) error {
	pf := &apperror.PartialFailureError{
		Succeeded: out.SucceededIDs(),
		Failed:    out.FailedIDs(),
	}
	if out.Sale != nil {
		pf.SaleID = out.Sale.ID
	}
	for _, f := range out.Failed {
		if f.Attempted {
			pf.Causes = append(pf.Causes, apperror.NewStockUpdateFailedError(f.ItemID, errors.New(f.Error)))
		}
	}
	return pf
}

package saleservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"

	"gopos/internal/domain"
	apperror "gopos/internal/errors"
	"gopos/internal/service/catalogservice"
)

// Pending devolve o relatório guardado de uma venda que aguarda reconciliação.
func (s *Service) Pending(ctx context.Context, saleID string) (Outcome, error) {
	if s.pending == nil {
		return Outcome{}, apperror.NewNotFoundError(fmt.Sprintf("Nenhuma reconciliação pendente para a venda %s.", saleID))
	}
	return s.pending.GetPending(ctx, saleID)
}

// Reconcile tenta novamente as baixas que falharam numa venda PARTIALLY_FAILED.
// As baixas são recalculadas sobre o estoque atual, nunca sobre o da venda original,
// e cada uma é repetida com backoff exponencial. Baixas que continuam falhando permanecem
// no relatório guardado; quando todas entram a venda passa a COMPLETED.
func (s *Service) Reconcile(ctx context.Context, saleID string) (Outcome, error) {
	out, err := s.Pending(ctx, saleID)
	if err != nil {
		return Outcome{}, err
	}
	if out.State != StatePartiallyFailed || out.Reason != ReasonStockUpdateFailed {
		return out, apperror.NewConflictError(fmt.Sprintf("A venda %s não aguarda baixas de estoque.", saleID))
	}

	s.logger.Info("Reconciliando baixas de estoque.", map[string]interface{}{
		"sale_id": saleID,
		"pending": out.FailedIDs(),
	})

	if s.batch != nil {
		s.reconcileBatch(ctx, &out)
	} else {
		s.reconcileEach(ctx, &out)
	}

	if len(out.Failed) > 0 {
		s.savePending(ctx, out)
		return out, s.partialFailure(out)
	}

	out.enter(StateCompleted)
	out.Reason = ""
	if err := s.pending.DeletePending(ctx, saleID); err != nil {
		s.logger.Error("Falha ao remover a reconciliação concluída.", err)
	}
	if _, err := s.catalog.ReloadItems(ctx); err != nil {
		s.logger.Warn("Reconciliação concluída, mas a recarga do catálogo falhou.", map[string]interface{}{"sale_id": saleID})
	}
	return out, nil
}

// reconcileEach recarrega o estoque e reaplica cada baixa pendente sobre o valor atual
// (atual - quantidade), na ordem original. Uma baixa que deixaria o estoque negativo
// não é aplicada e interrompe a sequência.
func (s *Service) reconcileEach(ctx context.Context, out *Outcome) {
	snap, err := s.catalog.ReloadItems(ctx)
	if err != nil {
		for i := range out.Failed {
			out.Failed[i].Attempted = false
			out.Failed[i].Error = "estoque atual indisponível: " + err.Error()
		}
		return
	}

	var remaining []FailedDecrement
	for i, f := range out.Failed {
		err := s.reapply(ctx, snap, &f, out)
		if err != nil {
			f.Attempted = true
			f.Error = err.Error()
			remaining = append(remaining, f)
			// Mantém a ordem: os seguintes não são tentados.
			for _, rest := range out.Failed[i+1:] {
				rest.Attempted = false
				rest.Error = notAttempted
				remaining = append(remaining, rest)
			}
			break
		}
	}
	out.Failed = remaining
}

// reapply calcula a baixa de f a partir do snapshot recarregado e a grava.
// f é atualizado com os valores usados, para o relatório.
func (s *Service) reapply(ctx context.Context, snap *catalogservice.Snapshot, f *FailedDecrement, out *Outcome) error {
	avail, ok := snap.Availability(f.ItemID)
	if !ok {
		return apperror.NewNotFoundError(fmt.Sprintf("Item %s não existe mais no catálogo.", f.ItemID))
	}
	current, bounded := avail.Quantity()
	if !bounded {
		out.Skipped = append(out.Skipped, f.ItemID)
		return nil
	}

	f.PreviousStock = current
	next := current.Sub(decimal.NewFromInt(int64(f.Quantity)))
	if next.IsNegative() {
		return apperror.NewInsufficientStockError(f.ItemID, f.Quantity, current.String())
	}
	f.NewStock = next

	err := s.withRetry(ctx, func(ctx context.Context) error {
		return s.stock.SetItemStock(ctx, f.ItemID, f.NewStock)
	})
	if err != nil {
		return err
	}
	out.Succeeded = append(out.Succeeded, Decrement{
		ItemID:        f.ItemID,
		Quantity:      f.Quantity,
		PreviousStock: f.PreviousStock,
		NewStock:      f.NewStock,
	})
	return nil
}

// reconcileBatch repete a transação condicional com todas as baixas pendentes.
func (s *Service) reconcileBatch(ctx context.Context, out *Outcome) {
	batch := make([]domain.StockDecrement, len(out.Failed))
	for i, f := range out.Failed {
		batch[i] = domain.StockDecrement{ItemID: f.ItemID, Quantity: decimal.NewFromInt(int64(f.Quantity))}
	}

	err := s.withRetry(ctx, func(ctx context.Context) error {
		return s.batch.ApplyStockDecrements(ctx, batch)
	})
	if err != nil {
		for i := range out.Failed {
			out.Failed[i].Attempted = true
			out.Failed[i].Error = err.Error()
		}
		return
	}
	for _, f := range out.Failed {
		out.Succeeded = append(out.Succeeded, Decrement{
			ItemID:        f.ItemID,
			Quantity:      f.Quantity,
			PreviousStock: f.PreviousStock,
			NewStock:      f.NewStock,
		})
	}
	out.Failed = nil
}

// withRetry executa fn com backoff exponencial. Erros de regra de negócio
// (conflito, item inexistente, validação) não são repetidos.
func (s *Service) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	b := retry.WithMaxRetries(uint64(s.opts.MaxRetries), retry.NewExponential(s.opts.RetryBackoff))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if permanent(err) {
			return err
		}
		s.logger.Debug("Nova tentativa de baixa de estoque.", map[string]interface{}{"error": err.Error()})
		return retry.RetryableError(err)
	})
}

func permanent(err error) bool {
	var (
		conflict   *apperror.ConflictError
		notFound   *apperror.NotFoundError
		validation *apperror.ValidationError
		rejection  *apperror.RejectionError
	)
	return errors.As(err, &conflict) || errors.As(err, &notFound) ||
		errors.As(err, &validation) || errors.As(err, &rejection)
}

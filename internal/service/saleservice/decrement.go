package saleservice

import (
	"context"

	"github.com/shopspring/decimal"

	"gopos/internal/cart"
	"gopos/internal/domain"
	"gopos/internal/service/catalogservice"
)

const notAttempted = "não tentado: uma baixa anterior falhou"

// plannedDecrement é a baixa calculada a partir do snapshot usado na validação.
type plannedDecrement struct {
	itemID   string
	quantity int
	previous decimal.Decimal
	next     decimal.Decimal
}

// plan separa as linhas em baixas a aplicar e itens ilimitados (sem baixa).
func plan(snap *catalogservice.Snapshot, lines []cart.Line) ([]plannedDecrement, []string) {
	var (
		planned []plannedDecrement
		skipped []string
	)
	for _, l := range lines {
		avail, _ := snap.Availability(l.ItemID)
		stock, bounded := avail.Quantity()
		if !bounded {
			skipped = append(skipped, l.ItemID)
			continue
		}
		qty := decimal.NewFromInt(int64(l.Quantity))
		planned = append(planned, plannedDecrement{
			itemID:   l.ItemID,
			quantity: l.Quantity,
			previous: stock,
			next:     stock.Sub(qty),
		})
	}
	return planned, skipped
}

// applySequential grava o novo estoque item a item, na ordem do carrinho.
// Para na primeira falha; os itens seguintes ficam como não tentados.
func (s *Service) applySequential(ctx context.Context, snap *catalogservice.Snapshot, lines []cart.Line, out *Outcome) {
	planned, skipped := plan(snap, lines)
	out.Skipped = skipped

	for i, p := range planned {
		if err := s.stock.SetItemStock(ctx, p.itemID, p.next); err != nil {
			s.logger.Error("Falha na baixa de estoque do item "+p.itemID+".", err)
			out.Failed = append(out.Failed, failed(p, true, err.Error()))
			for _, rest := range planned[i+1:] {
				out.Failed = append(out.Failed, failed(rest, false, notAttempted))
			}
			return
		}
		out.Succeeded = append(out.Succeeded, Decrement{
			ItemID:        p.itemID,
			Quantity:      p.quantity,
			PreviousStock: p.previous,
			NewStock:      p.next,
		})
	}
}

// applyAtomic aplica todas as baixas em uma única transação condicional.
// Ou todas entram, ou nenhuma.
func (s *Service) applyAtomic(ctx context.Context, snap *catalogservice.Snapshot, lines []cart.Line, out *Outcome) {
	planned, skipped := plan(snap, lines)
	out.Skipped = skipped
	if len(planned) == 0 {
		return
	}

	batch := make([]domain.StockDecrement, len(planned))
	for i, p := range planned {
		batch[i] = domain.StockDecrement{ItemID: p.itemID, Quantity: decimal.NewFromInt(int64(p.quantity))}
	}

	if err := s.batch.ApplyStockDecrements(ctx, batch); err != nil {
		s.logger.Error("Falha na baixa de estoque em lote.", err)
		for _, p := range planned {
			out.Failed = append(out.Failed, failed(p, true, err.Error()))
		}
		return
	}
	for _, p := range planned {
		out.Succeeded = append(out.Succeeded, Decrement{
			ItemID:        p.itemID,
			Quantity:      p.quantity,
			PreviousStock: p.previous,
			NewStock:      p.next,
		})
	}
}

func failed(p plannedDecrement, attempted bool, msg string) FailedDecrement {
	return FailedDecrement{
		ItemID:        p.itemID,
		Quantity:      p.quantity,
		PreviousStock: p.previous,
		NewStock:      p.next,
		Attempted:     attempted,
		Error:         msg,
	}
}

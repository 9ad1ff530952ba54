package saleservice

import (
	"github.com/shopspring/decimal"

	"gopos/internal/domain"
)

// State é o estado de uma tentativa de finalização de venda.
type State string

const (
	StateIdle            State = "IDLE"
	StateValidating      State = "VALIDATING"
	StateSubmitting      State = "SUBMITTING"
	StateApplying        State = "APPLYING_STOCK_DECREMENTS"
	StateCompleted       State = "COMPLETED"
	StateRejected        State = "REJECTED"
	StatePartiallyFailed State = "PARTIALLY_FAILED"
)

// Motivos de PARTIALLY_FAILED, de cancelamento e de finalização concorrente.
const (
	ReasonSaleNotRecorded    = "SALE_NOT_RECORDED"
	ReasonStockUpdateFailed  = "STOCK_UPDATE_FAILED"
	ReasonCancelled          = "CANCELLED"
	ReasonCheckoutInProgress = "CHECKOUT_IN_PROGRESS"
)

// Terminal informa se o estado encerra a tentativa.
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateRejected, StatePartiallyFailed:
		return true
	}
	return false
}

// Decrement é uma baixa de estoque aplicada com sucesso.
type Decrement struct {
	ItemID        string          `json:"item_id"`
	Quantity      int             `json:"quantity"`
	PreviousStock decimal.Decimal `json:"previous_stock"`
	NewStock      decimal.Decimal `json:"new_stock"`
}

// FailedDecrement é uma baixa que não foi aplicada.
// Attempted=false indica que o item nem chegou a ser enviado porque um anterior falhou.
// NewStock é o valor absoluto que a reconciliação deve gravar.
type FailedDecrement struct {
	ItemID        string          `json:"item_id"`
	Quantity      int             `json:"quantity"`
	PreviousStock decimal.Decimal `json:"previous_stock"`
	NewStock      decimal.Decimal `json:"new_stock"`
	Attempted     bool            `json:"attempted"`
	Error         string          `json:"error"`
}

// Outcome é o relatório de uma finalização (ou reconciliação).
// Também é o documento guardado enquanto a venda aguarda reconciliação.
type Outcome struct {
	State       State              `json:"state"`
	Reason      string             `json:"reason,omitempty"`
	ItemID      string             `json:"item_id,omitempty"` // Item que causou INSUFFICIENT_STOCK
	Sale        *domain.SaleRecord `json:"sale,omitempty"`
	Succeeded   []Decrement        `json:"succeeded"`
	Failed      []FailedDecrement  `json:"failed"`
	Skipped     []string           `json:"skipped"` // Itens ilimitados, sem baixa
	Transitions []State            `json:"transitions"`
}

// SucceededIDs devolve os IDs dos itens com baixa aplicada, em ordem.
func (o Outcome) SucceededIDs() []string {
	ids := make([]string, 0, len(o.Succeeded))
	for _, d := range o.Succeeded {
		ids = append(ids, d.ItemID)
	}
	return ids
}

// FailedIDs devolve os IDs dos itens cuja baixa falhou, em ordem.
func (o Outcome) FailedIDs() []string {
	ids := make([]string, 0, len(o.Failed))
	for _, f := range o.Failed {
		ids = append(ids, f.ItemID)
	}
	return ids
}

// enter registra a transição para o próximo estado.
func (o *Outcome) enter(s State) {
	o.State = s
	o.Transitions = append(o.Transitions, s)
}

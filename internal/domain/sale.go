package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod é a forma de pagamento escolhida no caixa.
type PaymentMethod string

// Formas de pagamento mais comuns. Qualquer valor não vazio é aceito.
const (
	PaymentCash     PaymentMethod = "Efectivo"
	PaymentCard     PaymentMethod = "Tarjeta"
	PaymentTransfer PaymentMethod = "Transferencia"
)

// SaleStatus é o estado persistido de uma venda.
type SaleStatus string

const (
	SaleCompleted SaleStatus = "COMPLETED"
	SaleVoided    SaleStatus = "VOIDED"
)

// SaleRecord é o registro imutável de uma venda finalizada.
// Apenas Status pode mudar depois da criação.
type SaleRecord struct {
	ID            string          `json:"id"`
	ReceiptNumber string          `json:"receipt_number"`
	CreatedAt     time.Time       `json:"created_at"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Currency      string          `json:"currency"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	Lines         []SaleLine      `json:"lines"`
	Status        SaleStatus      `json:"status"`
	CashierID     string          `json:"cashier_id,omitempty"`
}

// SaleLine é a foto de uma linha do carrinho no momento da venda.
type SaleLine struct {
	ItemID    string          `json:"item_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

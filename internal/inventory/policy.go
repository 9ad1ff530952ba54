// Package inventory é a única fonte de verdade para estados de estoque e para a
// pergunta "esta quantidade pode ser comprada?". Carrinho, finalizador de vendas e API
// consultam apenas estas funções.
package inventory

import (
	"gopos/internal/domain"

	"github.com/shopspring/decimal"
)

// State é a classificação de estoque de um item do catálogo.
type State string

const (
	InStock    State = "IN_STOCK"
	LowStock   State = "LOW_STOCK"
	OutOfStock State = "OUT_OF_STOCK"
	Unlimited  State = "UNLIMITED"
)

// Classify classifica a disponibilidade de um item frente ao seu estoque mínimo.
func Classify(a domain.Availability, threshold decimal.Decimal) State {
	q, bounded := a.Quantity()
	if !bounded {
		return Unlimited
	}
	if !q.IsPositive() {
		return OutOfStock
	}
	if q.LessThanOrEqual(threshold) {
		return LowStock
	}
	return InStock
}

// CanPurchase informa se qty unidades cabem na disponibilidade.
func CanPurchase(a domain.Availability, qty int) bool {
	if qty <= 0 {
		return false
	}
	q, bounded := a.Quantity()
	if !bounded {
		return true
	}
	return decimal.NewFromInt(int64(qty)).LessThanOrEqual(q)
}

// MaxPurchasable devolve o maior número inteiro de unidades compráveis.
// O segundo retorno é false para itens ilimitados.
func MaxPurchasable(a domain.Availability) (int, bool) {
	q, bounded := a.Quantity()
	if !bounded {
		return 0, false
	}
	if !q.IsPositive() {
		return 0, true
	}
	return int(q.Floor().IntPart()), true
}

// Purchasable habilita ou não o botão de compra de um item.
func Purchasable(a domain.Availability) bool {
	return CanPurchase(a, 1)
}

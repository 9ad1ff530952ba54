package domain

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Availability é a quantidade disponível de um item do catálogo.
// Itens de serviço não controlam estoque e são Unlimited; os demais são Bounded.
// O valor zero é Unlimited.
type Availability struct {
	bounded  bool
	quantity decimal.Decimal
}

// Unlimited cria uma disponibilidade sem controle de estoque.
func Unlimited() Availability {
	return Availability{}
}

// Bounded cria uma disponibilidade limitada à quantidade informada.
func Bounded(quantity decimal.Decimal) Availability {
	return Availability{bounded: true, quantity: quantity}
}

// BoundedInt é um atalho para Bounded com quantidades inteiras.
func BoundedInt(quantity int64) Availability {
	return Bounded(decimal.NewFromInt(quantity))
}

// FromNullDecimal converte a coluna anulável do banco: NULL significa ilimitado.
func FromNullDecimal(n decimal.NullDecimal) Availability {
	if !n.Valid {
		return Unlimited()
	}
	return Bounded(n.Decimal)
}

// IsUnlimited indica se o item não controla estoque.
func (a Availability) IsUnlimited() bool {
	return !a.bounded
}

// Quantity devolve a quantidade e true quando a disponibilidade é limitada.
func (a Availability) Quantity() (decimal.Decimal, bool) {
	return a.quantity, a.bounded
}

// NullDecimal é o inverso de FromNullDecimal, usado na persistência.
func (a Availability) NullDecimal() decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: a.quantity, Valid: a.bounded}
}

// String é usado em mensagens de erro e logs.
func (a Availability) String() string {
	if !a.bounded {
		return "ilimitado"
	}
	return a.quantity.String()
}

// MarshalJSON serializa Unlimited como null e Bounded como número.
func (a Availability) MarshalJSON() ([]byte, error) {
	if !a.bounded {
		return []byte("null"), nil
	}
	return json.Marshal(a.quantity)
}

// UnmarshalJSON aceita null (ilimitado) ou um número.
func (a *Availability) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*a = Unlimited()
		return nil
	}
	var q decimal.Decimal
	if err := json.Unmarshal(data, &q); err != nil {
		return err
	}
	*a = Bounded(q)
	return nil
}

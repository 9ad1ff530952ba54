// Package cart mantém o carrinho do caixa em memória. Nenhuma operação acessa a rede:
// as verificações de estoque usam a disponibilidade capturada quando o item foi adicionado.
package cart

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"gopos/internal/domain"
	apperror "gopos/internal/errors"
	"gopos/internal/inventory"
)

// TaxRate é a alíquota fixa de imposto (21%).
var TaxRate = decimal.RequireFromString("0.21")

// Line é uma linha do carrinho. Name, UnitPrice e Available são a foto do item
// no momento da adição; Quantity é sempre >= 1.
type Line struct {
	ItemID    string              `json:"item_id"`
	Name      string              `json:"name"`
	UnitPrice decimal.Decimal     `json:"unit_price"`
	Available domain.Availability `json:"available"`
	Quantity  int                 `json:"quantity"`
}

// Total é o preço unitário vezes a quantidade, sem arredondamento.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Totals são os valores derivados do carrinho, recalculados a cada leitura.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// UpdateResult é devolvido por UpdateQuantity.
// Clamped indica que a quantidade pedida foi reduzida ao estoque disponível.
type UpdateResult struct {
	Totals
	Clamped  bool `json:"clamped"`
	Quantity int  `json:"quantity"` // Quantidade efetivamente aplicada (0 = linha removida)
}

// Cart é uma sequência ordenada de linhas, sem duplicatas por item.
// É seguro para uso concorrente.
type Cart struct {
	mu          sync.Mutex
	lines       []Line
	checkingOut bool
}

// New cria um carrinho vazio.
func New() *Cart {
	return &Cart{}
}

// AddItem adiciona uma unidade do item. Se a linha já existe, incrementa a quantidade
// somente se o resultado couber na disponibilidade do item; caso contrário devolve
// OutOfStockError e não altera o carrinho.
func (c *Cart) AddItem(item domain.CatalogItem) (Totals, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(item.ID); i >= 0 {
		next := c.lines[i].Quantity + 1
		if !inventory.CanPurchase(item.Available, next) {
			return c.totals(), apperror.NewOutOfStockError(item.ID, item.Name)
		}
		c.lines[i].Quantity = next
		c.lines[i].Available = item.Available
		return c.totals(), nil
	}

	if !inventory.CanPurchase(item.Available, 1) {
		return c.totals(), apperror.NewOutOfStockError(item.ID, item.Name)
	}
	c.lines = append(c.lines, Line{
		ItemID:    item.ID,
		Name:      item.Name,
		UnitPrice: item.Price,
		Available: item.Available,
		Quantity:  1,
	})
	return c.totals(), nil
}

// UpdateQuantity define a quantidade de uma linha. Valores <= 0 removem a linha;
// valores acima do estoque capturado são reduzidos a ele (Clamped=true).
func (c *Cart) UpdateQuantity(itemID string, quantity int) (UpdateResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(itemID)
	if i < 0 {
		return UpdateResult{Totals: c.totals()}, apperror.NewNotFoundError(fmt.Sprintf("Item %s não está no carrinho.", itemID))
	}

	if quantity <= 0 {
		c.removeAt(i)
		return UpdateResult{Totals: c.totals()}, nil
	}

	clamped := false
	if limit, bounded := inventory.MaxPurchasable(c.lines[i].Available); bounded && quantity > limit {
		quantity = limit
		clamped = true
	}

	if quantity == 0 {
		c.removeAt(i)
	} else {
		c.lines[i].Quantity = quantity
	}
	return UpdateResult{Totals: c.totals(), Clamped: clamped, Quantity: quantity}, nil
}

// RemoveItem remove a linha do item, se existir.
func (c *Cart) RemoveItem(itemID string) Totals {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(itemID); i >= 0 {
		c.removeAt(i)
	}
	return c.totals()
}

// Clear esvazia o carrinho. Não altera o estoque persistido.
func (c *Cart) Clear() Totals {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lines = nil
	return c.totals()
}

// BeginCheckout marca o carrinho como em finalização e devolve a foto das linhas.
// Devolve false se outra finalização do mesmo carrinho ainda está em andamento.
// Cada BeginCheckout bem-sucedido precisa de um EndCheckout.
func (c *Cart) BeginCheckout() ([]Line, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.checkingOut {
		return nil, false
	}
	c.checkingOut = true
	return append([]Line(nil), c.lines...), true
}

// EndCheckout libera o carrinho para uma nova finalização.
func (c *Cart) EndCheckout() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.checkingOut = false
}

// RemoveSold desconta as quantidades vendidas. Linhas que chegam a zero são removidas;
// itens adicionados depois da foto da venda permanecem no carrinho.
func (c *Cart) RemoveSold(sold []Line) Totals {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range sold {
		i := c.indexOf(s.ItemID)
		if i < 0 {
			continue
		}
		if left := c.lines[i].Quantity - s.Quantity; left > 0 {
			c.lines[i].Quantity = left
		} else {
			c.removeAt(i)
		}
	}
	return c.totals()
}

// Lines devolve uma cópia das linhas na ordem de inserção.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]Line(nil), c.lines...)
}

// IsEmpty informa se o carrinho não tem linhas.
func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.lines) == 0
}

// Totals devolve subtotal, imposto e total atuais.
func (c *Cart) Totals() Totals {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.totals()
}

func (c *Cart) Subtotal() decimal.Decimal { return c.Totals().Subtotal }
func (c *Cart) Tax() decimal.Decimal      { return c.Totals().Tax }
func (c *Cart) Total() decimal.Decimal    { return c.Totals().Total }

// ComputeTotals calcula os totais de um conjunto de linhas.
// O arredondamento acontece apenas na exibição (Format).
func ComputeTotals(lines []Line) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Total())
	}
	tax := subtotal.Mul(TaxRate)
	return Totals{Subtotal: subtotal, Tax: tax, Total: subtotal.Add(tax)}
}

// Format arredonda um valor monetário para exibição com duas casas.
func Format(v decimal.Decimal) string {
	return v.StringFixed(2)
}

func (c *Cart) totals() Totals {
	return ComputeTotals(c.lines)
}

func (c *Cart) indexOf(itemID string) int {
	for i, l := range c.lines {
		if l.ItemID == itemID {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(i int) {
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}

package domain

import (
	"github.com/shopspring/decimal"
)

// CatalogItem representa um item vendável do catálogo (a Entidade).
// É propriedade do snapshot do catálogo e nunca é alterado parcialmente no cliente.
type CatalogItem struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Price     decimal.Decimal     `json:"price"`     // Preço unitário de venda
	UnitCost  decimal.NullDecimal `json:"unit_cost"` // Custo unitário, opcional
	Category  string              `json:"category"`
	Available Availability        `json:"available"` // null = ilimitado (serviços)
	MinStock  decimal.Decimal     `json:"min_stock"` // Limite de estoque baixo

	// Margem sugerida (%) usada pela calculadora de custos, opcional.
	SuggestedMargin decimal.NullDecimal `json:"suggested_margin"`

	// Receita: insumos necessários para produzir uma unidade.
	BillOfMaterials []BillOfMaterialsLine `json:"bill_of_materials"`
}

// Clone devolve uma cópia que não compartilha a receita com o original.
func (c CatalogItem) Clone() CatalogItem {
	if c.BillOfMaterials != nil {
		c.BillOfMaterials = append([]BillOfMaterialsLine(nil), c.BillOfMaterials...)
	}
	return c
}

// InputItem é um insumo (matéria-prima). Serve apenas como fonte de custo.
type InputItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Unit     string          `json:"unit"` // Ex: "kg", "un", "l"
	OnHand   decimal.Decimal `json:"on_hand"`
	UnitCost decimal.Decimal `json:"unit_cost"` // Custo unitário de compra
}

// BillOfMaterialsLine liga um insumo à quantidade necessária para uma unidade do item.
// InputID vazio ou Quantity nula são estados normais durante a edição da receita.
type BillOfMaterialsLine struct {
	InputID  string              `json:"input_id"`
	Quantity decimal.NullDecimal `json:"quantity"`
}

// StockDecrement é a baixa de estoque de um item, usada pela aplicação em lote.
type StockDecrement struct {
	ItemID   string          `json:"item_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// Package costing calcula o custo das mercadorias vendidas (CMV) de um item a partir da
// sua receita de insumos, além do preço sugerido e da margem realizada.
package costing

import (
	"gopos/internal/domain"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Input reúne tudo de que o cálculo depende. Qualquer mudança em um destes campos
// exige uma nova chamada a Calculate.
type Input struct {
	Lines         []domain.BillOfMaterialsLine
	Inputs        map[string]domain.InputItem // Catálogo de insumos por ID
	MarginPercent decimal.NullDecimal         // Margem sugerida (%)
	SalePrice     decimal.NullDecimal         // Preço de venda atual
}

// Result contém os valores derivados. Campos inválidos (Valid=false) significam
// "sem dados", o que é diferente de zero.
type Result struct {
	COGS           decimal.NullDecimal `json:"cogs"`
	SuggestedPrice decimal.NullDecimal `json:"suggested_price"`
	RealizedMargin decimal.NullDecimal `json:"realized_margin"`

	Contributing []string `json:"contributing"` // IDs dos insumos somados
	Skipped      int      `json:"skipped"`      // Linhas incompletas ignoradas
}

// Calculate é uma função pura: não faz I/O e não altera os argumentos.
func Calculate(in Input) Result {
	var res Result

	cogs := decimal.Zero
	for _, line := range in.Lines {
		if line.InputID == "" || !line.Quantity.Valid || !line.Quantity.Decimal.IsPositive() {
			res.Skipped++
			continue
		}
		item, ok := in.Inputs[line.InputID]
		if !ok {
			res.Skipped++
			continue
		}
		cogs = cogs.Add(line.Quantity.Decimal.Mul(item.UnitCost))
		res.Contributing = append(res.Contributing, line.InputID)
	}

	if len(res.Contributing) == 0 {
		return res
	}
	res.COGS = decimal.NewNullDecimal(cogs)

	if in.MarginPercent.Valid {
		factor := decimal.NewFromInt(1).Add(in.MarginPercent.Decimal.Div(hundred))
		res.SuggestedPrice = decimal.NewNullDecimal(cogs.Mul(factor))
	}

	if in.SalePrice.Valid && cogs.IsPositive() {
		margin := in.SalePrice.Decimal.Sub(cogs).Div(cogs).Mul(hundred)
		res.RealizedMargin = decimal.NewNullDecimal(margin)
	}

	return res
}

// ForItem calcula o custo de um item do catálogo com a margem e o preço dele próprio.
func ForItem(item domain.CatalogItem, inputs map[string]domain.InputItem) Result {
	return Calculate(Input{
		Lines:         item.BillOfMaterials,
		Inputs:        inputs,
		MarginPercent: item.SuggestedMargin,
		SalePrice:     decimal.NewNullDecimal(item.Price),
	})
}

// IndexInputs monta o mapa de insumos por ID esperado por Input.
func IndexInputs(items []domain.InputItem) map[string]domain.InputItem {
	idx := make(map[string]domain.InputItem, len(items))
	for _, it := range items {
		idx[it.ID] = it
	}
	return idx
}

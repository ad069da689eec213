package calculator

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/burgermaster/blendcalc/internal/domain/blend"
	"github.com/burgermaster/blendcalc/internal/ports/inbound"
	"github.com/shopspring/decimal"
)

// RenderShoppingList renders the chat-friendly shopping list for a batch.
func RenderShoppingList(recipe blend.Recipe, result blend.CalculationResult, costs blend.CostBreakdown) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🍔 *LISTA DE COMPRAS - %s*\n\n", strings.ToUpper(recipe.Name))
	fmt.Fprintf(&b, "Para %d hambúrgueres de %sg:\n", result.Units, formatNumber(recipe.UnitWeight))
	for _, m := range result.Meats {
		fmt.Fprintf(&b, "🥩 *%s:* %s\n", strings.ToUpper(m.Name), formatShoppingWeight(m.Weight))
	}
	fmt.Fprintf(&b, "🥩 *GORDURA:* %s\n", formatShoppingWeight(result.Fat))
	fmt.Fprintf(&b, "✅ *TOTAL:* %s\n\n", formatShoppingWeight(result.Total))
	fmt.Fprintf(&b, "💰 *ESTIMATIVA DE CUSTO:*\n")
	fmt.Fprintf(&b, "Total: %s\n", FormatBRL(costs.Total))
	fmt.Fprintf(&b, "Por Unidade: %s", FormatBRL(costs.PerUnit))

	return b.String()
}

// SheetOptions carries the per-print values of a production sheet.
type SheetOptions struct {
	ID       string
	IssuedAt time.Time
}

// RenderProductionSheet renders the printable production report as markdown.
func RenderProductionSheet(report inbound.Report, opts SheetOptions) string {
	recipe := report.State.Recipe
	result := report.Result
	costs := report.Costs

	var b strings.Builder

	fmt.Fprintf(&b, "# Burger Master Pro\n\n")
	fmt.Fprintf(&b, "**Relatório de Produção** · ID: %s\n\n", opts.ID)
	fmt.Fprintf(&b, "Emitido em %s\n\n", opts.IssuedAt.Format("02/01/2006 15:04"))

	fmt.Fprintf(&b, "## Produto\n\n")
	fmt.Fprintf(&b, "- Nome: %s\n", strings.ToUpper(recipe.Name))
	fmt.Fprintf(&b, "- Cortes: %d\n", len(recipe.Meats))
	fmt.Fprintf(&b, "- Moagem: %s\n", recipe.GrindMethod)
	fmt.Fprintf(&b, "- Unidades: %d\n", result.Units)
	fmt.Fprintf(&b, "- Peso Un.: %sg\n\n", formatNumber(recipe.UnitWeight))

	fmt.Fprintf(&b, "## Composição do Blend\n\n")
	fmt.Fprintf(&b, "| Ingrediente | Proporção | Peso Total |\n")
	fmt.Fprintf(&b, "| --- | ---: | ---: |\n")
	fmt.Fprintf(&b, "| %s | %s | %s |\n",
		strings.ToUpper(blend.FatPriceKey), formatPercent(recipe.FatRatio), formatSheetWeight(result.Fat))
	for _, m := range result.Meats {
		fmt.Fprintf(&b, "| %s | %s | %s |\n",
			strings.ToUpper(m.Name), formatPercent(m.RatioInTotal), formatSheetWeight(m.Weight))
	}
	fmt.Fprintf(&b, "| **MASSA TOTAL** | **100%%** | **%.3fkg** |\n", result.Total/1000)

	if drift := report.RatioDrift; math.Abs(drift) > 1e-9 {
		fmt.Fprintf(&b, "\n> Atenção: as proporções das carnes somam %s, não 100%%.\n",
			formatPercent(recipe.MeatRatioSum()))
	}

	fmt.Fprintf(&b, "\n## Custos\n\n")
	fmt.Fprintf(&b, "- Custo total: %s\n", FormatBRL(costs.Total))
	fmt.Fprintf(&b, "- Custo por unidade: %s\n", FormatBRL(costs.PerUnit))
	fmt.Fprintf(&b, "- Preço de venda: %s\n", FormatBRL(report.State.SellingPrice))
	fmt.Fprintf(&b, "- Lucro por unidade: %s\n", FormatBRL(costs.Profit))
	fmt.Fprintf(&b, "- Margem: %.1f%%\n", costs.Margin)

	return b.String()
}

// FormatBRL formats an amount as Brazilian reais, e.g. "R$ 1.234,56".
// The separator after the symbol is a non-breaking space.
func FormatBRL(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	fixed := decimal.NewFromFloat(amount).StringFixed(2)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		fixed = fixed[1:]
		if fixed != "0.00" {
			sign = "-"
		}
	}

	intPart, fracPart, _ := strings.Cut(fixed, ".")
	return sign + "R$\u00a0" + groupThousands(intPart) + "," + fracPart
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// formatShoppingWeight renders grams below 1kg and kilograms with two
// decimals from 1kg up.
func formatShoppingWeight(grams float64) string {
	if grams >= 1000 {
		return fmt.Sprintf("%.2fkg", grams/1000)
	}
	return fmt.Sprintf("%dg", int64(math.Round(grams)))
}

func formatSheetWeight(grams float64) string {
	if grams < 1000 {
		return fmt.Sprintf("%dg", int64(math.Round(grams)))
	}
	return fmt.Sprintf("%.3fkg", grams/1000)
}

func formatPercent(ratio float64) string {
	return fmt.Sprintf("%d%%", int64(math.Round(ratio*100)))
}

// formatNumber prints whole numbers without decimals.
func formatNumber(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}

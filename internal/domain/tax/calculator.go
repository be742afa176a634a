// internal/domain/tax/calculator.go
package tax

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Component describes one line of the GST split
type Component struct {
	Type        string          `json:"type"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// Breakdown is the result of a tax computation
type Breakdown struct {
	CGST  decimal.Decimal `json:"cgst"`
	SGST  decimal.Decimal `json:"sgst"`
	Total decimal.Decimal `json:"total_tax"`
}

// Calculator applies the intra-state CGST + SGST split at fixed rates
type Calculator struct {
	cgstRate decimal.Decimal
	sgstRate decimal.Decimal
}

// NewCalculator creates a calculator; rates are percentages (2.5 means 2.5%)
func NewCalculator(cgstRate, sgstRate decimal.Decimal) *Calculator {
	return &Calculator{cgstRate: cgstRate, sgstRate: sgstRate}
}

// Calculate splits tax on the taxable amount. Each component is rounded to
// two places before summing, and the sum is rounded again.
func (c *Calculator) Calculate(taxable decimal.Decimal) Breakdown {
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}
	cgst := Round2(taxable.Mul(c.cgstRate).Div(hundred))
	sgst := Round2(taxable.Mul(c.sgstRate).Div(hundred))
	return Breakdown{
		CGST:  cgst,
		SGST:  sgst,
		Total: Round2(cgst.Add(sgst)),
	}
}

// Components returns the breakdown as display rows
func (c *Calculator) Components(b Breakdown) []Component {
	return []Component{
		{Type: "CGST", Rate: c.cgstRate, Amount: b.CGST, Description: "Central GST"},
		{Type: "SGST", Rate: c.sgstRate, Amount: b.SGST, Description: "State GST"},
	}
}

// Round2 rounds half away from zero to two decimal places
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

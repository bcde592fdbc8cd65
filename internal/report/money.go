package report

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

const currency = money.BRL

// BRL formatea un monto en reales (R$1.234,56).
func BRL(amount decimal.Decimal) string {
	cur := money.GetCurrency(currency)
	factor, _ := decimal.NewFromInt(10).PowInt32(int32(cur.Fraction))
	return money.New(amount.Mul(factor).Round(0).IntPart(), currency).Display()
}

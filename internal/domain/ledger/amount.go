package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount interpreta montos escritos a mano: "R$ 1.234,56", "1234,56" o "1234.56".
// Con punto y coma juntos, el punto es separador de miles. Más de dos decimales es error.
func ParseAmount(s string) (decimal.Decimal, error) {
	v := strings.ReplaceAll(s, "R$", "")
	v = strings.Join(strings.Fields(v), "")
	if v == "" {
		return decimal.Zero, ErrInvalidAmount
	}

	if strings.Contains(v, ",") {
		v = strings.ReplaceAll(v, ".", "")
		v = strings.Replace(v, ",", ".", 1)
	}

	d, err := decimal.NewFromString(v)
	if err != nil || !d.Equal(d.Round(2)) {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// Describe arma el histórico de un movimiento cuando el operador no escribió uno.
//
//	grant:  "Grant - <documento>"
//	gasto:  "<Tipo>: <ítem>" + " (<cant>)" + " Ref: <mes>/<año>" + " - <obs>"
func Describe(t EntryType, documentNumber, itemName, quantity, refMonth, refYear, notes string) string {
	var b strings.Builder
	if t.IsCredit() {
		b.WriteString(t.Label() + " - " + strings.TrimSpace(documentNumber))
	} else {
		item := strings.TrimSpace(itemName)
		if item == "" {
			item = DefaultItemName
		}
		b.WriteString(t.Label() + ": " + item)
	}
	if q := strings.TrimSpace(quantity); q != "" {
		b.WriteString(" (" + q + ")")
	}
	if m := strings.TrimSpace(refMonth); m != "" {
		b.WriteString(" Ref: " + m + "/" + strings.TrimSpace(refYear))
	}
	if n := strings.TrimSpace(notes); n != "" {
		b.WriteString(" - " + n)
	}
	return b.String()
}

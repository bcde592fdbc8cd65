package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

type Entry struct {
	ID     string
	CaseID string
	// Seq es el orden de inserción dentro del caso (desempate estable al ordenar por fecha).
	Seq int64

	Date time.Time
	Type EntryType

	// Exactamente uno de los dos es > 0.
	Credit decimal.Decimal
	Debit  decimal.Decimal

	Description    string
	DocumentNumber string
	MovementCode   string
	ItemName       string
	Quantity       string
	RefMonth       string
	RefYear        string
	Notes          string
	Responsible    string

	Status    Status
	CreatedAt time.Time
}

// Signed = crédito - débito.
func (e Entry) Signed() decimal.Decimal {
	return e.Credit.Sub(e.Debit)
}

func (e Entry) Amount() decimal.Decimal {
	if e.Type.IsCredit() {
		return e.Credit
	}
	return e.Debit
}

type PostedRow struct {
	Entry   Entry
	Running decimal.Decimal
}

// Ledger es la proyección de lectura: borradores aparte, lanzados con saldo acumulado.
type Ledger struct {
	CaseID string

	Drafts []Entry
	Posted []PostedRow

	TotalCredit decimal.Decimal
	TotalDebit  decimal.Decimal
	Balance     decimal.Decimal
}

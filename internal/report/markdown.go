package report

import (
	"fmt"
	"strings"

	"case-tracker/internal/domain/cases"
	"case-tracker/internal/domain/deadline"
	"case-tracker/internal/domain/ledger"

	"github.com/shopspring/decimal"
)

// Markdown arma el extracto del caso: lanzados con saldo acumulado, totales y borradores aparte.
func Markdown(c cases.Case, l ledger.Ledger) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Statement: %s\n\n", c.Number)
	fmt.Fprintf(&b, "**Subject:** %s  \n", mdEscape(c.SubjectName))
	if c.Judge != "" {
		fmt.Fprintf(&b, "**Judge:** %s  \n", mdEscape(c.Judge))
	}
	fmt.Fprintf(&b, "**Phase:** %s\n\n", mdEscape(c.Phase))

	b.WriteString("## Posted\n\n")
	if len(l.Posted) == 0 {
		b.WriteString("_No posted entries._\n\n")
	} else {
		b.WriteString("| Date | Type | Description | Credit | Debit | Balance |\n")
		b.WriteString("|---|---|---|--:|--:|--:|\n")
		for _, row := range l.Posted {
			e := row.Entry
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
				deadline.FormatDate(e.Date),
				e.Type.Label(),
				mdEscape(e.Description),
				amountCell(e.Credit),
				amountCell(e.Debit),
				BRL(row.Running),
			)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Totals\n\n")
	fmt.Fprintf(&b, "- Credits: %s\n", BRL(l.TotalCredit))
	fmt.Fprintf(&b, "- Debits: %s\n", BRL(l.TotalDebit))
	fmt.Fprintf(&b, "- **Balance: %s**\n", BRL(l.Balance))

	if len(l.Drafts) > 0 {
		b.WriteString("\n## Drafts (not posted)\n\n")
		b.WriteString("| Date | Type | Description | Amount |\n")
		b.WriteString("|---|---|---|--:|\n")
		for _, e := range l.Drafts {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				deadline.FormatDate(e.Date),
				e.Type.Label(),
				mdEscape(e.Description),
				BRL(e.Signed()),
			)
		}
	}

	return b.String()
}

func amountCell(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return BRL(d)
}

func mdEscape(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}

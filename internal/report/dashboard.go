package report

import (
	"fmt"
	"strings"

	"case-tracker/internal/domain/casefile"
	"case-tracker/internal/domain/deadline"
)

// DashboardMarkdown: una fila por caso, en el orden recibido.
func DashboardMarkdown(rows []casefile.DashboardRow) string {
	var b strings.Builder

	b.WriteString("# Cases\n\n")
	if len(rows) == 0 {
		b.WriteString("_No cases._\n")
		return b.String()
	}

	b.WriteString("| Number | Subject | Phase | Deadline | Status |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, row := range rows {
		c := row.Case
		status := row.Label
		if row.Severity == deadline.SeverityCritical {
			status = "**" + status + "**"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			mdEscape(c.Number),
			mdEscape(c.SubjectName),
			mdEscape(c.Phase),
			c.CachedDeadline,
			status,
		)
	}
	return b.String()
}

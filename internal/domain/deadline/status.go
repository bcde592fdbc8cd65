package deadline

import (
	"fmt"
	"time"
)

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityOK       Severity = "ok"
	SeverityNeutral  Severity = "neutral"
)

const (
	LabelNoDeadline  = "No Deadline"
	LabelInvalidDate = "Invalid Date"
	LabelOverdue     = "OVERDUE"
	LabelDueToday    = "DUE TODAY"
	LabelOnTrack     = "On Track"
)

// Classify deriva la etiqueta de urgencia. Total: cualquier string produce un label.
func Classify(deadline string, now time.Time) (string, Severity) {
	if deadline == "" {
		return LabelNoDeadline, SeverityNeutral
	}
	due, ok := ParseDate(deadline)
	if !ok {
		return LabelInvalidDate, SeverityNeutral
	}

	days := DaysUntil(due, now)
	switch {
	case days < 0:
		return LabelOverdue, SeverityCritical
	case days == 0:
		return LabelDueToday, SeverityWarning
	case days <= notifyLeadDays:
		return fmt.Sprintf("Due in %d days", days), SeverityWarning
	default:
		return LabelOnTrack, SeverityOK
	}
}

// DaysUntil cuenta días calendario entre hoy (según now) y due.
func DaysUntil(due, now time.Time) int {
	today := dateOf(now)
	return int(dateOf(due).Sub(today).Hours() / 24)
}

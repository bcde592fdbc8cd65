package deadline

import (
	"strings"
	"time"

	"case-tracker/internal/ports/clock"
)

// Layout es el formato de fecha de intercambio (dd/mm/yyyy).
const Layout = "02/01/2006"

const (
	autoOffsetDays = 14
	notifyLeadDays = 7
)

// Result es el par plazo / aviso. Vacío = sin plazo computable.
type Result struct {
	Deadline string
	NotifyBy string
}

func (r Result) IsZero() bool { return r.Deadline == "" }

// Compute calcula el próximo plazo.
//   - override válido: es el plazo tal cual, aviso = override - 7d (sin ajuste de fin de semana).
//   - si no: base (o now si base vacía/inválida) + 14d; sábado +2, domingo +1. Aviso = plazo - 7d.
//
// Nunca falla: sin override, sin base válida y con reloj en cero devuelve Result{}.
func Compute(now time.Time, baseDate, manualOverride string) Result {
	if d, ok := ParseDate(manualOverride); ok {
		return Result{
			Deadline: FormatDate(d),
			NotifyBy: FormatDate(d.AddDate(0, 0, -notifyLeadDays)),
		}
	}

	base, ok := ParseDate(baseDate)
	if !ok {
		if now.IsZero() {
			return Result{}
		}
		base = dateOf(now)
	}

	due := rollOffWeekend(base.AddDate(0, 0, autoOffsetDays))
	return Result{
		Deadline: FormatDate(due),
		NotifyBy: FormatDate(due.AddDate(0, 0, -notifyLeadDays)),
	}
}

func rollOffWeekend(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, 2)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	default:
		return d
	}
}

// ParseDate acepta solo dd/mm/yyyy. Devuelve la fecha a medianoche UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(Layout)
}

// dateOf trunca al día calendario del instante (en su propia zona) y lo lleva a UTC.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Engine es Compute/Classify con reloj inyectado.
type Engine struct {
	clock clock.Clock
}

func NewEngine(c clock.Clock) *Engine {
	if c == nil {
		c = clock.System{}
	}
	return &Engine{clock: c}
}

func (e *Engine) Compute(baseDate, manualOverride string) Result {
	return Compute(e.clock.Now(), baseDate, manualOverride)
}

func (e *Engine) Classify(deadline string) (string, Severity) {
	return Classify(deadline, e.clock.Now())
}

// Today es la fecha actual del reloj en formato dd/mm/yyyy.
func (e *Engine) Today() string {
	return FormatDate(dateOf(e.clock.Now()))
}

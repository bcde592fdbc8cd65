package clock

import "time"

type Clock interface {
	Now() time.Time
}

// System usa el reloj local del proceso.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed devuelve siempre el mismo instante (tests).
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }

// Func adapta una función (ej. time.Now o un stub) a Clock.
type Func func() time.Time

func (f Func) Now() time.Time { return f() }

package deadline

import (
	"testing"
	"time"

	"case-tracker/internal/ports/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wed = time.Date(2025, 1, 1, 15, 30, 0, 0, time.UTC) // miércoles

func TestCompute_BaseWednesday(t *testing.T) {
	got := Compute(wed, "01/01/2025", "")
	assert.Equal(t, Result{Deadline: "15/01/2025", NotifyBy: "08/01/2025"}, got)
}

func TestCompute_ManualOverrideIsVerbatim(t *testing.T) {
	// 04/01/2025 es sábado: el override no se ajusta.
	got := Compute(wed, "01/01/2025", "04/01/2025")
	assert.Equal(t, Result{Deadline: "04/01/2025", NotifyBy: "28/12/2024"}, got)
}

func TestCompute_InvalidOverrideFallsBackToBase(t *testing.T) {
	got := Compute(wed, "01/01/2025", "31/02/2025")
	assert.Equal(t, "15/01/2025", got.Deadline)
}

func TestCompute_WeekendRollForward(t *testing.T) {
	// 21/12/2024 + 14 = sábado 04/01 -> lunes 06/01 (+16)
	assert.Equal(t, "06/01/2025", Compute(wed, "21/12/2024", "").Deadline)
	// 22/12/2024 + 14 = domingo 05/01 -> lunes 06/01 (+15)
	assert.Equal(t, "06/01/2025", Compute(wed, "22/12/2024", "").Deadline)
}

func TestCompute_EmptyBaseUsesNow(t *testing.T) {
	now := time.Date(2025, 1, 1, 23, 59, 0, 0, time.FixedZone("BRT", -3*3600))
	assert.Equal(t, "15/01/2025", Compute(now, "", "").Deadline)
	assert.Equal(t, "15/01/2025", Compute(now, "garbage", "").Deadline)
}

func TestCompute_DegenerateInputIsEmpty(t *testing.T) {
	got := Compute(time.Time{}, "", "nope")
	assert.True(t, got.IsZero())
	assert.Equal(t, Result{}, got)
}

func TestCompute_Properties(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 366; i++ {
		b := start.AddDate(0, 0, i)
		plus14 := b.AddDate(0, 0, 14)

		got := Compute(wed, FormatDate(b), "")
		due, ok := ParseDate(got.Deadline)
		require.True(t, ok, "base %s", FormatDate(b))

		switch plus14.Weekday() {
		case time.Saturday:
			assert.Equal(t, b.AddDate(0, 0, 16), due)
		case time.Sunday:
			assert.Equal(t, b.AddDate(0, 0, 15), due)
		default:
			assert.Equal(t, plus14, due)
		}
		assert.NotEqual(t, time.Saturday, due.Weekday())
		assert.NotEqual(t, time.Sunday, due.Weekday())
		assert.Equal(t, FormatDate(due.AddDate(0, 0, -7)), got.NotifyBy)

		// override: (D, D-7)
		ov := Compute(wed, "", FormatDate(b))
		assert.Equal(t, FormatDate(b), ov.Deadline)
		assert.Equal(t, FormatDate(b.AddDate(0, 0, -7)), ov.NotifyBy)
	}
}

func TestEngine_UsesClock(t *testing.T) {
	e := NewEngine(clock.Fixed(wed))
	assert.Equal(t, "15/01/2025", e.Compute("", "").Deadline)
	assert.Equal(t, "01/01/2025", e.Today())

	label, sev := e.Classify("15/01/2025")
	assert.Equal(t, LabelOnTrack, label)
	assert.Equal(t, SeverityOK, sev)
}

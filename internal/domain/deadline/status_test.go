package deadline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	now := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		in       string
		label    string
		severity Severity
	}{
		{"empty", "", LabelNoDeadline, SeverityNeutral},
		{"garbage", "next friday", LabelInvalidDate, SeverityNeutral},
		{"iso is not accepted", "2025-03-10", LabelInvalidDate, SeverityNeutral},
		{"yesterday", "09/03/2025", LabelOverdue, SeverityCritical},
		{"today", "10/03/2025", LabelDueToday, SeverityWarning},
		{"tomorrow", "11/03/2025", "Due in 1 days", SeverityWarning},
		{"seven days", "17/03/2025", "Due in 7 days", SeverityWarning},
		{"eight days", "18/03/2025", LabelOnTrack, SeverityOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			label, sev := Classify(tc.in, now)
			assert.Equal(t, tc.label, label)
			assert.Equal(t, tc.severity, sev)
		})
	}
}

func TestDaysUntil_IgnoresTimeOfDay(t *testing.T) {
	due := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	late := time.Date(2025, 3, 10, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, 1, DaysUntil(due, late))
}

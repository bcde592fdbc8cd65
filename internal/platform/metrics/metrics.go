package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics agrupa los contadores del dominio. Los métodos toleran receptor nil.
type Metrics struct {
	CasesCreated    prometheus.Counter
	CheckIns        prometheus.Counter
	DraftsPosted    prometheus.Counter
	BackupFailures  prometheus.Counter
	BackupsTaken    prometheus.Counter
	CheckInDuration prometheus.Histogram
}

// New registra las métricas en reg. Con reg nil quedan sin registrar (tests).
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CasesCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "casetracker_cases_created_total",
			Help: "Total number of cases created",
		}),
		CheckIns: f.NewCounter(prometheus.CounterOpts{
			Name: "casetracker_checkins_total",
			Help: "Total number of check-ins recorded",
		}),
		DraftsPosted: f.NewCounter(prometheus.CounterOpts{
			Name: "casetracker_ledger_drafts_posted_total",
			Help: "Total number of ledger drafts moved to posted",
		}),
		BackupFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "casetracker_backup_failures_total",
			Help: "Total number of failed best-effort backups",
		}),
		BackupsTaken: f.NewCounter(prometheus.CounterOpts{
			Name: "casetracker_backups_total",
			Help: "Total number of successful backups",
		}),
		CheckInDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "casetracker_checkin_duration_seconds",
			Help:    "Duration of RecordCheckIn transactions",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncCaseCreated() {
	if m == nil {
		return
	}
	m.CasesCreated.Inc()
}

func (m *Metrics) IncCheckIn() {
	if m == nil {
		return
	}
	m.CheckIns.Inc()
}

func (m *Metrics) AddDraftsPosted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.DraftsPosted.Add(float64(n))
}

func (m *Metrics) IncBackupFailure() {
	if m == nil {
		return
	}
	m.BackupFailures.Inc()
}

func (m *Metrics) IncBackup() {
	if m == nil {
		return
	}
	m.BackupsTaken.Inc()
}

// ObserveCheckIn: llamar con time.Now() tomado al inicio.
func (m *Metrics) ObserveCheckIn(start time.Time) {
	if m == nil {
		return
	}
	m.CheckInDuration.Observe(time.Since(start).Seconds())
}

// Package metrics exposes the engine's Prometheus counters. A nil *Metrics is
// valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	clockEvents       *prometheus.CounterVec
	workLogsRecorded  *prometheus.CounterVec
	absencesMarked    prometheus.Counter
	calendarConflicts *prometheus.CounterVec
	salarySlips       *prometheus.CounterVec
	slipsPaid         prometheus.Counter
}

// New registers the counters on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		clockEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "workforce",
			Name:      "clock_events_total",
			Help:      "Clock-in and clock-out attempts by outcome.",
		}, []string{"action", "result"}),
		workLogsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "workforce",
			Name:      "work_logs_recorded_total",
			Help:      "Work logs written by source.",
		}, []string{"source"}),
		absencesMarked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "workforce",
			Name:      "absences_marked_total",
			Help:      "Absent work logs created by the absentee sweep.",
		}),
		calendarConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "workforce",
			Name:      "calendar_conflicts_total",
			Help:      "Rejected calendar configuration writes by reason.",
		}, []string{"reason"}),
		salarySlips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "workforce",
			Name:      "salary_slips_total",
			Help:      "Salary slip generation calls by outcome.",
		}, []string{"result"}),
		slipsPaid: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "workforce",
			Name:      "salary_slips_paid_total",
			Help:      "Salary slips marked as paid.",
		}),
	}
	reg.MustRegister(
		m.clockEvents,
		m.workLogsRecorded,
		m.absencesMarked,
		m.calendarConflicts,
		m.salarySlips,
		m.slipsPaid,
	)
	return m
}

func (m *Metrics) ClockEvent(action, result string) {
	if m == nil {
		return
	}
	m.clockEvents.WithLabelValues(action, result).Inc()
}

func (m *Metrics) WorkLogRecorded(source string) {
	if m == nil {
		return
	}
	m.workLogsRecorded.WithLabelValues(source).Inc()
}

func (m *Metrics) AbsencesMarked(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.absencesMarked.Add(float64(n))
}

func (m *Metrics) CalendarConflict(reason string) {
	if m == nil {
		return
	}
	m.calendarConflicts.WithLabelValues(reason).Inc()
}

func (m *Metrics) SalarySlip(result string) {
	if m == nil {
		return
	}
	m.salarySlips.WithLabelValues(result).Inc()
}

func (m *Metrics) SlipPaid() {
	if m == nil {
		return
	}
	m.slipsPaid.Inc()
}

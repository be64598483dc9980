package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/susu3304/warikan/internal/ledger"
)

// Registry holds the ledger counters. A nil *Registry is valid and records nothing.
type Registry struct {
	reg *prometheus.Registry

	Participants *prometheus.CounterVec
	Expenses     *prometheus.CounterVec
	ExpenseTotal *prometheus.CounterVec
	Payments     prometheus.Counter
	Settlements  prometheus.Counter
	Failures     *prometheus.CounterVec
	Groups       prometheus.Gauge
}

func New() *Registry {
	m := &Registry{
		reg: prometheus.NewRegistry(),
		Participants: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warikan_participants_registered_total",
				Help: "Participants registered per group",
			},
			[]string{"group"},
		),
		Expenses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warikan_expenses_total",
				Help: "Expenses applied by split kind",
			},
			[]string{"kind"},
		),
		ExpenseTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warikan_expense_amount_total",
				Help: "Sum of applied expense amounts by split kind",
			},
			[]string{"kind"},
		),
		Payments: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "warikan_payments_total",
				Help: "Payments applied",
			},
		),
		Settlements: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "warikan_settlements_total",
				Help: "Payments that brought a pair to exactly zero",
			},
		),
		Failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warikan_operation_failures_total",
				Help: "Rejected operations by operation and error kind",
			},
			[]string{"op", "reason"},
		),
		Groups: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "warikan_groups",
				Help: "Open ledger groups",
			},
		),
	}
	m.reg.MustRegister(
		m.Participants,
		m.Expenses,
		m.ExpenseTotal,
		m.Payments,
		m.Settlements,
		m.Failures,
		m.Groups,
	)
	return m
}

func (m *Registry) ParticipantRegistered(group string) {
	if m == nil {
		return
	}
	m.Participants.WithLabelValues(group).Inc()
}

func (m *Registry) ExpenseApplied(e *ledger.Expense) {
	if m == nil || e == nil {
		return
	}
	kind := e.Kind.String()
	m.Expenses.WithLabelValues(kind).Inc()
	m.ExpenseTotal.WithLabelValues(kind).Add(e.Amount.InexactFloat64())
}

func (m *Registry) PaymentApplied(p ledger.Payment) {
	if m == nil {
		return
	}
	m.Payments.Inc()
	if p.Settled {
		m.Settlements.Inc()
	}
}

func (m *Registry) OperationFailed(op string, err error) {
	if m == nil || err == nil {
		return
	}
	m.Failures.WithLabelValues(op, Reason(err)).Inc()
}

func (m *Registry) SetGroups(n int) {
	if m == nil {
		return
	}
	m.Groups.Set(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func (m *Registry) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Reason maps an error to a low-cardinality label value.
func Reason(err error) string {
	switch {
	case errors.Is(err, ledger.ErrUnknownParticipant):
		return "unknown_participant"
	case errors.Is(err, ledger.ErrDuplicateParticipant):
		return "duplicate_participant"
	case errors.Is(err, ledger.ErrInvalidParticipant):
		return "invalid_participant"
	case errors.Is(err, ledger.ErrInvalidSplit):
		return "invalid_split"
	case errors.Is(err, ledger.ErrInvalidAmount):
		return "invalid_amount"
	default:
		return "other"
	}
}

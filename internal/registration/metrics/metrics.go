// Package metrics exposes Prometheus counters for the registration flow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	EmailValidations   *prometheus.CounterVec
	NikValidations     *prometheus.CounterVec
	TeamsSubmitted     prometheus.Counter
	TeamResubmissions  prometheus.Counter
	PaymentTransitions *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		EmailValidations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tekfest_registration_email_validations_total",
			Help: "Member email validation attempts by outcome.",
		}, []string{"outcome"}),
		NikValidations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tekfest_registration_nik_validations_total",
			Help: "Member NIK validation attempts by outcome.",
		}, []string{"outcome"}),
		TeamsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tekfest_registration_teams_submitted_total",
			Help: "Teams successfully submitted.",
		}),
		TeamResubmissions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tekfest_registration_team_resubmissions_total",
			Help: "Idempotent resubmissions that returned an existing team.",
		}),
		PaymentTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tekfest_registration_payment_transitions_total",
			Help: "Member payment status transitions by new status.",
		}, []string{"status"}),
	}
}

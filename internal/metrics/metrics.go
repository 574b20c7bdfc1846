// Package metrics holds the prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthFailures counts rejected credentials by scheme and reason.
	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "useradmin",
		Name:      "auth_failures_total",
		Help:      "Rejected authentication attempts.",
	}, []string{"scheme", "reason"})

	// UsersCreated counts successful registrations.
	UsersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "useradmin",
		Name:      "users_created_total",
		Help:      "Users created.",
	})

	// CredentialRotations counts API key and password resets.
	CredentialRotations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "useradmin",
		Name:      "credential_rotations_total",
		Help:      "Credential rotations by kind.",
	}, []string{"kind"})

	// EmailDeliveryFailures counts credential e-mails that could not be handed off.
	EmailDeliveryFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "useradmin",
		Name:      "email_delivery_failures_total",
		Help:      "Credential e-mails that failed to be queued or sent.",
	})
)

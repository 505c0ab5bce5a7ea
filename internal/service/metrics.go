package service

import "github.com/prometheus/client_golang/prometheus"

const (
	resultCreated   = "created"
	resultDuplicate = "duplicate"
	resultInvalid   = "invalid"
	resultError     = "error"
)

var (
	registrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "account_registrations_total", Help: "Signup attempts by result"},
		[]string{"result"},
	)
	authAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "auth_attempts_total", Help: "Login attempts by verdict"},
		[]string{"result"},
	)
)

func init() { prometheus.MustRegister(registrations, authAttempts) }

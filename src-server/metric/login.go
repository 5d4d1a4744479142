package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// LoginTransitions counts login flow steps by outcome.
var LoginTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pocketbot_login_transitions_total",
	Help: "Login flow transitions by step and result",
}, []string{"step", "result"})

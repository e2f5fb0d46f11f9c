package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var checkoutCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "billing",
	Name:      "checkout_sessions_total",
	Help:      "Total number of checkout sessions by plan and result.",
}, []string{"plan", "result"})

var cartTotalsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "billing",
	Name:      "cart_totals_computed",
	Help:      "Total number of cart pricing computations.",
}, []string{"with_discount"})

func observeCheckout(plan, result string) {
	if len(plan) == 0 {
		plan = "unknown"
	}
	checkoutCounter.With(prometheus.Labels{"plan": plan, "result": result}).Inc()
}

func observeCartTotals(withDiscount bool) {
	label := "no"
	if withDiscount {
		label = "yes"
	}
	cartTotalsCounter.With(prometheus.Labels{"with_discount": label}).Inc()
}

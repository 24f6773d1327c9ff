package model

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//goland:noinspection ALL
var (
	//restart
	HandleRestart = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "count_of_restart",
			Help: "Total count of restart",
		},
		[]string{"service_restart"},
	)

	// updates
	HandleUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "count_of_handle_updates",
			Help: "Total count of handle updates",
		},
		[]string{"bot_link", "bot_lang", "kind"},
	)

	// dispatch
	HandleDispatch = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "count_of_dispatch",
			Help: "Total count of dispatched interactions by outcome",
		},
		[]string{"kind", "handler", "outcome"},
	)

	DispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dispatch_duration_seconds",
			Help:    "Time spent executing a handler unit",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2, 3, 5},
		},
		[]string{"kind", "handler"},
	)

	// registry
	RegistrySize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "registry_active_handlers",
			Help: "Active handler units in the current registry snapshot",
		},
		[]string{"registry"},
	)

	RegistrySkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "count_of_registry_skipped_units",
			Help: "Handler units skipped during discovery",
		},
		[]string{"registry", "reason"},
	)
)

package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	resolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filelink_resolutions_total",
			Help: "Public link requests by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	registrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filelink_registrations_total",
			Help: "Link registrations by result",
		},
		[]string{"result"},
	)
)

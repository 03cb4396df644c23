package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Refresh outcomes.
const (
	refreshSuccess  = "success"
	refreshInvalid  = "invalid"
	refreshNetwork  = "network_error"
	refreshReused   = "reused"
	refreshDecoding = "bad_response"
)

var (
	refreshTotal = promauto.NewCounterVec( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Name: "healthdash_session_refresh_total",
			Help: "Access token refreshes, differentiated by outcome.",
		},
		[]string{"result"},
	)

	expiredTotal = promauto.NewCounter( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Name: "healthdash_session_expired_total",
			Help: "Sessions cleared after a failed refresh following a 401.",
		},
	)
)

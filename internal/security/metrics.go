package security

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricEclipseAlerts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "security_eclipse_alerts_total",
		Help: "Times the block-staleness monitor judged the node eclipsed.",
	})
	metricCommitmentAlerts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "security_stale_commitment_alerts_total",
		Help: "Times the commitment-staleness monitor raised a warning.",
	})
	metricStorageFaults = promauto.NewCounter(prometheus.CounterOpts{
		Name: "security_storage_faults_total",
		Help: "Header or block lookups that failed during a monitor check.",
	})
	metricTipRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "security_tip_requests_total",
		Help: "Corrective tip requests broadcast to peers.",
	})
)

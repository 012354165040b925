package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Notification-delivery Prometheus metrics. Defined in a standalone package
// to avoid import cycles between the engine and HTTP packages.

var (
	NotifyEmailsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notify_emails_total",
		Help: "Resultados de envío de notificaciones por kind",
	}, []string{"kind", "result"})

	NotifySendDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "notify_send_duration_ms",
		Help:    "Latencia del transporte de email en milisegundos",
		Buckets: prometheus.ExponentialBuckets(5, 2, 12),
	})

	NotifyBatchRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notify_batch_runs_total",
		Help: "Pasadas batch ejecutadas por tipo de pasada",
	}, []string{"pass"})
)

// RegisterNotify registers the notification metrics on the given registry
// (or default if nil).
func RegisterNotify(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{NotifyEmailsTotal, NotifySendDuration, NotifyBatchRuns} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}

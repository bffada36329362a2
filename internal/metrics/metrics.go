package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Cycles              *prometheus.CounterVec
	Targets             *prometheus.CounterVec
	AddressesPublished  prometheus.Counter
	AddressSkips        *prometheus.CounterVec
	Submissions         *prometheus.CounterVec
	ZoomWidenings       prometheus.Counter
	ConsecutiveFailures prometheus.Gauge
	ActiveTasks         prometheus.Gauge
	RequestSeconds      *prometheus.HistogramVec
	APIErrors           *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Cycles: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "iris_sweep_cycles_total",
			Help: "Total number of harvest cycles by outcome.",
		}, []string{"outcome"}),
		Targets: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "iris_targets_total",
			Help: "Total number of directory targets seen, split by eligibility.",
		}, []string{"result"}),
		AddressesPublished: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "iris_addresses_published_total",
			Help: "Total number of addresses handed to the submission driver.",
		}),
		AddressSkips: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "iris_address_skips_total",
			Help: "Total number of eligible targets skipped during harvest, by reason.",
		}, []string{"reason"}),
		Submissions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "iris_submissions_total",
			Help: "Total number of submission attempts by status.",
		}, []string{"status"}),
		ZoomWidenings: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "iris_zoom_widenings_total",
			Help: "Total number of times an exhausted view was widened by one zoom level.",
		}),
		ConsecutiveFailures: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "iris_consecutive_failed_cycles",
			Help: "Current number of consecutive cycles without a submission.",
		}),
		ActiveTasks: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "iris_pipeline_active_tasks",
			Help: "Current number of running harvest and submission tasks.",
		}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "iris_directory_request_duration_seconds",
			Help:    "Duration of requests to the directory service.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		APIErrors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "iris_directory_api_errors_total",
			Help: "Total number of errors received from the directory service.",
		}, []string{"endpoint"}),
	}
}

// Package metrics exposes the Prometheus collectors for the runtime
// configuration pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Runtime object metrics
	ObjectsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vigil_runtime_objects_created_total",
			Help: "Total number of runtime objects created by type",
		},
		[]string{"type"},
	)

	ObjectsDeletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vigil_runtime_objects_deleted_total",
			Help: "Total number of runtime objects deleted by type",
		},
		[]string{"type"},
	)

	CreateFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vigil_runtime_create_failures_total",
			Help: "Total number of failed object creations by reason",
		},
		[]string{"reason"},
	)

	DeleteFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vigil_runtime_delete_failures_total",
			Help: "Total number of failed object deletions by reason",
		},
		[]string{"reason"},
	)

	// Package store metrics
	PackageRepairsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vigil_package_repairs_total",
			Help: "Total number of config package repairs",
		},
	)

	// Work queue metrics
	WorkQueueTasksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vigil_workqueue_tasks_total",
			Help: "Total number of tasks submitted by queue",
		},
		[]string{"queue"},
	)

	WorkQueueExceptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vigil_workqueue_exceptions_total",
			Help: "Total number of failed tasks by queue",
		},
		[]string{"queue"},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(ObjectsCreatedTotal)
	prometheus.MustRegister(ObjectsDeletedTotal)
	prometheus.MustRegister(CreateFailuresTotal)
	prometheus.MustRegister(DeleteFailuresTotal)
	prometheus.MustRegister(PackageRepairsTotal)
	prometheus.MustRegister(WorkQueueTasksTotal)
	prometheus.MustRegister(WorkQueueExceptionsTotal)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

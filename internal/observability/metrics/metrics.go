// Package metrics exposes Prometheus instruments for the admin API and the
// account lifecycle operations behind it.
package metrics

import (
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gosuda/adminpanel/internal/domain"
)

// Action results.
const (
	ResultOK        = "ok"
	ResultInvalid   = "invalid"
	ResultNotFound  = "not_found"
	ResultDuplicate = "duplicate"
	ResultError     = "error"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adminpanel_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "adminpanel_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	adminActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adminpanel_admin_actions_total",
		Help: "Administrator mutations by action and result",
	}, []string{"action", "result"})

	idempotencyReplays = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adminpanel_idempotency_replays_total",
		Help: "Requests rejected because their idempotency key was already used",
	}, []string{"operation"})

	auditWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adminpanel_audit_write_failures_total",
		Help: "Audit entries that could not be persisted",
	})

	purgeRecordsDeleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adminpanel_purge_records_deleted_total",
		Help: "Records removed by user purges, per partition",
	}, []string{"partition"})

	purgePartitionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adminpanel_purge_partition_failures_total",
		Help: "Partitions whose purge failed",
	}, []string{"partition"})

	purgeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "adminpanel_purge_duration_seconds",
		Help:    "Duration of whole user purges",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	}, []string{"result"})
)

// ObserveHTTPRequest records an HTTP request metric. route is the matched
// route pattern, not the raw path.
func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// ObserveAdminAction counts one mutation outcome.
func ObserveAdminAction(action string, err error) {
	adminActions.WithLabelValues(action, Result(err)).Inc()
}

// Result classifies an operation error into a metric label.
func Result(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, domain.ErrValidation):
		return ResultInvalid
	case errors.Is(err, domain.ErrNotFound):
		return ResultNotFound
	case errors.Is(err, domain.ErrConflict):
		return ResultDuplicate
	default:
		return ResultError
	}
}

// ObserveIdempotencyReplay counts a rejected duplicate. The uid suffix of the
// namespace is dropped to keep label cardinality bounded.
func ObserveIdempotencyReplay(namespace string) {
	op, _, _ := strings.Cut(namespace, ":")
	idempotencyReplays.WithLabelValues(op).Inc()
}

func ObserveAuditFailure() {
	auditWriteFailures.Inc()
}

// ObservePurgePartition records the outcome of one partition purge.
func ObservePurgePartition(partition string, deleted int, failed bool) {
	if deleted > 0 {
		purgeRecordsDeleted.WithLabelValues(partition).Add(float64(deleted))
	}
	if failed {
		purgePartitionFailures.WithLabelValues(partition).Inc()
	}
}

func ObservePurge(result string, duration time.Duration) {
	purgeDuration.WithLabelValues(result).Observe(duration.Seconds())
}

// Package metrics defines and registers all custom Prometheus metrics for the
// TaskFlow API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics register with the default Prometheus registry at import time; the
// router exposes them through the echoprometheus /metrics handler.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taskflow"

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// AuthzDenialsTotal counts authorization denials.
// Labels:
//   - action: the permission that was checked (e.g. "editTask")
//   - reason: "role_insufficient" or "not_resource_owner"
var AuthzDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authz_denials_total",
		Help:      "Total number of denied authorization checks, by action and reason.",
	},
	[]string{"action", "reason"},
)

// TaskTransitionsTotal counts applied task status transitions.
// Labels:
//   - from: the status before the transition
//   - to: the status after the transition
var TaskTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_transitions_total",
		Help:      "Total number of committed task status transitions, by edge.",
	},
	[]string{"from", "to"},
)

// NotificationsDispatchedTotal counts notifications handed to the dispatcher.
// Label:
//   - kind: the notification kind (e.g. "task_assigned")
var NotificationsDispatchedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_dispatched_total",
		Help:      "Total number of notifications enqueued for delivery, by kind.",
	},
	[]string{"kind"},
)

// ReportDuration measures how long an aggregation query takes end-to-end.
// Label:
//   - report: "summary", "rollups", "departments", or "progress"
var ReportDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "report_duration_seconds",
		Help:      "Duration of report aggregation from request to response.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"report"},
)

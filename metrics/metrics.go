// Package metrics defines the Prometheus metrics exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "salonpro"

// HTTPRequestDuration measures request latency by method, route and status code.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "status"},
)

// AppointmentTransitionsTotal counts appointment status changes.
// Label to: the status entered (checked_in, billed, paid, cancelled).
var AppointmentTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "appointment_transitions_total",
		Help:      "Total number of appointment status transitions.",
	},
	[]string{"to"},
)

// WorkflowConflictsTotal counts workflow requests rejected with a conflict.
// Label reason: stylist_busy, invalid_transition, insufficient_stock, ...
var WorkflowConflictsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "workflow_conflicts_total",
		Help:      "Total number of workflow requests rejected because of state conflicts.",
	},
	[]string{"reason"},
)

// LoyaltyPointsTotal counts loyalty points moved, by ledger entry type.
var LoyaltyPointsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "loyalty_points_total",
		Help:      "Loyalty points earned, redeemed, refunded or adjusted.",
	},
	[]string{"type"},
)

// RemindersSentTotal counts reminder attempts by type, channel and result.
var RemindersSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reminders_sent_total",
		Help:      "Reminder messages attempted.",
	},
	[]string{"type", "channel", "status"},
)

// RevenueTotal accumulates paid invoice totals.
var RevenueTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "revenue_total",
		Help:      "Sum of paid invoice totals.",
	},
)

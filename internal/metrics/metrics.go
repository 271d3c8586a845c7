package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Scans = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nursery",
		Name:      "scans_total",
		Help:      "QR scans resolved, by subject and outcome.",
	}, []string{"subject", "outcome"})

	InvoicesPaid = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nursery",
		Name:      "invoices_paid_total",
		Help:      "Invoices marked paid; each one creates a successor invoice.",
	})

	InvoicesIssued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nursery",
		Name:      "invoices_successor_issued_total",
		Help:      "Successor invoices created by mark-paid.",
	})

	InvoicesPromoted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nursery",
		Name:      "invoices_overdue_promoted_total",
		Help:      "Unpaid invoices promoted to overdue on load.",
	})

	AccountsProvisioned = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nursery",
		Name:      "accounts_provisioned_total",
		Help:      "Account provisioning attempts, by role and result.",
	}, []string{"role", "result"})

	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nursery",
		Name:      "push_notifications_total",
		Help:      "Push notifications sent, by result.",
	}, []string{"result"})
)

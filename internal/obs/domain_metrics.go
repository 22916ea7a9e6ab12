package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// InvoicesCreatedTotal counts invoices opened at the till.
	InvoicesCreatedTotal prometheus.Counter
	// InvoicesCompletedTotal counts completed invoices by payment method.
	InvoicesCompletedTotal *prometheus.CounterVec
	// InvoiceRevenueTotal accumulates completed invoice totals in minor units.
	InvoiceRevenueTotal prometheus.Counter
	// InvoiceMutationConflicts counts lost optimistic-concurrency races.
	InvoiceMutationConflicts prometheus.Counter
	// ReportRequestsTotal counts daily report computations.
	ReportRequestsTotal prometheus.Counter
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		InvoicesCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoices_created_total",
			Help:      "Number of invoices opened.",
		})
		InvoicesCompletedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoices_completed_total",
			Help:      "Number of invoices completed, by payment method.",
		}, []string{"payment_method"})
		InvoiceRevenueTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_revenue_minor_units_total",
			Help:      "Sum of completed invoice totals in minor currency units.",
		})
		InvoiceMutationConflicts = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_mutation_conflicts_total",
			Help:      "Number of invoice mutations rejected by the version check.",
		})
		ReportRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "daily_report_requests_total",
			Help:      "Number of daily report computations served.",
		})

		mustRegisterCollector(reg, InvoicesCreatedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				InvoicesCreatedTotal = v
			}
		})
		mustRegisterCollector(reg, InvoicesCompletedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				InvoicesCompletedTotal = v
			}
		})
		mustRegisterCollector(reg, InvoiceRevenueTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				InvoiceRevenueTotal = v
			}
		})
		mustRegisterCollector(reg, InvoiceMutationConflicts, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				InvoiceMutationConflicts = v
			}
		})
		mustRegisterCollector(reg, ReportRequestsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				ReportRequestsTotal = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, c prometheus.Collector, replace func(prometheus.Collector)) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			replace(are.ExistingCollector)
			return
		}
		panic(fmt.Errorf("register collector: %w", err))
	}
}

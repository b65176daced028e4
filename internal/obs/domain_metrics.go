package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// TaxonomyQueriesTotal counts taxonomy listing and lookup outcomes per level.
	TaxonomyQueriesTotal *prometheus.CounterVec
	// TaxonomyCacheTotal counts taxonomy cache hits and misses per level.
	TaxonomyCacheTotal *prometheus.CounterVec
	// TaxComputationsTotal counts tax computations by filer status and outcome.
	TaxComputationsTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain collectors. Calling it
// more than once is a no-op.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		TaxonomyQueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "taxonomy_queries_total",
			Help:      "Count of taxonomy queries by level and outcome.",
		}, []string{"level", "result"})
		TaxonomyCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "taxonomy_cache_total",
			Help:      "Count of taxonomy cache lookups by level and outcome.",
		}, []string{"level", "result"})
		TaxComputationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tax_computations_total",
			Help:      "Count of tax computations by filer status and outcome.",
		}, []string{"filer_status", "result"})

		TaxonomyQueriesTotal = register(reg, TaxonomyQueriesTotal)
		TaxonomyCacheTotal = register(reg, TaxonomyCacheTotal)
		TaxComputationsTotal = register(reg, TaxComputationsTotal)
	})
}

// ObserveTaxonomyQuery increments the taxonomy query counter when registered.
func ObserveTaxonomyQuery(level, result string) {
	if TaxonomyQueriesTotal != nil {
		TaxonomyQueriesTotal.WithLabelValues(level, result).Inc()
	}
}

// ObserveTaxonomyCache increments the taxonomy cache counter when registered.
func ObserveTaxonomyCache(level string, hit bool) {
	if TaxonomyCacheTotal == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	TaxonomyCacheTotal.WithLabelValues(level, result).Inc()
}

// ObserveTaxComputation increments the computation counter when registered.
func ObserveTaxComputation(filerStatus, result string) {
	if TaxComputationsTotal != nil {
		TaxComputationsTotal.WithLabelValues(filerStatus, result).Inc()
	}
}

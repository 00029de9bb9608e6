// SPDX-License-Identifier: MIT

// Package metrics provides Prometheus metrics for the origin admission
// and RAG subsystems. No high-cardinality labels (no origin values,
// no user or request IDs).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CORSDecisionTotal counts origin admission decisions, by matched rule
	// and outcome.
	CORSDecisionTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paibackend_cors_decision_total",
		Help: "Total number of origin admission decisions, by rule and outcome.",
	}, []string{"rule", "outcome"})

	// PreflightFallbackTotal counts preflight responses that fell back to
	// the default frontend origin because the request origin was denied.
	PreflightFallbackTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "paibackend_cors_preflight_fallback_total",
		Help: "Total number of preflight responses using the default origin fallback.",
	})

	// RAGQueryTotal counts RAG chat queries by outcome.
	RAGQueryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paibackend_rag_query_total",
		Help: "Total number of RAG chat queries, by outcome.",
	}, []string{"outcome"})

	// RAGQueryDuration observes end-to-end RAG query latency.
	RAGQueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "paibackend_rag_query_duration_seconds",
		Help:    "End-to-end RAG query latency in seconds.",
		Buckets: prometheus.DefBuckets,
	})

	// ContentCacheTotal counts personalized-content cache lookups by result.
	ContentCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paibackend_content_cache_total",
		Help: "Total number of personalized content cache lookups, by result.",
	}, []string{"result"})
)

// RecordCORSDecision increments the admission decision counter.
func RecordCORSDecision(rule string, allowed bool) {
	outcome := "denied"
	if allowed {
		outcome = "allowed"
	}
	CORSDecisionTotal.WithLabelValues(rule, outcome).Inc()
}

// RecordPreflightFallback increments the preflight fallback counter.
func RecordPreflightFallback() {
	PreflightFallbackTotal.Inc()
}

// RecordRAGQuery increments the RAG query counter.
func RecordRAGQuery(outcome string) {
	RAGQueryTotal.WithLabelValues(outcome).Inc()
}

// RecordContentCache increments the content cache counter.
// result: "hit" or "miss"
func RecordContentCache(result string) {
	ContentCacheTotal.WithLabelValues(result).Inc()
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EnhancementRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_enhancement_runs_total",
			Help: "Content enhancement analyses by final status",
		},
		[]string{"status"},
	)

	CrawlRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_crawl_requests_total",
			Help: "Deep content crawl attempts by outcome",
		},
		[]string{"outcome"},
	)

	LLMCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_llm_calls_total",
			Help: "Language model call attempts by model and outcome",
		},
		[]string{"model", "outcome"},
	)

	NodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "research_node_duration_seconds",
			Help:    "Duration of workflow node executions in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
		},
		[]string{"node"},
	)
)

// Crawl outcomes.
const (
	CrawlSuccess = "success"
	CrawlFailure = "failure"
	CrawlError   = "error"
	CrawlCached  = "cached"
)

// Package metrics holds the process Prometheus registry and the pipeline collectors
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "relay"

var registry = prometheus.NewRegistry()

var (
	// Sentinels counts link sentinels by outcome (fetched, failed, empty, rejected, malformed)
	Sentinels = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "linkwatch",
		Name:      "sentinels_total",
		Help:      "Link sentinel files consumed, by outcome.",
	}, []string{"outcome"})

	// SentinelsWritten counts sentinels written by the link sink, by source tag
	SentinelsWritten = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "linksink",
		Name:      "written_total",
		Help:      "Link sentinel files written, by source.",
	}, []string{"source"})

	// FetchFiles counts per-file fetch decisions (downloaded, fallback, skipped_ext, resumed, failed)
	FetchFiles = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "fetcher",
		Name:      "files_total",
		Help:      "Remote post files handled, by result.",
	}, []string{"result"})

	// BytesDownloaded counts bytes written to staging by any producer
	BytesDownloaded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "downloaded_bytes_total",
		Help:      "Bytes streamed into staging directories, by producer.",
	}, []string{"producer"})

	// Published counts staging jobs renamed into the outgoing root
	Published = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_published_total",
		Help:      "Staging jobs atomically published to outgoing, by producer.",
	}, []string{"producer"})

	// HarvestPosts counts new posts discovered by the harvester
	HarvestPosts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "harvester",
		Name:      "posts_total",
		Help:      "New posts discovered across tracked sources.",
	})

	// HarvestSweeps counts completed harvester sweeps
	HarvestSweeps = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "harvester",
		Name:      "sweeps_total",
		Help:      "Completed sweeps over all tracked sources.",
	})

	// BatchItems observes how many attachments each flushed batch carried
	BatchItems = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "aggregator",
		Name:      "batch_items",
		Help:      "Attachments per flushed batch.",
		Buckets:   []float64{1, 2, 3, 5, 10, 20, 50},
	})

	// Deliveries counts outgoing folders by delivery result (sent, failed, skipped)
	Deliveries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "chunker",
		Name:      "folders_total",
		Help:      "Outgoing folders processed, by result.",
	}, []string{"result"})

	// ChunksSent counts messages handed to the delivery collaborator
	ChunksSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "chunker",
		Name:      "messages_total",
		Help:      "Messages handed to the delivery collaborator, by kind.",
	}, []string{"kind"})

	// OpsRequests times ops API requests by route pattern and status
	OpsRequests = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "ops",
		Name:      "request_seconds",
		Help:      "Ops API request latency, by route pattern and status.",
		Buckets:   []float64{.005, .025, .1, .5, 2, 10},
	}, []string{"route", "status"})
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		Sentinels,
		SentinelsWritten,
		FetchFiles,
		BytesDownloaded,
		Published,
		HarvestPosts,
		HarvestSweeps,
		BatchItems,
		Deliveries,
		ChunksSent,
		OpsRequests,
	)
}

// Registry exposes the process registry for custom collectors
func Registry() *prometheus.Registry { return registry }

// Handler serves the registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

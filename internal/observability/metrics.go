package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/almondvoxel/voxelcore/internal/logging"
)

// Metrics holds the Prometheus collectors the region manager, mesher,
// navigator, and raytracer report through. A single instance is meant
// to be shared process-wide; construct it once with NewMetrics and pass
// it to whichever subsystems need to record against it.
type Metrics struct {
	Resident        prometheus.Gauge
	Evictions       prometheus.Counter
	TickDuration    prometheus.Histogram
	MeshBuildTime   *prometheus.HistogramVec
	NavBuildTime    prometheus.Histogram
	SVOBuildTime    prometheus.Histogram
}

// NewMetrics builds and registers the collector set against the default
// Prometheus registry. Calling it more than once panics, matching
// prometheus.MustRegister's own behavior — callers own the lifetime.
func NewMetrics() *Metrics {
	m := &Metrics{
		Resident: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxelcore",
			Name:      "region_resident_chunks",
			Help:      "Number of chunks currently resident in the region manager.",
		}),
		Evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxelcore",
			Name:      "region_evictions_total",
			Help:      "Total chunks evicted from the resident set.",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "voxelcore",
			Name:      "region_tick_duration_seconds",
			Help:      "Duration of a region manager tick call.",
			Buckets:   prometheus.DefBuckets,
		}),
		MeshBuildTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "voxelcore",
			Name:      "mesh_build_duration_seconds",
			Help:      "Duration of a chunk mesh build, labeled by mesher kind.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mesher"}),
		NavBuildTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "voxelcore",
			Name:      "navigation_build_duration_seconds",
			Help:      "Duration of a navigation cost-field rebuild.",
			Buckets:   prometheus.DefBuckets,
		}),
		SVOBuildTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "voxelcore",
			Name:      "svo_build_duration_seconds",
			Help:      "Duration of a region's sparse voxel octree and clipmap rebuild.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	prometheus.MustRegister(m.Resident, m.Evictions, m.TickDuration, m.MeshBuildTime, m.NavBuildTime, m.SVOBuildTime)
	return m
}

// ServeHTTP starts a /metrics endpoint on addr in its own goroutine. It
// does not block and does not return an error channel; failures are
// logged, matching how the demo server treats other background loops.
func ServeHTTP(addr string) {
	go func() {
		log := logging.ForComponent("observability")
		log.Info("prometheus /metrics available at %s", addr)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error("prometheus http server exited: %v", err)
		}
	}()
}

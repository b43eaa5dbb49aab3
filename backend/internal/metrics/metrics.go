// Package metrics holds the Prometheus collectors of the upload pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "filemsg"

var (
	ThumbnailDerivations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "thumbnail_derivations_total",
			Help:      "Thumbnail derivations by outcome (none, stored, failed)",
		},
		[]string{"outcome"},
	)

	PostProcessingTasks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "post_processing_tasks_total",
			Help:      "Post-processing tasks by result (ok, error, panic, dropped)",
		},
		[]string{"result"},
	)

	PostProcessingQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "post_processing_queue_depth",
			Help:      "Tasks waiting for a post-processing worker",
		},
	)

	SendFileDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "send_file_duration_seconds",
			Help:      "Time to compose and send a file message",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"result"},
	)

	MediaGCDeletedFiles = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "media_gc_deleted_files_total",
			Help:      "Orphaned media files removed by the garbage collector",
		},
	)
)

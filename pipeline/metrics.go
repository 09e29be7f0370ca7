/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transcript_evaluation_runs_total",
			Help: "Total number of evaluation runs by status",
		},
		[]string{"status", "rubric_version"},
	)

	stageFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transcript_evaluation_stage_failures_total",
			Help: "Total number of failed runs by the state they failed in",
		},
		[]string{"state"},
	)

	degradedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transcript_evaluation_degraded_total",
			Help: "Total number of runs whose judge output held no JSON object",
		},
		[]string{"rubric_version"},
	)

	unscoredCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transcript_evaluation_unscored_criteria_total",
			Help: "Total number of criteria substituted because the judge output was missing or invalid",
		},
		[]string{"rubric_version"},
	)

	percentageHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "transcript_evaluation_percentage",
			Help:    "Overall percentage score of scored runs",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
		[]string{"rubric_version"},
	)

	durationHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "transcript_evaluation_duration_seconds",
			Help:    "Duration of evaluation runs",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
		[]string{"status"},
	)
)

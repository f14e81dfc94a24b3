// Package-level Prometheus metrics for workflow monitoring.

package workflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransitionsTotal counts committed phase transitions.
	// Labels: from, to
	TransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "deployd",
			Subsystem: "workflow",
			Name:      "transitions_total",
			Help:      "Total number of committed phase transitions",
		},
		[]string{"from", "to"},
	)

	// SuspensionsTotal counts suspensions awaiting user input.
	SuspensionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "deployd",
			Subsystem: "workflow",
			Name:      "suspensions_total",
			Help:      "Total number of workflow suspensions awaiting user responses",
		},
	)

	// OutcomesTotal counts terminal workflow outcomes.
	// Labels: outcome (completed, failed, rolled_back)
	OutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "deployd",
			Subsystem: "workflow",
			Name:      "outcomes_total",
			Help:      "Total number of terminal workflow outcomes",
		},
		[]string{"outcome"},
	)

	// PatternWritesTotal counts pattern store write-backs.
	// Labels: outcome (success, failure)
	PatternWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "deployd",
			Subsystem: "workflow",
			Name:      "pattern_writes_total",
			Help:      "Total number of outcome records written to the pattern store",
		},
		[]string{"outcome"},
	)

	// CollaboratorFailuresTotal counts external collaborator failures.
	// Labels: collaborator (discovery, provider, validator)
	CollaboratorFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "deployd",
			Subsystem: "workflow",
			Name:      "collaborator_failures_total",
			Help:      "Total number of external collaborator call failures",
		},
		[]string{"collaborator"},
	)
)

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RoomsCreated counts successfully created rooms.
	RoomsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "canchat_rooms_created_total",
		Help: "Total chat rooms created",
	})

	// RoomsExpired counts rooms deleted by the expiry sweep or lazy expiry.
	RoomsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "canchat_rooms_expired_total",
		Help: "Total chat rooms deleted due to inactivity",
	})

	// RoomsEnded counts rooms explicitly ended by their creator.
	RoomsEnded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "canchat_rooms_ended_total",
		Help: "Total chat rooms ended by their creator",
	})

	// MessagesSent counts messages appended to rooms.
	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "canchat_messages_sent_total",
		Help: "Total chat messages sent",
	})

	// SessionsExpired counts session records removed by the expiry sweep.
	SessionsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "canchat_sessions_expired_total",
		Help: "Total session records removed due to age",
	})

	// SweepRuns counts expiry sweep passes, cooperative and background.
	SweepRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "canchat_sweep_runs_total",
		Help: "Total expiry sweep passes",
	})

	// RoomsLive tracks the number of rooms currently stored.
	RoomsLive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "canchat_rooms_live",
		Help: "Number of rooms currently stored",
	})
)

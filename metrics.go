/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"net/http"

	"github.com/Seednode/cranium/games/charades"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is collected unconditionally and only exposed when --metrics is set.
type Metrics struct {
	registry *prometheus.Registry

	sessionsCreated   prometheus.Counter
	roundsEnded       prometheus.Counter
	wordsDrawn        *prometheus.CounterVec
	intents           *prometheus.CounterVec
	intentErrors      *prometheus.CounterVec
	connectionsActive prometheus.Gauge
}

func newMetrics(sessions *charades.Registry) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		sessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cranium_sessions_created_total",
			Help: "Game sessions created.",
		}),
		roundsEnded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cranium_rounds_ended_total",
			Help: "Rounds ended and committed to a guesser.",
		}),
		wordsDrawn: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cranium_words_drawn_total",
			Help: "Words drawn, by what caused the draw.",
		}, []string{"action"}),
		intents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cranium_intents_total",
			Help: "Messages received from clients, by type.",
		}, []string{"type"}),
		intentErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cranium_intent_errors_total",
			Help: "Client messages that were rejected, by reason.",
		}, []string{"kind"}),
		connectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cranium_connections_active",
			Help: "Open websocket connections.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.sessionsCreated,
		m.roundsEnded,
		m.wordsDrawn,
		m.intents,
		m.intentErrors,
		m.connectionsActive,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "cranium_sessions_active",
			Help: "Game sessions currently held in memory.",
		}, func() float64 {
			return float64(sessions.Len())
		}),
	)

	return m
}

func (m *Metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) intentReceived(intent string) {
	switch intent {
	case charades.IntentCreateGame, charades.IntentJoinGame, charades.IntentRename,
		charades.IntentStartRound, charades.IntentSelectCategory, charades.IntentStartTimer,
		charades.IntentCorrectGuess, charades.IntentSkipWord, charades.IntentEndRound:
	default:
		intent = "unknown"
	}

	m.intents.WithLabelValues(intent).Inc()
}

func (m *Metrics) intentRejected(kind string) {
	m.intentErrors.WithLabelValues(kind).Inc()
}

// errorKind buckets coordinator errors for cranium_intent_errors_total.
func errorKind(err error) string {
	switch {
	case errors.Is(err, charades.ErrSessionNotFound):
		return "not_found"
	case errors.Is(err, charades.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, charades.ErrStaleAction):
		return "stale"
	default:
		return "internal"
	}
}

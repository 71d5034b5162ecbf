package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type GMMetrics struct {
	tradesExecuted     *prometheus.CounterVec
	tradesRejected     *prometheus.CounterVec
	attestationsClosed prometheus.Counter
}

var (
	gmOnce     sync.Once
	gmRegistry *GMMetrics
)

func GM() *GMMetrics {
	gmOnce.Do(func() {
		gmRegistry = &GMMetrics{
			tradesExecuted: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "gm_trades_executed_total",
				Help: "Count of settled trades by side.",
			}, []string{"side"}),
			tradesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "gm_trades_rejected_total",
				Help: "Count of rejected trades by flow and reason.",
			}, []string{"flow", "reason"}),
			attestationsClosed: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "gm_attestations_closed_total",
				Help: "Count of reclaimed attestation records.",
			}),
		}
		prometheus.MustRegister(
			gmRegistry.tradesExecuted,
			gmRegistry.tradesRejected,
			gmRegistry.attestationsClosed,
		)
	})
	return gmRegistry
}

func (m *GMMetrics) ObserveTradeExecuted(side string) {
	if m == nil {
		return
	}
	if side == "" {
		side = "unknown"
	}
	m.tradesExecuted.WithLabelValues(side).Inc()
}

func (m *GMMetrics) ObserveTradeRejected(flow, reason string) {
	if m == nil {
		return
	}
	if flow == "" {
		flow = "unknown"
	}
	if reason == "" {
		reason = "unknown"
	}
	m.tradesRejected.WithLabelValues(flow, reason).Inc()
}

func (m *GMMetrics) ObserveAttestationClosed() {
	if m == nil {
		return
	}
	m.attestationsClosed.Inc()
}

// TradeExecuted records a settled trade on the shared registry.
func TradeExecuted(side string) {
	GM().ObserveTradeExecuted(side)
}

// TradeRejected records a rejected trade on the shared registry.
func TradeRejected(flow, reason string) {
	GM().ObserveTradeRejected(flow, reason)
}

// AttestationClosed records a reclaimed attestation on the shared registry.
func AttestationClosed() {
	GM().ObserveAttestationClosed()
}

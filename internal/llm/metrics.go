package llm

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var latencyBuckets = []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60}

// instrumented wraps a Provider with request counters and latency histograms.
type instrumented struct {
	Provider
	name     string
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// Instrument records every Chat and ChatStream call made through p under the
// given provider name. Collectors already registered on reg are reused.
func Instrument(p Provider, name string, reg prometheus.Registerer) Provider {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "surprise",
		Subsystem: "llm",
		Name:      "requests_total",
		Help:      "Count of LLM requests by provider, call and outcome",
	}, []string{"provider", "call", "outcome"})

	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "surprise",
		Subsystem: "llm",
		Name:      "request_duration_seconds",
		Help:      "Latency distribution of LLM requests",
		Buckets:   latencyBuckets,
	}, []string{"provider", "call"})

	if reg != nil {
		requests = registerCounter(reg, requests)
		latency = registerHistogram(reg, latency)
	}

	return &instrumented{Provider: p, name: name, requests: requests, latency: latency}
}

func registerCounter(reg prometheus.Registerer, c *prometheus.CounterVec) *prometheus.CounterVec {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
	}
	return c
}

func registerHistogram(reg prometheus.Registerer, h *prometheus.HistogramVec) *prometheus.HistogramVec {
	if err := reg.Register(h); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing
			}
		}
	}
	return h
}

func (i *instrumented) observe(call string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	i.requests.WithLabelValues(i.name, call, outcome).Inc()
	i.latency.WithLabelValues(i.name, call).Observe(time.Since(start).Seconds())
}

func (i *instrumented) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error) {
	start := time.Now()
	resp, err := i.Provider.Chat(ctx, messages, opts)
	i.observe("chat", start, err)
	return resp, err
}

func (i *instrumented) ChatStream(ctx context.Context, messages []Message, opts *ChatOptions) (<-chan StreamEvent, error) {
	start := time.Now()
	in, err := i.Provider.ChatStream(ctx, messages, opts)
	if err != nil {
		i.observe("stream", start, err)
		return nil, err
	}

	out := make(chan StreamEvent, 10)
	go func() {
		defer close(out)
		var streamErr error
		for ev := range in {
			if ev.Error != nil {
				streamErr = ev.Error
			}
			out <- ev
		}
		i.observe("stream", start, streamErr)
	}()
	return out, nil
}

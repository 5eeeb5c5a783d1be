package observability

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "orders"

// Prometheus implements Metrics on client_golang collectors.
type Prometheus struct {
	lookup     *prometheus.HistogramVec
	writeDur   prometheus.Histogram
	written    prometheus.Counter
	httpDur    *prometheus.HistogramVec
	kafkaDur   *prometheus.HistogramVec
	cacheEvent *prometheus.CounterVec
}

var msBuckets = []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000}

func NewPrometheus(registerer prometheus.Registerer) *Prometheus {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &Prometheus{
		lookup: register(registerer, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lookup_duration_ms",
			Help:      "Order list lookup latency by source and stage.",
			Buckets:   msBuckets,
		}, []string{"source", "stage"})),
		writeDur: register(registerer, prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "write_duration_ms",
			Help:      "Bulk write transaction latency.",
			Buckets:   msBuckets,
		})),
		written: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_written_total",
			Help:      "Orders committed through the bulk writer.",
		})),
		httpDur: register(registerer, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency.",
			Buckets:   msBuckets,
		}, []string{"method", "route", "status"})),
		kafkaDur: register(registerer, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_process_duration_ms",
			Help:      "Kafka message processing latency.",
			Buckets:   msBuckets,
		}, []string{"result"})),
		cacheEvent: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_events_total",
			Help:      "Cache lookups by outcome.",
		}, []string{"outcome"})),
	}
}

// register returns the already registered collector of the same name, so
// building Prometheus twice against one registry is harmless.
func register[C prometheus.Collector](registerer prometheus.Registerer, c C) C {
	if err := registerer.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(C)
			if !ok {
				panic(fmt.Sprintf("collector already registered with unexpected type %T", are.ExistingCollector))
			}
			return existing
		}
		panic(fmt.Sprintf("register collector: %v", err))
	}
	return c
}

func (p *Prometheus) ObserveLookup(source string, cacheMs, dbMs float64) {
	p.lookup.WithLabelValues(source, "cache").Observe(cacheMs)
	if dbMs > 0 {
		p.lookup.WithLabelValues(source, "db").Observe(dbMs)
	}
}

func (p *Prometheus) ObserveWrite(records int, dbWriteMs float64) {
	p.writeDur.Observe(dbWriteMs)
	p.written.Add(float64(records))
}

func (p *Prometheus) ObserveHTTP(method, route string, status int, durMs float64) {
	p.httpDur.WithLabelValues(method, route, strconv.Itoa(status)).Observe(durMs)
}

func (p *Prometheus) ObserveKafka(processMs float64, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	p.kafkaDur.WithLabelValues(result).Observe(processMs)
}

func (p *Prometheus) IncCacheHit()   { p.cacheEvent.WithLabelValues("hit").Inc() }
func (p *Prometheus) IncCacheMiss()  { p.cacheEvent.WithLabelValues("miss").Inc() }
func (p *Prometheus) IncCacheError() { p.cacheEvent.WithLabelValues("error").Inc() }

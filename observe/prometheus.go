// Package observe exports envelope conversions as Prometheus metrics.
//
// The counters show how much data still arrives in historical versions,
// which tells when a version can be dropped from a chain.
package observe

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"evolve-generator/envelope"
)

const namespace = "evolve"

// Migration results.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

var _ envelope.Observer = (*Prometheus)(nil)

// Prometheus counts decoded, encoded and migrated envelopes.
type Prometheus struct {
	decoded  *prometheus.CounterVec
	encoded  *prometheus.CounterVec
	migrated *prometheus.CounterVec
}

// NewPrometheus creates the counters and registers them on reg. Counters
// already registered by an earlier call are reused.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		decoded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "envelope",
				Name:      "decoded_total",
				Help:      "Envelopes decoded, by version.",
			},
			[]string{"domain", "version"},
		),
		encoded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "envelope",
				Name:      "encoded_total",
				Help:      "Envelopes encoded, by version.",
			},
			[]string{"domain", "version"},
		),
		migrated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "migration_total",
				Help:      "Migrations into the domain type, by source version and result.",
			},
			[]string{"domain", "from_version", "result"},
		),
	}

	var err error
	if p.decoded, err = register(reg, p.decoded); err != nil {
		return nil, err
	}

	if p.encoded, err = register(reg, p.encoded); err != nil {
		return nil, err
	}

	if p.migrated, err = register(reg, p.migrated); err != nil {
		return nil, err
	}

	return p, nil
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}

	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
			return existing, nil
		}
	}

	return nil, err
}

func (p *Prometheus) Decoded(domain string, version int) {
	p.decoded.WithLabelValues(domain, strconv.Itoa(version)).Inc()
}

func (p *Prometheus) Encoded(domain string, version int) {
	p.encoded.WithLabelValues(domain, strconv.Itoa(version)).Inc()
}

func (p *Prometheus) Migrated(domain string, from int, err error) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}

	p.migrated.WithLabelValues(domain, strconv.Itoa(from), result).Inc()
}

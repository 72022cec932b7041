package highload

import (
	"github.com/iov-one/hlwallet/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts what the wallet router does. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	accepted  prometheus.Counter
	rejected  *prometheus.CounterVec
	transfers prometheus.Counter
	cleanups  prometheus.Counter
	forgotten prometheus.Counter
	deposits  prometheus.Counter
}

// NewMetrics creates the wallet counters and registers them with given
// registerer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	const ns = "hlwallet"
	m := &Metrics{
		accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "batches_accepted_total",
			Help:      "Number of accepted batches.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "batches_rejected_total",
			Help:      "Number of rejected batches, by reason.",
		}, []string{"reason"}),
		transfers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "transfers_released_total",
			Help:      "Number of transfers released for execution.",
		}),
		cleanups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "cleanups_total",
			Help:      "Number of processed cleanup requests.",
		}),
		forgotten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "queries_forgotten_total",
			Help:      "Number of query ids removed from the ledger.",
		}),
		deposits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "deposits_total",
			Help:      "Number of internal messages accepted as plain deposits.",
		}),
	}
	collectors := []prometheus.Collector{
		m.accepted, m.rejected, m.transfers, m.cleanups, m.forgotten, m.deposits,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(errors.ErrDuplicate, err.Error())
		}
	}
	return m, nil
}

func (m *Metrics) batchAccepted(transfers int) {
	if m == nil {
		return
	}
	m.accepted.Inc()
	m.transfers.Add(float64(transfers))
}

func (m *Metrics) batchRejected(err error) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(rejectReason(err)).Inc()
}

func (m *Metrics) cleanedUp(forgotten int) {
	if m == nil {
		return
	}
	m.cleanups.Inc()
	m.forgotten.Add(float64(forgotten))
}

func (m *Metrics) deposited() {
	if m == nil {
		return
	}
	m.deposits.Inc()
}

// rejectReason returns a short label value for a rejection error.
func rejectReason(err error) string {
	switch {
	case ErrWalletMismatch.Is(err):
		return "wallet_mismatch"
	case ErrInvalidSignature.Is(err):
		return "invalid_signature"
	case ErrExpiredQuery.Is(err):
		return "expired"
	case ErrDuplicateQuery.Is(err):
		return "duplicate"
	case ErrMalformedBatch.Is(err):
		return "malformed"
	default:
		return "other"
	}
}

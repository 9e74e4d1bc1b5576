package utils

import (
	"strconv"
	"time"

	"github.com/iov-one/lockswap"
	"github.com/iov-one/lockswap/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "lockswap"

// Metrics is a decorator that counts processed transactions by message
// path, stage and result code and observes how long they took.
type Metrics struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ lockswap.Decorator = Metrics{}

// NewMetrics creates a Metrics decorator and registers its collectors
// with given registerer.
func NewMetrics(reg prometheus.Registerer) (Metrics, error) {
	m := Metrics{
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "tx_total",
			Help:      "Number of processed transactions.",
		}, []string{"stage", "path", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "tx_duration_seconds",
			Help:      "Time spent processing a transaction.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"stage", "path"}),
	}
	for _, c := range []prometheus.Collector{m.total, m.duration} {
		if err := reg.Register(c); err != nil {
			return m, errors.Wrap(errors.ErrHuman, err.Error())
		}
	}
	return m, nil
}

func (m Metrics) Check(ctx lockswap.Context, db lockswap.KVStore, tx lockswap.Tx, next lockswap.Checker) (*lockswap.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, db, tx)
	m.observe("check", tx, start, err)
	return res, err
}

func (m Metrics) Deliver(ctx lockswap.Context, db lockswap.KVStore, tx lockswap.Tx, next lockswap.Deliverer) (*lockswap.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, db, tx)
	m.observe("deliver", tx, start, err)
	return res, err
}

func (m Metrics) observe(stage string, tx lockswap.Tx, start time.Time, err error) {
	path := txPath(tx)
	code, _ := errors.ABCIInfo(err, false)
	m.total.WithLabelValues(stage, path, strconv.FormatUint(uint64(code), 10)).Inc()
	m.duration.WithLabelValues(stage, path).Observe(time.Since(start).Seconds())
}

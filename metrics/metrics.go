// Package metrics exports the counters of a finished backtest in the
// Prometheus text format, for node_exporter's textfile collector or any
// other scraper of batch jobs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rustyeddy/smatrader/backtest"
	"github.com/rustyeddy/smatrader/strategies"
)

const namespace = "smatrader"

type Recorder struct {
	reg *prometheus.Registry

	trades  *prometheus.CounterVec
	signals *prometheus.CounterVec
	bars    prometheus.Counter
	cash    prometheus.Gauge
	value   prometheus.Gauge
	open    *prometheus.GaugeVec
}

// New returns a recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		trades: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trades_total",
			Help:      "Executed trades by strategy and action.",
		}, []string{"strategy", "action"}),
		signals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signals_total",
			Help:      "Signals by strategy and what became of them.",
		}, []string{"strategy", "outcome"}),
		bars: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bars_total",
			Help:      "Master clock steps replayed.",
		}),
		cash: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "final_cash",
			Help:      "Cash at the end of the run.",
		}),
		value: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "final_portfolio_value",
			Help:      "Cash plus positions marked at the last close.",
		}),
		open: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "open_shares",
			Help:      "Shares still held at the end, by instrument and strategy.",
		}, []string{"instrument", "strategy"}),
	}
	r.reg.MustRegister(r.trades, r.signals, r.bars, r.cash, r.value, r.open)
	return r
}

// Observe adds a run's counts to the recorder.
func (r *Recorder) Observe(res backtest.Result) {
	for _, s := range res.Strategies {
		id := s.Strategy.String()
		r.trades.WithLabelValues(id, strategies.Buy.String()).Add(float64(s.Buys))
		r.trades.WithLabelValues(id, strategies.Sell.String()).Add(float64(s.Sells))

		r.signals.WithLabelValues(id, backtest.Executed.String()).Add(float64(s.Buys + s.Sells))
		r.signals.WithLabelValues(id, backtest.InsufficientCash.String()).Add(float64(s.InsufficientCash))
		r.signals.WithLabelValues(id, backtest.ZeroQuantity.String()).Add(float64(s.ZeroQuantity))
		r.signals.WithLabelValues(id, backtest.NoOpenPosition.String()).Add(float64(s.NoOpenPosition))
	}
	r.bars.Add(float64(res.Bars))
	r.cash.Set(res.FinalCash.InexactFloat64())
	r.value.Set(res.FinalValue.InexactFloat64())
	for _, e := range res.Open {
		r.open.WithLabelValues(e.Instrument, e.Strategy.String()).Set(float64(e.Shares))
	}
}

// WriteTextfile writes every metric to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}

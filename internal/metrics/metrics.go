// Package metrics exports protocol activity to Prometheus. It is fed only
// from committed event logs and never calls back into the components.
package metrics

import (
	"math/big"
	"net/http"
	"sync"

	"github.com/ethereum/go-ethereum/event"
	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/swell-network/swell-core/internal/events"
	"github.com/swell-network/swell-core/internal/log"
)

// Collector turns event logs into Prometheus series.
type Collector struct {
	registry *prometheus.Registry

	eventsTotal      *prometheus.CounterVec
	decodeErrors     prometheus.Counter
	paused           *prometheus.GaugeVec
	deposits         prometheus.Counter
	depositedTotal   prometheus.Gauge
	sharesMinted     prometheus.Counter
	pooledAsset      prometheus.Gauge
	exchangeRate     prometheus.Gauge
	whitelistMembers prometheus.Counter
	lastSeq          prometheus.Gauge

	sub  event.Subscription
	wg   sync.WaitGroup
	quit chan struct{}
}

// New creates a collector with its own registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "swell",
			Name:      "events_total",
			Help:      "Committed protocol events by name",
		}, []string{"event"}),
		decodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swell",
			Name:      "event_decode_errors_total",
			Help:      "Logs that could not be decoded",
		}),
		paused: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "swell",
			Subsystem: "acm",
			Name:      "paused",
			Help:      "Pause flag per category (1 = paused), as last announced",
		}, []string{"category"}),
		deposits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swell",
			Subsystem: "sweth",
			Name:      "deposits_total",
			Help:      "Accepted deposits",
		}),
		depositedTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "swell",
			Subsystem: "sweth",
			Name:      "eth_deposited",
			Help:      "Cumulative ETH deposited, in ether",
		}),
		sharesMinted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swell",
			Subsystem: "sweth",
			Name:      "minted_total",
			Help:      "swETH minted by deposits, in ether units",
		}),
		pooledAsset: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "swell",
			Subsystem: "sweth",
			Name:      "pooled_asset",
			Help:      "Total pooled asset after the last reprice, in ether",
		}),
		exchangeRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "swell",
			Subsystem: "sweth",
			Name:      "sweth_to_eth_rate",
			Help:      "ETH per swETH after the last reprice",
		}),
		whitelistMembers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swell",
			Subsystem: "whitelist",
			Name:      "added_total",
			Help:      "Addresses added to the whitelist",
		}),
		lastSeq: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "swell",
			Name:      "last_event_seq",
			Help:      "Sequence number of the last observed event",
		}),
		quit: make(chan struct{}),
	}
	c.registry.MustRegister(
		c.eventsTotal, c.decodeErrors, c.paused, c.deposits, c.depositedTotal,
		c.sharesMinted, c.pooledAsset, c.exchangeRate, c.whitelistMembers, c.lastSeq,
		collectors.NewGoCollector(),
	)
	for _, cat := range []string{"core", "bot", "operator", "withdrawals"} {
		c.paused.WithLabelValues(cat).Set(1)
	}
	return c
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Replay observes every log already committed to j, restoring gauges
// after a restart. Call before Start.
func (c *Collector) Replay(j *events.Journal) error {
	logs, err := j.Logs(events.Filter{})
	if err != nil {
		return err
	}
	for _, l := range logs {
		c.Observe(l)
	}
	return nil
}

// Start consumes every log published by j until Stop is called.
func (c *Collector) Start(j *events.Journal) {
	ch := make(chan events.Log, 256)
	c.sub = j.Subscribe(ch)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			select {
			case l := <-ch:
				c.Observe(l)
			case <-c.sub.Err():
				return
			case <-c.quit:
				return
			}
		}
	}()
}

// Stop ends the subscription started by Start.
func (c *Collector) Stop() {
	if c.sub == nil {
		return
	}
	close(c.quit)
	c.sub.Unsubscribe()
	c.wg.Wait()
}

// Observe records one log.
func (c *Collector) Observe(l events.Log) {
	c.lastSeq.Set(float64(l.Seq))
	ev, err := events.Decode(l)
	if err != nil {
		c.decodeErrors.Inc()
		log.Metrics.Warn().Err(err).Uint64("seq", l.Seq).Msg("Undecodable log")
		return
	}
	c.eventsTotal.WithLabelValues(ev.EventName()).Inc()

	switch e := ev.(type) {
	case events.CoreMethodsPause:
		c.paused.WithLabelValues("core").Set(boolGauge(e.NewPausedStatus))
	case events.BotMethodsPause:
		c.paused.WithLabelValues("bot").Set(boolGauge(e.NewPausedStatus))
	case events.OperatorMethodsPause:
		c.paused.WithLabelValues("operator").Set(boolGauge(e.NewPausedStatus))
	case events.WithdrawalsPause:
		c.paused.WithLabelValues("withdrawals").Set(boolGauge(e.NewPausedStatus))
	case events.ETHDepositReceived:
		c.deposits.Inc()
		c.depositedTotal.Set(ether(e.NewTotalETHDeposited))
		c.sharesMinted.Add(ether(e.SwETHMinted))
	case events.Reprice:
		c.pooledAsset.Set(ether(e.NewTotalPooledAsset))
		c.exchangeRate.Set(ether(e.NewSwETHToETHRate))
	case events.AddedToWhitelist:
		c.whitelistMembers.Inc()
	}
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// ether converts a wei amount to a float in ether.
func ether(v *uint256.Int) float64 {
	if v == nil {
		return 0
	}
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(v.ToBig()), big.NewFloat(1e18)).Float64()
	return f
}

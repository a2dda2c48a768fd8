// Package metrics exposes Prometheus metrics for commands, ledger mutations
// and weekly rollovers.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"rpbot/internal/domain/entities"
	"rpbot/internal/ports/output"
)

var _ output.Metrics = (*Collector)(nil)

// Collector owns its registry so tests can build as many as they need.
type Collector struct {
	registry     *prometheus.Registry
	commands     *prometheus.CounterVec
	mutations    *prometheus.CounterVec
	rollovers    *prometheus.CounterVec
	archivedRP   prometheus.Counter
	lastRollover prometheus.Gauge
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rpbot_commands_total",
			Help: "Slash commands handled, by command and outcome",
		}, []string{"command", "status"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rpbot_ledger_mutations_total",
			Help: "Successful ledger mutations, by kind",
		}, []string{"kind"}),
		rollovers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rpbot_rollovers_total",
			Help: "Completed weekly rollovers, by trigger",
		}, []string{"trigger"}),
		archivedRP: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rpbot_rp_archived_total",
			Help: "Weekly RP moved into historical RP",
		}),
		lastRollover: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rpbot_last_rollover_timestamp_seconds",
			Help: "Unix time of the last completed rollover",
		}),
	}
	c.registry.MustRegister(
		c.commands, c.mutations, c.rollovers, c.archivedRP, c.lastRollover,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Command counts one handled slash command. status is "ok" or "error".
func (c *Collector) Command(command, status string) {
	c.commands.WithLabelValues(command, status).Inc()
}

func (c *Collector) LedgerMutation(kind string) {
	c.mutations.WithLabelValues(kind).Inc()
}

func (c *Collector) RolloverCompleted(trigger string, rollovers []entities.Rollover) {
	c.rollovers.WithLabelValues(trigger).Inc()
	for _, r := range rollovers {
		c.archivedRP.Add(float64(r.ArchivedRP))
	}
	c.lastRollover.SetToCurrentTime()
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (c *Collector) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("📈 Metrics endpoint listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Package metrics exports store and task activity to Prometheus.
package metrics

import (
	"fmt"
	"time"

	"github.com/on-the-ground/effect_ive_go/effects"
	"github.com/on-the-ground/effect_ive_go/effects/store"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector implements effects.Observer. Every series is labelled with the
// Go type of the task or message.
type Collector struct {
	tasksEmitted     *prometheus.CounterVec
	tasksSettled     *prometheus.CounterVec
	tasksInFlight    prometheus.Gauge
	messagesProduced *prometheus.CounterVec
	runnerPanics     *prometheus.CounterVec
	dispatchPanics   *prometheus.CounterVec
	dispatches       *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
}

var _ effects.Observer = (*Collector)(nil)

// New creates the collector and registers its series with reg.
// A nil reg leaves the series unregistered.
func New(reg prometheus.Registerer, namespace string) *Collector {
	c := &Collector{
		tasksEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_emitted_total",
			Help:      "Tasks returned by reducers.",
		}, []string{"type"}),
		tasksSettled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_settled_total",
			Help:      "Tasks whose runner finished, panicked or was cancelled.",
		}, []string{"type"}),
		tasksInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tasks_in_flight",
			Help:      "Tasks emitted but not settled yet.",
		}),
		messagesProduced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_produced_total",
			Help:      "Messages yielded by task runners.",
		}, []string{"type"}),
		runnerPanics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runner_panics_total",
			Help:      "Task runs that panicked.",
		}, []string{"type"}),
		dispatchPanics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_panics_total",
			Help:      "Re-dispatched messages whose reducer panicked.",
		}, []string{"type"}),
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatches_total",
			Help:      "Messages reduced by the store.",
		}, []string{"type"}),
		dispatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent in the reducer per dispatch.",
		}, []string{"type"}),
	}
	if reg != nil {
		reg.MustRegister(
			c.tasksEmitted,
			c.tasksSettled,
			c.tasksInFlight,
			c.messagesProduced,
			c.runnerPanics,
			c.dispatchPanics,
			c.dispatches,
			c.dispatchDuration,
		)
	}
	return c
}

func (c *Collector) TaskEmitted(task any) {
	c.tasksEmitted.WithLabelValues(typeOf(task)).Inc()
	c.tasksInFlight.Inc()
}

func (c *Collector) TaskSettled(task any) {
	c.tasksSettled.WithLabelValues(typeOf(task)).Inc()
	c.tasksInFlight.Dec()
}

func (c *Collector) MessageProduced(msg any) {
	c.messagesProduced.WithLabelValues(typeOf(msg)).Inc()
}

func (c *Collector) RunnerPanicked(task any, _ any) {
	c.runnerPanics.WithLabelValues(typeOf(task)).Inc()
}

func (c *Collector) DispatchPanicked(msg any, _ any) {
	c.dispatchPanics.WithLabelValues(typeOf(msg)).Inc()
}

// Instrument counts and times every reducer run. A panicking run is not
// counted.
func Instrument[S, M any](c *Collector) store.Enhancer[S, M] {
	return func(next store.Creator[S, M]) store.Creator[S, M] {
		return func(r store.Reducer[S, M], initial S, enhancers ...store.Enhancer[S, M]) store.Store[S, M] {
			timed := func(state S, msg M) S {
				start := time.Now()
				nextState := r(state, msg)
				label := typeOf(msg)
				c.dispatches.WithLabelValues(label).Inc()
				c.dispatchDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
				return nextState
			}
			return next(timed, initial, enhancers...)
		}
	}
}

func typeOf(v any) string {
	return fmt.Sprintf("%T", v)
}

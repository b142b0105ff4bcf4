package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics are registered on a registry owned by the server
type metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	steps    *prometheus.CounterVec
	episodes *prometheus.CounterVec
	sessions prometheus.Gauge
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "graphenv_requests_total",
				Help: "Requests by route and status code",
			},
			[]string{"route", "status"},
		),
		steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "graphenv_steps_total",
				Help: "Successful environment steps by domain",
			},
			[]string{"domain"},
		),
		episodes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "graphenv_episodes_total",
				Help: "Episodes that reached a terminal state by domain",
			},
			[]string{"domain"},
		),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "graphenv_sessions",
			Help: "Open environment sessions",
		}),
	}
	m.registry.MustRegister(m.requests, m.steps, m.episodes, m.sessions)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *metrics) observeRequest(c *gin.Context) {
	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
}

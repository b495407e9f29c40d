package main

import (
	"net/http"
	"slices"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the site's prometheus collectors. Each Metrics owns its own
// registry so several sites can live in one process.
type Metrics struct {
	registry       *prometheus.Registry
	logins         *prometheus.CounterVec
	postsPublished *prometheus.CounterVec
	uploads        prometheus.Counter
	httpRequests   *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trashcrew_logins_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
		postsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trashcrew_posts_published_total",
			Help: "Posts published by section.",
		}, []string{"section"}),
		uploads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trashcrew_uploads_total",
			Help: "Images stored with a post.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trashcrew_http_requests_total",
			Help: "HTTP requests by method and status code.",
		}, []string{"method", "status"}),
	}

	m.registry.MustRegister(m.logins, m.postsPublished, m.uploads, m.httpRequests)
	return m
}

func (m *Metrics) RecordLogin(ok bool) {
	result := "failure"
	if ok {
		result = "success"
	}
	m.logins.WithLabelValues(result).Inc()
}

// RecordPost counts a published post. Sections outside the fixed list are
// counted as "other" to keep label cardinality bounded.
func (m *Metrics) RecordPost(section string, withImage bool) {
	label := "other"
	if slices.Contains(Sections, section) {
		label = section
	}
	m.postsPublished.WithLabelValues(label).Inc()
	if withImage {
		m.uploads.Inc()
	}
}

func (m *Metrics) RecordRequest(method string, status int) {
	m.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

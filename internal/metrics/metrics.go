// Package metrics регистрирует метрики Prometheus сервиса.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tasktracker"

// Результаты попыток входа.
const (
	LoginSuccess = "success"
	LoginFailed  = "failed"
	LoginBlocked = "blocked"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Количество обработанных HTTP-запросов.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Длительность обработки HTTP-запросов.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	storeRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "couchdb_requests_total",
		Help:      "Количество запросов к документной базе данных.",
	}, []string{"method", "status"})

	storeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "couchdb_request_duration_seconds",
		Help:      "Длительность запросов к документной базе данных.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Попытки входа по результату.",
	}, []string{"result"})
)

// ObserveHTTP учитывает обработанный HTTP-запрос.
func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveStore учитывает запрос к документной базе. status == 0 означает сетевую ошибку.
func ObserveStore(method string, status int, elapsed time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	storeRequests.WithLabelValues(method, label).Inc()
	storeDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// Login учитывает попытку входа.
func Login(result string) {
	loginAttempts.WithLabelValues(result).Inc()
}

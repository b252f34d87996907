package obs

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Общие HTTP-метрики
var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	readyGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ready",
		Help: "1 when the service passes its readiness probe.",
	})
)

// Доменные метрики
var (
	campaignsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "truefund_campaigns_created_total",
			Help: "Campaigns created, by cause.",
		},
		[]string{"cause"},
	)

	donationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "truefund_donations_total",
			Help: "Donations recorded, by cause and release state.",
		},
		[]string{"cause", "released"},
	)

	donatedAmount = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "truefund_donated_amount_total",
		Help: "Principal credited to campaigns, in rupees.",
	})

	tipAmount = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "truefund_tip_amount_total",
		Help: "Platform tips received, in rupees.",
	})

	codeCollisions = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "truefund_code_collisions_total",
		Help: "Share-code candidates rejected because they were already assigned.",
	})
)

var initOnce sync.Once

// Init registers every metric in the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			httpInFlight, httpRequestsTotal, httpRequestDuration, readyGauge,
			campaignsCreated, donationsTotal, donatedAmount, tipAmount, codeCollisions,
		)
	})
}

// Handler serves the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// SetReady mirrors the readiness probe into the ready gauge.
func SetReady(ok bool) {
	if ok {
		readyGauge.Set(1)
		return
	}
	readyGauge.Set(0)
}

// CampaignCreated counts a new campaign.
func CampaignCreated(cause string) {
	campaignsCreated.WithLabelValues(cause).Inc()
}

// DonationRecorded counts a donation and its amounts.
func DonationRecorded(cause string, released bool, amount, tip int64) {
	donationsTotal.WithLabelValues(cause, strconv.FormatBool(released)).Inc()
	donatedAmount.Add(float64(amount))
	if tip > 0 {
		tipAmount.Add(float64(tip))
	}
}

// CodeCollision counts a rejected share-code candidate.
func CodeCollision() {
	codeCollisions.Inc()
}

// Instrument records RPS, latency and in-flight requests per canonical route.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := CanonicalPath(r.URL.Path)
		method := r.Method

		httpInFlight.Inc()
		defer httpInFlight.Dec()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	})
}

// routeShapes lists the parameterised routes; ":" marks a path parameter.
var routeShapes = [][]string{
	{"codes", ":code"},
	{"campaigns", ":id"},
	{"campaigns", ":id", "donations"},
	{"admin", "ngo-verifications", ":id"},
	{"admin", "tickets", ":id"},
	{"admin", "campaigns", ":id"},
	{"admin", "campaigns", ":id", "release"},
	{"admin", "users", ":id"},
}

// reservedSegments are literal path segments that never stand in for a parameter.
var reservedSegments = map[string]struct{}{"my": {}, "stream": {}}

// CanonicalPath collapses identifiers so metric label cardinality stays bounded.
func CanonicalPath(raw string) string {
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[:i]
	}
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	segs := strings.Split(trimmed, "/")
	for _, shape := range routeShapes {
		if matchShape(shape, segs) {
			return "/" + strings.Join(shape, "/")
		}
	}
	return "/" + trimmed
}

func matchShape(shape, segs []string) bool {
	if len(shape) != len(segs) {
		return false
	}
	for i, s := range shape {
		if strings.HasPrefix(s, ":") {
			if _, reserved := reservedSegments[segs[i]]; reserved || segs[i] == "" {
				return false
			}
			continue
		}
		if s != segs[i] {
			return false
		}
	}
	return true
}

// statusWriter remembers the response code.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach Flush on the underlying writer.
func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	loginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Login attempts by result.",
		},
		[]string{"result"},
	)

	tokensIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_tokens_issued_total",
			Help: "Capability tokens issued by purpose.",
		},
		[]string{"purpose"},
	)

	tokenVerifyFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_token_verify_failures_total",
			Help: "Capability token verifications rejected.",
		},
	)

	accessDeniedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_access_denied_total",
			Help: "Role checks that failed, by required role.",
		},
		[]string{"role"},
	)

	reconcilesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tags_reconciles_total",
			Help: "Completed tag reconciliations.",
		},
	)

	tagsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tags_created_total",
			Help: "Tags created on first reference.",
		},
	)
)

// Init registers the core metrics with the default registry.
func Init() {
	prometheus.MustRegister(
		loginsTotal,
		tokensIssuedTotal,
		tokenVerifyFailuresTotal,
		accessDeniedTotal,
		reconcilesTotal,
		tagsCreatedTotal,
	)
}

// Handler exposes the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Login results.
const (
	LoginOK          = "ok"
	LoginRejected    = "rejected"
	LoginRateLimited = "rate_limited"
)

func Login(result string)        { loginsTotal.WithLabelValues(result).Inc() }
func TokenIssued(purpose string) { tokensIssuedTotal.WithLabelValues(purpose).Inc() }
func TokenVerifyFailed()         { tokenVerifyFailuresTotal.Inc() }
func AccessDenied(role string)   { accessDeniedTotal.WithLabelValues(role).Inc() }
func Reconcile()                 { reconcilesTotal.Inc() }
func TagCreated()                { tagsCreatedTotal.Inc() }

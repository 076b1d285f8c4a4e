package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	LinksIssued = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shortr_links_issued_total",
		Help: "Short links issued and stored.",
	})
	IssueFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shortr_link_issue_failures_total",
		Help: "Rejected link submissions by reason.",
	}, []string{"reason"})
	ClicksRecorded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shortr_clicks_recorded_total",
		Help: "Click events appended to links.",
	})
	GeoLookupFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shortr_geolocation_failures_total",
		Help: "Geolocation lookups that fell back to the unknown location.",
	})
	Redirects = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shortr_redirect_requests_total",
		Help: "Total redirect requests served.",
	})
	CacheHit = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shortr_cache_hit_total",
		Help: "Link cache hits.",
	}, []string{"driver"})
	CacheMiss = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shortr_cache_miss_total",
		Help: "Link cache misses.",
	}, []string{"driver"})
	RateLimited = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shortr_rate_limited_total",
		Help: "Requests rejected by the rate limiter.",
	}, []string{"limit"})
	LinksStored = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "shortr_links_stored",
		Help: "Links in the store at the last refresh.",
	})
	LinksExpired = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "shortr_links_expired",
		Help: "Stored links past their expiry at the last refresh.",
	})
	ClicksStored = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "shortr_clicks_stored",
		Help: "Click events in the store at the last refresh.",
	})
)

func init() {
	prometheus.MustRegister(
		LinksIssued, IssueFailures, ClicksRecorded, GeoLookupFailures,
		Redirects, CacheHit, CacheMiss, RateLimited,
		LinksStored, LinksExpired, ClicksStored,
	)
}

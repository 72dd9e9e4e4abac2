// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラーやサービス層から利用する。
type MetricsCollector interface {
	RecordSearchSuccess()
	RecordSearchFailure(reason string)
	RecordTripSaved()
	RecordTripDeleted()
	RecordCheckoutCreated()
	RecordCheckoutFailure()
	RecordLoginSuccess()
	RecordHTTPStatus(statusCode int)
	RecordSearchLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	searchSuccess   prometheus.Counter
	searchFail      *prometheus.CounterVec
	tripsSaved      prometheus.Counter
	tripsDeleted    prometheus.Counter
	checkoutCreated prometheus.Counter
	checkoutFail    prometheus.Counter
	loginSuccess    prometheus.Counter
	httpStatus      *prometheus.CounterVec
	searchLatency   prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		searchSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "limitless_flight_search_success_total",
			Help: "フライト検索成功の合計数",
		}),
		searchFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "limitless_flight_search_fail_total",
			Help: "フライト検索失敗の合計数（失敗理由別）",
		}, []string{"reason"}),
		tripsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "limitless_trips_saved_total",
			Help: "保存されたトリップの合計数",
		}),
		tripsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "limitless_trips_deleted_total",
			Help: "削除されたトリップの合計数",
		}),
		checkoutCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "limitless_checkout_sessions_total",
			Help: "作成された決済セッションの合計数",
		}),
		checkoutFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "limitless_checkout_fail_total",
			Help: "決済セッション作成失敗の合計数",
		}),
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "limitless_login_success_total",
			Help: "ログイン成功の合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "limitless_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		searchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "limitless_flight_search_latency_seconds",
			Help:    "フライト検索のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.searchSuccess,
		c.searchFail,
		c.tripsSaved,
		c.tripsDeleted,
		c.checkoutCreated,
		c.checkoutFail,
		c.loginSuccess,
		c.httpStatus,
		c.searchLatency,
	)

	return c
}

// RecordSearchSuccess はフライト検索成功を記録する。
func (c *Collector) RecordSearchSuccess() {
	c.searchSuccess.Inc()
}

// RecordSearchFailure はフライト検索失敗を記録する。
func (c *Collector) RecordSearchFailure(reason string) {
	c.searchFail.WithLabelValues(reason).Inc()
}

// RecordTripSaved はトリップ保存を記録する。
func (c *Collector) RecordTripSaved() {
	c.tripsSaved.Inc()
}

// RecordTripDeleted はトリップ削除を記録する。
func (c *Collector) RecordTripDeleted() {
	c.tripsDeleted.Inc()
}

// RecordCheckoutCreated は決済セッション作成を記録する。
func (c *Collector) RecordCheckoutCreated() {
	c.checkoutCreated.Inc()
}

// RecordCheckoutFailure は決済セッション作成失敗を記録する。
func (c *Collector) RecordCheckoutFailure() {
	c.checkoutFail.Inc()
}

// RecordLoginSuccess はログイン成功を記録する。
func (c *Collector) RecordLoginSuccess() {
	c.loginSuccess.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordSearchLatency はフライト検索のレイテンシを記録する。
func (c *Collector) RecordSearchLatency(duration time.Duration) {
	c.searchLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ログイン結果ラベル
const (
	LoginSuccess = "success"
	LoginFailure = "failure"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ミドルウェア、サービス層、ワーカーから利用する。
type MetricsCollector interface {
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
	RecordLogin(result string)
	RecordOrderCreated()
	RecordCartClearFailure()
	RecordCartItemsCleaned(count int64)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	logins            *prometheus.CounterVec
	ordersCreated     prometheus.Counter
	cartClearFailures prometheus.Counter
	cartItemsCleaned  prometheus.Counter
}

var _ MetricsCollector = (*Collector)(nil)

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shopfront_http_requests_total",
			Help: "HTTPリクエスト数（メソッド・ルート・ステータス別）",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shopfront_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shopfront_logins_total",
			Help: "OAuthログイン試行数（結果別）",
		}, []string{"result"}),
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shopfront_orders_created_total",
			Help: "作成された注文の合計数",
		}),
		cartClearFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shopfront_cart_clear_failures_total",
			Help: "注文作成後のカートクリア失敗数",
		}),
		cartItemsCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shopfront_cart_items_cleaned_total",
			Help: "クリーンアップで削除された匿名カート項目数",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.logins,
		c.ordersCreated,
		c.cartClearFailures,
		c.cartItemsCleaned,
	)

	return c
}

// RecordHTTPRequest はHTTPリクエストの件数と処理時間を記録する。
// routeにはchiのルートパターンを渡し、IDごとにラベルが増えないようにする。
func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordLogin はログイン結果を記録する。
func (c *Collector) RecordLogin(result string) {
	c.logins.WithLabelValues(result).Inc()
}

// RecordOrderCreated は注文作成を記録する。
func (c *Collector) RecordOrderCreated() {
	c.ordersCreated.Inc()
}

// RecordCartClearFailure はカートクリア失敗を記録する。
func (c *Collector) RecordCartClearFailure() {
	c.cartClearFailures.Inc()
}

// RecordCartItemsCleaned はクリーンアップで削除したカート項目数を記録する。
func (c *Collector) RecordCartItemsCleaned(count int64) {
	c.cartItemsCleaned.Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop は何も記録しないMetricsCollector。テストやメトリクス無効時に使う。
type Nop struct{}

func (Nop) RecordHTTPRequest(string, string, int, time.Duration) {}
func (Nop) RecordLogin(string)                                   {}
func (Nop) RecordOrderCreated()                                  {}
func (Nop) RecordCartClearFailure()                              {}
func (Nop) RecordCartItemsCleaned(int64)                         {}

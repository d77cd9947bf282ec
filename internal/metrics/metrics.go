// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
// auth.MetricsRecorderを満たし、認証イベントとHTTPレスポンスを計測する。
type Collector struct {
	loginAttempts     *prometheus.CounterVec
	signUps           prometheus.Counter
	sessionValidation *prometheus.CounterVec
	sessionsCleaned   prometheus.Counter
	httpStatus        *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sojourn_login_attempts_total",
			Help: "ログイン試行の合計数（結果別）",
		}, []string{"result"}),
		signUps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sojourn_signups_total",
			Help: "アカウント作成の合計数",
		}),
		sessionValidation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sojourn_session_validations_total",
			Help: "セッション検証の合計数（結果別: valid / renewed / expired / missing）",
		}, []string{"outcome"}),
		sessionsCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sojourn_sessions_cleaned_total",
			Help: "クリーンアップジョブが削除した期限切れセッションの合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sojourn_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.loginAttempts,
		c.signUps,
		c.sessionValidation,
		c.sessionsCleaned,
		c.httpStatus,
	)

	return c
}

// RecordLogin はログイン試行の結果を記録する。
func (c *Collector) RecordLogin(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	c.loginAttempts.WithLabelValues(result).Inc()
}

// RecordSignUp はアカウント作成を記録する。
func (c *Collector) RecordSignUp() {
	c.signUps.Inc()
}

// RecordSessionValidation はセッション検証の結果を記録する。
func (c *Collector) RecordSessionValidation(outcome string) {
	c.sessionValidation.WithLabelValues(outcome).Inc()
}

// RecordSessionsCleaned はクリーンアップジョブが削除したセッション数を記録する。
func (c *Collector) RecordSessionsCleaned(count int64) {
	c.sessionsCleaned.Add(float64(count))
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Package metrics 提供基于Prometheus的指标收集框架
//
// 指标类型：
// - Counter（计数器）：只增不减的累计值，如销售处理总数
// - Gauge（仪表盘）：可增可减的瞬时值，如正在处理的请求数
// - Histogram（直方图）：观测值的分布，自动计算分位数（P50、P90、P99）
//
// 命名规范：Counter以_total结尾，Histogram以单位结尾（_seconds），
// Gauge使用现在时态。标签只用有限基数的维度（method、status），
// 不要用product_id这类高基数字段做标签。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// initialized 标记是否已初始化（防止重复注册）
	initialized bool

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数（Counter）
	// 标签：method（GET/POST）、path（/api/sales）、status（200/500）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时（Histogram）
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数（Gauge）
	HTTPRequestsInProgress prometheus.Gauge

	// 库存业务指标

	// PurchasesRecordedTotal 采购入账总数（Counter）
	PurchasesRecordedTotal prometheus.Counter

	// SalesProcessedTotal 销售处理总数（Counter）
	// 标签：result（success/insufficient/timeout/failure）
	SalesProcessedTotal *prometheus.CounterVec

	// SaleProcessingDuration 销售处理耗时（Histogram）
	// 包含行锁等待时间，高并发下是观察锁竞争的主要指标
	SaleProcessingDuration prometheus.Histogram

	// BatchesConsumedPerSale 单次销售消耗的批次数（Histogram）
	BatchesConsumedPerSale prometheus.Histogram

	// DuplicateEventsTotal 幂等拒绝的重复事件总数（Counter）
	DuplicateEventsTotal prometheus.Counter

	// 熔断器指标

	// CircuitBreakerState 熔断器状态（Gauge）
	// 0=CLOSED, 1=OPEN, 2=HALF_OPEN
	CircuitBreakerState *prometheus.GaugeVec

	// CircuitBreakerRequests 熔断器请求总数（Counter）
	// 标签：name（熔断器名称）、result（success/failure/rejected）
	CircuitBreakerRequests *prometheus.CounterVec

	// 消息队列指标

	// MessagesPublishedTotal 消息发布总数（Counter）
	// 标签：exchange（交换机）、routing_key（路由键）
	MessagesPublishedTotal *prometheus.CounterVec

	// MessagesConsumedTotal 消息消费总数（Counter）
	// 标签：queue（队列名称）、result
	// （success/invalid/duplicate/insufficient/rejected/timeout/failure）
	MessagesConsumedTotal *prometheus.CounterVec

	// MessageProcessingDuration 消息处理耗时（Histogram）
	MessageProcessingDuration prometheus.Histogram
)

// InitMetrics 初始化所有Prometheus指标
//
// 必须在程序启动时调用一次，使用promauto.New*自动注册到默认Registry。
func InitMetrics() {
	// 防止重复初始化
	if initialized {
		return
	}
	initialized = true

	// HTTP请求指标
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"}, // 标签：方法、路径、状态码
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP请求耗时（秒）",
			// 桶设置：1ms、10ms、100ms、500ms、1s、5s、10s
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"}, // 标签：方法、路径
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	// 库存业务指标
	PurchasesRecordedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "purchases_recorded_total",
			Help: "采购入账总数",
		},
	)

	SalesProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_processed_total",
			Help: "销售处理总数",
		},
		[]string{"result"}, // 标签：结果（success/insufficient/timeout/failure）
	)

	SaleProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "sale_processing_duration_seconds",
			Help: "销售处理耗时（秒），含行锁等待",
			// 锁等待超时默认50秒，桶覆盖到超时附近
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
	)

	BatchesConsumedPerSale = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "batches_consumed_per_sale",
			Help:    "单次销售消耗的批次数",
			Buckets: []float64{1, 2, 3, 5, 10, 20, 50},
		},
	)

	DuplicateEventsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "duplicate_events_total",
			Help: "幂等拒绝的重复事件总数",
		},
	)

	// 熔断器指标
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"}, // 标签：熔断器名称
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "熔断器请求总数",
		},
		[]string{"name", "result"}, // 标签：熔断器名称、结果（success/failure/rejected）
	)

	// 消息队列指标
	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "消息发布总数",
		},
		[]string{"exchange", "routing_key"}, // 标签：交换机、路由键
	)

	MessagesConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_consumed_total",
			Help: "消息消费总数",
		},
		[]string{"queue", "result"}, // 标签：队列名称、处置结果
	)

	MessageProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "message_processing_duration_seconds",
			Help:    "消息处理耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5},
		},
	)
}

// IncCounter 递增Counter（便捷函数）
func IncCounter(counter prometheus.Counter) {
	counter.Inc()
}

// IncCounterVec 递增CounterVec（带标签）
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	counter.With(labels).Inc()
}

// IncGauge 递增Gauge
func IncGauge(gauge prometheus.Gauge) {
	gauge.Inc()
}

// DecGauge 递减Gauge
func DecGauge(gauge prometheus.Gauge) {
	gauge.Dec()
}

// SetGauge 设置Gauge值
func SetGauge(gauge prometheus.Gauge, value float64) {
	gauge.Set(value)
}

// SetGaugeVec 设置GaugeVec值（带标签）
func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	gauge.With(labels).Set(value)
}

// ObserveHistogram 记录Histogram观测值
func ObserveHistogram(histogram prometheus.Histogram, value float64) {
	histogram.Observe(value)
}

// ObserveHistogramVec 记录HistogramVec观测值（带标签）
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	histogram.With(labels).Observe(value)
}

package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"expense_bot/internal/config"
	"expense_bot/internal/logger"
	"expense_bot/internal/telegram/models"
)

// Snapshot 一次性获取的全局汇率快照
// 所有汇率以 USD=1.0 为基准（1 USD = Rates[c] 单位的 c）
type Snapshot struct {
	Rates    map[models.Currency]float64
	Fallback bool // 是否为静态兜底汇率
}

// Rate 返回指定货币的汇率
func (s Snapshot) Rate(c models.Currency) (float64, bool) {
	v, ok := s.Rates[c]
	return v, ok
}

// FallbackSnapshot 汇率源不可用时的静态兜底汇率
func FallbackSnapshot() Snapshot {
	return Snapshot{
		Rates: map[models.Currency]float64{
			models.CurrencyUSD: 1.0,
			models.CurrencyARS: 900.0,
			models.CurrencyRUB: 90.0,
			models.CurrencyEUR: 1.1,
		},
		Fallback: true,
	}
}

// Feed 全局汇率源
// 进程生命周期内只拉取一次：首次调用 Rates 时发起网络请求，
// 成功或失败的结果都会被缓存，之后不再刷新
type Feed struct {
	url        string
	httpClient *http.Client

	once     sync.Once
	snapshot Snapshot
}

// Option Feed 可选参数
type Option func(*Feed)

// WithHTTPClient 替换默认 HTTP 客户端（测试用）
func WithHTTPClient(hc *http.Client) Option {
	return func(f *Feed) {
		if hc != nil {
			f.httpClient = hc
		}
	}
}

// NewFeed 创建汇率源
func NewFeed(cfg config.RatesConfig, opts ...Option) *Feed {
	feed := &Feed{
		url: cfg.FeedURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}

	for _, opt := range opts {
		opt(feed)
	}

	return feed
}

// Rates 返回全局汇率快照
// 并发安全：多个请求同时首次访问时只会发起一次网络请求，
// 其余调用阻塞等待同一个结果
func (f *Feed) Rates(ctx context.Context) Snapshot {
	f.once.Do(func() {
		snapshot, err := f.fetch(ctx)
		if err != nil {
			logger.L().Errorf("Failed to fetch exchange rates: %v", err)
			f.snapshot = FallbackSnapshot()
			logger.L().Infof("Using fallback exchange rates: %v", f.snapshot.Rates)
			return
		}
		f.snapshot = snapshot
		logger.L().Infof("Exchange rates fetched: %v", snapshot.Rates)
	})
	return f.snapshot
}

// feedResponse 汇率接口响应（只取 rates 对象）
type feedResponse struct {
	Rates map[string]float64 `json:"rates"`
}

// fetch 拉取一次汇率文档
func (f *Feed) fetch(ctx context.Context) (Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to create request: %w", err)
	}

	logger.L().Debugf("Fetching exchange rates: url=%s", f.url)
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to fetch rate feed: %w", err)
	}
	defer resp.Body.Close()

	// 非 200 与网络错误同样处理
	if resp.StatusCode != http.StatusOK {
		return Snapshot{}, fmt.Errorf("rate feed returned non-200 status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read response body: %w", err)
	}

	var feedResp feedResponse
	if err := json.Unmarshal(body, &feedResp); err != nil {
		return Snapshot{}, fmt.Errorf("failed to parse rate feed JSON: %w", err)
	}

	// 基准货币固定为 USD=1.0，其余取接口返回值
	snapshot := Snapshot{
		Rates: map[models.Currency]float64{
			models.CurrencyUSD: 1.0,
		},
	}
	for _, c := range []models.Currency{models.CurrencyARS, models.CurrencyRUB, models.CurrencyEUR} {
		value, ok := feedResp.Rates[c.String()]
		if !ok || value <= 0 {
			return Snapshot{}, fmt.Errorf("rate feed is missing currency %s", c)
		}
		snapshot.Rates[c] = value
	}

	return snapshot, nil
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"

	"otoada_api_v1_202609/internal/api/dto"
	"otoada_api_v1_202609/internal/model"
	"otoada_api_v1_202609/pkg/kv"
)

// ==================== 汇率服务 ====================

// RateAPIURL 实时汇率接口 (以 GBP 为参照币)
const RateAPIURL = "https://api.exchangerate-api.com/v4/latest/GBP"

// 上一次汇率快照的存储键，用于计算涨跌箭头
const lastRatesKey = "otoada:last_rates"

// 兜底汇率：接口不可达时启用，含义是 1 单位该币种等值多少 STG
const (
	FallbackRateTL  = 0.024 // 约 42 TL = 1 STG
	FallbackRateEUR = 0.85
)

// CurrencyService 汇率换算与价格格式化
// 汇率表含义: 1 单位该币种 = rate 个 STG，STG 恒为 1
type CurrencyService struct {
	mu      sync.RWMutex
	rates   map[string]float64
	tickers []dto.RateTicker

	store  kv.Store
	client *resty.Client
}

// NewCurrencyService 创建汇率服务，初始为兜底汇率
func NewCurrencyService(store kv.Store, client *resty.Client) *CurrencyService {
	return &CurrencyService{
		rates: map[string]float64{
			model.CurrencySTG: 1,
			model.CurrencyTL:  FallbackRateTL,
			model.CurrencyEUR: FallbackRateEUR,
		},
		store:  store,
		client: client,
	}
}

// rateAPIResponse 汇率接口响应
type rateAPIResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// rateSnapshot 上次行情快照 (对应 localStorage 里的 lastRates)
type rateSnapshot struct {
	TL  float64 `json:"tl"`
	EUR float64 `json:"eur"`
}

// FetchRates 拉取实时汇率
// 失败不致命：保留当前(兜底)汇率，只打日志
func (s *CurrencyService) FetchRates(ctx context.Context) error {
	var res rateAPIResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetResult(&res).
		Get(RateAPIURL)
	if err != nil {
		log.Printf("汇率拉取失败，使用兜底汇率: %v", err)
		return err
	}
	if resp.StatusCode() != 200 {
		err = fmt.Errorf("汇率接口异常 [%d]", resp.StatusCode())
		log.Printf("%v，使用兜底汇率", err)
		return err
	}

	// 读上次快照，算涨跌
	var last rateSnapshot
	if raw, kvErr := s.store.Get(ctx, lastRatesKey); kvErr == nil && raw != "" {
		_ = json.Unmarshal([]byte(raw), &last)
	}

	s.mu.Lock()
	var tickers []dto.RateTicker
	// 接口返回 1 GBP = X TRY，我们要 1 TL = (1/X) STG
	if try, ok := res.Rates["TRY"]; ok && try > 0 {
		s.rates[model.CurrencyTL] = 1 / try
		tickers = append(tickers, dto.RateTicker{
			Pair:  "STG/TL",
			Rate:  try,
			Trend: trendOf(try, last.TL),
		})
	}
	if eur, ok := res.Rates["EUR"]; ok && eur > 0 {
		s.rates[model.CurrencyEUR] = 1 / eur
		tickers = append(tickers, dto.RateTicker{
			Pair:  "STG/EUR",
			Rate:  eur,
			Trend: trendOf(eur, last.EUR),
		})
	}
	s.rates[model.CurrencySTG] = 1
	s.tickers = tickers
	s.mu.Unlock()

	// 保存快照供下次比较
	snap, _ := json.Marshal(rateSnapshot{TL: res.Rates["TRY"], EUR: res.Rates["EUR"]})
	if kvErr := s.store.Set(ctx, lastRatesKey, string(snap)); kvErr != nil {
		log.Printf("汇率快照保存失败: %v", kvErr)
	}

	log.Printf("汇率更新成功: 1 TL = %.6f STG, 1 EUR = %.6f STG",
		s.Rate(model.CurrencyTL), s.Rate(model.CurrencyEUR))
	return nil
}

func trendOf(current, previous float64) string {
	switch {
	case previous == 0:
		return "same" // 首次，没有可比对象
	case current > previous:
		return "up"
	case current < previous:
		return "down"
	default:
		return "same"
	}
}

// Rate 查询汇率，未识别的币种按基准币处理 (rate=1，宽松兜底，不算错误)
func (s *CurrencyService) Rate(code string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rate, ok := s.rates[strings.ToUpper(code)]; ok {
		return rate
	}
	return 1
}

// ConvertToSTG 任意币种金额换算为 STG
func (s *CurrencyService) ConvertToSTG(amount float64, code string) float64 {
	if code == "" {
		code = model.CurrencySTG
	}
	return amount * s.Rate(code)
}

// Tickers 当前行情条目 (详情页汇率横幅)
func (s *CurrencyService) Tickers() []dto.RateTicker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]dto.RateTicker, len(s.tickers))
	copy(out, s.tickers)
	return out
}

// ==================== 价格格式化 ====================

// FormatPrice 带币种符号与千分位的价格展示
// 币种未识别时回落到 £；金额缺失渲染 "0"
func FormatPrice(fiyat float64, paraBirimi string) string {
	symbol := "£" // STG 为默认符号
	switch strings.ToUpper(paraBirimi) {
	case model.CurrencyTL:
		symbol = "₺"
	case model.CurrencyEUR:
		symbol = "€"
	}

	return symbol + groupThousands(fiyat)
}

// groupThousands 千分位分组，如 15000 -> "15,000"
func groupThousands(v float64) string {
	if v < 0 {
		return "-" + groupThousands(-v)
	}

	// 先整体按分位四舍五入，避免 999.995 这种小数进位后整数部分没跟着进
	v = math.Round(v*100) / 100

	whole := int64(v)
	digits := fmt.Sprintf("%d", whole)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}

	// 小数部分只在确有小数时保留两位
	if frac := v - math.Trunc(v); frac > 1e-9 {
		b.WriteString(fmt.Sprintf("%.2f", frac)[1:])
	}
	return b.String()
}

package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"otoada_api_v1_202609/internal/service"
)

// ==================== RateSyncTask 汇率刷新任务 ====================

// RateSyncTask 定时刷新汇率
// 启动时先同步拉一次 (失败走兜底汇率)，之后每天早上刷一次
type RateSyncTask struct {
	currency *service.CurrencyService
	cron     *cron.Cron
}

// NewRateSyncTask 创建汇率任务
func NewRateSyncTask(currency *service.CurrencyService) *RateSyncTask {
	return &RateSyncTask{
		currency: currency,
		cron:     cron.New(cron.WithSeconds()),
	}
}

// Start 启动任务
func (t *RateSyncTask) Start() error {
	// 启动先拉一次，拉不到就用兜底汇率，绝不阻塞启动
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	_ = t.currency.FetchRates(ctx)
	cancel()

	// 每天 06:00 刷新
	_, err := t.cron.AddFunc("0 0 6 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := t.currency.FetchRates(ctx); err != nil {
			log.Printf("定时汇率刷新失败: %v", err)
		}
	})
	if err != nil {
		return err
	}

	t.cron.Start()
	log.Println("汇率刷新任务已启动")
	return nil
}

// Stop 停止任务，等待执行中的任务完成
func (t *RateSyncTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
}

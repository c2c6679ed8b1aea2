package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"momcafe_saas_v1_202608/internal/repository"
	"momcafe_saas_v1_202608/internal/service"
)

// 分析结果保留 90 天
const analysisRetention = 90 * 24 * time.Hour

// ==================== CleanupTask 数据清理任务 ====================

// CleanupTask 凌晨清理过期数据
// 清理范围：90 天前的分析结果、过期的购物车会话
type CleanupTask struct {
	analysisRepo repository.AnalysisRepository
	cartService  *service.CartService
	cron         *cron.Cron
}

func NewCleanupTask(analysisRepo repository.AnalysisRepository, cartService *service.CartService) *CleanupTask {
	return &CleanupTask{
		analysisRepo: analysisRepo,
		cartService:  cartService,
		cron:         cron.New(cron.WithSeconds()),
	}
}

// Start 启动任务，每天 03:30 执行过期分析清理，每小时回收购物车会话
func (t *CleanupTask) Start() {
	if _, err := t.cron.AddFunc("0 30 3 * * *", func() {
		t.cleanupAnalyses()
	}); err != nil {
		log.Printf("[CleanupTask] 注册分析清理任务失败: %v", err)
		return
	}
	if _, err := t.cron.AddFunc("0 0 * * * *", func() {
		if purged := t.cartService.PurgeExpired(); purged > 0 {
			log.Printf("[CleanupTask] 已回收 %d 个过期购物车会话", purged)
		}
	}); err != nil {
		log.Printf("[CleanupTask] 注册会话回收任务失败: %v", err)
		return
	}
	t.cron.Start()
	log.Println("[CleanupTask] 已启动")
}

// Stop 停止任务
func (t *CleanupTask) Stop() {
	ctx := t.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(10 * time.Second):
		log.Println("[CleanupTask] 等待任务退出超时")
	}
}

func (t *CleanupTask) cleanupAnalyses() {
	cutoff := time.Now().Add(-analysisRetention)
	rows, err := t.analysisRepo.DeleteOlderThan(context.Background(), cutoff)
	if err != nil {
		log.Printf("[CleanupTask] 清理过期分析失败: %v", err)
		return
	}
	if rows > 0 {
		log.Printf("[CleanupTask] 已清理 %d 条过期分析结果", rows)
	}
}

package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"momcafe_saas_v1_202608/internal/service"
)

// ==================== ContentDigestTask 稿件日报任务 ====================

// ContentDigestTask 每天早上汇总稿件状态写日志
// 只做统计提醒，状态流转始终由运营手动触发
type ContentDigestTask struct {
	contentService *service.ContentService
	cron           *cron.Cron
}

func NewContentDigestTask(contentService *service.ContentService) *ContentDigestTask {
	return &ContentDigestTask{
		contentService: contentService,
		cron:           cron.New(cron.WithSeconds()),
	}
}

// Start 启动任务，每天 09:00 执行
func (t *ContentDigestTask) Start() {
	_, err := t.cron.AddFunc("0 0 9 * * *", func() {
		t.run()
	})
	if err != nil {
		log.Printf("[ContentDigestTask] 注册定时任务失败: %v", err)
		return
	}
	t.cron.Start()
	log.Println("[ContentDigestTask] 已启动，每天 09:00 输出稿件日报")
}

// Stop 停止任务
func (t *ContentDigestTask) Stop() {
	ctx := t.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(10 * time.Second):
		log.Println("[ContentDigestTask] 等待任务退出超时")
	}
}

func (t *ContentDigestTask) run() {
	stats, err := t.contentService.GetBoardStats(context.Background())
	if err != nil {
		log.Printf("[ContentDigestTask] 统计稿件失败: %v", err)
		return
	}
	log.Printf("[ContentDigestTask] 稿件日报: 待确认=%d 已排期=%d 已发布=%d 今日到期=%d 待复核=%d",
		stats.Pending, stats.Scheduled, stats.Posted, stats.DueToday, stats.ReviewRequired)
}

package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"momcafe_saas_v1_202608/internal/model"
)

// ==================== 仓储接口 ====================

// AICallLogRepository AI调用日志仓储接口
type AICallLogRepository interface {
	Create(ctx context.Context, log *model.AICallLog) error

	// 统计查询
	GetUsageByMember(ctx context.Context, memberID int64, startTime, endTime time.Time) (*AIUsageStats, error)
	GetTotalCost(ctx context.Context, startTime, endTime time.Time) (float64, error)
}

// ==================== 统计结构 ====================

// AIUsageStats AI用量统计
type AIUsageStats struct {
	TotalCalls    int64   `json:"total_calls"`
	AnalysisCalls int64   `json:"analysis_calls"`
	PostCalls     int64   `json:"post_calls"`
	TotalCostUSD  float64 `json:"total_cost_usd"`
	AvgDurationMs float64 `json:"avg_duration_ms"`
	SuccessCount  int64   `json:"success_count"`
	FailedCount   int64   `json:"failed_count"`
}

// ==================== 仓储实现 ====================

type aiCallLogRepo struct {
	db *gorm.DB
}

// NewAICallLogRepository 创建AI调用日志仓储
func NewAICallLogRepository(db *gorm.DB) AICallLogRepository {
	return &aiCallLogRepo{db: db}
}

func (r *aiCallLogRepo) Create(ctx context.Context, log *model.AICallLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *aiCallLogRepo) GetUsageByMember(ctx context.Context, memberID int64, startTime, endTime time.Time) (*AIUsageStats, error) {
	var stats AIUsageStats

	query := r.db.WithContext(ctx).Model(&model.AICallLog{}).Where("member_id = ?", memberID)
	if !startTime.IsZero() {
		query = query.Where("created_at >= ?", startTime)
	}
	if !endTime.IsZero() {
		query = query.Where("created_at <= ?", endTime)
	}

	err := query.Select(`
		COUNT(*) as total_calls,
		COUNT(CASE WHEN call_type = 'analysis' THEN 1 END) as analysis_calls,
		COUNT(CASE WHEN call_type = 'posts' THEN 1 END) as post_calls,
		COALESCE(SUM(cost_usd), 0) as total_cost_usd,
		COALESCE(AVG(duration_ms), 0) as avg_duration_ms,
		COUNT(CASE WHEN status = 'success' THEN 1 END) as success_count,
		COUNT(CASE WHEN status = 'failed' THEN 1 END) as failed_count
	`).Scan(&stats).Error

	return &stats, err
}

func (r *aiCallLogRepo) GetTotalCost(ctx context.Context, startTime, endTime time.Time) (float64, error) {
	var total float64
	query := r.db.WithContext(ctx).Model(&model.AICallLog{})
	if !startTime.IsZero() {
		query = query.Where("created_at >= ?", startTime)
	}
	if !endTime.IsZero() {
		query = query.Where("created_at <= ?", endTime)
	}
	err := query.Select("COALESCE(SUM(cost_usd), 0)").Scan(&total).Error
	return total, err
}

package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"momcafe_saas_v1_202608/internal/model"
)

// ==================== AnalysisRepository 分析结果仓库 ====================

// AnalysisRepository 分析结果仓库接口
type AnalysisRepository interface {
	Create(ctx context.Context, result *model.AnalysisResult) error
	GetByID(ctx context.Context, id int64) (*model.AnalysisResult, error)
	ListByMember(ctx context.Context, memberID int64, page, pageSize int) ([]model.AnalysisResult, int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type analysisRepository struct {
	db *gorm.DB
}

// NewAnalysisRepository 创建分析结果仓库
func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

func (r *analysisRepository) Create(ctx context.Context, result *model.AnalysisResult) error {
	return r.db.WithContext(ctx).Create(result).Error
}

func (r *analysisRepository) GetByID(ctx context.Context, id int64) (*model.AnalysisResult, error) {
	var result model.AnalysisResult
	err := r.db.WithContext(ctx).First(&result, id).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *analysisRepository) ListByMember(ctx context.Context, memberID int64, page, pageSize int) ([]model.AnalysisResult, int64, error) {
	var results []model.AnalysisResult
	var total int64

	db := r.db.WithContext(ctx).Model(&model.AnalysisResult{}).Where("member_id = ?", memberID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	err := db.
		Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&results).Error

	return results, total, err
}

func (r *analysisRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&model.AnalysisResult{})
	return result.RowsAffected, result.Error
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"momcafe_saas_v1_202608/internal/model"
)

// ==================== 过滤条件 ====================

// ContentFilter 帖子过滤条件
type ContentFilter struct {
	OrderID        int64 // 通过 order_items 关联过滤
	OrderItemID    int64
	Status         string
	ReviewRequired *bool
	ScheduledDate  string
	Page           int
	PageSize       int
}

// ==================== ContentRepository 生成帖子仓库 ====================

// ContentRepository 生成帖子仓库接口
type ContentRepository interface {
	Create(ctx context.Context, content *model.GeneratedContent) error
	CreateBatch(ctx context.Context, contents []model.GeneratedContent) error
	GetByID(ctx context.Context, id int64) (*model.GeneratedContent, error)
	List(ctx context.Context, filter ContentFilter) ([]model.GeneratedContent, int64, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error

	// 统计（运营日报）
	CountByStatus(ctx context.Context, status string) (int64, error)
	CountDueOn(ctx context.Context, date string) (int64, error)
	CountReviewRequired(ctx context.Context) (int64, error)
}

type contentRepository struct {
	db *gorm.DB
}

// NewContentRepository 创建生成帖子仓库
func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) Create(ctx context.Context, content *model.GeneratedContent) error {
	return r.db.WithContext(ctx).Create(content).Error
}

func (r *contentRepository) CreateBatch(ctx context.Context, contents []model.GeneratedContent) error {
	if len(contents) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(contents, 100).Error
}

func (r *contentRepository) GetByID(ctx context.Context, id int64) (*model.GeneratedContent, error) {
	var content model.GeneratedContent
	err := r.db.WithContext(ctx).First(&content, id).Error
	if err != nil {
		return nil, err
	}
	return &content, nil
}

func (r *contentRepository) List(ctx context.Context, filter ContentFilter) ([]model.GeneratedContent, int64, error) {
	var contents []model.GeneratedContent
	var total int64

	db := r.db.WithContext(ctx).Model(&model.GeneratedContent{})

	if filter.OrderID > 0 {
		db = db.Where("order_item_id IN (?)",
			r.db.Model(&model.OrderItem{}).Select("id").Where("order_id = ?", filter.OrderID))
	}
	if filter.OrderItemID > 0 {
		db = db.Where("order_item_id = ?", filter.OrderItemID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.ReviewRequired != nil {
		db = db.Where("review_required = ?", *filter.ReviewRequired)
	}
	if filter.ScheduledDate != "" {
		db = db.Where("scheduled_date = ?", filter.ScheduledDate)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = db.Order("scheduled_date ASC, scheduled_time ASC, id ASC")

	// PageSize<=0 表示不分页，CSV 导出需要全量
	if filter.PageSize > 0 {
		if filter.Page <= 0 {
			filter.Page = 1
		}
		db = db.Limit(filter.PageSize).Offset((filter.Page - 1) * filter.PageSize)
	}

	err := db.Find(&contents).Error

	return contents, total, err
}

func (r *contentRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.GeneratedContent{}).Where("id = ?", id).Updates(fields).Error
}

func (r *contentRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.GeneratedContent{}, id).Error
}

func (r *contentRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.GeneratedContent{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

func (r *contentRepository) CountDueOn(ctx context.Context, date string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.GeneratedContent{}).
		Where("scheduled_date = ?", date).
		Where("status IN ?", []string{model.ContentStatusPending, model.ContentStatusScheduled}).
		Count(&count).Error
	return count, err
}

func (r *contentRepository) CountReviewRequired(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.GeneratedContent{}).
		Where("review_required = ?", true).
		Where("status = ?", model.ContentStatusPending).
		Count(&count).Error
	return count, err
}

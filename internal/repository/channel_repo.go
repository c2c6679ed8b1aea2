package repository

import (
	"context"

	"gorm.io/gorm"

	"momcafe_saas_v1_202608/internal/model"
)

// ==================== ChannelRepository 渠道目录仓库 ====================

// ChannelRepository 渠道目录仓库接口
// 目录为只读参考数据，写操作只用于启动时灌入种子数据
type ChannelRepository interface {
	List(ctx context.Context) ([]model.Channel, error)
	GetByName(ctx context.Context, name string) (*model.Channel, error)
	GetByNames(ctx context.Context, names []string) ([]model.Channel, error)
	Count(ctx context.Context) (int64, error)
	CreateBatch(ctx context.Context, channels []model.Channel) error
}

type channelRepository struct {
	db *gorm.DB
}

// NewChannelRepository 创建渠道仓库
func NewChannelRepository(db *gorm.DB) ChannelRepository {
	return &channelRepository{db: db}
}

func (r *channelRepository) List(ctx context.Context) ([]model.Channel, error) {
	var channels []model.Channel
	err := r.db.WithContext(ctx).
		Order("success_rate DESC, member_count DESC").
		Find(&channels).Error
	return channels, err
}

func (r *channelRepository) GetByName(ctx context.Context, name string) (*model.Channel, error) {
	var channel model.Channel
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&channel).Error
	if err != nil {
		return nil, err
	}
	return &channel, nil
}

func (r *channelRepository) GetByNames(ctx context.Context, names []string) ([]model.Channel, error) {
	var channels []model.Channel
	if len(names) == 0 {
		return channels, nil
	}
	err := r.db.WithContext(ctx).Where("name IN ?", names).Find(&channels).Error
	return channels, err
}

func (r *channelRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Channel{}).Count(&count).Error
	return count, err
}

func (r *channelRepository) CreateBatch(ctx context.Context, channels []model.Channel) error {
	if len(channels) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(channels, 100).Error
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"momcafe_saas_v1_202608/internal/model"
)

// ==================== GameRepository 游戏档案仓库 ====================

// GameRepository 游戏档案仓库接口
type GameRepository interface {
	Create(ctx context.Context, profile *model.GameProfile) error
	GetByMemberID(ctx context.Context, memberID int64) (*model.GameProfile, error)
	GetByReferralCode(ctx context.Context, code string) (*model.GameProfile, error)
	Update(ctx context.Context, profile *model.GameProfile) error
	AddPoints(ctx context.Context, memberID int64, points int64) error
}

type gameRepository struct {
	db *gorm.DB
}

// NewGameRepository 创建游戏档案仓库
func NewGameRepository(db *gorm.DB) GameRepository {
	return &gameRepository{db: db}
}

func (r *gameRepository) Create(ctx context.Context, profile *model.GameProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *gameRepository) GetByMemberID(ctx context.Context, memberID int64) (*model.GameProfile, error) {
	var profile model.GameProfile
	err := r.db.WithContext(ctx).Where("member_id = ?", memberID).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *gameRepository) GetByReferralCode(ctx context.Context, code string) (*model.GameProfile, error) {
	var profile model.GameProfile
	err := r.db.WithContext(ctx).Where("referral_code = ?", code).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *gameRepository) Update(ctx context.Context, profile *model.GameProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

func (r *gameRepository) AddPoints(ctx context.Context, memberID int64, points int64) error {
	return r.db.WithContext(ctx).Model(&model.GameProfile{}).
		Where("member_id = ?", memberID).
		Update("points", gorm.Expr("points + ?", points)).Error
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"momcafe_saas_v1_202608/internal/model"
)

// ==================== MemberRepository 用户仓库 ====================

// MemberRepository 用户仓库接口
type MemberRepository interface {
	Create(ctx context.Context, member *model.Member) error
	GetByID(ctx context.Context, id int64) (*model.Member, error)
	GetByEmail(ctx context.Context, email string) (*model.Member, error)
	Update(ctx context.Context, member *model.Member) error
	AddCredit(ctx context.Context, id int64, amountKRW int64) error
}

type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository 创建用户仓库
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) Create(ctx context.Context, member *model.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *memberRepository) GetByID(ctx context.Context, id int64) (*model.Member, error) {
	var member model.Member
	err := r.db.WithContext(ctx).First(&member, id).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) GetByEmail(ctx context.Context, email string) (*model.Member, error) {
	var member model.Member
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) Update(ctx context.Context, member *model.Member) error {
	return r.db.WithContext(ctx).Save(member).Error
}

func (r *memberRepository) AddCredit(ctx context.Context, id int64, amountKRW int64) error {
	return r.db.WithContext(ctx).Model(&model.Member{}).
		Where("id = ?", id).
		Update("credit_krw", gorm.Expr("credit_krw + ?", amountKRW)).Error
}

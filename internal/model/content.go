package model

import (
	"time"

	"github.com/lib/pq"
)

// ==================== 帖子状态常量 ====================

// 状态机: pending -> scheduled -> posted，只能由运营人员手动推进
// 不提供回退（posted 不可回到 scheduled）
const (
	ContentStatusPending   = "pending"   // 已生成待排期
	ContentStatusScheduled = "scheduled" // 已确认排期
	ContentStatusPosted    = "posted"    // 已发帖
)

// ==================== GeneratedContent 生成帖子 ====================

// GeneratedContent 单篇 AI 生成帖子，归属某个订单项
type GeneratedContent struct {
	BaseModel

	OrderItemID int64 `gorm:"index;not null"`

	Title string         `gorm:"size:255"`
	Body  string         `gorm:"type:text"`
	Tags  pq.StringArray `gorm:"type:text[]"`

	// 排期（初始由时段轮转自动分配，运营可修改）
	ScheduledDate string `gorm:"size:10"` // 2006-01-02
	ScheduledTime string `gorm:"size:5"`  // 15:04

	Status   string     `gorm:"size:20;index;default:'pending'"`
	PostedAt *time.Time

	// AI 生成失败时的兜底行，需人工复核重写
	ReviewRequired bool `gorm:"default:false"`
}

func (GeneratedContent) TableName() string {
	return "generated_contents"
}

// CanSchedule 是否可确认排期
func (c *GeneratedContent) CanSchedule() bool {
	return c.Status == ContentStatusPending
}

// CanMarkPosted 是否可标记已发帖
func (c *GeneratedContent) CanMarkPosted() bool {
	return c.Status == ContentStatusScheduled
}

// CanDelete 是否可删除（posted 为历史记录，不可删）
func (c *GeneratedContent) CanDelete() bool {
	return c.Status == ContentStatusPending || c.Status == ContentStatusScheduled
}

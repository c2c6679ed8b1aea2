package model

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// ==================== 文案类型常量 ====================

// ContentType 帖子文案类型，每种类型独立计价
const (
	ContentTypeReview   = "review"   // 体验评测帖
	ContentTypeQuestion = "question" // 提问互动帖
	ContentTypeHotdeal  = "hotdeal"  // 特价情报帖
)

// ContentTypes 全部合法文案类型
var ContentTypes = []string{ContentTypeReview, ContentTypeQuestion, ContentTypeHotdeal}

// IsValidContentType 校验文案类型
func IsValidContentType(t string) bool {
	for _, ct := range ContentTypes {
		if ct == t {
			return true
		}
	}
	return false
}

// ==================== 活跃度常量 ====================

const (
	ActivityVeryHigh = "very_high"
	ActivityHigh     = "high"
	ActivityMedium   = "medium"
	ActivityLow      = "low"
)

// ==================== Channel 渠道目录 ====================

// Channel 妈妈咖啡厅（韩国育儿社区）营销渠道
// 只读参考数据，一次分析加载一次；定价为 文案类型 -> 单价（韩元）
type Channel struct {
	BaseModel

	Name     string `gorm:"size:100;uniqueIndex;not null"`
	Category string `gorm:"size:50"`  // 育儿/地区/特价 等
	URL      string `gorm:"size:255"` // 咖啡厅主页

	MemberCount   int64  `gorm:"default:0"`
	ActivityLevel string `gorm:"size:20;default:'medium'"`

	// 定价（PostgreSQL JSONB），key 为文案类型
	Pricing datatypes.JSONMap `gorm:"type:jsonb"`

	// 历史投放成功率 0-100
	SuccessRate float64 `gorm:"default:0"`
}

func (Channel) TableName() string {
	return "channels"
}

// PriceFor 获取指定文案类型的单价（韩元）
// JSONB 反序列化后数值统一为 float64，这里做归一处理
func (c *Channel) PriceFor(contentType string) int64 {
	if c.Pricing == nil {
		return 0
	}
	v, ok := c.Pricing[contentType]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
	}
	return 0
}

// HasPriceFor 是否对该文案类型定价
func (c *Channel) HasPriceFor(contentType string) bool {
	return c.PriceFor(contentType) > 0
}

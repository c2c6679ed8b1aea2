package model

// AICallLog AI调用日志
type AICallLog struct {
	BaseModel

	// 关联
	MemberID int64 `gorm:"index;comment:用户ID"`
	RefID    int64 `gorm:"index;comment:关联记录ID(分析/订单项)"`

	// 调用信息
	CallType  string `gorm:"size:32;index;comment:调用类型(analysis/posts)"`
	ModelName string `gorm:"size:64;comment:模型名称"`

	// 性能与成本
	DurationMs int64   `gorm:"comment:耗时(毫秒)"`
	CostUSD    float64 `gorm:"type:decimal(10,6);default:0;comment:成本(美元)"`

	// 状态
	Status   string `gorm:"size:32;index;default:success;comment:状态(success/failed)"`
	ErrorMsg string `gorm:"size:1024;comment:错误信息"`
}

func (AICallLog) TableName() string {
	return "ai_call_logs"
}

// ==================== 调用类型常量 ====================

const (
	AICallTypeAnalysis = "analysis"
	AICallTypePosts    = "posts"
)

// ==================== 状态常量 ====================

const (
	AICallStatusSuccess = "success"
	AICallStatusFailed  = "failed"
)

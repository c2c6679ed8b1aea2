package model

import "time"

// ==================== 订单状态常量 ====================

const (
	OrderStatusPending    = "pending"    // 已创建未处理
	OrderStatusProcessing = "processing" // 内容生成中
	OrderStatusCompleted  = "completed"  // 全部订单项处理完毕
	OrderStatusCancelled  = "cancelled"  // 已取消
)

// ==================== 计价规则 ====================

// 多渠道套餐折扣：订单包含一条以上投放项时整单九折
// 折扣按百分比整数运算，避免浮点取整误差
const (
	PackageDiscountPercent = 10
	PostCountMin           = 1
	PostCountMax           = 50
)

// ==================== Order 订单主表 ====================

// Order 投放订单
// 金额统一为韩元整数（KRW 无辅币单位，不做分值换算）
// 不变式: FinalAmount = SubtotalAmount - DiscountAmount
type Order struct {
	BaseModel

	OrderNo    string `gorm:"size:64;uniqueIndex;not null"`
	MemberID   int64  `gorm:"index"`
	AnalysisID int64  `gorm:"index"`

	// 客户联络信息
	CustomerName    string `gorm:"size:100;not null"`
	CustomerEmail   string `gorm:"size:255;not null"`
	CustomerPhone   string `gorm:"size:32;not null"`
	CustomerCompany string `gorm:"size:100"`

	// 商品信息
	ProductURL  string `gorm:"size:500"`
	ProductName string `gorm:"size:255"`

	// 金额
	SubtotalAmount int64
	DiscountAmount int64
	FinalAmount    int64

	// 状态
	Status      string `gorm:"size:20;index;default:'pending'"`
	CompletedAt *time.Time

	// 关联
	Items []OrderItem `gorm:"foreignKey:OrderID"`
}

func (Order) TableName() string {
	return "orders"
}

// CanCancel 检查是否可以取消
func (o *Order) CanCancel() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusProcessing
}

// ItemCount 订单项数量
func (o *Order) ItemCount() int {
	return len(o.Items)
}

// ==================== OrderItem 订单项 ====================

// OrderItem 单渠道投放项（购物车行的持久化形态）
type OrderItem struct {
	BaseModel

	OrderID int64 `gorm:"index;not null"`

	ChannelName string `gorm:"size:100;not null"`
	ContentType string `gorm:"size:20;not null"`

	PostCount    int `gorm:"not null"`
	PricePerPost int64
	TotalPrice   int64

	// 生成结果统计
	GeneratedCount int  `gorm:"default:0"`           // 实际落库帖子数
	Shortfall      int  `gorm:"default:0"`           // AI 少生成的数量（补请求后仍缺）
	IsFallback     bool `gorm:"default:false"`       // 生成失败，仅落兜底行

	// 关联
	Contents []GeneratedContent `gorm:"foreignKey:OrderItemID"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

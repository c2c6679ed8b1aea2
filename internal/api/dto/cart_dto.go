package dto

// ==================== 请求 DTO ====================

// CreateCartRequest 基于分析结果创建购物车会话
type CreateCartRequest struct {
	AnalysisID int64 `json:"analysis_id" binding:"required"`
}

// ToggleSelectRequest 勾选/取消勾选渠道
type ToggleSelectRequest struct {
	ChannelName string `json:"channel_name" binding:"required"`
}

// SetPostCountRequest 调整篇数
type SetPostCountRequest struct {
	ChannelName string `json:"channel_name" binding:"required"`
	PostCount   int    `json:"post_count" binding:"required"`
}

// SetContentTypeRequest 切换内容类型
type SetContentTypeRequest struct {
	ChannelName string `json:"channel_name" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// RemoveLineRequest 移除购物车行
type RemoveLineRequest struct {
	ChannelName string `json:"channel_name" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// CheckoutRequest 提交订单
type CheckoutRequest struct {
	CartToken string `json:"cart_token" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
	Company   string `json:"company"`
}

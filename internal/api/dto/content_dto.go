package dto

// ==================== 请求 DTO ====================

// ListContentsRequest 稿件列表请求
type ListContentsRequest struct {
	OrderID       int64  `form:"order_id"`
	OrderItemID   int64  `form:"order_item_id"`
	Status        string `form:"status"`
	ScheduledDate string `form:"scheduled_date"`
	Page          int    `form:"page,default=1"`
	PageSize      int    `form:"page_size,default=20"`
}

// UpdateContentRequest 修改稿件内容或排期
type UpdateContentRequest struct {
	Title         string   `json:"title"`
	Body          string   `json:"body"`
	Tags          []string `json:"tags"`
	ScheduledDate string   `json:"scheduled_date"`
	ScheduledTime string   `json:"scheduled_time"`
}

// ==================== 响应 DTO ====================

// ContentVO 生成稿
type ContentVO struct {
	ID             int64    `json:"id"`
	OrderItemID    int64    `json:"order_item_id"`
	Title          string   `json:"title"`
	Body           string   `json:"body"`
	Tags           []string `json:"tags"`
	ScheduledDate  string   `json:"scheduled_date"`
	ScheduledTime  string   `json:"scheduled_time"`
	Status         string   `json:"status"`
	PostedAt       string   `json:"posted_at,omitempty"`
	ReviewRequired bool     `json:"review_required"`
}

package dto

// ==================== 请求 DTO ====================

// ListOrdersRequest 订单列表请求
type ListOrdersRequest struct {
	Status    string `form:"status"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Keyword   string `form:"keyword"`
	Page      int    `form:"page,default=1"`
	PageSize  int    `form:"page_size,default=20"`
}

// ==================== 响应 DTO ====================

// OrderVO 订单列表项
type OrderVO struct {
	ID             int64  `json:"id"`
	OrderNo        string `json:"order_no"`
	CustomerName   string `json:"customer_name"`
	ProductName    string `json:"product_name"`
	SubtotalAmount int64  `json:"subtotal_amount"`
	DiscountAmount int64  `json:"discount_amount"`
	FinalAmount    int64  `json:"final_amount"`
	Status         string `json:"status"`
	ItemCount      int    `json:"item_count"`
	CreatedAt      string `json:"created_at"`
	CompletedAt    string `json:"completed_at,omitempty"`
}

// OrderItemVO 订单明细
type OrderItemVO struct {
	ID             int64       `json:"id"`
	ChannelName    string      `json:"channel_name"`
	ContentType    string      `json:"content_type"`
	PostCount      int         `json:"post_count"`
	PricePerPost   int64       `json:"price_per_post"`
	TotalPrice     int64       `json:"total_price"`
	GeneratedCount int         `json:"generated_count"`
	Shortfall      int         `json:"shortfall"`
	IsFallback     bool        `json:"is_fallback"`
	Contents       []ContentVO `json:"contents,omitempty"`
}

// OrderDetailVO 订单详情
type OrderDetailVO struct {
	OrderVO
	CustomerEmail string        `json:"customer_email"`
	CustomerPhone string        `json:"customer_phone"`
	Company       string        `json:"company,omitempty"`
	ProductURL    string        `json:"product_url"`
	Items         []OrderItemVO `json:"items"`
}

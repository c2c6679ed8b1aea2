package dto

// ==================== 请求 DTO ====================

// AnalyzeRequest 商品链接分析请求
type AnalyzeRequest struct {
	ProductURL string `json:"product_url" binding:"required,url"`
}

// ListAnalysesRequest 分析历史列表请求
type ListAnalysesRequest struct {
	Page     int `form:"page,default=1"`
	PageSize int `form:"page_size,default=20"`
}

// ==================== 响应 DTO ====================

// AnalysisVO 分析结果
type AnalysisVO struct {
	ID                  int64                  `json:"id"`
	ProductURL          string                 `json:"product_url"`
	ProductName         string                 `json:"product_name"`
	ProductSummary      string                 `json:"product_summary"`
	OverallScore        int                    `json:"overall_score"`
	AIStatus            string                 `json:"ai_status"`
	RecommendedChannels []RecommendedChannelVO `json:"recommended_channels"`
	Insights            interface{}            `json:"insights,omitempty"`
	CreatedAt           string                 `json:"created_at"`
}

// RecommendedChannelVO 推荐渠道
type RecommendedChannelVO struct {
	ChannelName          string `json:"channel_name"`
	ContentType          string `json:"content_type"`
	RecommendedPostCount int    `json:"recommended_post_count"`
	Score                int    `json:"score"`
	Reason               string `json:"reason"`
}

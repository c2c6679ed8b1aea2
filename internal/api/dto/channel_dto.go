package dto

// ==================== 响应 DTO ====================

// ChannelVO 渠道目录项
type ChannelVO struct {
	ID            int64            `json:"id"`
	Name          string           `json:"name"`
	Category      string           `json:"category"`
	URL           string           `json:"url"`
	MemberCount   int64            `json:"member_count"`
	ActivityLevel string           `json:"activity_level"`
	SuccessRate   float64          `json:"success_rate"`
	Pricing       map[string]int64 `json:"pricing"`
}

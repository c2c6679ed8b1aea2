package model

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// ==================== AI 状态常量 ====================

const (
	AnalysisAIDone     = "done"     // AI 正常返回
	AnalysisAIFallback = "fallback" // AI 解析失败，使用目录兜底推荐
)

// ==================== AnalysisResult 分析结果 ====================

// AnalysisResult 商品链接的 AI 分析结果
// 每次提交生成一条；只读，重新提交产生新记录覆盖展示，旧记录不修改
type AnalysisResult struct {
	BaseModel

	MemberID int64 `gorm:"index"`

	// 商品信息
	ProductURL     string `gorm:"size:500;not null"`
	ProductName    string `gorm:"size:255"`
	ProductSummary string `gorm:"type:text"`

	// 综合评分 0-100
	OverallScore int `gorm:"default:0"`

	// 推荐渠道列表（PostgreSQL JSONB，[]RecommendedChannel）
	RecommendedChannels datatypes.JSON `gorm:"type:jsonb"`

	// 附加洞察（竞品、投放时机、关键词趋势）
	Insights datatypes.JSON `gorm:"type:jsonb"`

	AIStatus string `gorm:"size:20;default:'done'"`

	// AI 原始返回（排查用，解析失败时可能不是合法 JSON）
	RawResponse string `gorm:"type:text"`
}

func (AnalysisResult) TableName() string {
	return "analysis_results"
}

// ==================== 序列化结构 ====================

// RecommendedChannel 单个推荐渠道
type RecommendedChannel struct {
	ChannelName          string `json:"channel_name"`
	ContentType          string `json:"content_type"`
	RecommendedPostCount int    `json:"recommended_post_count"`
	Score                int    `json:"score"`
	Reason               string `json:"reason"`
}

// AnalysisInsights 附加洞察
type AnalysisInsights struct {
	Competitors   []string `json:"competitors"`
	BestTiming    string   `json:"best_timing"`
	KeywordTrends []string `json:"keyword_trends"`
}

// Channels 反序列化推荐渠道列表
func (a *AnalysisResult) Channels() ([]RecommendedChannel, error) {
	var channels []RecommendedChannel
	if len(a.RecommendedChannels) == 0 {
		return channels, nil
	}
	err := json.Unmarshal(a.RecommendedChannels, &channels)
	return channels, err
}

// SetChannels 序列化推荐渠道列表
func (a *AnalysisResult) SetChannels(channels []RecommendedChannel) error {
	b, err := json.Marshal(channels)
	if err != nil {
		return err
	}
	a.RecommendedChannels = datatypes.JSON(b)
	return nil
}

package dto

// ==================== 请求 DTO ====================

// TapRequest 批量上报点击
type TapRequest struct {
	Taps int `json:"taps" binding:"required,min=1"`
}

// ReferralRequest 填写邀请码
type ReferralRequest struct {
	Code string `json:"code" binding:"required"`
}

// ConvertPointsRequest 积分兑换代金余额
type ConvertPointsRequest struct {
	Points int64 `json:"points" binding:"required,min=100"`
}

// ==================== 响应 DTO ====================

// GameProfileVO 游戏档案
type GameProfileVO struct {
	Points       int64  `json:"points"`
	TotalTaps    int64  `json:"total_taps"`
	TapsToday    int    `json:"taps_today"`
	TapDailyCap  int    `json:"tap_daily_cap"`
	StreakDays   int    `json:"streak_days"`
	CheckedIn    bool   `json:"checked_in_today"`
	ReferralCode string `json:"referral_code"`
	ReferredBy   string `json:"referred_by,omitempty"`
}

// GameResultVO 游戏操作结果
type GameResultVO struct {
	Profile    *GameProfileVO `json:"profile"`
	Earned     int64          `json:"earned"`
	ModalState string         `json:"modal_state"`
}

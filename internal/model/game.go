package model

import "time"

// ==================== 游戏参数 ====================

const (
	TapDailyCap       = 500 // 每日计分点击上限
	RainbowTapEvery   = 100 // 每累计 N 次点击触发彩虹奖励
	RainbowBonus      = 50
	CheckInBase       = 10 // 签到奖励 = base * 连续天数，封顶 CheckInCap
	CheckInCap        = 70
	ReferralBonus     = 200
	CreditExchangeMin = 100  // 最少兑换积分
	CreditPer100      = 1000 // 100 积分 -> 1000 韩元代金
)

// ==================== ModalState 弹窗状态 ====================

// ModalState 前端弹窗状态（单一枚举，避免多个布尔开关组合出非法状态）
type ModalState string

const (
	ModalNone          ModalState = "none"
	ModalSuccess       ModalState = "success"
	ModalRewardConfirm ModalState = "reward_confirm"
	ModalCreditConfirm ModalState = "credit_confirm"
	ModalRainbowBonus  ModalState = "rainbow_bonus"
)

// ==================== GameProfile 游戏档案 ====================

// GameProfile tap-to-earn 小游戏状态，一个用户一份
// 登录时初始化，登出不销毁（持久化，替代原先的浏览器本地存储）
type GameProfile struct {
	BaseModel

	MemberID int64 `gorm:"uniqueIndex;not null"`

	Points    int64 `gorm:"default:0"`
	TotalTaps int64 `gorm:"default:0"`

	// 当日点击计数，TapDay 记录计数所属日期，跨天重置
	TapsToday int    `gorm:"default:0"`
	TapDay    string `gorm:"size:10"`

	// 签到连击
	StreakDays  int `gorm:"default:0"`
	LastCheckIn *time.Time

	// 邀请
	ReferralCode string `gorm:"size:16;uniqueIndex"`
	ReferredBy   string `gorm:"size:16"` // 本人填写过的邀请码，一次性
}

func (GameProfile) TableName() string {
	return "game_profiles"
}

// CheckedInToday 今天是否已签到
func (p *GameProfile) CheckedInToday(now time.Time) bool {
	return p.LastCheckIn != nil && sameDay(*p.LastCheckIn, now)
}

// CheckedInYesterday 昨天是否签到（决定连击是否延续）
func (p *GameProfile) CheckedInYesterday(now time.Time) bool {
	return p.LastCheckIn != nil && sameDay(*p.LastCheckIn, now.AddDate(0, 0, -1))
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

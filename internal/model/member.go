package model

// ==================== 登录方式常量 ====================

const (
	ProviderLocal  = "local"  // 邮箱+密码
	ProviderGoogle = "google" // Google OAuth
)

// ==================== 角色常量 ====================

// 系统级角色: admin (运营管理员), user (普通商家用户)
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Member 平台用户（商家账号）
type Member struct {
	BaseModel

	// 基础信息
	Email        string `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255"` // OAuth 用户为空
	Name         string `gorm:"size:100"`
	Phone        string `gorm:"size:32"`
	Company      string `gorm:"size:100"`

	Provider string `gorm:"size:20;default:'local'"`
	Role     string `gorm:"size:20;default:'user'"`
	IsActive bool   `gorm:"default:true"`

	// 游戏积分兑换的广告代金（韩元）
	CreditKRW int64 `gorm:"default:0"`
}

func (Member) TableName() string {
	return "members"
}

// IsAdmin 是否为管理员
func (m *Member) IsAdmin() bool {
	return m.Role == RoleAdmin
}

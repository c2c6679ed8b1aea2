package dto

// ==================== 请求 DTO ====================

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	Name         string `json:"name" binding:"required"`
	Phone        string `json:"phone"`
	Company      string `json:"company"`
	ReferralCode string `json:"referral_code"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ==================== 响应 DTO ====================

// MemberVO 会员信息
type MemberVO struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Company   string `json:"company"`
	Provider  string `json:"provider"`
	Role      string `json:"role"`
	CreditKRW int64  `json:"credit_krw"`
}

// AuthResponse 登录/注册响应
type AuthResponse struct {
	Token  string    `json:"token"`
	Member *MemberVO `json:"member"`
}

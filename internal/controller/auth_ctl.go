package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"momcafe_saas_v1_202608/internal/api/dto"
	"momcafe_saas_v1_202608/internal/middleware"
	"momcafe_saas_v1_202608/internal/model"
	"momcafe_saas_v1_202608/internal/service"
)

// ==================== 控制器 ====================

// AuthController 注册登录控制器
type AuthController struct {
	authService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

// ==================== API 方法 ====================

// Register 邮箱注册
// @Summary 邮箱注册
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.RegisterRequest true "注册请求"
// @Success 201 {object} dto.AuthResponse
// @Router /api/auth/register [post]
func (ctrl *AuthController) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	member, token, err := ctrl.authService.Register(c.Request.Context(), req.Email, req.Password, req.Name, req.Phone, req.Company, req.ReferralCode)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrEmailTaken) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{
			"code":    status,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":    0,
		"message": "success",
		"data":    dto.AuthResponse{Token: token, Member: toMemberVO(member)},
	})
}

// Login 邮箱登录
// @Summary 邮箱登录
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "登录请求"
// @Success 200 {object} dto.AuthResponse
// @Router /api/auth/login [post]
func (ctrl *AuthController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	member, token, err := ctrl.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    401,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    dto.AuthResponse{Token: token, Member: toMemberVO(member)},
	})
}

// GoogleLogin 跳转 Google 授权页
// @Summary Google 登录入口
// @Tags Auth
// @Success 302
// @Router /api/auth/google [get]
func (ctrl *AuthController) GoogleLogin(c *gin.Context) {
	url, err := ctrl.authService.GoogleAuthURL()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"code":    503,
			"message": err.Error(),
		})
		return
	}
	c.Redirect(http.StatusFound, url)
}

// GoogleCallback 处理 Google 授权回调
// @Summary Google 登录回调
// @Tags Auth
// @Param state query string true "state"
// @Param code query string true "授权码"
// @Success 200 {object} dto.AuthResponse
// @Router /api/auth/google/callback [get]
func (ctrl *AuthController) GoogleCallback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "缺少 state 或 code 参数",
		})
		return
	}

	member, token, err := ctrl.authService.GoogleCallback(c.Request.Context(), state, code)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrOAuthStateInvalid) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{
			"code":    status,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    dto.AuthResponse{Token: token, Member: toMemberVO(member)},
	})
}

// GetProfile 查询当前会员信息
// @Summary 当前会员信息
// @Tags Auth
// @Produce json
// @Success 200 {object} dto.MemberVO
// @Router /api/me [get]
func (ctrl *AuthController) GetProfile(c *gin.Context) {
	member, err := ctrl.authService.GetProfile(c.Request.Context(), middleware.MemberID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    toMemberVO(member),
	})
}

// ==================== 转换辅助 ====================

func toMemberVO(m *model.Member) *dto.MemberVO {
	return &dto.MemberVO{
		ID:        m.ID,
		Email:     m.Email,
		Name:      m.Name,
		Phone:     m.Phone,
		Company:   m.Company,
		Provider:  m.Provider,
		Role:      m.Role,
		CreditKRW: m.CreditKRW,
	}
}

package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"momcafe_saas_v1_202608/internal/api/dto"
	"momcafe_saas_v1_202608/internal/middleware"
	"momcafe_saas_v1_202608/internal/model"
	"momcafe_saas_v1_202608/internal/service"
)

// ==================== 控制器 ====================

// GameController tap-to-earn 小游戏控制器
type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

// ==================== API 方法 ====================

// GetProfile 游戏档案
// @Summary 我的游戏档案
// @Tags Game
// @Produce json
// @Success 200 {object} dto.GameProfileVO
// @Router /api/game/profile [get]
func (ctrl *GameController) GetProfile(c *gin.Context) {
	profile, err := ctrl.gameService.EnsureProfile(c.Request.Context(), middleware.MemberID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    toGameProfileVO(profile),
	})
}

// Tap 上报点击
// @Summary 批量上报点击
// @Tags Game
// @Accept json
// @Param body body dto.TapRequest true "点击数"
// @Success 200 {object} dto.GameResultVO
// @Router /api/game/tap [post]
func (ctrl *GameController) Tap(c *gin.Context) {
	var req dto.TapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	result, err := ctrl.gameService.Tap(c.Request.Context(), middleware.MemberID(c), req.Taps)
	if err != nil {
		ctrl.gameError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    toGameResultVO(result),
	})
}

// CheckIn 每日签到
// @Summary 每日签到
// @Tags Game
// @Success 200 {object} dto.GameResultVO
// @Router /api/game/check-in [post]
func (ctrl *GameController) CheckIn(c *gin.Context) {
	result, err := ctrl.gameService.CheckIn(c.Request.Context(), middleware.MemberID(c))
	if err != nil {
		ctrl.gameError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    toGameResultVO(result),
	})
}

// ApplyReferral 填写邀请码
// @Summary 填写他人邀请码
// @Tags Game
// @Param body body dto.ReferralRequest true "邀请码"
// @Success 200 {object} dto.GameResultVO
// @Router /api/game/referral [post]
func (ctrl *GameController) ApplyReferral(c *gin.Context) {
	var req dto.ReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	result, err := ctrl.gameService.ApplyReferral(c.Request.Context(), middleware.MemberID(c), req.Code)
	if err != nil {
		ctrl.gameError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    toGameResultVO(result),
	})
}

// ConvertPoints 积分兑换
// @Summary 积分兑换下单代金余额
// @Tags Game
// @Param body body dto.ConvertPointsRequest true "兑换积分数"
// @Success 200 {object} dto.GameResultVO
// @Router /api/game/convert [post]
func (ctrl *GameController) ConvertPoints(c *gin.Context) {
	var req dto.ConvertPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	result, err := ctrl.gameService.ConvertPoints(c.Request.Context(), middleware.MemberID(c), req.Points)
	if err != nil {
		ctrl.gameError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    toGameResultVO(result),
	})
}

// ==================== 内部辅助 ====================

func (ctrl *GameController) gameError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, service.ErrTapCapReached), errors.Is(err, service.ErrAlreadyCheckedIn):
		status = http.StatusConflict
	case errors.Is(err, service.ErrReferralNotFound):
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{
		"code":    status,
		"message": err.Error(),
	})
}

// ==================== 转换辅助 ====================

func toGameProfileVO(p *model.GameProfile) *dto.GameProfileVO {
	return &dto.GameProfileVO{
		Points:       p.Points,
		TotalTaps:    p.TotalTaps,
		TapsToday:    p.TapsToday,
		TapDailyCap:  model.TapDailyCap,
		StreakDays:   p.StreakDays,
		CheckedIn:    p.CheckedInToday(time.Now()),
		ReferralCode: p.ReferralCode,
		ReferredBy:   p.ReferredBy,
	}
}

func toGameResultVO(r *service.GameResult) *dto.GameResultVO {
	return &dto.GameResultVO{
		Profile:    toGameProfileVO(r.Profile),
		Earned:     r.Earned,
		ModalState: string(r.ModalState),
	}
}

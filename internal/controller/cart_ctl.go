package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"momcafe_saas_v1_202608/internal/api/dto"
	"momcafe_saas_v1_202608/internal/middleware"
	"momcafe_saas_v1_202608/internal/service"
)

// ==================== 控制器 ====================

// CartController 购物车控制器
// 会话操作统一返回完整会话视图，前端整页刷新状态
type CartController struct {
	cartService *service.CartService
}

func NewCartController(cartService *service.CartService) *CartController {
	return &CartController{cartService: cartService}
}

// ==================== API 方法 ====================

// CreateCart 创建购物车会话
// @Summary 基于分析结果创建购物车会话
// @Tags Cart
// @Accept json
// @Produce json
// @Param body body dto.CreateCartRequest true "创建请求"
// @Success 201 {object} map[string]interface{}
// @Router /api/cart [post]
func (ctrl *CartController) CreateCart(c *gin.Context) {
	var req dto.CreateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	sess, err := ctrl.cartService.CreateSession(c.Request.Context(), middleware.MemberID(c), req.AnalysisID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":    0,
		"message": "success",
		"data":    cartView(sess),
	})
}

// GetCart 查询购物车会话
// @Summary 购物车会话详情
// @Tags Cart
// @Param token path string true "会话令牌"
// @Success 200 {object} map[string]interface{}
// @Router /api/cart/{token} [get]
func (ctrl *CartController) GetCart(c *gin.Context) {
	sess, err := ctrl.cartService.GetSession(c.Param("token"))
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
		"data":    cartView(sess),
	})
}

// ToggleSelect 勾选/取消勾选渠道
// @Summary 勾选或取消勾选渠道
// @Tags Cart
// @Param token path string true "会话令牌"
// @Param body body dto.ToggleSelectRequest true "勾选请求"
// @Success 200 {object} map[string]interface{}
// @Router /api/cart/{token}/select [post]
func (ctrl *CartController) ToggleSelect(c *gin.Context) {
	var req dto.ToggleSelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	sess, err := ctrl.cartService.ToggleSelect(c.Param("token"), req.ChannelName)
	if err != nil {
		ctrl.cartError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    cartView(sess),
	})
}

// SetPostCount 调整篇数
// @Summary 调整已勾选渠道的篇数
// @Tags Cart
// @Param token path string true "会话令牌"
// @Param body body dto.SetPostCountRequest true "调整请求"
// @Success 200 {object} map[string]interface{}
// @Router /api/cart/{token}/post-count [put]
func (ctrl *CartController) SetPostCount(c *gin.Context) {
	var req dto.SetPostCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	sess, err := ctrl.cartService.SetPostCount(c.Param("token"), req.ChannelName, req.PostCount)
	if err != nil {
		ctrl.cartError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    cartView(sess),
	})
}

// SetContentType 切换内容类型
// @Summary 切换已勾选渠道的内容类型
// @Tags Cart
// @Param token path string true "会话令牌"
// @Param body body dto.SetContentTypeRequest true "切换请求"
// @Success 200 {object} map[string]interface{}
// @Router /api/cart/{token}/content-type [put]
func (ctrl *CartController) SetContentType(c *gin.Context) {
	var req dto.SetContentTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	sess, err := ctrl.cartService.SetContentType(c.Param("token"), req.ChannelName, req.ContentType)
	if err != nil {
		ctrl.cartError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    cartView(sess),
	})
}

// AddToCart 勾选项入车
// @Summary 把当前勾选项加入购物车
// @Tags Cart
// @Param token path string true "会话令牌"
// @Success 200 {object} map[string]interface{}
// @Router /api/cart/{token}/add [post]
func (ctrl *CartController) AddToCart(c *gin.Context) {
	sess, err := ctrl.cartService.AddToCart(c.Param("token"))
	if err != nil {
		ctrl.cartError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    cartView(sess),
	})
}

// RemoveLine 移除购物车行
// @Summary 移除购物车中的一行
// @Tags Cart
// @Param token path string true "会话令牌"
// @Param body body dto.RemoveLineRequest true "移除请求"
// @Success 200 {object} map[string]interface{}
// @Router /api/cart/{token}/remove [post]
func (ctrl *CartController) RemoveLine(c *gin.Context) {
	var req dto.RemoveLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	sess, err := ctrl.cartService.RemoveLine(c.Param("token"), req.ChannelName, req.ContentType)
	if err != nil {
		ctrl.cartError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    cartView(sess),
	})
}

// ==================== 内部辅助 ====================

func (ctrl *CartController) cartError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	if errors.Is(err, service.ErrCartSessionNotFound) {
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{
		"code":    status,
		"message": err.Error(),
	})
}

// cartView 会话的完整视图（候选渠道、当前勾选、购物车行、合计）
func cartView(sess *service.CartSession) gin.H {
	selections := make([]*service.CartSelection, 0, len(sess.Selections))
	var selectionTotal int64
	for _, sel := range sess.Selections {
		selections = append(selections, sel)
		selectionTotal += sel.Total()
	}
	return gin.H{
		"token":           sess.Token,
		"analysis_id":     sess.AnalysisID,
		"offers":          sess.Offers,
		"selections":      selections,
		"selection_total": selectionTotal,
		"lines":           sess.Lines,
		"totals":          service.ComputeTotals(sess.Lines),
	}
}

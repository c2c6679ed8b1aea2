package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"momcafe_saas_v1_202608/internal/api/dto"
	"momcafe_saas_v1_202608/internal/repository"
	"momcafe_saas_v1_202608/internal/service"
)

// ==================== 控制器 ====================

// AdminController 运营后台控制器
type AdminController struct {
	orderService   *service.OrderService
	contentService *service.ContentService
	aiLogRepo      repository.AICallLogRepository
}

func NewAdminController(orderService *service.OrderService, contentService *service.ContentService, aiLogRepo repository.AICallLogRepository) *AdminController {
	return &AdminController{
		orderService:   orderService,
		contentService: contentService,
		aiLogRepo:      aiLogRepo,
	}
}

// ==================== API 方法 ====================

// ListAllOrders 全量订单列表（不限会员）
// @Summary 后台订单列表
// @Tags Admin
// @Param status query string false "状态过滤"
// @Param keyword query string false "按订单号/客户名搜索"
// @Success 200 {array} dto.OrderVO
// @Router /api/admin/orders [get]
func (ctrl *AdminController) ListAllOrders(c *gin.Context) {
	var req dto.ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	filter, err := parseOrderFilter(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
		})
		return
	}
	orders, total, err := ctrl.orderService.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": err.Error(),
		})
		return
	}

	vos := make([]*dto.OrderVO, 0, len(orders))
	for i := range orders {
		vos = append(vos, toOrderVO(&orders[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": gin.H{
			"list":  vos,
			"total": total,
			"page":  req.Page,
		},
	})
}

// GetDashboard 运营看板汇总
// @Summary 看板统计（订单 + 稿件）
// @Tags Admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/admin/dashboard [get]
func (ctrl *AdminController) GetDashboard(c *gin.Context) {
	orderStats, err := ctrl.orderService.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": err.Error(),
		})
		return
	}
	boardStats, err := ctrl.contentService.GetBoardStats(c.Request.Context())
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
		"data": gin.H{
			"orders":   orderStats,
			"contents": boardStats,
		},
	})
}

// GetAIUsage AI 调用成本统计
// 带 member_id 参数时返回该会员的调用明细统计
// @Summary AI 调用量与成本
// @Tags Admin
// @Produce json
// @Param member_id query int false "按会员统计"
// @Success 200 {object} map[string]interface{}
// @Router /api/admin/ai-usage [get]
func (ctrl *AdminController) GetAIUsage(c *gin.Context) {
	if raw := c.Query("member_id"); raw != "" {
		memberID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || memberID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的会员ID",
			})
			return
		}
		usage, err := ctrl.aiLogRepo.GetUsageByMember(c.Request.Context(), memberID, time.Time{}, time.Time{})
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
			"data":    usage,
		})
		return
	}

	totalCost, err := ctrl.aiLogRepo.GetTotalCost(c.Request.Context(), time.Time{}, time.Time{})
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
		"data": gin.H{
			"total_cost_usd": totalCost,
		},
	})
}

// ExportContents 稿件 CSV 导出
// @Summary 导出稿件列表为 CSV
// @Tags Admin
// @Param status query string false "状态过滤"
// @Success 200 {object} map[string]interface{}
// @Router /api/admin/contents/export [post]
func (ctrl *AdminController) ExportContents(c *gin.Context) {
	var req dto.ListContentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	url, err := ctrl.contentService.ExportCSV(c.Request.Context(), repository.ContentFilter{
		OrderID:       req.OrderID,
		OrderItemID:   req.OrderItemID,
		Status:        req.Status,
		ScheduledDate: req.ScheduledDate,
	})
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
		"data": gin.H{
			"download_url": url,
		},
	})
}

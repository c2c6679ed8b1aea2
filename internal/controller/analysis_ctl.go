package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"momcafe_saas_v1_202608/internal/api/dto"
	"momcafe_saas_v1_202608/internal/middleware"
	"momcafe_saas_v1_202608/internal/model"
	"momcafe_saas_v1_202608/internal/service"
)

// ==================== 控制器 ====================

// AnalysisController 商品分析控制器
type AnalysisController struct {
	analysisService *service.AnalysisService
}

func NewAnalysisController(analysisService *service.AnalysisService) *AnalysisController {
	return &AnalysisController{analysisService: analysisService}
}

// ==================== API 方法 ====================

// Analyze 提交商品链接分析
// @Summary 分析商品链接
// @Tags Analysis
// @Accept json
// @Produce json
// @Param body body dto.AnalyzeRequest true "分析请求"
// @Success 201 {object} dto.AnalysisVO
// @Router /api/analyses [post]
func (ctrl *AnalysisController) Analyze(c *gin.Context) {
	var req dto.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	result, err := ctrl.analysisService.Analyze(c.Request.Context(), middleware.MemberID(c), req.ProductURL)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, service.ErrAnalysisTooFrequent):
			status = http.StatusTooManyRequests
		case errors.Is(err, service.ErrAIQuotaExceeded):
			status = http.StatusTooManyRequests
		case errors.Is(err, service.ErrAIUnavailable):
			status = http.StatusServiceUnavailable
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
		"data":    toAnalysisVO(result),
	})
}

// GetAnalysis 查询分析结果
// @Summary 分析结果详情
// @Tags Analysis
// @Param id path int true "分析ID"
// @Success 200 {object} dto.AnalysisVO
// @Router /api/analyses/{id} [get]
func (ctrl *AnalysisController) GetAnalysis(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "无效的分析ID",
		})
		return
	}

	result, err := ctrl.analysisService.GetByID(c.Request.Context(), id)
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
		"data":    toAnalysisVO(result),
	})
}

// ListAnalyses 分析历史列表
// @Summary 分析历史
// @Tags Analysis
// @Param page query int false "页码"
// @Param page_size query int false "每页条数"
// @Success 200 {array} dto.AnalysisVO
// @Router /api/analyses [get]
func (ctrl *AnalysisController) ListAnalyses(c *gin.Context) {
	var req dto.ListAnalysesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	results, total, err := ctrl.analysisService.ListByMember(c.Request.Context(), middleware.MemberID(c), req.Page, req.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": err.Error(),
		})
		return
	}

	vos := make([]*dto.AnalysisVO, 0, len(results))
	for i := range results {
		vos = append(vos, toAnalysisVO(&results[i]))
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

// ==================== 转换辅助 ====================

func toAnalysisVO(a *model.AnalysisResult) *dto.AnalysisVO {
	vo := &dto.AnalysisVO{
		ID:             a.ID,
		ProductURL:     a.ProductURL,
		ProductName:    a.ProductName,
		ProductSummary: a.ProductSummary,
		OverallScore:   a.OverallScore,
		AIStatus:       a.AIStatus,
		CreatedAt:      a.CreatedAt.Format("2006-01-02 15:04:05"),
	}

	if channels, err := a.Channels(); err == nil {
		for _, ch := range channels {
			vo.RecommendedChannels = append(vo.RecommendedChannels, dto.RecommendedChannelVO{
				ChannelName:          ch.ChannelName,
				ContentType:          ch.ContentType,
				RecommendedPostCount: ch.RecommendedPostCount,
				Score:                ch.Score,
				Reason:               ch.Reason,
			})
		}
	}
	if len(a.Insights) > 0 {
		var insights model.AnalysisInsights
		if err := json.Unmarshal(a.Insights, &insights); err == nil {
			vo.Insights = insights
		}
	}
	return vo
}

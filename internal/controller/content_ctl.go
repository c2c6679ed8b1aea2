package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"momcafe_saas_v1_202608/internal/api/dto"
	"momcafe_saas_v1_202608/internal/model"
	"momcafe_saas_v1_202608/internal/repository"
	"momcafe_saas_v1_202608/internal/service"
)

// ==================== 控制器 ====================

// ContentController 生成稿控制器（运营侧）
type ContentController struct {
	contentService *service.ContentService
}

func NewContentController(contentService *service.ContentService) *ContentController {
	return &ContentController{contentService: contentService}
}

// ==================== API 方法 ====================

// ListContents 稿件列表
// @Summary 稿件列表
// @Tags Content
// @Param order_id query int false "订单ID"
// @Param status query string false "状态过滤"
// @Success 200 {array} dto.ContentVO
// @Router /api/contents [get]
func (ctrl *ContentController) ListContents(c *gin.Context) {
	var req dto.ListContentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	filter := repository.ContentFilter{
		OrderID:       req.OrderID,
		OrderItemID:   req.OrderItemID,
		Status:        req.Status,
		ScheduledDate: req.ScheduledDate,
		Page:          req.Page,
		PageSize:      req.PageSize,
	}
	contents, total, err := ctrl.contentService.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": err.Error(),
		})
		return
	}

	vos := make([]dto.ContentVO, 0, len(contents))
	for i := range contents {
		vos = append(vos, toContentVO(&contents[i]))
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

// UpdateContent 修改稿件
// @Summary 修改稿件内容或排期
// @Tags Content
// @Param id path int true "稿件ID"
// @Param body body dto.UpdateContentRequest true "修改请求"
// @Success 200 {object} dto.ContentVO
// @Router /api/contents/{id} [put]
func (ctrl *ContentController) UpdateContent(c *gin.Context) {
	id, ok := ctrl.contentID(c)
	if !ok {
		return
	}

	var req dto.UpdateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	content, err := ctrl.contentService.UpdateDraft(c.Request.Context(), id, req.Title, req.Body, req.Tags, req.ScheduledDate, req.ScheduledTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    toContentVO(content),
	})
}

// ScheduleContent 确认排期
// @Summary 待确认稿确认排期
// @Tags Content
// @Param id path int true "稿件ID"
// @Success 200 {object} dto.ContentVO
// @Router /api/contents/{id}/schedule [post]
func (ctrl *ContentController) ScheduleContent(c *gin.Context) {
	id, ok := ctrl.contentID(c)
	if !ok {
		return
	}
	content, err := ctrl.contentService.Schedule(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    toContentVO(content),
	})
}

// MarkPosted 标记已发布
// @Summary 标记稿件已发布
// @Tags Content
// @Param id path int true "稿件ID"
// @Success 200 {object} dto.ContentVO
// @Router /api/contents/{id}/posted [post]
func (ctrl *ContentController) MarkPosted(c *gin.Context) {
	id, ok := ctrl.contentID(c)
	if !ok {
		return
	}
	content, err := ctrl.contentService.MarkPosted(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    toContentVO(content),
	})
}

// DeleteContent 删除稿件
// @Summary 删除未发布的稿件
// @Tags Content
// @Param id path int true "稿件ID"
// @Success 200
// @Router /api/contents/{id} [delete]
func (ctrl *ContentController) DeleteContent(c *gin.Context) {
	id, ok := ctrl.contentID(c)
	if !ok {
		return
	}
	if err := ctrl.contentService.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
	})
}

// DuplicateContent 复制稿件
// @Summary 复制稿件为新的待确认稿
// @Tags Content
// @Param id path int true "稿件ID"
// @Success 201 {object} dto.ContentVO
// @Router /api/contents/{id}/duplicate [post]
func (ctrl *ContentController) DuplicateContent(c *gin.Context) {
	id, ok := ctrl.contentID(c)
	if !ok {
		return
	}
	content, err := ctrl.contentService.Duplicate(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"code":    0,
		"message": "success",
		"data":    toContentVO(content),
	})
}

// ==================== 内部辅助 ====================

func (ctrl *ContentController) contentID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "无效的稿件ID",
		})
		return 0, false
	}
	return id, true
}

// ==================== 转换辅助 ====================

func toContentVO(content *model.GeneratedContent) dto.ContentVO {
	vo := dto.ContentVO{
		ID:             content.ID,
		OrderItemID:    content.OrderItemID,
		Title:          content.Title,
		Body:           content.Body,
		Tags:           content.Tags,
		ScheduledDate:  content.ScheduledDate,
		ScheduledTime:  content.ScheduledTime,
		Status:         content.Status,
		ReviewRequired: content.ReviewRequired,
	}
	if content.PostedAt != nil {
		vo.PostedAt = content.PostedAt.Format("2006-01-02 15:04:05")
	}
	return vo
}

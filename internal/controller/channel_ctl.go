package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"momcafe_saas_v1_202608/internal/api/dto"
	"momcafe_saas_v1_202608/internal/model"
	"momcafe_saas_v1_202608/internal/service"
)

// ==================== 控制器 ====================

// ChannelController 渠道目录控制器
type ChannelController struct {
	catalogService *service.CatalogService
}

func NewChannelController(catalogService *service.CatalogService) *ChannelController {
	return &ChannelController{catalogService: catalogService}
}

// ==================== API 方法 ====================

// ListChannels 渠道目录
// @Summary 渠道目录列表
// @Tags Channel
// @Produce json
// @Success 200 {array} dto.ChannelVO
// @Router /api/channels [get]
func (ctrl *ChannelController) ListChannels(c *gin.Context) {
	channels, err := ctrl.catalogService.ListChannels(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": err.Error(),
		})
		return
	}

	vos := make([]dto.ChannelVO, 0, len(channels))
	for _, ch := range channels {
		vos = append(vos, toChannelVO(&ch))
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    vos,
	})
}

// ==================== 转换辅助 ====================

func toChannelVO(ch *model.Channel) dto.ChannelVO {
	pricing := make(map[string]int64)
	for _, ct := range []string{model.ContentTypeReview, model.ContentTypeQuestion, model.ContentTypeHotdeal} {
		if ch.HasPriceFor(ct) {
			pricing[ct] = ch.PriceFor(ct)
		}
	}
	return dto.ChannelVO{
		ID:            ch.ID,
		Name:          ch.Name,
		Category:      ch.Category,
		URL:           ch.URL,
		MemberCount:   ch.MemberCount,
		ActivityLevel: ch.ActivityLevel,
		SuccessRate:   ch.SuccessRate,
		Pricing:       pricing,
	}
}

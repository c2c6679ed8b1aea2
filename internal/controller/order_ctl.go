package controller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"momcafe_saas_v1_202608/internal/api/dto"
	"momcafe_saas_v1_202608/internal/middleware"
	"momcafe_saas_v1_202608/internal/model"
	"momcafe_saas_v1_202608/internal/repository"
	"momcafe_saas_v1_202608/internal/service"
)

// ==================== 控制器 ====================

// OrderController 订单控制器
type OrderController struct {
	orderService *service.OrderService
}

func NewOrderController(orderService *service.OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

// ==================== API 方法 ====================

// Checkout 提交订单
// @Summary 结算下单
// @Tags Order
// @Accept json
// @Produce json
// @Param body body dto.CheckoutRequest true "结算请求"
// @Success 201 {object} dto.OrderVO
// @Router /api/orders [post]
func (ctrl *OrderController) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	order, err := ctrl.orderService.SubmitOrder(c.Request.Context(), middleware.MemberID(c), req.CartToken, &service.CheckoutInfo{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
	})
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrCartSessionNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{
			"code":    status,
			"message": err.Error(),
		})
		return
	}

	// 文案生成耗时较长，下单响应先返回，处理结果靠轮询订单详情
	go func(orderID int64) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := ctrl.orderService.ProcessOrder(ctx, orderID); err != nil {
			log.Printf("[OrderController] 订单处理失败 orderID=%d: %v", orderID, err)
		}
	}(order.ID)

	c.JSON(http.StatusCreated, gin.H{
		"code":    0,
		"message": "success",
		"data":    toOrderVO(order),
	})
}

// GetOrder 订单详情
// @Summary 订单详情（含明细与生成稿）
// @Tags Order
// @Param id path int true "订单ID"
// @Success 200 {object} dto.OrderDetailVO
// @Router /api/orders/{id} [get]
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "无效的订单ID",
		})
		return
	}

	order, err := ctrl.orderService.GetDetail(c.Request.Context(), id)
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
		"data":    toOrderDetailVO(order),
	})
}

// GetOrderByNo 按订单号查询
// 下单响应只回传订单号时，前端靠这个接口换取订单详情
// @Summary 按订单号查询订单
// @Tags Order
// @Param orderNo path string true "订单号"
// @Success 200 {object} dto.OrderVO
// @Router /api/orders/no/{orderNo} [get]
func (ctrl *OrderController) GetOrderByNo(c *gin.Context) {
	orderNo := c.Param("orderNo")
	if orderNo == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "无效的订单号",
		})
		return
	}

	order, err := ctrl.orderService.GetByOrderNo(c.Request.Context(), orderNo)
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
		"data":    toOrderVO(order),
	})
}

// parseOrderFilter 把查询参数转换为仓储过滤条件
// 日期参数格式为 YYYY-MM-DD，end_date 取当天结束时刻
func parseOrderFilter(req *dto.ListOrdersRequest) (repository.OrderFilter, error) {
	filter := repository.OrderFilter{
		Status:   req.Status,
		Keyword:  req.Keyword,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.StartDate != "" {
		start, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return filter, fmt.Errorf("start_date 格式错误: %s", req.StartDate)
		}
		filter.StartDate = &start
	}
	if req.EndDate != "" {
		day, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			return filter, fmt.Errorf("end_date 格式错误: %s", req.EndDate)
		}
		end := day.AddDate(0, 0, 1).Add(-time.Second)
		filter.EndDate = &end
	}
	return filter, nil
}

// ListOrders 订单列表（当前会员）
// @Summary 我的订单列表
// @Tags Order
// @Param status query string false "状态过滤"
// @Param page query int false "页码"
// @Success 200 {array} dto.OrderVO
// @Router /api/orders [get]
func (ctrl *OrderController) ListOrders(c *gin.Context) {
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
	filter.MemberID = middleware.MemberID(c)
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

// CancelOrder 取消订单
// @Summary 取消订单
// @Tags Order
// @Param id path int true "订单ID"
// @Success 200
// @Router /api/orders/{id}/cancel [post]
func (ctrl *OrderController) CancelOrder(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "无效的订单ID",
		})
		return
	}

	if err := ctrl.orderService.Cancel(c.Request.Context(), id); err != nil {
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

// ==================== 转换辅助 ====================

func toOrderVO(o *model.Order) *dto.OrderVO {
	vo := &dto.OrderVO{
		ID:             o.ID,
		OrderNo:        o.OrderNo,
		CustomerName:   o.CustomerName,
		ProductName:    o.ProductName,
		SubtotalAmount: o.SubtotalAmount,
		DiscountAmount: o.DiscountAmount,
		FinalAmount:    o.FinalAmount,
		Status:         o.Status,
		ItemCount:      len(o.Items),
		CreatedAt:      o.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if o.CompletedAt != nil {
		vo.CompletedAt = o.CompletedAt.Format("2006-01-02 15:04:05")
	}
	return vo
}

func toOrderDetailVO(o *model.Order) *dto.OrderDetailVO {
	vo := &dto.OrderDetailVO{
		OrderVO:       *toOrderVO(o),
		CustomerEmail: o.CustomerEmail,
		CustomerPhone: o.CustomerPhone,
		Company:       o.CustomerCompany,
		ProductURL:    o.ProductURL,
	}
	for i := range o.Items {
		vo.Items = append(vo.Items, toOrderItemVO(&o.Items[i]))
	}
	return vo
}

func toOrderItemVO(item *model.OrderItem) dto.OrderItemVO {
	vo := dto.OrderItemVO{
		ID:             item.ID,
		ChannelName:    item.ChannelName,
		ContentType:    item.ContentType,
		PostCount:      item.PostCount,
		PricePerPost:   item.PricePerPost,
		TotalPrice:     item.TotalPrice,
		GeneratedCount: item.GeneratedCount,
		Shortfall:      item.Shortfall,
		IsFallback:     item.IsFallback,
	}
	for i := range item.Contents {
		vo.Contents = append(vo.Contents, toContentVO(&item.Contents[i]))
	}
	return vo
}

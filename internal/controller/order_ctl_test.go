package controller

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"momcafe_saas_v1_202608/internal/api/dto"
	"momcafe_saas_v1_202608/internal/model"
	"momcafe_saas_v1_202608/internal/repository"
	"momcafe_saas_v1_202608/internal/service"
)

// ==================== 测试辅助 ====================

func setupOrderCtlTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "连接测试数据库失败")
	require.NoError(t, db.AutoMigrate(&model.Order{}, &model.OrderItem{}, &model.GeneratedContent{}), "数据库迁移失败")

	svc := service.NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewOrderItemRepository(db),
		repository.NewContentRepository(db),
		nil, nil, nil,
	)
	ctl := NewOrderController(svc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		c.Set("member_id", int64(1))
		c.Next()
	})
	r.GET("/api/orders", ctl.ListOrders)
	return r, db
}

func seedOrderAt(t *testing.T, db *gorm.DB, orderNo string, createdAt time.Time) {
	order := &model.Order{
		OrderNo:       orderNo,
		MemberID:      1,
		CustomerName:  "김하나",
		CustomerEmail: "hana@example.com",
		CustomerPhone: "010-1234-5678",
		Status:        model.OrderStatusCompleted,
	}
	order.CreatedAt = createdAt
	require.NoError(t, db.Create(order).Error, "写入测试订单失败")
}

// ==================== 日期过滤测试 ====================

func TestParseOrderFilterDateRange(t *testing.T) {
	filter, err := parseOrderFilter(&dto.ListOrdersRequest{
		StartDate: "2026-08-01",
		EndDate:   "2026-08-15",
	})
	require.NoError(t, err)
	require.NotNil(t, filter.StartDate)
	require.NotNil(t, filter.EndDate)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), *filter.StartDate)
	// end_date 含当天全天
	assert.Equal(t, time.Date(2026, 8, 15, 23, 59, 59, 0, time.UTC), *filter.EndDate)

	_, err = parseOrderFilter(&dto.ListOrdersRequest{StartDate: "08/01/2026"})
	assert.Error(t, err, "非法日期格式应报错")

	_, err = parseOrderFilter(&dto.ListOrdersRequest{EndDate: "not-a-date"})
	assert.Error(t, err, "非法日期格式应报错")
}

func TestListOrdersDateRangeFilter(t *testing.T) {
	r, db := setupOrderCtlTest(t)
	seedOrderAt(t, db, "ORD-OLD", time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC))
	seedOrderAt(t, db, "ORD-NEW", time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC))

	w, resp := gameRequest(t, r, http.MethodGet,
		"/api/orders?start_date=2026-08-10&end_date=2026-08-25", "")
	require.Equal(t, http.StatusOK, w.Code)

	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["total"], "只有区间内的订单应被命中")
	list := data["list"].([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, "ORD-NEW", list[0].(map[string]interface{})["order_no"])
}

func TestListOrdersBadDateFormat(t *testing.T) {
	r, _ := setupOrderCtlTest(t)

	w, resp := gameRequest(t, r, http.MethodGet, "/api/orders?start_date=2026.08.01", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, float64(400), resp["code"])
}

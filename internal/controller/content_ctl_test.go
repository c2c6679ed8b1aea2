package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"momcafe_saas_v1_202608/internal/model"
	"momcafe_saas_v1_202608/internal/repository"
	"momcafe_saas_v1_202608/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== 测试辅助 ====================

func setupContentCtlTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.GeneratedContent{}); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

func setupContentCtlRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	svc := service.NewContentService(repository.NewContentRepository(db), nil)
	ctl := NewContentController(svc)

	api := r.Group("/api")
	{
		api.GET("/contents", ctl.ListContents)
		api.POST("/contents/:id/schedule", ctl.ScheduleContent)
		api.POST("/contents/:id/posted", ctl.MarkPosted)
		api.DELETE("/contents/:id", ctl.DeleteContent)
		api.POST("/contents/:id/duplicate", ctl.DuplicateContent)
	}
	return r
}

func createCtlContent(t *testing.T, db *gorm.DB, status string) *model.GeneratedContent {
	content := &model.GeneratedContent{
		OrderItemID:   1,
		Title:         "테스트 게시글",
		Body:          "본문",
		ScheduledDate: "2026-09-01",
		ScheduledTime: "10:00",
		Status:        status,
	}
	if err := db.Create(content).Error; err != nil {
		t.Fatalf("写入测试稿件失败: %v", err)
	}
	return content
}

// ==================== API 测试 ====================

func TestScheduleContentAPI(t *testing.T) {
	db := setupContentCtlTestDB(t)
	r := setupContentCtlRouter(db)
	content := createCtlContent(t, db, model.ContentStatusPending)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/contents/1/schedule", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200, 实际 %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Code int `json:"code"`
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if resp.Code != 0 || resp.Data.Status != model.ContentStatusScheduled {
		t.Errorf("响应错误: %+v", resp)
	}

	var after model.GeneratedContent
	db.First(&after, content.ID)
	if after.Status != model.ContentStatusScheduled {
		t.Errorf("数据库状态应更新为 scheduled, 实际 %s", after.Status)
	}
}

func TestMarkPostedAPIRejectsPending(t *testing.T) {
	db := setupContentCtlTestDB(t)
	r := setupContentCtlRouter(db)
	createCtlContent(t, db, model.ContentStatusPending)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/contents/1/posted", nil)
	r.ServeHTTP(w, req)

	// pending 不能跳过排期直接发布
	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400, 实际 %d", w.Code)
	}
}

func TestDeleteContentAPIRejectsPosted(t *testing.T) {
	db := setupContentCtlTestDB(t)
	r := setupContentCtlRouter(db)
	createCtlContent(t, db, model.ContentStatusPosted)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/api/contents/1", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("已发布稿件删除应 400, 实际 %d", w.Code)
	}

	var count int64
	db.Model(&model.GeneratedContent{}).Count(&count)
	if count != 1 {
		t.Error("稿件不应被删除")
	}
}

func TestDuplicateContentAPI(t *testing.T) {
	db := setupContentCtlTestDB(t)
	r := setupContentCtlRouter(db)
	createCtlContent(t, db, model.ContentStatusPosted)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/contents/1/duplicate", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("期望 201, 实际 %d: %s", w.Code, w.Body.String())
	}

	var count int64
	db.Model(&model.GeneratedContent{}).Where("status = ?", model.ContentStatusPending).Count(&count)
	if count != 1 {
		t.Errorf("应产生 1 条 pending 副本, 实际 %d", count)
	}
}

func TestListContentsAPIFilter(t *testing.T) {
	db := setupContentCtlTestDB(t)
	r := setupContentCtlRouter(db)
	createCtlContent(t, db, model.ContentStatusPending)
	createCtlContent(t, db, model.ContentStatusScheduled)
	createCtlContent(t, db, model.ContentStatusScheduled)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/contents?status=scheduled", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200, 实际 %d", w.Code)
	}

	var resp struct {
		Data struct {
			Total int64 `json:"total"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data.Total != 2 {
		t.Errorf("scheduled 过滤应命中 2 条, 实际 %d", resp.Data.Total)
	}
}

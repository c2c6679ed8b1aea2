package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"momcafe_saas_v1_202608/internal/model"
	"momcafe_saas_v1_202608/internal/repository"
	"momcafe_saas_v1_202608/internal/service"
)

// ==================== 测试辅助 ====================

func setupGameCtlTest(t *testing.T) (*gin.Engine, *service.GameService, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "连接测试数据库失败")
	require.NoError(t, db.AutoMigrate(&model.Member{}, &model.GameProfile{}), "数据库迁移失败")

	svc := service.NewGameService(repository.NewGameRepository(db), repository.NewMemberRepository(db))
	ctl := NewGameController(svc)

	r := gin.New()
	r.Use(gin.Recovery())
	// 测试里用请求头直通会员 ID，跳过 JWT
	r.Use(func(c *gin.Context) {
		c.Set("member_id", int64(1))
		c.Next()
	})
	game := r.Group("/api/game")
	{
		game.GET("/profile", ctl.GetProfile)
		game.POST("/tap", ctl.Tap)
		game.POST("/check-in", ctl.CheckIn)
		game.POST("/referral", ctl.ApplyReferral)
		game.POST("/convert", ctl.ConvertPoints)
	}
	return r, svc, db
}

func gameRequest(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "解析响应失败: %s", w.Body.String())
	return w, resp
}

// ==================== 测试用例 ====================

func TestGameProfileAPI(t *testing.T) {
	r, _, _ := setupGameCtlTest(t)

	w, resp := gameRequest(t, r, http.MethodGet, "/api/game/profile", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, resp["code"])

	data := resp["data"].(map[string]interface{})
	assert.Len(t, data["referral_code"], 8)
	assert.EqualValues(t, model.TapDailyCap, data["tap_daily_cap"])
	assert.EqualValues(t, 0, data["points"])
}

func TestGameTapAPI(t *testing.T) {
	r, _, _ := setupGameCtlTest(t)

	w, resp := gameRequest(t, r, http.MethodPost, "/api/game/tap", `{"taps":10}`)
	require.Equal(t, http.StatusOK, w.Code)

	data := resp["data"].(map[string]interface{})
	assert.EqualValues(t, 10, data["earned"])
	assert.Equal(t, string(model.ModalNone), data["modal_state"])

	profile := data["profile"].(map[string]interface{})
	assert.EqualValues(t, 10, profile["taps_today"])
}

func TestGameTapAPIBadRequest(t *testing.T) {
	r, _, _ := setupGameCtlTest(t)

	w, _ := gameRequest(t, r, http.MethodPost, "/api/game/tap", `{"taps":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGameTapAPICapConflict(t *testing.T) {
	r, _, _ := setupGameCtlTest(t)

	w, _ := gameRequest(t, r, http.MethodPost, "/api/game/tap", `{"taps":500}`)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = gameRequest(t, r, http.MethodPost, "/api/game/tap", `{"taps":1}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGameCheckInAPI(t *testing.T) {
	r, _, _ := setupGameCtlTest(t)

	w, resp := gameRequest(t, r, http.MethodPost, "/api/game/check-in", "")
	require.Equal(t, http.StatusOK, w.Code)

	data := resp["data"].(map[string]interface{})
	assert.EqualValues(t, model.CheckInBase, data["earned"])
	assert.Equal(t, string(model.ModalSuccess), data["modal_state"])

	// 同一天重复签到返回冲突
	w, _ = gameRequest(t, r, http.MethodPost, "/api/game/check-in", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGameReferralAPINotFound(t *testing.T) {
	r, _, _ := setupGameCtlTest(t)

	w, _ := gameRequest(t, r, http.MethodPost, "/api/game/referral", `{"code":"NOSUCH00"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGameConvertAPI(t *testing.T) {
	r, svc, db := setupGameCtlTest(t)

	profile, err := svc.EnsureProfile(t.Context(), 1)
	require.NoError(t, err)
	require.NoError(t, db.Model(profile).Update("points", 250).Error)

	w, resp := gameRequest(t, r, http.MethodPost, "/api/game/convert", `{"points":200}`)
	require.Equal(t, http.StatusOK, w.Code)

	data := resp["data"].(map[string]interface{})
	assert.EqualValues(t, 2000, data["earned"])
	assert.Equal(t, string(model.ModalCreditConfirm), data["modal_state"])

	updated := data["profile"].(map[string]interface{})
	assert.EqualValues(t, 50, updated["points"])
}

func TestGameConvertAPIInsufficient(t *testing.T) {
	r, _, _ := setupGameCtlTest(t)

	w, _ := gameRequest(t, r, http.MethodPost, "/api/game/convert", `{"points":100}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

package service

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"gorm.io/datatypes"

	"momcafe_saas_v1_202608/internal/model"
	"momcafe_saas_v1_202608/internal/repository"
	"momcafe_saas_v1_202608/pkg/utils"
)

// 缓存键带实例序号，避免多实例（如并行测试）互相污染
var catalogSeq int64

// ==================== 服务实现 ====================

// CatalogService 渠道目录服务
// 目录数据变动极少，读取走 10 分钟本地缓存
type CatalogService struct {
	ChannelRepo repository.ChannelRepository
	cacheKey    string
}

func NewCatalogService(channelRepo repository.ChannelRepository) *CatalogService {
	return &CatalogService{
		ChannelRepo: channelRepo,
		cacheKey:    fmt.Sprintf("catalog:channels:%d", atomic.AddInt64(&catalogSeq, 1)),
	}
}

// ==================== 公共方法 ====================

// ListChannels 返回全部渠道，按成功率与会员数降序
func (s *CatalogService) ListChannels(ctx context.Context) ([]model.Channel, error) {
	if cached, ok := utils.GetCache(s.cacheKey); ok {
		if channels, ok := cached.([]model.Channel); ok {
			return channels, nil
		}
	}

	channels, err := s.ChannelRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询渠道目录失败: %v", err)
	}

	utils.SetCache(s.cacheKey, channels, 10*time.Minute)
	return channels, nil
}

// GetByNames 按名称批量查询（校验推荐渠道用，不走缓存）
func (s *CatalogService) GetByNames(ctx context.Context, names []string) ([]model.Channel, error) {
	return s.ChannelRepo.GetByNames(ctx, names)
}

// Briefs 转换为提示词用的渠道摘要
func (s *CatalogService) Briefs(ctx context.Context) ([]ChannelBrief, error) {
	channels, err := s.ListChannels(ctx)
	if err != nil {
		return nil, err
	}

	briefs := make([]ChannelBrief, 0, len(channels))
	for _, ch := range channels {
		var types []string
		for _, ct := range []string{model.ContentTypeReview, model.ContentTypeQuestion, model.ContentTypeHotdeal} {
			if ch.HasPriceFor(ct) {
				types = append(types, ct)
			}
		}
		briefs = append(briefs, ChannelBrief{
			Name:          ch.Name,
			Category:      ch.Category,
			MemberCount:   ch.MemberCount,
			ActivityLevel: ch.ActivityLevel,
			ContentTypes:  types,
		})
	}
	return briefs, nil
}

// ==================== 初始化种子数据 ====================

// SeedIfEmpty 首次启动时写入内置渠道目录
func (s *CatalogService) SeedIfEmpty(ctx context.Context) error {
	count, err := s.ChannelRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("检查渠道目录失败: %v", err)
	}
	if count > 0 {
		return nil
	}

	channels := defaultChannels()
	if err := s.ChannelRepo.CreateBatch(ctx, channels); err != nil {
		return fmt.Errorf("写入渠道种子数据失败: %v", err)
	}
	log.Printf("[CatalogService] 已写入 %d 个内置渠道", len(channels))
	return nil
}

func pricing(review, question, hotdeal int64) datatypes.JSONMap {
	m := datatypes.JSONMap{}
	if review > 0 {
		m[model.ContentTypeReview] = review
	}
	if question > 0 {
		m[model.ContentTypeQuestion] = question
	}
	if hotdeal > 0 {
		m[model.ContentTypeHotdeal] = hotdeal
	}
	return m
}

func defaultChannels() []model.Channel {
	return []model.Channel{
		{Name: "맘스홀릭 베이비", Category: "육아", URL: "https://cafe.naver.com/imsanbu", MemberCount: 2870000, ActivityLevel: model.ActivityVeryHigh, Pricing: pricing(45000, 35000, 40000), SuccessRate: 92},
		{Name: "레몬테라스", Category: "리빙", URL: "https://cafe.naver.com/remonterrace", MemberCount: 3420000, ActivityLevel: model.ActivityVeryHigh, Pricing: pricing(50000, 38000, 42000), SuccessRate: 90},
		{Name: "파우더룸", Category: "뷰티", URL: "https://cafe.naver.com/cosmania", MemberCount: 1650000, ActivityLevel: model.ActivityHigh, Pricing: pricing(40000, 30000, 35000), SuccessRate: 88},
		{Name: "쭉빵카페", Category: "패션", URL: "https://cafe.naver.com/ssambbang", MemberCount: 2100000, ActivityLevel: model.ActivityHigh, Pricing: pricing(38000, 28000, 33000), SuccessRate: 85},
		{Name: "강남엄마 vs 목동엄마", Category: "교육", URL: "https://cafe.naver.com/dongtanmom", MemberCount: 580000, ActivityLevel: model.ActivityHigh, Pricing: pricing(35000, 27000, 0), SuccessRate: 84},
		{Name: "몰테일 해외직구카페", Category: "쇼핑", URL: "https://cafe.naver.com/malltail", MemberCount: 920000, ActivityLevel: model.ActivityMedium, Pricing: pricing(30000, 22000, 28000), SuccessRate: 80},
		{Name: "지역맘 소모임", Category: "지역", URL: "https://cafe.naver.com/goyangmom", MemberCount: 310000, ActivityLevel: model.ActivityMedium, Pricing: pricing(25000, 18000, 22000), SuccessRate: 78},
		{Name: "다이어트는 내일부터", Category: "건강", URL: "https://cafe.naver.com/dietnote", MemberCount: 450000, ActivityLevel: model.ActivityMedium, Pricing: pricing(28000, 20000, 25000), SuccessRate: 76},
		{Name: "셀프 인테리어 카페", Category: "리빙", URL: "https://cafe.naver.com/overseer", MemberCount: 270000, ActivityLevel: model.ActivityLow, Pricing: pricing(22000, 16000, 0), SuccessRate: 72},
		{Name: "초등맘 공부방", Category: "교육", URL: "https://cafe.naver.com/elemom", MemberCount: 390000, ActivityLevel: model.ActivityMedium, Pricing: pricing(30000, 24000, 0), SuccessRate: 81},
	}
}

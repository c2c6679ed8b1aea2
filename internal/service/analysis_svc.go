package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/datatypes"

	"momcafe_saas_v1_202608/internal/model"
	"momcafe_saas_v1_202608/internal/repository"
	"momcafe_saas_v1_202608/pkg/utils"
)

// 同一会员两次分析之间的最短间隔，防止刷接口烧额度
const analysisCooldown = 30 * time.Second

var ErrAnalysisTooFrequent = errors.New("분석 요청이 너무 잦습니다. 잠시 후 다시 시도해 주세요")

// ==================== 接口定义 ====================

// ProductFetcher 商品页面抓取接口
type ProductFetcher interface {
	ValidateURL(rawURL string) error
	FetchProductInfo(ctx context.Context, rawURL string) (*ProductInfo, error)
}

// ProductAnalyzer 商品分析接口
type ProductAnalyzer interface {
	AnalyzeProduct(ctx context.Context, memberID int64, info *ProductInfo, channels []ChannelBrief) (*AnalysisPayload, string, error)
}

// ==================== 服务实现 ====================

// AnalysisService 商品链接分析服务
// 流程: 抓取页面 -> 读取渠道目录 -> AI 分析 -> 解析失败时降级为目录推荐
type AnalysisService struct {
	AnalysisRepo repository.AnalysisRepository
	Scraper      ProductFetcher
	AI           ProductAnalyzer
	Catalog      *CatalogService
}

func NewAnalysisService(
	analysisRepo repository.AnalysisRepository,
	scraper ProductFetcher,
	ai ProductAnalyzer,
	catalog *CatalogService,
) *AnalysisService {
	return &AnalysisService{
		AnalysisRepo: analysisRepo,
		Scraper:      scraper,
		AI:           ai,
		Catalog:      catalog,
	}
}

// ==================== 公共方法 ====================

// Analyze 分析商品链接并持久化结果
func (s *AnalysisService) Analyze(ctx context.Context, memberID int64, productURL string) (*model.AnalysisResult, error) {
	if err := s.Scraper.ValidateURL(productURL); err != nil {
		return nil, err
	}

	cooldownKey := fmt.Sprintf("analysis:cooldown:%d", memberID)
	if _, ok := utils.GetCache(cooldownKey); ok {
		return nil, ErrAnalysisTooFrequent
	}
	utils.SetCache(cooldownKey, true, analysisCooldown)

	// 抓取失败只降级，不阻断
	info, err := s.Scraper.FetchProductInfo(ctx, productURL)
	if err != nil {
		log.Printf("[AnalysisService] 页面抓取失败，仅用 URL 继续: %v", err)
		info = &ProductInfo{URL: productURL}
	}

	briefs, err := s.Catalog.Briefs(ctx)
	if err != nil {
		return nil, err
	}
	if len(briefs) == 0 {
		return nil, fmt.Errorf("渠道目录为空，无法分析")
	}

	payload, raw, err := s.AI.AnalyzeProduct(ctx, memberID, info, briefs)
	if err != nil {
		// 限额和网络错误直接上抛，让前端给出明确提示
		if errors.Is(err, ErrAIQuotaExceeded) || errors.Is(err, ErrAIUnavailable) {
			return nil, err
		}
		// 解析失败走目录降级推荐
		log.Printf("[AnalysisService] AI 结果不可用，降级为目录推荐: %v", err)
		return s.saveFallback(ctx, memberID, info, raw)
	}

	payload.Channels = s.sanitizeChannels(ctx, payload.Channels)
	if len(payload.Channels) == 0 {
		log.Printf("[AnalysisService] AI 推荐的渠道全部无效，降级为目录推荐")
		return s.saveFallback(ctx, memberID, info, raw)
	}

	result := &model.AnalysisResult{
		MemberID:       memberID,
		ProductURL:     productURL,
		ProductName:    firstNonEmpty(payload.ProductName, info.Name),
		ProductSummary: firstNonEmpty(payload.ProductSummary, info.Summary),
		OverallScore:   payload.OverallScore,
		AIStatus:       model.AnalysisAIDone,
		RawResponse:    raw,
	}
	if err := result.SetChannels(payload.Channels); err != nil {
		return nil, fmt.Errorf("序列化推荐渠道失败: %v", err)
	}
	if insights, err := json.Marshal(payload.Insights); err == nil {
		result.Insights = datatypes.JSON(insights)
	}

	if err := s.AnalysisRepo.Create(ctx, result); err != nil {
		return nil, fmt.Errorf("保存分析结果失败: %v", err)
	}
	return result, nil
}

// GetByID 查询单个分析结果
func (s *AnalysisService) GetByID(ctx context.Context, id int64) (*model.AnalysisResult, error) {
	result, err := s.AnalysisRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("분석 결과를 찾을 수 없습니다")
	}
	return result, nil
}

// ListByMember 分页查询会员的分析历史
func (s *AnalysisService) ListByMember(ctx context.Context, memberID int64, page, pageSize int) ([]model.AnalysisResult, int64, error) {
	return s.AnalysisRepo.ListByMember(ctx, memberID, page, pageSize)
}

// ==================== 降级与校验 ====================

// sanitizeChannels 过滤掉目录中不存在、或内容类型无定价的推荐项
func (s *AnalysisService) sanitizeChannels(ctx context.Context, channels []model.RecommendedChannel) []model.RecommendedChannel {
	names := make([]string, 0, len(channels))
	for _, rc := range channels {
		names = append(names, rc.ChannelName)
	}
	catalog, err := s.Catalog.GetByNames(ctx, names)
	if err != nil {
		return nil
	}
	byName := make(map[string]*model.Channel, len(catalog))
	for i := range catalog {
		byName[catalog[i].Name] = &catalog[i]
	}

	valid := make([]model.RecommendedChannel, 0, len(channels))
	for _, rc := range channels {
		ch, ok := byName[rc.ChannelName]
		if !ok || !model.IsValidContentType(rc.ContentType) || !ch.HasPriceFor(rc.ContentType) {
			continue
		}
		if rc.RecommendedPostCount < model.PostCountMin {
			rc.RecommendedPostCount = model.PostCountMin
		}
		if rc.RecommendedPostCount > model.PostCountMax {
			rc.RecommendedPostCount = model.PostCountMax
		}
		valid = append(valid, rc)
	}
	return valid
}

// saveFallback 按成功率取目录前三名生成保底推荐
func (s *AnalysisService) saveFallback(ctx context.Context, memberID int64, info *ProductInfo, raw string) (*model.AnalysisResult, error) {
	catalog, err := s.Catalog.ListChannels(ctx)
	if err != nil {
		return nil, err
	}

	var channels []model.RecommendedChannel
	for _, ch := range catalog {
		if len(channels) >= 3 {
			break
		}
		ct := model.ContentTypeReview
		if !ch.HasPriceFor(ct) {
			ct = model.ContentTypeQuestion
			if !ch.HasPriceFor(ct) {
				continue
			}
		}
		channels = append(channels, model.RecommendedChannel{
			ChannelName:          ch.Name,
			ContentType:          ct,
			RecommendedPostCount: 3,
			Score:                int(ch.SuccessRate),
			Reason:               "활동성과 성공률이 높은 추천 채널입니다",
		})
	}
	if len(channels) == 0 {
		return nil, fmt.Errorf("渠道目录为空，无法生成保底推荐")
	}

	result := &model.AnalysisResult{
		MemberID:       memberID,
		ProductURL:     info.URL,
		ProductName:    firstNonEmpty(info.Name, info.URL),
		ProductSummary: info.Summary,
		OverallScore:   60,
		AIStatus:       model.AnalysisAIFallback,
		RawResponse:    raw,
	}
	if err := result.SetChannels(channels); err != nil {
		return nil, fmt.Errorf("序列化保底推荐失败: %v", err)
	}
	if err := s.AnalysisRepo.Create(ctx, result); err != nil {
		return nil, fmt.Errorf("保存分析结果失败: %v", err)
	}
	return result, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"momcafe_saas_v1_202608/internal/model"
	"momcafe_saas_v1_202608/internal/repository"
)

// ==================== Mock 实现 ====================

type mockFetcher struct {
	fetchFn func(ctx context.Context, rawURL string) (*ProductInfo, error)
}

func (m *mockFetcher) ValidateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("无效的商品链接")
	}
	return nil
}

func (m *mockFetcher) FetchProductInfo(ctx context.Context, rawURL string) (*ProductInfo, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx, rawURL)
	}
	return &ProductInfo{URL: rawURL, Name: "유아용 물티슈", Summary: "저자극 물티슈"}, nil
}

type mockAnalyzer struct {
	analyzeFn func(ctx context.Context, memberID int64, info *ProductInfo, channels []ChannelBrief) (*AnalysisPayload, string, error)
}

func (m *mockAnalyzer) AnalyzeProduct(ctx context.Context, memberID int64, info *ProductInfo, channels []ChannelBrief) (*AnalysisPayload, string, error) {
	if m.analyzeFn != nil {
		return m.analyzeFn(ctx, memberID, info, channels)
	}
	return &AnalysisPayload{
		ProductName:    info.Name,
		ProductSummary: info.Summary,
		OverallScore:   85,
		Channels: []model.RecommendedChannel{
			{ChannelName: "맘스홀릭 베이비", ContentType: "review", RecommendedPostCount: 3, Score: 90, Reason: "육아 최대 채널"},
		},
	}, `{"product_name":"유아용 물티슈"}`, nil
}

// ==================== 测试基础设施 ====================

// 会员 ID 递增避开分析冷却限制
var testMemberSeq int64 = 100

func nextMemberID() int64 {
	return atomic.AddInt64(&testMemberSeq, 1)
}

func newTestAnalysisService(t *testing.T, fetcher ProductFetcher, analyzer ProductAnalyzer) *AnalysisService {
	db := setupServiceTestDB(t)
	seedTestChannels(t, db)
	catalog := NewCatalogService(repository.NewChannelRepository(db))
	return NewAnalysisService(repository.NewAnalysisRepository(db), fetcher, analyzer, catalog)
}

// ==================== 分析测试 ====================

func TestAnalyzeSuccess(t *testing.T) {
	svc := newTestAnalysisService(t, &mockFetcher{}, &mockAnalyzer{})

	result, err := svc.Analyze(context.Background(), nextMemberID(), "https://smartstore.naver.com/test/products/1")
	if err != nil {
		t.Fatalf("分析失败: %v", err)
	}
	if result.AIStatus != model.AnalysisAIDone {
		t.Errorf("状态应为 done, 实际 %s", result.AIStatus)
	}
	if result.ProductName != "유아용 물티슈" {
		t.Errorf("商品名错误: %s", result.ProductName)
	}

	channels, err := result.Channels()
	if err != nil || len(channels) != 1 {
		t.Fatalf("推荐渠道应为 1 个: %v", err)
	}
	if channels[0].ChannelName != "맘스홀릭 베이비" {
		t.Errorf("推荐渠道错误: %s", channels[0].ChannelName)
	}
}

func TestAnalyzeFallbackOnBadResponse(t *testing.T) {
	analyzer := &mockAnalyzer{
		analyzeFn: func(_ context.Context, _ int64, _ *ProductInfo, _ []ChannelBrief) (*AnalysisPayload, string, error) {
			return nil, "not json at all", fmt.Errorf("%w: 格式错误", ErrAIBadResponse)
		},
	}
	svc := newTestAnalysisService(t, &mockFetcher{}, analyzer)

	// 解析失败降级为目录推荐，不上抛错误
	result, err := svc.Analyze(context.Background(), nextMemberID(), "https://smartstore.naver.com/test/products/1")
	if err != nil {
		t.Fatalf("解析失败应降级而非报错: %v", err)
	}
	if result.AIStatus != model.AnalysisAIFallback {
		t.Errorf("状态应为 fallback, 实际 %s", result.AIStatus)
	}
	if result.RawResponse != "not json at all" {
		t.Error("应保留原始返回供排查")
	}

	channels, _ := result.Channels()
	if len(channels) == 0 {
		t.Fatal("降级推荐不应为空")
	}
	// 目录兜底按成功率排序取前三
	if channels[0].ChannelName != "맘스홀릭 베이비" {
		t.Errorf("兜底首选应为成功率最高渠道, 实际 %s", channels[0].ChannelName)
	}
}

func TestAnalyzeQuotaErrorPassesThrough(t *testing.T) {
	analyzer := &mockAnalyzer{
		analyzeFn: func(_ context.Context, _ int64, _ *ProductInfo, _ []ChannelBrief) (*AnalysisPayload, string, error) {
			return nil, "", fmt.Errorf("%w: 429", ErrAIQuotaExceeded)
		},
	}
	svc := newTestAnalysisService(t, &mockFetcher{}, analyzer)

	// 限额错误直接上抛，不降级
	_, err := svc.Analyze(context.Background(), nextMemberID(), "https://smartstore.naver.com/test/products/1")
	if !errors.Is(err, ErrAIQuotaExceeded) {
		t.Errorf("限额错误应上抛, 实际 %v", err)
	}
}

func TestAnalyzeScrapeFailureDegrades(t *testing.T) {
	fetcher := &mockFetcher{
		fetchFn: func(_ context.Context, rawURL string) (*ProductInfo, error) {
			return nil, fmt.Errorf("抓取商品页面失败: HTTP 403")
		},
	}
	svc := newTestAnalysisService(t, fetcher, &mockAnalyzer{})

	// 抓取失败只降级为仅用 URL，分析照常进行
	result, err := svc.Analyze(context.Background(), nextMemberID(), "https://smartstore.naver.com/test/products/1")
	if err != nil {
		t.Fatalf("抓取失败不应中断分析: %v", err)
	}
	if result.AIStatus != model.AnalysisAIDone {
		t.Errorf("状态应为 done, 实际 %s", result.AIStatus)
	}
}

func TestAnalyzeCooldown(t *testing.T) {
	svc := newTestAnalysisService(t, &mockFetcher{}, &mockAnalyzer{})
	memberID := nextMemberID()

	if _, err := svc.Analyze(context.Background(), memberID, "https://smartstore.naver.com/test/products/1"); err != nil {
		t.Fatalf("首次分析失败: %v", err)
	}
	// 冷却期内重复请求被拒绝
	if _, err := svc.Analyze(context.Background(), memberID, "https://smartstore.naver.com/test/products/2"); !errors.Is(err, ErrAnalysisTooFrequent) {
		t.Errorf("冷却期内应报 ErrAnalysisTooFrequent, 实际 %v", err)
	}
}

func TestAnalyzeSanitizesUnknownChannels(t *testing.T) {
	analyzer := &mockAnalyzer{
		analyzeFn: func(_ context.Context, _ int64, info *ProductInfo, _ []ChannelBrief) (*AnalysisPayload, string, error) {
			return &AnalysisPayload{
				ProductName:  info.Name,
				OverallScore: 80,
				Channels: []model.RecommendedChannel{
					{ChannelName: "존재하지않는카페", ContentType: "review", RecommendedPostCount: 3},
					{ChannelName: "맘스홀릭 베이비", ContentType: "review", RecommendedPostCount: 99},
				},
			}, "{}", nil
		},
	}
	svc := newTestAnalysisService(t, &mockFetcher{}, analyzer)

	result, err := svc.Analyze(context.Background(), nextMemberID(), "https://smartstore.naver.com/test/products/1")
	if err != nil {
		t.Fatalf("分析失败: %v", err)
	}

	channels, _ := result.Channels()
	if len(channels) != 1 {
		t.Fatalf("目录外渠道应被过滤, 实际保留 %d 个", len(channels))
	}
	// 篇数超上限收敛
	if channels[0].RecommendedPostCount != model.PostCountMax {
		t.Errorf("推荐篇数应收敛到 %d, 实际 %d", model.PostCountMax, channels[0].RecommendedPostCount)
	}
}

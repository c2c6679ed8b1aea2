package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"momcafe_saas_v1_202608/internal/model"
	"momcafe_saas_v1_202608/internal/repository"
	"momcafe_saas_v1_202608/pkg/utils"
)

// ==================== 配置 ====================

type AIConfig struct {
	APIKey    string
	ModelName string // 默认 gemini-2.5-flash
}

// ==================== 错误分类 ====================

// 调用方需要区分限额、网络、解析三类失败以给出不同的用户提示
var (
	ErrAIQuotaExceeded = errors.New("AI 调用额度已用尽")
	ErrAIUnavailable   = errors.New("AI 服务暂时不可用")
	ErrAIBadResponse   = errors.New("AI 返回内容无法解析")
)

// ==================== 统一数据结构 ====================

// ChannelBrief 提示词中的渠道摘要
type ChannelBrief struct {
	Name          string   `json:"name"`
	Category      string   `json:"category"`
	MemberCount   int64    `json:"member_count"`
	ActivityLevel string   `json:"activity_level"`
	ContentTypes  []string `json:"content_types"`
}

// AnalysisPayload 商品分析的结构化返回
type AnalysisPayload struct {
	ProductName    string                     `json:"product_name"`
	ProductSummary string                     `json:"product_summary"`
	OverallScore   int                        `json:"overall_score"`
	Channels       []model.RecommendedChannel `json:"recommended_channels"`
	Insights       model.AnalysisInsights     `json:"insights"`
}

// PostDraft 单条生成稿
type PostDraft struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags"`
}

// ==================== 服务实现 ====================

// AIService Gemini 调用封装
// 所有调用结果（含失败）都会写入 ai_call_logs 便于核算成本
type AIService struct {
	Config    *AIConfig
	AILogRepo repository.AICallLogRepository
	client    *genai.Client
}

// NewAIService 创建 AI 服务
func NewAIService(cfg *AIConfig, logRepo repository.AICallLogRepository) (*AIService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("缺少 GEMINI_API_KEY 配置")
	}
	if cfg.ModelName == "" {
		cfg.ModelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("初始化 Gemini 客户端失败: %v", err)
	}

	return &AIService{Config: cfg, AILogRepo: logRepo, client: client}, nil
}

// ==================== 商品分析 ====================

// AnalyzeProduct 根据商品信息与渠道目录生成推荐结果
func (s *AIService) AnalyzeProduct(ctx context.Context, memberID int64, info *ProductInfo, channels []ChannelBrief) (*AnalysisPayload, string, error) {
	prompt := buildAnalysisPrompt(info, channels)

	raw, err := s.generate(ctx, memberID, 0, model.AICallTypeAnalysis, prompt)
	if err != nil {
		return nil, "", err
	}

	var payload AnalysisPayload
	outcome := utils.ParseAIJSON(raw, &payload)
	if !outcome.OK {
		log.Printf("[AIService] 分析结果解析失败: %v", outcome.Err)
		return nil, raw, fmt.Errorf("%w: %v", ErrAIBadResponse, outcome.Err)
	}
	return &payload, raw, nil
}

// ==================== 文案生成 ====================

// GeneratePosts 为单个渠道生成 count 条妈妈社群风格的文案
// 返回的条数可能少于 count，由调用方决定是否补齐
func (s *AIService) GeneratePosts(ctx context.Context, memberID, itemID int64, productName, productSummary, channelName, contentType string, count int) ([]PostDraft, string, error) {
	prompt := buildPostsPrompt(productName, productSummary, channelName, contentType, count)

	raw, err := s.generate(ctx, memberID, itemID, model.AICallTypePosts, prompt)
	if err != nil {
		return nil, "", err
	}

	var drafts []PostDraft
	outcome := utils.ParseAIJSON(raw, &drafts)
	if !outcome.OK {
		log.Printf("[AIService] 文案解析失败 itemID=%d: %v", itemID, outcome.Err)
		return nil, raw, fmt.Errorf("%w: %v", ErrAIBadResponse, outcome.Err)
	}
	return drafts, raw, nil
}

// ==================== 底层调用 ====================

func (s *AIService) generate(ctx context.Context, memberID, refID int64, callType, prompt string) (string, error) {
	gm := s.client.GenerativeModel(s.Config.ModelName)
	gm.ResponseMIMEType = "application/json"

	start := time.Now()
	resp, err := gm.GenerateContent(ctx, genai.Text(prompt))
	duration := time.Since(start).Milliseconds()

	if err != nil {
		s.writeLog(ctx, memberID, refID, callType, duration, 0, model.AICallStatusFailed, err.Error())
		return "", classifyGenaiError(err)
	}

	raw := extractText(resp)
	if raw == "" {
		s.writeLog(ctx, memberID, refID, callType, duration, estimateCost(resp), model.AICallStatusFailed, "空响应")
		return "", fmt.Errorf("%w: 空响应", ErrAIBadResponse)
	}

	s.writeLog(ctx, memberID, refID, callType, duration, estimateCost(resp), model.AICallStatusSuccess, "")
	return raw, nil
}

// gemini-2.5-flash 单价（美元/百万 token）
const (
	costPerMInputTokens  = 0.30
	costPerMOutputTokens = 2.50
)

// estimateCost 按用量元数据估算单次调用成本
func estimateCost(resp *genai.GenerateContentResponse) float64 {
	if resp == nil || resp.UsageMetadata == nil {
		return 0
	}
	u := resp.UsageMetadata
	return float64(u.PromptTokenCount)*costPerMInputTokens/1e6 +
		float64(u.CandidatesTokenCount)*costPerMOutputTokens/1e6
}

func (s *AIService) writeLog(ctx context.Context, memberID, refID int64, callType string, durationMs int64, costUSD float64, status, errMsg string) {
	if s.AILogRepo == nil {
		return
	}
	entry := &model.AICallLog{
		MemberID:   memberID,
		RefID:      refID,
		CallType:   callType,
		ModelName:  s.Config.ModelName,
		DurationMs: durationMs,
		CostUSD:    costUSD,
		Status:     status,
		ErrorMsg:   errMsg,
	}
	if err := s.AILogRepo.Create(ctx, entry); err != nil {
		log.Printf("[AIService] 写入调用日志失败: %v", err)
	}
}

// extractText 拼接响应中的所有文本片段并去掉代码围栏
func extractText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	return utils.StripCodeFence(sb.String())
}

func classifyGenaiError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && (apiErr.Code == 429 || apiErr.Code == 403) {
		return fmt.Errorf("%w: %v", ErrAIQuotaExceeded, err)
	}
	if strings.Contains(err.Error(), "quota") || strings.Contains(err.Error(), "RESOURCE_EXHAUSTED") {
		return fmt.Errorf("%w: %v", ErrAIQuotaExceeded, err)
	}
	return fmt.Errorf("%w: %v", ErrAIUnavailable, err)
}

// ==================== 提示词构建 ====================

func buildAnalysisPrompt(info *ProductInfo, channels []ChannelBrief) string {
	var sb strings.Builder
	sb.WriteString("당신은 한국 맘카페 마케팅 전문가입니다. 아래 상품을 분석하고 마케팅에 가장 적합한 맘카페 채널을 추천해 주세요.\n\n")
	sb.WriteString(fmt.Sprintf("상품 URL: %s\n", info.URL))
	if info.Name != "" {
		sb.WriteString(fmt.Sprintf("상품명: %s\n", info.Name))
	}
	if info.Summary != "" {
		sb.WriteString(fmt.Sprintf("상품 설명: %s\n", info.Summary))
	}

	sb.WriteString("\n사용 가능한 채널 목록:\n")
	for _, ch := range channels {
		sb.WriteString(fmt.Sprintf("- %s (카테고리: %s, 회원수: %d, 활동성: %s, 콘텐츠: %s)\n",
			ch.Name, ch.Category, ch.MemberCount, ch.ActivityLevel, strings.Join(ch.ContentTypes, "/")))
	}

	sb.WriteString(`
위 목록에 있는 채널만 사용해서 3~5개를 추천하고, 반드시 아래 JSON 형식으로만 응답하세요:
{
  "product_name": "상품명",
  "product_summary": "한 줄 요약",
  "overall_score": 0에서 100 사이 정수,
  "recommended_channels": [
    {"channel_name": "채널명", "content_type": "review|question|hotdeal", "recommended_post_count": 정수, "score": 정수, "reason": "추천 이유"}
  ],
  "insights": {"competitors": ["경쟁 제품"], "best_timing": "best posting time", "keyword_trends": ["키워드"]}
}`)
	return sb.String()
}

func buildPostsPrompt(productName, productSummary, channelName, contentType string, count int) string {
	style := map[string]string{
		model.ContentTypeReview:   "실제 사용해 본 엄마의 솔직한 후기 말투",
		model.ContentTypeQuestion: "다른 엄마들에게 자연스럽게 물어보는 질문 말투",
		model.ContentTypeHotdeal:  "할인 정보를 공유하는 핫딜 제보 말투",
	}[contentType]

	return fmt.Sprintf(`당신은 한국 맘카페 글쓰기 전문가입니다.
상품명: %s
상품 설명: %s
게시 채널: %s
콘텐츠 유형: %s (%s)

위 상품에 대해 서로 다른 게시글을 정확히 %d개 작성하세요. 광고 티가 나지 않는 자연스러운 말투를 사용하세요.
반드시 아래 JSON 배열 형식으로만 응답하세요:
[{"title": "제목", "body": "본문", "tags": ["태그1", "태그2"]}]`,
		productName, productSummary, channelName, contentType, style, count)
}

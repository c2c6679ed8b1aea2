package service

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ==================== 配置 ====================

type ScraperConfig struct {
	Timeout   time.Duration
	UserAgent string
}

// ==================== 统一数据结构 ====================

// ProductInfo 商品页面抓取结果
type ProductInfo struct {
	URL     string `json:"url"`
	Name    string `json:"name"`
	Summary string `json:"summary"`
}

// ==================== 服务实现 ====================

// ScraperService 商品链接抓取服务
// 只取页面元信息（og:title / og:description），不做全文解析
type ScraperService struct {
	Config *ScraperConfig
	client *resty.Client
}

// NewScraperService 创建抓取服务
func NewScraperService(cfg *ScraperConfig) *ScraperService {
	if cfg == nil {
		cfg = &ScraperConfig{}
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Mozilla/5.0 (compatible; MomcafeBot/1.0)"
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))

	return &ScraperService{Config: cfg, client: client}
}

// ==================== 公共方法 ====================

// ValidateURL 校验商品链接（http/https 且带主机名）
func (s *ScraperService) ValidateURL(rawURL string) error {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return fmt.Errorf("无效的商品链接: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("无效的商品链接: 仅支持 http/https")
	}
	if u.Host == "" {
		return fmt.Errorf("无效的商品链接: 缺少主机名")
	}
	return nil
}

// FetchProductInfo 抓取商品页面元信息
// 抓取失败不阻断分析流程，调用方可降级为仅用 URL 继续
func (s *ScraperService) FetchProductInfo(ctx context.Context, rawURL string) (*ProductInfo, error) {
	if err := s.ValidateURL(rawURL); err != nil {
		return nil, err
	}

	resp, err := s.client.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("抓取商品页面失败: %v", err)
	}
	if resp.StatusCode() >= 400 {
		return nil, fmt.Errorf("抓取商品页面失败: HTTP %d", resp.StatusCode())
	}

	body := resp.String()

	info := &ProductInfo{
		URL:     rawURL,
		Name:    extractMeta(body, "og:title"),
		Summary: extractMeta(body, "og:description"),
	}
	if info.Name == "" {
		info.Name = extractTitle(body)
	}
	if info.Name == "" {
		// 页面没有可用标题，退化为主机名
		u, _ := url.Parse(rawURL)
		info.Name = u.Host
	}

	return info, nil
}

// ==================== 解析辅助 ====================

var (
	// property/name 与 content 顺序在不同站点不一致，两种都匹配
	metaRePrefix = `<meta[^>]+(?:property|name)=["']%s["'][^>]+content=["']([^"']*)["']`
	metaReSuffix = `<meta[^>]+content=["']([^"']*)["'][^>]+(?:property|name)=["']%s["']`
	titleRe      = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
)

func extractMeta(body, property string) string {
	quoted := regexp.QuoteMeta(property)
	for _, pattern := range []string{metaRePrefix, metaReSuffix} {
		re := regexp.MustCompile(`(?i)` + fmt.Sprintf(pattern, quoted))
		if m := re.FindStringSubmatch(body); len(m) > 1 {
			return strings.TrimSpace(html.UnescapeString(m[1]))
		}
	}
	return ""
}

func extractTitle(body string) string {
	if m := titleRe.FindStringSubmatch(body); len(m) > 1 {
		return strings.TrimSpace(html.UnescapeString(m[1]))
	}
	return ""
}

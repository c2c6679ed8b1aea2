package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"momcafe_saas_v1_202608/internal/model"
	"momcafe_saas_v1_202608/internal/repository"
)

// 会话闲置 2 小时后过期，由清理任务回收
const cartSessionTTL = 2 * time.Hour

var (
	ErrCartSessionNotFound = errors.New("장바구니 세션을 찾을 수 없습니다")
	ErrChannelNotSelected  = errors.New("선택되지 않은 채널입니다")
	ErrEmptySelection      = errors.New("하나 이상의 채널을 선택해주세요")
)

// ==================== 会话数据结构 ====================

// ChannelOffer 购物车页展示的单个候选渠道
type ChannelOffer struct {
	ChannelName   string           `json:"channel_name"`
	Category      string           `json:"category"`
	MemberCount   int64            `json:"member_count"`
	ActivityLevel string           `json:"activity_level"`
	SuccessRate   float64          `json:"success_rate"`
	Recommended   bool             `json:"recommended"`
	ContentType   string           `json:"content_type"`
	PostCount     int              `json:"post_count"`
	Reason        string           `json:"reason,omitempty"`
	Pricing       map[string]int64 `json:"pricing"`
}

// CartSelection 单个渠道的当前选择状态
type CartSelection struct {
	ChannelName string `json:"channel_name"`
	ContentType string `json:"content_type"`
	PostCount   int    `json:"post_count"`
	PricePer    int64  `json:"price_per_post"`
}

// Total 该渠道选择项小计
func (sel *CartSelection) Total() int64 {
	return sel.PricePer * int64(sel.PostCount)
}

// CartLine 已加入购物车的一行
type CartLine struct {
	ChannelName string `json:"channel_name"`
	ContentType string `json:"content_type"`
	PostCount   int    `json:"post_count"`
	PricePer    int64  `json:"price_per_post"`
	LineTotal   int64  `json:"line_total"`
}

// CartTotals 购物车合计
// 金额一律为韩元整数；两行以上享受套餐折扣，折扣额向下取整
type CartTotals struct {
	LineCount int   `json:"line_count"`
	Subtotal  int64 `json:"subtotal"`
	Discount  int64 `json:"discount"`
	Final     int64 `json:"final"`
}

// CartSession 一次分析对应的购物车会话，仅存内存
type CartSession struct {
	Token      string
	AnalysisID int64
	MemberID   int64
	Offers     []ChannelOffer
	Selections map[string]*CartSelection
	Lines      []CartLine
	TouchedAt  time.Time
}

// ==================== 服务实现 ====================

// CartService 购物车会话服务
// 购物车不落库，下单成功后会话即销毁
type CartService struct {
	AnalysisRepo repository.AnalysisRepository
	Catalog      *CatalogService

	mu       sync.RWMutex
	sessions map[string]*CartSession
}

func NewCartService(analysisRepo repository.AnalysisRepository, catalog *CatalogService) *CartService {
	return &CartService{
		AnalysisRepo: analysisRepo,
		Catalog:      catalog,
		sessions:     make(map[string]*CartSession),
	}
}

// ==================== 会话生命周期 ====================

// CreateSession 基于一次分析结果创建购物车会话
func (s *CartService) CreateSession(ctx context.Context, memberID, analysisID int64) (*CartSession, error) {
	analysis, err := s.AnalysisRepo.GetByID(ctx, analysisID)
	if err != nil {
		return nil, fmt.Errorf("분석 결과를 찾을 수 없습니다")
	}

	recommended, err := analysis.Channels()
	if err != nil {
		return nil, fmt.Errorf("解析推荐渠道失败: %v", err)
	}

	catalog, err := s.Catalog.ListChannels(ctx)
	if err != nil {
		return nil, err
	}

	recByName := make(map[string]model.RecommendedChannel, len(recommended))
	for _, rc := range recommended {
		recByName[rc.ChannelName] = rc
	}

	// 推荐渠道排前面，目录里其余渠道跟在后面供手动追加
	offers := make([]ChannelOffer, 0, len(catalog))
	for _, ch := range catalog {
		offer := ChannelOffer{
			ChannelName:   ch.Name,
			Category:      ch.Category,
			MemberCount:   ch.MemberCount,
			ActivityLevel: ch.ActivityLevel,
			SuccessRate:   ch.SuccessRate,
			ContentType:   model.ContentTypeReview,
			PostCount:     3,
			Pricing:       pricingMap(&ch),
		}
		if rc, ok := recByName[ch.Name]; ok {
			offer.Recommended = true
			offer.ContentType = rc.ContentType
			offer.PostCount = rc.RecommendedPostCount
			offer.Reason = rc.Reason
		}
		if len(offer.Pricing) == 0 {
			continue
		}
		if _, ok := offer.Pricing[offer.ContentType]; !ok {
			for _, ct := range []string{model.ContentTypeReview, model.ContentTypeQuestion, model.ContentTypeHotdeal} {
				if _, ok := offer.Pricing[ct]; ok {
					offer.ContentType = ct
					break
				}
			}
		}
		if offer.Recommended {
			offers = append([]ChannelOffer{offer}, offers...)
		} else {
			offers = append(offers, offer)
		}
	}

	session := &CartSession{
		Token:      uuid.New().String(),
		AnalysisID: analysisID,
		MemberID:   memberID,
		Offers:     offers,
		Selections: make(map[string]*CartSelection),
		TouchedAt:  time.Now(),
	}

	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()
	return snapshotSession(session), nil
}

// GetSession 查询会话并刷新闲置时间，返回的是快照副本
func (s *CartService) GetSession(token string) (*CartSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.lockedSession(token)
	if err != nil {
		return nil, err
	}
	return snapshotSession(sess), nil
}

// lockedSession 取出会话并刷新闲置时间，调用方必须持有 s.mu 写锁
func (s *CartService) lockedSession(token string) (*CartSession, error) {
	live, ok := s.sessions[token]
	if !ok || time.Since(live.TouchedAt) > cartSessionTTL {
		delete(s.sessions, token)
		return nil, ErrCartSessionNotFound
	}
	live.TouchedAt = time.Now()
	return live, nil
}

// DropSession 下单成功后销毁会话
func (s *CartService) DropSession(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// PurgeExpired 回收过期会话，返回回收数量
func (s *CartService) PurgeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	purged := 0
	for token, sess := range s.sessions {
		if time.Since(sess.TouchedAt) > cartSessionTTL {
			delete(s.sessions, token)
			purged++
		}
	}
	return purged
}

// ==================== 选择操作 ====================

// ToggleSelect 勾选/取消勾选渠道
// 勾选时以候选项的推荐内容类型和篇数初始化
func (s *CartService) ToggleSelect(token, channelName string) (*CartSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lockedSession(token)
	if err != nil {
		return nil, err
	}

	if _, ok := sess.Selections[channelName]; ok {
		delete(sess.Selections, channelName)
		return snapshotSession(sess), nil
	}

	offer := findOffer(sess, channelName)
	if offer == nil {
		return nil, fmt.Errorf("존재하지 않는 채널입니다: %s", channelName)
	}
	sess.Selections[channelName] = &CartSelection{
		ChannelName: channelName,
		ContentType: offer.ContentType,
		PostCount:   offer.PostCount,
		PricePer:    offer.Pricing[offer.ContentType],
	}
	return snapshotSession(sess), nil
}

// SetPostCount 调整已勾选渠道的篇数，范围外的值收敛到边界
func (s *CartService) SetPostCount(token, channelName string, count int) (*CartSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lockedSession(token)
	if err != nil {
		return nil, err
	}

	sel, ok := sess.Selections[channelName]
	if !ok {
		return nil, ErrChannelNotSelected
	}
	if count < model.PostCountMin {
		count = model.PostCountMin
	}
	if count > model.PostCountMax {
		count = model.PostCountMax
	}
	sel.PostCount = count
	return snapshotSession(sess), nil
}

// SetContentType 切换已勾选渠道的内容类型，单价随之变化
func (s *CartService) SetContentType(token, channelName, contentType string) (*CartSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lockedSession(token)
	if err != nil {
		return nil, err
	}

	sel, ok := sess.Selections[channelName]
	if !ok {
		return nil, ErrChannelNotSelected
	}
	if !model.IsValidContentType(contentType) {
		return nil, fmt.Errorf("잘못된 콘텐츠 유형입니다: %s", contentType)
	}
	offer := findOffer(sess, channelName)
	price, ok := offer.Pricing[contentType]
	if !ok {
		return nil, fmt.Errorf("해당 채널은 %s 유형을 지원하지 않습니다", contentType)
	}
	sel.ContentType = contentType
	sel.PricePer = price
	return snapshotSession(sess), nil
}

// ==================== 购物车操作 ====================

// AddToCart 把当前勾选项固化成购物车行，然后清空勾选
func (s *CartService) AddToCart(token string) (*CartSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lockedSession(token)
	if err != nil {
		return nil, err
	}

	if len(sess.Selections) == 0 {
		return nil, ErrEmptySelection
	}

	for _, sel := range sess.Selections {
		line := CartLine{
			ChannelName: sel.ChannelName,
			ContentType: sel.ContentType,
			PostCount:   sel.PostCount,
			PricePer:    sel.PricePer,
			LineTotal:   sel.Total(),
		}
		// 同渠道同类型重复加入时覆盖旧行
		replaced := false
		for i := range sess.Lines {
			if sess.Lines[i].ChannelName == line.ChannelName && sess.Lines[i].ContentType == line.ContentType {
				sess.Lines[i] = line
				replaced = true
				break
			}
		}
		if !replaced {
			sess.Lines = append(sess.Lines, line)
		}
	}
	sess.Selections = make(map[string]*CartSelection)
	return snapshotSession(sess), nil
}

// RemoveLine 移除购物车中的一行
func (s *CartService) RemoveLine(token, channelName, contentType string) (*CartSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lockedSession(token)
	if err != nil {
		return nil, err
	}

	for i := range sess.Lines {
		if sess.Lines[i].ChannelName == channelName && sess.Lines[i].ContentType == contentType {
			sess.Lines = append(sess.Lines[:i], sess.Lines[i+1:]...)
			return snapshotSession(sess), nil
		}
	}
	return nil, fmt.Errorf("장바구니에 없는 항목입니다")
}

// ==================== 金额计算 ====================

// TotalForSelection 当前勾选项的实时合计（还未入车）
func (s *CartService) TotalForSelection(token string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lockedSession(token)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, sel := range sess.Selections {
		total += sel.Total()
	}
	return total, nil
}

// Totals 购物车合计
func (s *CartService) Totals(token string) (*CartTotals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lockedSession(token)
	if err != nil {
		return nil, err
	}
	return ComputeTotals(sess.Lines), nil
}

// ComputeTotals 结算规则：两行以上享受套餐折扣，折扣额整数除法向下取整
func ComputeTotals(lines []CartLine) *CartTotals {
	totals := &CartTotals{LineCount: len(lines)}
	for _, line := range lines {
		totals.Subtotal += line.LineTotal
	}
	if totals.LineCount > 1 {
		totals.Discount = totals.Subtotal * model.PackageDiscountPercent / 100
	}
	totals.Final = totals.Subtotal - totals.Discount
	return totals
}

// ==================== 内部辅助 ====================

// snapshotSession 深拷贝会话，调用方可在锁外安全读取
func snapshotSession(sess *CartSession) *CartSession {
	cp := *sess
	cp.Offers = append([]ChannelOffer(nil), sess.Offers...)
	cp.Lines = append([]CartLine(nil), sess.Lines...)
	cp.Selections = make(map[string]*CartSelection, len(sess.Selections))
	for name, sel := range sess.Selections {
		selCopy := *sel
		cp.Selections[name] = &selCopy
	}
	return &cp
}

func findOffer(sess *CartSession, channelName string) *ChannelOffer {
	for i := range sess.Offers {
		if sess.Offers[i].ChannelName == channelName {
			return &sess.Offers[i]
		}
	}
	return nil
}

func pricingMap(ch *model.Channel) map[string]int64 {
	m := make(map[string]int64)
	for _, ct := range []string{model.ContentTypeReview, model.ContentTypeQuestion, model.ContentTypeHotdeal} {
		if ch.HasPriceFor(ct) {
			m[ct] = ch.PriceFor(ct)
		}
	}
	return m
}

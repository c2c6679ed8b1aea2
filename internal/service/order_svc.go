package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"momcafe_saas_v1_202608/internal/model"
	"momcafe_saas_v1_202608/internal/repository"
)

// ==================== 排期槽位 ====================

// 每天最多投放两篇，时段按整点错开避免集中发帖
var postingSlots = []string{"10:00", "11:00", "14:00", "15:00", "20:00", "21:00"}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	ErrNameRequired  = errors.New("주문자 이름을 입력해주세요")
	ErrEmailRequired = errors.New("이메일을 입력해주세요")
	ErrEmailInvalid  = errors.New("이메일 형식이 올바르지 않습니다")
	ErrPhoneRequired = errors.New("연락처를 입력해주세요")
	ErrEmptyCart     = errors.New("장바구니가 비어 있습니다")
)

// ==================== 请求结构 ====================

// CheckoutInfo 结算页填写的订单人信息
type CheckoutInfo struct {
	Name    string
	Email   string
	Phone   string
	Company string
}

func (c *CheckoutInfo) validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(c.Email) == "" {
		return ErrEmailRequired
	}
	if !emailRe.MatchString(strings.TrimSpace(c.Email)) {
		return ErrEmailInvalid
	}
	if strings.TrimSpace(c.Phone) == "" {
		return ErrPhoneRequired
	}
	return nil
}

// ==================== 接口定义 ====================

// PostGenerator 文案生成接口
type PostGenerator interface {
	GeneratePosts(ctx context.Context, memberID, itemID int64, productName, productSummary, channelName, contentType string, count int) ([]PostDraft, string, error)
}

// ==================== 服务实现 ====================

// OrderService 订单服务
// 下单只建单，文案生成由 ProcessOrder 异步完成
type OrderService struct {
	OrderRepo     repository.OrderRepository
	OrderItemRepo repository.OrderItemRepository
	ContentRepo   repository.ContentRepository
	AnalysisRepo  repository.AnalysisRepository
	Cart          *CartService
	AI            PostGenerator

	// 测试注入用，默认 time.Now
	Now func() time.Time
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	orderItemRepo repository.OrderItemRepository,
	contentRepo repository.ContentRepository,
	analysisRepo repository.AnalysisRepository,
	cart *CartService,
	ai PostGenerator,
) *OrderService {
	return &OrderService{
		OrderRepo:     orderRepo,
		OrderItemRepo: orderItemRepo,
		ContentRepo:   contentRepo,
		AnalysisRepo:  analysisRepo,
		Cart:          cart,
		AI:            ai,
		Now:           time.Now,
	}
}

// ==================== 下单 ====================

// SubmitOrder 提交订单
// 任一步失败都保留购物车会话，只有建单成功才销毁会话
func (s *OrderService) SubmitOrder(ctx context.Context, memberID int64, cartToken string, info *CheckoutInfo) (*model.Order, error) {
	if err := info.validate(); err != nil {
		return nil, err
	}

	sess, err := s.Cart.GetSession(cartToken)
	if err != nil {
		return nil, err
	}
	if len(sess.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	totals := ComputeTotals(sess.Lines)

	order := &model.Order{
		OrderNo:         newOrderNo(s.Now()),
		MemberID:        memberID,
		AnalysisID:      sess.AnalysisID,
		CustomerName:    strings.TrimSpace(info.Name),
		CustomerEmail:   strings.TrimSpace(info.Email),
		CustomerPhone:   strings.TrimSpace(info.Phone),
		CustomerCompany: strings.TrimSpace(info.Company),
		SubtotalAmount:  totals.Subtotal,
		DiscountAmount:  totals.Discount,
		FinalAmount:     totals.Final,
		Status:          model.OrderStatusProcessing,
	}
	if analysis, err := s.AnalysisRepo.GetByID(ctx, sess.AnalysisID); err == nil {
		order.ProductURL = analysis.ProductURL
		order.ProductName = analysis.ProductName
	}

	if err := s.OrderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("创建订单失败: %v", err)
	}

	items := make([]model.OrderItem, 0, len(sess.Lines))
	for _, line := range sess.Lines {
		items = append(items, model.OrderItem{
			OrderID:      order.ID,
			ChannelName:  line.ChannelName,
			ContentType:  line.ContentType,
			PostCount:    line.PostCount,
			PricePerPost: line.PricePer,
			TotalPrice:   line.LineTotal,
		})
	}
	if err := s.OrderItemRepo.CreateBatch(ctx, items); err != nil {
		return nil, fmt.Errorf("创建订单明细失败: %v", err)
	}
	order.Items = items

	s.Cart.DropSession(cartToken)
	log.Printf("[OrderService] 订单已创建 orderNo=%s items=%d final=%d", order.OrderNo, len(items), order.FinalAmount)
	return order, nil
}

func newOrderNo(now time.Time) string {
	short := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("MC%s-%s", now.Format("20060102"), short)
}

// ==================== 文案生成 ====================

// ProcessOrder 逐条生成订单明细的文案并排期
// 单个明细失败只影响自身（写入一条保底稿），不中断整单
func (s *OrderService) ProcessOrder(ctx context.Context, orderID int64) error {
	order, err := s.OrderRepo.GetByIDWithItems(ctx, orderID)
	if err != nil {
		return fmt.Errorf("订单不存在: %v", err)
	}

	productName, productSummary := order.ProductName, ""
	if analysis, err := s.AnalysisRepo.GetByID(ctx, order.AnalysisID); err == nil {
		productSummary = analysis.ProductSummary
		if productName == "" {
			productName = analysis.ProductName
		}
	}

	for i := range order.Items {
		item := &order.Items[i]
		if err := s.processItem(ctx, order, item, productName, productSummary); err != nil {
			log.Printf("[OrderService] 明细处理失败 itemID=%d: %v", item.ID, err)
		}
	}

	now := s.Now()
	if err := s.OrderRepo.UpdateFields(ctx, orderID, map[string]interface{}{
		"status":       model.OrderStatusCompleted,
		"completed_at": &now,
	}); err != nil {
		return fmt.Errorf("更新订单状态失败: %v", err)
	}
	log.Printf("[OrderService] 订单处理完成 orderNo=%s", order.OrderNo)
	return nil
}

func (s *OrderService) processItem(ctx context.Context, order *model.Order, item *model.OrderItem, productName, productSummary string) error {
	drafts, _, err := s.AI.GeneratePosts(ctx, order.MemberID, item.ID,
		productName, productSummary, item.ChannelName, item.ContentType, item.PostCount)
	if err != nil {
		return s.writeFallbackContent(ctx, order, item, err)
	}
	if len(drafts) > item.PostCount {
		drafts = drafts[:item.PostCount]
	}

	// 数量不足时补一次，仍然不足则接受缺口并记录
	if len(drafts) < item.PostCount {
		missing := item.PostCount - len(drafts)
		log.Printf("[OrderService] 生成数量不足 itemID=%d 缺 %d 条，追加请求一次", item.ID, missing)
		more, _, err := s.AI.GeneratePosts(ctx, order.MemberID, item.ID,
			productName, productSummary, item.ChannelName, item.ContentType, missing)
		if err == nil {
			drafts = append(drafts, more...)
			if len(drafts) > item.PostCount {
				drafts = drafts[:item.PostCount]
			}
		}
	}
	if len(drafts) == 0 {
		return s.writeFallbackContent(ctx, order, item, fmt.Errorf("两次生成均为空"))
	}

	shortfall := item.PostCount - len(drafts)
	if shortfall > 0 {
		log.Printf("[OrderService] 接受生成缺口 itemID=%d shortfall=%d", item.ID, shortfall)
	}

	base := s.Now()
	contents := make([]model.GeneratedContent, 0, len(drafts))
	for idx, draft := range drafts {
		date, slot := scheduleFor(base, idx)
		contents = append(contents, model.GeneratedContent{
			OrderItemID:   item.ID,
			Title:         draft.Title,
			Body:          draft.Body,
			Tags:          draft.Tags,
			ScheduledDate: date,
			ScheduledTime: slot,
			Status:        model.ContentStatusPending,
		})
	}
	if err := s.ContentRepo.CreateBatch(ctx, contents); err != nil {
		return fmt.Errorf("保存生成稿失败: %v", err)
	}

	return s.OrderItemRepo.UpdateFields(ctx, item.ID, map[string]interface{}{
		"generated_count": len(contents),
		"shortfall":       shortfall,
		"is_fallback":     false,
	})
}

// writeFallbackContent 生成完全失败时写入唯一一条占位稿，标记需人工复核
func (s *OrderService) writeFallbackContent(ctx context.Context, order *model.Order, item *model.OrderItem, cause error) error {
	date, slot := scheduleFor(s.Now(), 0)
	content := &model.GeneratedContent{
		OrderItemID:    item.ID,
		Title:          fmt.Sprintf("[작성 대기] %s %s 게시글", item.ChannelName, item.ContentType),
		Body:           fmt.Sprintf("자동 생성에 실패하여 운영자가 직접 작성해야 합니다.\n상품: %s\n채널: %s\n유형: %s\n요청 수량: %d", order.ProductName, item.ChannelName, item.ContentType, item.PostCount),
		Tags:           nil,
		ScheduledDate:  date,
		ScheduledTime:  slot,
		Status:         model.ContentStatusPending,
		ReviewRequired: true,
	}
	if err := s.ContentRepo.Create(ctx, content); err != nil {
		return fmt.Errorf("保存占位稿失败 (原因: %v): %v", cause, err)
	}
	return s.OrderItemRepo.UpdateFields(ctx, item.ID, map[string]interface{}{
		"generated_count": 1,
		"shortfall":       item.PostCount - 1,
		"is_fallback":     true,
	})
}

// scheduleFor 纯函数排期
// 第 idx 篇（从 0 起）排在 base 次日起第 idx/2 天，时段取 postingSlots[idx%6]
func scheduleFor(base time.Time, idx int) (date, slot string) {
	day := base.AddDate(0, 0, 1+idx/2)
	return day.Format("2006-01-02"), postingSlots[idx%len(postingSlots)]
}

// ==================== 查询与管理 ====================

// List 分页查询订单
func (s *OrderService) List(ctx context.Context, filter repository.OrderFilter) ([]model.Order, int64, error) {
	return s.OrderRepo.List(ctx, filter)
}

// GetDetail 查询订单详情（含明细与生成稿）
func (s *OrderService) GetDetail(ctx context.Context, id int64) (*model.Order, error) {
	order, err := s.OrderRepo.GetByIDWithItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("주문을 찾을 수 없습니다")
	}
	return order, nil
}

// GetByOrderNo 按订单号查询
func (s *OrderService) GetByOrderNo(ctx context.Context, orderNo string) (*model.Order, error) {
	order, err := s.OrderRepo.GetByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, fmt.Errorf("주문을 찾을 수 없습니다")
	}
	return order, nil
}

// Cancel 取消订单，已完成的订单不可取消
func (s *OrderService) Cancel(ctx context.Context, id int64) error {
	order, err := s.OrderRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("주문을 찾을 수 없습니다")
	}
	if !order.CanCancel() {
		return fmt.Errorf("이미 %s 상태인 주문은 취소할 수 없습니다", order.Status)
	}
	return s.OrderRepo.UpdateStatus(ctx, id, model.OrderStatusCancelled)
}

// GetStats 运营看板的订单统计，默认统计最近 30 天
func (s *OrderService) GetStats(ctx context.Context) (*repository.OrderStats, error) {
	end := s.Now()
	start := end.AddDate(0, 0, -30)
	return s.OrderRepo.GetStats(ctx, start, end)
}

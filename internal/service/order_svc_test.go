package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"momcafe_saas_v1_202608/internal/model"
	"momcafe_saas_v1_202608/internal/repository"
)

// ==================== Mock 实现 ====================

type mockPostGenerator struct {
	generateFn func(ctx context.Context, memberID, itemID int64, productName, productSummary, channelName, contentType string, count int) ([]PostDraft, string, error)
	calls      int
}

func (m *mockPostGenerator) GeneratePosts(ctx context.Context, memberID, itemID int64, productName, productSummary, channelName, contentType string, count int) ([]PostDraft, string, error) {
	m.calls++
	if m.generateFn != nil {
		return m.generateFn(ctx, memberID, itemID, productName, productSummary, channelName, contentType, count)
	}
	drafts := make([]PostDraft, count)
	for i := range drafts {
		drafts[i] = PostDraft{
			Title: fmt.Sprintf("%s 후기 %d", channelName, i+1),
			Body:  "测试文案",
			Tags:  []string{"육아", "꿀템"},
		}
	}
	return drafts, "[]", nil
}

// ==================== 测试基础设施 ====================

func newTestOrderService(t *testing.T, gen PostGenerator) (*OrderService, *CartService, *model.AnalysisResult, *gorm.DB) {
	db := setupServiceTestDB(t)
	seedTestChannels(t, db)
	analysis := seedTestAnalysis(t, db, 1)

	catalog := NewCatalogService(repository.NewChannelRepository(db))
	analysisRepo := repository.NewAnalysisRepository(db)
	cart := NewCartService(analysisRepo, catalog)

	svc := NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewOrderItemRepository(db),
		repository.NewContentRepository(db),
		analysisRepo,
		cart,
		gen,
	)
	return svc, cart, analysis, db
}

// cartWithLines 准备一个含两行的购物车会话
func cartWithLines(t *testing.T, cart *CartService, analysisID int64) string {
	sess, err := cart.CreateSession(context.Background(), 1, analysisID)
	if err != nil {
		t.Fatalf("创建会话失败: %v", err)
	}
	cart.ToggleSelect(sess.Token, "맘스홀릭 베이비")
	cart.SetPostCount(sess.Token, "맘스홀릭 베이비", 2)
	cart.ToggleSelect(sess.Token, "레몬테라스")
	cart.SetPostCount(sess.Token, "레몬테라스", 3)
	if _, err := cart.AddToCart(sess.Token); err != nil {
		t.Fatalf("入车失败: %v", err)
	}
	return sess.Token
}

func validCheckout() *CheckoutInfo {
	return &CheckoutInfo{
		Name:  "김하나",
		Email: "hana@example.com",
		Phone: "010-1234-5678",
	}
}

// ==================== 下单测试 ====================

func TestSubmitOrder(t *testing.T) {
	svc, cart, analysis, _ := newTestOrderService(t, &mockPostGenerator{})
	token := cartWithLines(t, cart, analysis.ID)

	order, err := svc.SubmitOrder(context.Background(), 1, token, validCheckout())
	if err != nil {
		t.Fatalf("下单失败: %v", err)
	}
	if order.OrderNo == "" {
		t.Error("订单号为空")
	}
	if order.Status != model.OrderStatusProcessing {
		t.Errorf("新订单状态应为 processing, 实际 %s", order.Status)
	}
	if len(order.Items) != 2 {
		t.Errorf("应有 2 条明细, 实际 %d", len(order.Items))
	}

	// 两行打 9 折: (2*45000 + 3*38000) = 204000, 折扣 20400
	if order.SubtotalAmount != 204000 || order.DiscountAmount != 20400 || order.FinalAmount != 183600 {
		t.Errorf("金额错误: subtotal=%d discount=%d final=%d",
			order.SubtotalAmount, order.DiscountAmount, order.FinalAmount)
	}

	// 下单成功后会话销毁
	if _, err := cart.GetSession(token); !errors.Is(err, ErrCartSessionNotFound) {
		t.Error("下单成功后购物车会话应销毁")
	}
}

func TestSubmitOrderValidation(t *testing.T) {
	svc, cart, analysis, _ := newTestOrderService(t, &mockPostGenerator{})
	token := cartWithLines(t, cart, analysis.ID)

	cases := []struct {
		name string
		info *CheckoutInfo
		want error
	}{
		{"缺姓名", &CheckoutInfo{Email: "a@b.com", Phone: "010"}, ErrNameRequired},
		{"缺邮箱", &CheckoutInfo{Name: "김하나", Phone: "010"}, ErrEmailRequired},
		{"邮箱格式", &CheckoutInfo{Name: "김하나", Email: "not-an-email", Phone: "010"}, ErrEmailInvalid},
		{"缺电话", &CheckoutInfo{Name: "김하나", Email: "a@b.com"}, ErrPhoneRequired},
	}
	for _, tc := range cases {
		if _, err := svc.SubmitOrder(context.Background(), 1, token, tc.info); !errors.Is(err, tc.want) {
			t.Errorf("%s: 期望 %v, 实际 %v", tc.name, tc.want, err)
		}
	}

	// 校验失败时购物车必须完整保留
	sess, err := cart.GetSession(token)
	if err != nil {
		t.Fatalf("校验失败后会话不应销毁: %v", err)
	}
	if len(sess.Lines) != 2 {
		t.Errorf("校验失败后购物车行应保留, 实际 %d", len(sess.Lines))
	}
}

func TestSubmitOrderEmptyCart(t *testing.T) {
	svc, cart, analysis, _ := newTestOrderService(t, &mockPostGenerator{})
	sess, _ := cart.CreateSession(context.Background(), 1, analysis.ID)

	if _, err := svc.SubmitOrder(context.Background(), 1, sess.Token, validCheckout()); !errors.Is(err, ErrEmptyCart) {
		t.Errorf("空购物车下单应报 ErrEmptyCart, 实际 %v", err)
	}
}

// ==================== 文案生成测试 ====================

func TestProcessOrderGeneratesExactRows(t *testing.T) {
	svc, cart, analysis, db := newTestOrderService(t, &mockPostGenerator{})
	token := cartWithLines(t, cart, analysis.ID)
	order, _ := svc.SubmitOrder(context.Background(), 1, token, validCheckout())

	if err := svc.ProcessOrder(context.Background(), order.ID); err != nil {
		t.Fatalf("处理订单失败: %v", err)
	}

	detail, _ := svc.GetDetail(context.Background(), order.ID)
	if detail.Status != model.OrderStatusCompleted {
		t.Errorf("处理完成后状态应为 completed, 实际 %s", detail.Status)
	}
	if detail.CompletedAt == nil {
		t.Error("完成时间未写入")
	}

	// 每条明细的稿件数恰好等于 postCount
	for _, item := range detail.Items {
		if len(item.Contents) != item.PostCount {
			t.Errorf("明细 %s 应有 %d 条稿件, 实际 %d", item.ChannelName, item.PostCount, len(item.Contents))
		}
		if item.GeneratedCount != item.PostCount || item.Shortfall != 0 || item.IsFallback {
			t.Errorf("明细 %s 计数错误: generated=%d shortfall=%d fallback=%v",
				item.ChannelName, item.GeneratedCount, item.Shortfall, item.IsFallback)
		}
		for _, content := range item.Contents {
			if content.Status != model.ContentStatusPending {
				t.Errorf("新稿件应为 pending, 实际 %s", content.Status)
			}
		}
	}

	var total int64
	db.Model(&model.GeneratedContent{}).Count(&total)
	if total != 5 {
		t.Errorf("总稿件数应为 5, 实际 %d", total)
	}
}

func TestProcessOrderFallbackOnFailure(t *testing.T) {
	// 第一个渠道生成失败，第二个正常
	gen := &mockPostGenerator{
		generateFn: func(_ context.Context, _, _ int64, _, _, channelName, _ string, count int) ([]PostDraft, string, error) {
			if channelName == "맘스홀릭 베이비" {
				return nil, "", fmt.Errorf("%w: 模拟故障", ErrAIUnavailable)
			}
			drafts := make([]PostDraft, count)
			for i := range drafts {
				drafts[i] = PostDraft{Title: "정상 생성", Body: "본문"}
			}
			return drafts, "[]", nil
		},
	}
	svc, cart, analysis, _ := newTestOrderService(t, gen)
	token := cartWithLines(t, cart, analysis.ID)
	order, _ := svc.SubmitOrder(context.Background(), 1, token, validCheckout())

	if err := svc.ProcessOrder(context.Background(), order.ID); err != nil {
		t.Fatalf("单条明细失败不应中断整单: %v", err)
	}

	detail, _ := svc.GetDetail(context.Background(), order.ID)
	// 整单仍然完成
	if detail.Status != model.OrderStatusCompleted {
		t.Errorf("故障隔离后订单仍应 completed, 实际 %s", detail.Status)
	}

	for _, item := range detail.Items {
		if item.ChannelName == "맘스홀릭 베이비" {
			// 失败明细恰好一条占位稿
			if len(item.Contents) != 1 {
				t.Fatalf("失败明细应恰好 1 条占位稿, 实际 %d", len(item.Contents))
			}
			fallback := item.Contents[0]
			if !fallback.ReviewRequired {
				t.Error("占位稿应标记需人工复核")
			}
			if fallback.Status != model.ContentStatusPending {
				t.Errorf("占位稿应为 pending, 实际 %s", fallback.Status)
			}
			if len(fallback.Tags) != 0 {
				t.Error("占位稿不应携带标签")
			}
			if !item.IsFallback || item.GeneratedCount != 1 {
				t.Errorf("失败明细计数错误: fallback=%v generated=%d", item.IsFallback, item.GeneratedCount)
			}
		} else {
			if item.IsFallback || len(item.Contents) != item.PostCount {
				t.Errorf("正常明细不应受影响: fallback=%v contents=%d", item.IsFallback, len(item.Contents))
			}
		}
	}
}

func TestProcessOrderShortfallReprompt(t *testing.T) {
	// 每次只返回请求数的一半（向上取整），验证补一次后接受缺口
	gen := &mockPostGenerator{}
	gen.generateFn = func(_ context.Context, _, _ int64, _, _, _, _ string, count int) ([]PostDraft, string, error) {
		n := (count + 1) / 2
		drafts := make([]PostDraft, n)
		for i := range drafts {
			drafts[i] = PostDraft{Title: "부분 생성", Body: "본문"}
		}
		return drafts, "[]", nil
	}

	svc, cart, analysis, _ := newTestOrderService(t, gen)
	sess, _ := cart.CreateSession(context.Background(), 1, analysis.ID)
	cart.ToggleSelect(sess.Token, "맘스홀릭 베이비")
	cart.SetPostCount(sess.Token, "맘스홀릭 베이비", 8)
	cart.AddToCart(sess.Token)
	order, _ := svc.SubmitOrder(context.Background(), 1, sess.Token, validCheckout())

	if err := svc.ProcessOrder(context.Background(), order.ID); err != nil {
		t.Fatalf("处理订单失败: %v", err)
	}

	// 首轮 4 条 + 补发一次 (8-4)/2=2 条 = 6 条, 缺口 2
	detail, _ := svc.GetDetail(context.Background(), order.ID)
	item := detail.Items[0]
	if item.GeneratedCount != 6 {
		t.Errorf("应生成 6 条, 实际 %d", item.GeneratedCount)
	}
	if item.Shortfall != 2 {
		t.Errorf("缺口应为 2, 实际 %d", item.Shortfall)
	}
	if item.IsFallback {
		t.Error("部分生成不应标记为占位")
	}
	// 只补发一次
	if gen.calls != 2 {
		t.Errorf("应恰好调用两次生成, 实际 %d", gen.calls)
	}
}

// ==================== 排期测试 ====================

func TestScheduleFor(t *testing.T) {
	base := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)

	cases := []struct {
		idx      int
		wantDate string
		wantSlot string
	}{
		{0, "2026-08-29", "10:00"},
		{1, "2026-08-29", "11:00"},
		{2, "2026-08-30", "14:00"},
		{3, "2026-08-30", "15:00"},
		{4, "2026-08-31", "20:00"},
		{5, "2026-08-31", "21:00"},
		// 槽位用尽后回绕，日期继续顺延
		{6, "2026-09-01", "10:00"},
		{7, "2026-09-01", "11:00"},
	}
	for _, tc := range cases {
		date, slot := scheduleFor(base, tc.idx)
		if date != tc.wantDate || slot != tc.wantSlot {
			t.Errorf("idx=%d: 期望 %s %s, 实际 %s %s", tc.idx, tc.wantDate, tc.wantSlot, date, slot)
		}
	}
}

// ==================== 取消测试 ====================

func TestCancelOrder(t *testing.T) {
	svc, cart, analysis, _ := newTestOrderService(t, &mockPostGenerator{})
	token := cartWithLines(t, cart, analysis.ID)
	order, _ := svc.SubmitOrder(context.Background(), 1, token, validCheckout())

	if err := svc.Cancel(context.Background(), order.ID); err != nil {
		t.Fatalf("processing 状态应可取消: %v", err)
	}

	// 已完成的订单不可取消
	token2 := cartWithLines(t, cart, analysis.ID)
	order2, _ := svc.SubmitOrder(context.Background(), 1, token2, validCheckout())
	svc.ProcessOrder(context.Background(), order2.ID)
	if err := svc.Cancel(context.Background(), order2.ID); err == nil {
		t.Error("completed 状态不应可取消")
	}
}

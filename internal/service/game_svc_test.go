package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"momcafe_saas_v1_202608/internal/model"
	"momcafe_saas_v1_202608/internal/repository"
)

// ==================== 测试基础设施 ====================

func newTestGameService(t *testing.T) (*GameService, *gorm.DB) {
	db := setupServiceTestDB(t)
	svc := NewGameService(repository.NewGameRepository(db), repository.NewMemberRepository(db))
	return svc, db
}

func seedMember(t *testing.T, db *gorm.DB, email string) *model.Member {
	member := &model.Member{Email: email, Name: "테스트", Provider: model.ProviderLocal, Role: model.RoleUser, IsActive: true}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("写入测试会员失败: %v", err)
	}
	return member
}

// fixedNow 固定测试时钟
func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// ==================== 档案测试 ====================

func TestEnsureProfile(t *testing.T) {
	svc, db := newTestGameService(t)
	member := seedMember(t, db, "a@example.com")

	profile, err := svc.EnsureProfile(context.Background(), member.ID)
	if err != nil {
		t.Fatalf("创建档案失败: %v", err)
	}
	if len(profile.ReferralCode) != 8 {
		t.Errorf("邀请码应为 8 位, 实际 %q", profile.ReferralCode)
	}

	// 幂等: 再次调用返回同一份档案
	again, _ := svc.EnsureProfile(context.Background(), member.ID)
	if again.ID != profile.ID {
		t.Error("重复调用应返回已有档案")
	}
}

// ==================== 点击测试 ====================

func TestTapEarnsPoints(t *testing.T) {
	svc, db := newTestGameService(t)
	member := seedMember(t, db, "a@example.com")

	result, err := svc.Tap(context.Background(), member.ID, 10)
	if err != nil {
		t.Fatalf("点击失败: %v", err)
	}
	if result.Earned != 10 || result.Profile.Points != 10 {
		t.Errorf("10 次点击应得 10 分, 实际 earned=%d points=%d", result.Earned, result.Profile.Points)
	}
	if result.ModalState != model.ModalNone {
		t.Errorf("普通点击不应弹窗, 实际 %s", result.ModalState)
	}
}

func TestTapRainbowBonus(t *testing.T) {
	svc, db := newTestGameService(t)
	member := seedMember(t, db, "a@example.com")

	// 第 100 次点击触发彩虹奖励
	svc.Tap(context.Background(), member.ID, 99)
	result, err := svc.Tap(context.Background(), member.ID, 1)
	if err != nil {
		t.Fatalf("点击失败: %v", err)
	}
	if result.ModalState != model.ModalRainbowBonus {
		t.Errorf("应触发彩虹弹窗, 实际 %s", result.ModalState)
	}
	if result.Earned != 1+model.RainbowBonus {
		t.Errorf("应得 1+%d 分, 实际 %d", model.RainbowBonus, result.Earned)
	}
}

func TestTapDailyCap(t *testing.T) {
	svc, db := newTestGameService(t)
	member := seedMember(t, db, "a@example.com")

	// 一次请求超过上限时只计到上限
	result, err := svc.Tap(context.Background(), member.ID, model.TapDailyCap+100)
	if err != nil {
		t.Fatalf("点击失败: %v", err)
	}
	if result.Profile.TapsToday != model.TapDailyCap {
		t.Errorf("当日点击应封顶 %d, 实际 %d", model.TapDailyCap, result.Profile.TapsToday)
	}

	// 达到上限后继续点击被拒绝
	if _, err := svc.Tap(context.Background(), member.ID, 1); !errors.Is(err, ErrTapCapReached) {
		t.Errorf("超上限应报 ErrTapCapReached, 实际 %v", err)
	}
}

func TestTapCapResetsNextDay(t *testing.T) {
	svc, db := newTestGameService(t)
	member := seedMember(t, db, "a@example.com")

	day1 := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	svc.Now = fixedNow(day1)
	svc.Tap(context.Background(), member.ID, model.TapDailyCap)

	// 次日计数重置
	svc.Now = fixedNow(day1.AddDate(0, 0, 1))
	result, err := svc.Tap(context.Background(), member.ID, 5)
	if err != nil {
		t.Fatalf("次日点击失败: %v", err)
	}
	if result.Profile.TapsToday != 5 {
		t.Errorf("次日计数应重置, 实际 %d", result.Profile.TapsToday)
	}
}

// ==================== 签到测试 ====================

func TestCheckInStreak(t *testing.T) {
	svc, db := newTestGameService(t)
	member := seedMember(t, db, "a@example.com")

	day1 := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	svc.Now = fixedNow(day1)

	result, err := svc.CheckIn(context.Background(), member.ID)
	if err != nil {
		t.Fatalf("签到失败: %v", err)
	}
	if result.Profile.StreakDays != 1 || result.Earned != 10 {
		t.Errorf("首日签到: streak=%d earned=%d", result.Profile.StreakDays, result.Earned)
	}
	if result.ModalState != model.ModalSuccess {
		t.Errorf("签到应弹成功框, 实际 %s", result.ModalState)
	}

	// 当日重复签到被拒绝
	if _, err := svc.CheckIn(context.Background(), member.ID); !errors.Is(err, ErrAlreadyCheckedIn) {
		t.Errorf("重复签到应报 ErrAlreadyCheckedIn, 实际 %v", err)
	}

	// 连续第二天 20 分
	svc.Now = fixedNow(day1.AddDate(0, 0, 1))
	result, _ = svc.CheckIn(context.Background(), member.ID)
	if result.Profile.StreakDays != 2 || result.Earned != 20 {
		t.Errorf("连续第二天: streak=%d earned=%d", result.Profile.StreakDays, result.Earned)
	}

	// 断签后重置
	svc.Now = fixedNow(day1.AddDate(0, 0, 5))
	result, _ = svc.CheckIn(context.Background(), member.ID)
	if result.Profile.StreakDays != 1 || result.Earned != 10 {
		t.Errorf("断签应重置: streak=%d earned=%d", result.Profile.StreakDays, result.Earned)
	}
}

func TestCheckInRewardCapped(t *testing.T) {
	svc, db := newTestGameService(t)
	member := seedMember(t, db, "a@example.com")

	day := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	var lastEarned int64
	// 连续 10 天，奖励在第 7 天后封顶
	for i := 0; i < 10; i++ {
		svc.Now = fixedNow(day.AddDate(0, 0, i))
		result, err := svc.CheckIn(context.Background(), member.ID)
		if err != nil {
			t.Fatalf("第 %d 天签到失败: %v", i+1, err)
		}
		lastEarned = result.Earned
	}
	if lastEarned != model.CheckInCap {
		t.Errorf("长连击奖励应封顶 %d, 实际 %d", model.CheckInCap, lastEarned)
	}
}

// ==================== 邀请测试 ====================

func TestApplyReferral(t *testing.T) {
	svc, db := newTestGameService(t)
	inviter := seedMember(t, db, "inviter@example.com")
	invitee := seedMember(t, db, "invitee@example.com")

	inviterProfile, _ := svc.EnsureProfile(context.Background(), inviter.ID)

	result, err := svc.ApplyReferral(context.Background(), invitee.ID, inviterProfile.ReferralCode)
	if err != nil {
		t.Fatalf("填写邀请码失败: %v", err)
	}
	if result.Earned != model.ReferralBonus {
		t.Errorf("被邀请方应得 %d 分, 实际 %d", model.ReferralBonus, result.Earned)
	}

	// 邀请方同样得分
	inviterAfter, _ := svc.EnsureProfile(context.Background(), inviter.ID)
	if inviterAfter.Points != model.ReferralBonus {
		t.Errorf("邀请方应得 %d 分, 实际 %d", model.ReferralBonus, inviterAfter.Points)
	}

	// 只能填一次
	if _, err := svc.ApplyReferral(context.Background(), invitee.ID, inviterProfile.ReferralCode); !errors.Is(err, ErrReferralUsed) {
		t.Errorf("重复填写应报 ErrReferralUsed, 实际 %v", err)
	}
}

func TestApplyReferralSelf(t *testing.T) {
	svc, db := newTestGameService(t)
	member := seedMember(t, db, "a@example.com")
	profile, _ := svc.EnsureProfile(context.Background(), member.ID)

	if _, err := svc.ApplyReferral(context.Background(), member.ID, profile.ReferralCode); !errors.Is(err, ErrReferralSelf) {
		t.Errorf("填写本人邀请码应报 ErrReferralSelf, 实际 %v", err)
	}
}

func TestApplyReferralNotFound(t *testing.T) {
	svc, db := newTestGameService(t)
	member := seedMember(t, db, "a@example.com")

	if _, err := svc.ApplyReferral(context.Background(), member.ID, "NOSUCHCD"); !errors.Is(err, ErrReferralNotFound) {
		t.Errorf("不存在的邀请码应报 ErrReferralNotFound, 实际 %v", err)
	}
}

// ==================== 积分兑换测试 ====================

func TestConvertPoints(t *testing.T) {
	svc, db := newTestGameService(t)
	member := seedMember(t, db, "a@example.com")

	profile, _ := svc.EnsureProfile(context.Background(), member.ID)
	profile.Points = 250
	db.Save(profile)

	// 250 积分按整档兑换 200 -> 2000 韩元, 余 50
	result, err := svc.ConvertPoints(context.Background(), member.ID, 250)
	if err != nil {
		t.Fatalf("兑换失败: %v", err)
	}
	if result.Earned != 2000 {
		t.Errorf("应兑换 2000 韩元, 实际 %d", result.Earned)
	}
	if result.Profile.Points != 50 {
		t.Errorf("剩余积分应为 50, 实际 %d", result.Profile.Points)
	}
	if result.ModalState != model.ModalCreditConfirm {
		t.Errorf("兑换应弹确认框, 实际 %s", result.ModalState)
	}

	var memberAfter model.Member
	db.First(&memberAfter, member.ID)
	if memberAfter.CreditKRW != 2000 {
		t.Errorf("会员代金余额应为 2000, 实际 %d", memberAfter.CreditKRW)
	}
}

func TestConvertPointsValidation(t *testing.T) {
	svc, db := newTestGameService(t)
	member := seedMember(t, db, "a@example.com")

	// 低于最小兑换档
	if _, err := svc.ConvertPoints(context.Background(), member.ID, 50); err == nil {
		t.Error("低于最小兑换额应返回错误")
	}

	// 积分不足
	if _, err := svc.ConvertPoints(context.Background(), member.ID, 100); !errors.Is(err, ErrPointsInsufficent) {
		t.Errorf("积分不足应报 ErrPointsInsufficent, 实际 %v", err)
	}
}

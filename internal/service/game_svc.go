package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"momcafe_saas_v1_202608/internal/model"
	"momcafe_saas_v1_202608/internal/repository"
)

var (
	ErrTapCapReached     = errors.New("오늘의 탭 횟수를 모두 사용했습니다")
	ErrAlreadyCheckedIn  = errors.New("오늘은 이미 출석했습니다")
	ErrReferralUsed      = errors.New("추천 코드는 한 번만 입력할 수 있습니다")
	ErrReferralNotFound  = errors.New("존재하지 않는 추천 코드입니다")
	ErrReferralSelf      = errors.New("본인의 추천 코드는 사용할 수 없습니다")
	ErrPointsInsufficent = errors.New("포인트가 부족합니다")
)

// ==================== 返回结构 ====================

// GameResult 一次游戏操作后的最新状态
type GameResult struct {
	Profile    *model.GameProfile `json:"profile"`
	Earned     int64              `json:"earned"`
	ModalState model.ModalState   `json:"modal_state"`
}

// ==================== 服务实现 ====================

// GameService tap-to-earn 小游戏
// 积分规则见 model 中的游戏参数常量
type GameService struct {
	GameRepo   repository.GameRepository
	MemberRepo repository.MemberRepository

	Now func() time.Time
}

func NewGameService(gameRepo repository.GameRepository, memberRepo repository.MemberRepository) *GameService {
	return &GameService{GameRepo: gameRepo, MemberRepo: memberRepo, Now: time.Now}
}

// ==================== 档案 ====================

// EnsureProfile 查询游戏档案，不存在则创建
func (s *GameService) EnsureProfile(ctx context.Context, memberID int64) (*model.GameProfile, error) {
	profile, err := s.GameRepo.GetByMemberID(ctx, memberID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("查询游戏档案失败: %v", err)
	}

	code, err := s.newReferralCode(ctx)
	if err != nil {
		return nil, err
	}
	profile = &model.GameProfile{
		MemberID:     memberID,
		ReferralCode: code,
	}
	if err := s.GameRepo.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("创建游戏档案失败: %v", err)
	}
	return profile, nil
}

// newReferralCode 生成 8 位邀请码，碰撞时重试
func (s *GameService) newReferralCode(ctx context.Context) (string, error) {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	for attempt := 0; attempt < 5; attempt++ {
		buf := make([]byte, 8)
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("生成邀请码失败: %v", err)
		}
		for i := range buf {
			buf[i] = alphabet[int(buf[i])%len(alphabet)]
		}
		code := string(buf)
		if _, err := s.GameRepo.GetByReferralCode(ctx, code); errors.Is(err, gorm.ErrRecordNotFound) {
			return code, nil
		}
	}
	return "", fmt.Errorf("生成邀请码失败: 重试次数用尽")
}

// ==================== 点击 ====================

// Tap 处理一批点击
// 超出每日上限的点击不计分；每累计 RainbowTapEvery 次触发彩虹奖励
func (s *GameService) Tap(ctx context.Context, memberID int64, taps int) (*GameResult, error) {
	if taps <= 0 {
		taps = 1
	}

	profile, err := s.EnsureProfile(ctx, memberID)
	if err != nil {
		return nil, err
	}

	today := s.Now().Format("2006-01-02")
	if profile.TapDay != today {
		profile.TapDay = today
		profile.TapsToday = 0
	}

	if profile.TapsToday >= model.TapDailyCap {
		return nil, ErrTapCapReached
	}
	if profile.TapsToday+taps > model.TapDailyCap {
		taps = model.TapDailyCap - profile.TapsToday
	}

	before := profile.TotalTaps
	profile.TapsToday += taps
	profile.TotalTaps += int64(taps)

	earned := int64(taps)
	modal := model.ModalNone

	// 跨过彩虹门槛的每一次都发奖
	rainbows := profile.TotalTaps/model.RainbowTapEvery - before/model.RainbowTapEvery
	if rainbows > 0 {
		earned += rainbows * model.RainbowBonus
		modal = model.ModalRainbowBonus
	}
	profile.Points += earned

	if err := s.GameRepo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("保存游戏档案失败: %v", err)
	}
	return &GameResult{Profile: profile, Earned: earned, ModalState: modal}, nil
}

// ==================== 签到 ====================

// CheckIn 每日签到
// 连续签到奖励递增，断签重置为第 1 天
func (s *GameService) CheckIn(ctx context.Context, memberID int64) (*GameResult, error) {
	profile, err := s.EnsureProfile(ctx, memberID)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	if profile.CheckedInToday(now) {
		return nil, ErrAlreadyCheckedIn
	}

	if profile.CheckedInYesterday(now) {
		profile.StreakDays++
	} else {
		profile.StreakDays = 1
	}

	earned := int64(model.CheckInBase * profile.StreakDays)
	if earned > model.CheckInCap {
		earned = model.CheckInCap
	}
	profile.Points += earned
	profile.LastCheckIn = &now

	if err := s.GameRepo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("保存游戏档案失败: %v", err)
	}
	return &GameResult{Profile: profile, Earned: earned, ModalState: model.ModalSuccess}, nil
}

// ==================== 邀请 ====================

// ApplyReferral 填写他人邀请码，双方各得奖励，一个账号只能填一次
func (s *GameService) ApplyReferral(ctx context.Context, memberID int64, code string) (*GameResult, error) {
	profile, err := s.EnsureProfile(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if profile.ReferredBy != "" {
		return nil, ErrReferralUsed
	}
	if code == profile.ReferralCode {
		return nil, ErrReferralSelf
	}

	referrer, err := s.GameRepo.GetByReferralCode(ctx, code)
	if err != nil {
		return nil, ErrReferralNotFound
	}

	profile.ReferredBy = code
	profile.Points += model.ReferralBonus
	if err := s.GameRepo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("保存游戏档案失败: %v", err)
	}
	if err := s.GameRepo.AddPoints(ctx, referrer.MemberID, model.ReferralBonus); err != nil {
		return nil, fmt.Errorf("发放推荐人奖励失败: %v", err)
	}

	return &GameResult{Profile: profile, Earned: model.ReferralBonus, ModalState: model.ModalRewardConfirm}, nil
}

// ==================== 积分兑换 ====================

// ConvertPoints 积分兑换下单代金余额
// 只按 100 积分整档兑换，余数留在账户里
func (s *GameService) ConvertPoints(ctx context.Context, memberID int64, points int64) (*GameResult, error) {
	if points < model.CreditExchangeMin {
		return nil, fmt.Errorf("최소 %d포인트부터 전환할 수 있습니다", model.CreditExchangeMin)
	}

	profile, err := s.EnsureProfile(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if profile.Points < points {
		return nil, ErrPointsInsufficent
	}

	units := points / 100
	spent := units * 100
	creditKRW := units * model.CreditPer100

	profile.Points -= spent
	if err := s.GameRepo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("保存游戏档案失败: %v", err)
	}
	if err := s.MemberRepo.AddCredit(ctx, memberID, creditKRW); err != nil {
		return nil, fmt.Errorf("发放代金余额失败: %v", err)
	}

	return &GameResult{Profile: profile, Earned: creditKRW, ModalState: model.ModalCreditConfirm}, nil
}

package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"momcafe_saas_v1_202608/internal/middleware"
	"momcafe_saas_v1_202608/internal/model"
	"momcafe_saas_v1_202608/internal/repository"
	"momcafe_saas_v1_202608/pkg/utils"
)

// OAuth state 有效期
const oauthStateTTL = 10 * time.Minute

var (
	ErrEmailTaken         = errors.New("이미 가입된 이메일입니다")
	ErrInvalidCredentials = errors.New("이메일 또는 비밀번호가 올바르지 않습니다")
	ErrOAuthStateInvalid  = errors.New("잘못된 인증 요청입니다. 다시 시도해주세요")
)

// ==================== 配置 ====================

type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// ==================== 服务实现 ====================

// AuthService 注册登录与 Google 第三方登录
type AuthService struct {
	MemberRepo repository.MemberRepository
	Game       *GameService
	JWT        *middleware.JWTConfig
	google     *oauth2.Config
}

func NewAuthService(memberRepo repository.MemberRepository, game *GameService, jwtCfg *middleware.JWTConfig, googleCfg *GoogleOAuthConfig) *AuthService {
	svc := &AuthService{MemberRepo: memberRepo, Game: game, JWT: jwtCfg}
	if googleCfg != nil && googleCfg.ClientID != "" {
		svc.google = &oauth2.Config{
			ClientID:     googleCfg.ClientID,
			ClientSecret: googleCfg.ClientSecret,
			RedirectURL:  googleCfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}
	return svc
}

// ==================== 本地注册登录 ====================

// Register 邮箱注册，成功后同时初始化小游戏档案
func (s *AuthService) Register(ctx context.Context, email, password, name, phone, company, referralCode string) (*model.Member, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", fmt.Errorf("이메일과 비밀번호를 입력해주세요")
	}
	if len(password) < 8 {
		return nil, "", fmt.Errorf("비밀번호는 8자 이상이어야 합니다")
	}

	if _, err := s.MemberRepo.GetByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("密码加密失败: %v", err)
	}

	member := &model.Member{
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(name),
		Phone:        strings.TrimSpace(phone),
		Company:      strings.TrimSpace(company),
		Provider:     model.ProviderLocal,
		Role:         model.RoleUser,
		IsActive:     true,
	}
	if err := s.MemberRepo.Create(ctx, member); err != nil {
		return nil, "", fmt.Errorf("创建会员失败: %v", err)
	}

	s.initGameProfile(ctx, member.ID, referralCode)

	token, err := middleware.GenerateToken(s.JWT, member.ID, member.Email, member.Role)
	if err != nil {
		return nil, "", fmt.Errorf("签发令牌失败: %v", err)
	}
	return member, token, nil
}

// Login 邮箱登录
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.Member, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	member, err := s.MemberRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if !member.IsActive {
		return nil, "", fmt.Errorf("비활성화된 계정입니다")
	}
	if member.Provider != model.ProviderLocal {
		return nil, "", fmt.Errorf("구글 로그인으로 가입된 계정입니다")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := middleware.GenerateToken(s.JWT, member.ID, member.Email, member.Role)
	if err != nil {
		return nil, "", fmt.Errorf("签发令牌失败: %v", err)
	}
	return member, token, nil
}

// GetProfile 查询当前会员信息
func (s *AuthService) GetProfile(ctx context.Context, memberID int64) (*model.Member, error) {
	member, err := s.MemberRepo.GetByID(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("회원 정보를 찾을 수 없습니다")
	}
	return member, nil
}

// ==================== Google 登录 ====================

// GoogleAuthURL 生成授权跳转地址，state 临时缓存防 CSRF
func (s *AuthService) GoogleAuthURL() (string, error) {
	if s.google == nil {
		return "", fmt.Errorf("구글 로그인이 설정되지 않았습니다")
	}
	state, err := randomToken(16)
	if err != nil {
		return "", fmt.Errorf("生成 state 失败: %v", err)
	}
	utils.SetCache("oauth:state:"+state, true, oauthStateTTL)
	return s.google.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// googleUserInfo Google userinfo 接口返回
type googleUserInfo struct {
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

// GoogleCallback 处理授权回调，首次登录自动注册
func (s *AuthService) GoogleCallback(ctx context.Context, state, code string) (*model.Member, string, error) {
	if s.google == nil {
		return nil, "", fmt.Errorf("구글 로그인이 설정되지 않았습니다")
	}
	if _, ok := utils.GetCache("oauth:state:" + state); !ok {
		return nil, "", ErrOAuthStateInvalid
	}
	utils.DeleteCache("oauth:state:" + state)

	oauthToken, err := s.google.Exchange(ctx, code)
	if err != nil {
		return nil, "", fmt.Errorf("구글 인증에 실패했습니다: %v", err)
	}

	resp, err := s.google.Client(ctx, oauthToken).Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, "", fmt.Errorf("구글 사용자 정보를 가져오지 못했습니다: %v", err)
	}
	defer resp.Body.Close()

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, "", fmt.Errorf("解析 Google 用户信息失败: %v", err)
	}
	if info.Email == "" {
		return nil, "", fmt.Errorf("구글 계정에서 이메일을 확인할 수 없습니다")
	}

	email := strings.ToLower(info.Email)
	member, err := s.MemberRepo.GetByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		member = &model.Member{
			Email:    email,
			Name:     info.Name,
			Provider: model.ProviderGoogle,
			Role:     model.RoleUser,
			IsActive: true,
		}
		if err := s.MemberRepo.Create(ctx, member); err != nil {
			return nil, "", fmt.Errorf("创建会员失败: %v", err)
		}
		s.initGameProfile(ctx, member.ID, "")
	} else if err != nil {
		return nil, "", fmt.Errorf("查询会员失败: %v", err)
	}

	token, err := middleware.GenerateToken(s.JWT, member.ID, member.Email, member.Role)
	if err != nil {
		return nil, "", fmt.Errorf("签发令牌失败: %v", err)
	}
	return member, token, nil
}

// ==================== 内部辅助 ====================

// initGameProfile 注册成功后初始化游戏档案，失败只记日志不阻断注册
func (s *AuthService) initGameProfile(ctx context.Context, memberID int64, referralCode string) {
	if s.Game == nil {
		return
	}
	if _, err := s.Game.EnsureProfile(ctx, memberID); err != nil {
		log.Printf("[AuthService] 初始化游戏档案失败 memberID=%d: %v", memberID, err)
		return
	}
	if referralCode != "" {
		if _, err := s.Game.ApplyReferral(ctx, memberID, referralCode); err != nil {
			log.Printf("[AuthService] 推荐码无效 memberID=%d code=%s: %v", memberID, referralCode, err)
		}
	}
}

func randomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

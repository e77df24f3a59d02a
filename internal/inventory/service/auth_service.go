package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/barstock/internal/config"
	"github.com/bitfantasy/barstock/internal/inventory/entity"
	"github.com/bitfantasy/barstock/internal/inventory/repository"
	"github.com/bitfantasy/barstock/internal/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// loginTokenPurpose 登录链接令牌的用途标记，会话令牌不能当链接用
const loginTokenPurpose = "location_login"

// 错误定义。令牌校验失败一律折叠为 ErrInvalidLoginToken，不区分原因。
var (
	ErrInvalidCredentials   = errors.New("用户名或密码错误")
	ErrUserInactive         = errors.New("账号已停用")
	ErrNoLocationUser       = errors.New("该位置没有绑定账号")
	ErrLocationUserInactive = errors.New("该位置绑定的账号已停用")
	ErrInvalidLoginToken    = errors.New("登录链接无效或已过期")
)

// AuthService 认证服务：密码登录、位置登录链接的签发与校验
type AuthService struct {
	userRepo     *repository.UserRepository
	locationRepo *repository.LocationRepository
	logRepo      *repository.OperationLogRepository
	cfg          *config.Config
	logger       *zap.Logger
}

// NewAuthService 创建认证服务
func NewAuthService(userRepo *repository.UserRepository, locationRepo *repository.LocationRepository, logRepo *repository.OperationLogRepository, cfg *config.Config, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		locationRepo: locationRepo,
		logRepo:      logRepo,
		cfg:          cfg,
		logger:       logger,
	}
}

// Login 用户名密码登录，成功返回用户和会话令牌
func (s *AuthService) Login(ctx context.Context, username, password, ip string) (*entity.User, string, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		s.audit(ctx, nil, username, "login", "", "fail", "unknown user", ip)
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.audit(ctx, user, username, "login", "", "fail", "bad password", ip)
		return nil, "", ErrInvalidCredentials
	}

	if !user.IsActive {
		s.audit(ctx, user, username, "login", "", "fail", "inactive", ip)
		return nil, "", ErrUserInactive
	}

	session, err := s.mintSession(user)
	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		// 不阻断登录，只记录错误
		s.logger.Warn("Failed to stamp last login", zap.Error(err))
	}

	s.audit(ctx, user, username, "login", "", "success", "", ip)
	return user, session, nil
}

// HashPassword 生成密码哈希
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("生成密码哈希失败: %w", err)
	}
	return string(hash), nil
}

// CreateLocationUser 创建位置账号并绑定到位置（员工操作）
func (s *AuthService) CreateLocationUser(ctx context.Context, locationID, username, name, password string) (*entity.User, error) {
	location, err := s.locationRepo.FindByID(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("位置不存在: %w", err)
	}
	if location.UserID != nil {
		return nil, fmt.Errorf("该位置已绑定账号")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &entity.User{
		ID:           generateID(),
		Username:     username,
		Name:         name,
		PasswordHash: hash,
		IsStaff:      false,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("创建账号失败: %w", err)
	}

	location.UserID = &user.ID
	if err := s.locationRepo.Update(ctx, location); err != nil {
		return nil, fmt.Errorf("绑定位置失败: %w", err)
	}
	return user, nil
}

// LocationLink 签发的位置登录链接
type LocationLink struct {
	Location  *entity.Location `json:"location"`
	User      *entity.User     `json:"user"`
	URL       string           `json:"url"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// IssueLocationLink 为位置的绑定账号签发登录链接（员工操作）。
// 位置没绑定账号或账号已停用时返回描述性错误，不产出链接。
func (s *AuthService) IssueLocationLink(ctx context.Context, locationID, issuerName, ip string) (*LocationLink, error) {
	location, err := s.locationRepo.FindByID(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("位置不存在: %w", err)
	}

	if location.User == nil {
		s.audit(ctx, nil, issuerName, "issue_link", location.ID, "fail", "no bound user", ip)
		return nil, ErrNoLocationUser
	}
	user := location.User
	if !user.IsActive {
		s.audit(ctx, user, issuerName, "issue_link", location.ID, "fail", "inactive user", ip)
		return nil, ErrLocationUserInactive
	}

	now := time.Now()
	expiresAt := now.Add(s.cfg.JWT.LoginLinkExpire)
	claims := jwt.MapClaims{
		"sub":     user.ID,
		"purpose": loginTokenPurpose,
		"iss":     s.cfg.JWT.Issuer,
		"iat":     now.Unix(),
		"exp":     expiresAt.Unix(),
		"jti":     uuid.New().String(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return nil, fmt.Errorf("签发令牌失败: %w", err)
	}

	uidb64 := base64.RawURLEncoding.EncodeToString([]byte(user.ID))
	url := fmt.Sprintf("%s/token-login/%s/%s", s.cfg.Server.BaseURL, uidb64, tokenString)

	s.audit(ctx, user, issuerName, "issue_link", location.ID, "success", "", ip)
	return &LocationLink{
		Location:  location,
		User:      user,
		URL:       url,
		ExpiresAt: expiresAt,
	}, nil
}

// loginTokenClaims 登录链接令牌的 claims
type loginTokenClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// ValidateLocationToken 校验登录链接并建立会话。三项检查缺一不可：
// 标识能解出存在且启用的账号、签名和有效期通过、用途和主体匹配。
// 对外只有一种失败。
func (s *AuthService) ValidateLocationToken(ctx context.Context, uidb64, tokenString, ip string) (*entity.User, string, error) {
	uidBytes, err := base64.RawURLEncoding.DecodeString(uidb64)
	if err != nil {
		s.audit(ctx, nil, "", "token_login", "", "fail", "bad uid encoding", ip)
		return nil, "", ErrInvalidLoginToken
	}
	uid := string(uidBytes)

	user, err := s.userRepo.FindByID(ctx, uid)
	if err != nil {
		s.audit(ctx, nil, uid, "token_login", "", "fail", "unknown user", ip)
		return nil, "", ErrInvalidLoginToken
	}

	// 签发后账号被停用则链接立即失效，不等到期
	if !user.IsActive {
		s.audit(ctx, user, user.Username, "token_login", "", "fail", "inactive user", ip)
		return nil, "", ErrInvalidLoginToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &loginTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.Secret), nil
	})
	if err != nil {
		s.audit(ctx, user, user.Username, "token_login", "", "fail", "bad token", ip)
		return nil, "", ErrInvalidLoginToken
	}
	claims, ok := token.Claims.(*loginTokenClaims)
	if !ok || !token.Valid || claims.Purpose != loginTokenPurpose || claims.Subject != user.ID {
		s.audit(ctx, user, user.Username, "token_login", "", "fail", "claims mismatch", ip)
		return nil, "", ErrInvalidLoginToken
	}

	session, err := s.mintSession(user)
	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Warn("Failed to stamp last login", zap.Error(err))
	}

	s.audit(ctx, user, user.Username, "token_login", "", "success", "", ip)
	return user, session, nil
}

// SessionExpire 会话有效期
func (s *AuthService) SessionExpire() time.Duration {
	return s.cfg.JWT.SessionExpire
}

// mintSession 签发会话 JWT
func (s *AuthService) mintSession(user *entity.User) (string, error) {
	now := time.Now()
	locationID := ""
	if user.Location != nil {
		locationID = user.Location.ID
	}

	claims := middleware.SessionClaims{
		UserID:     user.ID,
		Username:   user.Username,
		Name:       user.Name,
		IsStaff:    user.IsStaff,
		LocationID: locationID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.cfg.JWT.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWT.SessionExpire)),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	sessionString, err := token.SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return "", fmt.Errorf("签发会话失败: %w", err)
	}
	return sessionString, nil
}

// audit 写审计记录并同步打日志，写库失败不阻断主流程
func (s *AuthService) audit(ctx context.Context, user *entity.User, username, action, targetID, outcome, detail, ip string) {
	log := &entity.OperationLog{
		ID:        generateID(),
		Username:  username,
		Module:    "auth",
		Action:    action,
		TargetID:  targetID,
		Outcome:   outcome,
		Detail:    detail,
		IP:        ip,
		CreatedAt: time.Now(),
	}
	if user != nil {
		log.UserID = user.ID
		if log.Username == "" {
			log.Username = user.Username
		}
	}
	if err := s.logRepo.Create(ctx, log); err != nil {
		s.logger.Warn("Failed to write operation log", zap.Error(err))
	}

	fields := []zap.Field{
		zap.String("action", action),
		zap.String("username", log.Username),
		zap.String("outcome", outcome),
		zap.String("ip", ip),
	}
	if detail != "" {
		fields = append(fields, zap.String("detail", detail))
	}
	if outcome == "success" {
		s.logger.Info("Auth event", fields...)
	} else {
		s.logger.Warn("Auth event", fields...)
	}
}

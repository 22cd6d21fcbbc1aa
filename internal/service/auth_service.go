package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/casecraft/casecraft_server/config"
	"github.com/casecraft/casecraft_server/internal/model"
	"github.com/casecraft/casecraft_server/internal/model/dto"
	"github.com/casecraft/casecraft_server/internal/pkg/jwt"
	"github.com/casecraft/casecraft_server/internal/repository"
)

var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrInvalidVerifyCode  = errors.New("verification code invalid or expired")
	ErrAccountLocked      = errors.New("account temporarily locked")
	ErrUserNotFound       = errors.New("user not found")
)

// 连续失败 5 次锁定 15 分钟
const (
	maxFailedLogins = 5
	lockoutDuration = 15 * time.Minute
)

// emailSender 验证码邮件发送，可为 nil（未配置 SMTP 时跳过）
type emailSender interface {
	SendVerificationCode(to, code string) error
}

type AuthService struct {
	userRepo *repository.UserRepository
	cfg      *config.Config
	email    emailSender
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config, email emailSender) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
		email:    email,
	}
}

// Register 用户注册
func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	exists, err := s.userRepo.ExistsByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	verifyCode, err := generateVerifyCode()
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(24 * time.Hour)
	user := &model.User{
		FirstName:             req.FirstName,
		LastName:              req.LastName,
		Email:                 req.Email,
		PasswordHash:          string(hashedPassword),
		CompanyName:           req.CompanyName,
		VerificationCode:      &verifyCode,
		VerificationExpiresAt: &expiresAt,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	if s.email != nil {
		if err := s.email.SendVerificationCode(user.Email, verifyCode); err != nil {
			log.Printf("Register: send verification email to %s failed: %v", user.Email, err)
		}
	}

	// 开发环境临时方案：自动验证邮箱
	if s.cfg.Server.Mode == "debug" {
		user.IsVerified = true
		if err := s.userRepo.Update(user); err != nil {
			return nil, err
		}
	}

	return &dto.RegisterResponse{
		UserID: user.ID,
	}, nil
}

// Login 用户登录
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.AccountLockedUntil != nil && time.Now().Before(*user.AccountLockedUntil) {
		return nil, ErrAccountLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		user.FailedLoginAttempts++
		if user.FailedLoginAttempts >= maxFailedLogins {
			lockedUntil := time.Now().Add(lockoutDuration)
			user.AccountLockedUntil = &lockedUntil
			user.FailedLoginAttempts = 0
		}
		if err := s.userRepo.Update(user); err != nil {
			return nil, err
		}
		return nil, ErrInvalidCredentials
	}

	// 邮箱未验证时生产环境拒绝登录，开发环境放行
	if !user.IsVerified && s.cfg.Server.Mode != "debug" {
		return nil, ErrEmailNotVerified
	}

	now := time.Now()
	user.LastLogin = &now
	user.FailedLoginAttempts = 0
	user.AccountLockedUntil = nil
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	token, err := jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token: token,
		User:  buildUserProfile(user),
	}, nil
}

// VerifyEmail 校验注册验证码
func (s *AuthService) VerifyEmail(req *dto.VerifyEmailRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidVerifyCode
		}
		return nil, err
	}

	if user.VerificationCode == nil || *user.VerificationCode != req.Code {
		return nil, ErrInvalidVerifyCode
	}
	if user.VerificationExpiresAt == nil || time.Now().After(*user.VerificationExpiresAt) {
		return nil, ErrInvalidVerifyCode
	}

	user.IsVerified = true
	user.VerificationCode = nil
	user.VerificationExpiresAt = nil
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	token, err := jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token: token,
		User:  buildUserProfile(user),
	}, nil
}

// GetProfile 获取当前用户资料
func (s *AuthService) GetProfile(userID int64) (*dto.UserProfile, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return buildUserProfile(user), nil
}

func buildUserProfile(user *model.User) *dto.UserProfile {
	return &dto.UserProfile{
		ID:          user.ID,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Email:       user.Email,
		CompanyName: user.CompanyName,
		IsVerified:  user.IsVerified,
		CreatedAt:   user.CreatedAt.Format(time.RFC3339),
	}
}

// generateVerifyCode 生成 6 位数字验证码
func generateVerifyCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

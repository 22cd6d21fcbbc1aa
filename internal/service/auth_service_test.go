package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/casecraft/casecraft_server/config"
	"github.com/casecraft/casecraft_server/internal/model/dto"
	"github.com/casecraft/casecraft_server/internal/repository"
	"github.com/casecraft/casecraft_server/internal/testutil"
)

type fakeEmailSender struct {
	sentTo   []string
	lastCode string
}

func (f *fakeEmailSender) SendVerificationCode(to, code string) error {
	f.sentTo = append(f.sentTo, to)
	f.lastCode = code
	return nil
}

type authFixture struct {
	service  *AuthService
	userRepo *repository.UserRepository
	db       *gorm.DB
	sender   *fakeEmailSender
}

func setupAuthService(t *testing.T, mode string) (*authFixture, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	userRepo := repository.NewUserRepository(db)

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: mode},
		JWT: config.JWTConfig{
			Secret:      "test-secret-key",
			ExpireHours: 24,
		},
	}

	sender := &fakeEmailSender{}
	fixture := &authFixture{
		service:  NewAuthService(userRepo, cfg, sender),
		userRepo: userRepo,
		db:       db,
		sender:   sender,
	}

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}
	return fixture, cleanup
}

func TestAuthService_Register_Success(t *testing.T) {
	f, cleanup := setupAuthService(t, "release")
	defer cleanup()

	resp, err := f.service.Register(&dto.RegisterRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "password123",
	})
	require.NoError(t, err)
	assert.NotZero(t, resp.UserID)

	user, err := f.userRepo.GetByEmail("ada@example.com")
	require.NoError(t, err)
	assert.False(t, user.IsVerified)
	require.NotNil(t, user.VerificationCode)
	assert.Len(t, *user.VerificationCode, 6)

	require.Len(t, f.sender.sentTo, 1)
	assert.Equal(t, "ada@example.com", f.sender.sentTo[0])
	assert.Equal(t, *user.VerificationCode, f.sender.lastCode)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	f, cleanup := setupAuthService(t, "release")
	defer cleanup()

	req := &dto.RegisterRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "password123",
	}
	_, err := f.service.Register(req)
	require.NoError(t, err)

	_, err = f.service.Register(req)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestAuthService_Login_Success(t *testing.T) {
	f, cleanup := setupAuthService(t, "debug")
	defer cleanup()

	_, err := f.service.Register(&dto.RegisterRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "password123",
	})
	require.NoError(t, err)

	resp, err := f.service.Login(&dto.LoginRequest{
		Email:    "ada@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "ada@example.com", resp.User.Email)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	f, cleanup := setupAuthService(t, "debug")
	defer cleanup()

	_, err := f.service.Register(&dto.RegisterRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "password123",
	})
	require.NoError(t, err)

	_, err = f.service.Login(&dto.LoginRequest{
		Email:    "ada@example.com",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_UnverifiedEmailRejected(t *testing.T) {
	f, cleanup := setupAuthService(t, "release")
	defer cleanup()

	_, err := f.service.Register(&dto.RegisterRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "password123",
	})
	require.NoError(t, err)

	_, err = f.service.Login(&dto.LoginRequest{
		Email:    "ada@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, ErrEmailNotVerified)
}

// 连续失败达到阈值后账号锁定一段时间
func TestAuthService_Login_LockoutAfterRepeatedFailures(t *testing.T) {
	f, cleanup := setupAuthService(t, "debug")
	defer cleanup()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	testutil.TestUser(t, f.db,
		testutil.WithEmail("ada@example.com"),
		testutil.WithPasswordHash(string(hash)))

	for i := 0; i < maxFailedLogins; i++ {
		_, err := f.service.Login(&dto.LoginRequest{Email: "ada@example.com", Password: "nope"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	_, err = f.service.Login(&dto.LoginRequest{Email: "ada@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrAccountLocked)
}

func TestAuthService_VerifyEmail_Success(t *testing.T) {
	f, cleanup := setupAuthService(t, "release")
	defer cleanup()

	_, err := f.service.Register(&dto.RegisterRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "password123",
	})
	require.NoError(t, err)

	resp, err := f.service.VerifyEmail(&dto.VerifyEmailRequest{
		Email: "ada@example.com",
		Code:  f.sender.lastCode,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	user, err := f.userRepo.GetByEmail("ada@example.com")
	require.NoError(t, err)
	assert.True(t, user.IsVerified)
	assert.Nil(t, user.VerificationCode)
}

func TestAuthService_VerifyEmail_WrongCode(t *testing.T) {
	f, cleanup := setupAuthService(t, "release")
	defer cleanup()

	_, err := f.service.Register(&dto.RegisterRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "password123",
	})
	require.NoError(t, err)

	_, err = f.service.VerifyEmail(&dto.VerifyEmailRequest{
		Email: "ada@example.com",
		Code:  "invalid",
	})
	assert.ErrorIs(t, err, ErrInvalidVerifyCode)
}

func TestAuthService_VerifyEmail_ExpiredCode(t *testing.T) {
	f, cleanup := setupAuthService(t, "release")
	defer cleanup()

	_, err := f.service.Register(&dto.RegisterRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "password123",
	})
	require.NoError(t, err)

	user, err := f.userRepo.GetByEmail("ada@example.com")
	require.NoError(t, err)
	expired := time.Now().Add(-time.Hour)
	user.VerificationExpiresAt = &expired
	require.NoError(t, f.userRepo.Update(user))

	_, err = f.service.VerifyEmail(&dto.VerifyEmailRequest{
		Email: "ada@example.com",
		Code:  f.sender.lastCode,
	})
	assert.ErrorIs(t, err, ErrInvalidVerifyCode)
}

func TestAuthService_GetProfile(t *testing.T) {
	f, cleanup := setupAuthService(t, "debug")
	defer cleanup()

	resp, err := f.service.Register(&dto.RegisterRequest{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       "ada@example.com",
		Password:    "password123",
		CompanyName: "Analytical Engines",
	})
	require.NoError(t, err)

	profile, err := f.service.GetProfile(resp.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", profile.FirstName)
	assert.Equal(t, "Analytical Engines", profile.CompanyName)

	_, err = f.service.GetProfile(9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

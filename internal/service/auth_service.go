package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"go-library-services/internal/core/auth"
	"go-library-services/internal/domain"
	"go-library-services/internal/repo"
	"go-library-services/pkg/utils"
)

var (
	ErrUserExists         = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrBadRole            = errors.New("role must be user or admin")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrSelfDelete         = errors.New("cannot delete own account")
	ErrUserNotFound       = errors.New("user not found")
)

type AuthService struct {
	users *repo.UserRepo
	jwter *auth.JWTer
	log   *zap.Logger
}

func NewAuthService(users *repo.UserRepo, jwter *auth.JWTer, log *zap.Logger) *AuthService {
	return &AuthService{users: users, jwter: jwter, log: log}
}

func (s *AuthService) Signup(ctx context.Context, username, password, role string) error {
	if !domain.ValidRole(role) {
		return ErrBadRole
	}
	existing, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrUserExists
	}
	u := &domain.User{
		Username:     username,
		PasswordHash: utils.HashPassword(password),
		Role:         role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return err
	}
	s.log.Info("user signed up", zap.String("username", username), zap.String("role", role))
	return nil
}

// Login 用户不存在与密码错误返回同一错误，避免用户名枚举
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return "", nil, err
	}
	if u == nil || !utils.CheckPassword(password, u.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}
	token, err := s.jwter.Issue(u.ID, u.Username, u.Role)
	if err != nil {
		return "", nil, err
	}
	s.log.Info("user logged in", zap.String("username", username))
	return token, u, nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// CreateUser 管理端建号，比自助注册多一道口令长度校验
func (s *AuthService) CreateUser(ctx context.Context, username, password, role string) (uint, error) {
	if !domain.ValidRole(role) {
		return 0, ErrBadRole
	}
	if len(password) < utils.MinPasswordLen {
		return 0, ErrPasswordTooShort
	}
	existing, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return 0, ErrUserExists
	}
	u := &domain.User{
		Username:     username,
		PasswordHash: utils.HashPassword(password),
		Role:         role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return 0, err
	}
	s.log.Info("admin created user", zap.String("username", username), zap.String("role", role))
	return u.ID, nil
}

// DeleteUser 禁止删除自己
func (s *AuthService) DeleteUser(ctx context.Context, callerID, targetID uint) error {
	if callerID == targetID {
		return ErrSelfDelete
	}
	rows, err := s.users.Delete(ctx, targetID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	s.log.Info("admin deleted user", zap.Uint("user_id", targetID))
	return nil
}

// EnsureAdmin 启动时保证引导管理员存在。数据库未就绪时按
// baseDelay*attempt 的线性退避重试，用尽次数后放弃并记错误日志，
// 需要人工介入。
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string, maxRetries int, baseDelay time.Duration) {
	for attempt := 1; attempt <= maxRetries; attempt++ {
		existing, err := s.users.FindByUsername(ctx, username)
		if err == nil {
			if existing != nil {
				s.log.Info("bootstrap admin already exists, skipping")
				return
			}
			u := &domain.User{
				Username:     username,
				PasswordHash: utils.HashPassword(password),
				Role:         domain.RoleAdmin,
			}
			if err = s.users.Create(ctx, u); err == nil {
				s.log.Info("bootstrap admin created", zap.String("username", username))
				return
			}
		}
		s.log.Warn("bootstrap admin attempt failed, retrying",
			zap.Int("attempt", attempt), zap.Int("max", maxRetries), zap.Error(err))
		select {
		case <-ctx.Done():
			return
		case <-time.After(baseDelay * time.Duration(attempt)):
		}
	}
	s.log.Error("bootstrap admin failed after retries, manual creation needed",
		zap.Int("retries", maxRetries))
}

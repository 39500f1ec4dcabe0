package service

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"otoada_api_v1_202609/internal/api/dto"
	"otoada_api_v1_202609/internal/middleware"
	"otoada_api_v1_202609/internal/model"
	"otoada_api_v1_202609/internal/repository"
)

// ==================== 测试辅助 ====================

func newTestUserService(t *testing.T) (*UserService, func(email, password, status string) *model.SysUser) {
	db := setupTestDB(t)
	svc := NewUserService(repository.NewUserRepository(db))

	seed := func(email, password, status string) *model.SysUser {
		hashed, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		user := &model.SysUser{
			Email:    email,
			Password: string(hashed),
			Name:     "Test User",
			Role:     model.RoleAdmin,
			Status:   status,
		}
		if err := db.Create(user).Error; err != nil {
			t.Fatalf("创建测试用户失败: %v", err)
		}
		return user
	}

	return svc, seed
}

// ==================== 登录测试 ====================

func TestUserService_Login(t *testing.T) {
	svc, seed := newTestUserService(t)
	ctx := context.Background()

	seed("admin@test.local", "secret123", model.UserStatusActive)

	resp, err := svc.Login(ctx, &dto.LoginRequest{Email: "admin@test.local", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("应返回完整的 Token 对")
	}
	if resp.User.Email != "admin@test.local" || resp.User.Role != model.RoleAdmin {
		t.Errorf("用户信息不对: %+v", resp.User)
	}

	// Access Token 可解析且类型正确
	claims, err := middleware.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Subject != "access" {
		t.Errorf("Subject = %s, want access", claims.Subject)
	}
}

func TestUserService_Login_WrongPassword(t *testing.T) {
	svc, seed := newTestUserService(t)
	seed("admin@test.local", "secret123", model.UserStatusActive)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "admin@test.local", Password: "wrong"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("error = %v, want ErrInvalidCredentials", err)
	}
}

func TestUserService_Login_UnknownEmail(t *testing.T) {
	svc, _ := newTestUserService(t)

	// 未注册邮箱和密码错误给同一个错误，不泄露账号是否存在
	_, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "nobody@test.local", Password: "x"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("error = %v, want ErrInvalidCredentials", err)
	}
}

func TestUserService_Login_Disabled(t *testing.T) {
	svc, seed := newTestUserService(t)
	seed("banned@test.local", "secret123", model.UserStatusDisabled)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "banned@test.local", Password: "secret123"})
	if !errors.Is(err, ErrUserDisabled) {
		t.Errorf("error = %v, want ErrUserDisabled", err)
	}
}

// ==================== 刷新测试 ====================

func TestUserService_RefreshToken(t *testing.T) {
	svc, seed := newTestUserService(t)
	ctx := context.Background()

	seed("admin@test.local", "secret123", model.UserStatusActive)
	login, err := svc.Login(ctx, &dto.LoginRequest{Email: "admin@test.local", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	resp, err := svc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	if err != nil {
		t.Fatalf("RefreshToken() error = %v", err)
	}
	if resp.AccessToken == "" {
		t.Error("刷新应返回新的 Access Token")
	}
}

func TestUserService_RefreshToken_RejectsAccessToken(t *testing.T) {
	svc, seed := newTestUserService(t)
	ctx := context.Background()

	seed("admin@test.local", "secret123", model.UserStatusActive)
	login, _ := svc.Login(ctx, &dto.LoginRequest{Email: "admin@test.local", Password: "secret123"})

	// Access Token 冒充 Refresh Token 必须被拒
	_, err := svc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: login.AccessToken})
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("error = %v, want ErrInvalidToken", err)
	}
}

// ==================== 管理员种子测试 ====================

func TestUserService_EnsureAdmin(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	if err := svc.EnsureAdmin(ctx, "admin@otoada.local", "bootstrap"); err != nil {
		t.Fatalf("EnsureAdmin() error = %v", err)
	}

	// 幂等：已存在时不报错也不重建
	if err := svc.EnsureAdmin(ctx, "admin@otoada.local", "different-password"); err != nil {
		t.Fatalf("二次 EnsureAdmin() error = %v", err)
	}

	// 原密码仍然可登录，说明没有被覆盖
	if _, err := svc.Login(ctx, &dto.LoginRequest{Email: "admin@otoada.local", Password: "bootstrap"}); err != nil {
		t.Errorf("种子管理员登录失败: %v", err)
	}
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nkvtd/pc-forge/internal/config"
	"github.com/nkvtd/pc-forge/internal/model/entity"
	"github.com/nkvtd/pc-forge/internal/repository"
	"github.com/nkvtd/pc-forge/internal/testutil"
)

func setupAuthTest(t *testing.T) *AuthService {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	cfg := &config.Config{}
	cfg.JWT.Secret = testutil.JWTSecret
	cfg.JWT.Issuer = "pc-forge"
	cfg.JWT.AccessTokenExpire = time.Hour
	cfg.JWT.RefreshTokenExpire = 24 * time.Hour
	return NewAuthService(repos.User, nil, cfg)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := setupAuthTest(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, &RegisterRequest{
		Username:    "builder",
		Password:    "hunter2hunter2",
		DisplayName: "The Builder",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Role != entity.UserRoleUser {
		t.Errorf("new accounts get the user role, got %s", user.Role)
	}
	if user.PasswordHash == "hunter2hunter2" {
		t.Error("password must be stored hashed")
	}

	loggedIn, pair, err := svc.Login(ctx, &LoginRequest{Username: "builder", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Errorf("expected the registered user back, got %s", loggedIn.ID)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("expected a full token pair")
	}
	current, err := svc.CurrentUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("current user: %v", err)
	}
	if current.LastLoginAt == nil {
		t.Error("login should stamp last_login_at")
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := setupAuthTest(t)
	ctx := context.Background()

	req := &RegisterRequest{Username: "taken", Password: "longenough", DisplayName: "First"}
	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, req); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation on duplicate username, got %v", err)
	}
}

func TestLoginBadCredentialsIndistinguishable(t *testing.T) {
	svc := setupAuthTest(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, &RegisterRequest{
		Username: "real", Password: "correcthorse", DisplayName: "Real",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, _, badPass := svc.Login(ctx, &LoginRequest{Username: "real", Password: "wrong"})
	_, _, badUser := svc.Login(ctx, &LoginRequest{Username: "ghost", Password: "wrong"})
	if badPass == nil || badUser == nil {
		t.Fatal("expected both logins to fail")
	}
	if badPass.Error() != badUser.Error() {
		t.Errorf("bad user and bad password must read the same: %q vs %q", badUser, badPass)
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	svc := setupAuthTest(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, &RegisterRequest{
		Username: "refresher", Password: "correcthorse", DisplayName: "R",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, pair, err := svc.Login(ctx, &LoginRequest{Username: "refresher", Password: "correcthorse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	next, err := svc.RefreshToken(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if next.AccessToken == "" {
		t.Error("expected a fresh access token")
	}

	// The access token is not a refresh token.
	if _, err := svc.RefreshToken(ctx, pair.AccessToken); err == nil {
		t.Error("access tokens must not refresh")
	}
}

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Jonathan305g/Marketplace-Modelamiento/internal/store"
	"github.com/Jonathan305g/Marketplace-Modelamiento/internal/store/sqlite"
)

func newTestAuthService(t *testing.T) (*Service, store.Store) {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	jwtConfig := &JWTConfig{
		Secret:   []byte("test-secret-change-me"),
		Issuer:   "test",
		Audience: "test",
		TTL:      24 * time.Hour,
	}

	return NewService(st, jwtConfig), st
}

func TestRegister_RejectsMissingFields(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "", "ana@example.com", "password123"); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
	if _, _, err := svc.Register(ctx, "Ana", "  ", "password123"); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
	if _, _, err := svc.Register(ctx, "Ana", "ana@example.com", ""); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
}

func TestRegister_NormalizesEmail(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	token, user, err := svc.Register(ctx, "Ana", "  Ana@Example.COM ", "password123")
	if err != nil {
		t.Fatalf("expected registration success, got %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if user.Email != "ana@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.Role != store.RoleUser || user.Status != store.StatusActive {
		t.Fatalf("unexpected defaults: role=%s status=%s", user.Role, user.Status)
	}

	// Should collide because the stored email is normalized.
	if _, _, err := svc.Register(ctx, "Otra Ana", "ana@example.com", "password456"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLogin_ValidatesCredentials(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "Ana", "ana@example.com", "password123"); err != nil {
		t.Fatalf("register: %v", err)
	}

	token, user, err := svc.Login(ctx, "ANA@example.com", "password123")
	if err != nil {
		t.Fatalf("expected login success, got %v", err)
	}
	if token == "" || user == nil {
		t.Fatal("expected token and user")
	}

	if _, _, err := svc.Login(ctx, "ana@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_RefusesSuspendedAccount(t *testing.T) {
	svc, st := newTestAuthService(t)
	ctx := context.Background()

	_, user, err := svc.Register(ctx, "Ana", "ana@example.com", "password123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := st.UpdateUserStatus(ctx, user.ID, store.StatusSuspended); err != nil {
		t.Fatalf("suspend: %v", err)
	}

	if _, _, err := svc.Login(ctx, "ana@example.com", "password123"); !errors.Is(err, ErrAccountSuspended) {
		t.Fatalf("expected ErrAccountSuspended, got %v", err)
	}
}

func TestValidateToken_RoundTrip(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	token, user, err := svc.Register(ctx, "Ana", "ana@example.com", "password123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != user.ID || claims.Email != "ana@example.com" || claims.Role != string(store.RoleUser) {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, err := svc.ValidateToken(token + "tampered"); err == nil {
		t.Fatal("expected tampered token to fail validation")
	}
}

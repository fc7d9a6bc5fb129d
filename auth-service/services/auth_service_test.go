package services

import (
	"errors"
	"testing"

	"taskboard/auth-service/repositories"
	"taskboard/utils"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	db, err := repositories.InitDB(":memory:")
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewAuthService(repositories.NewUserRepo(db))
}

func TestRegister(t *testing.T) {
	svc := newTestAuthService(t)

	t.Run("creates the account", func(t *testing.T) {
		user, err := svc.Register("alice", "s3cret")
		if err != nil {
			t.Fatalf("Register: %v", err)
		}
		if user.ID == 0 || user.Username != "alice" {
			t.Errorf("unexpected user record: %+v", user)
		}
		if user.Password == "s3cret" {
			t.Error("password must be stored hashed")
		}
	})

	t.Run("rejects a duplicate username", func(t *testing.T) {
		if _, err := svc.Register("alice", "other"); !errors.Is(err, ErrUserExists) {
			t.Fatalf("expected ErrUserExists, got %v", err)
		}
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		if _, err := svc.Register("", "pw"); !errors.Is(err, ErrMissingFields) {
			t.Fatalf("expected ErrMissingFields, got %v", err)
		}
		if _, err := svc.Register("bob", ""); !errors.Is(err, ErrMissingFields) {
			t.Fatalf("expected ErrMissingFields, got %v", err)
		}
	})
}

func TestLogin(t *testing.T) {
	svc := newTestAuthService(t)
	registered, err := svc.Register("alice", "s3cret")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	t.Run("issues a token carrying the identity", func(t *testing.T) {
		token, err := svc.Login("alice", "s3cret")
		if err != nil {
			t.Fatalf("Login: %v", err)
		}
		claims, err := utils.ValidateToken(token)
		if err != nil {
			t.Fatalf("ValidateToken: %v", err)
		}
		if claims.UserID != registered.ID || claims.Username != "alice" {
			t.Errorf("unexpected claims: %+v", claims)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		if _, err := svc.Login("alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown username", func(t *testing.T) {
		if _, err := svc.Login("nobody", "pw"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestMe(t *testing.T) {
	svc := newTestAuthService(t)
	registered, err := svc.Register("alice", "s3cret")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	t.Run("resolves a known id", func(t *testing.T) {
		user, err := svc.Me(registered.ID)
		if err != nil {
			t.Fatalf("Me: %v", err)
		}
		if user.Username != "alice" {
			t.Errorf("expected alice, got %+v", user)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		if _, err := svc.Me(9999); !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})
}

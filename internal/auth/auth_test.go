package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"rentledger/internal/core"
)

type fakeUserStorage struct {
	byEmail map[string]*core.User
}

func newFakeUserStorage() *fakeUserStorage {
	return &fakeUserStorage{byEmail: make(map[string]*core.User)}
}

func (f *fakeUserStorage) CreateUser(_ context.Context, u *core.User) error {
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserStorage) GetUserByEmail(_ context.Context, email string) (*core.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, core.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStorage) GetUserByID(_ context.Context, id string) (*core.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, core.ErrNotFound
}

func stubID() string { return "user-1" }

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	a := NewPasswordAuthenticator(newFakeUserStorage(), stubID)

	user, err := a.Register(ctx, "anna@example.com", "Anna", "correct horse")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.PasswordHash == "correct horse" {
		t.Fatal("password stored in clear")
	}

	got, err := a.Authenticate(ctx, "anna@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("authenticated user id = %q, want %q", got.ID, user.ID)
	}

	if _, err := a.Authenticate(ctx, "anna@example.com", "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := a.Authenticate(ctx, "nobody@example.com", "correct horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email error = %v, want ErrInvalidCredentials", err)
	}
}

func TestRegister_Rejections(t *testing.T) {
	ctx := context.Background()
	a := NewPasswordAuthenticator(newFakeUserStorage(), stubID)

	if _, err := a.Register(ctx, "anna@example.com", "Anna", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("weak password error = %v, want ErrWeakPassword", err)
	}

	if _, err := a.Register(ctx, "anna@example.com", "Anna", "long enough"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := a.Register(ctx, "anna@example.com", "Other", "also long enough"); !errors.Is(err, ErrEmailExists) {
		t.Errorf("duplicate email error = %v, want ErrEmailExists", err)
	}
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret-key-at-least-32-bytes", time.Hour)
	user := &core.User{ID: "user-1", Email: "anna@example.com"}

	token, err := m.Generate(user)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "anna@example.com" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestJWTManager_RejectsBadTokens(t *testing.T) {
	m := NewJWTManager("test-secret-key-at-least-32-bytes", time.Hour)
	user := &core.User{ID: "user-1", Email: "anna@example.com"}

	token, err := m.Generate(user)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	other := NewJWTManager("a-completely-different-secret-key", time.Hour)
	if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("foreign secret error = %v, want ErrInvalidToken", err)
	}

	expired := NewJWTManager("test-secret-key-at-least-32-bytes", -time.Minute)
	token, err = expired.Generate(user)
	if err != nil {
		t.Fatalf("Generate expired: %v", err)
	}
	if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token error = %v, want ErrInvalidToken", err)
	}
}

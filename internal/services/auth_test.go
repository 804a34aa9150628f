package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/edusloth/edusloth-backend/internal/repos"
	"github.com/edusloth/edusloth-backend/internal/requestdata"
	"github.com/edusloth/edusloth-backend/internal/types"
)

type fakeUserRepo struct {
	byID map[string]*types.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]*types.User{}}
}

func (f *fakeUserRepo) Insert(ctx context.Context, user *types.User) error {
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*types.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, repos.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*types.User, error) {
	for _, user := range f.byID {
		if user.Email == strings.ToLower(email) {
			return user, nil
		}
	}
	return nil, repos.ErrNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, id string, set bson.M) (*types.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, repos.ErrNotFound
	}
	if v, ok := set["full_name"]; ok {
		user.FullName = v.(string)
	}
	return user, nil
}

func TestAuth_RegisterLoginRoundTrip(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(newTestLogger(t), repo, "test-secret", time.Hour)

	user, err := svc.RegisterUser(context.Background(), RegisterInput{
		Email:    "Student@Example.COM",
		Password: "hunter22",
		FullName: "Sam Student",
	})
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if user.Email != "student@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if user.HashedPassword == "hunter22" || user.HashedPassword == "" {
		t.Fatalf("password stored without hashing")
	}

	token, err := svc.LoginUser(context.Background(), "student@example.com", "hunter22")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}
	if token == "" {
		t.Fatalf("expected a token")
	}

	ctx, err := svc.SetContextFromToken(context.Background(), token)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID != user.ID {
		t.Fatalf("request data not populated: %+v", rd)
	}
}

func TestAuth_RejectsBadCredentials(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(newTestLogger(t), repo, "test-secret", time.Hour)
	if _, err := svc.RegisterUser(context.Background(), RegisterInput{Email: "a@b.c", Password: "correct"}); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}

	tests := []struct {
		name, email, password string
	}{
		{"wrong password", "a@b.c", "incorrect"},
		{"unknown email", "nobody@b.c", "correct"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.LoginUser(context.Background(), tt.email, tt.password); !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("got %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestAuth_DuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(newTestLogger(t), repo, "test-secret", time.Hour)
	if _, err := svc.RegisterUser(context.Background(), RegisterInput{Email: "a@b.c", Password: "x"}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.RegisterUser(context.Background(), RegisterInput{Email: "A@B.C", Password: "y"}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuth_RejectsTamperedToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(newTestLogger(t), repo, "test-secret", time.Hour)
	user, err := svc.RegisterUser(context.Background(), RegisterInput{Email: "a@b.c", Password: "x"})
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	token, err := svc.LoginUser(context.Background(), user.Email, "x")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}

	other := NewAuthService(newTestLogger(t), repo, "different-secret", time.Hour)
	if _, err := other.SetContextFromToken(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong key, got %v", err)
	}
	if _, err := svc.SetContextFromToken(context.Background(), token+"x"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for mangled token, got %v", err)
	}
}

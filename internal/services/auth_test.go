package services

import (
	"context"
	"testing"

	"github.com/inkwell-edu/inkwell-backend/internal/data/repos"
	"github.com/inkwell-edu/inkwell-backend/internal/data/repos/testutil"
	"github.com/inkwell-edu/inkwell-backend/internal/platform/apierr"
)

func newAuthFixture(t *testing.T) AuthService {
	t.Helper()
	tx := testutil.Tx(t, testutil.DB(t))
	log := testutil.Logger(t)
	return NewAuthService(tx, log, repos.NewUserRepo(tx, log))
}

func TestCreateUserAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newAuthFixture(t)

	user, err := svc.CreateUser(ctx, CreateUserInput{
		Email:     "  New.Student@Example.COM ",
		Password:  "password123",
		FirstName: "New",
		LastName:  "Student",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.Email != "new.student@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if user.Password == "password123" {
		t.Fatalf("password stored in plaintext")
	}

	token, loggedIn, err := svc.Login(ctx, "new.student@example.com", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" || loggedIn.ID != user.ID {
		t.Fatalf("unexpected login result")
	}

	parsed, err := svc.ParseToken(ctx, token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if parsed.ID != user.ID {
		t.Fatalf("token resolves to wrong user")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	svc := newAuthFixture(t)

	if _, err := svc.CreateUser(ctx, CreateUserInput{Email: "wrongpw@example.com", Password: "password123"}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, _, err := svc.Login(ctx, "wrongpw@example.com", "not-the-password"); !apierr.Is(err, apierr.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "password123"); !apierr.Is(err, apierr.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for unknown email, got %v", err)
	}
}

func TestCreateUserValidation(t *testing.T) {
	ctx := context.Background()
	svc := newAuthFixture(t)

	if _, err := svc.CreateUser(ctx, CreateUserInput{Email: "no-at-sign", Password: "password123"}); !apierr.Is(err, apierr.CodeInvalidInput) {
		t.Fatalf("expected invalid_input for bad email, got %v", err)
	}
	if _, err := svc.CreateUser(ctx, CreateUserInput{Email: "short@example.com", Password: "short"}); !apierr.Is(err, apierr.CodeInvalidInput) {
		t.Fatalf("expected invalid_input for short password, got %v", err)
	}

	if _, err := svc.CreateUser(ctx, CreateUserInput{Email: "dup@example.com", Password: "password123"}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := svc.CreateUser(ctx, CreateUserInput{Email: "dup@example.com", Password: "password123"}); !apierr.Is(err, apierr.CodeInvalidInput) {
		t.Fatalf("expected invalid_input for duplicate email, got %v", err)
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	ctx := context.Background()
	svc := newAuthFixture(t)

	if _, err := svc.ParseToken(ctx, "not-a-token"); !apierr.Is(err, apierr.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

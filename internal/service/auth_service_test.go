package service

import (
	"errors"
	"testing"

	"thermolab/internal/models"

	"golang.org/x/crypto/bcrypt"
)

type fakeAuthRepo struct {
	users  map[string]*models.User
	nextID int
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{users: map[string]*models.User{}, nextID: 1}
}

func (f *fakeAuthRepo) Create(username, hash string) (int, error) {
	if _, ok := f.users[username]; ok {
		return 0, errors.New("username taken")
	}
	id := f.nextID
	f.nextID++
	f.users[username] = &models.User{ID: id, Username: username, PasswordHash: hash}
	return id, nil
}

func (f *fakeAuthRepo) GetByUsername(username string) (*models.User, error) {
	return f.users[username], nil
}

func TestAuth_SignUpHashesPassword(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := NewAuthService(repo, "unit-test-key")

	id, err := svc.SignUp("alice", "s3cret")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if id != 1 {
		t.Fatalf("id = %d", id)
	}

	u := repo.users["alice"]
	if u.PasswordHash == "s3cret" {
		t.Fatalf("password stored in clear")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestAuth_SignUpRejectsEmptyPassword(t *testing.T) {
	svc := NewAuthService(newFakeAuthRepo(), "unit-test-key")
	if _, err := svc.SignUp("alice", "   "); err == nil {
		t.Fatalf("expected error for blank password")
	}
}

func TestAuth_TokenRoundTrip(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := NewAuthService(repo, "unit-test-key")

	if _, err := svc.SignUp("alice", "s3cret"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	token, err := svc.GenerateToken("alice", "s3cret")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	userID, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if userID != 1 {
		t.Fatalf("userID = %d", userID)
	}
}

func TestAuth_GenerateToken_WrongPassword(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := NewAuthService(repo, "unit-test-key")
	if _, err := svc.SignUp("alice", "s3cret"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	if _, err := svc.GenerateToken("alice", "nope"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestAuth_GenerateToken_UnknownUser(t *testing.T) {
	svc := NewAuthService(newFakeAuthRepo(), "unit-test-key")
	if _, err := svc.GenerateToken("ghost", "x"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuth_ParseToken_WrongKey(t *testing.T) {
	repo := newFakeAuthRepo()
	issuer := NewAuthService(repo, "unit-test-key")
	if _, err := issuer.SignUp("alice", "s3cret"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	token, err := issuer.GenerateToken("alice", "s3cret")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	other := NewAuthService(repo, "a-different-key")
	if _, err := other.ParseToken(token); err == nil {
		t.Fatalf("token signed with another key must not parse")
	}
}

func TestAuth_EmptyKeyFallsBackToDefault(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := NewAuthService(repo, "")
	if _, err := svc.SignUp("alice", "s3cret"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	token, err := svc.GenerateToken("alice", "s3cret")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	// an unset key must still produce a verifiable token
	if _, err := NewAuthService(repo, defaultSigningKey).ParseToken(token); err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
}

func TestAuth_ParseToken_Garbage(t *testing.T) {
	svc := NewAuthService(newFakeAuthRepo(), "unit-test-key")
	if _, err := svc.ParseToken("not.a.jwt"); err == nil {
		t.Fatalf("expected error")
	}
}
